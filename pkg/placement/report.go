// Copyright 2022 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package placement

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Strerror returns the C library style message for a negated errno code.
func Strerror(code int) string {
	if code < 0 {
		code = -code
	}
	msg := unix.Errno(code).Error()
	r, size := utf8.DecodeRuneInString(msg)
	if r == utf8.RuneError {
		return msg
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// Outcome annotates a run code. It is OK for a code matching the expected
// node, the code with its error message for failures, and the bare node
// id otherwise.
func Outcome(code, expected int) string {
	switch {
	case expected != NoNode && code == expected:
		return "OK"
	case code < 0:
		return fmt.Sprintf("%d (%s)", code, Strerror(code))
	}
	return fmt.Sprintf("%d", code)
}

// Style selects the line format of a Printer.
type Style int

const (
	// SegmentQueryStyle prints absolute addresses of runs of a segment.
	SegmentQueryStyle Style = iota
	// SegmentMoveStyle prints segment offsets of runs with OK for placed pages.
	SegmentMoveStyle
	// ProcessStyle prints a header per region and absolute addresses with
	// page counts of runs.
	ProcessStyle
)

// Printer writes reports as text.
type Printer struct {
	w     io.Writer
	style Style
}

// NewPrinter creates a Printer writing in the given style.
func NewPrinter(w io.Writer, style Style) *Printer {
	return &Printer{
		w:     w,
		style: style,
	}
}

// Print writes every region of the report.
func (p *Printer) Print(r *Report) error {
	for _, rr := range r.Regions {
		if err := p.PrintRegion(rr, r.Node, r.PageSize); err != nil {
			return err
		}
	}
	return nil
}

// PrintRegion writes the runs of a single region.
func (p *Printer) PrintRegion(rr *RegionReport, expected int, pageSize int64) error {
	b := &strings.Builder{}
	base := rr.Region.Base

	if p.style == ProcessStyle {
		fmt.Fprintf(b, "  0x%012x-0x%012x %s\n", base, rr.Region.End(), rr.Region.Label)
	}

	for _, run := range rr.Runs {
		start := uint64(int64(run.Start) * pageSize)
		end := uint64(int64(run.End+1)*pageSize) - 1

		switch p.style {
		case SegmentQueryStyle:
			fmt.Fprintf(b, "  0x%08x ... 0x%08x\t%s\n",
				base+start, base+end, Outcome(run.Code, expected))
		case SegmentMoveStyle:
			fmt.Fprintf(b, "  0x%012x ... 0x%012x\t%s\n",
				start, end, Outcome(run.Code, expected))
		case ProcessStyle:
			fmt.Fprintf(b, "  - 0x%012x ... 0x%012x\t[%d]\t%s\n",
				base+start, base+end, run.Pages(), Outcome(run.Code, expected))
		default:
			return errors.Errorf("invalid report style %d", p.style)
		}
	}

	_, err := io.WriteString(p.w, b.String())
	return err
}

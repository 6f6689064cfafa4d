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
)

// ToEnd is the byte end offset selecting everything up to the end of a region.
const ToEnd = -1

// PageRange is an inclusive range of page indices within a region.
type PageRange struct {
	Start int
	End   int
}

// Count returns the number of pages in the range.
func (pr PageRange) Count() int {
	return pr.End - pr.Start + 1
}

// String returns the range as first-last page index.
func (pr PageRange) String() string {
	return fmt.Sprintf("%d-%d", pr.Start, pr.End)
}

// PageCount returns the number of pages needed to cover length bytes.
func PageCount(length, pageSize int64) int {
	if length <= 0 || pageSize <= 0 {
		return 0
	}
	n := length / pageSize
	if length%pageSize > 0 {
		n++
	}
	return int(n)
}

// ComputePageRange returns the pages covering bytes [byteStart, byteEnd]
// of a region of regionLength bytes. A negative byteEnd selects the rest
// of the region. An end offset landing exactly on a page boundary past
// the start excludes the page it starts, so byteEnd of N*pageSize means
// up to but not including page N.
func ComputePageRange(byteStart, byteEnd, regionLength, pageSize int64) (PageRange, error) {
	if pageSize <= 0 {
		return PageRange{}, placementError(ErrInvalidRange, "invalid page size %d", pageSize)
	}

	if byteStart < 0 {
		byteStart = 0
	}
	if byteEnd >= 0 && byteEnd < byteStart {
		byteEnd = byteStart
	}

	// if on page boundary, round down
	end := byteEnd
	if end%pageSize == 0 && end > byteStart {
		end--
	}

	pr := PageRange{
		Start: int(byteStart / pageSize),
		End:   PageCount(regionLength, pageSize) - 1,
	}
	if byteEnd >= 0 {
		pr.End = int(end / pageSize)
	}

	if pr.End < pr.Start {
		return PageRange{}, placementError(ErrInvalidRange,
			"bytes 0x%x-0x%x of a %d byte region give pages %d-%d",
			byteStart, byteEnd, regionLength, pr.Start, pr.End)
	}

	return pr, nil
}

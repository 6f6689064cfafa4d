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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func testReport(node int, regions ...*RegionReport) *Report {
	return &Report{
		Node:     node,
		PageSize: testPageSize,
		Regions:  regions,
	}
}

func TestStrerror(t *testing.T) {
	require.Equal(t, "Input/output error", Strerror(-5))
	require.Equal(t, "No such file or directory", Strerror(-2))
	require.Equal(t, "Bad address", Strerror(14))
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "OK", Outcome(1, 1))
	require.Equal(t, "0", Outcome(0, NoNode))
	require.Equal(t, "2", Outcome(2, 1))
	require.Equal(t, "-14 (Bad address)", Outcome(-14, 1))
	require.Equal(t, "-2 (No such file or directory)", Outcome(-2, NoNode))
}

func TestPrintSegmentQuery(t *testing.T) {
	region := NewProcessRegion(SelfPid, 0x7f12a000, 0x7f12a000+4*testPageSize, "/test")
	rr := &RegionReport{
		Region: region,
		Pages:  PageRange{0, 3},
		Runs:   []Run{{0, 1, 0}, {2, 2, 1}, {3, 3, -14}},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, NewPrinter(buf, SegmentQueryStyle).Print(testReport(NoNode, rr)))
	require.Equal(t,
		"  0x7f12a000 ... 0x7f12bfff\t0\n"+
			"  0x7f12c000 ... 0x7f12cfff\t1\n"+
			"  0x7f12d000 ... 0x7f12dfff\t-14 (Bad address)\n",
		buf.String())
}

func TestPrintSegmentMove(t *testing.T) {
	region := NewProcessRegion(SelfPid, 0x7f12a000, 0x7f12a000+8*testPageSize, "/test")
	rr := &RegionReport{
		Region: region,
		Pages:  PageRange{2, 5},
		Runs:   []Run{{2, 4, 1}, {5, 5, -5}},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, NewPrinter(buf, SegmentMoveStyle).Print(testReport(1, rr)))
	require.Equal(t,
		"  0x000000002000 ... 0x000000004fff\tOK\n"+
			"  0x000000005000 ... 0x000000005fff\t-5 (Input/output error)\n",
		buf.String())
}

func TestPrintProcess(t *testing.T) {
	heap := &RegionReport{
		Region: NewProcessRegion(42, 0x55d4e000, 0x55d4e000+3*testPageSize, "[heap]"),
		Pages:  PageRange{0, 2},
		Runs:   []Run{{0, 1, 0}, {2, 2, -2}},
	}
	anon := &RegionReport{
		Region: NewProcessRegion(42, 0x7ffd0000, 0x7ffd0000+testPageSize, ""),
		Pages:  PageRange{0, 0},
		Runs:   []Run{{0, 0, 1}},
	}

	buf := &bytes.Buffer{}
	require.NoError(t, NewPrinter(buf, ProcessStyle).Print(testReport(NoNode, heap, anon)))
	require.Equal(t,
		"  0x000055d4e000-0x000055d51000 [heap]\n"+
			"  - 0x000055d4e000 ... 0x000055d4ffff\t[2]\t0\n"+
			"  - 0x000055d50000 ... 0x000055d50fff\t[1]\t-2 (No such file or directory)\n"+
			"  0x00007ffd0000-0x00007ffd1000 \n"+
			"  - 0x00007ffd0000 ... 0x00007ffd0fff\t[1]\t1\n",
		buf.String())
}

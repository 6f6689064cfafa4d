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

// Run is a maximal block of consecutive pages sharing the same status code.
type Run struct {
	Start int // first page index, absolute within the region
	End   int // last page index, inclusive
	Code  int // node id, or negated errno
}

// Pages returns the number of pages in the run.
func (r Run) Pages() int {
	return r.End - r.Start + 1
}

// String returns a compact representation of the run.
func (r Run) String() string {
	return fmt.Sprintf("%d-%d:%d", r.Start, r.End, r.Code)
}

// Compress collapses per-page results into runs of equal codes.
// results[i] is the code of page firstPage+i.
func Compress(results []int, firstPage int) []Run {
	if len(results) == 0 {
		return nil
	}

	runs := []Run{}
	start := 0
	for i := 1; i < len(results); i++ {
		if results[i] != results[start] {
			runs = append(runs, Run{
				Start: firstPage + start,
				End:   firstPage + i - 1,
				Code:  results[start],
			})
			start = i
		}
	}
	runs = append(runs, Run{
		Start: firstPage + start,
		End:   firstPage + len(results) - 1,
		Code:  results[start],
	})

	return runs
}

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
	"unsafe"
)

// Region is a contiguous span of virtual memory belonging to one mapping,
// either a segment mapped into this process or a mapping of another one.
type Region struct {
	Pid    int    // process owning the mapping, SelfPid for our own
	Base   uint64 // address of the first byte, expected to be page aligned
	Length int64  // length in bytes
	Label  string // path or name of the mapping

	data []byte // local mapping, nil for other processes
}

// NewMappedRegion returns the Region for a mapping of this process.
func NewMappedRegion(data []byte, label string) *Region {
	r := &Region{
		Pid:    SelfPid,
		Length: int64(len(data)),
		Label:  label,
		data:   data,
	}
	if len(data) > 0 {
		r.Base = uint64(uintptr(unsafe.Pointer(&data[0])))
	}
	return r
}

// NewProcessRegion returns the Region for [start, end) in the address space of pid.
func NewProcessRegion(pid int, start, end uint64, label string) *Region {
	length := int64(0)
	if end > start {
		length = int64(end - start)
	}
	return &Region{
		Pid:    pid,
		Base:   start,
		Length: length,
		Label:  label,
	}
}

// End returns the address right past the last byte of the region.
func (r *Region) End() uint64 {
	return r.Base + uint64(r.Length)
}

// Local returns true if the region is mapped in this process.
func (r *Region) Local() bool {
	return r.data != nil
}

// String returns a short description of the region.
func (r *Region) String() string {
	if r.Label == "" {
		return fmt.Sprintf("%x-%x", r.Base, r.End())
	}
	return fmt.Sprintf("%x-%x %s", r.Base, r.End(), r.Label)
}

// touchSink keeps page touching from being optimized away.
var touchSink byte

// touch reads one byte of every page in pr, faulting it in if necessary.
// Only local mappings can be touched.
func (r *Region) touch(pr PageRange, pageSize int64) {
	if r.data == nil {
		return
	}
	var sum byte
	for i := pr.Start; i <= pr.End; i++ {
		sum += r.data[int64(i)*pageSize]
	}
	touchSink = sum
}

// pageAddrs returns the address of every page in pr.
func (r *Region) pageAddrs(pr PageRange, pageSize int64) []uintptr {
	pages := make([]uintptr, 0, pr.Count())
	for i := pr.Start; i <= pr.End; i++ {
		pages = append(pages, uintptr(r.Base+uint64(int64(i)*pageSize)))
	}
	return pages
}

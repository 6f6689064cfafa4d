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
	"os"
	"syscall"

	"github.com/pkg/errors"
)

// Request describes what to do with the pages of a region.
type Request struct {
	Start int64 // first byte offset within the region
	End   int64 // last byte offset, ToEnd for the rest of the region
	Node  int   // node to move pages to, NoNode to only query placement
	Mode  Mode  // migration mode
}

// QueryRequest returns a Request querying the placement of whole regions.
func QueryRequest() Request {
	return Request{Start: 0, End: ToEnd, Node: NoNode}
}

// MoveRequest returns a Request moving whole regions to node.
func MoveRequest(node int, mode Mode) Request {
	return Request{Start: 0, End: ToEnd, Node: node, Mode: mode}
}

// Migrating returns true if the request asks pages to be moved.
func (r Request) Migrating() bool {
	return r.Node != NoNode
}

// Flags returns the move_pages flags for the request. Queries pass no
// flags, as MPOL_MF_MOVE_ALL needs CAP_SYS_NICE even without a node list.
func (r Request) Flags() int {
	if !r.Migrating() {
		return 0
	}
	return r.Mode.Flags()
}

// String returns a short description of the request.
func (r Request) String() string {
	end := "end"
	if r.End >= 0 {
		end = fmt.Sprintf("0x%x", r.End)
	}
	if !r.Migrating() {
		return fmt.Sprintf("query 0x%x-%s", r.Start, end)
	}
	return fmt.Sprintf("move 0x%x-%s to node %d (%s)", r.Start, end, r.Node, r.Mode)
}

// RegionReport is the placement of the requested pages of one region.
type RegionReport struct {
	Region     *Region
	Pages      PageRange
	Runs       []Run
	Unmigrated int // pages the kernel reported it could not migrate
}

// Walker queries or migrates the pages of a single region.
type Walker struct {
	mover    Mover
	pageSize int64
}

// NewWalker creates a Walker using the given Mover and page size. A nil
// mover selects the kernel and a non-positive page size the system one.
func NewWalker(mover Mover, pageSize int64) *Walker {
	if mover == nil {
		mover = KernelMover{}
	}
	if pageSize <= 0 {
		pageSize = int64(os.Getpagesize())
	}
	return &Walker{
		mover:    mover,
		pageSize: pageSize,
	}
}

// PageSize returns the page size the Walker operates with.
func (w *Walker) PageSize() int64 {
	return w.pageSize
}

// Walk resolves, and if requested migrates, the pages of the region
// covering the requested byte range, compressing per-page results into
// runs. Pages of local regions are touched before the placement call, as
// only resident pages have a well-defined placement.
func (w *Walker) Walk(region *Region, req Request) (*RegionReport, error) {
	if region.Base%uint64(w.pageSize) != 0 {
		return nil, placementError(ErrUnalignedMapping, "%s: base address 0x%x", region.Label, region.Base)
	}

	pr, err := ComputePageRange(req.Start, req.End, region.Length, w.pageSize)
	if err != nil {
		return nil, err
	}
	if last := PageCount(region.Length, w.pageSize) - 1; pr.End > last {
		return nil, placementError(ErrInvalidRange, "%s: pages %s past last page %d",
			region.Label, pr, last)
	}

	region.touch(pr, w.pageSize)

	pages := region.pageAddrs(pr, w.pageSize)
	var nodes []int
	if req.Migrating() {
		nodes = make([]int, len(pages))
		for i := range nodes {
			nodes[i] = req.Node
		}
	}

	log.Debug("%s: %s, %d pages from %d", region.Label, req, len(pages), pr.Start)

	unmigrated, status, err := w.mover.MovePages(region.Pid, pages, nodes, req.Flags())
	if err != nil {
		return nil, &PlacementError{Label: region.Label, Pid: region.Pid, Err: err}
	}
	if len(status) != len(pages) {
		return nil, &PlacementError{Label: region.Label, Pid: region.Pid,
			Err: errors.Errorf("got %d results for %d pages", len(status), len(pages))}
	}

	return &RegionReport{
		Region:     region,
		Pages:      pr,
		Runs:       Compress(status, pr.Start),
		Unmigrated: unmigrated,
	}, nil
}

// PlacementError is a failure of the placement call for a region.
type PlacementError struct {
	Label string
	Pid   int
	Err   error
}

// Error returns the error text, in C library style for system errors.
func (e *PlacementError) Error() string {
	if errno, ok := e.Err.(syscall.Errno); ok {
		return Strerror(-int(errno))
	}
	return e.Err.Error()
}

// Is matches ErrPlacement.
func (e *PlacementError) Is(target error) bool {
	return target == ErrPlacement
}

// Unwrap returns the underlying error.
func (e *PlacementError) Unwrap() error {
	return e.Err
}

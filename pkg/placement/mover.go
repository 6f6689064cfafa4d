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
	"strings"

	"github.com/pkg/errors"
)

const (
	// move_pages syscall flags
	// MPOL_MF_MOVE - only move pages exclusive to this process.
	MPOL_MF_MOVE = 1 << 1
	// MPOL_MF_MOVE_ALL - move every page in the mapping, requires CAP_SYS_NICE.
	MPOL_MF_MOVE_ALL = 1 << 2

	// NoNode is the desired node of a pure placement query.
	NoNode = -1
	// SelfPid makes the primitive operate on the calling process.
	SelfPid = 0
)

// Mover queries or changes the NUMA node of a batch of pages. It has
// the semantics of move_pages(2): with nil nodes the current node of
// each page is reported, otherwise pages[i] is moved to nodes[i]. The
// returned status has one entry per page, either a node id or a negated
// errno. The returned count is the number of pages the kernel did not
// migrate. A non-nil error means the call itself failed.
type Mover interface {
	MovePages(pid int, pages []uintptr, nodes []int, flags int) (int, []int, error)
}

// MoverFunc adapts an ordinary function to the Mover interface.
type MoverFunc func(pid int, pages []uintptr, nodes []int, flags int) (int, []int, error)

// MovePages calls f(pid, pages, nodes, flags).
func (f MoverFunc) MovePages(pid int, pages []uintptr, nodes []int, flags int) (int, []int, error) {
	return f(pid, pages, nodes, flags)
}

// KernelMover is the Mover backed by the move_pages system call.
type KernelMover struct{}

// MovePages implements Mover for KernelMover.
func (KernelMover) MovePages(pid int, pages []uintptr, nodes []int, flags int) (int, []int, error) {
	if nodes != nil && len(nodes) != len(pages) {
		return 0, nil, errors.Errorf("%d target nodes given for %d pages", len(nodes), len(pages))
	}
	return movePagesSyscall(pid, uint(len(pages)), pages, nodes, flags)
}

// Mode selects how strictly a migration is carried out.
type Mode int

const (
	// ModeStrict moves every page of the range, shared or not.
	ModeStrict Mode = iota
	// ModeBestEffort moves only pages that can be moved, others keep their node.
	ModeBestEffort
)

// Flags returns the move_pages flags implementing the mode.
func (m Mode) Flags() int {
	if m == ModeBestEffort {
		return MPOL_MF_MOVE
	}
	return MPOL_MF_MOVE_ALL
}

// String returns the configuration name of the mode.
func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeBestEffort:
		return "best-effort"
	}
	return fmt.Sprintf("<invalid mode %d>", int(m))
}

// ParseMode parses a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return ModeStrict, nil
	case "best-effort", "besteffort":
		return ModeBestEffort, nil
	}
	return ModeStrict, errors.Errorf("invalid migration mode %q, expected strict or best-effort", s)
}

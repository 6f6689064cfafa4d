//go:build linux
// +build linux

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
	"math"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

func movePagesSyscall(pid int, count uint, pages []uintptr, nodes []int, flags int) (int, []int, error) {

	// syscall:
	// long move_pages(int pid, unsigned long count, void **pages,
	//                 const int *nodes, int *status, int flags);

	if count == 0 {
		return 0, []int{}, nil
	}

	// nodes and status are arrays of C int, which is 32 bits on Linux.
	var cNodes []int32
	nodesPtr := unsafe.Pointer(nil)
	if nodes != nil {
		cNodes = make([]int32, len(nodes))
		for i, node := range nodes {
			if node < 0 || node > math.MaxInt16 {
				return 0, nil, errors.Errorf("invalid target node %d", node)
			}
			cNodes[i] = int32(node)
		}
		nodesPtr = unsafe.Pointer(&cNodes[0])
	}

	cStatus := make([]int32, count)

	ret, _, en := unix.Syscall6(unix.SYS_MOVE_PAGES,
		uintptr(pid),
		uintptr(count),
		uintptr(unsafe.Pointer(&pages[0])),
		uintptr(nodesPtr),
		uintptr(unsafe.Pointer(&cStatus[0])),
		uintptr(flags))

	runtime.KeepAlive(pages)
	runtime.KeepAlive(cNodes)

	if en != 0 {
		return 0, nil, en
	}

	status := make([]int, count)
	for i := range cStatus {
		status[i] = int(cStatus[i])
	}

	return int(ret), status, nil
}

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

// Package sysfs discovers the NUMA topology of the system from sysfs.
package sysfs

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"k8s.io/utils/cpuset"
)

const (
	// DefaultRoot is where sysfs is normally mounted.
	DefaultRoot = "/sys"
	// nodeDir is the directory of NUMA nodes relative to the sysfs root.
	nodeDir = "devices/system/node"
)

// System gives access to the NUMA nodes of a sysfs tree.
type System struct {
	root string
}

// New returns a System for sysfs mounted at root.
func New(root string) *System {
	return &System{root: root}
}

// OnlineNodes returns the ids of the online NUMA nodes, in increasing order.
func (s *System) OnlineNodes() ([]int, error) {
	return s.nodeList("online")
}

// MemoryNodes returns the ids of the NUMA nodes with memory, in increasing order.
func (s *System) MemoryNodes() ([]int, error) {
	return s.nodeList("has_memory")
}

// NodeMemInfo is the memory usage of a single node.
type NodeMemInfo struct {
	Total uint64 // bytes
	Free  uint64 // bytes
}

// MemInfo returns the memory usage of the given node.
func (s *System) MemInfo(node int) (NodeMemInfo, error) {
	path := filepath.Join(s.root, nodeDir, "node"+strconv.Itoa(node), "meminfo")
	f, err := os.Open(path)
	if err != nil {
		return NodeMemInfo{}, sysfsError(path, err, "failed to read sysfs entry")
	}
	defer f.Close()

	// Node 0 MemTotal:       32718576 kB
	info := NodeMemInfo{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 4 {
			continue
		}
		var dst *uint64
		switch fields[2] {
		case "MemTotal:":
			dst = &info.Total
		case "MemFree:":
			dst = &info.Free
		default:
			continue
		}
		v, err := strconv.ParseUint(fields[3], 10, 64)
		if err != nil {
			return NodeMemInfo{}, sysfsError(path, err, "invalid %s entry", fields[2])
		}
		if len(fields) > 4 && fields[4] == "kB" {
			v *= 1024
		}
		*dst = v
	}
	if err := scanner.Err(); err != nil {
		return NodeMemInfo{}, sysfsError(path, err, "failed to read sysfs entry")
	}

	return info, nil
}

// nodeList reads and parses a node list entry such as 0-1,3.
func (s *System) nodeList(entry string) ([]int, error) {
	path := filepath.Join(s.root, nodeDir, entry)
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, sysfsError(path, err, "failed to read sysfs entry")
	}

	nodes, err := cpuset.Parse(strings.TrimSpace(string(blob)))
	if err != nil {
		return nil, sysfsError(path, err, "invalid node list")
	}

	return nodes.List(), nil
}

// sysfsError returns a formatted sysfs-specific error.
func sysfsError(path string, err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, "sysfs: %s: "+format, append([]interface{}{path}, args...)...)
}

// FormatNodes returns the node list in sysfs format.
func FormatNodes(nodes []int) string {
	return cpuset.New(nodes...).String()
}

// Contains returns true if node is in nodes.
func Contains(nodes []int, node int) bool {
	for _, n := range nodes {
		if n == node {
			return true
		}
	}
	return false
}

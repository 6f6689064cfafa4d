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

// Package procmaps reads the memory mappings of processes from /proc.
package procmaps

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/procfs"

	"github.com/intel/numaplace/pkg/placement"
)

// DefaultMountPoint is where the proc filesystem is normally mounted.
const DefaultMountPoint = procfs.DefaultMountPoint

// Entry is a single mapping of a process.
type Entry struct {
	Start  uint64 // first address
	End    uint64 // address right past the mapping
	Perms  string // permissions, for instance rw-p
	Offset uint64 // offset into the mapped file
	Dev    string // major:minor of the mapped file
	Inode  uint64 // inode of the mapped file, 0 for anonymous mappings
	Path   string // mapped file or pseudo-path, empty for anonymous mappings
}

// Region returns the placement Region of the mapping in process pid.
func (e Entry) Region(pid int) *placement.Region {
	return placement.NewProcessRegion(pid, e.Start, e.End, e.Path)
}

// Size returns the size of the mapping in bytes.
func (e Entry) Size() uint64 {
	if e.End < e.Start {
		return 0
	}
	return e.End - e.Start
}

// Proc gives access to the mappings of processes.
type Proc struct {
	root string
	fs   procfs.FS
}

// New returns a Proc for the proc filesystem mounted at root.
func New(root string) (*Proc, error) {
	fs, err := procfs.NewFS(root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to access proc filesystem at %s", root)
	}
	return &Proc{root: root, fs: fs}, nil
}

// Command returns the command name of pid.
func (p *Proc) Command(pid int) (string, error) {
	proc, err := p.fs.Proc(pid)
	if err != nil {
		return "", errors.WithStack(err)
	}
	comm, err := proc.Comm()
	if err != nil {
		return "", errors.WithStack(err)
	}
	return comm, nil
}

// Read returns the mappings of pid in listing order.
func (p *Proc) Read(pid int) ([]Entry, error) {
	f, err := os.Open(p.MapsPath(pid))
	if err != nil {
		if pe, ok := err.(*os.PathError); ok {
			err = pe.Err
		}
		return nil, errors.Wrap(err, "open")
	}
	defer f.Close()

	return Parse(f)
}

// MapsPath returns the path of the maps listing of pid.
func (p *Proc) MapsPath(pid int) string {
	return filepath.Join(p.root, strconv.Itoa(pid), "maps")
}

// Parse parses a maps listing, keeping the order of entries.
func Parse(r io.Reader) ([]Entry, error) {
	entries := []Entry{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1024*1024)

	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := parseLine(line)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", lineNo)
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read")
	}

	return entries, nil
}

// parseLine parses a single maps line, for instance
//
//	55d74e76d000-55d74e968000 rw-p 00000000 00:00 0         [heap]
func parseLine(line string) (Entry, error) {
	var (
		e      Entry
		fields [5]string
		err    error
	)

	rest := line
	for i := range fields {
		fields[i], rest = nextField(rest)
		if fields[i] == "" {
			return Entry{}, fmt.Errorf("invalid mapping %q", line)
		}
	}
	e.Path = strings.TrimLeft(rest, " ")

	addrs := strings.SplitN(fields[0], "-", 2)
	if len(addrs) != 2 {
		return Entry{}, fmt.Errorf("invalid address range %q", fields[0])
	}
	if e.Start, err = strconv.ParseUint(addrs[0], 16, 64); err != nil {
		return Entry{}, fmt.Errorf("invalid start address %q", addrs[0])
	}
	if e.End, err = strconv.ParseUint(addrs[1], 16, 64); err != nil {
		return Entry{}, fmt.Errorf("invalid end address %q", addrs[1])
	}
	if e.End < e.Start {
		return Entry{}, fmt.Errorf("invalid address range %q", fields[0])
	}

	e.Perms = fields[1]
	if e.Offset, err = strconv.ParseUint(fields[2], 16, 64); err != nil {
		return Entry{}, fmt.Errorf("invalid offset %q", fields[2])
	}
	e.Dev = fields[3]
	if e.Inode, err = strconv.ParseUint(fields[4], 10, 64); err != nil {
		return Entry{}, fmt.Errorf("invalid inode %q", fields[4])
	}

	return e, nil
}

// nextField splits off the next space-separated field of s.
func nextField(s string) (string, string) {
	s = strings.TrimLeft(s, " ")
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx], s[idx:]
	}
	return s, ""
}

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

// Package shmem creates, maps and removes POSIX shared memory segments.
package shmem

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/placement"
)

const (
	// DefaultRoot is where the system keeps POSIX shared memory segments.
	DefaultRoot = "/dev/shm"
	// segment permissions on creation
	createMode = 0777
	// byte segments are filled with to materialize their pages
	fillByte = '0'
)

var log = logger.Get("shmem")

// Dir is a directory of shared memory segments.
type Dir string

// Segment is a shared memory segment mapped read-only into this process.
type Segment struct {
	Name string // segment name as given
	Path string // path of the backing file
	Size int64  // size in bytes
	fd   int
	data []byte
}

// Create creates a segment in the default directory.
func Create(name string, size int64) error {
	return Dir(DefaultRoot).Create(name, size)
}

// Open opens and maps a segment in the default directory.
func Open(name string) (*Segment, error) {
	return Dir(DefaultRoot).Open(name)
}

// Unlink removes a segment from the default directory.
func Unlink(name string) error {
	return Dir(DefaultRoot).Unlink(name)
}

// Path returns the path of the file backing the named segment. Names
// follow shm_open(3): an optional leading slash and no other slashes.
func (d Dir) Path(name string) (string, error) {
	n := strings.TrimPrefix(name, "/")
	if n == "" || n == "." || n == ".." || strings.Contains(n, "/") {
		return "", errors.Wrapf(unix.EINVAL, "invalid shared memory name %q", name)
	}
	return filepath.Join(string(d), n), nil
}

// Create creates a new segment of the given size and materializes all of
// its pages by writing them. It fails if the segment already exists.
func (d Dir) Create(name string, size int64) (retErr error) {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	if size < 0 {
		return errors.Wrapf(unix.EINVAL, "invalid size %d", size)
	}

	fd, err := unix.Open(path, unix.O_CREAT|unix.O_EXCL|unix.O_RDWR|unix.O_CLOEXEC, createMode)
	if err != nil {
		return errors.WithStack(err)
	}
	defer unix.Close(fd)

	// don't leave half-initialized segments behind
	defer func() {
		if retErr != nil {
			if err := unix.Unlink(path); err != nil {
				log.Warn("%s: failed to remove after error: %v", path, err)
			}
		}
	}()

	if err := unix.Ftruncate(fd, size); err != nil {
		return errors.Wrapf(err, "unable to truncate to 0x%x bytes", size)
	}

	if size > 0 {
		data, err := unix.Mmap(fd, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
		if err != nil {
			return errors.Wrap(err, "failed to map")
		}
		for i := range data {
			data[i] = fillByte
		}
		if err := unix.Munmap(data); err != nil {
			return errors.Wrap(err, "failed to unmap")
		}
	}

	log.Debug("created %s, 0x%x bytes", path, size)

	return nil
}

// Open opens the named segment and maps it read-only. Empty segments are
// not mapped. The segment must be closed with Close.
func (d Dir) Open(name string) (*Segment, error) {
	path, err := d.Path(name)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	seg := &Segment{
		Name: name,
		Path: path,
		fd:   fd,
	}

	st := unix.Stat_t{}
	if err := unix.Fstat(fd, &st); err != nil {
		seg.Close()
		return nil, errors.Wrap(err, "could not stat")
	}
	seg.Size = st.Size

	if seg.Size > 0 {
		seg.data, err = unix.Mmap(fd, 0, int(seg.Size), unix.PROT_READ, unix.MAP_SHARED)
		if err != nil {
			seg.Close()
			return nil, errors.Wrap(err, "failed to map")
		}
	}

	log.Debug("opened %s, 0x%x bytes", path, seg.Size)

	return seg, nil
}

// Unlink removes the named segment.
func (d Dir) Unlink(name string) error {
	path, err := d.Path(name)
	if err != nil {
		return err
	}
	if err := unix.Unlink(path); err != nil {
		return errors.Wrap(err, "could not unlink")
	}
	log.Debug("removed %s", path)
	return nil
}

// Bytes returns the mapped contents of the segment.
func (s *Segment) Bytes() []byte {
	return s.data
}

// Region returns the placement Region of the mapped segment.
func (s *Segment) Region() *placement.Region {
	return placement.NewMappedRegion(s.data, s.Name)
}

// Close unmaps and closes the segment.
func (s *Segment) Close() error {
	var err error
	if s.data != nil {
		err = unix.Munmap(s.data)
		s.data = nil
	}
	if s.fd >= 0 {
		if cerr := unix.Close(s.fd); err == nil {
			err = cerr
		}
		s.fd = -1
	}
	return errors.Wrap(err, "failed to release segment")
}

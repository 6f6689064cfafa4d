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

package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/intel/numaplace/pkg/tool"
)

type created struct {
	name string
	size int64
}

func testRun(args []string, err error) (int, *created, string) {
	fs := flag.NewFlagSet("create-shmem", flag.ContinueOnError)
	t := tool.NewWithFlagSet("create-shmem", "<path> [size]", 1, 2, fs)
	stderr := &bytes.Buffer{}
	t.SetOutput(&bytes.Buffer{}, stderr)

	var c *created
	code := run(t, args, func(name string, size int64) error {
		c = &created{name: name, size: size}
		return err
	})
	return code, c, stderr.String()
}

func TestCreate(t *testing.T) {
	code, c, _ := testRun([]string{"/test"}, nil)
	require.Equal(t, tool.ExitOK, code)
	require.Equal(t, &created{name: "/test", size: 1024 * int64(os.Getpagesize())}, c)

	code, c, _ = testRun([]string{"/test", "0x3000"}, nil)
	require.Equal(t, tool.ExitOK, code)
	require.Equal(t, int64(0x3000), c.size)

	code, c, _ = testRun([]string{"/test", "2M"}, nil)
	require.Equal(t, tool.ExitOK, code)
	require.Equal(t, int64(2<<20), c.size)
}

func TestCreateUsage(t *testing.T) {
	code, c, stderr := testRun([]string{}, nil)
	require.Equal(t, tool.ExitUsage, code)
	require.Nil(t, c)
	require.Equal(t, "usage: create-shmem <path> [size]\n", stderr)

	code, _, _ = testRun([]string{"/a", "1", "2"}, nil)
	require.Equal(t, tool.ExitUsage, code)
}

func TestCreateBadSize(t *testing.T) {
	code, c, stderr := testRun([]string{"/test", "lots"}, nil)
	require.Equal(t, tool.ExitFailure, code)
	require.Nil(t, c)
	require.Contains(t, stderr, "create-shmem: error: lots: ")
	require.Contains(t, stderr, "usage: create-shmem <path> [size]\n")
}

func TestCreateFailure(t *testing.T) {
	code, _, stderr := testRun([]string{"/test"}, errors.WithStack(unix.EEXIST))
	require.Equal(t, tool.ExitFailure, code)
	require.Equal(t, "create-shmem: error: /test: File exists\n", stderr)
}

func TestCreateConfigSize(t *testing.T) {
	cfg := filepath.Join(t.TempDir(), "numaplace.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("segmentSize: 64k\n"), 0644))

	code, c, _ := testRun([]string{"-config", cfg, "/test"}, nil)
	require.Equal(t, tool.ExitOK, code)
	require.Equal(t, int64(64<<10), c.size)

	code, c, _ = testRun([]string{"-config", cfg, "/test", "8192"}, nil)
	require.Equal(t, tool.ExitOK, code)
	require.Equal(t, int64(8192), c.size)
}

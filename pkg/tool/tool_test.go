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

package tool

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"

	"github.com/intel/numaplace/pkg/placement"
)

func newTestTool(minArgs, maxArgs int) (*Tool, *bytes.Buffer, *bytes.Buffer) {
	fs := flag.NewFlagSet("test-tool", flag.ContinueOnError)
	t := NewWithFlagSet("test-tool", "<path> [size]", minArgs, maxArgs, fs)
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	t.SetOutput(stdout, stderr)
	return t, stdout, stderr
}

func TestParseArgCount(t *testing.T) {
	tl, _, stderr := newTestTool(1, 2)

	args, err := tl.Parse([]string{"/test", "4096"})
	require.NoError(t, err)
	require.Equal(t, []string{"/test", "4096"}, args)

	tl, _, stderr = newTestTool(1, 2)
	_, err = tl.Parse([]string{})
	require.ErrorIs(t, err, ErrUsage)
	require.Equal(t, ExitUsage, tl.ParseFail(err))
	require.Equal(t, "usage: test-tool <path> [size]\n", stderr.String())

	tl, _, _ = newTestTool(1, 2)
	_, err = tl.Parse([]string{"a", "b", "c"})
	require.ErrorIs(t, err, ErrUsage)
}

func TestHelp(t *testing.T) {
	tl, _, stderr := newTestTool(1, 2)
	tl.EnableMetrics()

	_, err := tl.Parse([]string{"-h"})
	require.ErrorIs(t, err, flag.ErrHelp)
	require.Equal(t, ExitOK, tl.ParseFail(err))
	require.True(t, strings.HasPrefix(stderr.String(), "usage: test-tool <path> [size]\n"))
	require.Contains(t, stderr.String(), "-config")
	require.Contains(t, stderr.String(), "-metrics-file")

	tl, _, stderr = newTestTool(1, 2)
	_, err = tl.Parse([]string{"-no-such-option", "/test"})
	require.ErrorIs(t, err, ErrOption)
	require.Equal(t, ExitUsage, tl.ParseFail(err))
	require.Contains(t, stderr.String(), "flag provided but not defined: -no-such-option\n")
	require.Contains(t, stderr.String(), "usage: test-tool <path> [size]\n")
	require.NotContains(t, stderr.String(), "error:")
}

func TestFail(t *testing.T) {
	tl, _, stderr := newTestTool(1, 1)

	code := tl.Fail("/test", errors.Wrap(unix.EEXIST, "could not create"))
	require.Equal(t, ExitFailure, code)
	require.Equal(t, "test-tool: error: /test: could not create: File exists\n", stderr.String())

	stderr.Reset()
	tl.Fail("", errors.New("plain failure"))
	require.Equal(t, "test-tool: error: plain failure\n", stderr.String())
}

func TestArgFail(t *testing.T) {
	tl, _, stderr := newTestTool(2, 4)

	_, err := ParseInt("node0")
	require.Equal(t, ExitFailure, tl.ArgFail("node0", err))
	require.Equal(t,
		"test-tool: error: node0: Invalid argument\n"+
			"usage: test-tool <path> [size]\n",
		stderr.String())
}

func TestParseInt(t *testing.T) {
	for s, expected := range map[string]int64{
		"0":      0,
		"17":     17,
		"0x1000": 0x1000,
		"010":    8,
		"-1":     -1,
	} {
		v, err := ParseInt(s)
		require.NoError(t, err, s)
		require.Equal(t, expected, v, s)
	}

	_, err := ParseInt("12abc")
	require.ErrorIs(t, err, unix.EINVAL)
	_, err = ParseInt("0x10000000000000000")
	require.ErrorIs(t, err, unix.ERANGE)
}

func TestErrorText(t *testing.T) {
	require.Equal(t, "No such file or directory", ErrorText(unix.ENOENT))
	require.Equal(t, "failed to map: Cannot allocate memory",
		ErrorText(errors.Wrap(unix.ENOMEM, "failed to map")))
	pe := &placement.PlacementError{Label: "x", Err: unix.EPERM}
	require.Equal(t, "Operation not permitted", ErrorText(pe))
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "numaplace.yaml")
	metricsFile := filepath.Join(dir, "from-config.prom")
	require.NoError(t, os.WriteFile(cfgFile,
		[]byte("segmentSize: 2M\nmigrationMode: best-effort\nmetricsFile: "+metricsFile+"\n"), 0644))

	tl, _, _ := newTestTool(0, 0)
	tl.EnableMetrics()
	_, err := tl.Parse([]string{"-config", cfgFile})
	require.NoError(t, err)
	require.Equal(t, int64(2<<20), tl.Config().Size(0))
	require.Equal(t, placement.ModeBestEffort, tl.Config().Mode())
	require.Equal(t, metricsFile, tl.MetricsFile())

	// explicit option wins over the file
	explicit := filepath.Join(dir, "explicit.prom")
	tl, _, _ = newTestTool(0, 0)
	tl.EnableMetrics()
	_, err = tl.Parse([]string{"-config", cfgFile, "-metrics-file", explicit})
	require.NoError(t, err)
	require.Equal(t, explicit, tl.MetricsFile())
	require.True(t, tl.Explicit("metrics-file"))
	require.False(t, tl.Explicit("no-such-option"))

	tl, _, _ = newTestTool(0, 0)
	_, err = tl.Parse([]string{"-config", filepath.Join(dir, "missing.yaml")})
	require.Error(t, err)
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.prom")
	tl, _, _ := newTestTool(0, 0)
	tl.EnableMetrics()
	_, err := tl.Parse([]string{"-metrics-file", path})
	require.NoError(t, err)

	report := &placement.Report{
		Node:     placement.NoNode,
		PageSize: 4096,
		Regions: []*placement.RegionReport{{
			Region: placement.NewProcessRegion(1, 0x1000, 0x2000, "x"),
			Pages:  placement.PageRange{Start: 0, End: 0},
			Runs:   []placement.Run{{Start: 0, End: 0, Code: 0}},
		}},
	}
	require.NoError(t, tl.WriteMetrics(report))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), `numaplace_region_pages{node="0",path="x",region="1000-2000"} 1`)
}

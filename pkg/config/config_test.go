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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intel/numaplace/pkg/placement"
)

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
segmentSize: 4M
migrationMode: best-effort
metricsFile: /tmp/numaplace.prom
logLevel: warning
logDebug: on:shmem
`))
	require.NoError(t, err)
	require.Equal(t, &Config{
		SegmentSize:   "4M",
		MigrationMode: "best-effort",
		MetricsFile:   "/tmp/numaplace.prom",
		LogLevel:      "warning",
		LogDebug:      "on:shmem",
	}, cfg)
	require.Equal(t, int64(4<<20), cfg.Size(4096))
	require.Equal(t, placement.ModeBestEffort, cfg.Mode())
}

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte(""))
	require.NoError(t, err)
	require.Equal(t, int64(4096), cfg.Size(4096))
	require.Equal(t, placement.ModeStrict, cfg.Mode())
}

func TestParseInvalid(t *testing.T) {
	tcases := []struct {
		name  string
		data  string
		error string
	}{
		{
			name:  "unknown migration mode",
			data:  "migrationMode: sometimes\n",
			error: "invalid migrationMode",
		},
		{
			name:  "bad size",
			data:  "segmentSize: 12Q\n",
			error: "invalid segmentSize",
		},
		{
			name:  "bad level",
			data:  "logLevel: chatty\n",
			error: "invalid logLevel",
		},
		{
			name:  "unknown key",
			data:  "segmentBytes: 4M\n",
			error: "failed to parse",
		},
		{
			name:  "not a map",
			data:  "- a\n- b\n",
			error: "failed to parse",
		},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.data))
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.error)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "numaplace.yaml")
	require.NoError(t, os.WriteFile(path, []byte("segmentSize: 0x2000\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, int64(0x2000), cfg.Size(0))

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to read configuration file")
}

func TestApplyLoggingRespectsFlags(t *testing.T) {
	cfg := &Config{Logger: "no-such-backend"}

	// backend given on the command line, file setting ignored
	require.NoError(t, cfg.ApplyLogging(func(string) bool { return true }))
	require.Error(t, cfg.ApplyLogging(func(string) bool { return false }))
}

func TestParseSize(t *testing.T) {
	tcases := []struct {
		input    string
		expected int64
		invalid  bool
	}{
		{input: "4096", expected: 4096},
		{input: "0x1000", expected: 4096},
		{input: "0XAB", expected: 0xab},
		{input: "010", expected: 8},
		{input: "4k", expected: 4096},
		{input: "4K", expected: 4096},
		{input: "2M", expected: 2 << 20},
		{input: "1GB", expected: 1 << 30},
		{input: "1T", expected: 1 << 40},
		{input: " 16 ", expected: 16},
		{input: "", invalid: true},
		{input: "B", invalid: true},
		{input: "12Q", invalid: true},
		{input: "-1", invalid: true},
		{input: "k", invalid: true},
		{input: "99999999999T", invalid: true},
	}
	for _, tc := range tcases {
		t.Run(tc.input, func(t *testing.T) {
			size, err := ParseSize(tc.input)
			if tc.invalid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, size)
		})
	}
}

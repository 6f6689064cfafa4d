// Copyright 2019 Intel Corporation. All Rights Reserved.
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

package log

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// a test Backend that records messages for verification
type testlogger struct {
	sync.Mutex
	recorded []string
}

var testlog *testlogger

const testLoggerName = "testlogger"

var levelTags = map[Level]string{
	LevelDebug: "D:",
	LevelInfo:  "I:",
	LevelWarn:  "W:",
	LevelError: "E:",
}

func createTestLogger() Backend {
	testlog = &testlogger{}
	return testlog
}

func (l *testlogger) Name() string {
	return testLoggerName
}

func (l *testlogger) Log(level Level, source, format string, args ...interface{}) {
	l.record(level, "["+source+"] "+fmt.Sprintf(format, args...))
}

func (l *testlogger) Block(level Level, source, prefix, format string, args ...interface{}) {
	for _, line := range strings.Split(fmt.Sprintf(format, args...), "\n") {
		l.record(level, "["+source+"] "+prefix+line)
	}
}

func (l *testlogger) Sync()                  {}
func (l *testlogger) Stop()                  {}
func (l *testlogger) SetSourceAlignment(int) {}

func (l *testlogger) record(level Level, msg string) {
	l.Lock()
	defer l.Unlock()
	l.recorded = append(l.recorded, levelTags[level]+" "+msg)
}

func (l *testlogger) messages() []string {
	l.Lock()
	defer l.Unlock()
	return append([]string{}, l.recorded...)
}

func init() {
	RegisterBackend(testLoggerName, createTestLogger)
}

// setup activates a fresh recording backend with default settings.
func setup(t *testing.T) *testlogger {
	require.NoError(t, SetBackend(FmtBackendName))
	require.NoError(t, SetBackend(testLoggerName))
	SetLevel(DefaultLevel)
	require.NoError(t, EnableDebug("off:*"))
	return testlog
}

// teardown restores the default backend.
func teardown() {
	SetBackend(FmtBackendName)
	SetLevel(DefaultLevel)
}

func TestLevelFiltering(t *testing.T) {
	tb := setup(t)
	defer teardown()

	l := Get("level-test")
	SetLevel(LevelWarn)
	l.Debug("debug")
	l.Info("info")
	l.Warn("warning")
	l.Error("error %d", 1)

	require.Equal(t, []string{
		"W: [level-test] warning",
		"E: [level-test] error 1",
	}, tb.messages())
}

func TestDebugSources(t *testing.T) {
	tb := setup(t)
	defer teardown()

	a, b := Get("debug-a"), Get("debug-b")

	require.NoError(t, EnableDebug("on:*,off:debug-b"))
	require.True(t, a.DebugEnabled())
	require.False(t, b.DebugEnabled())

	a.Debug("a is debugging")
	b.Debug("b is not")

	// loggers created after the fact pick up the wildcard
	c := Get("debug-c")
	c.Debug("c is debugging")

	require.Equal(t, []string{
		"D: [debug-a] a is debugging",
		"D: [debug-c] c is debugging",
	}, tb.messages())

	old := b.EnableDebug(true)
	require.False(t, old)
	require.True(t, b.DebugEnabled())
}

func TestGetReturnsSameLogger(t *testing.T) {
	require.Equal(t, Get("same"), Get("[same]"))
	require.Equal(t, "same", Get("same").Source())
}

func TestInfoBlock(t *testing.T) {
	tb := setup(t)
	defer teardown()

	Get("block").InfoBlock("  ", "line 1\nline 2")
	require.Equal(t, []string{
		"I: [block]   line 1",
		"I: [block]   line 2",
	}, tb.messages())
}

func TestParseLevel(t *testing.T) {
	tcases := []struct {
		name    string
		value   string
		level   Level
		invalid bool
	}{
		{name: "debug", value: "debug", level: LevelDebug},
		{name: "upper case", value: "INFO", level: LevelInfo},
		{name: "warn alias", value: "warn", level: LevelWarn},
		{name: "warning", value: "warning", level: LevelWarn},
		{name: "error", value: "error", level: LevelError},
		{name: "invalid", value: "loud", invalid: true},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			level, err := ParseLevel(tc.value)
			if tc.invalid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.level, level)
		})
	}
}

func TestSourceMap(t *testing.T) {
	tcases := []struct {
		name     string
		spec     string
		expected srcmap
		invalid  bool
	}{
		{
			name:     "plain list",
			spec:     "shmem,placement",
			expected: srcmap{"shmem": true, "placement": true},
		},
		{
			name:     "all but one",
			spec:     "on:all,off:shmem",
			expected: srcmap{"*": true, "shmem": false},
		},
		{
			name:     "state carries over",
			spec:     "off:a,b",
			expected: srcmap{"a": false, "b": false},
		},
		{
			name:    "bad state",
			spec:    "maybe:a",
			invalid: true,
		},
		{
			name:    "bad entry",
			spec:    "on:a:b",
			invalid: true,
		},
	}
	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			m := make(srcmap)
			err := m.parse(tc.spec)
			if tc.invalid {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.expected, m)
		})
	}

	require.Equal(t, "on:*,off:shmem", srcmap{"*": true, "shmem": false}.String())
}

func TestFmtBackend(t *testing.T) {
	buf := &bytes.Buffer{}
	f := newFmtBackend(buf)
	f.SetSourceAlignment(6)
	f.Log(LevelWarn, "shm", "segment %s", "test")
	f.Block(LevelInfo, "placement", "  ", "a\nb")
	f.Stop()

	require.Equal(t,
		"W: [  shm ] segment test\n"+
			"I: [placement]    a\n"+
			"I: [placement]    b\n",
		buf.String())
}

func TestUnknownBackend(t *testing.T) {
	require.Error(t, SetBackend("no-such-backend"))
}

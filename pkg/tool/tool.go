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

// Package tool has the command line plumbing shared by the numaplace
// commands: option parsing, configuration, error reporting and exit codes.
package tool

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/intel/numaplace/pkg/config"
	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/metrics"
	"github.com/intel/numaplace/pkg/placement"
	_ "github.com/intel/numaplace/pkg/version" // -version
)

// Exit codes.
const (
	// ExitOK is returned on success.
	ExitOK = 0
	// ExitFailure is returned for operational failures and bad numbers.
	ExitFailure = 1
	// ExitUsage is returned for a wrong number of arguments.
	ExitUsage = 2
)

const (
	optConfig  = "config"
	optMetrics = "metrics-file"
)

var (
	// ErrUsage is returned by Parse for a wrong number of arguments.
	ErrUsage = errors.New("wrong number of arguments")
	// ErrOption is returned by Parse for options it could not parse.
	ErrOption = errors.New("invalid option")
)

// Tool is the command line of a single command.
type Tool struct {
	name        string
	usage       string
	minArgs     int
	maxArgs     int
	fs          *flag.FlagSet
	stdout      io.Writer
	stderr      io.Writer
	configFile  string
	metricsFile string
	cfg         *config.Config
}

// New creates the Tool for this process, using the global flag set.
// Usage is the synopsis of the positional arguments.
func New(usage string, minArgs, maxArgs int) *Tool {
	return NewWithFlagSet(filepath.Base(os.Args[0]), usage, minArgs, maxArgs, flag.CommandLine)
}

// NewWithFlagSet creates a Tool with the given name and flag set.
func NewWithFlagSet(name, usage string, minArgs, maxArgs int, fs *flag.FlagSet) *Tool {
	t := &Tool{
		name:    name,
		usage:   usage,
		minArgs: minArgs,
		maxArgs: maxArgs,
		fs:      fs,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		cfg:     &config.Config{},
	}
	fs.SetOutput(t.stderr)
	fs.Usage = t.UsageHelp
	fs.StringVar(&t.configFile, optConfig, "", "YAML file with default settings")
	return t
}

// EnableMetrics puts the -metrics-file option in place.
func (t *Tool) EnableMetrics() {
	t.fs.StringVar(&t.metricsFile, optMetrics, "",
		"write Prometheus metrics of the report to this file")
}

// SetOutput redirects standard output and error of the tool.
func (t *Tool) SetOutput(stdout, stderr io.Writer) {
	t.stdout, t.stderr = stdout, stderr
	t.fs.SetOutput(stderr)
}

// Name returns the program name.
func (t *Tool) Name() string {
	return t.name
}

// Flags returns the flag set of the tool for adding command specific options.
func (t *Tool) Flags() *flag.FlagSet {
	return t.fs
}

// Stdout returns where reports go.
func (t *Tool) Stdout() io.Writer {
	return t.stdout
}

// Config returns the loaded configuration, empty if none was given.
func (t *Tool) Config() *config.Config {
	return t.cfg
}

// Parse parses options and loads the configuration file, returning the
// positional arguments. A wrong number of arguments gives ErrUsage.
func (t *Tool) Parse(args []string) ([]string, error) {
	if err := t.fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, errors.Wrap(ErrOption, err.Error())
	}

	if t.configFile != "" {
		cfg, err := config.Load(t.configFile)
		if err != nil {
			return nil, err
		}
		if err := cfg.ApplyLogging(t.Explicit); err != nil {
			return nil, err
		}
		if t.metricsFile == "" && !t.Explicit(optMetrics) {
			t.metricsFile = cfg.MetricsFile
		}
		t.cfg = cfg
	}

	pos := t.fs.Args()
	if len(pos) < t.minArgs || len(pos) > t.maxArgs {
		return nil, ErrUsage
	}
	return pos, nil
}

// Explicit returns true if the named option was given on the command line.
func (t *Tool) Explicit(name string) bool {
	set := false
	t.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

// Usage prints the usage of the tool.
func (t *Tool) Usage() {
	fmt.Fprintf(t.stderr, "usage: %s %s\n", t.name, t.usage)
}

// UsageHelp prints the usage of the tool with all options.
func (t *Tool) UsageHelp() {
	t.Usage()
	t.fs.PrintDefaults()
}

// Fail reports an error in context and returns ExitFailure.
func (t *Tool) Fail(context string, err error) int {
	if context == "" {
		fmt.Fprintf(t.stderr, "%s: error: %s\n", t.name, ErrorText(err))
	} else {
		fmt.Fprintf(t.stderr, "%s: error: %s: %s\n", t.name, context, ErrorText(err))
	}
	return ExitFailure
}

// ArgFail reports an invalid numeric argument, prints usage and returns ExitFailure.
func (t *Tool) ArgFail(arg string, err error) int {
	t.Fail(arg, err)
	t.Usage()
	return ExitFailure
}

// ParseFail handles an error returned by Parse and returns the exit code.
func (t *Tool) ParseFail(err error) int {
	if errors.Is(err, ErrUsage) {
		t.Usage()
		return ExitUsage
	}
	// the flag set has already printed the error and help
	if errors.Is(err, flag.ErrHelp) {
		return ExitOK
	}
	if errors.Is(err, ErrOption) {
		return ExitUsage
	}
	return t.Fail("", err)
}

// WriteMetrics writes the metrics of the report if a metrics file was given.
func (t *Tool) WriteMetrics(report *placement.Report) error {
	if t.metricsFile == "" || report == nil {
		return nil
	}
	reg, err := metrics.Collect(report)
	if err != nil {
		return err
	}
	return metrics.WriteFile(t.metricsFile, reg)
}

// MetricsFile returns the metrics file in use, if any.
func (t *Tool) MetricsFile() string {
	return t.metricsFile
}

// Exit flushes logging and exits with the given code.
func (t *Tool) Exit(code int) {
	logger.Sync()
	os.Exit(code)
}

// ParseInt parses an integer argument in C syntax: 0x prefix for
// hexadecimal and a leading 0 for octal.
func ParseInt(s string) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			return 0, unix.ERANGE
		}
		return 0, unix.EINVAL
	}
	return v, nil
}

// ErrorText returns the text of an error with any system error in the
// chain replaced by its C library style message.
func ErrorText(err error) string {
	msg := err.Error()
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if text := errno.Error(); strings.HasSuffix(msg, text) {
			return strings.TrimSuffix(msg, text) + placement.Strerror(-int(errno))
		}
	}
	return msg
}

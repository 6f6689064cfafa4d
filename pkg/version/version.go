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

// Package version tags the tools with version metadata and puts a
// -version command line option in place for printing it.
//
// The metadata is stamped at link time, for instance:
//
//	go build -ldflags \
//	  "-X=github.com/intel/numaplace/pkg/version.Version=$(git describe) \
//	   -X=github.com/intel/numaplace/pkg/version.Build=$(git rev-parse HEAD)"
//
// Unstamped binaries fall back to the module version recorded by go build.
package version

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
)

const unknown = "unknown"

// Default values of variables we'll override with the linker.
var (
	// Version is our version as given by 'git describe'.
	Version = ""
	// Build is the SHA1 of the repository we've been built from.
	Build = ""
)

// Info returns the version and build id of this binary.
func Info() (string, string) {
	version, build := Version, Build
	if version == "" || build == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			if version == "" && bi.Main.Version != "" {
				version = bi.Main.Version
			}
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" && build == "" {
					build = s.Value
				}
			}
		}
	}
	if version == "" {
		version = unknown
	}
	if build == "" {
		build = unknown
	}
	return version, build
}

// PrintVersionInfo prints version information about this binary.
func PrintVersionInfo(w io.Writer) {
	version, build := Info()
	fmt.Fprintf(w, "%s version information:\n", filepath.Base(os.Args[0]))
	fmt.Fprintf(w, "  - version: %s\n", version)
	fmt.Fprintf(w, "  - build:   %s\n", build)
}

// versionFlag hooks into flag.Value.Set of -version during commandline parsing.
type versionFlag struct{}

// IsBoolFlag tell flag that we only have optional arguments.
func (versionFlag) IsBoolFlag() bool {
	return true
}

// Set prints version information and exits if the flag is true.
func (versionFlag) Set(value string) error {
	print, err := strconv.ParseBool(value)
	if err != nil {
		return err
	}
	if print {
		PrintVersionInfo(os.Stdout)
		os.Exit(0)
	}

	return nil
}

// String is our dummy flag.Value stringification function.
func (versionFlag) String() string {
	return "false"
}

// Put in place a '-version' command line option for us.
func init() {
	flag.Var(versionFlag{}, "version", "print version information about "+filepath.Base(os.Args[0]))
}

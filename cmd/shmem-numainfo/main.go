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
	"fmt"
	"os"

	"github.com/pkg/errors"

	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/placement"
	"github.com/intel/numaplace/pkg/shmem"
	"github.com/intel/numaplace/pkg/tool"
)

var log = logger.Get("shmem-numainfo")

// env is where segments are found and how pages are queried.
type env struct {
	dir   shmem.Dir
	mover placement.Mover
}

func main() {
	t := tool.New("<path>", 1, 1)
	t.EnableMetrics()
	t.Exit(run(t, os.Args[1:], env{dir: shmem.DefaultRoot, mover: placement.KernelMover{}}))
}

func run(t *tool.Tool, args []string, e env) int {
	pos, err := t.Parse(args)
	if err != nil {
		return t.ParseFail(err)
	}
	path := pos[0]

	seg, err := e.dir.Open(path)
	if err != nil {
		return t.Fail(path, err)
	}
	defer seg.Close()

	fmt.Fprintf(t.Stdout(), "%s: 0x%08x bytes\n", path, seg.Size)

	if seg.Size == 0 {
		log.Debug("%s: empty segment, nothing to query", path)
		return tool.ExitOK
	}

	driver := placement.NewDriver(placement.NewWalker(e.mover, 0), true)
	report, err := driver.Run([]*placement.Region{seg.Region()}, placement.QueryRequest())
	if err != nil {
		if errors.Is(err, placement.ErrPlacement) {
			err = errors.Wrap(err, "failed to determine placement")
		}
		return t.Fail(path, err)
	}

	if err := placement.NewPrinter(t.Stdout(), placement.SegmentQueryStyle).Print(report); err != nil {
		return t.Fail("", err)
	}
	if err := t.WriteMetrics(report); err != nil {
		return t.Fail(t.MetricsFile(), err)
	}

	return tool.ExitOK
}

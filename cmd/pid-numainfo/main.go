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
	"math"
	"os"
	"strconv"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/placement"
	"github.com/intel/numaplace/pkg/procmaps"
	"github.com/intel/numaplace/pkg/tool"
)

const optMoveTo = "move-to"

var log = logger.Get("pid-numainfo")

// env is where processes are found and how their pages are queried.
type env struct {
	procRoot string
	mover    placement.Mover
}

type options struct {
	pid  int
	node int
}

// command is the command line of pid-numainfo.
type command struct {
	*tool.Tool
	moveTo *int
}

func main() {
	c := newCommand(tool.New("<pid>", 1, 1))
	c.Exit(c.run(os.Args[1:], env{
		procRoot: procmaps.DefaultMountPoint,
		mover:    placement.KernelMover{},
	}))
}

func newCommand(t *tool.Tool) *command {
	t.EnableMetrics()
	c := &command{Tool: t}
	c.moveTo = t.Flags().Int(optMoveTo, placement.NoNode,
		"move the pages of every mapping to this node, as far as possible")
	return c
}

func (c *command) parseOptions(args []string) (*options, int) {
	t := c.Tool
	pos, err := t.Parse(args)
	if err != nil {
		return nil, t.ParseFail(err)
	}

	pid, err := tool.ParseInt(pos[0])
	if err != nil {
		return nil, t.ArgFail(pos[0], err)
	}
	if pid < 0 || pid > math.MaxInt32 {
		return nil, t.ArgFail(pos[0], unix.EINVAL)
	}

	opts := &options{
		pid:  int(pid),
		node: placement.NoNode,
	}
	if t.Explicit(optMoveTo) {
		if *c.moveTo < 0 || *c.moveTo > math.MaxInt16 {
			return nil, t.ArgFail(strconv.Itoa(*c.moveTo), unix.EINVAL)
		}
		opts.node = *c.moveTo
	}

	return opts, tool.ExitOK
}

func (c *command) run(args []string, e env) int {
	t := c.Tool
	opts, code := c.parseOptions(args)
	if opts == nil {
		return code
	}

	proc, err := procmaps.New(e.procRoot)
	if err != nil {
		return t.Fail("", err)
	}
	comm, err := proc.Command(opts.pid)
	if err != nil {
		log.Debug("pid %d: no command name: %v", opts.pid, err)
	}

	entries, err := proc.Read(opts.pid)
	if err != nil {
		return t.Fail(proc.MapsPath(opts.pid), err)
	}

	regions := make([]*placement.Region, 0, len(entries))
	for _, entry := range entries {
		regions = append(regions, entry.Region(opts.pid))
	}

	req := placement.QueryRequest()
	if opts.node != placement.NoNode {
		req = placement.MoveRequest(opts.node, placement.ModeBestEffort)
	}

	walker := placement.NewWalker(e.mover, 0)
	pageSize := walker.PageSize()
	fmt.Fprintf(t.Stdout(), "  page: 0x%012x bytes (%d KiB)\n\n", pageSize, pageSize/1024)

	report, err := placement.NewDriver(walker, false).Run(regions, req)
	report.Pid, report.Command = opts.pid, comm
	if perr := placement.NewPrinter(t.Stdout(), placement.ProcessStyle).Print(report); perr != nil {
		return t.Fail("", perr)
	}
	if merr := t.WriteMetrics(report); merr != nil {
		return t.Fail(t.MetricsFile(), merr)
	}

	if err != nil {
		c.failRegions(opts.pid, err)
		return tool.ExitFailure
	}
	if report.Status != placement.StatusSuccess {
		log.Info("pid %d: not every page could be moved to node %d", opts.pid, opts.node)
	}

	return tool.ExitOK
}

// failRegions reports every region that could not be walked.
func (c *command) failRegions(pid int, err error) {
	context := strconv.Itoa(pid)
	errs := []error{err}
	if merr, ok := err.(*multierror.Error); ok {
		errs = merr.Errors
	}
	for _, err := range errs {
		perr := &placement.PlacementError{}
		switch {
		case !errors.As(err, &perr):
		case perr.Label == "":
			err = errors.Wrap(err, "failed to determine placement")
		default:
			err = errors.Wrapf(err, "%s: failed to determine placement", perr.Label)
		}
		c.Fail(context, err)
	}
}

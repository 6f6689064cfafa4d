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

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/placement"
	"github.com/intel/numaplace/pkg/shmem"
	"github.com/intel/numaplace/pkg/sysfs"
	"github.com/intel/numaplace/pkg/tool"
)

const optBestEffort = "best-effort"

var log = logger.Get("move-shmem-pages")

// env is where segments and nodes are found and how pages are moved.
type env struct {
	dir   shmem.Dir
	sys   *sysfs.System
	mover placement.Mover
}

type options struct {
	path  string
	node  int
	start int64
	end   int64
	mode  placement.Mode
}

// command is the command line of move-shmem-pages.
type command struct {
	*tool.Tool
	bestEffort *bool
}

func main() {
	c := newCommand(tool.New("<path> <node> [start] [end]", 2, 4))
	c.Exit(c.run(os.Args[1:], env{
		dir:   shmem.DefaultRoot,
		sys:   sysfs.New(sysfs.DefaultRoot),
		mover: placement.KernelMover{},
	}))
}

func newCommand(t *tool.Tool) *command {
	t.EnableMetrics()
	c := &command{Tool: t}
	c.bestEffort = t.Flags().Bool(optBestEffort, false,
		"move only pages used by this process, leave shared ones in place")
	return c
}

func (c *command) parseOptions(args []string) (*options, int) {
	t := c.Tool

	pos, err := t.Parse(args)
	if err != nil {
		return nil, t.ParseFail(err)
	}

	opts := &options{
		path: pos[0],
		end:  placement.ToEnd,
		mode: t.Config().Mode(),
	}

	node, err := tool.ParseInt(pos[1])
	if err != nil {
		return nil, t.ArgFail(pos[1], err)
	}
	if node < 0 || node > math.MaxInt16 {
		return nil, t.ArgFail(pos[1], unix.EINVAL)
	}
	opts.node = int(node)

	if len(pos) > 2 {
		if opts.start, err = tool.ParseInt(pos[2]); err != nil {
			return nil, t.ArgFail(pos[2], err)
		}
	}
	if len(pos) > 3 {
		if opts.end, err = tool.ParseInt(pos[3]); err != nil {
			return nil, t.ArgFail(pos[3], err)
		}
	}

	if t.Explicit(optBestEffort) {
		if *c.bestEffort {
			opts.mode = placement.ModeBestEffort
		} else {
			opts.mode = placement.ModeStrict
		}
	}

	return opts, tool.ExitOK
}

func (c *command) run(args []string, e env) int {
	t := c.Tool
	opts, code := c.parseOptions(args)
	if opts == nil {
		return code
	}

	seg, err := e.dir.Open(opts.path)
	if err != nil {
		return t.Fail(opts.path, err)
	}
	defer seg.Close()

	walker := placement.NewWalker(e.mover, 0)
	pageSize := walker.PageSize()
	if pr, err := placement.ComputePageRange(opts.start, opts.end, seg.Size, pageSize); err == nil {
		if warning := nodeWarning(e.sys, opts.node, int64(pr.Count())*pageSize); warning != "" {
			log.Warn("%s", warning)
		}
	}

	req := placement.Request{
		Start: opts.start,
		End:   opts.end,
		Node:  opts.node,
		Mode:  opts.mode,
	}
	log.Debug("%s: %s", opts.path, req)

	driver := placement.NewDriver(walker, true)
	report, err := driver.Run([]*placement.Region{seg.Region()}, req)
	if err != nil {
		if errors.Is(err, placement.ErrPlacement) {
			err = errors.Wrap(err, "failed to move pages")
		}
		return t.Fail(opts.path, err)
	}

	if err := placement.NewPrinter(t.Stdout(), placement.SegmentMoveStyle).Print(report); err != nil {
		return t.Fail("", err)
	}
	if err := t.WriteMetrics(report); err != nil {
		return t.Fail(t.MetricsFile(), err)
	}

	if report.Status != placement.StatusSuccess {
		log.Debug("%s: %s", opts.path, report.Status)
		return tool.ExitFailure
	}
	return tool.ExitOK
}

// nodeWarning returns what looks wrong about moving bytes to node, or
// an empty string. The kernel has the final word on it.
func nodeWarning(sys *sysfs.System, node int, bytes int64) string {
	if sys == nil {
		return ""
	}

	online, err := sys.OnlineNodes()
	if err != nil {
		log.Debug("can't check online nodes: %v", err)
		return ""
	}
	if !sysfs.Contains(online, node) {
		return fmt.Sprintf("node %d is not online (online nodes: %s)", node, sysfs.FormatNodes(online))
	}

	memory, err := sys.MemoryNodes()
	if err != nil {
		log.Debug("can't check nodes with memory: %v", err)
		return ""
	}
	if !sysfs.Contains(memory, node) {
		return fmt.Sprintf("node %d has no memory (nodes with memory: %s)", node, sysfs.FormatNodes(memory))
	}

	info, err := sys.MemInfo(node)
	if err != nil {
		log.Debug("can't check free memory of node %d: %v", node, err)
		return ""
	}
	if bytes > 0 && uint64(bytes) > info.Free {
		return fmt.Sprintf("node %d has 0x%x bytes free, moving up to 0x%x bytes", node, info.Free, bytes)
	}

	return ""
}

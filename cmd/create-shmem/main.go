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
	"os"

	"github.com/intel/numaplace/pkg/config"
	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/shmem"
	"github.com/intel/numaplace/pkg/tool"
)

// defaultPages is the size of a segment, in pages, if none is given.
const defaultPages = 1024

var log = logger.Get("create-shmem")

type options struct {
	path string
	size int64
}

// createFunc creates a segment, overridden in tests.
type createFunc func(name string, size int64) error

func main() {
	t := tool.New("<path> [size]", 1, 2)
	t.Exit(run(t, os.Args[1:], shmem.Create))
}

func run(t *tool.Tool, args []string, create createFunc) int {
	pos, err := t.Parse(args)
	if err != nil {
		return t.ParseFail(err)
	}

	opts := options{
		path: pos[0],
		size: t.Config().Size(defaultPages * int64(os.Getpagesize())),
	}
	if len(pos) > 1 {
		size, err := config.ParseSize(pos[1])
		if err != nil {
			return t.ArgFail(pos[1], err)
		}
		opts.size = size
	}

	log.Debug("creating %s with 0x%x bytes", opts.path, opts.size)

	if err := create(opts.path, opts.size); err != nil {
		return t.Fail(opts.path, err)
	}

	return tool.ExitOK
}

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

	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/shmem"
	"github.com/intel/numaplace/pkg/tool"
)

var log = logger.Get("unlink-shmem")

func main() {
	t := tool.New("<path>", 1, 1)
	t.Exit(run(t, os.Args[1:], shmem.Unlink))
}

func run(t *tool.Tool, args []string, unlink func(name string) error) int {
	pos, err := t.Parse(args)
	if err != nil {
		return t.ParseFail(err)
	}
	path := pos[0]

	log.Debug("unlinking %s", path)

	if err := unlink(path); err != nil {
		return t.Fail(path, err)
	}

	return tool.ExitOK
}

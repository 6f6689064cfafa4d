// Copyright 2019-2020 Intel Corporation. All Rights Reserved.
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
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// logging is the runtime state of all loggers.
type logging struct {
	sync.RWMutex
	level    Level                // lowest unsuppressed severity
	backend  map[string]BackendFn // registered backends
	active   Backend              // active backend
	loggers  map[string]logger    // source to logger mapping
	sources  []string             // logger to source mapping
	debug    map[logger]bool      // debugging state per logger
	dbgmap   srcmap               // debugging state by source, '*' for all
	maxalign int                  // longest source name seen
}

// our logging runtime state
var log = &logging{
	level:   DefaultLevel,
	backend: make(map[string]BackendFn),
	loggers: make(map[string]logger),
	debug:   make(map[logger]bool),
	dbgmap:  make(srcmap),
}

// Get returns the Logger for the given source, creating it if necessary.
func Get(source string) Logger {
	return log.get(source)
}

// SetLevel sets the lowest severity level of messages to pass through.
func SetLevel(level Level) {
	log.Lock()
	defer log.Unlock()
	log.level = level
}

// SetBackend activates the named Backend.
func SetBackend(name string) error {
	log.Lock()
	defer log.Unlock()
	return log.setBackend(name)
}

// EnableDebug updates debugging state from a source map specification,
// for instance "on:*,off:shmem".
func EnableDebug(spec string) error {
	m := make(srcmap)
	if err := m.parse(spec); err != nil {
		return err
	}

	log.Lock()
	defer log.Unlock()
	log.updateDebug(m)

	return nil
}

// Sync waits for all pending messages to get emitted.
func Sync() {
	log.RLock()
	active := log.active
	log.RUnlock()
	active.Sync()
}

// get returns the logger for source, creating it if necessary.
func (log *logging) get(source string) logger {
	source = strings.Trim(source, "[] ")

	log.Lock()
	defer log.Unlock()

	if l, ok := log.loggers[source]; ok {
		return l
	}

	l := logger(len(log.sources))
	log.sources = append(log.sources, source)
	log.loggers[source] = l
	log.debug[l] = log.dbgmap.enabled(source)

	if len(source) > log.maxalign {
		log.maxalign = len(source)
		if log.active != nil {
			log.active.SetSourceAlignment(log.maxalign)
		}
	}

	return l
}

// setBackend activates the named backend, stopping the previous one.
func (log *logging) setBackend(name string) error {
	fn, ok := log.backend[name]
	if !ok {
		return loggerError("unknown logger backend %q", name)
	}
	if log.active != nil {
		if log.active.Name() == name {
			return nil
		}
		log.active.Stop()
	}
	log.active = fn()
	log.active.SetSourceAlignment(log.maxalign)

	return nil
}

// updateDebug merges m into the debugging state and updates all loggers.
func (log *logging) updateDebug(m srcmap) {
	log.dbgmap.copy(m)
	for source, l := range log.loggers {
		log.debug[l] = log.dbgmap.enabled(source)
	}
}

// loggerError returns a formatted package-specific error.
func loggerError(format string, args ...interface{}) error {
	return errors.Errorf("logger: "+format, args...)
}

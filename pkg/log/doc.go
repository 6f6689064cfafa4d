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

// Package log implements source-scoped logging with pluggable backends.
//
// Every package gets its own Logger with Get(source). Messages below the
// active severity level are suppressed and debug messages are emitted only
// for sources debugging has been enabled for. Messages always go to standard
// error, standard output is left to the reports of the tools.
//
// The lowest severity to pass through is set with -logger-level (debug, info,
// warning, error). Debugging is enabled per source with -logger-debug. You can
// prefix a source or a list of source names with 'off' or 'on' to toggle them.
// For instance, to turn on debugging for all sources except shmem:
//
//	-logger-debug on:*,off:shmem
//
// As an alternative for '*' you can also use 'all'. The -logger option selects
// the backend, either fmt (the default) or klog.
package log

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

/*

	Package placement resolves and changes the NUMA node placement of
	the pages backing a region of virtual memory.

	A Walker handles one Region. It computes the pages covering the
	requested byte range (pagegrid.go), touches them if the region is
	mapped locally, asks a Mover for the placement of all of them with
	a single call, and compresses the per-page results into Runs of
	equal node or error code (runs.go).

	A Driver walks a list of regions, either stopping at the first
	failure or collecting failures and carrying on, and produces a
	Report. A Printer writes Reports as text.

	The default Mover is the move_pages(2) system call. Pages can only
	be moved between nodes by processes with sufficient privileges
	when they are mapped by other processes too.

*/
package placement

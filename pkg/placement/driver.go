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

package placement

import (
	"github.com/hashicorp/go-multierror"

	logger "github.com/intel/numaplace/pkg/log"
)

// Status is the overall outcome of a Report.
type Status int

const (
	// StatusSuccess means every page ended up where it was asked to.
	StatusSuccess Status = iota
	// StatusPartialFailure means some pages did not end up on the requested node.
	StatusPartialFailure
)

// String returns the name of the status.
func (s Status) String() string {
	if s == StatusPartialFailure {
		return "partial-failure"
	}
	return "success"
}

// Report is the placement of a set of regions, in the order they were walked.
type Report struct {
	Node     int   // requested node, NoNode for queries
	PageSize int64 // page size used for walking
	Regions  []*RegionReport
	Status   Status

	// process the regions belong to, if filled in by the caller
	Pid     int
	Command string
}

// Driver walks a set of regions with a common Request.
type Driver struct {
	walker *Walker
	// FailFast aborts at the first region that fails. Otherwise failures
	// are logged, collected and the remaining regions are still walked.
	FailFast bool
	log      logger.Logger
}

// NewDriver creates a Driver walking regions with the given Walker.
func NewDriver(walker *Walker, failFast bool) *Driver {
	return &Driver{
		walker:   walker,
		FailFast: failFast,
		log:      logger.RateLimit(log, logger.Interval(regionWarnInterval)),
	}
}

// Run walks all regions in order. Zero-length regions are skipped. With
// FailFast the first error is returned together with the regions walked
// so far. Otherwise a multierror of all failed regions is returned along
// with the report of the successful ones.
func (d *Driver) Run(regions []*Region, req Request) (*Report, error) {
	var errs *multierror.Error

	report := &Report{
		Node:     req.Node,
		PageSize: d.walker.PageSize(),
		Regions:  make([]*RegionReport, 0, len(regions)),
	}

	for _, region := range regions {
		if region.Length == 0 {
			log.Debug("%s: skipping empty region", region)
			continue
		}

		rr, err := d.walker.Walk(region, req)
		if err != nil {
			if d.FailFast {
				return report, err
			}
			d.log.Warn("region %s: %v", region, err)
			errs = multierror.Append(errs, err)
			continue
		}

		report.Regions = append(report.Regions, rr)
		if req.Migrating() && !rr.Placed(req.Node) {
			report.Status = StatusPartialFailure
		}
	}

	return report, errs.ErrorOrNil()
}

// Placed returns true if every page of the region report is on node and
// the kernel migrated all of them.
func (rr *RegionReport) Placed(node int) bool {
	if rr.Unmigrated > 0 {
		return false
	}
	for _, run := range rr.Runs {
		if run.Code != node {
			return false
		}
	}
	return true
}

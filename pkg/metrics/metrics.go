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

// Package metrics exports placement reports as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"golang.org/x/sys/unix"

	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/placement"
)

const (
	// metric name prefix
	namespace = "numaplace"
)

var log = logger.Get("metrics")

var (
	pagesDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "region", "pages"),
		"Number of pages of a region resident on a NUMA node.",
		[]string{"region", "path", "node"}, nil,
	)
	errorsDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "region", "page_errors"),
		"Number of pages of a region with an undetermined or failed placement.",
		[]string{"region", "path", "errno"}, nil,
	)
	unmigratedDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "region", "unmigrated_pages"),
		"Number of pages of a region the kernel could not migrate.",
		[]string{"region", "path"}, nil,
	)
	processDesc = prometheus.NewDesc(
		prometheus.BuildFQName(namespace, "process", "info"),
		"Process the reported regions belong to.",
		[]string{"pid", "command"}, nil,
	)
)

// collector exposes a placement report as metrics.
type collector struct {
	report *placement.Report
}

// Describe implements prometheus.Collector.
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- pagesDesc
	ch <- errorsDesc
	ch <- unmigratedDesc
	ch <- processDesc
}

// Collect implements prometheus.Collector.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	if c.report.Command != "" {
		ch <- prometheus.MustNewConstMetric(processDesc, prometheus.GaugeValue, 1,
			strconv.Itoa(c.report.Pid), c.report.Command)
	}

	for _, rr := range c.report.Regions {
		region := fmt.Sprintf("%x-%x", rr.Region.Base, rr.Region.End())
		path := rr.Region.Label

		counts := map[int]int{}
		for _, run := range rr.Runs {
			counts[run.Code] += run.Pages()
		}
		codes := make([]int, 0, len(counts))
		for code := range counts {
			codes = append(codes, code)
		}
		sort.Ints(codes)

		for _, code := range codes {
			if code >= 0 {
				ch <- prometheus.MustNewConstMetric(pagesDesc, prometheus.GaugeValue,
					float64(counts[code]), region, path, fmt.Sprintf("%d", code))
			} else {
				ch <- prometheus.MustNewConstMetric(errorsDesc, prometheus.GaugeValue,
					float64(counts[code]), region, path, errnoName(code))
			}
		}

		if c.report.Node != placement.NoNode {
			ch <- prometheus.MustNewConstMetric(unmigratedDesc, prometheus.GaugeValue,
				float64(rr.Unmigrated), region, path)
		}
	}
}

// Collect returns a registry with the metrics of the given report.
func Collect(report *placement.Report) (*prometheus.Registry, error) {
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(&collector{report: report}); err != nil {
		return nil, metricsError("failed to register report collector: %v", err)
	}
	return reg, nil
}

// Write encodes all metrics of the gatherer in the Prometheus text format.
func Write(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return metricsError("failed to gather metrics: %v", err)
	}

	enc := expfmt.NewEncoder(w, expfmt.FmtText)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return metricsError("failed to encode metric %s: %v", mf.GetName(), err)
		}
	}

	return nil
}

// WriteFile writes all metrics of the gatherer to a file, replacing it
// atomically, for instance for the node_exporter textfile collector.
func WriteFile(path string, g prometheus.Gatherer) error {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	tmp, err := os.CreateTemp(dir, "."+base+".tmp*")
	if err != nil {
		return errors.Wrap(err, "metrics: failed to create temporary file")
	}
	defer func() {
		if tmp != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err := Write(tmp, g); err != nil {
		return err
	}
	if err := tmp.Chmod(0644); err != nil {
		return errors.Wrap(err, "metrics: failed to set permissions")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "metrics: failed to close temporary file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		tmp = nil
		return errors.Wrapf(err, "metrics: failed to replace %s", path)
	}
	tmp = nil

	log.Debug("wrote metrics to %s", path)

	return nil
}

// errnoName returns the symbolic name of a negated errno code.
func errnoName(code int) string {
	if name := unix.ErrnoName(unix.Errno(-code)); name != "" {
		return name
	}
	return fmt.Sprintf("%d", -code)
}

func metricsError(format string, args ...interface{}) error {
	return errors.Errorf("metrics: "+format, args...)
}

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

// Package config loads the optional YAML defaults file of the tools.
//
// A configuration file looks like this:
//
//	segmentSize: 4M
//	migrationMode: best-effort
//	metricsFile: /var/lib/node_exporter/textfile/numaplace.prom
//	logLevel: warning
//	logDebug: on:shmem,placement
//
// Options given on the command line take precedence over the file.
package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	logger "github.com/intel/numaplace/pkg/log"
	"github.com/intel/numaplace/pkg/placement"
)

// Config is the contents of a configuration file.
type Config struct {
	// SegmentSize is the default size of created segments, for instance 4M.
	SegmentSize string `json:"segmentSize,omitempty"`
	// MigrationMode is strict or best-effort.
	MigrationMode string `json:"migrationMode,omitempty"`
	// MetricsFile is where to write Prometheus metrics of reports.
	MetricsFile string `json:"metricsFile,omitempty"`
	// Logger is the logger backend, fmt or klog.
	Logger string `json:"logger,omitempty"`
	// LogLevel is the lowest severity of messages to emit.
	LogLevel string `json:"logLevel,omitempty"`
	// LogDebug is the source map of debugging, for instance on:*,off:shmem.
	LogDebug string `json:"logDebug,omitempty"`
}

// Load reads and validates the given configuration file.
func Load(path string) (*Config, error) {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, configError("failed to read configuration file %s: %v", path, err)
	}

	cfg, err := Parse(raw)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	return cfg, nil
}

// Parse parses and validates YAML configuration data. Unknown keys are errors.
func Parse(raw []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.UnmarshalStrict(raw, cfg); err != nil {
		return nil, configError("failed to parse configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that all values in the configuration are valid.
func (c *Config) Validate() error {
	if c.SegmentSize != "" {
		if _, err := ParseSize(c.SegmentSize); err != nil {
			return configError("invalid segmentSize: %v", err)
		}
	}
	if _, err := placement.ParseMode(c.MigrationMode); err != nil {
		return configError("invalid migrationMode: %v", err)
	}
	if c.LogLevel != "" {
		if _, err := logger.ParseLevel(c.LogLevel); err != nil {
			return configError("invalid logLevel: %v", err)
		}
	}
	return nil
}

// Size returns the segment size, or def if none is configured.
func (c *Config) Size(def int64) int64 {
	if c.SegmentSize == "" {
		return def
	}
	size, _ := ParseSize(c.SegmentSize)
	return size
}

// Mode returns the configured migration mode.
func (c *Config) Mode() placement.Mode {
	mode, _ := placement.ParseMode(c.MigrationMode)
	return mode
}

// ApplyLogging configures logging from the file. Settings for which
// explicit(flag) returns true were given on the command line and are
// left alone.
func (c *Config) ApplyLogging(explicit func(flag string) bool) error {
	if c.Logger != "" && !explicit(logger.FlagLogger) {
		if err := logger.SetBackend(c.Logger); err != nil {
			return configError("invalid logger: %v", err)
		}
	}
	if c.LogLevel != "" && !explicit(logger.FlagLevel) {
		level, err := logger.ParseLevel(c.LogLevel)
		if err != nil {
			return configError("invalid logLevel: %v", err)
		}
		logger.SetLevel(level)
	}
	if c.LogDebug != "" && !explicit(logger.FlagDebug) {
		if err := logger.EnableDebug(c.LogDebug); err != nil {
			return configError("invalid logDebug: %v", err)
		}
	}
	return nil
}

func configError(format string, args ...interface{}) error {
	return errors.Errorf("config: "+format, args...)
}

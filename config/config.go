// Copyright 2026 The xv6core Authors.
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

// Package config decodes the TOML file the cmd/xv6core CLI boots from into
// a kernel.BootConfig, the one place boot-time parameters are read from
// disk rather than passed as Go literals.
package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sirupsen/logrus"

	"github.com/edukernel/xv6core/kernel"
)

// Config is the on-disk shape of an xv6core boot file.
type Config struct {
	Policy             string  `toml:"policy"`
	NumCPUs            int     `toml:"num_cpus"`
	WaitingLimit       int     `toml:"waiting_limit"`
	MLFQSlice          []int   `toml:"mlfq_slice"`
	PageBudgetFraction float64 `toml:"page_budget_fraction"`
	LogLevel           string  `toml:"log_level"`
}

// Default returns the configuration used when no file is given: plain
// round-robin, one CPU, default MLFQ slice.
func Default() *Config {
	return &Config{
		Policy:       "default",
		NumCPUs:      1,
		WaitingLimit: kernel.WaitingLimit,
		LogLevel:     "info",
	}
}

// Load decodes path into a Config seeded with Default's values, so a boot
// file only needs to override what it cares about. An empty path returns
// Default unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// Logger builds the logrus.Logger the kernel and CLI share, at the level
// named by LogLevel (defaulting to Info on an unrecognized name).
func (c *Config) Logger() *logrus.Logger {
	log := logrus.New()
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// BootConfig translates the decoded file into the kernel's boot parameters,
// resolving the policy name and folding MLFQSlice into kernel's fixed-size
// array (left all-zero, and so defaulted by the policy itself, if the file
// didn't specify one).
func (c *Config) BootConfig() (kernel.BootConfig, error) {
	policy, err := kernel.ParsePolicy(c.Policy)
	if err != nil {
		return kernel.BootConfig{}, err
	}

	var slice [kernel.NMLFQ]int
	for i := 0; i < len(c.MLFQSlice) && i < kernel.NMLFQ; i++ {
		slice[i] = c.MLFQSlice[i]
	}

	return kernel.BootConfig{
		Policy:             policy,
		NumCPUs:            c.NumCPUs,
		WaitingLimit:       c.WaitingLimit,
		MLFQSlice:          slice,
		PageBudgetFraction: c.PageBudgetFraction,
		Log:                c.Logger(),
	}, nil
}

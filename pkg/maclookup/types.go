/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package maclookup

import (
	"fmt"
	"time"

	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/models"
	"github.com/carverauto/maclookup/pkg/query/snmp"
)

const (
	defaultOutputFile    = "results.json"
	defaultWorkers       = 1
	defaultStream        = "maclookup"
	defaultSubjectPrefix = "maclookup.results"
)

// Config is the on-disk configuration of a lookup run. Command-line flags
// override the matching fields.
type Config struct {
	Testbed        string             `json:"testbed" yaml:"testbed"`
	Layer3Devices  []string           `json:"layer3_devices" yaml:"layer3_devices"`
	SkipInterfaces []string           `json:"skip_interfaces" yaml:"skip_interfaces"`
	OutputFile     string             `json:"output_file" yaml:"output_file"`
	Workers        int                `json:"workers" yaml:"workers"`
	ParsedDir      string             `json:"parsed_dir" yaml:"parsed_dir"`
	SNMP           snmp.Config        `json:"snmp" yaml:"snmp"`
	NATS           *models.NATSConfig `json:"nats,omitempty" yaml:"nats,omitempty"`
	Logging        *logger.Config     `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// Validate implements config.Validator. It fills defaults for unset fields.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkers, c.Workers)
	}

	if c.Workers == 0 {
		c.Workers = defaultWorkers
	}

	if c.OutputFile == "" {
		c.OutputFile = defaultOutputFile
	}

	c.SNMP.ApplyDefaults()

	if c.NATS.Enabled() {
		if c.NATS.Stream == "" {
			c.NATS.Stream = defaultStream
		}

		if c.NATS.SubjectPrefix == "" {
			c.NATS.SubjectPrefix = defaultSubjectPrefix
		}
	}

	return nil
}

// Request names the layer 3 sources for one run and the interfaces to leave out.
type Request struct {
	Layer3Devices  []string
	SkipInterfaces []string
}

// DiagnosticKind classifies a skipped device or entry.
type DiagnosticKind string

const (
	DiagnosticUnresolvedDevice    DiagnosticKind = "unresolved_device"
	DiagnosticUnsupportedPlatform DiagnosticKind = "unsupported_platform"
	DiagnosticQueryFailed         DiagnosticKind = "query_failed"
	DiagnosticNoARPForMAC         DiagnosticKind = "no_arp_for_mac"
)

// Diagnostic reports one condition that was skipped without stopping the run.
type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Device  string         `json:"device,omitempty"`
	MAC     string         `json:"mac,omitempty"`
	Message string         `json:"message"`
	Err     error          `json:"-"`
}

func (d Diagnostic) String() string {
	if d.Err != nil {
		return d.Message + ": " + d.Err.Error()
	}

	return d.Message
}

// Result is the outcome of one run.
type Result struct {
	RunID       string          `json:"run_id"`
	StartedAt   time.Time       `json:"started_at"`
	FinishedAt  time.Time       `json:"finished_at"`
	Registry    models.Registry `json:"registry"`
	Diagnostics []Diagnostic    `json:"diagnostics"`
}

// Summary counts diagnostics per kind.
func (r *Result) Summary() map[DiagnosticKind]int {
	counts := make(map[DiagnosticKind]int)

	for _, d := range r.Diagnostics {
		counts[d.Kind]++
	}

	return counts
}

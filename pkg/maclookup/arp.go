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
	"context"
	"fmt"

	"github.com/carverauto/maclookup/pkg/inventory"
	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/models"
)

var arpCommands = map[inventory.PlatformKind]string{
	inventory.PlatformNXOS:  "show ip arp vrf all",
	inventory.PlatformIOSXR: "show arp detail",
	inventory.PlatformIOSXE: "show ip arp",
	inventory.PlatformIOS:   "show ip arp",
}

// ARPCommand returns the command that lists the ARP table on platform.
func ARPCommand(platform inventory.PlatformKind) (string, bool) {
	cmd, ok := arpCommands[platform]
	return cmd, ok
}

// Aggregator builds the MAC registry from the ARP tables of layer 3 devices.
type Aggregator struct {
	querier Querier
	workers int
	logger  logger.Logger
}

// NewAggregator creates an Aggregator that runs up to workers queries at once.
func NewAggregator(q Querier, workers int, log logger.Logger) *Aggregator {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Aggregator{
		querier: q,
		workers: workers,
		logger:  logger.Wrap(log.WithComponent("arp_aggregator")),
	}
}

// Aggregate returns a new registry holding every resolved ARP neighbor of devices.
func (a *Aggregator) Aggregate(ctx context.Context, devices []*inventory.Device) (models.Registry, []Diagnostic) {
	reg := models.Registry{}

	return reg, a.AggregateInto(ctx, reg, devices)
}

// AggregateInto folds the ARP tables of devices into reg. Devices are folded in
// order, so a MAC seen on several devices keeps the IP from the last one.
func (a *Aggregator) AggregateInto(ctx context.Context, reg models.Registry, devices []*inventory.Device) []Diagnostic {
	var diags []Diagnostic

	report := func(d Diagnostic) {
		diags = append(diags, d)
		logDiagnostic(a.logger, d)
	}

	jobs := make([]fetchJob, 0, len(devices))
	slots := make([]int, len(devices))

	for i, dev := range devices {
		cmd, ok := ARPCommand(dev.Platform)
		if !ok {
			slots[i] = -1
			continue
		}

		slots[i] = len(jobs)
		jobs = append(jobs, fetchJob{device: dev, command: cmd})
	}

	results := fetchTables(ctx, a.querier, a.workers, jobs)

	for i, dev := range devices {
		a.logger.Info().Str("device", dev.Name).Msg("Checking L3 device")

		if slots[i] < 0 {
			report(Diagnostic{
				Kind:    DiagnosticUnsupportedPlatform,
				Device:  dev.Name,
				Message: fmt.Sprintf("No ARP lookup command for platform %q on device %s", dev.Platform, dev.Name),
				Err:     fmt.Errorf("%w: %q", ErrUnsupportedPlatform, dev.Platform),
			})

			continue
		}

		res := results[slots[i]]

		table, err := res.arpTable()
		if err != nil {
			report(Diagnostic{
				Kind:    DiagnosticQueryFailed,
				Device:  dev.Name,
				Message: "Problem looking up ARP table on device " + dev.Name,
				Err:     err,
			})

			continue
		}

		added := foldARPTable(reg, table)

		a.logger.Debug().
			Str("device", dev.Name).
			Int("neighbors", added).
			Msg("Folded ARP table")
	}

	return diags
}

func (r fetchResult) arpTable() (*ARPTable, error) {
	if r.err != nil {
		return nil, r.err
	}

	return DecodeARPTable(r.data)
}

// foldARPTable upserts every resolved neighbor of table and returns how many were applied.
func foldARPTable(reg models.Registry, table *ARPTable) int {
	applied := 0

	for _, iface := range table.Interfaces {
		for _, fam := range iface.Families {
			for _, n := range fam.Neighbors {
				if n.LinkLayerAddress == "" || n.LinkLayerAddress == models.IncompleteLinkLayerAddress {
					continue
				}

				reg.Upsert(n.LinkLayerAddress, n.IP)
				applied++
			}
		}
	}

	return applied
}

func logDiagnostic(log logger.Logger, d Diagnostic) {
	ev := log.Warn()
	if d.Kind == DiagnosticNoARPForMAC {
		ev = log.Info()
	}

	ev = ev.Str("kind", string(d.Kind))

	if d.Device != "" {
		ev = ev.Str("device", d.Device)
	}

	if d.MAC != "" {
		ev = ev.Str("mac", d.MAC)
	}

	if d.Err != nil {
		ev = ev.Err(d.Err)
	}

	ev.Msg(d.Message)
}

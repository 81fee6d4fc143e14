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

// MACTableCommand lists the layer 2 forwarding table of a device.
const MACTableCommand = "show mac address-table"

// Enricher records the switch ports every known MAC is learned on.
type Enricher struct {
	querier Querier
	workers int
	policy  *ExclusionPolicy
	logger  logger.Logger
}

// NewEnricher creates an Enricher. A nil policy uses the baseline exclusions.
func NewEnricher(q Querier, workers int, policy *ExclusionPolicy, log logger.Logger) *Enricher {
	if policy == nil {
		policy = NewExclusionPolicy()
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Enricher{
		querier: q,
		workers: workers,
		policy:  policy,
		logger:  logger.Wrap(log.WithComponent("interface_enricher")),
	}
}

// Enrich appends a sighting to reg for every non-excluded port a known MAC is
// learned on across devices. It never adds entries and never changes an IP.
func (e *Enricher) Enrich(ctx context.Context, reg models.Registry, devices []*inventory.Device) []Diagnostic {
	var diags []Diagnostic

	report := func(d Diagnostic) {
		diags = append(diags, d)
		logDiagnostic(e.logger, d)
	}

	jobs := make([]fetchJob, len(devices))
	for i, dev := range devices {
		jobs[i] = fetchJob{device: dev, command: MACTableCommand}
	}

	results := fetchTables(ctx, e.querier, e.workers, jobs)

	for i, dev := range devices {
		table, err := results[i].forwardingTable()
		if err != nil {
			msg := fmt.Sprintf("Unable to retrieve MACs from device %s. Likely missing parser for %q "+
				"or trying to lookup on router and not switch", dev.Name, MACTableCommand)

			report(Diagnostic{
				Kind:    DiagnosticQueryFailed,
				Device:  dev.Name,
				Message: msg,
				Err:     err,
			})

			continue
		}

		added := 0

		for _, vlan := range table.VLANs {
			for _, rec := range vlan.MACs {
				if _, ok := reg[rec.MAC]; !ok {
					report(Diagnostic{
						Kind:    DiagnosticNoARPForMAC,
						Device:  dev.Name,
						MAC:     rec.MAC,
						Message: fmt.Sprintf("No ARP for MAC Address %s found.", rec.MAC),
					})

					continue
				}

				for _, detail := range rec.Interfaces {
					if e.policy.Excludes(detail.Interface) {
						continue
					}

					reg.AddSighting(rec.MAC, models.InterfaceSighting{
						Device:    dev.Name,
						Interface: detail.Interface,
						MACType:   detail.MACType,
						VLAN:      vlan.ID,
					})
					added++
				}
			}
		}

		e.logger.Debug().
			Str("device", dev.Name).
			Int("sightings", added).
			Msg("Folded MAC address table")
	}

	return diags
}

func (r fetchResult) forwardingTable() (*ForwardingTable, error) {
	if r.err != nil {
		return nil, r.err
	}

	return DecodeForwardingTable(r.data)
}

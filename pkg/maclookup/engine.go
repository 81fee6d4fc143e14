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
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/maclookup/pkg/inventory"
	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/models"
)

// Engine runs the lookup pipeline: select the layer 3 devices, build the registry
// from their ARP tables, enrich it from every device's MAC table, then publish.
type Engine struct {
	config     *Config
	testbed    *inventory.Testbed
	querier    Querier
	publishers []Publisher
	logger     logger.Logger
	now        func() time.Time
}

// NewEngine validates cfg and creates an Engine.
func NewEngine(cfg *Config, tb *inventory.Testbed, q Querier, log logger.Logger, publishers ...Publisher) (*Engine, error) {
	if cfg == nil {
		return nil, ErrConfigNil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lookup configuration: %w", err)
	}

	if tb == nil {
		return nil, ErrInventoryRequired
	}

	if q == nil {
		return nil, ErrQuerierRequired
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Engine{
		config:     cfg,
		testbed:    tb,
		querier:    q,
		publishers: publishers,
		logger:     log,
		now:        time.Now,
	}, nil
}

// Run executes one lookup. Device and entry failures become diagnostics on the
// result. The returned error is non-nil only when a publisher failed, in which
// case the result is still returned.
func (e *Engine) Run(ctx context.Context, req *Request) (*Result, error) {
	if req == nil {
		req = &Request{}
	}

	result := &Result{
		RunID:     uuid.New().String(),
		StartedAt: e.now(),
	}

	log := logger.Wrap(e.logger.With().Str("run_id", result.RunID).Logger())

	layer3, diags := SelectDevices(e.testbed.Devices, req.Layer3Devices)
	for _, d := range diags {
		logDiagnostic(log, d)
	}

	result.Diagnostics = append(result.Diagnostics, diags...)

	log.Info().Int("devices", len(layer3)).Msg("Looking up Layer 3 IP -> MAC Mappings.")

	reg, diags := NewAggregator(e.querier, e.config.Workers, log).Aggregate(ctx, layer3)
	result.Diagnostics = append(result.Diagnostics, diags...)

	policy := NewExclusionPolicy(req.SkipInterfaces...)

	log.Info().
		Int("macs", len(reg)).
		Strs("skip_interfaces", policy.Names()).
		Msg("Looking for Layer 2 interfaces for MAC addresses.")

	diags = NewEnricher(e.querier, e.config.Workers, policy, log).Enrich(ctx, reg, e.testbed.Ordered())
	result.Diagnostics = append(result.Diagnostics, diags...)

	result.Registry = reg
	result.FinishedAt = e.now()

	log.Info().
		Int("macs", len(reg)).
		Int("sightings", reg.SightingCount()).
		Int("diagnostics", len(result.Diagnostics)).
		Dur("elapsed", result.FinishedAt.Sub(result.StartedAt)).
		Msg("Lookup complete")

	return result, e.publish(ctx, result)
}

func (e *Engine) publish(ctx context.Context, result *Result) error {
	var errs []error

	for _, p := range e.publishers {
		if err := p.Publish(ctx, result); err != nil {
			e.logger.Error().Err(err).Str("run_id", result.RunID).Msg("Failed to publish lookup result")
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// registry returns the result map, never nil.
func (r *Result) registry() models.Registry {
	if r.Registry == nil {
		return models.Registry{}
	}

	return r.Registry
}

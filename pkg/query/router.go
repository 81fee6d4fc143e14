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

//go:generate mockgen -destination=mock_query.go -package=query github.com/carverauto/maclookup/pkg/query Querier

package query

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/carverauto/maclookup/pkg/inventory"
)

// Querier runs a command on a device and returns its parsed output as a JSON document.
type Querier interface {
	Parse(ctx context.Context, device *inventory.Device, command string) ([]byte, error)
}

// Router sends each device to the collaborator able to reach it. Devices with an
// SNMP connection go to SNMP, everything else to the parsed-output reader.
type Router struct {
	SNMP   Querier
	Parsed Querier
}

// NewRouter creates a Router. Either querier may be nil.
func NewRouter(snmp, parsed Querier) *Router {
	return &Router{SNMP: snmp, Parsed: parsed}
}

// Parse implements Querier.
func (r *Router) Parse(ctx context.Context, device *inventory.Device, command string) ([]byte, error) {
	q := r.pick(device)
	if q == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoQuerier, device.Name)
	}

	return q.Parse(ctx, device, command)
}

func (r *Router) pick(device *inventory.Device) Querier {
	if device.Connections.SNMP != nil && r.SNMP != nil {
		return r.SNMP
	}

	return r.Parsed
}

// Close closes every routed querier that holds resources.
func (r *Router) Close() error {
	var errs []error

	for _, q := range []Querier{r.SNMP, r.Parsed} {
		if c, ok := q.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

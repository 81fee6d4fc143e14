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

// Package snmp answers the lookup commands from live devices over SNMP, rendering
// the IP-MIB and Q-BRIDGE-MIB tables into the same documents the parsed-output
// reader serves.
package snmp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/carverauto/maclookup/pkg/inventory"
	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/query"
)

const (
	macTableCommand = "show mac address-table"
)

// Querier implements query.Querier over SNMP. Sessions are opened on first use
// and kept per device until Close.
type Querier struct {
	config   Config
	dial     Dialer
	logger   logger.Logger
	mu       sync.Mutex
	sessions map[string]Walker
}

// NewQuerier creates a Querier. A nil dialer selects DialGoSNMP.
func NewQuerier(cfg Config, dial Dialer, log logger.Logger) *Querier {
	cfg.ApplyDefaults()

	if dial == nil {
		dial = DialGoSNMP
	}

	return &Querier{
		config:   cfg,
		dial:     dial,
		logger:   log,
		sessions: make(map[string]Walker),
	}
}

// Parse implements query.Querier.
func (q *Querier) Parse(ctx context.Context, device *inventory.Device, command string) ([]byte, error) {
	if device.Connections.SNMP == nil {
		return nil, fmt.Errorf("%w: %s has no snmp connection", query.ErrNoQuerier, device.Name)
	}

	cmd := strings.ToLower(strings.TrimSpace(command))

	var build func(Walker) (any, error)

	switch {
	case isARPCommand(cmd):
		build = buildARPTable
	case cmd == macTableCommand:
		build = buildMACTable
	default:
		return nil, fmt.Errorf("%w: %q over snmp", query.ErrCommandNotSupported, command)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, err := q.session(device)
	if err != nil {
		return nil, err
	}

	doc, err := build(w)
	if err != nil {
		return nil, fmt.Errorf("%s on %s: %w", command, device.Name, err)
	}

	q.logger.Debug().
		Str("device", device.Name).
		Str("command", command).
		Str("target", device.Connections.SNMP.IP).
		Msg("Collected table over SNMP")

	return json.Marshal(doc)
}

func isARPCommand(cmd string) bool {
	return strings.HasPrefix(cmd, "show ip arp") || strings.HasPrefix(cmd, "show arp")
}

func (q *Querier) session(device *inventory.Device) (Walker, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if w, ok := q.sessions[device.Name]; ok {
		return w, nil
	}

	w, err := q.dial(device.Connections.SNMP, &q.config)
	if err != nil {
		return nil, fmt.Errorf("%w: %s (%s): %w", query.ErrDeviceUnreachable, device.Name, device.Connections.SNMP.IP, err)
	}

	q.sessions[device.Name] = w

	return w, nil
}

// Close closes every open session.
func (q *Querier) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for name, w := range q.sessions {
		if err := w.Close(); err != nil {
			q.logger.Warn().Err(err).Str("device", name).Msg("Failed to close SNMP session")
		}

		delete(q.sessions, name)
	}

	return nil
}

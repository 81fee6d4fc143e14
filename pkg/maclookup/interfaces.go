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

//go:generate mockgen -destination=mock_maclookup.go -package=maclookup github.com/carverauto/maclookup/pkg/maclookup Querier,Publisher

// Package maclookup correlates ARP tables from layer 3 devices with the MAC address
// tables of every device to find the switch ports each host is reachable on.
package maclookup

import (
	"context"

	"github.com/carverauto/maclookup/pkg/inventory"
)

// Querier runs a command on a device and returns its parsed output as a JSON document.
type Querier interface {
	// Parse returns the parsed output of command on device.
	Parse(ctx context.Context, device *inventory.Device, command string) ([]byte, error)
}

// Publisher hands a finished run to its destination.
type Publisher interface {
	// Publish persists or forwards result.
	Publish(ctx context.Context, result *Result) error
}

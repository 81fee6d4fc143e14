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

// Package query holds the pieces shared by the device query collaborators:
// their failure sentinels and the router that picks one per device.
package query

import "errors"

var (
	// ErrCommandNotSupported is returned when a device has no data for a command,
	// such as a forwarding-table query against a pure router.
	ErrCommandNotSupported = errors.New("command not supported by device")
	// ErrEmptyOutput is returned when a command ran but produced nothing to parse.
	ErrEmptyOutput = errors.New("command returned empty output")
	// ErrDeviceUnreachable covers transport, authentication and timeout failures.
	ErrDeviceUnreachable = errors.New("device unreachable")
	// ErrNoQuerier is returned when no collaborator can reach a device.
	ErrNoQuerier = errors.New("no query method configured for device")
)

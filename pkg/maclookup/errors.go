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

import "errors"

var (
	ErrConfigNil          = errors.New("config cannot be nil")
	ErrInvalidWorkers     = errors.New("workers must not be negative")
	ErrInventoryRequired  = errors.New("device inventory is required")
	ErrQuerierRequired    = errors.New("device querier is required")
	ErrTestbedRequired    = errors.New("testbed file is required")
	ErrPublisherRequired  = errors.New("publisher is required")
	ErrOutputFileRequired = errors.New("output file is required")

	// ErrUnexpectedSchema is returned when a parsed table lacks the expected root.
	ErrUnexpectedSchema = errors.New("unexpected table schema")
	// ErrUnsupportedPlatform is returned when a platform has no ARP command.
	ErrUnsupportedPlatform = errors.New("no ARP command for platform")
)

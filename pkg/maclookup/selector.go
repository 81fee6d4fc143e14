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

	"github.com/carverauto/maclookup/pkg/inventory"
)

// SelectDevices resolves names against devices, keeping request order. Names that
// are not in the collection are reported and left out.
func SelectDevices(devices map[string]*inventory.Device, names []string) ([]*inventory.Device, []Diagnostic) {
	var (
		selected []*inventory.Device
		diags    []Diagnostic
	)

	for _, name := range names {
		dev, ok := devices[name]
		if !ok {
			diags = append(diags, Diagnostic{
				Kind:    DiagnosticUnresolvedDevice,
				Device:  name,
				Message: fmt.Sprintf("Error: Device with name %s not found in testbed.", name),
			})

			continue
		}

		selected = append(selected, dev)
	}

	return selected, diags
}

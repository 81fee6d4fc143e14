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
	"slices"
)

// baselineExclusions are interfaces that never identify where a host is attached.
var baselineExclusions = []string{"CPU", "Sup-eth1(R)", "vPC Peer-Link(R)"}

// ExclusionPolicy is the set of interface names never recorded as sightings.
type ExclusionPolicy struct {
	names map[string]struct{}
}

// NewExclusionPolicy returns the baseline exclusions plus additions.
// Names match exactly.
func NewExclusionPolicy(additions ...string) *ExclusionPolicy {
	p := &ExclusionPolicy{names: make(map[string]struct{}, len(baselineExclusions)+len(additions))}

	for _, name := range baselineExclusions {
		p.names[name] = struct{}{}
	}

	for _, name := range additions {
		p.names[name] = struct{}{}
	}

	return p
}

// Excludes reports whether iface must not produce a sighting.
func (p *ExclusionPolicy) Excludes(iface string) bool {
	_, ok := p.names[iface]
	return ok
}

// Names returns the excluded interface names, sorted.
func (p *ExclusionPolicy) Names() []string {
	out := make([]string, 0, len(p.names))

	for name := range p.names {
		out = append(out, name)
	}

	slices.Sort(out)

	return out
}

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

package models

const (
	// IncompleteLinkLayerAddress is the ARP placeholder for a neighbor that never resolved.
	IncompleteLinkLayerAddress = "INCOMPLETE"

	// MACTypeNotAvailable is recorded when a forwarding entry carries no learn type.
	MACTypeNotAvailable = "N/A"
)

// InterfaceSighting is one place a MAC address was learned at layer 2.
type InterfaceSighting struct {
	Device    string `json:"device"`
	Interface string `json:"interface"`
	MACType   string `json:"mac_type"`
	VLAN      string `json:"vlan"`
}

// MACEntry is the registry value for one MAC address.
type MACEntry struct {
	IP         string              `json:"ip"`
	Interfaces []InterfaceSighting `json:"interfaces"`
}

// Registry maps a MAC address, exactly as the device reported it, to what is known about it.
type Registry map[string]*MACEntry

// Upsert records ip for mac, replacing any earlier IP. New entries start with no sightings.
func (r Registry) Upsert(mac, ip string) {
	if entry, ok := r[mac]; ok {
		entry.IP = ip
		return
	}

	r[mac] = &MACEntry{IP: ip, Interfaces: []InterfaceSighting{}}
}

// AddSighting appends s to the entry for mac. It returns false when mac is unknown.
func (r Registry) AddSighting(mac string, s InterfaceSighting) bool {
	entry, ok := r[mac]
	if !ok {
		return false
	}

	entry.Interfaces = append(entry.Interfaces, s)

	return true
}

// SightingCount returns the number of interface sightings across all entries.
func (r Registry) SightingCount() int {
	n := 0
	for _, entry := range r {
		n += len(entry.Interfaces)
	}

	return n
}

// Clone returns a deep copy of the registry.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))

	for mac, entry := range r {
		interfaces := make([]InterfaceSighting, len(entry.Interfaces))
		copy(interfaces, entry.Interfaces)

		out[mac] = &MACEntry{IP: entry.IP, Interfaces: interfaces}
	}

	return out
}

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
	"strings"

	"github.com/tidwall/gjson"

	"github.com/carverauto/maclookup/pkg/models"
)

// learnTypeFields are the detail fields that may carry the learn type, first
// non-null match wins.
var learnTypeFields = []string{"mac_type", "entry_type"}

// Neighbor is one resolved (or unresolved) ARP entry.
type Neighbor struct {
	IP               string
	LinkLayerAddress string
}

// AddressFamily groups the neighbors of one protocol family on an interface.
type AddressFamily struct {
	Name      string
	Neighbors []Neighbor
}

// ARPInterface is the ARP table of one L3 interface.
type ARPInterface struct {
	Name     string
	Families []AddressFamily
}

// ARPTable is the decoded neighbor table of a device. Slices keep document order.
type ARPTable struct {
	Interfaces []ARPInterface
}

// InterfaceDetail is one port a MAC was learned on.
type InterfaceDetail struct {
	Interface string
	MACType   string
}

// LearnRecord lists the ports one MAC was learned on within a VLAN.
type LearnRecord struct {
	MAC        string
	Interfaces []InterfaceDetail
}

// VLANTable is the forwarding table of one VLAN.
type VLANTable struct {
	ID   string
	MACs []LearnRecord
}

// ForwardingTable is the decoded MAC address table of a device. Slices keep document order.
type ForwardingTable struct {
	VLANs []VLANTable
}

// forEachUnique iterates the members of an object in document order, visiting each
// key once. A repeated key keeps its first position and takes its last value, as a
// decoded JSON map would.
func forEachUnique(obj gjson.Result, fn func(key, value gjson.Result) bool) {
	var keys []gjson.Result

	values := make(map[string]gjson.Result)

	obj.ForEach(func(key, value gjson.Result) bool {
		if _, seen := values[key.String()]; !seen {
			keys = append(keys, key)
		}

		values[key.String()] = value

		return true
	})

	for _, key := range keys {
		if !fn(key, values[key.String()]) {
			return
		}
	}
}

// member returns the last value stored under key in obj.
func member(obj gjson.Result, key string) gjson.Result {
	var found gjson.Result

	obj.ForEach(func(k, v gjson.Result) bool {
		if k.String() == key {
			found = v
		}

		return true
	})

	return found
}

func parseDocument(data []byte, path ...string) (gjson.Result, error) {
	if !gjson.ValidBytes(data) {
		return gjson.Result{}, fmt.Errorf("%w: invalid JSON", ErrUnexpectedSchema)
	}

	res := gjson.ParseBytes(data)
	for _, key := range path {
		res = member(res, key)
	}

	if !res.IsObject() {
		return gjson.Result{}, fmt.Errorf("%w: missing %q", ErrUnexpectedSchema, strings.Join(path, "."))
	}

	return res, nil
}

// DecodeARPTable reads interfaces.<if>.<family>.neighbors.<ip> from a parsed ARP document.
func DecodeARPTable(data []byte) (*ARPTable, error) {
	root, err := parseDocument(data, "interfaces")
	if err != nil {
		return nil, err
	}

	table := &ARPTable{}

	forEachUnique(root, func(ifName, ifValue gjson.Result) bool {
		if !ifValue.IsObject() {
			return true
		}

		iface := ARPInterface{Name: ifName.String()}

		forEachUnique(ifValue, func(family, familyValue gjson.Result) bool {
			neighbors := member(familyValue, "neighbors")
			if !neighbors.IsObject() {
				return true
			}

			fam := AddressFamily{Name: family.String()}

			forEachUnique(neighbors, func(key, n gjson.Result) bool {
				ip := key.String()
				if v := member(n, "ip"); v.Exists() && v.Type != gjson.Null {
					ip = v.String()
				}

				fam.Neighbors = append(fam.Neighbors, Neighbor{
					IP:               ip,
					LinkLayerAddress: member(n, "link_layer_address").String(),
				})

				return true
			})

			iface.Families = append(iface.Families, fam)

			return true
		})

		table.Interfaces = append(table.Interfaces, iface)

		return true
	})

	return table, nil
}

// DecodeForwardingTable reads mac_table.vlans.<vlan>.mac_addresses.<mac>.interfaces.<if>
// from a parsed MAC address table document.
func DecodeForwardingTable(data []byte) (*ForwardingTable, error) {
	root, err := parseDocument(data, "mac_table", "vlans")
	if err != nil {
		return nil, err
	}

	table := &ForwardingTable{}

	forEachUnique(root, func(vlanID, vlanValue gjson.Result) bool {
		vlan := VLANTable{ID: vlanID.String()}

		forEachUnique(member(vlanValue, "mac_addresses"), func(mac, record gjson.Result) bool {
			if !record.IsObject() {
				return true
			}

			rec := LearnRecord{MAC: mac.String()}

			forEachUnique(member(record, "interfaces"), func(key, detail gjson.Result) bool {
				if !detail.IsObject() {
					return true
				}

				name := key.String()
				if v := member(detail, "interface"); v.String() != "" {
					name = v.String()
				}

				rec.Interfaces = append(rec.Interfaces, InterfaceDetail{
					Interface: name,
					MACType:   learnType(detail),
				})

				return true
			})

			vlan.MACs = append(vlan.MACs, rec)

			return true
		})

		table.VLANs = append(table.VLANs, vlan)

		return true
	})

	return table, nil
}

func learnType(detail gjson.Result) string {
	for _, field := range learnTypeFields {
		if v := member(detail, field); v.Exists() && v.Type != gjson.Null {
			return v.String()
		}
	}

	return models.MACTypeNotAvailable
}

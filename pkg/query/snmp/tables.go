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

package snmp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/maclookup/pkg/models"
	"github.com/carverauto/maclookup/pkg/query"
)

const (
	oidIfDescr              = ".1.3.6.1.2.1.2.2.1.2"
	oidIfName               = ".1.3.6.1.2.1.31.1.1.1.1"
	oidIPNetToMediaPhysAddr = ".1.3.6.1.2.1.4.22.1.2"
	oidIPNetToMediaType     = ".1.3.6.1.2.1.4.22.1.4"
	oidDot1dBasePortIfIndex = ".1.3.6.1.2.1.17.1.4.1.2"
	oidDot1qTpFdbPort       = ".1.3.6.1.2.1.17.7.1.2.2.1.2"
	oidDot1qTpFdbStatus     = ".1.3.6.1.2.1.17.7.1.2.2.1.3"

	ipNetToMediaTypeInvalid = 2
	ipNetToMediaTypeStatic  = 4
	fdbStatusOther          = 1
	fdbStatusInvalid        = 2
	fdbStatusLearned        = 3
	fdbStatusSelf           = 4
	fdbStatusMgmt           = 5

	macOctets             = 6
	ipv4Octets            = 4
	defaultNeighborOrigin = "dynamic"
	staticNeighborOrigin  = "static"
)

type walkRow struct {
	index string
	pdu   gosnmp.SnmpPDU
}

// walk collects every row under root, keyed by the index suffix.
func walk(w Walker, root string) ([]walkRow, error) {
	var rows []walkRow

	err := w.BulkWalk(root, func(pdu gosnmp.SnmpPDU) error {
		name := pdu.Name
		if !strings.HasPrefix(name, ".") {
			name = "." + name
		}

		index := strings.TrimPrefix(name, root+".")
		if index == name {
			return nil
		}

		rows = append(rows, walkRow{index: index, pdu: pdu})

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk %s: %w", query.ErrDeviceUnreachable, root, err)
	}

	return rows, nil
}

func toInt(pdu gosnmp.SnmpPDU) int64 {
	v := gosnmp.ToBigInt(pdu.Value)
	if v == nil || !v.IsInt64() {
		return 0
	}

	return v.Int64()
}

func toBytes(pdu gosnmp.SnmpPDU) []byte {
	switch v := pdu.Value.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	default:
		return nil
	}
}

// interfaceNames maps ifIndex to ifName, falling back to ifDescr.
func interfaceNames(w Walker) (map[int64]string, error) {
	names := make(map[int64]string)

	for _, root := range []string{oidIfName, oidIfDescr} {
		rows, err := walk(w, root)
		if err != nil {
			return nil, err
		}

		for _, row := range rows {
			idx, err := strconv.ParseInt(row.index, 10, 64)
			if err != nil {
				continue
			}

			if _, ok := names[idx]; ok {
				continue
			}

			if name := string(toBytes(row.pdu)); name != "" {
				names[idx] = name
			}
		}
	}

	return names, nil
}

func interfaceName(names map[int64]string, ifIndex int64) string {
	if name, ok := names[ifIndex]; ok {
		return name
	}

	return "ifIndex" + strconv.FormatInt(ifIndex, 10)
}

// FormatMAC renders six octets in dotted Cisco notation, e.g. 0050.56bf.6f29.
func FormatMAC(b []byte) string {
	if len(b) != macOctets {
		return ""
	}

	return fmt.Sprintf("%02x%02x.%02x%02x.%02x%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}

// parseOctets splits a dotted index into n trailing integers in 0..255.
func parseOctets(parts []string) ([]byte, bool) {
	out := make([]byte, len(parts))

	for i, p := range parts {
		v, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return nil, false
		}

		out[i] = byte(v)
	}

	return out, true
}

type neighbor struct {
	IP                string `json:"ip"`
	LinkLayerAddress  string `json:"link_layer_address"`
	Origin            string `json:"origin"`
	PhysicalInterface string `json:"physical_interface"`
}

type familyTable struct {
	Neighbors map[string]neighbor `json:"neighbors"`
}

type arpDocument struct {
	Interfaces map[string]map[string]familyTable `json:"interfaces"`
	Statistics struct {
		EntriesTotal int `json:"entries_total"`
	} `json:"statistics"`
}

// buildARPTable renders ipNetToMediaTable as an ARP document.
func buildARPTable(w Walker) (any, error) {
	phys, err := walk(w, oidIPNetToMediaPhysAddr)
	if err != nil {
		return nil, err
	}

	if len(phys) == 0 {
		return nil, query.ErrEmptyOutput
	}

	types, err := walk(w, oidIPNetToMediaType)
	if err != nil {
		return nil, err
	}

	entryType := make(map[string]int64, len(types))
	for _, row := range types {
		entryType[row.index] = toInt(row.pdu)
	}

	names, err := interfaceNames(w)
	if err != nil {
		return nil, err
	}

	doc := arpDocument{Interfaces: make(map[string]map[string]familyTable)}

	for _, row := range phys {
		parts := strings.Split(row.index, ".")
		if len(parts) != ipv4Octets+1 {
			continue
		}

		ifIndex, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}

		addr, ok := parseOctets(parts[1:])
		if !ok {
			continue
		}

		ip := fmt.Sprintf("%d.%d.%d.%d", addr[0], addr[1], addr[2], addr[3])
		ifName := interfaceName(names, ifIndex)

		mac := FormatMAC(toBytes(row.pdu))
		typ := entryType[row.index]

		if mac == "" || typ == ipNetToMediaTypeInvalid {
			mac = models.IncompleteLinkLayerAddress
		}

		origin := defaultNeighborOrigin
		if typ == ipNetToMediaTypeStatic {
			origin = staticNeighborOrigin
		}

		families, ok := doc.Interfaces[ifName]
		if !ok {
			families = map[string]familyTable{"ipv4": {Neighbors: make(map[string]neighbor)}}
			doc.Interfaces[ifName] = families
		}

		families["ipv4"].Neighbors[ip] = neighbor{
			IP:                ip,
			LinkLayerAddress:  mac,
			Origin:            origin,
			PhysicalInterface: ifName,
		}

		doc.Statistics.EntriesTotal++
	}

	return doc, nil
}

type fdbInterface struct {
	Interface string `json:"interface"`
	EntryType string `json:"entry_type"`
}

type fdbMAC struct {
	MACAddress string                  `json:"mac_address"`
	Interfaces map[string]fdbInterface `json:"interfaces"`
}

type fdbVLAN struct {
	VLAN         int64             `json:"vlan"`
	MACAddresses map[string]fdbMAC `json:"mac_addresses"`
}

type macTableDocument struct {
	MACTable struct {
		VLANs map[string]fdbVLAN `json:"vlans"`
	} `json:"mac_table"`
	TotalMACAddresses int `json:"total_mac_addresses"`
}

func fdbStatusName(status int64) string {
	switch status {
	case fdbStatusLearned:
		return "dynamic"
	case fdbStatusMgmt:
		return "static"
	case fdbStatusSelf:
		return "self"
	case fdbStatusOther:
		return "other"
	default:
		return models.MACTypeNotAvailable
	}
}

// buildMACTable renders dot1qTpFdbTable as a forwarding-table document.
func buildMACTable(w Walker) (any, error) {
	ports, err := walk(w, oidDot1qTpFdbPort)
	if err != nil {
		return nil, err
	}

	if len(ports) == 0 {
		return nil, query.ErrCommandNotSupported
	}

	statuses, err := walk(w, oidDot1qTpFdbStatus)
	if err != nil {
		return nil, err
	}

	status := make(map[string]int64, len(statuses))
	for _, row := range statuses {
		status[row.index] = toInt(row.pdu)
	}

	basePorts, err := walk(w, oidDot1dBasePortIfIndex)
	if err != nil {
		return nil, err
	}

	portIfIndex := make(map[int64]int64, len(basePorts))

	for _, row := range basePorts {
		port, err := strconv.ParseInt(row.index, 10, 64)
		if err != nil {
			continue
		}

		portIfIndex[port] = toInt(row.pdu)
	}

	names, err := interfaceNames(w)
	if err != nil {
		return nil, err
	}

	var doc macTableDocument

	doc.MACTable.VLANs = make(map[string]fdbVLAN)

	for _, row := range ports {
		parts := strings.Split(row.index, ".")
		if len(parts) != macOctets+1 {
			continue
		}

		vlan, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			continue
		}

		octets, ok := parseOctets(parts[1:])
		if !ok {
			continue
		}

		st, known := status[row.index]
		if known && st == fdbStatusInvalid {
			continue
		}

		ifIndex, ok := portIfIndex[toInt(row.pdu)]
		if !ok {
			continue
		}

		mac := FormatMAC(octets)
		ifName := interfaceName(names, ifIndex)
		key := strconv.FormatInt(vlan, 10)

		v, ok := doc.MACTable.VLANs[key]
		if !ok {
			v = fdbVLAN{VLAN: vlan, MACAddresses: make(map[string]fdbMAC)}
			doc.MACTable.VLANs[key] = v
		}

		m, ok := v.MACAddresses[mac]
		if !ok {
			m = fdbMAC{MACAddress: mac, Interfaces: make(map[string]fdbInterface)}
			v.MACAddresses[mac] = m
		}

		m.Interfaces[ifName] = fdbInterface{Interface: ifName, EntryType: fdbStatusName(st)}
		doc.TotalMACAddresses++
	}

	if doc.TotalMACAddresses == 0 {
		return nil, query.ErrCommandNotSupported
	}

	return doc, nil
}

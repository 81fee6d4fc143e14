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
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/maclookup/pkg/inventory"
	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/models"
	"github.com/carverauto/maclookup/pkg/query"
)

func seededRegistry() models.Registry {
	reg := models.Registry{}
	reg.Upsert("aaaa.bbbb.cccc", "10.1.1.5")

	return reg
}

func TestEnrichAppendsSighting(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	sw1 := device("sw1", inventory.PlatformIOS)
	q.EXPECT().Parse(gomock.Any(), sw1, MACTableCommand).
		Return([]byte(macTableDoc("10", "aaaa.bbbb.cccc", "Gi0/1", "dynamic")), nil)

	reg := seededRegistry()
	diags := NewEnricher(q, 1, NewExclusionPolicy(), logger.NewTestLogger()).
		Enrich(context.Background(), reg, []*inventory.Device{sw1})

	assert.Empty(t, diags)
	assert.Equal(t, []models.InterfaceSighting{
		{Device: "sw1", Interface: "Gi0/1", MACType: "dynamic", VLAN: "10"},
	}, reg["aaaa.bbbb.cccc"].Interfaces)
	assert.Equal(t, "10.1.1.5", reg["aaaa.bbbb.cccc"].IP)
}

func TestEnrichHonorsExclusions(t *testing.T) {
	tests := []struct {
		name   string
		iface  string
		policy *ExclusionPolicy
	}{
		{"caller addition", "Gi0/1", NewExclusionPolicy("Gi0/1")},
		{"baseline", "CPU", nil},
		{"baseline peer link", "vPC Peer-Link(R)", NewExclusionPolicy("Po1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			q := NewMockQuerier(ctrl)

			sw1 := device("sw1", inventory.PlatformNXOS)
			q.EXPECT().Parse(gomock.Any(), sw1, MACTableCommand).
				Return([]byte(macTableDoc("10", "aaaa.bbbb.cccc", tt.iface, "dynamic")), nil)

			reg := seededRegistry()
			diags := NewEnricher(q, 1, tt.policy, nil).Enrich(context.Background(), reg, []*inventory.Device{sw1})

			assert.Empty(t, diags)
			assert.Empty(t, reg["aaaa.bbbb.cccc"].Interfaces)
		})
	}
}

func TestEnrichRepeatedVLANKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	doc := `{"mac_table": {"vlans": {
		"10": {"mac_addresses": {"aaaa.bbbb.cccc": {"interfaces": {"Gi0/1": {"interface": "Gi0/1", "mac_type": "dynamic"}}}}},
		"10": {"mac_addresses": {"aaaa.bbbb.cccc": {"interfaces": {"Gi0/1": {"interface": "Gi0/1", "mac_type": "dynamic"}}}}}
	}}}`

	sw1 := device("sw1", inventory.PlatformIOS)
	q.EXPECT().Parse(gomock.Any(), sw1, MACTableCommand).Return([]byte(doc), nil)

	reg := seededRegistry()
	diags := NewEnricher(q, 1, nil, nil).Enrich(context.Background(), reg, []*inventory.Device{sw1})

	assert.Empty(t, diags)
	assert.Equal(t, []models.InterfaceSighting{
		{Device: "sw1", Interface: "Gi0/1", MACType: "dynamic", VLAN: "10"},
	}, reg["aaaa.bbbb.cccc"].Interfaces)
}

func TestEnrichUnknownMAC(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	sw1 := device("sw1", inventory.PlatformIOS)
	q.EXPECT().Parse(gomock.Any(), sw1, MACTableCommand).
		Return([]byte(macTableDoc("20", "dead.beef.0001", "Gi0/2", "dynamic")), nil)

	reg := seededRegistry()
	before := reg.Clone()

	diags := NewEnricher(q, 1, nil, nil).Enrich(context.Background(), reg, []*inventory.Device{sw1})

	require.Len(t, diags, 1)
	assert.Equal(t, DiagnosticNoARPForMAC, diags[0].Kind)
	assert.Equal(t, "dead.beef.0001", diags[0].MAC)
	assert.Equal(t, "No ARP for MAC Address dead.beef.0001 found.", diags[0].Message)
	assert.Equal(t, before, reg)
}

func TestEnrichToleratesRouters(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	r1 := device("r1", inventory.PlatformIOSXR)
	sw1 := device("sw1", inventory.PlatformNXOS)

	q.EXPECT().Parse(gomock.Any(), r1, MACTableCommand).Return(nil, query.ErrCommandNotSupported)
	q.EXPECT().Parse(gomock.Any(), sw1, MACTableCommand).
		Return([]byte(macTableDoc("30", "aaaa.bbbb.cccc", "Ethernet1/11", "dynamic")), nil)

	reg := seededRegistry()
	diags := NewEnricher(q, 2, nil, nil).Enrich(context.Background(), reg, []*inventory.Device{r1, sw1})

	require.Len(t, diags, 1)
	assert.Equal(t, DiagnosticQueryFailed, diags[0].Kind)
	assert.Equal(t, "r1", diags[0].Device)
	require.ErrorIs(t, diags[0].Err, query.ErrCommandNotSupported)
	assert.Contains(t, diags[0].Message, "Unable to retrieve MACs from device r1")

	assert.Equal(t, []models.InterfaceSighting{
		{Device: "sw1", Interface: "Ethernet1/11", MACType: "dynamic", VLAN: "30"},
	}, reg["aaaa.bbbb.cccc"].Interfaces)
}

func TestEnrichSightingOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	sw1 := device("sw1", inventory.PlatformNXOS)
	sw2 := device("sw2", inventory.PlatformNXOS)

	sw1Doc := `{"mac_table": {"vlans": {
		"30": {"mac_addresses": {"aaaa.bbbb.cccc": {"interfaces": {
			"Ethernet1/12": {"interface": "Ethernet1/12", "mac_type": "dynamic"},
			"Ethernet1/11": {"interface": "Ethernet1/11", "mac_type": "static"},
			"CPU": {"interface": "CPU", "mac_type": "static"}
		}}}},
		"10": {"mac_addresses": {"aaaa.bbbb.cccc": {"interfaces": {
			"Ethernet1/1": {"interface": "Ethernet1/1"}
		}}}}
	}}}`

	q.EXPECT().Parse(gomock.Any(), sw1, MACTableCommand).Return([]byte(sw1Doc), nil)
	q.EXPECT().Parse(gomock.Any(), sw2, MACTableCommand).
		Return([]byte(macTableDoc("30", "aaaa.bbbb.cccc", "Gi0/3", "dynamic")), nil)

	reg := seededRegistry()
	diags := NewEnricher(q, 4, nil, nil).Enrich(context.Background(), reg, []*inventory.Device{sw1, sw2})

	assert.Empty(t, diags)
	assert.Equal(t, []models.InterfaceSighting{
		{Device: "sw1", Interface: "Ethernet1/12", MACType: "dynamic", VLAN: "30"},
		{Device: "sw1", Interface: "Ethernet1/11", MACType: "static", VLAN: "30"},
		{Device: "sw1", Interface: "Ethernet1/1", MACType: "N/A", VLAN: "10"},
		{Device: "sw2", Interface: "Gi0/3", MACType: "dynamic", VLAN: "30"},
	}, reg["aaaa.bbbb.cccc"].Interfaces)
}

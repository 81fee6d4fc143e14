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

func TestAggregateSingleNeighbor(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	r1 := device("r1", inventory.PlatformNXOS)
	q.EXPECT().Parse(gomock.Any(), r1, "show ip arp vrf all").Return([]byte(scenarioAARP), nil)

	reg, diags := NewAggregator(q, 1, logger.NewTestLogger()).Aggregate(context.Background(), []*inventory.Device{r1})

	assert.Empty(t, diags)
	assert.Equal(t, models.Registry{
		"aaaa.bbbb.cccc": {IP: "10.1.1.5", Interfaces: []models.InterfaceSighting{}},
	}, reg)
}

func TestAggregateSkipsIncomplete(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	r1 := device("r1", inventory.PlatformIOSXE)
	doc := `{"interfaces": {"Gi1": {"ipv4": {"neighbors": {
		"10.1.1.7": {"ip": "10.1.1.7", "link_layer_address": "INCOMPLETE"},
		"10.1.1.8": {"ip": "10.1.1.8", "link_layer_address": ""},
		"10.1.1.9": {"ip": "10.1.1.9", "link_layer_address": "aaaa.bbbb.0009"}
	}}}}}`
	q.EXPECT().Parse(gomock.Any(), r1, "show ip arp").Return([]byte(doc), nil)

	reg, diags := NewAggregator(q, 1, nil).Aggregate(context.Background(), []*inventory.Device{r1})

	assert.Empty(t, diags)
	require.Len(t, reg, 1)
	assert.Contains(t, reg, "aaaa.bbbb.0009")
	assert.NotContains(t, reg, "INCOMPLETE")
}

func TestAggregateUnsupportedPlatform(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	r1 := device("r1", "junos")
	r2 := device("r2", inventory.PlatformIOS)

	q.EXPECT().Parse(gomock.Any(), r2, "show ip arp").Return([]byte(arpDoc("Gi0/0", "10.0.0.2", "aaaa.0000.0002")), nil)

	reg, diags := NewAggregator(q, 1, nil).Aggregate(context.Background(), []*inventory.Device{r1, r2})

	require.Len(t, diags, 1)
	assert.Equal(t, DiagnosticUnsupportedPlatform, diags[0].Kind)
	assert.Equal(t, "r1", diags[0].Device)
	require.ErrorIs(t, diags[0].Err, ErrUnsupportedPlatform)

	assert.Equal(t, models.Registry{
		"aaaa.0000.0002": {IP: "10.0.0.2", Interfaces: []models.InterfaceSighting{}},
	}, reg)
}

func TestAggregateLastWriteWins(t *testing.T) {
	for _, workers := range []int{1, 4} {
		ctrl := gomock.NewController(t)
		q := NewMockQuerier(ctrl)

		r1 := device("r1", inventory.PlatformIOS)
		r2 := device("r2", inventory.PlatformIOSXR)

		q.EXPECT().Parse(gomock.Any(), r1, "show ip arp").Return([]byte(arpDoc("Gi0/0", "10.0.0.1", "aaaa.bbbb.cccc")), nil)
		q.EXPECT().Parse(gomock.Any(), r2, "show arp detail").Return([]byte(arpDoc("Gi0/0/0/0", "10.0.0.2", "aaaa.bbbb.cccc")), nil)

		reg, diags := NewAggregator(q, workers, nil).Aggregate(context.Background(), []*inventory.Device{r1, r2})

		assert.Empty(t, diags)
		require.Len(t, reg, 1)
		assert.Equal(t, "10.0.0.2", reg["aaaa.bbbb.cccc"].IP, "later device wins (workers=%d)", workers)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	q := NewMockQuerier(ctrl)

	r1 := device("r1", inventory.PlatformNXOS)
	q.EXPECT().Parse(gomock.Any(), r1, gomock.Any()).Return([]byte(scenarioAARP), nil).Times(2)

	agg := NewAggregator(q, 1, nil)
	reg := models.Registry{}

	require.Empty(t, agg.AggregateInto(context.Background(), reg, []*inventory.Device{r1}))
	first := reg.Clone()

	require.Empty(t, agg.AggregateInto(context.Background(), reg, []*inventory.Device{r1}))
	assert.Equal(t, first, reg)
}

func TestAggregateIsolatesFailures(t *testing.T) {
	failures := []error{
		query.ErrDeviceUnreachable,
		query.ErrCommandNotSupported,
		query.ErrEmptyOutput,
		nil, // schema error below
	}

	for _, failure := range failures {
		ctrl := gomock.NewController(t)
		q := NewMockQuerier(ctrl)

		r1 := device("r1", inventory.PlatformIOS)
		bad := device("bad", inventory.PlatformIOS)
		r3 := device("r3", inventory.PlatformIOS)

		q.EXPECT().Parse(gomock.Any(), r1, "show ip arp").Return([]byte(arpDoc("Gi1", "10.0.0.1", "aaaa.0000.0001")), nil)

		if failure != nil {
			q.EXPECT().Parse(gomock.Any(), bad, "show ip arp").Return(nil, failure)
		} else {
			q.EXPECT().Parse(gomock.Any(), bad, "show ip arp").Return([]byte(`{"unexpected": true}`), nil)
		}

		q.EXPECT().Parse(gomock.Any(), r3, "show ip arp").Return([]byte(arpDoc("Gi1", "10.0.0.3", "aaaa.0000.0003")), nil)

		reg, diags := NewAggregator(q, 2, nil).Aggregate(context.Background(), []*inventory.Device{r1, bad, r3})

		require.Len(t, diags, 1)
		assert.Equal(t, DiagnosticQueryFailed, diags[0].Kind)
		assert.Equal(t, "bad", diags[0].Device)
		assert.Equal(t, "Problem looking up ARP table on device bad", diags[0].Message)

		if failure != nil {
			require.ErrorIs(t, diags[0].Err, failure)
		} else {
			require.ErrorIs(t, diags[0].Err, ErrUnexpectedSchema)
		}

		assert.Equal(t, models.Registry{
			"aaaa.0000.0001": {IP: "10.0.0.1", Interfaces: []models.InterfaceSighting{}},
			"aaaa.0000.0003": {IP: "10.0.0.3", Interfaces: []models.InterfaceSighting{}},
		}, reg)
	}
}

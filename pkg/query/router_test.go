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

package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/maclookup/pkg/inventory"
)

var errCloseFailed = errors.New("close failed")

type closingQuerier struct {
	*MockQuerier
	closed bool
	err    error
}

func (c *closingQuerier) Close() error {
	c.closed = true
	return c.err
}

func TestRouterPicksSNMPForSNMPDevices(t *testing.T) {
	ctrl := gomock.NewController(t)

	snmpQ := NewMockQuerier(ctrl)
	parsedQ := NewMockQuerier(ctrl)
	router := NewRouter(snmpQ, parsedQ)

	ctx := context.Background()
	core := &inventory.Device{
		Name:        "core1",
		Connections: inventory.Connections{SNMP: &inventory.SNMPConnection{IP: "10.0.0.1"}},
	}
	sw := &inventory.Device{Name: "sw1"}

	snmpQ.EXPECT().Parse(ctx, core, "show ip arp").Return([]byte(`{"interfaces":{}}`), nil)
	parsedQ.EXPECT().Parse(ctx, sw, "show mac address-table").Return(nil, ErrCommandNotSupported)

	out, err := router.Parse(ctx, core, "show ip arp")
	require.NoError(t, err)
	assert.JSONEq(t, `{"interfaces":{}}`, string(out))

	_, err = router.Parse(ctx, sw, "show mac address-table")
	require.ErrorIs(t, err, ErrCommandNotSupported)
}

func TestRouterFallsBackToParsedWithoutSNMPQuerier(t *testing.T) {
	ctrl := gomock.NewController(t)

	parsedQ := NewMockQuerier(ctrl)
	router := NewRouter(nil, parsedQ)

	core := &inventory.Device{
		Name:        "core1",
		Connections: inventory.Connections{SNMP: &inventory.SNMPConnection{IP: "10.0.0.1"}},
	}

	parsedQ.EXPECT().Parse(gomock.Any(), core, "show ip arp").Return([]byte(`{}`), nil)

	_, err := router.Parse(context.Background(), core, "show ip arp")
	require.NoError(t, err)
}

func TestRouterNoQuerier(t *testing.T) {
	router := NewRouter(nil, nil)

	_, err := router.Parse(context.Background(), &inventory.Device{Name: "lonely"}, "show ip arp")
	require.ErrorIs(t, err, ErrNoQuerier)
	assert.Contains(t, err.Error(), "lonely")
}

func TestRouterClose(t *testing.T) {
	ctrl := gomock.NewController(t)

	snmpQ := &closingQuerier{MockQuerier: NewMockQuerier(ctrl), err: errCloseFailed}
	parsedQ := &closingQuerier{MockQuerier: NewMockQuerier(ctrl)}

	err := NewRouter(snmpQ, parsedQ).Close()
	require.ErrorIs(t, err, errCloseFailed)
	assert.True(t, snmpQ.closed)
	assert.True(t, parsedQ.closed)
}

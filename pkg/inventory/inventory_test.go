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

package inventory

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/maclookup/pkg/models"
)

const labTestbed = `
testbed:
  name: dc-lab
devices:
  sw01-2:
    os: NXOS
    type: switch
    parsed:
      dir: fixtures/sw01-2
  core1:
    os: iosxe
    connections:
      snmp:
        ip: 10.10.20.1
        version: v2c
        community: public
        timeout: 2s
        retries: 0
  sw01-1:
    os: nxos
    parsed:
      dir: /srv/parsed/sw01-1
  fw1:
    os: asa
`

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "testbed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(labTestbed), 0o600))

	tb, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dc-lab", tb.Name)
	assert.Equal(t, []string{"core1", "fw1", "sw01-1", "sw01-2"}, tb.Names())

	sw2 := tb.Devices["sw01-2"]
	assert.Equal(t, "sw01-2", sw2.Name)
	assert.Equal(t, PlatformNXOS, sw2.Platform, "platform is lower-cased")
	assert.Equal(t, filepath.Join(dir, "fixtures/sw01-2"), sw2.Parsed.Dir)

	assert.Equal(t, "/srv/parsed/sw01-1", tb.Devices["sw01-1"].Parsed.Dir)

	core := tb.Devices["core1"]
	require.NotNil(t, core.Connections.SNMP)
	assert.Equal(t, "10.10.20.1", core.Connections.SNMP.IP)
	assert.Equal(t, models.Duration(2*time.Second), core.Connections.SNMP.Timeout)
	require.NotNil(t, core.Connections.SNMP.Retries, "an explicit zero is kept")
	assert.Equal(t, 0, *core.Connections.SNMP.Retries)

	assert.Equal(t, PlatformKind("asa"), tb.Devices["fw1"].Platform, "unknown platforms still load")

	ordered := tb.Ordered()
	require.Len(t, ordered, 4)
	assert.Equal(t, "core1", ordered[0].Name)
	assert.Equal(t, "sw01-2", ordered[3].Name)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte("testbed: {name: empty}\n"), "")
	require.ErrorIs(t, err, ErrNoDevices)

	_, err = Parse([]byte("devices: [oops"), "")
	require.Error(t, err)
}

func TestParseNilDevice(t *testing.T) {
	tb, err := Parse([]byte("devices:\n  bare:\n"), "")
	require.NoError(t, err)
	require.Contains(t, tb.Devices, "bare")
	assert.Equal(t, "bare", tb.Devices["bare"].Name)
	assert.Equal(t, PlatformKind(""), tb.Devices["bare"].Platform)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

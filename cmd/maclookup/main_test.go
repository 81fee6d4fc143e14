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

package main

import (
	"flag"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/maclookup/pkg/maclookup"
)

func newFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet("maclookup", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	return fs
}

func TestStringListSet(t *testing.T) {
	var s stringList

	require.NoError(t, s.Set("core1, core2"))
	require.NoError(t, s.Set("core3"))
	require.NoError(t, s.Set(" , "))

	assert.Equal(t, stringList{"core1", "core2", "core3"}, s)
	assert.Equal(t, "core1,core2,core3", s.String())
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags(newFlagSet(), []string{
		"-testbed", "lab.yaml",
		"-l3device", "core1",
		"-l3device", "core2,core3",
		"-skipinterface", "Po1",
		"-outputfile", "out.json",
		"-workers", "4",
		"-debug",
	})
	require.NoError(t, err)

	assert.Equal(t, "lab.yaml", opts.testbed)
	assert.Equal(t, stringList{"core1", "core2", "core3"}, opts.layer3)
	assert.Equal(t, stringList{"Po1"}, opts.skip)
	assert.Equal(t, "out.json", opts.outputFile)
	assert.Equal(t, 4, opts.workers)
	assert.True(t, opts.debug)
	assert.True(t, opts.set["workers"])
	assert.False(t, opts.set["parsed-dir"])
}

func TestParseFlagsRejectsUnknown(t *testing.T) {
	_, err := parseFlags(newFlagSet(), []string{"-bogus"})
	require.Error(t, err)
}

func TestApplyFlagsOverConfig(t *testing.T) {
	cfg := maclookup.Config{
		Testbed:        "from-file.yaml",
		Layer3Devices:  []string{"core9"},
		SkipInterfaces: []string{"Po9"},
		OutputFile:     "file.json",
		Workers:        8,
		ParsedDir:      "/srv/parsed",
	}

	opts, err := parseFlags(newFlagSet(), []string{"-l3device", "core1", "-outputfile", "flag.json"})
	require.NoError(t, err)

	opts.apply(&cfg)

	assert.Equal(t, "from-file.yaml", cfg.Testbed)
	assert.Equal(t, []string{"core1"}, cfg.Layer3Devices)
	assert.Equal(t, []string{"Po9"}, cfg.SkipInterfaces)
	assert.Equal(t, "flag.json", cfg.OutputFile)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, "/srv/parsed", cfg.ParsedDir)
}

func TestApplyFlagDefaults(t *testing.T) {
	var cfg maclookup.Config

	opts, err := parseFlags(newFlagSet(), []string{"-testbed", "lab.yaml"})
	require.NoError(t, err)

	opts.apply(&cfg)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "lab.yaml", cfg.Testbed)
	assert.Empty(t, cfg.Layer3Devices)
	assert.Empty(t, cfg.SkipInterfaces)
	assert.Equal(t, "results.json", cfg.OutputFile)
	assert.Equal(t, 1, cfg.Workers)
}

func TestRunWithParsedOutput(t *testing.T) {
	out := filepath.Join(t.TempDir(), "results.json")

	err := run([]string{
		"-testbed", filepath.Join("testdata", "testbed.yaml"),
		"-l3device", "core1,missing",
		"-skipinterface", "Port-channel1",
		"-outputfile", out,
		"-workers", "2",
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"0050.56bf.6f29": {"ip": "10.10.20.49", "interfaces": [
			{"device": "sw01-1", "interface": "Ethernet1/11", "mac_type": "dynamic", "vlan": "30"}
		]},
		"5254.0006.91c9": {"ip": "10.10.20.172", "interfaces": [
			{"device": "sw01-1", "interface": "Ethernet1/12", "mac_type": "dynamic", "vlan": "30"}
		]}
	}`, string(data))
}

func TestRunRequiresTestbed(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "")

	err := run([]string{"-outputfile", filepath.Join(t.TempDir(), "results.json")})
	require.ErrorIs(t, err, maclookup.ErrTestbedRequired)
}

func TestRunMissingTestbed(t *testing.T) {
	err := run([]string{"-testbed", filepath.Join(t.TempDir(), "nope.yaml")})
	require.ErrorIs(t, err, errFailedToLoadTestbed)
}

func TestRunVersion(t *testing.T) {
	require.NoError(t, run([]string{"-version"}))
}

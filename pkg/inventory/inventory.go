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

// Package inventory loads the device collection (a pyATS-style testbed file)
// that every lookup run resolves device names against.
package inventory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carverauto/maclookup/pkg/models"
)

var (
	ErrNoDevices       = errors.New("testbed defines no devices")
	ErrEmptyDeviceName = errors.New("testbed device with empty name")
)

// PlatformKind is the vendor/OS family of a device. It selects command syntax.
type PlatformKind string

const (
	PlatformNXOS  PlatformKind = "nxos"
	PlatformIOSXR PlatformKind = "iosxr"
	PlatformIOSXE PlatformKind = "iosxe"
	PlatformIOS   PlatformKind = "ios"
)

// Device is one entry of the testbed.
type Device struct {
	Name        string        `yaml:"-"`
	Alias       string        `yaml:"alias,omitempty"`
	Type        string        `yaml:"type,omitempty"`
	Platform    PlatformKind  `yaml:"os"`
	Connections Connections   `yaml:"connections"`
	Parsed      *ParsedSource `yaml:"parsed,omitempty"`
}

// Connections lists the ways a device can be queried.
type Connections struct {
	SNMP *SNMPConnection `yaml:"snmp,omitempty"`
}

// SNMPConnection holds the SNMP endpoint and credentials for a device.
type SNMPConnection struct {
	IP              string          `yaml:"ip"`
	Port            uint16          `yaml:"port,omitempty"`
	Version         string          `yaml:"version,omitempty"`
	Community       string          `yaml:"community,omitempty"`
	Username        string          `yaml:"username,omitempty"`
	AuthProtocol    string          `yaml:"auth_protocol,omitempty"`
	AuthPassword    string          `yaml:"auth_password,omitempty"`
	PrivacyProtocol string          `yaml:"privacy_protocol,omitempty"`
	PrivacyPassword string          `yaml:"privacy_password,omitempty"`
	Timeout         models.Duration `yaml:"timeout,omitempty"`
	Retries         *int            `yaml:"retries,omitempty"`
}

// ParsedSource points at a directory of already-parsed command output for a device.
type ParsedSource struct {
	Dir string `yaml:"dir"`
}

// Testbed is the resolved device collection.
type Testbed struct {
	Name    string
	Devices map[string]*Device
}

type testbedFile struct {
	Testbed struct {
		Name string `yaml:"name"`
	} `yaml:"testbed"`
	Devices map[string]*Device `yaml:"devices"`
}

// Load reads a testbed YAML file. Relative parsed directories are resolved
// against the directory holding the file.
func Load(path string) (*Testbed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read testbed '%s': %w", path, err)
	}

	tb, err := Parse(data, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("testbed '%s': %w", path, err)
	}

	return tb, nil
}

// Parse decodes testbed YAML. baseDir anchors relative paths.
func Parse(data []byte, baseDir string) (*Testbed, error) {
	var file testbedFile

	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode testbed: %w", err)
	}

	if len(file.Devices) == 0 {
		return nil, ErrNoDevices
	}

	tb := &Testbed{
		Name:    file.Testbed.Name,
		Devices: make(map[string]*Device, len(file.Devices)),
	}

	for name, dev := range file.Devices {
		if strings.TrimSpace(name) == "" {
			return nil, ErrEmptyDeviceName
		}

		if dev == nil {
			dev = &Device{}
		}

		dev.Name = name
		dev.Platform = PlatformKind(strings.ToLower(string(dev.Platform)))

		if dev.Parsed != nil && dev.Parsed.Dir != "" && !filepath.IsAbs(dev.Parsed.Dir) && baseDir != "" {
			dev.Parsed.Dir = filepath.Join(baseDir, dev.Parsed.Dir)
		}

		tb.Devices[name] = dev
	}

	return tb, nil
}

// Names returns the device names in ascending order.
func (t *Testbed) Names() []string {
	return SortedNames(t.Devices)
}

// Ordered returns the devices in ascending name order.
func (t *Testbed) Ordered() []*Device {
	names := t.Names()
	out := make([]*Device, 0, len(names))

	for _, name := range names {
		out = append(out, t.Devices[name])
	}

	return out
}

// SortedNames returns the keys of devices in ascending order.
func SortedNames(devices map[string]*Device) []string {
	names := make([]string, 0, len(devices))
	for name := range devices {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

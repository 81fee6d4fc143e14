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

//go:generate mockgen -destination=mock_snmp.go -package=snmp github.com/carverauto/maclookup/pkg/query/snmp Walker

package snmp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gosnmp/gosnmp"

	"github.com/carverauto/maclookup/pkg/inventory"
	"github.com/carverauto/maclookup/pkg/models"
)

var (
	ErrUnsupportedSNMPVersion = errors.New("unsupported SNMP version")
	ErrMissingTarget          = errors.New("SNMP connection has no ip")
)

const (
	defaultPort           = 161
	defaultTimeout        = 5 * time.Second
	defaultRetries        = 2
	defaultMaxRepetitions = 10
	defaultVersion        = "v2c"
)

// Walker is the part of a gosnmp session the querier needs.
type Walker interface {
	BulkWalk(rootOid string, walkFn gosnmp.WalkFunc) error
	Close() error
}

// Dialer opens a session to the device described by conn.
type Dialer func(conn *inventory.SNMPConnection, cfg *Config) (Walker, error)

// Config holds the defaults applied to every SNMP session. Per-device connection
// settings in the testbed take precedence.
type Config struct {
	Port           uint16          `json:"port" yaml:"port"`
	Timeout        models.Duration `json:"timeout" yaml:"timeout"`
	Retries        *int            `json:"retries,omitempty" yaml:"retries,omitempty"`
	MaxRepetitions uint32          `json:"max_repetitions" yaml:"max_repetitions"`
	Version        string          `json:"version" yaml:"version"`
	Community      string          `json:"community" yaml:"community"`
}

// ApplyDefaults fills unset fields. An explicit zero Retries disables retries.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = defaultPort
	}

	if c.Timeout <= 0 {
		c.Timeout = models.Duration(defaultTimeout)
	}

	if c.Retries == nil || *c.Retries < 0 {
		retries := defaultRetries
		c.Retries = &retries
	}

	if c.MaxRepetitions == 0 {
		c.MaxRepetitions = defaultMaxRepetitions
	}

	if c.Version == "" {
		c.Version = defaultVersion
	}
}

type session struct {
	*gosnmp.GoSNMP
}

func (s session) Close() error {
	if s.Conn == nil {
		return nil
	}

	return s.Conn.Close()
}

// DialGoSNMP is the Dialer backed by gosnmp.
func DialGoSNMP(conn *inventory.SNMPConnection, cfg *Config) (Walker, error) {
	client, err := newClient(conn, cfg)
	if err != nil {
		return nil, err
	}

	if err := client.Connect(); err != nil {
		return nil, err
	}

	return session{GoSNMP: client}, nil
}

func newClient(conn *inventory.SNMPConnection, cfg *Config) (*gosnmp.GoSNMP, error) {
	if conn.IP == "" {
		return nil, ErrMissingTarget
	}

	client := &gosnmp.GoSNMP{
		Target:             conn.IP,
		Port:               cfg.Port,
		Timeout:            time.Duration(cfg.Timeout),
		Retries:            defaultRetries,
		MaxOids:            gosnmp.MaxOids,
		MaxRepetitions:     cfg.MaxRepetitions,
		ExponentialTimeout: true,
	}

	if cfg.Retries != nil && *cfg.Retries >= 0 {
		client.Retries = *cfg.Retries
	}

	if conn.Port != 0 {
		client.Port = conn.Port
	}

	if conn.Timeout > 0 {
		client.Timeout = time.Duration(conn.Timeout)
	}

	if conn.Retries != nil && *conn.Retries >= 0 {
		client.Retries = *conn.Retries
	}

	if err := configureClientVersion(client, conn, cfg); err != nil {
		return nil, err
	}

	return client, nil
}

// configureClientVersion sets up the SNMP client based on the connection's version
func configureClientVersion(client *gosnmp.GoSNMP, conn *inventory.SNMPConnection, cfg *Config) error {
	version := conn.Version
	if version == "" {
		version = cfg.Version
	}

	community := conn.Community
	if community == "" {
		community = cfg.Community
	}

	switch strings.ToLower(version) {
	case "v1", "1":
		client.Version = gosnmp.Version1
		client.Community = community
	case "v2c", "2c", "2":
		client.Version = gosnmp.Version2c
		client.Community = community
	case "v3", "3":
		client.Version = gosnmp.Version3
		client.SecurityModel = gosnmp.UserSecurityModel

		usm := &gosnmp.UsmSecurityParameters{
			UserName:               conn.Username,
			AuthenticationProtocol: gosnmp.NoAuth,
			PrivacyProtocol:        gosnmp.NoPriv,
		}

		configureV3Authentication(usm, conn)
		configureV3Privacy(usm, conn)

		client.SecurityParameters = usm
		client.MsgFlags = v3MsgFlags(usm)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedSNMPVersion, version)
	}

	return nil
}

func configureV3Authentication(usm *gosnmp.UsmSecurityParameters, conn *inventory.SNMPConnection) {
	switch strings.ToUpper(conn.AuthProtocol) {
	case "MD5":
		usm.AuthenticationProtocol = gosnmp.MD5
	case "SHA":
		usm.AuthenticationProtocol = gosnmp.SHA
	case "SHA224":
		usm.AuthenticationProtocol = gosnmp.SHA224
	case "SHA256":
		usm.AuthenticationProtocol = gosnmp.SHA256
	case "SHA384":
		usm.AuthenticationProtocol = gosnmp.SHA384
	case "SHA512":
		usm.AuthenticationProtocol = gosnmp.SHA512
	default:
		return
	}

	usm.AuthenticationPassphrase = conn.AuthPassword
}

func configureV3Privacy(usm *gosnmp.UsmSecurityParameters, conn *inventory.SNMPConnection) {
	switch strings.ToUpper(conn.PrivacyProtocol) {
	case "DES":
		usm.PrivacyProtocol = gosnmp.DES
	case "AES":
		usm.PrivacyProtocol = gosnmp.AES
	case "AES192":
		usm.PrivacyProtocol = gosnmp.AES192
	case "AES256":
		usm.PrivacyProtocol = gosnmp.AES256
	default:
		return
	}

	usm.PrivacyPassphrase = conn.PrivacyPassword
}

func v3MsgFlags(usm *gosnmp.UsmSecurityParameters) gosnmp.SnmpV3MsgFlags {
	switch {
	case usm.AuthenticationProtocol == gosnmp.NoAuth:
		return gosnmp.NoAuthNoPriv
	case usm.PrivacyProtocol == gosnmp.NoPriv:
		return gosnmp.AuthNoPriv
	default:
		return gosnmp.AuthPriv
	}
}

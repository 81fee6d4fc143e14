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
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/nats-io/nats.go"

	"github.com/carverauto/maclookup/pkg/config"
	"github.com/carverauto/maclookup/pkg/inventory"
	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/maclookup"
	"github.com/carverauto/maclookup/pkg/natsutil"
	"github.com/carverauto/maclookup/pkg/query"
	"github.com/carverauto/maclookup/pkg/query/parsed"
	"github.com/carverauto/maclookup/pkg/query/snmp"
	"github.com/carverauto/maclookup/pkg/version"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

var (
	errFailedToLoadConfig  = errors.New("failed to load maclookup configuration")
	errFailedToLoadTestbed = errors.New("failed to load testbed")
)

func run(args []string) error {
	opts, err := parseFlags(flag.NewFlagSet("maclookup", flag.ExitOnError), args)
	if err != nil {
		return err
	}

	if opts.version {
		fmt.Println("maclookup", version.GetFullVersion())
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg maclookup.Config

	if opts.configFile != "" || os.Getenv("CONFIG_SOURCE") == "env" {
		if err := config.NewConfig(nil).LoadAndValidate(ctx, opts.configFile, &cfg); err != nil {
			return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
		}
	}

	opts.apply(&cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	logCfg := logger.DefaultConfig()
	if cfg.Logging != nil {
		logCfg = cfg.Logging
	}

	if opts.debug {
		logCfg.Debug = true
	}

	mainLogger, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if cfg.Testbed == "" {
		return maclookup.ErrTestbedRequired
	}

	mainLogger.Info().Str("testbed", cfg.Testbed).Msg("Attempting to load devices in testbed")

	tb, err := inventory.Load(cfg.Testbed)
	if err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadTestbed, err)
	}

	if cfg.ParsedDir == "" {
		cfg.ParsedDir = filepath.Join(filepath.Dir(cfg.Testbed), "parsed")
	}

	router := query.NewRouter(
		snmp.NewQuerier(cfg.SNMP, nil, mainLogger),
		parsed.NewQuerier(cfg.ParsedDir, mainLogger),
	)

	defer func() {
		mainLogger.Info().Msg("Disconnecting from devices")

		if err := router.Close(); err != nil {
			mainLogger.Warn().Err(err).Msg("Failed to close device sessions")
		}
	}()

	publishers, closePublishers, err := buildPublishers(ctx, &cfg, mainLogger)
	if err != nil {
		return err
	}

	defer closePublishers()

	engine, err := maclookup.NewEngine(&cfg, tb, router, mainLogger, publishers...)
	if err != nil {
		return err
	}

	mainLogger.Info().
		Str("testbed", tb.Name).
		Int("devices", len(tb.Devices)).
		Strs("layer3_devices", cfg.Layer3Devices).
		Strs("skip_interfaces", cfg.SkipInterfaces).
		Str("output_file", cfg.OutputFile).
		Int("workers", cfg.Workers).
		Str("version", version.GetVersion()).
		Msg("Starting MAC lookup")

	result, err := engine.Run(ctx, &maclookup.Request{
		Layer3Devices:  cfg.Layer3Devices,
		SkipInterfaces: cfg.SkipInterfaces,
	})
	if result != nil {
		ev := mainLogger.Info().
			Str("run_id", result.RunID).
			Int("macs", len(result.Registry)).
			Int("sightings", result.Registry.SightingCount())

		for kind, n := range result.Summary() {
			ev = ev.Int(string(kind), n)
		}

		ev.Msg("MAC lookup finished")
	}

	return err
}

// buildPublishers returns the file publisher plus, when NATS is configured, the
// JetStream publisher. The returned func releases the NATS connection.
func buildPublishers(ctx context.Context, cfg *maclookup.Config, log logger.Logger) ([]maclookup.Publisher, func(), error) {
	filePub, err := maclookup.NewFilePublisher(cfg.OutputFile, log)
	if err != nil {
		return nil, nil, err
	}

	publishers := []maclookup.Publisher{filePub}

	if !cfg.NATS.Enabled() {
		return publishers, func() {}, nil
	}

	nc, err := natsutil.Connect(cfg.NATS, log, nats.Name("maclookup"))
	if err != nil {
		return nil, nil, err
	}

	jsPub, err := maclookup.NewJetStreamPublisher(ctx, nc, cfg.NATS, log)
	if err != nil {
		nc.Close()
		return nil, nil, err
	}

	closeFn := func() {
		if err := nc.Drain(); err != nil {
			log.Warn().Err(err).Msg("Failed to drain NATS connection")
		}
	}

	return append(publishers, jsPub), closeFn, nil
}

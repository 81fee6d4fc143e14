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
	"strings"

	"github.com/carverauto/maclookup/pkg/maclookup"
)

// stringList is a flag that may be repeated and also accepts comma-separated values.
type stringList []string

func (s *stringList) String() string {
	return strings.Join(*s, ",")
}

func (s *stringList) Set(value string) error {
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*s = append(*s, p)
		}
	}

	return nil
}

type options struct {
	configFile string
	testbed    string
	outputFile string
	parsedDir  string
	workers    int
	debug      bool
	version    bool
	layer3     stringList
	skip       stringList
	set        map[string]bool
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	o := &options{set: make(map[string]bool)}

	fs.StringVar(&o.configFile, "config", "", "Path to maclookup config file (JSON or YAML)")
	fs.StringVar(&o.testbed, "testbed", "", "Testbed YAML file")
	fs.Var(&o.layer3, "l3device", "Layer 3 device whose ARP table will be gathered (repeatable, comma-separated)")
	fs.Var(&o.skip, "skipinterface", "Interface name to skip learning MACs on, most commonly known trunks (repeatable)")
	fs.StringVar(&o.outputFile, "outputfile", "results.json", "File to save the collected data to in JSON format")
	fs.IntVar(&o.workers, "workers", 1, "Number of devices queried concurrently")
	fs.StringVar(&o.parsedDir, "parsed-dir", "", "Directory of parsed command output (default: parsed/ next to the testbed)")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&o.version, "version", false, "Print the version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		o.set[f.Name] = true
	})

	return o, nil
}

// apply copies explicitly set flags over cfg. Flags left at their defaults only
// fill fields the config file did not set.
func (o *options) apply(cfg *maclookup.Config) {
	if o.set["testbed"] || cfg.Testbed == "" {
		cfg.Testbed = o.testbed
	}

	if o.set["l3device"] {
		cfg.Layer3Devices = append([]string(nil), o.layer3...)
	}

	if o.set["skipinterface"] {
		cfg.SkipInterfaces = append([]string(nil), o.skip...)
	}

	if o.set["outputfile"] || cfg.OutputFile == "" {
		cfg.OutputFile = o.outputFile
	}

	if o.set["workers"] || cfg.Workers == 0 {
		cfg.Workers = o.workers
	}

	if o.set["parsed-dir"] || cfg.ParsedDir == "" {
		cfg.ParsedDir = o.parsedDir
	}
}

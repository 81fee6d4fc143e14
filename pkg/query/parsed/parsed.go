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

// Package parsed serves already-parsed command output from disk, one JSON
// document per device and command.
package parsed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/carverauto/maclookup/pkg/inventory"
	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/query"
)

// Querier reads <root>/<device>/<command-slug>.json, or <parsed.dir>/<command-slug>.json
// when the device names its own directory.
type Querier struct {
	root   string
	logger logger.Logger
}

// NewQuerier creates a Querier rooted at root.
func NewQuerier(root string, log logger.Logger) *Querier {
	return &Querier{root: root, logger: log}
}

// Parse implements query.Querier.
func (q *Querier) Parse(_ context.Context, device *inventory.Device, command string) ([]byte, error) {
	path := q.Path(device, command)

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: no parsed output for %q on %s", query.ErrCommandNotSupported, command, device.Name)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read parsed output '%s': %w", path, err)
	}

	trimmed := bytes.TrimSpace(data)
	if isEmptyDocument(trimmed) {
		return nil, fmt.Errorf("%w: %q on %s", query.ErrEmptyOutput, command, device.Name)
	}

	q.logger.Debug().
		Str("device", device.Name).
		Str("command", command).
		Str("path", path).
		Msg("Read parsed output")

	return trimmed, nil
}

// isEmptyDocument reports whether data holds nothing: no bytes, null, or an
// object or array without members.
func isEmptyDocument(data []byte) bool {
	doc := gjson.ParseBytes(data)

	switch {
	case doc.Type == gjson.Null:
		return true
	case doc.IsObject(), doc.IsArray():
		empty := true

		doc.ForEach(func(_, _ gjson.Result) bool {
			empty = false
			return false
		})

		return empty
	default:
		return false
	}
}

// Path returns the file Parse reads for device and command.
func (q *Querier) Path(device *inventory.Device, command string) string {
	dir := filepath.Join(q.root, device.Name)
	if device.Parsed != nil && device.Parsed.Dir != "" {
		dir = device.Parsed.Dir
	}

	return filepath.Join(dir, Slug(command)+".json")
}

// Slug turns a command into a file name: lower case, with every run of
// characters other than letters and digits collapsed into one underscore.
func Slug(command string) string {
	var b strings.Builder

	pending := false

	for _, r := range strings.ToLower(command) {
		isWord := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isWord {
			pending = b.Len() > 0
			continue
		}

		if pending {
			b.WriteByte('_')
			pending = false
		}

		b.WriteRune(r)
	}

	return b.String()
}

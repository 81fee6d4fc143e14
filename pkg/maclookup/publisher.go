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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/carverauto/maclookup/pkg/logger"
	"github.com/carverauto/maclookup/pkg/models"
	"github.com/carverauto/maclookup/pkg/natsutil"
)

const (
	resultFileMode = 0o644

	registryEventType   = "com.carverauto.maclookup.registry"
	registryEventSource = "maclookup"
)

// FilePublisher writes the registry as indented JSON to a file.
type FilePublisher struct {
	path   string
	logger logger.Logger
}

// NewFilePublisher creates a FilePublisher writing to path.
func NewFilePublisher(path string, log logger.Logger) (*FilePublisher, error) {
	if path == "" {
		return nil, ErrOutputFileRequired
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &FilePublisher{path: path, logger: log}, nil
}

// Publish implements Publisher. The file is replaced atomically.
func (p *FilePublisher) Publish(_ context.Context, result *Result) error {
	data, err := json.MarshalIndent(result.registry(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(p.path), "."+filepath.Base(p.path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file for '%s': %w", p.path, err)
	}

	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write '%s': %w", tmp.Name(), err)
	}

	if err := tmp.Chmod(resultFileMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to chmod '%s': %w", tmp.Name(), err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close '%s': %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), p.path); err != nil {
		return fmt.Errorf("failed to move results into '%s': %w", p.path, err)
	}

	p.logger.Info().
		Str("path", p.path).
		Int("macs", len(result.Registry)).
		Msg("Wrote lookup results")

	return nil
}

// RegistryEventData is the payload of a registry CloudEvent.
type RegistryEventData struct {
	RunID       string                 `json:"run_id"`
	StartedAt   time.Time              `json:"started_at"`
	FinishedAt  time.Time              `json:"finished_at"`
	Registry    models.Registry        `json:"registry"`
	Summary     map[DiagnosticKind]int `json:"summary"`
	Diagnostics []Diagnostic           `json:"diagnostics,omitempty"`
}

// JetStreamPublisher publishes each run as a CloudEvent on NATS JetStream.
type JetStreamPublisher struct {
	events        *natsutil.EventPublisher
	subjectPrefix string
	logger        logger.Logger
}

// NewJetStreamPublisher ensures the configured stream exists on nc and returns a
// publisher for it.
func NewJetStreamPublisher(ctx context.Context, nc *nats.Conn, cfg *models.NATSConfig, log logger.Logger) (*JetStreamPublisher, error) {
	if nc == nil || !cfg.Enabled() {
		return nil, ErrPublisherRequired
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	events, err := natsutil.CreateEventPublisherWithDomain(ctx, nc, cfg.Domain, cfg.Stream,
		[]string{cfg.SubjectPrefix + ".>"})
	if err != nil {
		return nil, err
	}

	return &JetStreamPublisher{
		events:        events,
		subjectPrefix: cfg.SubjectPrefix,
		logger:        log,
	}, nil
}

// Subject returns the subject a run is published on.
func (p *JetStreamPublisher) Subject(runID string) string {
	return p.subjectPrefix + "." + runID
}

// Publish implements Publisher.
func (p *JetStreamPublisher) Publish(ctx context.Context, result *Result) error {
	finished := result.FinishedAt.UTC()

	event := &models.CloudEvent{
		SpecVersion:     "1.0",
		ID:              uuid.New().String(),
		Source:          registryEventSource,
		Type:            registryEventType,
		DataContentType: "application/json",
		Subject:         p.Subject(result.RunID),
		Time:            &finished,
		Data: RegistryEventData{
			RunID:       result.RunID,
			StartedAt:   result.StartedAt.UTC(),
			FinishedAt:  finished,
			Registry:    result.registry(),
			Summary:     result.Summary(),
			Diagnostics: result.Diagnostics,
		},
	}

	ack, err := p.events.Publish(ctx, event)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("subject", event.Subject).
		Str("stream", ack.Stream).
		Uint64("seq", ack.Sequence).
		Msg("Published lookup results")

	return nil
}

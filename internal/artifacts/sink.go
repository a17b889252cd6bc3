// Package artifacts delivers exported documents (circuit and settings
// exports) to one or more sinks: a local directory and optionally an
// S3-compatible bucket.
package artifacts

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// Sink stores one artifact and reports where it went
type Sink interface {
	Name() string
	Put(ctx context.Context, name, contentType string, body []byte) (string, error)
}

// LocalSink writes artifacts into a directory
type LocalSink struct {
	dir string
}

// NewLocalSink creates the directory if needed
func NewLocalSink(dir string) (*LocalSink, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artifact dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact dir: %w", err)
	}
	return &LocalSink{dir: abs}, nil
}

// Name implements Sink
func (s *LocalSink) Name() string {
	return "local"
}

// Dir returns the absolute target directory
func (s *LocalSink) Dir() string {
	return s.dir
}

// Put implements Sink. name must be a bare file name.
func (s *LocalSink) Put(ctx context.Context, name, contentType string, body []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, body, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	return path, nil
}

// Delivery is the outcome of one sink
type Delivery struct {
	Sink     string `json:"sink"`
	Location string `json:"location,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Publisher fans an artifact out to every configured sink
type Publisher struct {
	sinks []Sink
	log   zerolog.Logger
}

// NewPublisher creates a publisher. With no sinks Publish is a no-op.
func NewPublisher(log zerolog.Logger, sinks ...Sink) *Publisher {
	return &Publisher{
		sinks: sinks,
		log:   log.With().Str("component", "artifacts").Logger(),
	}
}

// Sinks returns the sink names
func (p *Publisher) Sinks() []string {
	names := make([]string, len(p.sinks))
	for i, s := range p.sinks {
		names[i] = s.Name()
	}
	return names
}

// Publish puts the artifact into every sink. Failures are logged and
// reported per sink; the joined error is non-nil if any sink failed.
func (p *Publisher) Publish(ctx context.Context, name, contentType string, body []byte) ([]Delivery, error) {
	deliveries := make([]Delivery, 0, len(p.sinks))
	var errs []error

	for _, sink := range p.sinks {
		d := Delivery{Sink: sink.Name()}
		location, err := sink.Put(ctx, name, contentType, body)
		if err != nil {
			p.log.Warn().Err(err).Str("sink", sink.Name()).Str("artifact", name).Msg("Failed to deliver artifact")
			d.Error = err.Error()
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		} else {
			d.Location = location
			p.log.Debug().Str("sink", sink.Name()).Str("location", location).Msg("Artifact delivered")
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, errors.Join(errs...)
}

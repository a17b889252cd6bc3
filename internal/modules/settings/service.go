package settings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aristath/qdash/internal/validation"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Service keeps the current settings and renders exports.
//
// Persistence failures are logged and do not undo the in-memory change, the
// same way the circuit store treats storage errors.
type Service struct {
	mu        sync.RWMutex
	current   Settings
	maxQubits int

	repo  *Repository
	clock func() time.Time
	log   zerolog.Logger
}

// NewService creates a service seeded from the repository. maxQubits is the
// configured ceiling; saved values above it are clamped.
func NewService(repo *Repository, maxQubits int, log zerolog.Logger) *Service {
	s := &Service{
		maxQubits: maxQubits,
		repo:      repo,
		clock:     time.Now,
		log:       log.With().Str("service", "settings").Logger(),
	}

	loaded, err := repo.Load()
	if err != nil {
		s.log.Warn().Err(err).Msg("Using default settings")
	}
	if validation.Struct(&loaded) != nil {
		loaded = Defaults()
	}
	s.current = s.clampQubits(loaded)
	return s
}

// Get returns the current settings
func (s *Service) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Validate checks s against the field rules
func (s *Service) Validate(in Settings) error {
	if err := validation.Struct(&in); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Save validates and stores in. The returned settings carry the qubit limit
// after clamping to the configured maximum.
func (s *Service) Save(in Settings) (Settings, error) {
	if err := s.Validate(in); err != nil {
		return Settings{}, err
	}
	in = s.clampQubits(in)

	s.mu.Lock()
	s.current = in
	s.mu.Unlock()

	if err := s.repo.Save(in); err != nil {
		s.log.Warn().Err(err).Msg("Settings kept in memory only")
	}

	s.log.Info().
		Int("max_qubits", in.MaxQubits).
		Str("security_level", in.SecurityLevel).
		Msg("Settings saved")
	return in, nil
}

// Reset restores and stores the defaults
func (s *Service) Reset() Settings {
	d := Defaults()

	s.mu.Lock()
	s.current = d
	s.mu.Unlock()

	if err := s.repo.Save(d); err != nil {
		s.log.Warn().Err(err).Msg("Settings kept in memory only")
	}
	return d
}

// Export renders the current settings in format (json or yaml)
func (s *Service) Export(format string) (ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case "":
		format = FormatJSON
	case "yml":
		format = FormatYAML
	}

	now := s.clock()
	doc := Export{
		Settings:  s.Get(),
		Timestamp: now.UTC().Format("2006-01-02T15:04:05.000Z"),
	}

	var body []byte
	var contentType string
	switch format {
	case FormatJSON:
		b, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return ExportFile{}, fmt.Errorf("failed to marshal settings export: %w", err)
		}
		body, contentType = b, "application/json"
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return ExportFile{}, fmt.Errorf("failed to marshal settings export: %w", err)
		}
		if err := enc.Close(); err != nil {
			return ExportFile{}, fmt.Errorf("failed to marshal settings export: %w", err)
		}
		body, contentType = buf.Bytes(), "application/yaml"
	default:
		return ExportFile{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return ExportFile{
		Filename:    exportFilename(now, format),
		Format:      format,
		ContentType: contentType,
		Body:        body,
	}, nil
}

func (s *Service) clampQubits(in Settings) Settings {
	if s.maxQubits > 0 && in.MaxQubits > s.maxQubits {
		in.MaxQubits = s.maxQubits
	}
	return in
}

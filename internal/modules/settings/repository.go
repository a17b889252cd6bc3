package settings

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aristath/qdash/internal/kvstore"
	"github.com/rs/zerolog"
)

// Repository reads and writes the settings record in the key/value store.
// A missing record is not an error: Load returns the defaults.
type Repository struct {
	kv  kvstore.Store
	log zerolog.Logger
}

// NewRepository creates a new settings repository
func NewRepository(kv kvstore.Store, log zerolog.Logger) *Repository {
	return &Repository{
		kv:  kv,
		log: log.With().Str("repository", "settings").Logger(),
	}
}

// Load returns the saved settings, or the defaults when none were saved
func (r *Repository) Load() (Settings, error) {
	var s Settings
	err := r.kv.Get(SettingsKey, &s)
	if errors.Is(err, kvstore.ErrNotFound) {
		return Defaults(), nil
	}
	if err != nil {
		return Defaults(), fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// Save writes s
func (r *Repository) Save(s Settings) error {
	if err := r.kv.Set(SettingsKey, s); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func formatMillis(t time.Time) string {
	return strconv.FormatInt(t.UnixMilli(), 10)
}

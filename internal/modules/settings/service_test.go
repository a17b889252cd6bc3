package settings

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aristath/qdash/internal/kvstore"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type failingKV struct{}

func (failingKV) Get(key string, dest interface{}) error { return errors.New("locked") }
func (failingKV) Set(key string, value interface{}) error { return errors.New("locked") }
func (failingKV) Delete(key string) error                { return errors.New("locked") }

func newTestService(kv kvstore.Store, maxQubits int) *Service {
	logger := zerolog.New(nil).Level(zerolog.Disabled)
	return NewService(NewRepository(kv, logger), maxQubits, logger)
}

func TestNewService_Defaults(t *testing.T) {
	s := newTestService(kvstore.NewMemory(), 100000)
	assert.Equal(t, Settings{MaxQubits: 5, AutoSave: true, Notifications: true, Performance: 75, SecurityLevel: "high"}, s.Get())
}

func TestNewService_LoadsSaved(t *testing.T) {
	kv := kvstore.NewMemory()
	saved := Settings{MaxQubits: 12, Performance: 40, SecurityLevel: SecurityLow}
	require.NoError(t, kv.Set(SettingsKey, saved))

	assert.Equal(t, saved, newTestService(kv, 100000).Get())
}

func TestNewService_InvalidSavedFallsBackToDefaults(t *testing.T) {
	kv := kvstore.NewMemory()
	require.NoError(t, kv.Set(SettingsKey, Settings{MaxQubits: 0, SecurityLevel: "extreme"}))

	assert.Equal(t, Defaults(), newTestService(kv, 100000).Get())
	assert.Equal(t, Defaults(), newTestService(failingKV{}, 100000).Get())
}

func TestSave(t *testing.T) {
	kv := kvstore.NewMemory()
	s := newTestService(kv, 100000)

	in := Settings{MaxQubits: 20, AutoSave: false, Notifications: true, Performance: 55, SecurityLevel: SecurityMaximum}
	out, err := s.Save(in)
	require.NoError(t, err)
	assert.Equal(t, in, out)
	assert.Equal(t, in, s.Get())

	var stored Settings
	require.NoError(t, kv.Get(SettingsKey, &stored))
	assert.Equal(t, in, stored)
}

func TestSave_ClampsToConfiguredMax(t *testing.T) {
	s := newTestService(kvstore.NewMemory(), 50)

	out, err := s.Save(Settings{MaxQubits: 80, Performance: 50, SecurityLevel: SecurityHigh})
	require.NoError(t, err)
	assert.Equal(t, 50, out.MaxQubits)
}

func TestSave_Validation(t *testing.T) {
	s := newTestService(kvstore.NewMemory(), 100000)

	tests := []struct {
		name string
		in   Settings
	}{
		{"qubits zero", Settings{MaxQubits: 0, Performance: 75, SecurityLevel: "high"}},
		{"qubits too many", Settings{MaxQubits: 100001, Performance: 75, SecurityLevel: "high"}},
		{"performance off step", Settings{MaxQubits: 5, Performance: 73, SecurityLevel: "high"}},
		{"performance above range", Settings{MaxQubits: 5, Performance: 105, SecurityLevel: "high"}},
		{"unknown level", Settings{MaxQubits: 5, Performance: 75, SecurityLevel: "paranoid"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Save(tt.in)
			assert.Error(t, err)
			assert.Equal(t, Defaults(), s.Get())
		})
	}
}

func TestSave_StorageFailureKeepsInMemory(t *testing.T) {
	s := newTestService(failingKV{}, 100000)

	in := Settings{MaxQubits: 9, Performance: 10, SecurityLevel: SecurityLow}
	_, err := s.Save(in)
	require.NoError(t, err)
	assert.Equal(t, in, s.Get())
}

func TestReset(t *testing.T) {
	s := newTestService(kvstore.NewMemory(), 100000)
	_, err := s.Save(Settings{MaxQubits: 9, Performance: 10, SecurityLevel: SecurityLow})
	require.NoError(t, err)

	assert.Equal(t, Defaults(), s.Reset())
	assert.Equal(t, Defaults(), s.Get())
}

func TestExport(t *testing.T) {
	s := newTestService(kvstore.NewMemory(), 100000)
	s.clock = func() time.Time { return time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC) }

	t.Run("json", func(t *testing.T) {
		file, err := s.Export("")
		require.NoError(t, err)
		assert.Equal(t, "rados-quantum-settings-1740830400000.json", file.Filename)
		assert.Equal(t, "application/json", file.ContentType)

		var doc map[string]interface{}
		require.NoError(t, json.Unmarshal(file.Body, &doc))
		assert.Equal(t, map[string]interface{}{
			"maxQubits":     5.0,
			"autoSave":      true,
			"notifications": true,
			"performance":   75.0,
			"securityLevel": "high",
			"timestamp":     "2025-03-01T12:00:00.000Z",
		}, doc)
	})

	t.Run("yaml", func(t *testing.T) {
		file, err := s.Export("YML")
		require.NoError(t, err)
		assert.Equal(t, "rados-quantum-settings-1740830400000.yaml", file.Filename)
		assert.Equal(t, FormatYAML, file.Format)

		var doc map[string]interface{}
		require.NoError(t, yaml.Unmarshal(file.Body, &doc))
		assert.Equal(t, 5, doc["maxQubits"])
		assert.Equal(t, "high", doc["securityLevel"])
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := s.Export("xml")
		assert.ErrorIs(t, err, ErrUnsupportedFormat)
	})
}

func TestSecurityLevelForSlider(t *testing.T) {
	tests := []struct {
		value int
		want  string
	}{
		{0, "low"}, {25, "low"}, {26, "medium"}, {50, "medium"},
		{51, "high"}, {75, "high"}, {76, "maximum"}, {100, "maximum"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SecurityLevelForSlider(tt.value), "value %d", tt.value)
	}

	for _, level := range []string{SecurityLow, SecurityMedium, SecurityHigh, SecurityMaximum} {
		assert.Equal(t, level, SecurityLevelForSlider(SliderForSecurityLevel(level)))
	}
}

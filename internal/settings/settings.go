// Package settings persists the last used format, quality and save mode.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"fliprotate/internal/processor"
)

const (
	DefaultFormat   = "webp"
	DefaultQuality  = "0.9"
	DefaultSaveMode = "new"
)

// Settings mirrors what the user last chose. Values are kept as the raw
// identifiers so they round-trip through the store unchanged.
type Settings struct {
	Format   string `json:"format" mapstructure:"format" validate:"oneof=png jpeg bmp webp"`
	Quality  string `json:"quality" mapstructure:"quality" validate:"required,numeric"`
	SaveMode string `json:"saveMode" mapstructure:"saveMode" validate:"oneof=overwrite new"`
}

// Defaults returns the settings used when nothing usable is stored.
func Defaults() Settings {
	return Settings{Format: DefaultFormat, Quality: DefaultQuality, SaveMode: DefaultSaveMode}
}

// Visibility describes which controls apply for the current choices.
type Visibility struct {
	// Format is hidden in overwrite mode, which always keeps the source format.
	Format bool
	// Quality only applies to JPEG output.
	Quality bool
}

func (s Settings) Visible() Visibility {
	return Visibility{
		Format:  s.SaveMode != string(processor.SaveModeOverwrite),
		Quality: s.Format == string(processor.FormatJPEG),
	}
}

var validate = validator.New()

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return err
	}
	if _, err := processor.ParseQuality(s.Quality); err != nil {
		return err
	}
	return nil
}

// Store reads and writes Settings as a JSON document.
type Store struct {
	path   string
	logger *zap.Logger
}

func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Path() string {
	return s.path
}

// Load never fails: a missing or unreadable file yields Defaults, and any
// invalid field falls back to its default individually.
func (s *Store) Load() Settings {
	loaded, err := s.read()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			s.logger.Debug("No stored settings, using defaults", zap.String("path", s.path))
		} else {
			s.logger.Warn("Failed to load settings, using defaults", zap.String("path", s.path), zap.Error(err))
		}
		return Defaults()
	}
	return s.sanitize(loaded)
}

func (s *Store) read() (Settings, error) {
	if _, err := os.Stat(s.path); err != nil {
		return Settings{}, err
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		return Settings{}, err
	}

	var loaded Settings
	if err := v.Unmarshal(&loaded); err != nil {
		return Settings{}, err
	}
	return loaded, nil
}

func (s *Store) sanitize(in Settings) Settings {
	out := Defaults()
	if f, err := processor.ParseFormat(in.Format); err == nil {
		out.Format = string(f)
	}
	if _, err := processor.ParseQuality(in.Quality); err == nil {
		out.Quality = in.Quality
	}
	if m, err := processor.ParseSaveMode(in.SaveMode); err == nil {
		out.SaveMode = string(m)
	}
	if out != in {
		s.logger.Warn("Stored settings partially invalid, defaults applied",
			zap.Any("stored", in),
			zap.Any("effective", out))
	}
	return out
}

// Save validates and writes settings.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	// viper folds keys to lower case on write, so the document is encoded
	// from the struct tags instead.
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	if err := os.WriteFile(s.path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

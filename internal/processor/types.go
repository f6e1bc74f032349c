package processor

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Action string

const (
	ActionFlipHorizontal Action = "flip-horizontal"
	ActionFlipVertical   Action = "flip-vertical"
	ActionRotate90       Action = "rotate-90"
	ActionRotate180      Action = "rotate-180"
	ActionRotate270      Action = "rotate-270"
)

// Actions lists every supported action in display order.
var Actions = []Action{
	ActionFlipHorizontal,
	ActionFlipVertical,
	ActionRotate90,
	ActionRotate180,
	ActionRotate270,
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// SwapsDimensions reports whether the output canvas is the source canvas turned on its side.
func (a Action) SwapsDimensions() bool {
	return a == ActionRotate90 || a == ActionRotate270
}

type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatBMP  Format = "bmp"
	FormatWEBP Format = "webp"
	// FormatGIF is never user selectable; overwrite mode reaches it through
	// the source extension.
	FormatGIF Format = "gif"
)

// OutputFormats are the formats a user may pick for new-file saves.
var OutputFormats = []Format{FormatPNG, FormatJPEG, FormatBMP, FormatWEBP}

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return FormatPNG, nil
	case "jpeg", "jpg":
		return FormatJPEG, nil
	case "bmp":
		return FormatBMP, nil
	case "webp":
		return FormatWEBP, nil
	default:
		return "", fmt.Errorf("unknown output format %q", s)
	}
}

// FormatForExtension maps a source extension to the container format used
// when overwriting in place. Unrecognized extensions map to themselves and an
// empty extension maps to webp.
func FormatForExtension(ext string) Format {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	switch ext {
	case "jpg", "jpeg":
		return FormatJPEG
	case "png":
		return FormatPNG
	case "webp":
		return FormatWEBP
	case "bmp":
		return FormatBMP
	case "":
		return FormatWEBP
	default:
		return Format(ext)
	}
}

// ParseQuality parses a JPEG quality in [0,1].
func ParseQuality(s string) (float64, error) {
	q, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid quality %q: %w", s, err)
	}
	if q < 0 || q > 1 {
		return 0, fmt.Errorf("quality %v out of range [0,1]", q)
	}
	return q, nil
}

type SaveMode string

const (
	SaveModeOverwrite SaveMode = "overwrite"
	SaveModeNew       SaveMode = "new"
)

func ParseSaveMode(s string) (SaveMode, error) {
	switch SaveMode(strings.ToLower(strings.TrimSpace(s))) {
	case SaveModeOverwrite:
		return SaveModeOverwrite, nil
	case SaveModeNew:
		return SaveModeNew, nil
	default:
		return "", fmt.Errorf("unknown save mode %q", s)
	}
}

// MediaItem is a read-only view of one entry in the host library.
type MediaItem struct {
	ID       string
	FilePath string
	// Ext is the extension without a leading dot, when the host knows it.
	Ext  string
	Name string
}

// Extension resolves the item's extension without a leading dot: Ext, then
// the suffix of Name, then the extension of FilePath. A Name without a dot
// does not count.
func (m MediaItem) Extension() string {
	if m.Ext != "" {
		return strings.TrimPrefix(m.Ext, ".")
	}
	if m.Name != "" {
		if idx := strings.LastIndex(m.Name, "."); idx >= 0 {
			return m.Name[idx+1:]
		}
	}
	return strings.TrimPrefix(filepath.Ext(m.FilePath), ".")
}

// RunConfig is the immutable set of choices for one batch invocation.
type RunConfig struct {
	Action   Action   `validate:"oneof=flip-horizontal flip-vertical rotate-90 rotate-180 rotate-270"`
	Format   Format   `validate:"oneof=png jpeg bmp webp"`
	Quality  float64  `validate:"gte=0,lte=1"`
	SaveMode SaveMode `validate:"oneof=overwrite new"`
}

var validate = validator.New()

// NewRunConfig parses raw identifiers into a validated RunConfig.
func NewRunConfig(action, format, quality, saveMode string) (RunConfig, error) {
	a, err := ParseAction(action)
	if err != nil {
		return RunConfig{}, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return RunConfig{}, err
	}
	q, err := ParseQuality(quality)
	if err != nil {
		return RunConfig{}, err
	}
	m, err := ParseSaveMode(saveMode)
	if err != nil {
		return RunConfig{}, err
	}
	cfg := RunConfig{Action: a, Format: f, Quality: q, SaveMode: m}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

func (c RunConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid run config: %w", err)
	}
	return nil
}

// SavedLocation describes where a save strategy placed the output.
type SavedLocation struct {
	Path string
	Mode SaveMode
}

type ItemResult struct {
	Item    MediaItem
	Success bool
	Path    string
	Mode    SaveMode
	Err     error
}

// Message returns the failure message, or an empty string on success.
func (r ItemResult) Message() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

type Summary struct {
	Total     int
	Succeeded int
	Failed    int
	Skipped   int
}

type ProgressUpdate struct {
	TotalDelta     int
	SucceededDelta int
	FailedDelta    int
	Current        string
}

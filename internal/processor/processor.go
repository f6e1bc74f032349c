package processor

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// imageExtensions are the extensions a selection is filtered to before a run.
var imageExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"webp": true,
	"bmp":  true,
	"gif":  true,
}

// IsImage reports whether item carries one of the processable extensions.
func IsImage(item MediaItem) bool {
	return imageExtensions[strings.ToLower(item.Extension())]
}

// FilterImages splits items into processable images and the rest.
func FilterImages(items []MediaItem) (images, skipped []MediaItem) {
	for _, item := range items {
		if IsImage(item) {
			images = append(images, item)
		} else {
			skipped = append(skipped, item)
		}
	}
	return images, skipped
}

// Coordinator drives decode, transform, encode and save over a selection,
// one item at a time.
type Coordinator struct {
	encoder   *Encoder
	overwrite *OverwriteStrategy
	newFile   *NewFileStrategy
	logger    *zap.Logger
	updates   chan<- ProgressUpdate
}

type Option func(*Coordinator)

// WithEncoder overrides the default encoder.
func WithEncoder(enc *Encoder) Option {
	return func(c *Coordinator) { c.encoder = enc }
}

// WithUpdates streams per-item progress to updates. The channel is not closed.
func WithUpdates(updates chan<- ProgressUpdate) Option {
	return func(c *Coordinator) { c.updates = updates }
}

func NewCoordinator(library Library, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		encoder:   NewEncoder(),
		overwrite: NewOverwriteStrategy(library, logger),
		newFile:   NewNewFileStrategy(library, logger),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run processes every image in items sequentially and returns once each has
// an outcome. Item failures are recorded in the results and never stop the
// batch; only an invalid cfg returns an error.
func (c *Coordinator) Run(ctx context.Context, items []MediaItem, cfg RunConfig) (Summary, []ItemResult, error) {
	if err := cfg.Validate(); err != nil {
		return Summary{}, nil, err
	}

	images, skipped := FilterImages(items)
	summary := Summary{Total: len(images), Skipped: len(skipped)}
	for _, item := range skipped {
		c.logger.Debug("Skipping non-image item", zap.String("path", item.FilePath))
	}

	c.send(ProgressUpdate{TotalDelta: len(images)})

	results := make([]ItemResult, 0, len(images))
	for _, item := range images {
		res := c.processItem(ctx, item, cfg)
		results = append(results, res)

		if res.Success {
			summary.Succeeded++
			c.send(ProgressUpdate{SucceededDelta: 1, Current: item.FilePath})
			c.logger.Info("Processed item",
				zap.String("path", item.FilePath),
				zap.String("output", res.Path),
				zap.String("mode", string(res.Mode)))
			continue
		}

		summary.Failed++
		c.send(ProgressUpdate{FailedDelta: 1, Current: item.FilePath})
		c.logger.Error("Failed to process item",
			zap.String("path", item.FilePath),
			zap.String("kind", string(KindOf(res.Err))),
			zap.Error(res.Err))
	}

	return summary, results, nil
}

func (c *Coordinator) processItem(ctx context.Context, item MediaItem, cfg RunConfig) (res ItemResult) {
	res = ItemResult{Item: item, Path: item.FilePath, Mode: cfg.SaveMode}

	defer func() {
		if r := recover(); r != nil {
			res.Success = false
			res.Path = item.FilePath
			res.Err = fmt.Errorf("panic while processing %s: %v", item.FilePath, r)
		}
	}()

	format := cfg.Format
	if cfg.SaveMode == SaveModeOverwrite {
		format = FormatForExtension(item.Extension())
	}

	src, err := loadImage(item.FilePath)
	if err != nil {
		res.Err = err
		return res
	}

	oriented, _, _, err := Transform(src, cfg.Action)
	if err != nil {
		res.Err = err
		return res
	}

	data, err := c.encoder.Encode(oriented, format, cfg.Quality)
	if err != nil {
		res.Err = err
		return res
	}

	var loc SavedLocation
	switch cfg.SaveMode {
	case SaveModeOverwrite:
		loc, err = c.overwrite.Save(ctx, data, item)
	case SaveModeNew:
		loc, err = c.newFile.Save(ctx, data, item, format)
	default:
		err = fmt.Errorf("unknown save mode %q", cfg.SaveMode)
	}
	if err != nil {
		res.Err = err
		return res
	}

	res.Success = true
	res.Path = loc.Path
	res.Mode = loc.Mode
	return res
}

func (c *Coordinator) send(update ProgressUpdate) {
	if c.updates != nil {
		c.updates <- update
	}
}

package converter

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ah-its-andy/mediaconv/internal/config"
	"github.com/ah-its-andy/mediaconv/internal/format"
)

// Dispatcher maps a (category, target format) pair to one external tool
// invocation: ImageMagick for images, FFmpeg for audio and video. Tool
// locations are injected at construction so tests can point them at stubs.
//
// Each conversion is stateless and single-shot. On failure the output file
// must not be trusted; the caller owns cleanup either way.
type Dispatcher struct {
	ffmpegPath       string
	magickPath       string
	timeout          time.Duration
	healthTimeout    time.Duration
	preserveMetadata bool
}

func New(cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		ffmpegPath:       cfg.FFmpegPath,
		magickPath:       cfg.MagickPath,
		timeout:          cfg.ConvertTimeout,
		healthTimeout:    cfg.HealthTimeout,
		preserveMetadata: cfg.PreserveMetadata,
	}
}

// Convert produces outputPath from inputPath, bounded by the configured
// wall-clock timeout. Failures are *Error values carrying a kind and a
// user-presentable message with a bounded diagnostic tail.
func (d *Dispatcher) Convert(ctx context.Context, category format.Category, inputPath string, target format.Format, outputPath string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var err error
	switch category {
	case format.CategoryImage:
		err = d.convertImage(ctx, inputPath, target, outputPath)
	case format.CategoryAudio, format.CategoryVideo:
		err = d.convertAV(ctx, category, inputPath, target, outputPath)
	default:
		return &Error{Kind: KindValidation, Message: fmt.Sprintf("unsupported category: %s", category)}
	}
	if err != nil {
		return err
	}

	if _, err := os.Stat(outputPath); err != nil {
		return &Error{Kind: KindIO, Message: "Conversion produced no output file."}
	}
	return nil
}

package converter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/ah-its-andy/mediaconv/internal/format"
)

// diagnosticTail bounds how much of ffmpeg's stderr ends up in an error
// message.
const diagnosticTail = 1200

// ffmpegArgs builds the fixed argument list for one audio/video target.
// Unrecognized keys fall back to a plain remux, which is also the mkv
// behavior.
func ffmpegArgs(category format.Category, outExt, inputPath, outPath string) []string {
	if category == format.CategoryAudio {
		switch outExt {
		case "mp3":
			return []string{"-y", "-i", inputPath, "-vn", "-b:a", "192k", outPath}
		case "wav":
			return []string{"-y", "-i", inputPath, "-vn", outPath}
		case "m4a":
			return []string{"-y", "-i", inputPath, "-vn", "-c:a", "aac", "-b:a", "192k", outPath}
		case "flac":
			return []string{"-y", "-i", inputPath, "-vn", outPath}
		case "ogg":
			return []string{"-y", "-i", inputPath, "-vn", "-c:a", "libvorbis", "-q:a", "5", outPath}
		default:
			return []string{"-y", "-i", inputPath, "-vn", outPath}
		}
	}

	switch outExt {
	case "mp4", "mov":
		// yuv420p for broad H.264 compatibility, +faststart so playback
		// metadata sits at the front of the container.
		return []string{
			"-y", "-i", inputPath,
			"-c:v", "libx264",
			"-preset", "veryfast",
			"-crf", "23",
			"-pix_fmt", "yuv420p",
			"-c:a", "aac",
			"-b:a", "160k",
			"-movflags", "+faststart",
			outPath,
		}
	case "webm":
		return []string{
			"-y", "-i", inputPath,
			"-c:v", "libvpx-vp9",
			"-crf", "32",
			"-b:v", "0",
			"-c:a", "libopus",
			outPath,
		}
	case "mkv":
		return []string{"-y", "-i", inputPath, outPath}
	default:
		return []string{"-y", "-i", inputPath, outPath}
	}
}

func (d *Dispatcher) convertAV(ctx context.Context, category format.Category, inputPath string, target format.Format, outPath string) error {
	args := ffmpegArgs(category, target.Ext, inputPath, outPath)
	cmd := exec.CommandContext(ctx, d.ffmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &Error{Kind: KindTool, Message: fmt.Sprintf("FFmpeg timed out after %s.", d.timeout)}
		}
		msg := "FFmpeg failed."
		if detail := tail(stderr.String(), diagnosticTail); detail != "" {
			msg += " Details:\n" + detail
		}
		return &Error{Kind: KindTool, Message: msg}
	}
	return nil
}

// Version runs the transcoder's version command and returns the first line
// of its output. Used by the health probe only.
func (d *Dispatcher) Version(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.healthTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, d.ffmpegPath, "-version").Output()
	if err != nil {
		return "", fmt.Errorf("ffmpeg version probe: %w", err)
	}
	line, _, _ := strings.Cut(string(out), "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		line = "FFmpeg detected."
	}
	return line, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return s
}

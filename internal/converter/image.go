package converter

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"

	"github.com/ah-its-andy/mediaconv/internal/format"
	"github.com/rwcarlsen/goexif/exif"
)

// magickFormatName maps a registry key to the format name ImageMagick
// recognizes. Only "jpg" differs.
func magickFormatName(key string) string {
	if key == "jpg" {
		return "jpeg"
	}
	return key
}

func (d *Dispatcher) convertImage(ctx context.Context, inputPath string, target format.Format, outPath string) error {
	// The explicit <format>: output prefix makes the target unambiguous
	// regardless of the scratch path's extension.
	dst := fmt.Sprintf("%s:%s", magickFormatName(target.Key), outPath)
	cmd := exec.CommandContext(ctx, d.magickPath, inputPath, dst)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		msg := "Image conversion failed."
		if detail := tail(out.String(), diagnosticTail); detail != "" {
			msg += " Details:\n" + detail
		}
		return &Error{Kind: KindTool, Message: msg}
	}

	if d.preserveMetadata {
		stampCaptureTime(inputPath, outPath)
	}
	return nil
}

// stampCaptureTime carries the source's EXIF capture time onto the output
// file's modification time. Best effort: most non-JPEG sources have no EXIF
// block and are skipped silently.
func stampCaptureTime(srcPath, dstPath string) {
	f, err := os.Open(srcPath)
	if err != nil {
		return
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return
	}
	tm, err := x.DateTime()
	if err != nil {
		return
	}
	if err := os.Chtimes(dstPath, tm, tm); err != nil {
		log.Printf("converter: stamp capture time on %s: %v", dstPath, err)
	}
}

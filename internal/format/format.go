package format

import (
	"fmt"
	"strings"
)

// Category is a top-level media kind. It selects which external tool and
// argument set a conversion uses.
type Category string

const (
	CategoryVideo Category = "video"
	CategoryAudio Category = "audio"
	CategoryImage Category = "image"
)

// Format describes one selectable target format within a category.
type Format struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Ext   string `json:"ext"`
	Note  string `json:"note,omitempty"`
}

// Formats maps each category to its supported target formats. Order is
// display order. The table is defined once at process start and never
// mutated.
var Formats = map[Category][]Format{
	CategoryVideo: {
		{Key: "mp4", Label: "MP4", Ext: "mp4", Note: "Most compatible"},
		{Key: "mov", Label: "MOV", Ext: "mov", Note: "QuickTime container"},
		{Key: "webm", Label: "WEBM", Ext: "webm", Note: "Smaller, modern"},
		{Key: "mkv", Label: "MKV", Ext: "mkv", Note: "Flexible container"},
	},
	CategoryAudio: {
		{Key: "mp3", Label: "MP3", Ext: "mp3", Note: "Universal"},
		{Key: "wav", Label: "WAV", Ext: "wav", Note: "Lossless"},
		{Key: "m4a", Label: "M4A", Ext: "m4a", Note: "AAC container"},
		{Key: "flac", Label: "FLAC", Ext: "flac", Note: "Lossless"},
		{Key: "ogg", Label: "OGG", Ext: "ogg", Note: "Open format"},
	},
	CategoryImage: {
		{Key: "png", Label: "PNG", Ext: "png", Note: "Lossless"},
		{Key: "jpg", Label: "JPG", Ext: "jpg", Note: "Smaller"},
		{Key: "webp", Label: "WEBP", Ext: "webp", Note: "Modern"},
		{Key: "avif", Label: "AVIF", Ext: "avif", Note: "Very small"},
	},
}

// Supported returns the format list for a category.
func Supported(category Category) ([]Format, bool) {
	formats, ok := Formats[category]
	return formats, ok
}

// Lookup finds a format by key within a category.
func Lookup(category Category, key string) (Format, bool) {
	for _, f := range Formats[category] {
		if f.Key == key {
			return f, true
		}
	}
	return Format{}, false
}

// IsSupported reports whether the (category, key) pair is in the registry.
func IsSupported(category Category, key string) bool {
	_, ok := Lookup(category, key)
	return ok
}

// GuessCategory maps a MIME type to a category by its top-level prefix.
func GuessCategory(mime string) (Category, bool) {
	switch {
	case strings.HasPrefix(mime, "video/"):
		return CategoryVideo, true
	case strings.HasPrefix(mime, "audio/"):
		return CategoryAudio, true
	case strings.HasPrefix(mime, "image/"):
		return CategoryImage, true
	default:
		return "", false
	}
}

// ContentTypeFor returns the MIME type to emit for an output extension.
// Unknown extensions degrade to a generic binary stream; this never fails.
func ContentTypeFor(ext string) string {
	switch strings.ToLower(ext) {
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "m4a":
		return "audio/mp4"
	case "flac":
		return "audio/flac"
	case "ogg":
		return "audio/ogg"
	case "mp4":
		return "video/mp4"
	case "mov":
		return "video/quicktime"
	case "webm":
		return "video/webm"
	case "mkv":
		return "video/x-matroska"
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "webp":
		return "image/webp"
	case "avif":
		return "image/avif"
	default:
		return "application/octet-stream"
	}
}

// Validate checks the registry table at startup: keys must be non-empty and
// unique within a category, and every format needs an extension.
func Validate() error {
	for category, formats := range Formats {
		seen := make(map[string]struct{}, len(formats))
		for _, f := range formats {
			if f.Key == "" || f.Ext == "" {
				return fmt.Errorf("format table: %s has entry with empty key or ext", category)
			}
			if _, dup := seen[f.Key]; dup {
				return fmt.Errorf("format table: duplicate key %q in category %s", f.Key, category)
			}
			seen[f.Key] = struct{}{}
		}
	}
	return nil
}

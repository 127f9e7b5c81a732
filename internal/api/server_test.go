package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ah-its-andy/mediaconv/internal/config"
	"github.com/ah-its-andy/mediaconv/internal/converter"
	"github.com/ah-its-andy/mediaconv/internal/format"
	"github.com/ah-its-andy/mediaconv/internal/scratch"
	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// okTool copies a byte to its last argument, stripping an ImageMagick-style
// format: prefix if present.
const okTool = `for a in "$@"; do out="$a"; done
case "$out" in *:*) out=${out#*:} ;; esac
echo converted > "$out"
`

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

func newTestServer(t *testing.T, mutate func(*config.Config)) (*Server, *config.Config) {
	t.Helper()
	stubDir := t.TempDir()
	cfg := &config.Config{
		TempDir:        t.TempDir(),
		StaticDir:      stubDir,
		FFmpegPath:     writeStub(t, stubDir, "ffmpeg", okTool),
		MagickPath:     writeStub(t, stubDir, "magick", okTool),
		MaxUploadBytes: 1 << 20,
		ConvertTimeout: 10 * time.Second,
		HealthTimeout:  2 * time.Second,
	}
	if mutate != nil {
		mutate(cfg)
	}
	return NewServer(cfg, converter.New(cfg), scratch.New(cfg.TempDir)), cfg
}

func postConvert(t *testing.T, s *Server, filename string, payload []byte, category, formatKey string) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := fw.Write(payload); err != nil {
			t.Fatal(err)
		}
	}
	mw.WriteField("category", category)
	mw.WriteField("format", formatKey)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/convert", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)
	return rec
}

func scratchFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestConvertMissingFile(t *testing.T) {
	s, cfg := newTestServer(t, nil)
	rec := postConvert(t, s, "", nil, "audio", "mp3")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, expected 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Missing file.") {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
	if files := scratchFiles(t, cfg.TempDir); len(files) != 0 {
		t.Errorf("validation failure must not create scratch files: %v", files)
	}
}

func TestConvertUnsupportedPair(t *testing.T) {
	tests := []struct {
		category string
		format   string
	}{
		{"audio", "xyz"},
		{"video", "flac"},
		{"image", "mp4"},
		{"document", "pdf"},
		{"", ""},
	}

	s, cfg := newTestServer(t, nil)
	for _, tt := range tests {
		rec := postConvert(t, s, "in.bin", []byte("data"), tt.category, tt.format)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("(%s, %s): status = %d, expected 400", tt.category, tt.format, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Unsupported category/format.") {
			t.Errorf("(%s, %s): unexpected body %q", tt.category, tt.format, rec.Body.String())
		}
	}
	if files := scratchFiles(t, cfg.TempDir); len(files) != 0 {
		t.Errorf("validation failures must not create scratch files: %v", files)
	}
}

func TestConvertAudioSuccess(t *testing.T) {
	s, cfg := newTestServer(t, nil)
	rec := postConvert(t, s, "My Song!.wav", []byte("riff"), "audio", "mp3")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, expected audio/mpeg", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="My Song.mp3"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if name := rec.Header().Get("X-Output-Name"); name != "My Song.mp3" {
		t.Errorf("X-Output-Name = %q", name)
	}
	if rec.Body.Len() == 0 {
		t.Error("empty response body")
	}
	if files := scratchFiles(t, cfg.TempDir); len(files) != 0 {
		t.Errorf("scratch files leaked: %v", files)
	}
}

func TestConvertVideoToWebm(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := postConvert(t, s, "clip.mov", []byte("moov"), "video", "webm")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "video/webm" {
		t.Errorf("Content-Type = %q, expected video/webm", ct)
	}
	if !strings.HasSuffix(rec.Header().Get("X-Output-Name"), ".webm") {
		t.Errorf("output name should end in .webm: %q", rec.Header().Get("X-Output-Name"))
	}
}

func TestConvertImageToJPG(t *testing.T) {
	s, _ := newTestServer(t, nil)
	rec := postConvert(t, s, "photo.png", []byte("png"), "image", "jpg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, expected image/jpeg", ct)
	}
	if !strings.HasSuffix(rec.Header().Get("X-Output-Name"), ".jpg") {
		t.Errorf("output name should end in .jpg: %q", rec.Header().Get("X-Output-Name"))
	}
}

func TestConvertAllSupportedPairs(t *testing.T) {
	s, cfg := newTestServer(t, nil)
	for category, formats := range format.Formats {
		for _, f := range formats {
			rec := postConvert(t, s, "input.dat", []byte("data"), string(category), f.Key)
			if rec.Code != http.StatusOK {
				t.Errorf("(%s, %s): status = %d, body: %s", category, f.Key, rec.Code, rec.Body.String())
				continue
			}
			if ct := rec.Header().Get("Content-Type"); ct != format.ContentTypeFor(f.Ext) {
				t.Errorf("(%s, %s): Content-Type = %q, expected %q", category, f.Key, ct, format.ContentTypeFor(f.Ext))
			}
			if !strings.HasSuffix(rec.Header().Get("X-Output-Name"), "."+f.Ext) {
				t.Errorf("(%s, %s): output name %q should end in .%s", category, f.Key, rec.Header().Get("X-Output-Name"), f.Ext)
			}
		}
	}
	if files := scratchFiles(t, cfg.TempDir); len(files) != 0 {
		t.Errorf("scratch files leaked: %v", files)
	}
}

func TestConvertOversizedUpload(t *testing.T) {
	s, cfg := newTestServer(t, nil)
	big := bytes.Repeat([]byte("x"), int(cfg.MaxUploadBytes)+1)
	rec := postConvert(t, s, "big.mov", big, "video", "mp4")
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, expected 413", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "1 MB") {
		t.Errorf("capacity message should state the limit: %q", rec.Body.String())
	}
	if files := scratchFiles(t, cfg.TempDir); len(files) != 0 {
		t.Errorf("capacity failure must not leave scratch files: %v", files)
	}
}

func TestConvertToolFailureCleansUp(t *testing.T) {
	s, cfg := newTestServer(t, func(cfg *config.Config) {
		cfg.FFmpegPath = writeStub(t, t.TempDir(), "ffmpeg", "echo 'Invalid data found' >&2\nexit 1\n")
	})
	rec := postConvert(t, s, "broken.mp4", []byte("junk"), "video", "mkv")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, expected 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "FFmpeg failed.") {
		t.Errorf("unexpected body: %q", rec.Body.String())
	}
	if files := scratchFiles(t, cfg.TempDir); len(files) != 0 {
		t.Errorf("scratch files leaked after tool failure: %v", files)
	}
}

func TestHealthOK(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.FFmpegPath = writeStub(t, t.TempDir(), "ffmpeg", "echo 'ffmpeg version 6.1.1'\n")
	})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload struct {
		OK     bool   `json:"ok"`
		FFmpeg string `json:"ffmpeg"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if !payload.OK || payload.FFmpeg != "ffmpeg version 6.1.1" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestHealthToolMissing(t *testing.T) {
	s, _ := newTestServer(t, func(cfg *config.Config) {
		cfg.FFmpegPath = "/no/such/ffmpeg"
	})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	// Liveness probe never fails the request itself.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, expected 200", rec.Code)
	}
	var payload struct {
		OK    bool   `json:"ok"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.OK || !strings.Contains(payload.Error, "FFmpeg not found") {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestFormatsListing(t *testing.T) {
	s, _ := newTestServer(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/formats", nil)
	rec := httptest.NewRecorder()
	s.Router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var payload map[string][]struct {
		Key string `json:"key"`
		Ext string `json:"ext"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if len(payload["video"]) != 4 || len(payload["audio"]) != 5 || len(payload["image"]) != 4 {
		t.Errorf("unexpected registry shape: %v", payload)
	}
}

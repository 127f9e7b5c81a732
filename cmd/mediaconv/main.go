package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/ah-its-andy/mediaconv/internal/api"
	"github.com/ah-its-andy/mediaconv/internal/config"
	"github.com/ah-its-andy/mediaconv/internal/converter"
	"github.com/ah-its-andy/mediaconv/internal/format"
	"github.com/ah-its-andy/mediaconv/internal/scratch"
	"github.com/rs/cors"
)

func main() {
	log.Println("Starting mediaconv...")

	cfg := config.Load()
	log.Printf("Configuration loaded:")
	log.Printf("  HTTP Port: %d", cfg.HTTPPort)
	log.Printf("  Temp Dir: %s", cfg.TempDir)
	log.Printf("  Max Upload: %d bytes", cfg.MaxUploadBytes)
	log.Printf("  Convert Timeout: %s", cfg.ConvertTimeout)

	if err := format.Validate(); err != nil {
		log.Fatalf("Invalid format table: %v", err)
	}

	checkExternalTools(cfg)

	disp := converter.New(cfg)
	sc := scratch.New(cfg.TempDir)
	server := api.NewServer(cfg, disp, sc)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: cors.Default().Handler(server.Router),
		// Generous read/write ceilings: a request may carry a 250 MB
		// upload and wait out a five minute conversion.
		ReadTimeout:    10 * time.Minute,
		WriteTimeout:   15 * time.Minute,
		IdleTimeout:    2 * time.Minute,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	log.Printf("mediaconv is running on http://localhost:%d/", cfg.HTTPPort)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
	log.Println("Shutdown complete")
}

// checkExternalTools logs whether the conversion tools are resolvable. The
// server still starts without them; /health reports the same finding.
func checkExternalTools(cfg *config.Config) {
	log.Println("Checking external tools:")
	for _, tool := range []string{cfg.FFmpegPath, cfg.MagickPath} {
		if _, err := exec.LookPath(tool); err != nil {
			log.Printf("  %s: NOT FOUND (required for conversion)", tool)
		} else {
			log.Printf("  %s: found", tool)
		}
	}
}

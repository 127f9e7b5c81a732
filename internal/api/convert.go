package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/ah-its-andy/mediaconv/internal/converter"
	"github.com/ah-its-andy/mediaconv/internal/format"
	"github.com/ah-its-andy/mediaconv/internal/utils"
	"github.com/gin-gonic/gin"
)

// multipartSlack covers form framing overhead on top of the file ceiling.
const multipartSlack = 10 << 20

// handleConvert runs the whole pipeline for one upload: validate against
// the registry, stage the file on scratch storage, dispatch to the external
// tool, stream the result back. Both scratch files are released on every
// exit path.
func (s *Server) handleConvert(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadBytes+multipartSlack)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.String(http.StatusRequestEntityTooLarge, s.capacityMessage())
			return
		}
		c.String(http.StatusBadRequest, "Missing file.")
		return
	}

	category := format.Category(c.PostForm("category"))
	target, ok := format.Lookup(category, c.PostForm("format"))
	if !ok {
		c.String(http.StatusBadRequest, "Unsupported category/format.")
		return
	}

	if fileHeader.Size > s.cfg.MaxUploadBytes {
		c.String(http.StatusRequestEntityTooLarge, s.capacityMessage())
		return
	}

	inputPath := s.scratch.InputPath(fileHeader.Filename)
	outputPath := s.scratch.OutputPath(target.Ext)
	defer s.scratch.Release(inputPath, outputPath)

	if err := c.SaveUploadedFile(fileHeader, inputPath); err != nil {
		c.String(http.StatusInternalServerError, "Failed to store upload.")
		return
	}

	// The subprocess deadline comes from the configured timeout, not the
	// request context: once accepted, a conversion completes or times out
	// on the server's own terms even if the client disconnects.
	if err := s.disp.Convert(context.Background(), category, inputPath, target, outputPath); err != nil {
		c.String(statusFor(err), err.Error())
		return
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		c.String(http.StatusInternalServerError, "Failed to read conversion output.")
		return
	}

	outName := utils.SafeBaseName(fileHeader.Filename) + "." + target.Ext
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", outName))
	c.Header("X-Output-Name", outName)
	c.Data(http.StatusOK, format.ContentTypeFor(target.Ext), data)
}

func (s *Server) capacityMessage() string {
	return fmt.Sprintf("File too large. Max allowed is %d MB.", s.cfg.MaxUploadBytes/(1024*1024))
}

func statusFor(err error) int {
	switch converter.KindOf(err) {
	case converter.KindValidation:
		return http.StatusBadRequest
	case converter.KindCapacity:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// Package ocr adapts external text recognition engines to domain.Recognizer.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/stockboard/backend/internal/domain"
	"go.uber.org/zap"
)

// TesseractConfig configures the tesseract CLI adapter
type TesseractConfig struct {
	Path     string
	Language string
	Timeout  time.Duration
}

// Tesseract recognizes text by piping the image through the tesseract CLI
type Tesseract struct {
	path     string
	language string
	timeout  time.Duration
	logger   *zap.Logger
}

// NewTesseract creates a recognizer that runs `tesseract stdin stdout -l <lang>`
func NewTesseract(config TesseractConfig, logger *zap.Logger) *Tesseract {
	if config.Path == "" {
		config.Path = "tesseract"
	}
	if config.Language == "" {
		config.Language = "eng"
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Tesseract{
		path:     config.Path,
		language: config.Language,
		timeout:  config.Timeout,
		logger:   logger.Named("ocr"),
	}
}

// Recognize returns the raw recognized text. Every failure wraps domain.ErrRecognition.
func (t *Tesseract) Recognize(ctx context.Context, input domain.ScannedInput) (string, error) {
	if len(input.Data) == 0 {
		return "", fmt.Errorf("%w: empty image", domain.ErrRecognition)
	}
	if !input.IsImage() {
		return "", fmt.Errorf("%w: unsupported media type %q", domain.ErrRecognition, input.MediaType)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, "stdin", "stdout", "-l", t.language)
	cmd.Stdin = bytes.NewReader(input.Data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	started := time.Now()
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		t.logger.Warn("tesseract failed",
			zap.String("file", input.FileName),
			zap.String("stderr", msg),
			zap.Error(err))
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", domain.ErrRecognition, ctx.Err())
		}
		if msg != "" {
			return "", fmt.Errorf("%w: %v: %s", domain.ErrRecognition, err, msg)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrRecognition, err)
	}

	t.logger.Debug("tesseract done",
		zap.String("file", input.FileName),
		zap.Int("bytes", stdout.Len()),
		zap.Duration("took", time.Since(started)))

	return stdout.String(), nil
}

// Package ocr extracts on-slide text with tesseract. Failures are
// soft: a slide that cannot be read just gets empty text.
package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/nfnt/resize"

	"video-extract/internal/logger"
	"video-extract/pkg/executor"
)

const minConfidence = 0.3

type Client struct {
	executor     executor.Executor
	logger       logger.Logger
	tesseractCmd string
	tempDir      string
}

func New(exec executor.Executor, log logger.Logger, tesseractCmd, tempDir string) *Client {
	if tesseractCmd == "" {
		tesseractCmd = "tesseract"
	}
	return &Client{
		executor:     exec,
		logger:       log,
		tesseractCmd: tesseractCmd,
		tempDir:      tempDir,
	}
}

// Recognize runs tesseract over an upscaled copy of the image and
// returns cleaned text. Text below the confidence floor is dropped.
func (c *Client) Recognize(ctx context.Context, imagePath string) (string, error) {
	upscaled, err := c.upscale(imagePath)
	if err != nil {
		c.logger.Warn(ctx, "ocr preprocess failed for %s: %v", imagePath, err)
		return "", nil
	}
	defer os.Remove(upscaled)

	raw, err := c.executor.Execute(ctx, c.tesseractCmd, upscaled, "stdout", "--oem", "3", "--psm", "6")
	if err != nil {
		c.logger.Warn(ctx, "tesseract failed for %s: %v", imagePath, err)
		return "", nil
	}

	text := cleanText(raw)
	if confidence(text) < minConfidence {
		c.logger.Debug(ctx, "discarding low-confidence ocr text for %s", imagePath)
		return "", nil
	}
	return text, nil
}

// upscale writes a 2x Lanczos-resized grayscale copy next to the temp
// dir. Small slide text recognizes much better at double resolution.
func (c *Client) upscale(imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}

	bounds := src.Bounds()
	scaled := resize.Resize(uint(bounds.Dx()*2), uint(bounds.Dy()*2), src, resize.Lanczos3)

	gray := image.NewGray(scaled.Bounds())
	for y := scaled.Bounds().Min.Y; y < scaled.Bounds().Max.Y; y++ {
		for x := scaled.Bounds().Min.X; x < scaled.Bounds().Max.X; x++ {
			gray.Set(x, y, scaled.At(x, y))
		}
	}

	outPath := filepath.Join(c.tempDir, "ocr_"+filepath.Base(imagePath))
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer out.Close()

	if err := png.Encode(out, gray); err != nil {
		os.Remove(outPath)
		return "", fmt.Errorf("encode temp image: %w", err)
	}
	return outPath, nil
}

// cleanText drops lines that are too short, look like unbroken OCR
// garbage, or carry no alphanumeric characters at all.
func cleanText(text string) string {
	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 2 {
			continue
		}
		if !strings.Contains(line, " ") && len(line) > 20 {
			continue
		}
		if !containsAlnum(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// confidence is the alphanumeric share of the text, a rough proxy for
// how much of it is real words rather than recognition noise.
func confidence(text string) float64 {
	if text == "" {
		return 0
	}
	runes := []rune(text)
	alnum := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			alnum++
		}
	}
	return float64(alnum) / float64(len(runes))
}

func containsAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

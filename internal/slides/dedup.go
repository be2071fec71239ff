// Package slides turns noisy candidate frames into a deduplicated,
// bounded sequence of slides.
package slides

import (
	"context"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"math"
	"os"

	"github.com/corona10/goimagehash"

	"video-extract/internal/frames"
	"video-extract/internal/logger"
)

// pHash width in bits.
const hashBits = 64

// Validity bounds for candidate frames. Anything smaller than a
// legible slide, or almost entirely black or white (fades, blank
// transitions), is dropped before hashing.
const (
	minFrameWidth  = 320
	minFrameHeight = 240
	darkLuma       = 30
	brightLuma     = 225
	flatPixelRatio = 0.9
)

// Deduper collapses runs of visually near-identical frames. Scene
// detection double-fires on flashes and transitions; the hash distance
// and minimum duration gates jointly suppress that without a second
// detection pass.
type Deduper struct {
	logger    logger.Logger
	threshold int

	hashFn  func(image.Image) (*goimagehash.ImageHash, error)
	validFn func(image.Image) bool
}

func NewDeduper(log logger.Logger, sceneSensitivity float64) *Deduper {
	return &Deduper{
		logger:    log,
		threshold: distanceThreshold(sceneSensitivity),
		hashFn:    goimagehash.PerceptionHash,
		validFn:   isValidFrame,
	}
}

// distanceThreshold maps the scene-change sensitivity (0..1) onto a
// Hamming distance over half the hash bits: 0.3 becomes 10 of 64.
func distanceThreshold(sensitivity float64) int {
	return int(math.Round(sensitivity * hashBits / 2))
}

// Dedup accepts a frame as a new slide when it is the first, or when
// its hash distance to the last accepted slide exceeds the threshold
// AND it is at least minDuration after it. Acceptance stops at
// maxSlides. A non-empty input always yields at least one slide.
func (d *Deduper) Dedup(ctx context.Context, input []frames.Frame, maxSlides int, minDuration float64) ([]*Slide, error) {
	var (
		accepted []*Slide
		lastHash *goimagehash.ImageHash
		lastTime float64
	)

	for _, frame := range input {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if maxSlides > 0 && len(accepted) >= maxSlides {
			break
		}

		img, err := decodeFrame(frame.Path)
		if err != nil {
			d.logger.Warn(ctx, "Skipping unreadable frame %s: %v", frame.Path, err)
			continue
		}
		if !d.validFn(img) {
			d.logger.Debug(ctx, "Dropping invalid frame at %.2fs (too small or blank)", frame.Timestamp)
			continue
		}

		hash, err := d.hashFn(img)
		if err != nil {
			d.logger.Warn(ctx, "Skipping unhashable frame %s: %v", frame.Path, err)
			continue
		}

		if lastHash != nil {
			distance, err := lastHash.Distance(hash)
			if err != nil {
				d.logger.Warn(ctx, "Hash comparison failed for %s: %v", frame.Path, err)
				continue
			}
			if distance <= d.threshold || frame.Timestamp-lastTime < minDuration {
				d.logger.Debug(ctx, "Dropping near-duplicate frame at %.2fs (distance %d)", frame.Timestamp, distance)
				continue
			}
		}

		accepted = append(accepted, &Slide{
			Index:     len(accepted),
			Timestamp: frame.Timestamp,
			ImagePath: frame.Path,
			Hash:      hash.ToString(),
		})
		lastHash = hash
		lastTime = frame.Timestamp
	}

	// A near-static video can dedup down to nothing; downstream stages
	// must always receive at least one slide.
	if len(accepted) == 0 {
		if len(input) == 0 {
			return nil, fmt.Errorf("no frames to deduplicate")
		}
		d.logger.Warn(ctx, "All frames deduplicated away, keeping the first frame as a single slide")
		first := input[0]
		slide := &Slide{Index: 0, Timestamp: 0, ImagePath: first.Path}
		if img, err := decodeFrame(first.Path); err == nil {
			if hash, err := d.hashFn(img); err == nil {
				slide.Hash = hash.ToString()
			}
		}
		accepted = append(accepted, slide)
	}

	d.logger.Info(ctx, "Deduplicated %d frames into %d slides", len(input), len(accepted))
	return accepted, nil
}

func decodeFrame(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open frame: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("decode frame: %w", err)
	}
	return img, nil
}

// isValidFrame rejects frames that cannot be a legible slide: too
// small, or dominated by near-black or near-white pixels the way fade
// transitions and blank screens are.
func isValidFrame(img image.Image) bool {
	bounds := img.Bounds()
	if bounds.Dx() < minFrameWidth || bounds.Dy() < minFrameHeight {
		return false
	}

	var dark, bright, total int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			luma := color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			if luma < darkLuma {
				dark++
			} else if luma > brightLuma {
				bright++
			}
			total++
		}
	}

	limit := int(flatPixelRatio * float64(total))
	return dark <= limit && bright <= limit
}

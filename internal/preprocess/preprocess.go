// Package preprocess prepares downloaded bill images for OCR and scores
// their quality. Scanned bills arrive with poor contrast and soft text;
// a grayscale/contrast/sharpen pass measurably improves recognition.
package preprocess

import (
	"bytes"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// Decode reads an image from raw downloaded bytes.
func Decode(data []byte) (image.Image, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// EnhanceForOCR applies the standard cleanup chain before recognition:
// grayscale for contrast, a contrast boost, and a sharpen pass to firm up
// thin printed text.
func EnhanceForOCR(src image.Image) image.Image {
	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)
	return img
}

// Save writes the processed image to path (format inferred from extension).
func Save(img image.Image, path string) error {
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	return nil
}

// QualityScore returns a cheap luminance-variance score in [0,1]. Flat,
// washed-out scans cluster near 0; crisp high-contrast documents near 1.
func QualityScore(src image.Image) float64 {
	gray := imaging.Grayscale(src)
	b := gray.Bounds()
	n := b.Dx() * b.Dy()
	if n == 0 {
		return 0
	}

	var sum, sumSq float64
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, _, _, _ := gray.At(x, y).RGBA()
			v := float64(r >> 8)
			sum += v
			sumSq += v * v
		}
	}
	mean := sum / float64(n)
	variance := sumSq/float64(n) - mean*mean

	score := variance / 1000.0
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

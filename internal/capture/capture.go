// Package capture turns face image files into form file values.
package capture

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/faceauth/internal/form"
)

// JPEGQuality is used when a capture has to be re-encoded.
const JPEGQuality = 85

// Load reads an image file into a form file. With maxSize > 0 an image larger
// than maxSize in either dimension is scaled down to fit, keeping the aspect
// ratio, and sent as JPEG. Otherwise the file bytes are kept exactly.
func Load(path string, maxSize int) (*form.File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user-provided capture path
	if err != nil {
		return nil, fmt.Errorf("could not read capture: %w", err)
	}

	file := &form.File{
		Filename:    filepath.Base(path),
		ContentType: http.DetectContentType(data),
		Data:        data,
	}
	if maxSize <= 0 {
		return file, nil
	}

	resized, changed, err := Fit(data, maxSize)
	if err != nil {
		return nil, err
	}
	if !changed {
		return file, nil
	}

	file.Filename = strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)) + ".jpg"
	file.ContentType = "image/jpeg"
	file.Data = resized
	return file, nil
}

// Fit scales an encoded image down so neither side exceeds maxSize.
// It reports whether the image was changed; images that already fit are
// returned untouched.
func Fit(data []byte, maxSize int) ([]byte, bool, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("could not decode image: %w", err)
	}
	if cfg.Width <= maxSize && cfg.Height <= maxSize {
		return data, false, nil
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, false, fmt.Errorf("could not decode image: %w", err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	var newWidth, newHeight int
	if width > height {
		newWidth = maxSize
		newHeight = max(1, int(float64(height)*float64(maxSize)/float64(width)))
	} else {
		newHeight = maxSize
		newWidth = max(1, int(float64(width)*float64(maxSize)/float64(height)))
	}

	resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, false, fmt.Errorf("could not encode image: %w", err)
	}
	return buf.Bytes(), true, nil
}

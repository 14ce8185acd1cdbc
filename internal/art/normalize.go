package art

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // PNG decoder registration
	"net/http"

	"github.com/nfnt/resize"
)

const (
	mimeJPEG = "image/jpeg"
	mimePNG  = "image/png"

	defaultJPEGQuality = 90
)

// detectMimeType sniffs image data, falling back to the declared type when
// the content is not one http.DetectContentType recognizes as an image.
func detectMimeType(data []byte, declared string) string {
	contentType := http.DetectContentType(data)
	switch contentType {
	case mimeJPEG, mimePNG:
		return contentType
	}
	return declared
}

// normalize returns marker-ready bytes for an embedded picture: JPEG
// content within the size bound passes through untouched, everything else
// is decoded, downscaled when oversized and re-encoded as JPEG.
func (e *Extractor) normalize(data []byte, declared string) ([]byte, error) {
	if detectMimeType(data, declared) == mimeJPEG {
		cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("decode picture: %w", err)
		}
		if e.MaxDimension <= 0 || (cfg.Width <= e.MaxDimension && cfg.Height <= e.MaxDimension) {
			return data, nil
		}
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode picture: %w", err)
	}

	if e.MaxDimension > 0 {
		img = resize.Thumbnail(uint(e.MaxDimension), uint(e.MaxDimension), img, resize.Lanczos3)
	}

	quality := e.JPEGQuality
	if quality <= 0 {
		quality = defaultJPEGQuality
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

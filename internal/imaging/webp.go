// Package imaging converts generated images into the format they are stored in.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register JPEG for image.Decode
	_ "image/png"  // register PNG for image.Decode

	_ "github.com/kolesa-team/go-webp/decoder" // register WebP for image.Decode
	"github.com/kolesa-team/go-webp/encoder"
	"github.com/kolesa-team/go-webp/webp"
)

// DefaultQuality is the lossy WebP quality used for generated images.
const DefaultQuality float32 = 90

// WebPContentType is the MIME type of encoded output.
const WebPContentType = "image/webp"

// ToWebP decodes a PNG, JPEG or WebP image and re-encodes it as lossy WebP.
func ToWebP(data []byte, quality float32) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if quality <= 0 || quality > 100 {
		quality = DefaultQuality
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	options, err := encoder.NewLossyEncoderOptions(encoder.PresetDefault, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create WebP encoder options: %w", err)
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, options); err != nil {
		return nil, fmt.Errorf("failed to encode %s as WebP: %w", format, err)
	}
	return buf.Bytes(), nil
}

// IsWebP reports whether data starts with a RIFF/WEBP header.
func IsWebP(data []byte) bool {
	return len(data) >= 12 && bytes.Equal(data[0:4], []byte("RIFF")) && bytes.Equal(data[8:12], []byte("WEBP"))
}

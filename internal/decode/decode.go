// Package decode wraps the image-decode capability used by the render side.
package decode

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
)

// Decoder turns an owned byte buffer into a decoded raster, or fails if
// the bytes are not a valid, complete image.
type Decoder interface {
	Decode(data []byte) (image.Image, error)
}

// JPEG decodes JPEG-encoded payloads using the standard library codec.
type JPEG struct{}

func (JPEG) Decode(data []byte) (image.Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("decode: empty payload")
	}
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return img, nil
}

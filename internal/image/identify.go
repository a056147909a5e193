package image

import (
	"bytes"
	"image"

	// Registered codecs. GIF decodes fine but is outside the supported
	// whitelist, so such uploads are rejected at the naming gate.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// Identify decodes data with the registered codecs and returns the
// image dimensions. The caller-declared mime type plays no role here:
// whether the payload really is an image is decided from the bytes
// alone. Malformed input fails with a DecodeError.
func Identify(data []byte) (width, height int, err error) {
	img, _, derr := image.Decode(bytes.NewReader(data))
	if derr != nil {
		return 0, 0, &DecodeError{Err: derr}
	}
	bounds := img.Bounds()
	return bounds.Dx(), bounds.Dy(), nil
}

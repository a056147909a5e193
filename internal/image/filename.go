package image

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/google/uuid"
)

// MaxUploadBytesDefault is the outer multipart cap applied by the HTTP
// layer when no override is configured.
const MaxUploadBytesDefault = 1_000_000

// extensionForMime maps a declared mime type to the stored file
// extension. Only jpeg and png survive this gate; everything else
// fails with UnsupportedFormatError, including types the codecs can
// decode (gif).
func extensionForMime(mime string) (string, error) {
	switch mime {
	case "image/jpeg":
		return "jpeg", nil
	case "image/png":
		return "png", nil
	default:
		return "", &UnsupportedFormatError{Mime: mime}
	}
}

// Synthesize derives a unique opaque filename for an upload of the
// given byte size and declared mime type.
//
// The seed combines a fresh random token, the size, the extension, and
// the wall-clock timestamp in milliseconds; a fast non-cryptographic
// hash of the seed becomes the name. Uniqueness comes from the token
// and timestamp, not the hash strength: two byte-identical uploads
// always receive two different filenames and two different rows.
func Synthesize(size int, mime string) (string, error) {
	ext, err := extensionForMime(mime)
	if err != nil {
		return "", err
	}
	seed := fmt.Sprintf("%s_%d_%s_%d", uuid.NewString(), size, ext, time.Now().UnixMilli())
	h := fnv.New64a()
	_, _ = h.Write([]byte(seed))
	return fmt.Sprintf("%d.%s", h.Sum64(), ext), nil
}

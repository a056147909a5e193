package image

import (
	"context"
	"io"
	"path"

	"github.com/google/uuid"
)

// Service runs the upload pipeline and fronts the persistence gateway.
// Each request moves through reading, validating, naming, and URL
// resolution before the single persisting insert; the first failure
// short-circuits the rest and nothing durable is left behind.
type Service struct {
	store    Store
	urls     *Resolver
	maxBytes int64
}

// NewService wires the pipeline. maxBytes is handed to the ingestion
// reader on every upload; zero or less disables the reader-side cap
// (the transport cap still applies).
func NewService(store Store, urls *Resolver, maxBytes int64) *Service {
	return &Service{store: store, urls: urls, maxBytes: maxBytes}
}

// FromReader assembles an Image from one multipart field stream and
// its declared content type. The declared mime is advisory: it picks
// the extension via the whitelist, while the decision of whether the
// payload is really an image comes from decoding the bytes.
//
// Gates run whitelist-first, then decode, so an unsupported mime is
// rejected before any decode work happens. The outcome matches the
// decode-first order in every observable way.
func (s *Service) FromReader(r io.Reader, mime string) (Image, error) {
	if _, err := extensionForMime(mime); err != nil {
		return Image{}, err
	}

	data, err := ReadAll(r, s.maxBytes)
	if err != nil {
		return Image{}, err
	}

	width, height, err := Identify(data)
	if err != nil {
		return Image{}, err
	}

	filename, err := Synthesize(len(data), mime)
	if err != nil {
		return Image{}, err
	}

	url, err := s.urls.Resolve(path.Join("api/v1/images", filename))
	if err != nil {
		return Image{}, err
	}

	return Image{
		Width:    width,
		Height:   height,
		Mime:     mime,
		Filename: filename,
		URL:      url,
		Size:     len(data),
		Data:     data,
	}, nil
}

// Save persists the assembled image for the given owner. The owner id
// is supplied by the authorization collaborator; it is never derived
// or validated here.
func (s *Service) Save(ctx context.Context, img Image, ownerID uuid.UUID) (Stored, error) {
	return s.store.Insert(ctx, img, ownerID)
}

// Download returns the full record for a filename, bytes included.
func (s *Service) Download(ctx context.Context, filename string) (Stored, error) {
	return s.store.ByFilename(ctx, filename)
}

// GetInfo returns the metadata projection for a record id.
func (s *Service) GetInfo(ctx context.Context, id uuid.UUID) (Info, error) {
	return s.store.InfoByID(ctx, id)
}

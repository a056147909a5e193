// images.go - Upload, download, and metadata handlers for the media core.
//
// These handlers are the transport shell around internal/image: they
// enforce the outer multipart cap, hand the field stream and the
// authenticated owner id to the pipeline, and map its error kinds to
// status codes. All media semantics live in the core package.
package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"driftchat/internal/image"
)

// uploadImageHandler handles POST /api/v1/images: one multipart field
// named "file" is run through the ingestion pipeline and persisted for
// the authenticated owner.
func (cfg Config) uploadImageHandler() http.Handler {
	return cfg.Auth.requireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ownerID, ok := UserIDFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		stored, ok := cfg.ingestImagePart(w, r, ownerID)
		if !ok {
			return
		}

		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=image_stored id=%s owner=%s filename=%s size=%d",
			rid, stored.ID, stored.OwnerID, stored.Filename, stored.Size)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(stored)
	}))
}

// ingestImagePart pulls the "file" field out of the multipart body,
// runs the pipeline, and persists the result. On failure it writes the
// mapped status itself and reports ok=false.
func (cfg Config) ingestImagePart(w http.ResponseWriter, r *http.Request, ownerID uuid.UUID) (image.Stored, bool) {
	start := time.Now()

	// Outer transport cap; the pipeline applies the same limit to the
	// field stream itself.
	r.Body = http.MaxBytesReader(w, r.Body, cfg.MaxUploadBytes)

	mr, err := r.MultipartReader()
	if err != nil {
		GetMetrics().RecordUploadError()
		http.Error(w, "bad multipart", http.StatusBadRequest)
		return image.Stored{}, false
	}

	var filePart io.Reader
	var contentType string

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			GetMetrics().RecordUploadError()
			http.Error(w, "bad multipart", http.StatusBadRequest)
			return image.Stored{}, false
		}
		defer func() { _ = part.Close() }()

		if part.FormName() != "file" {
			continue
		}

		filePart = part
		contentType = part.Header.Get("Content-Type")
		break
	}

	if filePart == nil {
		GetMetrics().RecordUploadError()
		http.Error(w, "missing file", http.StatusBadRequest)
		return image.Stored{}, false
	}

	img, err := cfg.Images.FromReader(filePart, contentType)
	if err != nil {
		GetMetrics().RecordUploadError()
		writeImageError(w, r, err)
		return image.Stored{}, false
	}

	stored, err := cfg.Images.Save(r.Context(), img, ownerID)
	if err != nil {
		GetMetrics().RecordUploadError()
		writeImageError(w, r, err)
		return image.Stored{}, false
	}

	GetMetrics().RecordUpload(int64(stored.Size), time.Since(start))
	return stored, true
}

// downloadImageHandler handles GET /api/v1/images/{filename}: an
// exact-match lookup serving the stored bytes with their recorded
// mime type and length.
func (cfg Config) downloadImageHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		filename := r.PathValue("filename")
		if filename == "" {
			http.Error(w, "missing filename", http.StatusBadRequest)
			return
		}

		stored, err := cfg.Images.Download(r.Context(), filename)
		if err != nil {
			GetMetrics().RecordDownloadError()
			writeImageError(w, r, err)
			return
		}

		GetMetrics().RecordDownload(int64(stored.Size))

		w.Header().Set("Content-Type", stored.Mime)
		w.Header().Set("Content-Length", strconv.Itoa(stored.Size))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(stored.Data)
	})
}

// imageInfoHandler handles GET /api/v1/images/{id}/info: the metadata
// projection, never the bytes.
func (cfg Config) imageInfoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(r.PathValue("id"))
		if err != nil {
			http.Error(w, "bad id", http.StatusBadRequest)
			return
		}

		info, err := cfg.Images.GetInfo(r.Context(), id)
		if err != nil {
			writeImageError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(info)
	})
}

// writeImageError maps pipeline error kinds to HTTP statuses. The core
// never renders responses; this is the only place the mapping lives.
func writeImageError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		unsupported *image.UnsupportedFormatError
		decodeErr   *image.DecodeError
		readErr     *image.ReadError
		persistErr  *image.PersistenceError
		cfgErr      *image.ConfigError
	)

	switch {
	case errors.Is(err, image.ErrNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case errors.As(err, &unsupported):
		http.Error(w, "unsupported image type", http.StatusUnsupportedMediaType)
	case errors.As(err, &decodeErr):
		http.Error(w, "not a valid image", http.StatusBadRequest)
	case errors.As(err, &readErr):
		var maxBytesErr *http.MaxBytesError
		if errors.Is(err, image.ErrTooLarge) || errors.As(err, &maxBytesErr) {
			// Either the reader's own cap or the outer transport cap tripped.
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "upload interrupted", http.StatusBadRequest)
	case errors.As(err, &persistErr):
		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=persistence_error err=%v", rid, err)
		http.Error(w, "db error", http.StatusInternalServerError)
	case errors.As(err, &cfgErr):
		rid := RequestIDFromContext(r.Context())
		log.Printf("rid=%s msg=config_error err=%v", rid, err)
		http.Error(w, "server misconfigured", http.StatusInternalServerError)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

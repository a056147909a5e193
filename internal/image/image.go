// Package image implements the media ingestion and retrieval core:
// multipart accumulation, format validation, filename synthesis, URL
// resolution, and the single-insert persistence gateway.
//
// The package holds no shared mutable state; the only shared resource
// is the database pool injected into the SQL store at construction.
package image

import "github.com/google/uuid"

// Image is the assembled upload, produced by the pipeline and consumed
// by the persistence gateway. It exists only for the duration of one
// upload request.
type Image struct {
	Width    int
	Height   int
	Mime     string
	Filename string
	URL      string
	Size     int
	Data     []byte
}

// Stored is a persisted image row, including the raw bytes. Records
// are immutable once written; there is no update path.
type Stored struct {
	ID       uuid.UUID `json:"id"`
	OwnerID  uuid.UUID `json:"owner_id"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Mime     string    `json:"mime"`
	Filename string    `json:"filename"`
	URL      string    `json:"url"`
	Size     int       `json:"size"`
	Data     []byte    `json:"-"`
}

// Info is the metadata projection of a stored image. Raw bytes are
// never part of this view.
type Info struct {
	ID       uuid.UUID `json:"id"`
	OwnerID  uuid.UUID `json:"owner_id"`
	Width    int       `json:"width"`
	Height   int       `json:"height"`
	Mime     string    `json:"mime"`
	Filename string    `json:"filename"`
	Size     int       `json:"size"`
}

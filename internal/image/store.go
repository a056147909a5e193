package image

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Store is the persistence gateway for image records. Implementations
// must make Insert a single atomic statement: the binary is stored
// only as part of that insert, so a failure before commit leaves no
// residue anywhere.
type Store interface {
	Insert(ctx context.Context, img Image, ownerID uuid.UUID) (Stored, error)
	ByFilename(ctx context.Context, filename string) (Stored, error)
	InfoByID(ctx context.Context, id uuid.UUID) (Info, error)
}

// SQLStore implements Store on a shared *sql.DB pool. The pool is
// injected at construction; this package never reaches for global
// connection state.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

const uniqueViolation = "23505"

// Insert writes one image row in a single statement and returns the
// fully assigned record, including the generated id. A uniqueness
// violation on filename is astronomically unlikely given how names are
// synthesized, but it is surfaced as a PersistenceError rather than
// retried.
func (s *SQLStore) Insert(ctx context.Context, img Image, ownerID uuid.UUID) (Stored, error) {
	stored := Stored{
		OwnerID:  ownerID,
		Width:    img.Width,
		Height:   img.Height,
		Mime:     img.Mime,
		Filename: img.Filename,
		URL:      img.URL,
		Size:     img.Size,
		Data:     img.Data,
	}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO images (height, width, mime, filename, url, size, image, owner_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, img.Height, img.Width, img.Mime, img.Filename, img.URL, img.Size, img.Data, ownerID,
	).Scan(&stored.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Stored{}, &PersistenceError{Err: errors.New("filename collision: " + img.Filename)}
		}
		return Stored{}, &PersistenceError{Err: err}
	}
	return stored, nil
}

// ByFilename returns the full record, raw bytes included, for an
// exact-match filename lookup.
func (s *SQLStore) ByFilename(ctx context.Context, filename string) (Stored, error) {
	var stored Stored
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, height, width, mime, filename, url, size, image
		FROM images
		WHERE filename = $1
	`, filename).Scan(
		&stored.ID, &stored.OwnerID, &stored.Height, &stored.Width,
		&stored.Mime, &stored.Filename, &stored.URL, &stored.Size, &stored.Data,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stored{}, ErrNotFound
		}
		return Stored{}, &PersistenceError{Err: err}
	}
	return stored, nil
}

// InfoByID returns the metadata projection for a record id. The image
// column is deliberately absent from the statement.
func (s *SQLStore) InfoByID(ctx context.Context, id uuid.UUID) (Info, error) {
	var info Info
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, height, width, mime, filename, size
		FROM images
		WHERE id = $1
	`, id).Scan(
		&info.ID, &info.OwnerID, &info.Height, &info.Width,
		&info.Mime, &info.Filename, &info.Size,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Info{}, ErrNotFound
		}
		return Info{}, &PersistenceError{Err: err}
	}
	return info, nil
}

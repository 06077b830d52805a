package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/lutyjj/photkey-server/internal/domain"
)

// Capture dates are stored as UTC unix nanoseconds so that range queries
// and ordering are plain integer comparisons.
const schema = `
CREATE TABLE IF NOT EXISTS photos (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	date       INTEGER NOT NULL,
	name       TEXT    NOT NULL UNIQUE,
	place      TEXT    NOT NULL DEFAULT '',
	local_path TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_photos_date ON photos(date);
`

// PhotoRepository is durable structured storage for photo records.
// The UNIQUE constraint on name is the single serialization point for
// concurrent ingestions of the same file name.
type PhotoRepository interface {
	Create(ctx context.Context, photo *domain.Photo) error
	ByID(ctx context.Context, id int64) (*domain.Photo, error)
	ByName(ctx context.Context, name string) (*domain.Photo, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	All(ctx context.Context) ([]domain.Photo, error)
	ByPlace(ctx context.Context, place string) ([]domain.Photo, error)
	ByDateRange(ctx context.Context, start, end time.Time) ([]domain.Photo, error)
	Close() error
}

type photoRepository struct {
	db  *sql.DB
	log *zap.Logger
}

func NewPhotoRepository(dbPath string, log *zap.Logger) (PhotoRepository, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to provision database: %w", err)
	}

	log.Info("Photo repository ready", zap.String("path", dbPath))

	return &photoRepository{db: db, log: log}, nil
}

func (r *photoRepository) Close() error {
	return r.db.Close()
}

// Create inserts the record and assigns its id. A name collision is
// reported as domain.ErrDuplicateName.
func (r *photoRepository) Create(ctx context.Context, photo *domain.Photo) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO photos (date, name, place, local_path) VALUES (?, ?, ?, ?)`,
		photo.Date.UTC().UnixNano(), photo.Name, photo.Place, photo.LocalPath,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
			return fmt.Errorf("%w: %s", domain.ErrDuplicateName, photo.Name)
		}
		return fmt.Errorf("failed to insert photo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read inserted id: %w", err)
	}
	photo.ID = id

	return nil
}

func (r *photoRepository) ByID(ctx context.Context, id int64) (*domain.Photo, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, name, place, local_path FROM photos WHERE id = ?`, id)
	return scanPhoto(row)
}

func (r *photoRepository) ByName(ctx context.Context, name string) (*domain.Photo, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, date, name, place, local_path FROM photos WHERE name = ?`, name)
	return scanPhoto(row)
}

func (r *photoRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM photos WHERE name = ?)`, name).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (r *photoRepository) All(ctx context.Context) ([]domain.Photo, error) {
	return r.queryPhotos(ctx,
		`SELECT id, date, name, place, local_path FROM photos ORDER BY date DESC`)
}

// ByPlace matches place substrings case-insensitively.
func (r *photoRepository) ByPlace(ctx context.Context, place string) ([]domain.Photo, error) {
	return r.queryPhotos(ctx,
		`SELECT id, date, name, place, local_path FROM photos
		 WHERE LOWER(place) LIKE '%' || LOWER(?) || '%' ORDER BY date DESC`,
		place)
}

// ByDateRange returns photos with capture date in [start, end).
func (r *photoRepository) ByDateRange(ctx context.Context, start, end time.Time) ([]domain.Photo, error) {
	return r.queryPhotos(ctx,
		`SELECT id, date, name, place, local_path FROM photos
		 WHERE date >= ? AND date < ? ORDER BY date DESC`,
		start.UTC().UnixNano(), end.UTC().UnixNano())
}

func (r *photoRepository) queryPhotos(ctx context.Context, query string, args ...interface{}) ([]domain.Photo, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []domain.Photo
	for rows.Next() {
		var p domain.Photo
		var date int64
		if err := rows.Scan(&p.ID, &date, &p.Name, &p.Place, &p.LocalPath); err != nil {
			return nil, err
		}
		p.Date = time.Unix(0, date).UTC()
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func scanPhoto(row *sql.Row) (*domain.Photo, error) {
	var p domain.Photo
	var date int64
	if err := row.Scan(&p.ID, &date, &p.Name, &p.Place, &p.LocalPath); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPhotoNotFound
		}
		return nil, err
	}
	p.Date = time.Unix(0, date).UTC()
	return &p, nil
}

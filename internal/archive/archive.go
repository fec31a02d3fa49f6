// Package archive keeps a copy of every uploaded result file.
//
// Each backend satisfies core.BlobArchive. The handle returned by Store is
// recorded on the upload's history entry; nothing reads files back through
// this package.
package archive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by Postgres.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const resultFilesSchema = `
CREATE TABLE IF NOT EXISTS result_files (
	id          UUID PRIMARY KEY,
	filename    TEXT NOT NULL,
	content     BYTEA NOT NULL,
	size        BIGINT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Postgres stores files as rows of result_files.
type Postgres struct {
	db  DBTX
	now func() time.Time
}

// NewPostgres creates an archive over db. Call EnsureSchema once at startup.
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db, now: time.Now}
}

// EnsureSchema creates the result_files table if it does not exist.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, resultFilesSchema); err != nil {
		return fmt.Errorf("create result_files table: %w", err)
	}
	return nil
}

// Store inserts data and returns the new row's ID.
func (p *Postgres) Store(ctx context.Context, name string, data []byte) (string, error) {
	id := uuid.New()
	_, err := p.db.Exec(ctx,
		`INSERT INTO result_files (id, filename, content, size, uploaded_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, data, int64(len(data)), p.now().UTC(),
	)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	return id.String(), nil
}

// Size returns the stored size of the file with the given handle.
func (p *Postgres) Size(ctx context.Context, handle string) (int64, error) {
	id, err := uuid.Parse(handle)
	if err != nil {
		return 0, fmt.Errorf("invalid archive handle %q: %w", handle, err)
	}
	var size int64
	if err := p.db.QueryRow(ctx, `SELECT size FROM result_files WHERE id = $1`, id).Scan(&size); err != nil {
		return 0, fmt.Errorf("lookup archive %s: %w", handle, err)
	}
	return size, nil
}

// Dir writes each file into a directory on disk.
type Dir struct {
	root string
	now  func() time.Time
}

// NewDir creates the directory if needed and returns an archive over it.
func NewDir(root string) (*Dir, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create archive dir: %w", err)
	}
	return &Dir{root: root, now: time.Now}, nil
}

// Store writes data to <root>/<timestamp>_<name> and returns that path.
func (d *Dir) Store(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(d.root, d.now().UTC().Format("20060102T150405.000000000")+"_"+safeName(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("archive %s: %w", name, err)
	}
	return path, nil
}

// safeName keeps only the base name and replaces characters that are awkward
// in file names.
func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "upload.csv"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_' || r == '%':
			return r
		default:
			return '_'
		}
	}, name)
}

// Nop discards files. It is used when archiving is disabled.
type Nop struct{}

// Store returns an empty handle.
func (Nop) Store(context.Context, string, []byte) (string, error) {
	return "", nil
}

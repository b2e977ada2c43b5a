package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// UploadedFile mirrors the 'uploaded_files' table.  Filename is the
// sanitized client-supplied name, Filepath the server-side storage location.
type UploadedFile struct {
	ID         uint64
	Filename   string
	Filepath   string
	UploadDate time.Time
	UserID     uint64
}

// FileRepo encapsulates all database queries related to uploaded files.
type FileRepo struct {
	db *sql.DB
}

// NewFileRepo constructs a FileRepo with the provided DB handle.
func NewFileRepo(db *sql.DB) *FileRepo {
	return &FileRepo{db: db}
}

// Create inserts an uploaded file record and returns its ID.
func (r *FileRepo) Create(ctx context.Context, filename, filepath string, userID uint64) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO uploaded_files (filename, filepath, user_id) VALUES (?,?,?)",
		filename, filepath, userID)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID fetches an uploaded file record by id.  Returns ErrFileNotFound
// when the id is unknown.
func (r *FileRepo) GetByID(ctx context.Context, id uint64) (*UploadedFile, error) {
	const q = "SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE id = ?"
	var f UploadedFile
	if err := r.db.QueryRowContext(ctx, q, id).Scan(
		&f.ID, &f.Filename, &f.Filepath, &f.UploadDate, &f.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListAll returns every uploaded file record.  Admin listing.
func (r *FileRepo) ListAll(ctx context.Context) ([]*UploadedFile, error) {
	const q = "SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files ORDER BY id"
	return r.list(ctx, q)
}

// ListByUser returns the records owned by one user.
func (r *FileRepo) ListByUser(ctx context.Context, userID uint64) ([]*UploadedFile, error) {
	const q = "SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE user_id = ? ORDER BY id"
	return r.list(ctx, q, userID)
}

func (r *FileRepo) list(ctx context.Context, q string, args ...any) ([]*UploadedFile, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*UploadedFile
	for rows.Next() {
		f := new(UploadedFile)
		if err := rows.Scan(&f.ID, &f.Filename, &f.Filepath, &f.UploadDate, &f.UserID); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes an uploaded file record by id.  Returns ErrFileNotFound
// when the id is unknown.
func (r *FileRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM uploaded_files WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFileNotFound
	}
	return nil
}

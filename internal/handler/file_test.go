package handler

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/movie-rating-service/internal/repository"
)

var fileCols = []string{"id", "filename", "filepath", "upload_date", "user_id"}

func newFileHandler(t *testing.T) (*FileHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := testConfig()
	cfg.UploadDir = t.TempDir()
	return NewFileHandler(cfg, repository.NewFileRepo(db)), mock
}

// multipartUpload builds an authenticated multipart request carrying one
// "file" part with the given name and content.
func multipartUpload(t *testing.T, filename, content string, userID uint64) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", userID)
	return c, rec
}

func TestUploadSuccess(t *testing.T) {
	h, mock := newFileHandler(t)

	wantPath := filepath.Join(h.Cfg.UploadDir, "notes.txt")
	mock.ExpectExec("INSERT INTO uploaded_files").
		WithArgs("notes.txt", wantPath, uint64(1)).
		WillReturnResult(sqlmock.NewResult(3, 1))

	c, rec := multipartUpload(t, "notes.txt", "hello", 1)
	require.NoError(t, h.Upload(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "File notes.txt uploaded successfully")

	data, err := os.ReadFile(wantPath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}

func TestUploadSanitizesFilename(t *testing.T) {
	h, mock := newFileHandler(t)

	wantPath := filepath.Join(h.Cfg.UploadDir, "etc_notes.txt")
	mock.ExpectExec("INSERT INTO uploaded_files").
		WithArgs("etc_notes.txt", wantPath, uint64(1)).
		WillReturnResult(sqlmock.NewResult(4, 1))

	c, rec := multipartUpload(t, "../../etc/notes.txt", "x", 1)
	require.NoError(t, h.Upload(c))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.FileExists(t, wantPath)
}

func TestUploadDisallowedExtension(t *testing.T) {
	h, mock := newFileHandler(t)

	c, rec := multipartUpload(t, "payload.exe", "MZ", 1)
	require.NoError(t, h.Upload(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Allowed file types are: pdf, png, txt")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploadMissingFilePart(t *testing.T) {
	h, _ := newFileHandler(t)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	require.NoError(t, h.Upload(c))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "No file part in the request")
}

// fileContext builds an authenticated request against /files/:id.
func fileContext(t *testing.T, method, id string, userID uint64, isAdmin bool) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/files/:id")
	c.SetParamNames("id")
	c.SetParamValues(id)
	c.Set("user_id", userID)
	c.Set("is_admin", isAdmin)
	return c, rec
}

func TestDownloadOwner(t *testing.T) {
	h, mock := newFileHandler(t)

	path := filepath.Join(h.Cfg.UploadDir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	mock.ExpectQuery("SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE id =").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow(3, "notes.txt", path, time.Now(), 1))

	c, rec := fileContext(t, http.MethodGet, "3", 1, false)
	require.NoError(t, h.Download(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Contains(t, rec.Header().Get(echo.HeaderContentDisposition), "notes.txt")
}

func TestDownloadForbiddenForNonOwner(t *testing.T) {
	h, mock := newFileHandler(t)

	mock.ExpectQuery("SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE id =").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow(3, "notes.txt", "uploads/notes.txt", time.Now(), 1))

	c, rec := fileContext(t, http.MethodGet, "3", 2, false)
	require.NoError(t, h.Download(c))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Access denied")
}

func TestDownloadAdminBypassesOwnership(t *testing.T) {
	h, mock := newFileHandler(t)

	path := filepath.Join(h.Cfg.UploadDir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	mock.ExpectQuery("SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE id =").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow(3, "notes.txt", path, time.Now(), 1))

	c, rec := fileContext(t, http.MethodGet, "3", 2, true)
	require.NoError(t, h.Download(c))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDownloadNotFound(t *testing.T) {
	h, mock := newFileHandler(t)

	mock.ExpectQuery("SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE id =").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows(fileCols))

	c, rec := fileContext(t, http.MethodGet, "99", 1, false)
	require.NoError(t, h.Download(c))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "File not found")
}

func TestDeleteRemovesBytesAndRecord(t *testing.T) {
	h, mock := newFileHandler(t)

	path := filepath.Join(h.Cfg.UploadDir, "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	mock.ExpectQuery("SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE id =").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow(3, "notes.txt", path, time.Now(), 1))
	mock.ExpectExec("DELETE FROM uploaded_files WHERE id =").
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := fileContext(t, http.MethodDelete, "3", 1, false)
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "File deleted successfully")
	assert.NoFileExists(t, path)
}

func TestDeleteSucceedsWhenBytesAlreadyGone(t *testing.T) {
	h, mock := newFileHandler(t)

	// The stored path never existed; the failed os.Remove is logged and the
	// record is still deleted.
	mock.ExpectQuery("SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE id =").
		WithArgs(uint64(3)).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow(3, "gone.txt", filepath.Join(h.Cfg.UploadDir, "gone.txt"), time.Now(), 1))
	mock.ExpectExec("DELETE FROM uploaded_files WHERE id =").
		WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := fileContext(t, http.MethodDelete, "3", 1, false)
	require.NoError(t, h.Delete(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "File deleted successfully")
}

func TestListOwnFilesOmitsUserID(t *testing.T) {
	h, mock := newFileHandler(t)

	mock.ExpectQuery("SELECT id, filename, filepath, upload_date, user_id FROM uploaded_files WHERE user_id =").
		WithArgs(uint64(1)).
		WillReturnRows(sqlmock.NewRows(fileCols).AddRow(3, "a.txt", "uploads/a.txt", time.Now(), 1))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/users/me/files", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", uint64(1))
	require.NoError(t, h.ListOwnFiles(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"filename":"a.txt"`)
	assert.NotContains(t, rec.Body.String(), "user_id")
	assert.NotContains(t, rec.Body.String(), "filepath")
}

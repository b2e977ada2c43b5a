package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/movie-rating-service/internal/config"
	"github.com/iliyamo/movie-rating-service/internal/repository"
	"github.com/iliyamo/movie-rating-service/internal/utils"
)

// FileHandler bundles dependencies for the upload/download endpoints.
type FileHandler struct {
	Cfg   config.Config
	Files *repository.FileRepo
}

func NewFileHandler(cfg config.Config, f *repository.FileRepo) *FileHandler {
	return &FileHandler{Cfg: cfg, Files: f}
}

type adminFilePart struct {
	ID         uint64    `json:"id"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
	UserID     uint64    `json:"user_id"`
}

type ownFilePart struct {
	ID         uint64    `json:"id"`
	Filename   string    `json:"filename"`
	UploadDate time.Time `json:"upload_date"`
}

// Upload stores the multipart "file" part under the configured upload
// directory and records it as owned by the caller.  The client name is
// sanitized before use as the on-disk name; colliding names overwrite the
// previous bytes (documented limitation, no per-user namespacing).
func (h *FileHandler) Upload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No file part in the request"})
	}
	if fh.Filename == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "No file selected for uploading"})
	}

	name := sanitizeAndCheck(fh.Filename, h.Cfg.AllowedExtensions)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": fmt.Sprintf("Allowed file types are: %s", extensionList(h.Cfg.AllowedExtensions)),
		})
	}

	src, err := fh.Open()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not read upload"})
	}
	defer src.Close()

	path := filepath.Join(h.Cfg.UploadDir, name)
	dst, err := os.Create(path)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not store file"})
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not store file"})
	}

	userID := c.Get("user_id").(uint64)
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if _, err := h.Files.Create(ctx, name, path, userID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not record file"})
	}

	return c.JSON(http.StatusCreated, echo.Map{"message": fmt.Sprintf("File %s uploaded successfully", name)})
}

// ListAllFiles returns every uploaded file record.  Admin only.
func (h *FileHandler) ListAllFiles(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	files, err := h.Files.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	out := make([]adminFilePart, 0, len(files))
	for _, f := range files {
		out = append(out, adminFilePart{ID: f.ID, Filename: f.Filename, UploadDate: f.UploadDate, UserID: f.UserID})
	}
	return c.JSON(http.StatusOK, echo.Map{"files": out})
}

// ListOwnFiles returns the caller's uploaded file records.
func (h *FileHandler) ListOwnFiles(c echo.Context) error {
	userID := c.Get("user_id").(uint64)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	files, err := h.Files.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Query failed"})
	}
	out := make([]ownFilePart, 0, len(files))
	for _, f := range files {
		out = append(out, ownFilePart{ID: f.ID, Filename: f.Filename, UploadDate: f.UploadDate})
	}
	return c.JSON(http.StatusOK, echo.Map{"files": out})
}

// Download streams the stored bytes as an attachment.  Only the owner or an
// admin may fetch a file.
func (h *FileHandler) Download(c echo.Context) error {
	f, status, errResp := h.loadAuthorized(c)
	if f == nil {
		return c.JSON(status, errResp)
	}
	return c.Attachment(f.Filepath, f.Filename)
}

// Delete removes the stored bytes and the database record.  A failed byte
// removal is logged and swallowed; the record is deleted and the caller
// still receives 200.
func (h *FileHandler) Delete(c echo.Context) error {
	f, status, errResp := h.loadAuthorized(c)
	if f == nil {
		return c.JSON(status, errResp)
	}

	if err := os.Remove(f.Filepath); err != nil {
		log.Warn().Err(err).Str("filepath", f.Filepath).Msg("file delete: could not remove stored bytes")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Files.Delete(ctx, f.ID); err != nil {
		if err == repository.ErrFileNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "File not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Could not delete file"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "File deleted successfully"})
}

// loadAuthorized fetches the file record for the :id parameter and applies
// the owner-or-admin rule shared by download and delete.  On failure it
// returns a nil record plus the status and body the caller should send.
func (h *FileHandler) loadAuthorized(c echo.Context) (*repository.UploadedFile, int, echo.Map) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, http.StatusBadRequest, echo.Map{"message": "Invalid file id"}
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	f, err := h.Files.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrFileNotFound {
			return nil, http.StatusNotFound, echo.Map{"message": "File not found"}
		}
		return nil, http.StatusInternalServerError, echo.Map{"message": "Query failed"}
	}

	userID := c.Get("user_id").(uint64)
	isAdmin, _ := c.Get("is_admin").(bool)
	if f.UserID != userID && !isAdmin {
		return nil, http.StatusForbidden, echo.Map{"message": "Access denied"}
	}
	return f, http.StatusOK, nil
}

// sanitizeAndCheck returns the sanitized storage name, or "" when the name
// is unusable or its extension is not in the allow-list.
func sanitizeAndCheck(name string, allowed map[string]bool) string {
	clean := utils.SanitizeFilename(name)
	if clean == "" {
		return ""
	}
	if !allowed[utils.FileExtension(clean)] {
		return ""
	}
	return clean
}

// extensionList renders the allow-list for error messages in stable order.
func extensionList(allowed map[string]bool) string {
	exts := make([]string, 0, len(allowed))
	for e := range allowed {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return strings.Join(exts, ", ")
}

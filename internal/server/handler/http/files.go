package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ndanilin/filebox/internal/middleware"
	"github.com/ndanilin/filebox/internal/models"
	"github.com/ndanilin/filebox/internal/sanitize"
	"github.com/ndanilin/filebox/internal/storage"
)

// FileStorage defines the upload-directory operations required by the file
// handlers.
type FileStorage interface {
	List() ([]models.StoredFile, error)
	Save(name string, content io.Reader) (int64, error)
	Open(name string) (io.ReadCloser, int64, error)
	Delete(name string) error
}

// FilesHandler handles HTTP requests for the shared upload area. Every
// authenticated account has equal access to all stored files.
type FilesHandler struct {
	Storage        FileStorage
	MaxUploadBytes int64
	Log            *zap.Logger
}

// List handles GET /api/files, returning all stored files.
func (h *FilesHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.Storage.List()
	if err != nil {
		h.Log.Error("list files failed", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files})
}

// Upload handles POST /api/files. The multipart field "file" carries the
// content; its client-supplied filename is sanitized before the write, and an
// existing file with the same resulting name is overwritten.
func (h *FilesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "no file selected", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if header.Filename == "" {
		http.Error(w, "no file selected", http.StatusBadRequest)
		return
	}

	name := sanitize.Name(header.Filename)
	size, err := h.Storage.Save(name, file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			http.Error(w, "file too large", http.StatusRequestEntityTooLarge)
			return
		}
		h.Log.Error("save file failed", zap.Error(err), zap.String("name", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	h.Log.Info("file uploaded",
		zap.String("name", name),
		zap.Int64("size", size),
		zap.Int64("account_id", middleware.GetAccountIDFromContext(r.Context())),
	)
	writeJSON(w, http.StatusCreated, map[string]any{"name": name, "size": size})
}

// Download handles GET /api/files/{name}, streaming the file as an
// attachment.
func (h *FilesHandler) Download(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	content, size, err := h.Storage.Open(name)
	if err != nil {
		h.writeStorageError(w, err, name)
		return
	}
	defer content.Close()

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
	if _, err := io.Copy(w, content); err != nil {
		// Headers are already out; nothing to send but a log line.
		h.Log.Error("download interrupted", zap.Error(err), zap.String("name", name))
	}
}

// Delete handles DELETE /api/files/{name}.
func (h *FilesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	if err := h.Storage.Delete(name); err != nil {
		h.writeStorageError(w, err, name)
		return
	}

	h.Log.Info("file deleted",
		zap.String("name", name),
		zap.Int64("account_id", middleware.GetAccountIDFromContext(r.Context())),
	)
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted", "name": name})
}

// writeStorageError maps storage errors to HTTP responses.
func (h *FilesHandler) writeStorageError(w http.ResponseWriter, err error, name string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		http.Error(w, "file not found", http.StatusNotFound)
	case errors.Is(err, storage.ErrInvalidName):
		http.Error(w, "invalid file name", http.StatusBadRequest)
	default:
		h.Log.Error("storage operation failed", zap.Error(err), zap.String("name", name))
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

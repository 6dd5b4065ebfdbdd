package http

import (
	"bytes"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/ndanilin/filebox/internal/models"
	"github.com/ndanilin/filebox/internal/storage"
)

// fakeFileStorage implements FileStorage for testing.
type fakeFileStorage struct {
	files     []models.StoredFile
	listErr   error
	saved     map[string]string
	saveErr   error
	content   string
	openErr   error
	deleted   []string
	deleteErr error
}

func (f *fakeFileStorage) List() ([]models.StoredFile, error) {
	return f.files, f.listErr
}

func (f *fakeFileStorage) Save(name string, content io.Reader) (int64, error) {
	if f.saveErr != nil {
		return 0, f.saveErr
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return 0, err
	}
	if f.saved == nil {
		f.saved = make(map[string]string)
	}
	f.saved[name] = string(data)
	return int64(len(data)), nil
}

func (f *fakeFileStorage) Open(name string) (io.ReadCloser, int64, error) {
	if f.openErr != nil {
		return nil, 0, f.openErr
	}
	return io.NopCloser(strings.NewReader(f.content)), int64(len(f.content)), nil
}

func (f *fakeFileStorage) Delete(name string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, name)
	return nil
}

func filesRouter(store FileStorage) http.Handler {
	h := &FilesHandler{Storage: store, MaxUploadBytes: 1 << 20, Log: zap.NewNop()}
	r := chi.NewRouter()
	r.Get("/api/files", h.List)
	r.Post("/api/files", h.Upload)
	r.Get("/api/files/{name}", h.Download)
	r.Delete("/api/files/{name}", h.Delete)
	return r
}

func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestFilesHandler_List(t *testing.T) {
	store := &fakeFileStorage{files: []models.StoredFile{
		{Name: "a.txt", Size: 3},
		{Name: "b.pdf", Size: 10},
	}}
	router := filesRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/files", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"a.txt"`) || !strings.Contains(body, `"b.pdf"`) {
		t.Errorf("body %q missing file names", body)
	}
}

func TestFilesHandler_List_Error(t *testing.T) {
	router := filesRouter(&fakeFileStorage{listErr: errors.New("disk gone")})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/files", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", rec.Code)
	}
}

func TestFilesHandler_Upload_SanitizesName(t *testing.T) {
	store := &fakeFileStorage{}
	router := filesRouter(store)

	body, contentType := multipartBody(t, "file", "Привет мир.txt", "hello")
	req := httptest.NewRequest("POST", "/api/files", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201; body %q", rec.Code, rec.Body.String())
	}
	if got, ok := store.saved["Privet_mir.txt"]; !ok || got != "hello" {
		t.Errorf("saved = %v; want Privet_mir.txt -> hello", store.saved)
	}
	if !strings.Contains(rec.Body.String(), `"Privet_mir.txt"`) {
		t.Errorf("body %q missing sanitized name", rec.Body.String())
	}
}

func TestFilesHandler_Upload_TraversalNameNeutralized(t *testing.T) {
	store := &fakeFileStorage{}
	router := filesRouter(store)

	body, contentType := multipartBody(t, "file", "../../etc/passwd", "boom")
	req := httptest.NewRequest("POST", "/api/files", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; want 201", rec.Code)
	}
	if _, ok := store.saved["passwd"]; !ok {
		t.Errorf("saved = %v; want traversal reduced to passwd", store.saved)
	}
}

func TestFilesHandler_Upload_MissingFile(t *testing.T) {
	router := filesRouter(&fakeFileStorage{})

	body, contentType := multipartBody(t, "wrong_field", "a.txt", "x")
	req := httptest.NewRequest("POST", "/api/files", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}

func TestFilesHandler_Download(t *testing.T) {
	store := &fakeFileStorage{content: "file content"}
	router := filesRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/files/report.pdf", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if rec.Body.String() != "file content" {
		t.Errorf("body = %q; want %q", rec.Body.String(), "file content")
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "report.pdf") {
		t.Errorf("Content-Disposition = %q; want the filename", cd)
	}
}

func TestFilesHandler_Download_NotFound(t *testing.T) {
	router := filesRouter(&fakeFileStorage{openErr: storage.ErrNotFound})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("GET", "/api/files/missing.txt", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func TestFilesHandler_Delete(t *testing.T) {
	store := &fakeFileStorage{}
	router := filesRouter(store)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/files/old.txt", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	if len(store.deleted) != 1 || store.deleted[0] != "old.txt" {
		t.Errorf("deleted = %v; want [old.txt]", store.deleted)
	}
}

func TestFilesHandler_Delete_NotFound(t *testing.T) {
	router := filesRouter(&fakeFileStorage{deleteErr: storage.ErrNotFound})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/files/ghost.txt", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d; want 404", rec.Code)
	}
}

func TestFilesHandler_Delete_InvalidName(t *testing.T) {
	router := filesRouter(&fakeFileStorage{deleteErr: storage.ErrInvalidName})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest("DELETE", "/api/files/bad", nil))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", rec.Code)
	}
}

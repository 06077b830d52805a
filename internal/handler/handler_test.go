package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lutyjj/photkey-server/internal/config"
	"github.com/lutyjj/photkey-server/internal/domain"
)

type fakeService struct {
	photo   *domain.Photo
	photos  []domain.Photo
	src     []byte
	exists  bool
	saveErr error
	getErr  error
	listErr error
	srcErr  error
}

func (f *fakeService) SavePhoto(ctx context.Context, data []byte, filename string) (*domain.Photo, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	return f.photo, nil
}

func (f *fakeService) Photos(ctx context.Context) ([]domain.Photo, error) {
	return f.photos, f.listErr
}

func (f *fakeService) PhotoByID(ctx context.Context, id int64) (*domain.Photo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.photo, nil
}

func (f *fakeService) PhotoByName(ctx context.Context, name string) (*domain.Photo, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.photo, nil
}

func (f *fakeService) ExistsByName(ctx context.Context, name string) (bool, error) {
	return f.exists, nil
}

func (f *fakeService) PhotosByPlace(ctx context.Context, place string) ([]domain.Photo, error) {
	return f.photos, f.listErr
}

func (f *fakeService) PhotosByDate(ctx context.Context, date string) ([]domain.Photo, error) {
	return f.photos, f.listErr
}

func (f *fakeService) PhotoSrcByID(ctx context.Context, id int64) ([]byte, error) {
	return f.src, f.srcErr
}

func (f *fakeService) PhotoSrcByName(ctx context.Context, name string) ([]byte, error) {
	return f.src, f.srcErr
}

func newTestRouter(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		App: config.AppConfig{
			MaxUploadSize:  1024 * 1024,
			AllowedFormats: []string{".jpg", ".jpeg", ".png", ".tiff"},
		},
	}
	h := NewHandler(svc, cfg, zap.NewNop())

	router := gin.New()
	router.POST("/api/photos", h.SavePhoto)
	router.GET("/api/photos", h.GetPhotos)
	router.GET("/api/photos/search", h.ExistsByName)
	router.GET("/api/photos/:name", h.GetSrcByName)
	return router
}

func multipartUpload(t *testing.T, filename string, data []byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("src", filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/photos", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestSavePhoto_ReturnsPhotoWithoutLocalPath(t *testing.T) {
	svc := &fakeService{photo: &domain.Photo{
		ID:        7,
		Date:      time.Date(2024, 3, 10, 12, 30, 45, 0, time.UTC),
		Name:      "shot.jpg",
		Place:     "Paris, France",
		LocalPath: "/uploads/2024-03-10",
	}}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartUpload(t, "shot.jpg", []byte("fake-jpeg")))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var response map[string]interface{}
	if err := json.Unmarshal(rr.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["name"] != "shot.jpg" {
		t.Fatalf("unexpected name: %v", response["name"])
	}
	if response["place"] != "Paris, France" {
		t.Fatalf("unexpected place: %v", response["place"])
	}
	// Путь хранения — внутренняя деталь.
	if _, leaked := response["local_path"]; leaked {
		t.Fatal("local path must not be exposed")
	}
	if _, leaked := response["LocalPath"]; leaked {
		t.Fatal("local path must not be exposed")
	}
}

func TestSavePhoto_MissingFileIsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/photos", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestSavePhoto_DisallowedFormatIsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartUpload(t, "notes.txt", []byte("text")))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestSavePhoto_GeoUnavailableIsServiceUnavailable(t *testing.T) {
	router := newTestRouter(&fakeService{saveErr: domain.ErrGeoUnavailable})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartUpload(t, "gps.jpg", []byte("fake")))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", rr.Code)
	}
}

func TestSavePhoto_DuplicateNameIsNotAcceptable(t *testing.T) {
	router := newTestRouter(&fakeService{saveErr: domain.ErrDuplicateName})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartUpload(t, "dup.jpg", []byte("fake")))

	if rr.Code != http.StatusNotAcceptable {
		t.Fatalf("expected status 406, got %d", rr.Code)
	}
}

func TestSavePhoto_UnreadableImageIsInternalError(t *testing.T) {
	router := newTestRouter(&fakeService{saveErr: domain.ErrUnreadableImage})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, multipartUpload(t, "corrupt.jpg", []byte("fake")))

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rr.Code)
	}
}

func TestGetPhotos_ListsAll(t *testing.T) {
	svc := &fakeService{photos: []domain.Photo{
		{ID: 2, Name: "new.jpg"},
		{ID: 1, Name: "old.jpg"},
	}}
	router := newTestRouter(svc)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var photos []domain.Photo
	if err := json.Unmarshal(rr.Body.Bytes(), &photos); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(photos) != 2 || photos[0].Name != "new.jpg" {
		t.Fatalf("unexpected photos: %+v", photos)
	}
}

func TestGetPhotos_ByIDNotFound(t *testing.T) {
	router := newTestRouter(&fakeService{getErr: domain.ErrPhotoNotFound})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos?id=42", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestGetPhotos_InvalidIDIsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos?id=abc", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestGetPhotos_BadDateFilterIsBadRequest(t *testing.T) {
	router := newTestRouter(&fakeService{listErr: domain.ErrBadDate})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos?date=10.03.2024", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestExistsByName_ReportsExistence(t *testing.T) {
	router := newTestRouter(&fakeService{exists: true})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos/search?name=shot.jpg", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Body.String() != "true" {
		t.Fatalf("expected true, got %s", rr.Body.String())
	}
}

func TestExistsByName_RequiresName(t *testing.T) {
	router := newTestRouter(&fakeService{})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos/search", nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestGetSrcByName_ServesBytesWithContentType(t *testing.T) {
	data := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	router := newTestRouter(&fakeService{src: data})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos/shot.jpg", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "image/jpeg" {
		t.Fatalf("unexpected content type: %s", rr.Header().Get("Content-Type"))
	}
	if !bytes.Equal(rr.Body.Bytes(), data) {
		t.Fatal("served bytes differ from stored bytes")
	}
}

func TestGetSrcByName_PNGContentType(t *testing.T) {
	router := newTestRouter(&fakeService{src: []byte("png-bytes")})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos/shot.png", nil))

	if rr.Header().Get("Content-Type") != "image/png" {
		t.Fatalf("unexpected content type: %s", rr.Header().Get("Content-Type"))
	}
}

func TestGetSrcByName_MissingRecordIsNotFound(t *testing.T) {
	router := newTestRouter(&fakeService{srcErr: domain.ErrPhotoNotFound})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos/absent.jpg", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestGetSrcByName_MissingContentIsNotFound(t *testing.T) {
	router := newTestRouter(&fakeService{srcErr: domain.ErrContentNotFound})

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/photos/ghost.jpg", nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

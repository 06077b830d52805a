package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/lutyjj/photkey-server/internal/config"
	"github.com/lutyjj/photkey-server/internal/domain"
	"github.com/lutyjj/photkey-server/internal/service"
)

type Handler struct {
	service service.PhotoService
	cfg     *config.Config
	log     *zap.Logger
}

func NewHandler(service service.PhotoService, cfg *config.Config, log *zap.Logger) *Handler {
	return &Handler{
		service: service,
		cfg:     cfg,
		log:     log,
	}
}

// SavePhoto ingests the multipart "src" field as a new photo.
func (h *Handler) SavePhoto(c *gin.Context) {
	file, err := c.FormFile("src")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No photo file provided"})
		return
	}

	if file.Size > h.cfg.App.MaxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File too large"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !h.allowedFormat(ext) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file format"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process file"})
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		h.log.Error("Failed to read uploaded file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read file"})
		return
	}

	photo, err := h.service.SavePhoto(c.Request.Context(), data, file.Filename)
	if err != nil {
		h.log.Error("Failed to save photo",
			zap.String("name", file.Filename),
			zap.Error(err))

		switch {
		case errors.Is(err, domain.ErrGeoUnavailable):
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Nominatim service is unavailable"})
		case errors.Is(err, domain.ErrDuplicateName):
			c.JSON(http.StatusNotAcceptable, gin.H{"error": "Error while saving photo to database"})
		case errors.Is(err, domain.ErrUnreadableImage):
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing photo"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error while saving photo to local storage"})
		}
		return
	}

	h.log.Info("Photo saved", zap.String("name", photo.Name))
	c.JSON(http.StatusOK, photo)
}

// GetPhotos dispatches on query parameters: ?id, ?location and ?date each
// select one filter; without parameters all photos are returned, most
// recent capture date first.
func (h *Handler) GetPhotos(c *gin.Context) {
	if idParam, ok := c.GetQuery("id"); ok {
		h.getPhotoByID(c, idParam)
		return
	}

	if location, ok := c.GetQuery("location"); ok {
		photos, err := h.service.PhotosByPlace(c.Request.Context(), location)
		if err != nil {
			h.log.Error("Failed to list photos by location", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list photos"})
			return
		}
		h.log.Info("Photos found",
			zap.String("location", location),
			zap.Int("count", len(photos)))
		c.JSON(http.StatusOK, photos)
		return
	}

	if date, ok := c.GetQuery("date"); ok {
		photos, err := h.service.PhotosByDate(c.Request.Context(), date)
		if err != nil {
			if errors.Is(err, domain.ErrBadDate) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			h.log.Error("Failed to list photos by date", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list photos"})
			return
		}
		h.log.Info("Photos found",
			zap.String("date", date),
			zap.Int("count", len(photos)))
		c.JSON(http.StatusOK, photos)
		return
	}

	photos, err := h.service.Photos(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list photos", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list photos"})
		return
	}
	h.log.Info("Photos found", zap.Int("count", len(photos)))
	c.JSON(http.StatusOK, photos)
}

func (h *Handler) getPhotoByID(c *gin.Context, idParam string) {
	id, err := strconv.ParseInt(idParam, 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid photo id"})
		return
	}

	photo, err := h.service.PhotoByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found."})
			return
		}
		h.log.Error("Failed to get photo", zap.Int64("id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get photo"})
		return
	}

	c.JSON(http.StatusOK, photo)
}

// ExistsByName reports whether a photo with the given name exists.
func (h *Handler) ExistsByName(c *gin.Context) {
	name, ok := c.GetQuery("name")
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name is required"})
		return
	}

	exists, err := h.service.ExistsByName(c.Request.Context(), name)
	if err != nil {
		h.log.Error("Failed to check photo existence",
			zap.String("name", name),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check photo"})
		return
	}

	h.log.Info("Photo existence checked",
		zap.String("name", name),
		zap.Bool("exists", exists))
	c.JSON(http.StatusOK, exists)
}

// GetSrcByName serves the stored photo bytes.
func (h *Handler) GetSrcByName(c *gin.Context) {
	name := c.Param("name")

	data, err := h.service.PhotoSrcByName(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, domain.ErrPhotoNotFound) || errors.Is(err, domain.ErrContentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Photo not found."})
			return
		}
		h.log.Error("Failed to read photo content",
			zap.String("name", name),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read photo"})
		return
	}

	c.Data(http.StatusOK, contentTypeFor(name), data)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) allowedFormat(ext string) bool {
	for _, allowed := range h.cfg.App.AllowedFormats {
		if ext == allowed {
			return true
		}
	}
	return false
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png"
	case ".tiff":
		return "image/tiff"
	default:
		return "image/jpeg"
	}
}

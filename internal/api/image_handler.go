package api

import (
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// ImageHandler handles image upload, serving and deletion endpoints
type ImageHandler struct {
	services *service.Services
	cfg      *config.Config
	log      zerolog.Logger
}

// NewImageHandler creates a new ImageHandler
func NewImageHandler(services *service.Services, cfg *config.Config, log zerolog.Logger) *ImageHandler {
	return &ImageHandler{
		services: services,
		cfg:      cfg,
		log:      log.With().Str("handler", "image").Logger(),
	}
}

func (h *ImageHandler) storeOne(c *gin.Context, header *multipart.FileHeader) (string, error) {
	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	return h.services.Image.Upload(c.Request.Context(), file, header.Size, header.Filename, contentType)
}

// Upload handles POST /upload with a single "image" form file
func (h *ImageHandler) Upload(c *gin.Context) {
	// cap the request body at the ceiling plus multipart overhead
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.cfg.Storage.MaxUploadSize+1024*1024)

	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	ref, err := h.storeOne(c, header)
	if err != nil {
		writeError(c, h.log, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"imageUrl": "/images/" + ref})
}

// UploadMultiple handles POST /upload-multiple with an "images" form field;
// references are returned in input order
func (h *ImageHandler) UploadMultiple(c *gin.Context) {
	maxTotal := h.cfg.Storage.MaxUploadSize*10 + 1024*1024
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxTotal)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form is required"})
		return
	}

	headers := form.File["images"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "at least one image file is required"})
		return
	}

	urls := make([]string, 0, len(headers))
	for _, header := range headers {
		ref, err := h.storeOne(c, header)
		if err != nil {
			writeError(c, h.log, err)
			return
		}
		urls = append(urls, "/images/"+ref)
	}

	c.JSON(http.StatusCreated, gin.H{"imageUrls": urls})
}

// Serve handles GET /images/:ref with a streaming read. References are
// immutable once created, so the response is cacheable indefinitely.
func (h *ImageHandler) Serve(c *gin.Context) {
	obj, err := h.services.Image.Open(c.Request.Context(), c.Param("ref"))
	if err != nil {
		writeError(c, h.log, err)
		return
	}
	defer obj.Reader.Close()

	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Reader, nil)
}

// Delete handles DELETE /upload/:ref. This caller-invoked path removes the
// image unconditionally; only the background sweep is reference-checked.
func (h *ImageHandler) Delete(c *gin.Context) {
	ref := c.Param("ref")
	if err := h.services.Image.Delete(c.Request.Context(), ref); err != nil {
		writeError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": ref})
}

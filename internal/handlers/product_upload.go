package handlers

import (
	"errors"
	"log"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"widgetstore/internal/services"
)

const imageFormField = "file"

var errNoFile = errors.New("No file uploaded")

// parseImageUpload reads the multipart image field. Type and size limits are
// enforced by the product service.
func parseImageUpload(c *gin.Context) (*multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, services.MaxImageSize+(1<<20))
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		log.Println("[UPLOAD] parse error:", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errors.New("File size exceeds 50MB limit")
		}
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, errNoFile
		}
		return nil, err
	}

	file, err := c.FormFile(imageFormField)
	if err != nil {
		return nil, errNoFile
	}
	return file, nil
}

func respondMultipartError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/cardrip/cardrip-api/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Image types accepted for pack art and card scans.
var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

const maxUploadBytes = 5 << 20 // 5 MiB

// UploadImage handles POST /api/admin/upload
// It stores pack art and card scans under the local uploads directory and
// returns the public URL to use in product or card image fields.
func (h *Handlers) UploadImage(c *gin.Context) {
	// 1. Get the file from the request
	file, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Validation("No file uploaded", err))
		return
	}
	if file.Size > maxUploadBytes {
		respondError(c, apperrors.Validation("File is larger than 5 MB", nil))
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		respondError(c, apperrors.Validation("Only jpg, png and webp images are allowed", nil))
		return
	}

	// 2. Make sure the uploads directory exists
	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		respondError(c, apperrors.Internal("Failed to prepare upload directory", err))
		return
	}

	// 3. Generate a safe unique filename (uuid + extension)
	newFilename := fmt.Sprintf("%s%s", uuid.New().String(), ext)
	savePath := filepath.Join(h.Cfg.UploadDir, newFilename)

	// 4. Save the file
	if err := c.SaveUploadedFile(file, savePath); err != nil {
		respondError(c, apperrors.Internal("Failed to save file", err))
		return
	}

	// 5. Return the public URL
	c.JSON(http.StatusOK, gin.H{
		"url": fmt.Sprintf("%s/uploads/%s", h.Cfg.PublicBaseURL, newFilename),
	})
}

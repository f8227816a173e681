package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// maxUploadSize caps a single uploaded file at 50 MB.
const maxUploadSize = 50 << 20

// Uploader stores uploaded images under a public directory and hands back
// the URL the canvas references them by. The sync path never sees a failed
// upload; errors are reported synchronously to the caller.
type Uploader struct {
	Dir string // filesystem directory, served under /uploads
}

// HandleUpload accepts a single multipart "file" field.
// POST /upload
func (u *Uploader) HandleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file exceeds 50MB limit"})
		return
	}

	name := sanitizeFilename(file.Filename)
	name = fmt.Sprintf("%s-%s", uuid.NewString()[:8], name)
	dst := filepath.Join(u.Dir, name)

	if err := c.SaveUploadedFile(file, dst); err != nil {
		Log.Errorf("upload save %s: %v", dst, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store file"})
		return
	}

	Log.Infof("upload stored: %s (%d bytes)", name, file.Size)
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"url":      "/uploads/" + name,
		"filename": name,
	})
}

// sanitizeFilename strips path components and characters that do not belong
// in a served filename.
func sanitizeFilename(name string) string {
	name = filepath.Base(name)
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." {
		name = "upload"
	}
	return name
}

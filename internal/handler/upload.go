package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// UploadHandler stores report attachments on local disk under a
// uuid-prefixed name, mirroring nothing back but the metadata the
// client needs to reference the file later.
type UploadHandler struct {
	Dir string
}

func NewUploadHandler(dir string) *UploadHandler { return &UploadHandler{Dir: dir} }

// unsafeFileChars matches everything we refuse to keep from a client
// supplied filename.
var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)

type uploadedFile struct {
	FileName string `json:"file_name"`
	FilePath string `json:"file_path"`
	FileType string `json:"file_type"`
	FileSize int64  `json:"file_size"`
}

// Upload accepts a multipart form with one or more "files" parts.
// Authenticated users only (enforced by the router).
func (h *UploadHandler) Upload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "multipart form required"})
	}
	files := form.File["files"]
	if len(files) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no files provided"})
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}

	var out []uploadedFile
	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return fmt.Errorf("open upload: %w", err)
		}

		safeName := unsafeFileChars.ReplaceAllString(filepath.Base(fh.Filename), "_")
		uniqueName := uuid.NewString() + "-" + safeName
		dstPath := filepath.Join(h.Dir, uniqueName)

		dst, err := os.Create(dstPath)
		if err != nil {
			src.Close()
			return fmt.Errorf("create upload file: %w", err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			dst.Close()
			src.Close()
			return fmt.Errorf("write upload file: %w", err)
		}
		dst.Close()
		src.Close()

		out = append(out, uploadedFile{
			FileName: fh.Filename,
			FilePath: "/uploads/" + uniqueName,
			FileType: fh.Header.Get("Content-Type"),
			FileSize: fh.Size,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"files": out})
}

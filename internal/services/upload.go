package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"newsreader/internal/config"
)

// MaxImageSize caps profile image uploads at 5 MB.
const MaxImageSize = 5 << 20

// UploadResult is returned after a profile image is stored.
type UploadResult struct {
	URL string `json:"url"` // static-served path persisted on the user
}

// SaveProfileImage validates and stores an uploaded profile image under
// the static-served upload directory. Files are named
// <userID>-<unix>.<ext> so re-uploads never collide.
func SaveProfileImage(userID uint, file multipart.File, header *multipart.FileHeader) (*UploadResult, error) {
	if header.Size > MaxImageSize {
		return nil, fmt.Errorf("image exceeds the %d MB limit", MaxImageSize>>20)
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, fmt.Errorf("only image files are allowed")
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		switch contentType {
		case "image/jpeg":
			ext = ".jpg"
		case "image/png":
			ext = ".png"
		case "image/gif":
			ext = ".gif"
		case "image/webp":
			ext = ".webp"
		default:
			ext = ".jpg"
		}
	}

	dir := config.Get().UploadDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}

	filename := fmt.Sprintf("%d-%d%s", userID, time.Now().Unix(), ext)
	dst, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return nil, fmt.Errorf("writing file: %w", err)
	}

	return &UploadResult{URL: "/uploads/" + filename}, nil
}

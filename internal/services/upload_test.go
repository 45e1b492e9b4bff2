package services

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "uploads")
	if err != nil {
		panic(err)
	}
	os.Setenv("UPLOAD_DIR", dir)
	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// uploadedFile builds the multipart.File / header pair the handler layer
// hands to SaveProfileImage.
func uploadedFile(t *testing.T, filename, contentType string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	file, fileHeader, err := req.FormFile("image")
	require.NoError(t, err)
	return file, fileHeader
}

func TestSaveProfileImage(t *testing.T) {
	file, header := uploadedFile(t, "avatar.png", "image/png", []byte("fake image bytes"))
	defer file.Close()

	result, err := SaveProfileImage(7, file, header)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(result.URL, "/uploads/7-"))
	assert.True(t, strings.HasSuffix(result.URL, ".png"))

	// The file landed in the upload directory
	stored := filepath.Join(os.Getenv("UPLOAD_DIR"), filepath.Base(result.URL))
	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "fake image bytes", string(data))
}

func TestSaveProfileImageRejectsNonImage(t *testing.T) {
	file, header := uploadedFile(t, "notes.txt", "text/plain", []byte("hello"))
	defer file.Close()

	_, err := SaveProfileImage(7, file, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "image files")
}

func TestSaveProfileImageRejectsOversize(t *testing.T) {
	file, header := uploadedFile(t, "big.jpg", "image/jpeg", bytes.Repeat([]byte("x"), MaxImageSize+1))
	defer file.Close()

	_, err := SaveProfileImage(7, file, header)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")
}

func TestSaveProfileImageExtensionFallback(t *testing.T) {
	file, header := uploadedFile(t, "avatar", "image/webp", []byte("webp bytes"))
	defer file.Close()

	result, err := SaveProfileImage(9, file, header)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(result.URL, ".webp"))
}

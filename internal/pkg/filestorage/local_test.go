package filestorage

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(1<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSaveAndDelete(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/", WithAllowedExtensions(".mp4"))
	require.NoError(t, err)

	url, err := ls.SaveFileWithPath(fileHeader(t, "core.mp4", []byte("video")), "videos/12")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "http://localhost:8080/uploads/videos/12/"))

	path := ls.GetFullPath(url)
	assert.True(t, strings.HasPrefix(path, filepath.Join(dir, "videos", "12")))
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.NoError(t, ls.DeleteFile(url))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ls.DeleteFile(url), "deleting twice is not an error")
}

func TestSaveRejectsExtensionAndSize(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir(), "/uploads", WithAllowedExtensions(".mp4"), WithMaxBytes(3))
	require.NoError(t, err)

	_, err = ls.SaveFileWithPath(fileHeader(t, "a.exe", []byte("x")), "")
	assert.ErrorIs(t, err, ErrUnsupportedFileExt)

	_, err = ls.SaveFileWithPath(fileHeader(t, "a.mp4", []byte("toolong")), "")
	assert.ErrorIs(t, err, ErrFileTooLarge)

	_, err = ls.SaveFileWithPath(nil, "")
	assert.ErrorIs(t, err, ErrNoFile)
}

func TestGetFullPathStaysInsideBase(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	p := ls.GetFullPath("/uploads/../../etc/passwd")
	assert.True(t, strings.HasPrefix(p, dir))
}

package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsImageFile(t *testing.T) {
	assert.True(t, IsImageFile("cat.JPG"))
	assert.True(t, IsImageFile("dir/scan.tiff"))
	assert.True(t, IsImageFile("photo.webp"))
	assert.False(t, IsImageFile("notes.txt"))
	assert.False(t, IsImageFile("jpg"))
}

func TestIsURL(t *testing.T) {
	assert.True(t, IsURL("https://example.com/a.png"))
	assert.True(t, IsURL("http://localhost/a"))
	assert.False(t, IsURL("ftp://example.com/a.png"))
	assert.False(t, IsURL("/tmp/a.png"))
}

func TestListImageFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "nested"), 0o755))
	for _, name := range []string{"b.png", "a.jpg", "readme.md", "nested/c.webp"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
	}

	files, err := ListImageFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.jpg"),
		filepath.Join(dir, "b.png"),
		filepath.Join(dir, "nested", "c.webp"),
	}, files)

	_, err = ListImageFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestDirExists(t *testing.T) {
	dir := t.TempDir()
	assert.True(t, DirExists(dir))

	file := filepath.Join(dir, "f.png")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	assert.False(t, DirExists(file))
	assert.False(t, DirExists(filepath.Join(dir, "nope")))
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "photo.jpg", SanitizeFilename("../../etc/photo.jpg"))
	assert.Equal(t, "photo.jpg", SanitizeFilename(`C:\Users\me\photo.jpg`))
	assert.Equal(t, "a_b_.png", SanitizeFilename("a\nb?.png"))
	assert.Equal(t, "صورة.png", SanitizeFilename(" صورة.png "))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.5 KB", FormatFileSize(1536))
	assert.Equal(t, "2.0 MB", FormatFileSize(2*1024*1024))
}

package uploader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func writeTempFile(t *testing.T, name string, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestInspectFileUsesExtension(t *testing.T) {
	path := writeTempFile(t, "photo.JPG", []byte("not really a jpeg"))

	file, err := InspectFile(path)

	require.NoError(t, err)
	assert.Equal(t, "photo.JPG", file.Name)
	assert.Equal(t, "image/jpeg", file.ContentType)
	assert.Equal(t, int64(17), file.Size)
}

func TestInspectFileSniffsContentWithoutExtension(t *testing.T) {
	path := writeTempFile(t, "upload", pngHeader)

	file, err := InspectFile(path)

	require.NoError(t, err)
	assert.Equal(t, "image/png", file.ContentType)
}

func TestInspectFileRejectsDirectories(t *testing.T) {
	_, err := InspectFile(t.TempDir())

	assert.ErrorIs(t, err, ErrNotAFile)
}

func TestValidateFilesListsEveryProblem(t *testing.T) {
	files := []File{
		{Name: "ok.png", ContentType: "image/png", Size: 10},
		{Name: "doc.pdf", ContentType: "application/pdf", Size: 10},
		{Name: "huge.webp", ContentType: "image/webp", Size: MaxFileSize + 1},
	}

	err := ValidateFiles(files)

	var validationErr *FileValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, []string{
		"doc.pdf: Unsupported file type (application/pdf)",
		"huge.webp: File too large (max 32 MiB)",
	}, validationErr.Problems)
}

func TestValidateFilesAcceptsSupportedFiles(t *testing.T) {
	files := []File{
		{Name: "a.jpg", ContentType: "image/jpeg", Size: MaxFileSize},
		{Name: "b.avif", ContentType: "image/avif", Size: 1},
	}

	assert.NoError(t, ValidateFiles(files))
	assert.ErrorIs(t, ValidateFiles(nil), ErrNoFiles)
}

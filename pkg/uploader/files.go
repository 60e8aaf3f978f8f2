package uploader

import (
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
)

const MaxFileSize = 32 << 20

var SupportedTypes = []string{"image/jpeg", "image/jpg", "image/png", "image/webp", "image/avif"}

type File struct {
	Path        string
	Name        string
	ContentType string
	Size        int64
}

// InspectFile reads the metadata of a local file. The content type comes from the
// extension and falls back to sniffing the file content.
func InspectFile(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, err
	}

	if info.IsDir() {
		return File{}, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	contentType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if contentType == "" {
		detected, err := mimetype.DetectFile(path)
		if err != nil {
			return File{}, err
		}
		contentType = detected.String()
	}

	if semicolon := strings.IndexByte(contentType, ';'); semicolon >= 0 {
		contentType = contentType[:semicolon]
	}

	return File{
		Path:        path,
		Name:        filepath.Base(path),
		ContentType: contentType,
		Size:        info.Size(),
	}, nil
}

func IsSupportedType(contentType string) bool {
	for _, supported := range SupportedTypes {
		if supported == contentType {
			return true
		}
	}

	return false
}

// ValidateFiles rejects the whole batch when any file is unusable, listing every problem.
func ValidateFiles(files []File) error {
	if len(files) == 0 {
		return ErrNoFiles
	}

	var problems []string
	for _, file := range files {
		if !IsSupportedType(file.ContentType) {
			problems = append(problems, fmt.Sprintf("%s: Unsupported file type (%s)", file.Name, file.ContentType))
		}

		if file.Size > MaxFileSize {
			problems = append(problems, fmt.Sprintf("%s: File too large (max %s)", file.Name, humanize.IBytes(MaxFileSize)))
		}
	}

	if len(problems) > 0 {
		return &FileValidationError{Problems: problems}
	}

	return nil
}

type FileValidationError struct {
	Problems []string
}

func (e *FileValidationError) Error() string {
	return "some files were rejected:\n" + strings.Join(e.Problems, "\n")
}

var (
	ErrNoFiles  = errors.New("no files to process")
	ErrNotAFile = errors.New("path is a directory")
)

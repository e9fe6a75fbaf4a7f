package util

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffMimeType reads the first 512 bytes and checks the detected content
// type against the allowed prefixes.
func SniffMimeType(reader io.Reader, allowed []string) (string, error) {
	buffer := make([]byte, 512)
	n, err := reader.Read(buffer)
	if err != nil && err != io.EOF {
		return "", err
	}

	mimeType := http.DetectContentType(buffer[:n])
	for _, a := range allowed {
		if strings.HasPrefix(mimeType, a) {
			return mimeType, nil
		}
	}
	return mimeType, fmt.Errorf("%w: type %s", ErrInvalidFile, mimeType)
}

// HasAllowedExtension compares the file extension case-insensitively.
func HasAllowedExtension(filename string, allowed []string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		if ext == a {
			return true
		}
	}
	return false
}

package signature

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadBytes is the signature image size ceiling.
const MaxUploadBytes = 10 << 20

// DetectImage sniffs data and returns its MIME type. Non-images and files
// over MaxUploadBytes are rejected.
func DetectImage(data []byte) (string, error) {
	if len(data) == 0 {
		return "", ErrUploadMissing
	}
	if len(data) > MaxUploadBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrUploadTooLarge, len(data))
	}
	mt := mimetype.Detect(data)
	if !strings.HasPrefix(mt.String(), "image/") {
		return "", fmt.Errorf("%w: %s", ErrUploadNotImage, mt.String())
	}
	return mt.String(), nil
}

// extensionFor returns a filename extension for a sniffed MIME type.
func extensionFor(contentType string) string {
	if mt := mimetype.Lookup(contentType); mt != nil && mt.Extension() != "" {
		return mt.Extension()
	}
	return ".img"
}

package helpers

import (
	"errors"
	"io"

	"github.com/gabriel-vasile/mimetype"
)

// ErrUnsupportedImage is returned when the content is not an accepted image type.
var ErrUnsupportedImage = errors.New("unsupported image type")

var allowedImages = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// DetectImage sniffs r by content and returns its MIME type and canonical extension.
// r is rewound to the start before returning.
func DetectImage(r io.ReadSeeker) (contentType, ext string, err error) {
	mt, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", err
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", "", err
	}
	for m := mt; m != nil; m = m.Parent() {
		if e, ok := allowedImages[m.String()]; ok {
			return m.String(), e, nil
		}
	}
	return "", "", ErrUnsupportedImage
}

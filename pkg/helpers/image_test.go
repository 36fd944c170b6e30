package helpers_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/oksasatya/user-management-api/pkg/helpers"
)

// smallest valid PNG signature + IHDR header is enough for content sniffing
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R'}

func TestDetectImage(t *testing.T) {
	r := bytes.NewReader(append(pngHeader, make([]byte, 32)...))
	ct, ext, err := helpers.DetectImage(r)
	if err != nil {
		t.Fatalf("detect: %v", err)
	}
	if ct != "image/png" || ext != ".png" {
		t.Fatalf("got %s %s", ct, ext)
	}
	if pos, _ := r.Seek(0, io.SeekCurrent); pos != 0 {
		t.Fatalf("reader should be rewound, at %d", pos)
	}

	_, _, err = helpers.DetectImage(bytes.NewReader([]byte("#!/bin/sh\necho pwned\n")))
	if !errors.Is(err, helpers.ErrUnsupportedImage) {
		t.Fatalf("got %v, want ErrUnsupportedImage", err)
	}
}

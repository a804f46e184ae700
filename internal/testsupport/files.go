package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// Signatures recognised by MIME sniffing, padded into small fixtures.
var (
	PNGBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	JPEGBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00\x01\x01\x00\x00\x01\x00\x01\x00\x00")
	MP3Bytes  = []byte("ID3\x03\x00\x00\x00\x00\x00\x00narration")
	VTTBytes  = []byte("WEBVTT\n\n00:00.000 --> 00:01.000\nHello\n")
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(t testing.TB, path string, data []byte) string {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

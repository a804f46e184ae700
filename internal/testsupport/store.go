package testsupport

import (
	"testing"

	"coursepack/internal/config"
	"coursepack/internal/course"
	"coursepack/internal/mediastore"
)

// MustOpenStore opens the configured media catalog for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) mediastore.Catalog {
	t.Helper()

	store, err := mediastore.Open(cfg)
	if err != nil {
		t.Fatalf("mediastore.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// Image returns a PNG payload with the given id.
func Image(id string) mediastore.Payload {
	return mediastore.Payload{ID: id, Kind: course.KindImage, MimeType: "image/png", OriginalName: id + ".png", Data: PNGBytes}
}

// Audio returns an MP3 payload with the given id.
func Audio(id string) mediastore.Payload {
	return mediastore.Payload{ID: id, Kind: course.KindAudio, MimeType: "audio/mpeg", OriginalName: id + ".mp3", Data: MP3Bytes}
}

// Caption returns a WebVTT payload with the given id.
func Caption(id string) mediastore.Payload {
	return mediastore.Payload{ID: id, Kind: course.KindCaption, MimeType: "text/vtt", OriginalName: id + ".vtt", Data: VTTBytes}
}

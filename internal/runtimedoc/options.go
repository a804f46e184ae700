package runtimedoc

import (
	"encoding/base64"
	"errors"
	"fmt"

	"coursepack/internal/manifest"
	"coursepack/internal/resolver"
)

// ErrInlineTooLarge is returned by InlineLinker for payloads above its limit.
var ErrInlineTooLarge = errors.New("media too large to inline")

// Linker returns the URL a rendered document uses for media.
type Linker func(media *resolver.ResolvedMedia) (string, error)

// Options controls Generate.
type Options struct {
	Manifest manifest.Options
	// MediaURL links resolved media. Defaults to PackageLinker.
	MediaURL Linker
	// Preview marks the document as a preview and shows StageLabel.
	Preview    bool
	StageLabel string
}

// MediaDir is the archive directory packaged media live under.
const MediaDir = "media"

// PackageLinker links packaged media relative to index.html.
func PackageLinker(media *resolver.ResolvedMedia) (string, error) {
	if media.IsExternal() {
		return media.ExternalURL, nil
	}
	return MediaDir + "/" + media.Filename, nil
}

// InlineLinker embeds media bytes as data URIs, refusing payloads larger
// than maxBytes when maxBytes is positive.
func InlineLinker(maxBytes int64) Linker {
	return func(media *resolver.ResolvedMedia) (string, error) {
		if media.IsExternal() {
			return media.ExternalURL, nil
		}
		if media.Handle == nil {
			return "", fmt.Errorf("media %s has no handle", media.ID)
		}
		data, err := media.Handle.Read()
		if err != nil {
			return "", err
		}
		if maxBytes > 0 && int64(len(data)) > maxBytes {
			return "", fmt.Errorf("%w: %s is %d bytes (limit %d)", ErrInlineTooLarge, media.ID, len(data), maxBytes)
		}
		return "data:" + media.MimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
	}
}

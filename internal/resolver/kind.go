package resolver

import (
	"net/url"
	"path"
	"regexp"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"coursepack/internal/course"
)

var (
	audioExtensions   = extensionSet("mp3", "wav", "ogg", "oga", "m4a", "aac", "flac", "opus", "weba")
	videoExtensions   = extensionSet("mp4", "webm", "mov", "avi", "mkv", "m4v", "ogv")
	captionExtensions = extensionSet("vtt", "srt")
)

func extensionSet(exts ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		set[ext] = struct{}{}
	}
	return set
}

// extensionOf returns the lowercased extension of a URL or file name without
// the dot, ignoring any query string or fragment.
func extensionOf(name string) string {
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	ext := path.Ext(name)
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// ClassifyByName maps a URL or file name to a media kind using its extension.
// Unrecognised extensions report KindUnknown.
func ClassifyByName(name string) course.MediaKind {
	ext := extensionOf(name)
	if ext == "" {
		return course.KindUnknown
	}
	if _, ok := audioExtensions[ext]; ok {
		return course.KindAudio
	}
	if _, ok := videoExtensions[ext]; ok {
		return course.KindVideo
	}
	if _, ok := captionExtensions[ext]; ok {
		return course.KindCaption
	}
	return course.KindUnknown
}

// Classify picks the kind for a reference: the authored kind when present,
// then the extension of the URL or original file name, then the kind the
// store recorded, and finally image.
func Classify(authored course.MediaKind, stored course.MediaKind, names ...string) course.MediaKind {
	if authored != course.KindUnknown {
		return authored
	}
	for _, name := range names {
		if kind := ClassifyByName(name); kind != course.KindUnknown {
			return kind
		}
	}
	if stored != course.KindUnknown && stored.Valid() {
		return stored
	}
	return course.KindImage
}

// canonicalType returns the file extension and MIME type a payload of kind is
// packaged under. Images keep the type sniffed from their bytes.
func canonicalType(kind course.MediaKind, data []byte) (ext, mimeType string) {
	switch kind {
	case course.KindAudio:
		return "mp3", "audio/mpeg"
	case course.KindVideo:
		return "mp4", "video/mp4"
	case course.KindCaption:
		return "vtt", "text/vtt"
	}
	detected := mimetype.Detect(data)
	for m := detected; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), "image/") {
			ext := strings.TrimPrefix(m.Extension(), ".")
			if ext == "" {
				break
			}
			return ext, stripParams(m.String())
		}
	}
	return "jpg", "image/jpeg"
}

func stripParams(mimeType string) string {
	if i := strings.IndexByte(mimeType, ';'); i >= 0 {
		return strings.TrimSpace(mimeType[:i])
	}
	return mimeType
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// CanonicalFilename returns the archive file name for a media id.
func CanonicalFilename(id, ext string) string {
	base := unsafeFilenameChars.ReplaceAllString(id, "-")
	base = strings.Trim(base, ".")
	if base == "" {
		base = "media"
	}
	return base + "." + ext
}

var (
	youtubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{6,}$`)
	vimeoIDPattern   = regexp.MustCompile(`^[0-9]+$`)
)

// HostedVideoEmbed returns the embeddable player URL for YouTube and Vimeo
// links, or false when raw is not a recognised hosted video.
func HostedVideoEmbed(raw string) (string, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")

	switch host {
	case "youtube.com", "youtube-nocookie.com":
		var id string
		switch {
		case len(segments) == 1 && segments[0] == "watch":
			id = u.Query().Get("v")
		case len(segments) >= 2 && (segments[0] == "embed" || segments[0] == "shorts" || segments[0] == "v"):
			id = segments[1]
		}
		if youtubeIDPattern.MatchString(id) {
			return "https://www.youtube.com/embed/" + id, true
		}
	case "youtu.be":
		if len(segments) >= 1 && youtubeIDPattern.MatchString(segments[0]) {
			return "https://www.youtube.com/embed/" + segments[0], true
		}
	case "vimeo.com":
		if len(segments) >= 1 && vimeoIDPattern.MatchString(segments[len(segments)-1]) {
			return "https://player.vimeo.com/video/" + segments[len(segments)-1], true
		}
	case "player.vimeo.com":
		if len(segments) >= 2 && segments[0] == "video" && vimeoIDPattern.MatchString(segments[1]) {
			return "https://player.vimeo.com/video/" + segments[1], true
		}
	}
	return "", false
}

package enhance

import (
	"sync"

	"coursepack/internal/course"
	"coursepack/internal/failures"
	"coursepack/internal/resolver"
)

// Media is one media reference of a page after resolution.
type Media struct {
	Ref         course.MediaReference
	Resolved    *resolver.ResolvedMedia
	Placeholder bool
	Reason      string
}

// Page is a projected page with its resolved media. AudioPayload and
// AudioFile are never both set; the same holds for captions.
type Page struct {
	course.Page

	Media          []Media
	AudioPayload   *resolver.ResolvedMedia
	CaptionPayload *resolver.ResolvedMedia

	mu sync.Mutex
}

// attachAudio sets the narration payload and clears the reference together.
func (p *Page) attachAudio(media *resolver.ResolvedMedia) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.AudioPayload = media
	p.AudioFile = ""
}

// attachCaption sets the caption payload and clears the reference together.
func (p *Page) attachCaption(media *resolver.ResolvedMedia) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CaptionPayload = media
	p.CaptionFile = ""
}

// Snapshot returns the audio and caption state under the page lock.
func (p *Page) Snapshot() (audioFile string, audio *resolver.ResolvedMedia, captionFile string, caption *resolver.ResolvedMedia) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.AudioFile, p.AudioPayload, p.CaptionFile, p.CaptionPayload
}

// Document is an enhanced course ready for rendering or packaging.
type Document struct {
	Title       string
	Description string
	Language    string
	Pages       []*Page

	// Questions are the assessment questions visible at the projected stage.
	Questions course.QuestionList

	// Resources holds every successfully resolved media, keyed by id.
	Resources map[string]*resolver.ResolvedMedia

	// Missing lists required ids that could not be resolved, sorted.
	Missing []string
}

// MissingError reports the Missing list as a MissingResources error, or nil.
func (d *Document) MissingError() error {
	if d == nil {
		return nil
	}
	return failures.NewMissingResources(d.Missing)
}

// Page returns the enhanced page with the given id.
func (d *Document) Page(id string) (*Page, bool) {
	for _, p := range d.Pages {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// PageIDs returns page ids in page order.
func (d *Document) PageIDs() []string {
	ids := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		ids = append(ids, p.ID)
	}
	return ids
}

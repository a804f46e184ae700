package course

import (
	"fmt"
	"strings"
)

// PageKind identifies a page's role in the fixed page order.
type PageKind string

const (
	PageWelcome    PageKind = "welcome"
	PageObjectives PageKind = "objectives"
	PageTopic      PageKind = "topic"
	PageAssessment PageKind = "assessment"
)

// MediaKind classifies a media reference. The empty kind means the authoring
// layer did not say and the resolver classifies it.
type MediaKind string

const (
	KindUnknown MediaKind = ""
	KindImage   MediaKind = "image"
	KindVideo   MediaKind = "video"
	KindAudio   MediaKind = "audio"
	KindCaption MediaKind = "caption"
)

// Valid reports whether k is one of the enumerated kinds or unknown.
func (k MediaKind) Valid() bool {
	switch k {
	case KindUnknown, KindImage, KindVideo, KindAudio, KindCaption:
		return true
	default:
		return false
	}
}

// Locator points at a media payload. Exactly one field is set.
type Locator struct {
	ExternalURL string `json:"external_url,omitempty"`
	StorageID   string `json:"storage_id,omitempty"`
}

// IsExternal reports whether the locator is a free-form URL.
func (l Locator) IsExternal() bool {
	return strings.TrimSpace(l.ExternalURL) != ""
}

// MediaReference links a page to one media resource.
type MediaReference struct {
	ID       string    `json:"id"`
	Kind     MediaKind `json:"kind,omitempty"`
	Locator  Locator   `json:"locator"`
	Title    string    `json:"title,omitempty"`
	Required bool      `json:"required,omitempty"`
}

// StoreKey returns the media store key for the reference.
func (r MediaReference) StoreKey() string {
	if id := strings.TrimSpace(r.Locator.StorageID); id != "" {
		return id
	}
	return r.ID
}

// KnowledgeCheck is the optional quiz attached to a topic.
type KnowledgeCheck struct {
	Questions QuestionList `json:"questions"`
}

// Page is one page of the course. Only fields relevant to a page's kind are
// populated: Objectives on the objectives page, StartButtonText on welcome,
// KnowledgeCheck on topics and Questions on the assessment.
type Page struct {
	ID              string           `json:"id"`
	Kind            PageKind         `json:"kind"`
	Title           string           `json:"title"`
	Body            string           `json:"body,omitempty"`
	Narration       string           `json:"narration,omitempty"`
	Media           []MediaReference `json:"media,omitempty"`
	AudioFile       string           `json:"audio_file,omitempty"`
	CaptionFile     string           `json:"caption_file,omitempty"`
	Objectives      []string         `json:"objectives,omitempty"`
	StartButtonText string           `json:"start_button_text,omitempty"`
	KnowledgeCheck  *KnowledgeCheck  `json:"knowledge_check,omitempty"`
	Questions       QuestionList     `json:"questions,omitempty"`
}

// Document is the authored course.
type Document struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language,omitempty"`
	Welcome     *Page  `json:"welcome,omitempty"`
	Objectives  *Page  `json:"objectives,omitempty"`
	Topics      []Page `json:"topics"`
	Assessment  *Page  `json:"assessment,omitempty"`
}

// Pages returns pointers to the document's pages in the fixed order:
// welcome, objectives, topics, assessment. Mutating a returned page mutates
// the document.
func (d *Document) Pages() []*Page {
	if d == nil {
		return nil
	}
	pages := make([]*Page, 0, len(d.Topics)+3)
	if d.Welcome != nil {
		pages = append(pages, d.Welcome)
	}
	if d.Objectives != nil {
		pages = append(pages, d.Objectives)
	}
	for i := range d.Topics {
		pages = append(pages, &d.Topics[i])
	}
	if d.Assessment != nil {
		pages = append(pages, d.Assessment)
	}
	return pages
}

// PageIDs returns page ids in page order.
func (d *Document) PageIDs() []string {
	pages := d.Pages()
	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	return ids
}

// Page returns the page with the given id.
func (d *Document) Page(id string) (*Page, bool) {
	for _, p := range d.Pages() {
		if p.ID == id {
			return p, true
		}
	}
	return nil, false
}

// AssessmentQuestions returns the assessment page's questions, if any.
func (d *Document) AssessmentQuestions() QuestionList {
	if d == nil || d.Assessment == nil {
		return nil
	}
	return d.Assessment.Questions
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Welcome = d.Welcome.Clone()
	out.Objectives = d.Objectives.Clone()
	out.Assessment = d.Assessment.Clone()
	if d.Topics != nil {
		out.Topics = make([]Page, len(d.Topics))
		for i := range d.Topics {
			out.Topics[i] = *d.Topics[i].Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the page.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	out := *p
	if p.Media != nil {
		out.Media = append([]MediaReference(nil), p.Media...)
	}
	if p.Objectives != nil {
		out.Objectives = append([]string(nil), p.Objectives...)
	}
	if p.KnowledgeCheck != nil {
		out.KnowledgeCheck = &KnowledgeCheck{Questions: p.KnowledgeCheck.Questions.Clone()}
	}
	out.Questions = p.Questions.Clone()
	return &out
}

// Normalize assigns default page and question ids and trims identifiers.
// It is idempotent.
func (d *Document) Normalize() {
	if d == nil {
		return
	}
	d.Title = strings.TrimSpace(d.Title)
	d.Language = strings.TrimSpace(d.Language)
	if d.Language == "" {
		d.Language = "en"
	}
	normalizePage(d.Welcome, PageWelcome, "welcome")
	normalizePage(d.Objectives, PageObjectives, "objectives")
	for i := range d.Topics {
		normalizePage(&d.Topics[i], PageTopic, fmt.Sprintf("topic-%d", i+1))
	}
	normalizePage(d.Assessment, PageAssessment, "assessment")
}

func normalizePage(p *Page, kind PageKind, defaultID string) {
	if p == nil {
		return
	}
	p.Kind = kind
	p.ID = strings.TrimSpace(p.ID)
	if p.ID == "" {
		p.ID = defaultID
	}
	p.AudioFile = strings.TrimSpace(p.AudioFile)
	p.CaptionFile = strings.TrimSpace(p.CaptionFile)
	for i := range p.Media {
		ref := &p.Media[i]
		ref.ID = strings.TrimSpace(ref.ID)
		ref.Kind = MediaKind(strings.ToLower(strings.TrimSpace(string(ref.Kind))))
		ref.Locator.ExternalURL = strings.TrimSpace(ref.Locator.ExternalURL)
		ref.Locator.StorageID = strings.TrimSpace(ref.Locator.StorageID)
	}
	if p.KnowledgeCheck != nil {
		p.KnowledgeCheck.Questions.assignIDs(p.ID + "-kc")
	}
	p.Questions.assignIDs(p.ID + "-q")
}

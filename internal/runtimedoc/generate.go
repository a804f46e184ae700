package runtimedoc

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"html/template"
	"sort"

	"coursepack/internal/course"
	"coursepack/internal/enhance"
	"coursepack/internal/manifest"
	"coursepack/internal/resolver"
)

var (
	//go:embed assets/index.html.tmpl
	indexTemplateText string
	//go:embed assets/runtime.js
	runtimeScript string
	//go:embed assets/runtime.css
	runtimeStyle string
)

var indexTemplate = template.Must(template.New("index").Parse(indexTemplateText))

// Document is a rendered runtime document.
type Document struct {
	HTML    []byte
	PageIDs []string
	// Linked lists media ids whose URL appears in the document.
	Linked []string
	// Placeholders lists media ids rendered as placeholders.
	Placeholders []string
}

type mediaView struct {
	ID          string
	Kind        string
	Title       string
	URL         template.URL
	MimeType    string
	Embed       bool
	Placeholder bool
	Reason      string
}

type optionView struct {
	Index int
	Label string
}

type questionView struct {
	ID      string
	Type    string
	Prompt  string
	Options []optionView
}

type pageView struct {
	ID              string
	Kind            string
	Title           string
	Body            template.HTML
	Narration       string
	Objectives      []string
	StartButtonText string
	Media           []mediaView
	Audio           *mediaView
	Captions        *mediaView
	Checks          []questionView
	Questions       []questionView
}

type indexView struct {
	Title      string
	Language   string
	Preview    bool
	StageLabel string
	Pages      []pageView
	Data       template.JS
	Script     template.JS
	Style      template.CSS
}

type runtimeQuestion struct {
	Type         string `json:"type"`
	CorrectIndex int    `json:"correctIndex"`
	Correct      bool   `json:"correct"`
	CorrectText  string `json:"correctText,omitempty"`
	FeedbackOK   string `json:"feedbackCorrect"`
	FeedbackFail string `json:"feedbackIncorrect"`
}

type runtimePage struct {
	ID     string   `json:"id"`
	Kind   string   `json:"kind"`
	Title  string   `json:"title"`
	Checks []string `json:"checks,omitempty"`
}

type runtimeData struct {
	Title            string                      `json:"title"`
	Navigation       manifest.NavigationMode     `json:"navigation"`
	Completion       manifest.CompletionCriteria `json:"completion"`
	PassMark         int                         `json:"passMark"`
	TimeLimitSeconds int64                       `json:"timeLimitSeconds"`
	AllowRetake      bool                        `json:"allowRetake"`
	Preview          bool                        `json:"preview"`
	Pages            []runtimePage               `json:"pages"`
	Assessment       []string                    `json:"assessment"`
	Questions        map[string]runtimeQuestion  `json:"questions"`
}

// Generate renders doc. Identical inputs produce identical bytes.
func Generate(doc *enhance.Document, opts Options) (*Document, error) {
	if doc == nil {
		return nil, fmt.Errorf("generate: document is required")
	}
	if opts.MediaURL == nil {
		opts.MediaURL = PackageLinker
	}
	mopts := opts.Manifest
	if mopts.NavigationMode == "" {
		mopts.NavigationMode = manifest.NavigationLinear
	}
	if mopts.CompletionCriteria == "" {
		mopts.CompletionCriteria = manifest.CompletionViewAll
	}

	r := &renderer{linker: opts.MediaURL, linked: map[string]struct{}{}, placeholders: map[string]struct{}{}}
	data := runtimeData{
		Title:            doc.Title,
		Navigation:       mopts.NavigationMode,
		Completion:       mopts.CompletionCriteria,
		PassMark:         mopts.PassMark,
		TimeLimitSeconds: int64(mopts.TimeLimit.Seconds()),
		AllowRetake:      mopts.AllowRetake,
		Preview:          opts.Preview,
		Assessment:       []string{},
		Questions:        map[string]runtimeQuestion{},
	}
	view := indexView{
		Title:      doc.Title,
		Language:   doc.Language,
		Preview:    opts.Preview,
		StageLabel: opts.StageLabel,
		Script:     template.JS(runtimeScript),
		Style:      template.CSS(runtimeStyle),
	}

	for _, page := range doc.Pages {
		pv := r.page(page)
		rp := runtimePage{ID: page.ID, Kind: string(page.Kind), Title: page.Title}
		if page.KnowledgeCheck != nil {
			for _, q := range page.KnowledgeCheck.Questions {
				pv.Checks = append(pv.Checks, questionFor(q))
				rp.Checks = append(rp.Checks, q.QuestionID())
				data.Questions[q.QuestionID()] = runtimeQuestionFor(q)
			}
		}
		if page.Kind == course.PageAssessment {
			for _, q := range doc.Questions {
				pv.Questions = append(pv.Questions, questionFor(q))
				data.Assessment = append(data.Assessment, q.QuestionID())
				data.Questions[q.QuestionID()] = runtimeQuestionFor(q)
			}
		}
		view.Pages = append(view.Pages, pv)
		data.Pages = append(data.Pages, rp)
	}

	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode course data: %w", err)
	}
	view.Data = template.JS(encoded)

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render runtime document: %w", err)
	}
	return &Document{
		HTML:         buf.Bytes(),
		PageIDs:      doc.PageIDs(),
		Linked:       sortedKeys(r.linked),
		Placeholders: sortedKeys(r.placeholders),
	}, nil
}

type renderer struct {
	linker       Linker
	linked       map[string]struct{}
	placeholders map[string]struct{}
}

func (r *renderer) page(page *enhance.Page) pageView {
	_, audio, _, captions := page.Snapshot()
	pv := pageView{
		ID:              page.ID,
		Kind:            string(page.Kind),
		Title:           page.Title,
		Body:            SanitizeBody(page.Body),
		Narration:       page.Narration,
		Objectives:      page.Objectives,
		StartButtonText: page.StartButtonText,
	}
	if pv.Kind == string(course.PageWelcome) && pv.StartButtonText == "" {
		pv.StartButtonText = "Start"
	}
	for _, m := range page.Media {
		if m.Placeholder || m.Resolved == nil {
			pv.Media = append(pv.Media, r.placeholder(m.Ref.ID, string(m.Ref.Kind), m.Ref.Title, m.Reason))
			continue
		}
		title := m.Ref.Title
		if title == "" {
			title = m.Resolved.Title
		}
		pv.Media = append(pv.Media, r.link(m.Resolved, title))
	}
	if audio != nil {
		v := r.link(audio, "")
		pv.Audio = &v
	}
	if captions != nil {
		v := r.link(captions, "")
		pv.Captions = &v
	}
	return pv
}

func (r *renderer) link(media *resolver.ResolvedMedia, title string) mediaView {
	url, err := r.linker(media)
	if err != nil {
		return r.placeholder(media.ID, string(media.Kind), title, err.Error())
	}
	r.linked[media.ID] = struct{}{}
	return mediaView{
		ID:       media.ID,
		Kind:     string(media.Kind),
		Title:    title,
		URL:      template.URL(url),
		MimeType: media.MimeType,
		Embed:    media.IsExternal(),
	}
}

func (r *renderer) placeholder(id, kind, title, reason string) mediaView {
	r.placeholders[id] = struct{}{}
	if kind == "" {
		kind = string(course.KindImage)
	}
	return mediaView{ID: id, Kind: kind, Title: title, Placeholder: true, Reason: reason}
}

func questionFor(q course.Question) questionView {
	v := questionView{ID: q.QuestionID(), Type: string(q.Type()), Prompt: q.Text()}
	switch t := q.(type) {
	case *course.MultipleChoice:
		for i, opt := range t.Options {
			v.Options = append(v.Options, optionView{Index: i, Label: opt})
		}
	case *course.TrueFalse:
		v.Options = []optionView{{Index: 0, Label: "True"}, {Index: 1, Label: "False"}}
	}
	return v
}

func runtimeQuestionFor(q course.Question) runtimeQuestion {
	fb := q.AuthoredFeedback()
	rq := runtimeQuestion{
		Type:         string(q.Type()),
		CorrectIndex: -1,
		FeedbackOK:   FeedbackText(fb, true),
		FeedbackFail: FeedbackText(fb, false),
	}
	switch t := q.(type) {
	case *course.MultipleChoice:
		rq.CorrectIndex = t.CorrectIndex
	case *course.TrueFalse:
		rq.Correct = t.Correct
		rq.CorrectIndex = 1
		if t.Correct {
			rq.CorrectIndex = 0
		}
	case *course.FillInBlank:
		rq.CorrectText = t.CorrectText
	}
	return rq
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

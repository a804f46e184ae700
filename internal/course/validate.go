package course

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"coursepack/internal/failures"
)

// Validate checks document invariants and reports every violation at once.
//
// A media id may appear on several pages, but every occurrence must describe
// the same resource.
func (d *Document) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if d.Title == "" {
		add("title is required")
	}
	if d.Language != "" {
		if _, err := language.Parse(d.Language); err != nil {
			add("language %q is not a valid BCP 47 tag", d.Language)
		}
	}
	if len(d.Topics) == 0 {
		add("at least one topic is required")
	}

	pageIDs := map[string]struct{}{}
	questionIDs := map[string]struct{}{}
	media := map[string]MediaReference{}
	var narration []narrationUse

	for _, page := range d.Pages() {
		if _, dup := pageIDs[page.ID]; dup {
			add("page id %q is not unique", page.ID)
		}
		pageIDs[page.ID] = struct{}{}

		for _, ref := range page.Media {
			validateReference(page.ID, ref, media, add)
		}
		if id := page.AudioFile; id != "" {
			narration = append(narration, narrationUse{page.ID, id, KindAudio})
		}
		if id := page.CaptionFile; id != "" {
			narration = append(narration, narrationUse{page.ID, id, KindCaption})
		}

		questions := page.Questions
		if page.KnowledgeCheck != nil {
			if len(page.KnowledgeCheck.Questions) == 0 {
				add("page %q: knowledge check needs at least one question", page.ID)
			}
			questions = append(append(QuestionList(nil), page.KnowledgeCheck.Questions...), questions...)
		}
		for _, q := range questions {
			if _, dup := questionIDs[q.QuestionID()]; dup {
				add("question id %q is not unique", q.QuestionID())
			}
			questionIDs[q.QuestionID()] = struct{}{}
			if msg := validateQuestion(q); msg != "" {
				add("page %q question %q: %s", page.ID, q.QuestionID(), msg)
			}
		}
	}

	// Audio and caption files share the media id space, so each id must
	// resolve to a single kind.
	narrated := map[string]MediaKind{}
	for _, use := range narration {
		if kind, ok := narrated[use.id]; ok && kind != use.kind {
			add("page %q: id %q is used as both narration audio and captions", use.pageID, use.id)
		}
		narrated[use.id] = use.kind
		if ref, ok := media[use.id]; ok && ref.Kind != use.kind {
			add("page %q: %s file %q is also referenced as %s media", use.pageID, use.kind, use.id, kindLabel(ref.Kind))
		}
	}

	if len(problems) == 0 {
		return nil
	}
	return failures.Wrap(failures.ErrValidation, "course", "validate", strings.Join(problems, "; "), nil)
}

type narrationUse struct {
	pageID string
	id     string
	kind   MediaKind
}

func kindLabel(kind MediaKind) string {
	if kind == KindUnknown {
		return "unclassified"
	}
	return string(kind)
}

func validateReference(pageID string, ref MediaReference, seen map[string]MediaReference, add func(string, ...any)) {
	if ref.ID == "" {
		add("page %q: media reference without id", pageID)
		return
	}
	hasURL := ref.Locator.ExternalURL != ""
	hasStorage := ref.Locator.StorageID != ""
	if hasURL == hasStorage {
		add("page %q media %q: exactly one of external_url or storage_id must be set", pageID, ref.ID)
	}
	if !ref.Kind.Valid() {
		add("page %q media %q: unsupported kind %q", pageID, ref.ID, ref.Kind)
	}
	if prior, ok := seen[ref.ID]; ok {
		if prior.Locator != ref.Locator || prior.Kind != ref.Kind {
			add("media id %q refers to different resources", ref.ID)
		}
		return
	}
	seen[ref.ID] = ref
}

func validateQuestion(q Question) string {
	if strings.TrimSpace(q.Text()) == "" {
		return "text is required"
	}
	switch v := q.(type) {
	case *MultipleChoice:
		if len(v.Options) < 2 {
			return "multiple-choice needs at least two options"
		}
		if v.CorrectIndex < 0 || v.CorrectIndex >= len(v.Options) {
			return fmt.Sprintf("correct index %d out of range", v.CorrectIndex)
		}
	case *TrueFalse:
	case *FillInBlank:
		if strings.TrimSpace(v.CorrectText) == "" {
			return "fill-in-the-blank needs correct text"
		}
	default:
		return fmt.Sprintf("unsupported variant %T", q)
	}
	return ""
}

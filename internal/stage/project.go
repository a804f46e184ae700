package stage

import "coursepack/internal/course"

// Project returns a deep copy of doc restricted to what is visible at s:
//
//   - before json, pages carry only id, kind, title, body and the objectives
//     list;
//   - from json, narration and knowledge checks appear;
//   - from media, media references appear;
//   - from audio, narration audio and caption references appear;
//   - at scorm, assessment questions appear.
func Project(doc *course.Document, s Stage) *course.Document {
	if doc == nil {
		return nil
	}
	out := doc.Clone()
	for _, page := range out.Pages() {
		projectPage(page, s)
	}
	return out
}

func projectPage(p *course.Page, s Stage) {
	if s < JSON {
		*p = course.Page{
			ID:         p.ID,
			Kind:       p.Kind,
			Title:      p.Title,
			Body:       p.Body,
			Objectives: p.Objectives,
		}
		return
	}
	if s < Media {
		p.Media = nil
	}
	if s < Audio {
		p.AudioFile = ""
		p.CaptionFile = ""
	}
	if s < SCORM {
		p.Questions = nil
	}
}

// Visible reports whether content of the given kind appears at s.
func Visible(s Stage, content Content) bool {
	switch content {
	case ContentNarration, ContentKnowledgeCheck:
		return s >= JSON
	case ContentMedia:
		return s >= Media
	case ContentAudio:
		return s >= Audio
	case ContentAssessment:
		return s >= SCORM
	default:
		return true
	}
}

// Content names a projected content class.
type Content string

const (
	ContentNarration      Content = "narration"
	ContentKnowledgeCheck Content = "knowledge_check"
	ContentMedia          Content = "media"
	ContentAudio          Content = "audio"
	ContentAssessment     Content = "assessment"
)

package provider

import (
	"strings"

	"photofind/internal/model"
)

// Curated word lists for deriving tags from a caption when a structured
// provider response is unavailable. Matching is a case-insensitive
// substring check, so "people" also matches "salespeople"; crude, but the
// lists are tuned for photo captions, not arbitrary prose.
var (
	peopleWords = []string{
		"person", "people", "man", "woman", "child", "boy", "girl", "baby",
		"face", "selfie", "portrait", "crowd", "group",
	}
	faceWords = []string{"face", "selfie", "portrait"}
	textWords = []string{
		"text", "writing", "handwritten", "notes", "note", "document",
		"paper", "book", "page", "sign", "letter", "form", "invoice",
		"receipt", "worksheet", "whiteboard",
	}
	documentWords = []string{
		"document", "paper", "letter", "form", "invoice", "receipt",
		"notes", "notebook", "worksheet", "whiteboard",
	}
	screenshotWords = []string{
		"screenshot", "screen", "ui", "app", "phone screen", "computer screen",
	}
	indoorWords = []string{
		"indoor", "indoors", "room", "kitchen", "bedroom", "office",
		"hall", "classroom", "living room",
	}
	outdoorWords = []string{
		"outdoor", "outdoors", "outside", "street", "beach", "park",
		"sky", "forest", "mountain",
	}
)

// TagsFromCaption derives a fully evaluated TagSet from a caption by
// keyword matching. This is the guaranteed fallback: tags from this path
// are never TagUnknown.
func TagsFromCaption(caption string) model.TagSet {
	text := strings.ToLower(caption)

	hasAny := func(words []string) model.TagState {
		for _, w := range words {
			if strings.Contains(text, w) {
				return model.TagTrue
			}
		}
		return model.TagFalse
	}

	return model.TagSet{
		HasPeople:    hasAny(peopleWords),
		HasFaces:     hasAny(faceWords),
		HasText:      hasAny(textWords),
		IsIndoor:     hasAny(indoorWords),
		IsOutdoor:    hasAny(outdoorWords),
		IsDocument:   hasAny(documentWords),
		IsScreenshot: hasAny(screenshotWords),
	}
}

// Prompts shared by all providers.
const (
	captionPrompt = "Describe this image for photo search. Be concise but specific."

	captionAndTagsPrompt = "Return JSON with keys: caption (string), has_people, has_faces, " +
		"has_text, is_indoor, is_outdoor, is_document, is_screenshot. " +
		"Use true/false for flags. Keep caption concise but specific."
)

// taggedCaption is the structured response shape shared by providers.
type taggedCaption struct {
	Caption      string `json:"caption"`
	HasPeople    bool   `json:"has_people"`
	HasFaces     bool   `json:"has_faces"`
	HasText      bool   `json:"has_text"`
	IsIndoor     bool   `json:"is_indoor"`
	IsOutdoor    bool   `json:"is_outdoor"`
	IsDocument   bool   `json:"is_document"`
	IsScreenshot bool   `json:"is_screenshot"`
}

func (t *taggedCaption) tagSet() model.TagSet {
	return model.TagSet{
		HasPeople:    model.TagOf(t.HasPeople),
		HasFaces:     model.TagOf(t.HasFaces),
		HasText:      model.TagOf(t.HasText),
		IsIndoor:     model.TagOf(t.IsIndoor),
		IsOutdoor:    model.TagOf(t.IsOutdoor),
		IsDocument:   model.TagOf(t.IsDocument),
		IsScreenshot: model.TagOf(t.IsScreenshot),
	}
}

package provider

import (
	"testing"

	"photofind/internal/model"
)

func TestTagsFromCaption(t *testing.T) {
	t.Run("matches keywords case-insensitively", func(t *testing.T) {
		tags := TagsFromCaption("A Woman reading a Book in her living room")

		if tags.HasPeople != model.TagTrue {
			t.Error("HasPeople should be true for 'woman'")
		}
		if tags.HasText != model.TagTrue {
			t.Error("HasText should be true for 'book'")
		}
		if tags.IsIndoor != model.TagTrue {
			t.Error("IsIndoor should be true for 'living room'")
		}
		if tags.IsOutdoor != model.TagFalse {
			t.Error("IsOutdoor should be evaluated false, not unknown")
		}
	})

	t.Run("never leaves a tag unknown", func(t *testing.T) {
		tags := TagsFromCaption("a cat")

		for name, state := range map[string]model.TagState{
			"HasPeople":    tags.HasPeople,
			"HasFaces":     tags.HasFaces,
			"HasText":      tags.HasText,
			"IsIndoor":     tags.IsIndoor,
			"IsOutdoor":    tags.IsOutdoor,
			"IsDocument":   tags.IsDocument,
			"IsScreenshot": tags.IsScreenshot,
		} {
			if !state.Known() {
				t.Errorf("%s = TagUnknown, fallback must evaluate every tag", name)
			}
		}
	})

	t.Run("empty caption evaluates everything false", func(t *testing.T) {
		tags := TagsFromCaption("")
		if tags.HasPeople != model.TagFalse || tags.IsScreenshot != model.TagFalse {
			t.Error("empty caption should produce all-false tags")
		}
	})

	t.Run("document and screenshot keywords", func(t *testing.T) {
		tags := TagsFromCaption("a screenshot of an invoice form")
		if tags.IsScreenshot != model.TagTrue {
			t.Error("IsScreenshot should be true for 'screenshot'")
		}
		if tags.IsDocument != model.TagTrue {
			t.Error("IsDocument should be true for 'invoice'")
		}
	})
}

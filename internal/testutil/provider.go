package testutil

import (
	"context"

	"photofind/internal/model"
)

// StubProvider is a canned gallery.Provider that counts calls so tests
// can assert how many provider requests an operation made.
type StubProvider struct {
	Caption   string
	Tags      model.TagSet
	Embedding []float32

	// EmbedFunc, when set, overrides Embedding per input text.
	EmbedFunc func(text string) ([]float32, error)

	CaptionErr error
	EmbedErr   error

	CaptionAndTagsCalls int
	CaptionImageCalls   int
	EmbedTextCalls      int
}

// NewStubProvider returns a stub that captions everything identically and
// embeds everything to the given vector.
func NewStubProvider(caption string, embedding []float32) *StubProvider {
	return &StubProvider{
		Caption:   caption,
		Tags:      allFalseTags(),
		Embedding: embedding,
	}
}

func (p *StubProvider) Name() string { return "stub" }

func (p *StubProvider) Dimensions() int { return len(p.Embedding) }

func (p *StubProvider) CaptionImage(_ context.Context, _ []byte) (string, error) {
	p.CaptionImageCalls++
	if p.CaptionErr != nil {
		return "", p.CaptionErr
	}
	return p.Caption, nil
}

func (p *StubProvider) CaptionAndTags(_ context.Context, _ []byte) (string, model.TagSet, error) {
	p.CaptionAndTagsCalls++
	if p.CaptionErr != nil {
		return "", model.TagSet{}, p.CaptionErr
	}
	return p.Caption, p.Tags, nil
}

func (p *StubProvider) EmbedText(_ context.Context, text string) ([]float32, error) {
	p.EmbedTextCalls++
	if p.EmbedErr != nil {
		return nil, p.EmbedErr
	}
	if p.EmbedFunc != nil {
		return p.EmbedFunc(text)
	}
	return p.Embedding, nil
}

// TotalCalls is the sum of all provider requests made.
func (p *StubProvider) TotalCalls() int {
	return p.CaptionAndTagsCalls + p.CaptionImageCalls + p.EmbedTextCalls
}

func allFalseTags() model.TagSet {
	return model.TagSet{
		HasPeople:    model.TagFalse,
		HasFaces:     model.TagFalse,
		HasText:      model.TagFalse,
		IsIndoor:     model.TagFalse,
		IsOutdoor:    model.TagFalse,
		IsDocument:   model.TagFalse,
		IsScreenshot: model.TagFalse,
	}
}

package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"photofind/internal/config"
	"photofind/internal/model"
)

const (
	defaultGeminiCaptionModel   = "gemini-1.5-flash"
	defaultGeminiEmbeddingModel = "text-embedding-004"
	defaultGeminiEmbeddingDim   = 768
)

// GeminiProvider captions and embeds through the Gemini API. Its
// embedding space is not compatible with OpenAI's; a catalog indexed with
// one provider must not be searched with the other.
type GeminiProvider struct {
	client         *genai.Client
	captionModel   string
	embeddingModel string
	dims           int
}

// NewGeminiProvider creates a GeminiProvider from config. The API key
// comes from the config or the GEMINI_API_KEY environment variable; a
// missing key is a construction-time error.
func NewGeminiProvider(ctx context.Context, cfg config.ProviderConfig) (*GeminiProvider, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("GEMINI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is missing")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	p := &GeminiProvider{
		client:         client,
		captionModel:   cfg.CaptionModel,
		embeddingModel: cfg.EmbeddingModel,
		dims:           cfg.EmbeddingDim,
	}
	if p.captionModel == "" {
		p.captionModel = defaultGeminiCaptionModel
	}
	if p.embeddingModel == "" {
		p.embeddingModel = defaultGeminiEmbeddingModel
	}
	if p.dims == 0 {
		p.dims = defaultGeminiEmbeddingDim
	}
	return p, nil
}

func (p *GeminiProvider) Name() string    { return "gemini" }
func (p *GeminiProvider) Dimensions() int { return p.dims }

func (p *GeminiProvider) CaptionImage(ctx context.Context, imageBytes []byte) (string, error) {
	resp, err := p.generate(ctx, captionPrompt, imageBytes, nil)
	if err != nil {
		return "", fmt.Errorf("captioning image: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// CaptionAndTags requests a JSON response; on failure it falls back to a
// plain caption with keyword-derived tags.
func (p *GeminiProvider) CaptionAndTags(ctx context.Context, imageBytes []byte) (string, model.TagSet, error) {
	resp, err := p.generate(ctx, captionAndTagsPrompt, imageBytes, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return p.captionFallback(ctx, imageBytes)
	}

	var tc taggedCaption
	if err := json.Unmarshal([]byte(resp.Text()), &tc); err != nil {
		return p.captionFallback(ctx, imageBytes)
	}

	caption := strings.TrimSpace(tc.Caption)
	if caption == "" {
		caption, err = p.CaptionImage(ctx, imageBytes)
		if err != nil {
			return "", model.TagSet{}, err
		}
	}
	return caption, tc.tagSet(), nil
}

func (p *GeminiProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.Models.EmbedContent(ctx, p.embeddingModel,
		genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	return resp.Embeddings[0].Values, nil
}

func (p *GeminiProvider) captionFallback(ctx context.Context, imageBytes []byte) (string, model.TagSet, error) {
	caption, err := p.CaptionImage(ctx, imageBytes)
	if err != nil {
		return "", model.TagSet{}, err
	}
	return caption, TagsFromCaption(caption), nil
}

func (p *GeminiProvider) generate(ctx context.Context, prompt string, imageBytes []byte, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(imageBytes, "image/jpeg"),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	return p.client.Models.GenerateContent(ctx, p.captionModel, contents, cfg)
}

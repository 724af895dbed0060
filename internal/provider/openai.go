package provider

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"photofind/internal/config"
	"photofind/internal/model"
)

const (
	defaultOpenAICaptionModel   = "gpt-4.1-mini"
	defaultOpenAIEmbeddingModel = "text-embedding-3-small"
	defaultOpenAIEmbeddingDim   = 1536
)

// OpenAIProvider captions images with a vision-capable chat model and
// embeds text with the embeddings endpoint.
type OpenAIProvider struct {
	client         *openai.Client
	captionModel   string
	embeddingModel string
	dims           int
}

// NewOpenAIProvider creates an OpenAIProvider from config. The API key
// comes from the config or the OPENAI_API_KEY environment variable; a
// missing key is a construction-time error.
func NewOpenAIProvider(cfg config.ProviderConfig) (*OpenAIProvider, error) {
	key := cfg.APIKey
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY is missing")
	}

	p := &OpenAIProvider{
		client:         openai.NewClient(key),
		captionModel:   cfg.CaptionModel,
		embeddingModel: cfg.EmbeddingModel,
		dims:           cfg.EmbeddingDim,
	}
	if p.captionModel == "" {
		p.captionModel = defaultOpenAICaptionModel
	}
	if p.embeddingModel == "" {
		p.embeddingModel = defaultOpenAIEmbeddingModel
	}
	if p.dims == 0 {
		p.dims = defaultOpenAIEmbeddingDim
	}
	return p, nil
}

func (p *OpenAIProvider) Name() string    { return "openai" }
func (p *OpenAIProvider) Dimensions() int { return p.dims }

func (p *OpenAIProvider) CaptionImage(ctx context.Context, imageBytes []byte) (string, error) {
	return p.captionOnly(ctx, imageBytes)
}

// CaptionAndTags asks for a single structured JSON response carrying the
// caption and all seven flags. If the request or the JSON parse fails, it
// falls back to a plain caption with keyword-derived tags, so tags are
// always populated.
func (p *OpenAIProvider) CaptionAndTags(ctx context.Context, imageBytes []byte) (string, model.TagSet, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.captionModel,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: captionAndTagsPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL(imageBytes)}},
			},
		}},
	})
	if err != nil {
		return p.captionFallback(ctx, imageBytes)
	}
	if len(resp.Choices) == 0 {
		return p.captionFallback(ctx, imageBytes)
	}

	var tc taggedCaption
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &tc); err != nil {
		return p.captionFallback(ctx, imageBytes)
	}

	caption := strings.TrimSpace(tc.Caption)
	if caption == "" {
		caption, err = p.captionOnly(ctx, imageBytes)
		if err != nil {
			return "", model.TagSet{}, err
		}
	}
	return caption, tc.tagSet(), nil
}

func (p *OpenAIProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.embeddingModel),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedding: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("embedding response contained no data")
	}
	return resp.Data[0].Embedding, nil
}

// captionFallback produces a caption-only result with keyword tags.
func (p *OpenAIProvider) captionFallback(ctx context.Context, imageBytes []byte) (string, model.TagSet, error) {
	caption, err := p.captionOnly(ctx, imageBytes)
	if err != nil {
		return "", model.TagSet{}, err
	}
	return caption, TagsFromCaption(caption), nil
}

func (p *OpenAIProvider) captionOnly(ctx context.Context, imageBytes []byte) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.captionModel,
		Messages: []openai.ChatCompletionMessage{{
			Role: openai.ChatMessageRoleUser,
			MultiContent: []openai.ChatMessagePart{
				{Type: openai.ChatMessagePartTypeText, Text: captionPrompt},
				{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{URL: dataURL(imageBytes)}},
			},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("captioning image: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("caption response contained no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func dataURL(imageBytes []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(imageBytes)
}

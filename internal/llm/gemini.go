package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	genai "google.golang.org/genai"
)

// GeminiClient is a thin wrapper around the official genai client. Text
// calls go to textModel, image sessions to imageModel.
type GeminiClient struct {
	cli        *genai.Client
	textModel  string
	imageModel string
}

func NewGeminiClient(ctx context.Context, apiKey, textModel, imageModel string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("init genai client: %w", err)
	}
	return &GeminiClient{cli: cli, textModel: textModel, imageModel: imageModel}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.textModel }
func (g *GeminiClient) Close() error { return nil }

// GenerateJSON requests application/json constrained by req.Schema.
func (g *GeminiClient) GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   req.Schema,
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	resp, err := g.cli.Models.GenerateContent(ctx, g.textModel,
		[]*genai.Content{genai.NewContentFromText(req.Prompt, genai.RoleUser)},
		cfg,
	)
	if err != nil {
		return nil, err
	}
	txt := strings.TrimSpace(resp.Text())
	if txt == "" {
		return nil, NewPermanentError(ErrInvalidJSON)
	}
	return json.RawMessage(txt), nil
}

// StartImageSession opens a chat that answers with IMAGE and TEXT parts.
func (g *GeminiClient) StartImageSession(ctx context.Context) (ImageSession, error) {
	chat, err := g.cli.Chats.Create(ctx, g.imageModel, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE", "TEXT"},
	}, nil)
	if err != nil {
		return nil, err
	}
	return &geminiImageSession{chat: chat}, nil
}

type geminiImageSession struct {
	chat *genai.Chat
}

func (s *geminiImageSession) Send(ctx context.Context, prompt string) (Image, error) {
	resp, err := s.chat.SendMessage(ctx, genai.Part{Text: prompt})
	if err != nil {
		return Image{}, err
	}
	return firstImage(resp)
}

// firstImage returns the first inline image of the first candidate.
func firstImage(resp *genai.GenerateContentResponse) (Image, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return Image{}, NewPermanentError(ErrNoImage)
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		mime := part.InlineData.MIMEType
		if mime == "" {
			mime = "image/png"
		}
		return Image{Data: part.InlineData.Data, MIMEType: mime}, nil
	}
	return Image{}, NewPermanentError(ErrNoImage)
}

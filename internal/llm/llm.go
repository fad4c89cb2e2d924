package llm

import (
	"context"
	"encoding/json"

	genai "google.golang.org/genai"
)

// StructuredRequest asks the model for one JSON document matching Schema.
type StructuredRequest struct {
	System string
	Prompt string
	Schema *genai.Schema
}

// Image is one inline image returned by an image session.
type Image struct {
	Data     []byte
	MIMEType string
}

// ImageSession is a continued generation context: every Send sees the
// prompts and images of the previous turns.
type ImageSession interface {
	Send(ctx context.Context, prompt string) (Image, error)
}

// Client is the generative oracle port.
type Client interface {
	Name() string
	GenerateJSON(ctx context.Context, req StructuredRequest) (json.RawMessage, error)
	StartImageSession(ctx context.Context) (ImageSession, error)
	Close() error
}

package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// DecodeValidated unmarshals a model response into dst and validates it
// against dst's `validate` tags. Failures are permanent: the same prompt is
// not expected to fix a malformed document.
func DecodeValidated[T any](raw json.RawMessage, dst *T) error {
	body := stripFences(string(raw))
	if body == "" {
		return NewPermanentError(ErrInvalidJSON)
	}
	if err := json.Unmarshal([]byte(body), dst); err != nil {
		return NewPermanentError(fmt.Errorf("%w: %v", ErrInvalidJSON, err))
	}
	if err := validate.Struct(dst); err != nil {
		return NewPermanentError(fmt.Errorf("llm: response failed validation: %w", err))
	}
	return nil
}

// Validate exposes the shared validator for values built outside DecodeValidated.
func Validate(v any) error {
	return validate.Struct(v)
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

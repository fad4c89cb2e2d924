// Package manifest extracts declared packages from dependency manifests.
package manifest

import (
	"path"
	"strings"
	"unicode/utf8"

	"vulncomics/internal/apperr"
	"vulncomics/internal/types"
)

// MaxSize is the default upload limit.
const MaxSize = 1 << 20

// Parser turns manifest text into packages for one ecosystem.
type Parser interface {
	Ecosystem() types.Ecosystem
	Parse(content string, filename string) (types.ParsedDependencies, error)
}

var (
	npmParser          Parser = packageJSONParser{}
	requirementsParser Parser = requirementsTxtParser{}
)

// ParserFor picks a parser by filename. Any *.json file is read as package.json.
func ParserFor(filename string) (Parser, error) {
	lower := strings.ToLower(path.Base(strings.ReplaceAll(filename, "\\", "/")))
	switch {
	case strings.HasSuffix(lower, ".json"):
		return npmParser, nil
	case strings.HasSuffix(lower, ".txt") && strings.Contains(lower, "requirements"):
		return requirementsParser, nil
	}
	return nil, apperr.InvalidFileType(filename)
}

// Parse validates size and encoding, then dispatches on filename.
// maxSize <= 0 uses MaxSize.
func Parse(content []byte, filename string, maxSize int64) (types.ParsedDependencies, error) {
	if maxSize <= 0 {
		maxSize = MaxSize
	}
	if int64(len(content)) > maxSize {
		return types.ParsedDependencies{}, apperr.FileTooLarge(maxSize)
	}
	p, err := ParserFor(filename)
	if err != nil {
		return types.ParsedDependencies{}, err
	}
	if !utf8.Valid(content) {
		return types.ParsedDependencies{}, apperr.ParseError("file must be valid UTF-8 text")
	}
	text := strings.TrimPrefix(string(content), "\ufeff")
	return p.Parse(text, filename)
}

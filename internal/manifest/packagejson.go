package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"vulncomics/internal/apperr"
	"vulncomics/internal/types"
)

type packageJSONParser struct{}

func (packageJSONParser) Ecosystem() types.Ecosystem { return types.EcosystemNPM }

// Parse reads dependencies then devDependencies, keeping document order.
func (p packageJSONParser) Parse(content, filename string) (types.ParsedDependencies, error) {
	fields, err := decodeObject([]byte(content))
	if err != nil {
		return types.ParsedDependencies{}, err
	}
	out := types.ParsedDependencies{
		Filename:    filename,
		Ecosystem:   types.EcosystemNPM,
		Packages:    []types.Package{},
		ParseErrors: []string{},
	}
	for _, section := range []string{"dependencies", "devDependencies"} {
		raw, ok := lookup(fields, section)
		if !ok {
			continue
		}
		deps, err := decodeObject(raw)
		if err != nil {
			out.ParseErrors = append(out.ParseErrors, fmt.Sprintf("'%s' field is not an object, skipping", section))
			continue
		}
		for _, d := range deps {
			var version string
			if err := json.Unmarshal(d.value, &version); err != nil {
				out.ParseErrors = append(out.ParseErrors, fmt.Sprintf("Skipping '%s': version is not a string", d.key))
				continue
			}
			out.Packages = append(out.Packages, types.Package{
				Name:      d.key,
				Version:   version,
				Ecosystem: types.EcosystemNPM,
			})
		}
	}
	return out, nil
}

type field struct {
	key   string
	value json.RawMessage
}

func lookup(fields []field, key string) (json.RawMessage, bool) {
	for _, f := range fields {
		if f.key == key {
			return f.value, true
		}
	}
	return nil, false
}

var errNotObject = errors.New("not a JSON object")

// decodeObject returns the members of a JSON object in document order. A
// repeated key keeps its first position and its last value.
func decodeObject(data []byte) ([]field, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, apperr.ParseError("invalid JSON: %v", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, apperr.Wrap(errNotObject, apperr.CodeParseError, "package.json must be a JSON object")
	}
	var out []field
	seen := map[string]int{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, apperr.ParseError("invalid JSON: %v", err)
		}
		key, _ := tok.(string)
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, apperr.ParseError("invalid JSON: %v", err)
		}
		if i, ok := seen[key]; ok {
			out[i].value = v
			continue
		}
		seen[key] = len(out)
		out = append(out, field{key: key, value: v})
	}
	if _, err := dec.Token(); err != nil {
		return nil, apperr.ParseError("invalid JSON: %v", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, apperr.ParseError("invalid JSON: trailing data")
	}
	return out, nil
}

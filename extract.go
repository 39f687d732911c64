package productgen

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

const fence = "```"

// ExtractJSON strips one level of Markdown fencing from a model response
// and checks that what remains is a JSON array. A block tagged json wins
// over an untagged one; unfenced text is used verbatim.
func ExtractJSON(raw string) (json.RawMessage, error) {
	text := raw

	if _, after, ok := strings.Cut(text, fence+"json"); ok {
		text, _, _ = strings.Cut(after, fence)
	} else if _, after, ok := strings.Cut(text, fence); ok {
		text, _, _ = strings.Cut(after, fence)
	}

	text = strings.TrimSpace(text)

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	if items == nil {
		return nil, fmt.Errorf("%w: expected a JSON array", ErrParse)
	}

	return json.RawMessage(text), nil
}

// ParseProducts extracts the JSON array from a model response and decodes
// every element as a ProductRecord.
func ParseProducts(raw string) ([]ProductRecord, error) {
	data, err := ExtractJSON(raw)
	if err != nil {
		return nil, err
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	products := make([]ProductRecord, len(items))
	for i, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 || item[0] != '{' {
			return nil, fmt.Errorf("%w: product %d is not an object", ErrParse, i)
		}

		if err := json.Unmarshal(item, &products[i]); err != nil {
			return nil, fmt.Errorf("%w: product %d: %w", ErrParse, i, err)
		}
	}

	return products, nil
}

// Preview returns at most n characters of s.
func Preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}

	return string(runes[:n]) + "..."
}

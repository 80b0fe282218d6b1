package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"anoa.com/realorai/pkg/apperror"
)

const (
	DefaultMaxTags   = 10
	DefaultMaxTagLen = 20
)

// TagShape is the detected shape of raw tag input.
type TagShape int

const (
	TagsNone    TagShape = iota // nil or blank
	TagsCSV                     // "a, b, c"
	TagsList                    // ["a", "b"] or a JSON string holding one
	TagsLabels                  // [{"label": "a"}] or a JSON string holding one
	TagsInvalid                 // anything else
)

// TagInput is raw tag input after shape detection.
type TagInput struct {
	Shape TagShape
	Items []string
}

// ParseTagInput classifies raw tag input. Accepted shapes are a JSON array
// string, a comma separated string, []string, and []any holding strings or
// objects with a "label" field.
func ParseTagInput(raw any) TagInput {
	switch v := raw.(type) {
	case nil:
		return TagInput{Shape: TagsNone}
	case string:
		return parseTagString(v)
	case []string:
		return TagInput{Shape: TagsList, Items: v}
	case []map[string]any:
		items := make([]any, len(v))
		for i := range v {
			items[i] = v[i]
		}
		return parseTagSlice(items)
	case []any:
		return parseTagSlice(v)
	default:
		return TagInput{Shape: TagsInvalid}
	}
}

func parseTagString(s string) TagInput {
	s = strings.TrimSpace(s)
	if s == "" {
		return TagInput{Shape: TagsNone}
	}

	if strings.HasPrefix(s, "[") {
		var items []any
		if err := json.Unmarshal([]byte(s), &items); err != nil {
			return TagInput{Shape: TagsInvalid}
		}
		return parseTagSlice(items)
	}

	return TagInput{Shape: TagsCSV, Items: strings.Split(s, ",")}
}

func parseTagSlice(items []any) TagInput {
	if len(items) == 0 {
		return TagInput{Shape: TagsNone}
	}

	out := make([]string, 0, len(items))
	shape := TagsList
	for _, item := range items {
		switch v := item.(type) {
		case string:
			out = append(out, v)
		case map[string]any:
			label, ok := v["label"].(string)
			if !ok {
				return TagInput{Shape: TagsInvalid}
			}
			shape = TagsLabels
			out = append(out, label)
		default:
			return TagInput{Shape: TagsInvalid}
		}
	}
	return TagInput{Shape: shape, Items: out}
}

// Normalize trims every tag, drops blanks and keeps at most DefaultMaxTags.
// Unknown shapes normalize to an empty list.
func (in TagInput) Normalize() []string {
	return in.normalize(DefaultMaxTags)
}

func (in TagInput) normalize(limit int) []string {
	tags := make([]string, 0, len(in.Items))
	if in.Shape == TagsNone || in.Shape == TagsInvalid {
		return tags
	}

	for _, item := range in.Items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		tags = append(tags, item)
		if len(tags) == limit {
			break
		}
	}
	return tags
}

// NormalizeTags is ParseTagInput followed by Normalize.
func NormalizeTags(raw any) []string {
	return ParseTagInput(raw).Normalize()
}

// ValidateTags fails when a tag is longer than maxLen characters.
func ValidateTags(tags []string, maxLen int) error {
	for _, tag := range tags {
		if utf8.RuneCountInString(tag) > maxLen {
			return fmt.Errorf("tag %q is longer than %d characters: %w", tag, maxLen, apperror.ErrInvalidTags)
		}
	}
	return nil
}

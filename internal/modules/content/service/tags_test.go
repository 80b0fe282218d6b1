package service

import (
	"strings"
	"testing"

	"anoa.com/realorai/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTagInput_Shapes(t *testing.T) {
	tests := []struct {
		name  string
		raw   any
		shape TagShape
		want  []string
	}{
		{"nil", nil, TagsNone, []string{}},
		{"blank string", "   ", TagsNone, []string{}},
		{"csv", " cat, dog ,, bird", TagsCSV, []string{"cat", "dog", "bird"}},
		{"json string list", `["cat"," dog "]`, TagsList, []string{"cat", "dog"}},
		{"json label list", `[{"label":"cat"},{"label":"dog"}]`, TagsLabels, []string{"cat", "dog"}},
		{"string slice", []string{"a", " ", "b"}, TagsList, []string{"a", "b"}},
		{"any slice of labels", []any{map[string]any{"label": "x"}, "y"}, TagsLabels, []string{"x", "y"}},
		{"map slice", []map[string]any{{"label": "x"}}, TagsLabels, []string{"x"}},
		{"number", 42, TagsInvalid, []string{}},
		{"broken json", `["cat"`, TagsInvalid, []string{}},
		{"label without string", []any{map[string]any{"label": 3}}, TagsInvalid, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ParseTagInput(tt.raw)
			assert.Equal(t, tt.shape, in.Shape)
			assert.Equal(t, tt.want, in.Normalize())
		})
	}
}

func TestNormalizeTags_CapsAtTen(t *testing.T) {
	raw := strings.Repeat("t,", 15)
	tags := NormalizeTags(raw)
	assert.Len(t, tags, DefaultMaxTags)
}

func TestValidateTags(t *testing.T) {
	require.NoError(t, ValidateTags([]string{"short", strings.Repeat("é", 20)}, DefaultMaxTagLen))

	err := ValidateTags([]string{strings.Repeat("x", 21)}, DefaultMaxTagLen)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrInvalidTags)
	assert.Equal(t, apperror.CodeInvalidTags, apperror.MapErrorToCode(err))
}

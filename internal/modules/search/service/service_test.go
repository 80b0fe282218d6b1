package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter ContentFilter
		want   string
	}{
		{
			name: "visibility only",
			want: `is_active = true AND status = "approved"`,
		},
		{
			name:   "with facets",
			filter: ContentFilter{Category: "animals", MediaType: "image"},
			want:   `is_active = true AND status = "approved" AND category = "animals" AND media_type = "image"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, buildFilter(tt.filter))
		})
	}
}

package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestURLClassifier_IsDirectFile(t *testing.T) {
	c := NewURLClassifier(nil, nil)

	tests := []struct {
		name   string
		url    string
		direct bool
	}{
		{
			name:   "plain mp4",
			url:    "https://cdn.example.com/videos/clip.mp4",
			direct: true,
		},
		{
			name:   "extension followed by query",
			url:    "https://cdn.example.com/videos/clip.mp4?token=abc123",
			direct: true,
		},
		{
			name:   "extension followed by path segment",
			url:    "https://cdn.example.com/clip.mp4/stream",
			direct: true,
		},
		{
			name:   "uppercase extension",
			url:    "https://cdn.example.com/videos/CLIP.MP4",
			direct: true,
		},
		{
			name:   "download marker in query",
			url:    "https://example.com/file?download=1",
			direct: true,
		},
		{
			name:   "download_filename marker",
			url:    "https://example.com/get?download_filename=movie.mp4",
			direct: true,
		},
		{
			name:   "image extension",
			url:    "https://example.com/photo.jpg",
			direct: true,
		},
		{
			name:   "percent-encoded path",
			url:    "https://cdn.example.com/my%20clip.webm",
			direct: true,
		},
		{
			name:   "video page",
			url:    "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			direct: false,
		},
		{
			name:   "profile page",
			url:    "https://example.com/user/gallery",
			direct: false,
		},
		{
			name:   "extension in the middle of a segment",
			url:    "https://example.com/mp4-tutorials",
			direct: false,
		},
		{
			name:   "not a url",
			url:    "://bad",
			direct: false,
		},
		{
			name:   "empty",
			url:    "",
			direct: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.direct, c.IsDirectFile(tt.url), tt.url)
		})
	}
}

func TestURLClassifier_CustomSets(t *testing.T) {
	c := NewURLClassifier([]string{".ts"}, []string{"dl="})

	assert.True(t, c.IsDirectFile("https://example.com/segment.ts"))
	assert.True(t, c.IsDirectFile("https://example.com/file?dl=1"))

	// defaults are replaced, not merged
	assert.False(t, c.IsDirectFile("https://example.com/clip.mp4"))
	assert.False(t, c.IsDirectFile("https://example.com/file?download=1"))
}

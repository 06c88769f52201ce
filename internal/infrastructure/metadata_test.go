package infrastructure

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectContentType(t *testing.T) {
	tests := []struct {
		name     string
		metadata map[string]interface{}
		expected ContentType
	}{
		{
			name:     "playlist is a gallery",
			metadata: map[string]interface{}{"_type": "playlist"},
			expected: ContentGallery,
		},
		{
			name:     "image extension",
			metadata: map[string]interface{}{"ext": "jpg"},
			expected: ContentImage,
		},
		{
			name: "no codecs at all",
			metadata: map[string]interface{}{
				"ext": "bin", "vcodec": "none", "acodec": "none",
			},
			expected: ContentImage,
		},
		{
			name: "audio only treated as video",
			metadata: map[string]interface{}{
				"vcodec": "none", "acodec": "mp4a.40.2",
			},
			expected: ContentVideo,
		},
		{
			name: "regular video",
			metadata: map[string]interface{}{
				"ext": "mp4", "vcodec": "avc1", "acodec": "mp4a.40.2",
				"duration": float64(120),
			},
			expected: ContentVideo,
		},
		{
			name: "formats without any video entries",
			metadata: map[string]interface{}{
				"vcodec": "avc1",
				"formats": []interface{}{
					map[string]interface{}{"format_id": "thumb", "vcodec": "none"},
				},
			},
			expected: ContentImage,
		},
		{
			name:     "empty metadata defaults to video",
			metadata: map[string]interface{}{"vcodec": "avc1"},
			expected: ContentVideo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DetectContentType(tt.metadata))
		})
	}
}

func TestExtractVideoFormats(t *testing.T) {
	metadata := map[string]interface{}{
		"formats": []interface{}{
			map[string]interface{}{
				"format_id": "137", "ext": "mp4", "height": float64(1080),
				"width": float64(1920), "vcodec": "avc1", "acodec": "none",
				"filesize": float64(1000000), "url": "https://cdn.example.com/137",
			},
			map[string]interface{}{
				// no height/codec, but the id marks it as a stream
				"format_id":    "hls-720",
				"ext":          "mp4",
				"manifest_url": "https://cdn.example.com/master.m3u8",
			},
			map[string]interface{}{
				// audio only, no video hints
				"format_id": "audio-high", "ext": "m4a", "vcodec": "none",
			},
			map[string]interface{}{
				"format_id": "thumb-small", "ext": "jpg",
			},
		},
	}

	formats := ExtractVideoFormats(metadata)
	require.Len(t, formats, 2)

	assert.Equal(t, "137", formats[0]["format_id"])
	assert.Equal(t, "https://cdn.example.com/137", formats[0]["url"])
	assert.Equal(t, float64(1080), formats[0]["height"])

	assert.Equal(t, "hls-720", formats[1]["format_id"])
	assert.Equal(t, "https://cdn.example.com/master.m3u8", formats[1]["manifest_url"])
	assert.NotContains(t, formats[1], "url")
}

func TestExtractVideoFormats_NoFormats(t *testing.T) {
	assert.Empty(t, ExtractVideoFormats(map[string]interface{}{}))
	assert.Empty(t, ExtractVideoFormats(map[string]interface{}{"formats": []interface{}{}}))
}

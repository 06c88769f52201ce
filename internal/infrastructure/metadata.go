package infrastructure

import "strings"

// ContentType classifies what kind of media a probed URL resolves to.
type ContentType string

const (
	ContentVideo   ContentType = "video"
	ContentImage   ContentType = "image"
	ContentGallery ContentType = "gallery"
)

var imageExtensions = map[string]bool{
	"jpg": true, "jpeg": true, "png": true, "gif": true, "webp": true, "bmp": true,
}

// DetectContentType infers the content type from a tool metadata document.
// The tool reports playlists via _type; images show up as entries with no
// codecs, no duration and no video formats. Video is the default because it
// is by far the most common outcome.
func DetectContentType(metadata map[string]interface{}) ContentType {
	if t, _ := metadata["_type"].(string); t == "playlist" {
		return ContentGallery
	}

	if ext, _ := metadata["ext"].(string); imageExtensions[ext] {
		return ContentImage
	}

	vcodec, _ := metadata["vcodec"].(string)
	acodec, _ := metadata["acodec"].(string)
	if vcodec == "none" || vcodec == "" {
		if acodec == "none" || acodec == "" {
			return ContentImage
		}
		// Audio-only content is treated as video downstream.
		return ContentVideo
	}

	formats, _ := metadata["formats"].([]interface{})
	hasVideoFormat := false
	for _, f := range formats {
		fm, ok := f.(map[string]interface{})
		if !ok {
			continue
		}
		if h, ok := fm["height"].(float64); ok && h > 0 {
			hasVideoFormat = true
			break
		}
		if vc, ok := fm["vcodec"].(string); ok && vc != "" && vc != "none" {
			hasVideoFormat = true
			break
		}
	}
	if !hasVideoFormat && len(formats) > 0 {
		return ContentImage
	}

	return ContentVideo
}

// videoFormatKeywords mark format ids that suggest video streams even when
// height/codec fields are absent (common for HLS manifests).
var videoFormatKeywords = []string{"hls", "mp4", "video", "dash", "http"}

// ExtractVideoFormats filters the tool's format list down to entries that
// plausibly carry video, keeping the URL fields a downstream downloader
// needs for HLS streams.
func ExtractVideoFormats(metadata map[string]interface{}) []map[string]interface{} {
	raw, _ := metadata["formats"].([]interface{})
	var formats []map[string]interface{}

	for _, f := range raw {
		fm, ok := f.(map[string]interface{})
		if !ok {
			continue
		}

		height, _ := fm["height"].(float64)
		vcodec, _ := fm["vcodec"].(string)
		formatID, _ := fm["format_id"].(string)

		isVideo := height > 0 || (vcodec != "" && vcodec != "none")
		if !isVideo && formatID != "" {
			lower := strings.ToLower(formatID)
			for _, kw := range videoFormatKeywords {
				if strings.Contains(lower, kw) {
					isVideo = true
					break
				}
			}
		}
		if !isVideo {
			continue
		}

		entry := map[string]interface{}{
			"format_id": fm["format_id"],
			"ext":       fm["ext"],
			"height":    fm["height"],
			"width":     fm["width"],
			"filesize":  fm["filesize"],
			"vcodec":    fm["vcodec"],
			"acodec":    fm["acodec"],
		}
		for _, key := range []string{"url", "manifest_url", "fragment_base_url"} {
			if v, ok := fm[key]; ok && v != nil {
				entry[key] = v
			}
		}
		formats = append(formats, entry)
	}

	return formats
}

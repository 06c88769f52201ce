package domain

import (
	"net/url"
	"strings"
)

// DefaultDirectExtensions are the path suffixes treated as directly fetchable
// media files.
var DefaultDirectExtensions = []string{
	".mp4", ".webm", ".mkv", ".avi", ".mov", ".flv", ".wmv", ".m4v",
	".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp",
}

// DefaultDownloadMarkers are query-string markers indicating a forced
// download regardless of path shape.
var DefaultDownloadMarkers = []string{"download=", "download_filename="}

// URLClassifier decides whether a URL names a retrievable file directly or
// needs the extraction tool. The extension and marker sets are injectable
// because the "no recognized marker means needs extraction" default is a
// heuristic, not a guarantee.
type URLClassifier struct {
	Extensions []string
	Markers    []string
}

// NewURLClassifier builds a classifier, falling back to the default sets for
// empty slices.
func NewURLClassifier(extensions, markers []string) *URLClassifier {
	c := &URLClassifier{Extensions: extensions, Markers: markers}
	if len(c.Extensions) == 0 {
		c.Extensions = DefaultDirectExtensions
	}
	if len(c.Markers) == 0 {
		c.Markers = DefaultDownloadMarkers
	}
	return c
}

// IsDirectFile reports whether rawURL points at a media file fetchable with a
// plain GET. Anything unrecognized defaults to needs-extraction.
func (c *URLClassifier) IsDirectFile(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	path := strings.ToLower(parsed.EscapedPath())
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}

	for _, ext := range c.Extensions {
		if strings.HasSuffix(path, ext) ||
			strings.Contains(path, ext+"?") ||
			strings.Contains(path, ext+"/") {
			return true
		}
	}

	query := strings.ToLower(parsed.RawQuery)
	for _, marker := range c.Markers {
		if strings.Contains(query, marker) {
			return true
		}
	}

	return false
}

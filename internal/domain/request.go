package domain

// Quality is the caller's resolution preference for extracted downloads.
type Quality string

const (
	QualityBest  Quality = "best"
	Quality1080p Quality = "1080p"
	Quality720p  Quality = "720p"
	Quality480p  Quality = "480p"
)

// ValidQuality checks if a quality selector is one of the known values.
func ValidQuality(q Quality) bool {
	return q == QualityBest || q == Quality1080p || q == Quality720p || q == Quality480p
}

// DownloadRequest describes one download task invocation. It is built once
// from the task args and never mutated afterwards.
type DownloadRequest struct {
	URL         string  `mapstructure:"url" json:"url"`
	FallbackURL string  `mapstructure:"fallback_url" json:"fallback_url,omitempty"`
	OutputDir   string  `mapstructure:"output_dir" json:"output_dir"`
	Filename    string  `mapstructure:"filename" json:"filename,omitempty"`
	Quality     Quality `mapstructure:"quality" json:"quality"`
	Proxy       string  `mapstructure:"proxy" json:"proxy,omitempty"`
	ResultID    string  `mapstructure:"result_id" json:"result_id,omitempty"`
	ProgressID  string  `mapstructure:"progress_id" json:"progress_id,omitempty"`
}

// MetadataRequest describes one metadata extraction invocation.
type MetadataRequest struct {
	URL      string `mapstructure:"url" json:"url"`
	Proxy    string `mapstructure:"proxy" json:"proxy,omitempty"`
	ResultID string `mapstructure:"result_id" json:"result_id,omitempty"`
}

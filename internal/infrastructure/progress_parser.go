package infrastructure

import (
	"regexp"
	"strconv"
)

// ProgressUpdate is one parsed progress line from the extraction tool.
// DownloadedBytes is derived from the percentage, which is good enough for
// display but never a basis for resumption.
type ProgressUpdate struct {
	Percentage      float64
	DownloadedBytes int64
	TotalBytes      int64
	Speed           int64 // bytes/s, -1 when the line carried no speed
	ETA             int   // seconds, -1 when the line carried no ETA
}

// unitMultipliers maps size-unit suffixes to byte counts. Binary units are
// base 1024, decimal units base 1000.
var unitMultipliers = map[string]int64{
	"KiB": 1024,
	"MiB": 1024 * 1024,
	"GiB": 1024 * 1024 * 1024,
	"KB":  1000,
	"MB":  1000 * 1000,
	"GB":  1000 * 1000 * 1000,
}

// yt-dlp progress lines look like:
//
//	[download]  50.0% of 100.00MiB at 5.00MiB/s ETA 00:10
//	[download]  50.0% of ~100.00MiB at 5.00MiB/s ETA 00:10 (frag 5/10)
var (
	progressPattern = regexp.MustCompile(`\[download\]\s+(\d+\.?\d*)%\s+of\s+~?(\d+\.?\d*)(KiB|MiB|GiB|KB|MB|GB)`)
	speedPattern    = regexp.MustCompile(`at\s+(\d+\.?\d*)(KiB|MiB|GiB|KB|MB|GB)/s`)
	etaPattern      = regexp.MustCompile(`ETA\s+(\d+):(\d+)`)
)

// ParseProgressLine converts one line of tool output into a ProgressUpdate.
// The second return is false for any line that is not a progress line, which
// is not an error condition, merely "no update this line".
func ParseProgressLine(line string) (*ProgressUpdate, bool) {
	m := progressPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}

	percentage, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, false
	}
	sizeValue, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, false
	}

	totalBytes := int64(sizeValue * float64(unitMultipliers[m[3]]))
	update := &ProgressUpdate{
		Percentage:      percentage,
		DownloadedBytes: int64(float64(totalBytes) * percentage / 100),
		TotalBytes:      totalBytes,
		Speed:           -1,
		ETA:             -1,
	}

	if sm := speedPattern.FindStringSubmatch(line); sm != nil {
		if speedValue, err := strconv.ParseFloat(sm[1], 64); err == nil {
			update.Speed = int64(speedValue * float64(unitMultipliers[sm[2]]))
		}
	}

	if em := etaPattern.FindStringSubmatch(line); em != nil {
		minutes, _ := strconv.Atoi(em[1])
		seconds, _ := strconv.Atoi(em[2])
		update.ETA = minutes*60 + seconds
	}

	return update, true
}

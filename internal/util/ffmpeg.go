package util

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoInfo is the subset of ffprobe output kept for lessons.
type VideoInfo struct {
	DurationSeconds int    `json:"durationSeconds"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	Format          string `json:"format"`
}

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration   string `json:"duration"`
		FormatName string `json:"format_name"`
	} `json:"format"`
}

// ProbeVideo runs ffprobe on a local file.
func ProbeVideo(path string) (*VideoInfo, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return nil, fmt.Errorf("probe video: %w", err)
	}
	return parseProbeOutput(out)
}

func parseProbeOutput(raw string) (*VideoInfo, error) {
	var result probeOutput
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("decode probe output: %w", err)
	}

	info := &VideoInfo{Format: result.Format.FormatName}
	for _, s := range result.Streams {
		if s.CodecType == "video" {
			info.Width, info.Height = s.Width, s.Height
			break
		}
	}
	if info.Width == 0 && info.Height == 0 {
		return nil, fmt.Errorf("%w: no video stream", ErrInvalidFile)
	}

	if d, err := strconv.ParseFloat(result.Format.Duration, 64); err == nil {
		info.DurationSeconds = int(math.Round(d))
	}
	return info, nil
}

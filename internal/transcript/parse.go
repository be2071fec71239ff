package transcript

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	// 00:01:02.345 --> 00:01:04.000 (VTT, dot milliseconds)
	reVTTCue = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}\.\d{3})\s+-->\s+(\d{2}):(\d{2}):(\d{2}\.\d{3})`)
	// 00:01:02,345 --> 00:01:04,000 (SRT, comma milliseconds)
	reSRTCue = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3})\s+-->\s+(\d{2}):(\d{2}):(\d{2}),(\d{3})`)
	reTag    = regexp.MustCompile(`<[^>]+>`)
	reDigits = regexp.MustCompile(`^\d+$`)
)

// ParseVTT parses WebVTT subtitle content into ordered segments.
// Inline styling tags are stripped.
func ParseVTT(content string) []Segment {
	lines := strings.Split(content, "\n")
	var segments []Segment

	for i := 0; i < len(lines); i++ {
		m := reVTTCue.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			continue
		}

		start := hmsToSeconds(m[1], m[2], m[3])
		end := hmsToSeconds(m[4], m[5], m[6])

		var textLines []string
		for i++; i < len(lines) && strings.TrimSpace(lines[i]) != ""; i++ {
			textLines = append(textLines, strings.TrimSpace(lines[i]))
		}

		text := strings.TrimSpace(reTag.ReplaceAllString(strings.Join(textLines, " "), ""))
		if text != "" {
			segments = append(segments, Segment{Start: start, End: end, Text: text})
		}
	}

	return Normalize(segments)
}

// ParseSRT parses SRT subtitle content into ordered segments. Sequence
// numbers are skipped; consecutive text lines of one cue are merged.
func ParseSRT(content string) []Segment {
	lines := strings.Split(content, "\n")
	var segments []Segment

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" || reDigits.MatchString(line) {
			continue
		}

		m := reSRTCue.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		start := hmsToSeconds(m[1], m[2], m[3]+"."+m[4])
		end := hmsToSeconds(m[5], m[6], m[7]+"."+m[8])

		var textLines []string
		for i++; i < len(lines) && strings.TrimSpace(lines[i]) != ""; i++ {
			textLines = append(textLines, strings.TrimSpace(lines[i]))
		}

		text := strings.Join(textLines, " ")
		if text != "" {
			segments = append(segments, Segment{Start: start, End: end, Text: text})
		}
	}

	return Normalize(segments)
}

func hmsToSeconds(hours, minutes, seconds string) float64 {
	h, _ := strconv.Atoi(hours)
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.ParseFloat(seconds, 64)
	return float64(h)*3600 + float64(m)*60 + s
}

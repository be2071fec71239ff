package summarizer

import (
	"strings"

	"video-extract/internal/slides"
)

// ParseResponse extracts the TITLE / SUMMARY / KEY POINTS / TOPICS
// sections from a model response. Missing sections get placeholder
// values rather than failing the slide.
func ParseResponse(text string) *slides.Summary {
	result := &slides.Summary{}

	section := ""
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(line, "TITLE:"):
			result.Title = strings.TrimSpace(strings.TrimPrefix(line, "TITLE:"))
			section = "title"
		case strings.HasPrefix(line, "SUMMARY:"):
			result.Body = strings.TrimSpace(strings.TrimPrefix(line, "SUMMARY:"))
			section = "summary"
		case strings.HasPrefix(line, "KEY POINTS:"):
			section = "key_points"
		case strings.HasPrefix(line, "TOPICS:"):
			for _, topic := range strings.Split(strings.TrimPrefix(line, "TOPICS:"), ",") {
				if topic = strings.TrimSpace(topic); topic != "" {
					result.Topics = append(result.Topics, topic)
				}
			}
			section = "topics"
		case section == "summary" && line != "" && !strings.HasPrefix(line, "-"):
			if result.Body != "" {
				result.Body += " " + line
			} else {
				result.Body = line
			}
		case section == "key_points" && strings.HasPrefix(line, "-"):
			if point := strings.TrimSpace(strings.TrimPrefix(line, "-")); point != "" {
				result.KeyPoints = append(result.KeyPoints, point)
			}
		}
	}

	if result.Title == "" {
		result.Title = "Slide Summary"
	}
	if result.Body == "" {
		result.Body = "No summary available."
	}
	return result
}

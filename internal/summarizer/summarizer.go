package summarizer

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"video-extract/internal/apierr"
	"video-extract/internal/slides"
)

const promptHeader = `Analyze this slide and the associated content to create a comprehensive summary.

SLIDE CONTENT:
`

const promptFormat = `

Please provide a structured analysis in the following format:

TITLE: [A clear, descriptive title for this slide]

SUMMARY: [A concise 2-3 sentence summary of the main content and message]

KEY POINTS:
- [Main point 1]
- [Main point 2]
- [Main point 3, if applicable]

TOPICS: [List of 2-4 main topics/themes covered, separated by commas]

Focus on the most important information and ensure the summary is useful for someone who hasn't seen the original content.`

// Rough token cost of an inline image at Gemini's fixed per-image rate.
const imageTokenEstimate = 258

// Summarize sends one slide to Gemini and parses the structured
// response. Rotates API keys on rate-limit and quota errors before
// surfacing the failure to the retry layer.
func (s *implSummarizer) Summarize(ctx context.Context, slide *slides.Slide) (*slides.Summary, int, error) {
	contents, err := s.buildContents(slide)
	if err != nil {
		return nil, 0, err
	}

	attempts := len(s.apiKeys)
	var lastErr error

	for range attempts {
		key := s.nextKey()

		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  key,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			lastErr = fmt.Errorf("create client: %w", err)
			s.rotateKey()
			continue
		}

		result, err := client.Models.GenerateContent(ctx, s.model, contents, nil)
		if err != nil {
			classified := Classify(err)
			if apierr.IsKind(classified, apierr.KindRateLimited) || apierr.IsKind(classified, apierr.KindQuotaExhausted) {
				s.logger.Warn(ctx, "API key rate limited, rotating")
				s.rotateKey()
				lastErr = classified
				continue
			}
			return nil, 0, classified
		}

		text := collectText(result)
		if text == "" {
			return nil, 0, apierr.New(apierr.KindTransient, "empty response from Gemini")
		}

		tokens := 0
		if result.UsageMetadata != nil {
			tokens = int(result.UsageMetadata.TotalTokenCount)
		}
		return ParseResponse(text), tokens, nil
	}

	return nil, 0, fmt.Errorf("all API keys exhausted: %w", lastErr)
}

// EstimateTokens approximates the request cost before the call is
// made so the budget tracker can reserve ahead of time. Text counts
// at roughly four characters per token.
func (s *implSummarizer) EstimateTokens(slide *slides.Slide) int {
	chars := len(promptHeader) + len(promptFormat) + len(slide.TranscriptText()) + len(slide.OCRText)
	tokens := chars / 4
	if s.useVision {
		tokens += imageTokenEstimate
	}
	if tokens < 1 {
		tokens = 1
	}
	return tokens
}

func (s *implSummarizer) buildContents(slide *slides.Slide) ([]*genai.Content, error) {
	var b strings.Builder
	b.WriteString(promptHeader)
	if text := slide.TranscriptText(); text != "" {
		b.WriteString("\nTranscript (what was said): " + text)
	}
	if slide.OCRText != "" {
		b.WriteString("\nText detected on slide: " + slide.OCRText)
	}
	b.WriteString(promptFormat)
	prompt := b.String()

	if !s.useVision {
		return genai.Text(prompt), nil
	}

	imageData, err := os.ReadFile(slide.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("read slide image: %w", err)
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(imageData, "image/png"),
	}
	return []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, nil
}

func (s *implSummarizer) nextKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.apiKeys[s.currentKey]
}

func (s *implSummarizer) rotateKey() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
}

func collectText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var text string
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text
}

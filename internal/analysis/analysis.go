// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package analysis provides deterministic text heuristics used by both
// pipelines: insight extraction, extractive summarization, and sentiment
// tallying. All functions are pure; identical input yields identical output.
package analysis

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// minInsightContent is the content length below which extraction
	// returns a placeholder instead of scanning sentences.
	minInsightContent = 50

	// minSummaryContent is the content length below which summarization
	// returns a placeholder.
	minSummaryContent = 100

	maxInsights         = 10
	maxFallbackInsights = 5
)

// InsufficientContent is returned as the sole insight when the input is too
// short to analyze.
const InsufficientContent = "Insufficient content for insight extraction"

// insightIndicators are phrases that mark a sentence as a likely finding.
var insightIndicators = []string{
	"according to", "research shows", "study finds", "data indicates",
	"analysis reveals", "evidence suggests", "findings show",
	"results demonstrate", "conclusion", "important", "significant",
	"key finding", "discovery", "breakthrough", "trend", "pattern",
}

// summaryKeywords boost a sentence's score during summarization.
var summaryKeywords = []string{
	"important", "significant", "key", "main", "primary", "major",
	"research", "study", "analysis", "finding", "result", "conclusion",
	"data", "evidence", "shows", "indicates", "suggests", "reveals",
}

// InsightReport holds extracted insights and extraction metadata.
type InsightReport struct {
	// Insights lists the extracted sentences, deduplicated, at most 10.
	Insights []string

	// Count is the number of genuine insights found. It is zero when the
	// report carries only the insufficient-content placeholder.
	Count int

	// Topic echoes the topic context passed by the caller.
	Topic string

	// ContentLen is the length of the analyzed content.
	ContentLen int
}

// ExtractInsights scans content for sentences carrying insight indicator
// phrases and returns up to 10 deduplicated matches. When no indicator
// hits, it falls back to sentences containing digits (up to 5). Content
// shorter than 50 characters yields a single placeholder with Count 0.
func ExtractInsights(content, topic string) InsightReport {
	trimmed := strings.TrimSpace(content)
	if len(trimmed) < minInsightContent {
		return InsightReport{
			Insights:   []string{InsufficientContent},
			Count:      0,
			Topic:      topic,
			ContentLen: len(content),
		}
	}

	sentences := splitSentences(content, 20)

	var insights []string
	seen := make(map[string]bool)
	for _, sentence := range sentences {
		lower := strings.ToLower(sentence)
		for _, indicator := range insightIndicators {
			if strings.Contains(lower, indicator) {
				capitalized := capitalize(sentence)
				if !seen[capitalized] {
					seen[capitalized] = true
					insights = append(insights, capitalized)
				}
				break
			}
		}
		if len(insights) >= maxInsights {
			break
		}
	}

	if len(insights) == 0 {
		insights = numericFallback(content)
	}

	if len(insights) == 0 {
		return InsightReport{
			Insights:   []string{"No clear insights extracted from content"},
			Count:      1,
			Topic:      topic,
			ContentLen: len(content),
		}
	}

	return InsightReport{
		Insights:   insights,
		Count:      len(insights),
		Topic:      topic,
		ContentLen: len(content),
	}
}

// numericFallback returns up to 5 early sentences that contain digits,
// used when no indicator phrase matched.
func numericFallback(content string) []string {
	sentences := splitSentences(content, 0)
	if len(sentences) > 20 {
		sentences = sentences[:20]
	}

	var insights []string
	for _, sentence := range sentences {
		if len(sentence) > 30 && containsDigit(sentence) {
			insights = append(insights, capitalize(sentence))
			if len(insights) >= maxFallbackInsights {
				break
			}
		}
	}
	return insights
}

// SummaryUnavailable is returned when the input is too short to summarize.
const SummaryUnavailable = "Content too short for meaningful summary."

// Summarize produces an extractive summary of at most maxSentences
// sentences, restored to their original order. Sentences are scored by
// digits (+2), keyword hits (+1 each), a positional bonus for interior
// sentences (+1), and a length-band bonus for 50-200 character sentences
// (+1). Content shorter than 100 characters yields a fixed placeholder.
func Summarize(content string, maxSentences int) string {
	if len(strings.TrimSpace(content)) < minSummaryContent {
		return SummaryUnavailable
	}

	sentences := splitSentences(content, 20)
	if len(sentences) == 0 {
		return SummaryUnavailable
	}
	if len(sentences) <= maxSentences {
		return strings.Join(sentences, ". ") + "."
	}

	type scored struct {
		index int
		score int
	}
	ranked := make([]scored, len(sentences))
	for i, sentence := range sentences {
		score := 0
		if containsDigit(sentence) {
			score += 2
		}
		lower := strings.ToLower(sentence)
		for _, kw := range summaryKeywords {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if i > 0 && i < len(sentences)-1 {
			score++
		}
		if len(sentence) >= 50 && len(sentence) <= 200 {
			score++
		}
		ranked[i] = scored{index: i, score: score}
	}

	// Stable sort keeps earlier sentences ahead on ties, so the selection
	// is deterministic.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	selected := ranked[:maxSentences]
	sort.Slice(selected, func(i, j int) bool {
		return selected[i].index < selected[j].index
	})

	parts := make([]string, 0, len(selected))
	for _, s := range selected {
		parts = append(parts, sentences[s.index])
	}
	return strings.Join(parts, ". ") + "."
}

// Sentiment holds the outcome of keyword sentiment tallying.
type Sentiment struct {
	// Label is "positive", "negative", or "neutral".
	Label string

	// Confidence is the majority fraction of sentiment hits, or 0.5 for a
	// neutral result with no clear indicators.
	Confidence float64

	// PositiveHits and NegativeHits count matched indicator words.
	PositiveHits int
	NegativeHits int
}

var positiveWords = []string{
	"good", "great", "excellent", "positive", "beneficial", "improvement",
	"success", "effective", "promising", "breakthrough", "advance", "progress",
}

var negativeWords = []string{
	"bad", "poor", "negative", "harmful", "decline", "failure", "ineffective",
	"problem", "issue", "concern", "risk", "challenge", "limitation",
}

// AnalyzeSentiment tallies positive and negative indicator words and
// labels the content by the majority side. With no hits at all the result
// is neutral with confidence 0.5.
func AnalyzeSentiment(content string) Sentiment {
	if strings.TrimSpace(content) == "" {
		return Sentiment{Label: "neutral", Confidence: 0}
	}

	lower := strings.ToLower(content)
	var pos, neg int
	for _, w := range positiveWords {
		if strings.Contains(lower, w) {
			pos++
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lower, w) {
			neg++
		}
	}

	total := pos + neg
	switch {
	case total == 0:
		return Sentiment{Label: "neutral", Confidence: 0.5}
	case pos > neg:
		return Sentiment{Label: "positive", Confidence: float64(pos) / float64(total), PositiveHits: pos, NegativeHits: neg}
	case neg > pos:
		return Sentiment{Label: "negative", Confidence: float64(neg) / float64(total), PositiveHits: pos, NegativeHits: neg}
	default:
		return Sentiment{Label: "neutral", Confidence: 0.5, PositiveHits: pos, NegativeHits: neg}
	}
}

// splitSentences splits content on periods and keeps trimmed sentences
// longer than minLen characters.
func splitSentences(content string, minLen int) []string {
	raw := strings.Split(content, ".")
	sentences := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if len(s) > minLen {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

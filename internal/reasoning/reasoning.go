// Package reasoning holds the deterministic heuristics used when no language
// model is reachable: extractive summarization, keyword classification, and
// canned explanation and chat fallbacks.
package reasoning

import (
	"fmt"
	"math"
	"strings"
)

const summaryMaxLen = 200

// Summary is the result of extractive summarization.
type Summary struct {
	Summary           string  `json:"summary"`
	OriginalLength    int     `json:"original_length"`
	SummaryLength     int     `json:"summary_length"`
	CompletenessScore float64 `json:"completeness_score"`
	ConfidenceScore   float64 `json:"confidence_score"`
}

// Summarize joins the first three sentences longer than 20 characters,
// capped at 200 characters with an ellipsis.
func Summarize(content string) Summary {
	var sentences []string
	for _, s := range strings.Split(content, ".") {
		if s = strings.TrimSpace(s); len(s) > 20 {
			sentences = append(sentences, s)
		}
	}

	var summary string
	if len(sentences) == 0 {
		summary = content
		if len(summary) > summaryMaxLen {
			summary = summary[:summaryMaxLen]
		}
		summary += "..."
	} else {
		if len(sentences) > 3 {
			sentences = sentences[:3]
		}
		summary = strings.Join(sentences, ". ")
		if len(summary) > summaryMaxLen {
			summary = summary[:summaryMaxLen] + "..."
		}
	}

	completeness := 1.0
	if denom := float64(len(content)) * 0.3; denom > 1 {
		completeness = float64(len(summary)) / denom
		if completeness > 1 {
			completeness = 1
		}
	}

	return Summary{
		Summary:           summary,
		OriginalLength:    len(content),
		SummaryLength:     len(summary),
		CompletenessScore: completeness,
		ConfidenceScore:   0.85,
	}
}

// Classification is the result of keyword-based classification.
type Classification struct {
	Category          string         `json:"category"`
	Confidence        float64        `json:"confidence"`
	Scores            map[string]int `json:"scores"`
	CompletenessScore float64        `json:"completeness_score"`
}

var categoryKeywords = map[string][]string{
	"academic":  {"study", "learn", "education", "course"},
	"technical": {"code", "programming", "algorithm", "function"},
	"general":   {"hello", "help", "question", "explain"},
}

// DefaultCategories is used when a classify request names none.
var DefaultCategories = []string{"academic", "technical", "general"}

// Classify counts category keywords in content and picks the best match.
// Unknown categories score zero. Ties go to the first listed category.
func Classify(content string, categories []string) Classification {
	lower := strings.ToLower(content)
	scores := make(map[string]int, len(categories))

	best := ""
	bestScore := -1
	for _, cat := range categories {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		scores[cat] = score
		if score > bestScore {
			best = cat
			bestScore = score
		}
	}

	words := len(strings.Fields(content))
	if words < 1 {
		words = 1
	}
	confidence := float64(bestScore) / float64(words)
	if confidence > 1 {
		confidence = 1
	}
	if confidence < 0 {
		confidence = 0
	}
	confidence = round2(confidence)

	completeness := 0.0
	if best != "" {
		completeness = 1.0
	}

	return Classification{
		Category:          best,
		Confidence:        confidence,
		Scores:            scores,
		CompletenessScore: completeness,
	}
}

// round2 rounds to two decimal places for response payloads.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// FallbackExplanation produces a four-paragraph generic explanation of a
// topic. Used when the model is unavailable or returns something too short.
func FallbackExplanation(topic string) string {
	paragraphs := []string{
		fmt.Sprintf("%s is a fundamental concept that plays a crucial role in modern technology and education. "+
			"It represents a comprehensive field of study that encompasses various principles, methodologies, and applications. "+
			"Understanding %s requires a solid foundation in its core concepts and the ability to apply theoretical knowledge to practical scenarios. "+
			"This topic has gained significant importance due to its wide-ranging applications across multiple industries and domains. "+
			"Students and professionals alike benefit from a deep understanding of %s as it opens doors to numerous career opportunities and problem-solving capabilities. "+
			"The study of %s involves both theoretical understanding and hands-on practice, making it an engaging and rewarding subject to explore.",
			topic, topic, topic, topic),
		fmt.Sprintf("The core concepts of %s include fundamental principles that form the foundation of this field. "+
			"These concepts are interconnected and build upon each other, creating a comprehensive framework for understanding. "+
			"Key principles involve understanding the underlying mechanisms, processes, and relationships that govern how %s functions. "+
			"Mastering these core concepts is essential for anyone looking to develop expertise in this area. "+
			"The concepts range from basic introductory ideas to more advanced and specialized topics that require deeper study. "+
			"Each concept contributes to a holistic understanding of %s and its various applications.",
			topic, topic, topic),
		fmt.Sprintf("%s finds applications in numerous real-world scenarios, making it highly relevant and practical. "+
			"Industries such as technology, healthcare, finance, education, and research all benefit from the principles of %s. "+
			"These applications demonstrate the versatility and importance of understanding this topic thoroughly. "+
			"From solving complex problems to creating innovative solutions, %s provides tools and methodologies that are essential in today's world. "+
			"The practical applications of %s continue to evolve as new technologies and methodologies emerge. "+
			"Understanding these applications helps bridge the gap between theoretical knowledge and real-world implementation.",
			topic, topic, topic, topic),
		fmt.Sprintf("The importance of %s cannot be overstated in our modern, technology-driven world. "+
			"As society continues to evolve, the demand for expertise in %s grows across various sectors. "+
			"Learning %s not only enhances one's problem-solving abilities but also opens up numerous career opportunities. "+
			"The future of %s looks promising, with continuous advancements and new developments on the horizon. "+
			"Students and professionals who invest time in mastering %s will find themselves well-equipped to tackle challenges and contribute meaningfully to their fields. "+
			"The comprehensive understanding of %s serves as a valuable asset in both academic and professional settings.",
			topic, topic, topic, topic, topic, topic),
	}
	return strings.Join(paragraphs, "\n\n")
}

// FallbackChat produces the chat reply used when the model fails or is not
// configured. When the model was tried and errored the full explanation is
// returned; without a model only the opening paragraph is used.
func FallbackChat(message string, llmTried bool) string {
	full := FallbackExplanation(message)
	if llmTried {
		return full
	}
	paragraphs := strings.Split(full, "\n\n")
	reply := paragraphs[0]
	if len(reply) < 100 && len(paragraphs) > 1 {
		reply = strings.Join(paragraphs[:2], "\n\n")
	}
	return reply
}

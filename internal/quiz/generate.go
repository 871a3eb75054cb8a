package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"aitutor/internal/llm/prompts"
	"aitutor/internal/model"
)

// numberingRegex strips leading numbering such as "1.", "2)", "Q3:", or
// "Question 4 -" from generated lines.
var numberingRegex = regexp.MustCompile(`(?i)^(\d+[.)\-\s]+|Q\d+[.)\-\s:]+|Question\s+\d+[.)\-\s:]+)`)

// Generate builds a quiz about topic. Twice the requested count is produced
// so the client can pick a subset. The LLM output is parsed line by line;
// when it fails or is absent, templated questions fill the gap.
func Generate(ctx context.Context, gen Generator, topic string, numQuestions int, difficulty model.Difficulty, marksPerQuestion float64) *model.Quiz {
	if marksPerQuestion <= 0 {
		marksPerQuestion = DefaultMarksPerQuestion
	}
	target := numQuestions * 2

	var questions []model.Question
	if gen != nil {
		reply, err := gen.Generate(ctx, prompts.QuizGeneration(topic, target, difficulty))
		if err == nil {
			questions = parseQuestions(reply, target, marksPerQuestion)
		}
		if len(questions) == 0 {
			if err != nil {
				slog.Warn("quiz generation LLM call failed, using templates", "topic", topic, "error", err)
			} else {
				slog.Warn("no questions parsed from LLM reply, using templates", "topic", topic)
			}
			questions = fallbackQuestions(topic, difficulty, target, marksPerQuestion, 1)
		}
	} else {
		questions = fallbackQuestions(topic, difficulty, target, marksPerQuestion, 1)
	}

	// Parsing may come up short; top up with templates so the client always
	// has at least the requested count.
	if len(questions) < numQuestions {
		extra := fallbackQuestions(topic, difficulty, numQuestions-len(questions), marksPerQuestion, len(questions)+1)
		questions = append(questions, extra...)
	}

	completeness := float64(len(questions)) / float64(target)
	if completeness > 1 {
		completeness = 1
	}
	confidence := 0.7
	if gen != nil {
		confidence = 0.9
	}

	return &model.Quiz{
		QuizID:            "quiz_" + uuid.NewString(),
		Topic:             topic,
		Difficulty:        difficulty,
		Questions:         questions,
		TotalMarks:        float64(len(questions)) * marksPerQuestion,
		CompletenessScore: Round2(completeness),
		ConfidenceScore:   confidence,
	}
}

// parseQuestions extracts numbered questions from a model reply. A line
// counts as a question when, after stripping numbering, it contains a
// question mark and is longer than 20 characters.
func parseQuestions(reply string, limit int, marks float64) []model.Question {
	var questions []model.Question
	id := int64(1)
	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		cleaned := strings.TrimSpace(numberingRegex.ReplaceAllString(line, ""))
		if !strings.Contains(cleaned, "?") || len(cleaned) <= 20 {
			continue
		}
		cleaned = strings.TrimSpace(strings.TrimPrefix(cleaned, ":"))
		questions = append(questions, model.Question{
			ID:       id,
			Question: cleaned,
			Type:     "short_answer",
			Marks:    marks,
		})
		id++
		if len(questions) >= limit {
			break
		}
	}
	return questions
}

// fallbackQuestions produces templated questions per difficulty level. The
// template index is offset by startID so top-up calls continue the rotation
// instead of repeating from the first template.
func fallbackQuestions(topic string, difficulty model.Difficulty, count int, marks float64, startID int) []model.Question {
	var templates []string
	switch difficulty {
	case model.DifficultyBeginner:
		templates = []string{
			"What is %s and why is it important?",
			"Name three basic concepts related to %s.",
			"Explain in simple terms what %s does.",
			"What are the fundamental components of %s?",
			"How would you describe %s to someone new to the field?",
			"What is the primary purpose of %s?",
			"Give an example of how %s is used in practice.",
			"What skills are needed to understand %s?",
			"What makes %s different from similar concepts?",
			"What are the first steps to learning %s?",
			"What problems does %s solve?",
			"What are common misconceptions about %s?",
			"How does %s relate to everyday applications?",
			"What background knowledge is helpful for understanding %s?",
			"What are the key terms associated with %s?",
		}
	case model.DifficultyIntermediate:
		templates = []string{
			"Explain the core principles that govern %s.",
			"How does %s differ from related approaches?",
			"What are the main challenges when working with %s?",
			"Describe the relationship between different aspects of %s.",
			"What are the advantages and limitations of %s?",
			"How would you implement %s in a real-world scenario?",
			"What are the key factors that influence %s?",
			"Compare and contrast %s with alternative methods.",
			"What are the best practices for using %s?",
			"Explain how %s has evolved over time.",
			"What are the critical components of a successful %s implementation?",
			"How do different variations of %s compare?",
			"What role does %s play in modern applications?",
			"What are the performance considerations for %s?",
			"How would you troubleshoot common issues with %s?",
		}
	default:
		templates = []string{
			"Analyze the theoretical foundations of %s.",
			"What are the advanced techniques and optimizations in %s?",
			"Explain the mathematical or algorithmic principles behind %s.",
			"How would you design a complex system using %s?",
			"What are the cutting-edge developments in %s?",
			"Critically evaluate the strengths and weaknesses of %s.",
			"How does %s integrate with other advanced concepts?",
			"What are the research directions in %s?",
			"Explain the scalability and performance implications of %s.",
			"How would you optimize %s for production environments?",
			"What are the architectural considerations for %s?",
			"Discuss the trade-offs in different %s approaches.",
			"What are the security and reliability aspects of %s?",
			"How does %s relate to emerging technologies?",
			"What are the future prospects and challenges for %s?",
		}
	}

	questions := make([]model.Question, 0, count)
	for i := 0; i < count; i++ {
		idx := (i + startID - 1) % len(templates)
		questions = append(questions, model.Question{
			ID:       int64(startID + i),
			Question: fmt.Sprintf(templates[idx], topic),
			Type:     "short_answer",
			Marks:    marks,
		})
	}
	return questions
}

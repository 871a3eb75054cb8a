// Package quiz generates quizzes and grades submitted answers. Grading runs
// through a ladder of strategies: LLM marking when a model responds, keyword
// inference when the model reply has no marks line, and length heuristics
// when the model errors or was never configured.
package quiz

import (
	"context"
	"errors"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"aitutor/internal/llm/prompts"
	"aitutor/internal/model"
)

// ErrNoAnswers is returned when a submission contains no answers at all.
var ErrNoAnswers = errors.New("no answers provided for evaluation")

// DefaultMarksPerQuestion applies when a submission names no question list
// and no per-question marks.
const DefaultMarksPerQuestion = 10

// Generator produces a completion for a prompt. *llm.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Tier records which grading strategy produced a result.
type Tier int

const (
	// TierBlank means the answer was empty and scored without any model.
	TierBlank Tier = iota
	// TierLLM means marks were parsed from the model's reply.
	TierLLM
	// TierKeyword means the model replied without a marks line and marks
	// were inferred from correctness keywords.
	TierKeyword
	// TierLLMError means the model call failed and length heuristics applied.
	TierLLMError
	// TierOffline means no model is configured and length heuristics applied.
	TierOffline
)

// Result is the graded outcome for a single answer. Marks are kept at full
// precision; rounding happens at the response boundary.
type Result struct {
	Marks    float64
	Correct  bool
	Feedback string
	Tier     Tier
}

var (
	marksRegex    = regexp.MustCompile(`(?i)marks:\s*(\d+(?:\.\d+)?)`)
	feedbackRegex = regexp.MustCompile(`(?i)feedback:\s*(.+)`)
)

// correctnessWords signal a positive assessment in a free-form model reply.
var correctnessWords = []string{"correct", "good", "accurate", "right", "proper"}

// Evaluate grades one answer against one question. gen may be nil.
func Evaluate(ctx context.Context, gen Generator, questionText string, maxMarks float64, answer string) Result {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return Result{Feedback: "No answer provided - 0 marks", Tier: TierBlank}
	}

	if gen == nil {
		return lengthHeuristic(trimmed, maxMarks, 0.4, 0.7,
			"Substantial answer provided - partial marks (AI evaluation unavailable)", TierOffline)
	}

	reply, err := gen.Generate(ctx, prompts.Grading(questionText, trimmed, maxMarks))
	if err != nil {
		return lengthHeuristic(trimmed, maxMarks, 0.3, 0.6,
			"Substantial answer provided - partial marks (LLM evaluation unavailable)", TierLLMError)
	}

	if m := marksRegex.FindStringSubmatch(reply); m != nil {
		marks, _ := strconv.ParseFloat(m[1], 64)
		if marks < 0 {
			marks = 0
		}
		if marks > maxMarks {
			marks = maxMarks
		}
		feedback := ""
		if fm := feedbackRegex.FindStringSubmatch(reply); fm != nil {
			feedback = strings.TrimSpace(fm[1])
		} else {
			feedback = "Awarded " + strconv.FormatFloat(marks, 'f', -1, 64) + " marks based on answer quality"
		}
		return Result{Marks: marks, Correct: marks > 0, Feedback: feedback, Tier: TierLLM}
	}

	// No marks line in the reply. Infer from correctness keywords.
	lower := strings.ToLower(reply)
	for _, w := range correctnessWords {
		if strings.Contains(lower, w) {
			marks := maxMarks * 0.5
			if len(trimmed) > 50 {
				marks = maxMarks * 0.8
			}
			return Result{
				Marks:    marks,
				Correct:  true,
				Feedback: "Answer shows understanding - awarded partial marks",
				Tier:     TierKeyword,
			}
		}
	}
	return Result{Feedback: "Could not determine correctness - 0 marks", Tier: TierKeyword}
}

// lengthHeuristic awards marks from answer length alone. The short and
// substantial fractions differ between the model-errored and no-model paths.
func lengthHeuristic(answer string, maxMarks, shortFrac, longFrac float64, longFeedback string, tier Tier) Result {
	switch {
	case len(answer) < 10:
		return Result{Feedback: "Answer too short - 0 marks", Tier: tier}
	case len(answer) < 30:
		return Result{
			Marks:    maxMarks * shortFrac,
			Correct:  true,
			Feedback: "Short answer provided - partial marks",
			Tier:     tier,
		}
	default:
		return Result{Marks: maxMarks * longFrac, Correct: true, Feedback: longFeedback, Tier: tier}
	}
}

// Submission is one quiz's worth of answers to grade. Answers is keyed by
// question ID as sent by the client; Questions is optional and supplies
// per-question text and marks when present.
type Submission struct {
	QuizID           string
	Topic            string
	Difficulty       model.Difficulty
	Answers          map[string]string
	Questions        []model.Question
	MarksPerQuestion float64
}

// EvaluateQuiz grades every answer in a submission and aggregates the
// totals. Blank answers still count toward total marks. Answer keys are
// normalized so "3" and 3 address the same question; duplicate spellings
// of one key ("3" and "03") collapse into a single graded entry.
func EvaluateQuiz(ctx context.Context, gen Generator, sub Submission) (*model.EvaluationResult, error) {
	if len(sub.Answers) == 0 {
		return nil, ErrNoAnswers
	}

	marksPer := sub.MarksPerQuestion
	if marksPer <= 0 {
		marksPer = DefaultMarksPerQuestion
	}

	byKey := make(map[string]model.Question, len(sub.Questions))
	for _, q := range sub.Questions {
		byKey[strconv.FormatInt(q.ID, 10)] = q
	}

	answers := make(map[string]string, len(sub.Answers))
	for k, a := range sub.Answers {
		answers[canonicalKey(k)] = a
	}

	keys := make([]string, 0, len(answers))
	for k := range answers {
		keys = append(keys, k)
	}
	sortKeys(keys)

	var (
		feedback      []model.QuestionFeedback
		totalMarks    float64
		obtainedMarks float64
		correctCount  int
		unanswered    int
	)

	for _, key := range keys {
		answer := answers[key]

		maxMarks := marksPer
		questionText := "Question " + key
		if q, ok := byKey[key]; ok {
			if q.Marks > 0 {
				maxMarks = q.Marks
			}
			if q.Question != "" {
				questionText = q.Question
			}
		}
		totalMarks += maxMarks

		res := Evaluate(ctx, gen, questionText, maxMarks, answer)
		if res.Correct || res.Marks > 0 {
			correctCount++
			obtainedMarks += res.Marks
		}
		if res.Marks == 0 && strings.TrimSpace(answer) == "" {
			unanswered++
		}

		feedback = append(feedback, model.QuestionFeedback{
			QuestionID:   key,
			Question:     questionText,
			Answer:       strings.TrimSpace(answer),
			Correct:      res.Correct,
			MarksAwarded: Round2(res.Marks),
			MaxMarks:     maxMarks,
			Feedback:     res.Feedback,
		})
	}

	score := 0.0
	if totalMarks > 0 {
		score = obtainedMarks / totalMarks * 100
	}

	totalQuestions := len(answers)
	completeness := 1.0
	if len(feedback) != totalQuestions {
		completeness = float64(len(feedback)) / float64(totalQuestions)
	}
	confidence := 0.6
	if gen != nil {
		confidence = 0.9
	}

	return &model.EvaluationResult{
		QuizID:            sub.QuizID,
		Score:             Round2(score),
		TotalQuestions:    totalQuestions,
		CorrectAnswers:    correctCount,
		IncorrectAnswers:  totalQuestions - correctCount,
		Unanswered:        unanswered,
		TotalMarks:        Round2(totalMarks),
		ObtainedMarks:     Round2(obtainedMarks),
		Feedback:          feedback,
		CompletenessScore: Round2(completeness),
		ConfidenceScore:   confidence,
	}, nil
}

// canonicalKey maps numeric keys to their plain decimal form so clients that
// send "03", " 3" or 3 all address question 3. Non-numeric keys pass through.
func canonicalKey(k string) string {
	if n, err := strconv.ParseInt(strings.TrimSpace(k), 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return k
}

// sortKeys orders numeric keys ascending before lexical ones so feedback is
// deterministic regardless of map iteration order.
func sortKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		ni, ei := strconv.ParseInt(keys[i], 10, 64)
		nj, ej := strconv.ParseInt(keys[j], 10, 64)
		switch {
		case ei == nil && ej == nil:
			return ni < nj
		case ei == nil:
			return true
		case ej == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
}

// Round2 rounds to two decimal places for response payloads.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

package quiz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"aitutor/internal/model"
)

type fakeGen struct {
	reply      string
	err        error
	lastPrompt string
	calls      int
}

func (f *fakeGen) Generate(_ context.Context, prompt string) (string, error) {
	f.lastPrompt = prompt
	f.calls++
	return f.reply, f.err
}

func TestEvaluateBlankAnswer(t *testing.T) {
	got := Evaluate(context.Background(), &fakeGen{}, "Q", 10, "   ")
	if got.Marks != 0 || got.Correct {
		t.Errorf("blank answer graded %v/%v", got.Marks, got.Correct)
	}
	if got.Feedback != "No answer provided - 0 marks" {
		t.Errorf("feedback = %q", got.Feedback)
	}
	if got.Tier != TierBlank {
		t.Errorf("tier = %v, want TierBlank", got.Tier)
	}
}

func TestEvaluateLLMMarks(t *testing.T) {
	tests := []struct {
		name         string
		reply        string
		wantMarks    float64
		wantCorrect  bool
		wantFeedback string
	}{
		{
			name:         "marks and feedback",
			reply:        "Marks: 8\nFeedback: Good answer, minor details missing",
			wantMarks:    8,
			wantCorrect:  true,
			wantFeedback: "Good answer, minor details missing",
		},
		{
			name:         "zero marks",
			reply:        "Marks: 0\nFeedback: Incorrect or irrelevant answer",
			wantMarks:    0,
			wantCorrect:  false,
			wantFeedback: "Incorrect or irrelevant answer",
		},
		{
			name:         "marks clamped to max",
			reply:        "marks: 15\nfeedback: great",
			wantMarks:    10,
			wantCorrect:  true,
			wantFeedback: "great",
		},
		{
			name:         "fractional marks",
			reply:        "Marks: 7.5",
			wantMarks:    7.5,
			wantCorrect:  true,
			wantFeedback: "Awarded 7.5 marks based on answer quality",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &fakeGen{reply: tt.reply}
			got := Evaluate(context.Background(), gen, "What is X?", 10, "an answer of reasonable length")
			if got.Marks != tt.wantMarks {
				t.Errorf("marks = %v, want %v", got.Marks, tt.wantMarks)
			}
			if got.Correct != tt.wantCorrect {
				t.Errorf("correct = %v, want %v", got.Correct, tt.wantCorrect)
			}
			if got.Feedback != tt.wantFeedback {
				t.Errorf("feedback = %q, want %q", got.Feedback, tt.wantFeedback)
			}
			if got.Tier != TierLLM {
				t.Errorf("tier = %v, want TierLLM", got.Tier)
			}
			if !strings.Contains(gen.lastPrompt, "What is X?") {
				t.Error("grading prompt missing question text")
			}
		})
	}
}

func TestEvaluateKeywordInference(t *testing.T) {
	longAnswer := strings.Repeat("backpropagation adjusts weights ", 3) // > 50 chars
	shortAnswer := "gradient descent"                                   // <= 50 chars

	t.Run("keyword with long answer gets 80 percent", func(t *testing.T) {
		gen := &fakeGen{reply: "The answer is mostly accurate overall."}
		got := Evaluate(context.Background(), gen, "Q", 10, longAnswer)
		if got.Marks != 8 || !got.Correct {
			t.Errorf("got %v/%v, want 8/true", got.Marks, got.Correct)
		}
		if got.Tier != TierKeyword {
			t.Errorf("tier = %v, want TierKeyword", got.Tier)
		}
	})

	t.Run("keyword with short answer gets 50 percent", func(t *testing.T) {
		gen := &fakeGen{reply: "Looks good to me."}
		got := Evaluate(context.Background(), gen, "Q", 10, shortAnswer)
		if got.Marks != 5 || !got.Correct {
			t.Errorf("got %v/%v, want 5/true", got.Marks, got.Correct)
		}
	})

	t.Run("no keyword gets zero", func(t *testing.T) {
		gen := &fakeGen{reply: "Unable to assess this response."}
		got := Evaluate(context.Background(), gen, "Q", 10, shortAnswer)
		if got.Marks != 0 || got.Correct {
			t.Errorf("got %v/%v, want 0/false", got.Marks, got.Correct)
		}
		if got.Feedback != "Could not determine correctness - 0 marks" {
			t.Errorf("feedback = %q", got.Feedback)
		}
	})
}

func TestEvaluateLengthHeuristics(t *testing.T) {
	veryShort := "yes"                                             // < 10
	short := "a twenty char answer"                                // 10..29
	substantial := "this answer runs well past thirty characters." // >= 30

	t.Run("model errored", func(t *testing.T) {
		gen := &fakeGen{err: errors.New("upstream down")}
		tests := []struct {
			answer    string
			wantMarks float64
		}{
			{veryShort, 0},
			{short, 3},
			{substantial, 6},
		}
		for _, tt := range tests {
			got := Evaluate(context.Background(), gen, "Q", 10, tt.answer)
			if got.Marks != tt.wantMarks {
				t.Errorf("answer %q: marks = %v, want %v", tt.answer, got.Marks, tt.wantMarks)
			}
			if got.Tier != TierLLMError {
				t.Errorf("tier = %v, want TierLLMError", got.Tier)
			}
		}
	})

	t.Run("no model configured", func(t *testing.T) {
		tests := []struct {
			answer    string
			wantMarks float64
		}{
			{veryShort, 0},
			{short, 4},
			{substantial, 7},
		}
		for _, tt := range tests {
			got := Evaluate(context.Background(), nil, "Q", 10, tt.answer)
			if got.Marks != tt.wantMarks {
				t.Errorf("answer %q: marks = %v, want %v", tt.answer, got.Marks, tt.wantMarks)
			}
			if got.Tier != TierOffline {
				t.Errorf("tier = %v, want TierOffline", got.Tier)
			}
		}
	})

	t.Run("45 char answer offline scores 70 percent", func(t *testing.T) {
		answer := strings.Repeat("x", 45)
		got := Evaluate(context.Background(), nil, "Q", 10, answer)
		if got.Marks != 7 {
			t.Errorf("marks = %v, want 7", got.Marks)
		}
		if got.Feedback != "Substantial answer provided - partial marks (AI evaluation unavailable)" {
			t.Errorf("feedback = %q", got.Feedback)
		}
	})
}

func TestEvaluateQuizNoAnswers(t *testing.T) {
	_, err := EvaluateQuiz(context.Background(), nil, Submission{QuizID: "quiz_1"})
	if !errors.Is(err, ErrNoAnswers) {
		t.Fatalf("err = %v, want ErrNoAnswers", err)
	}
}

func TestEvaluateQuizKeyNormalization(t *testing.T) {
	sub := Submission{
		QuizID: "quiz_norm",
		Questions: []model.Question{
			{ID: 3, Question: "Explain overfitting.", Marks: 20},
		},
		Answers: map[string]string{
			"3": "overfitting happens when the model memorizes training data",
		},
	}
	res, err := EvaluateQuiz(context.Background(), nil, sub)
	if err != nil {
		t.Fatalf("EvaluateQuiz() error = %v", err)
	}
	if len(res.Feedback) != 1 {
		t.Fatalf("feedback items = %d, want 1", len(res.Feedback))
	}
	fb := res.Feedback[0]
	if fb.QuestionID != "3" {
		t.Errorf("question id = %q, want %q", fb.QuestionID, "3")
	}
	if fb.Question != "Explain overfitting." {
		t.Errorf("string key %q did not resolve the numeric question: %q", "3", fb.Question)
	}
	if fb.MaxMarks != 20 {
		t.Errorf("max marks = %v, want 20 from question list", fb.MaxMarks)
	}
	// substantial answer, no model: 70% of 20
	if fb.MarksAwarded != 14 {
		t.Errorf("marks = %v, want 14", fb.MarksAwarded)
	}
}

func TestEvaluateQuizDuplicateKeysCollapse(t *testing.T) {
	first := "a substantial answer going well beyond thirty characters"
	second := "another substantial answer also beyond thirty characters"
	sub := Submission{
		QuizID: "quiz_dup",
		Answers: map[string]string{
			"3":  first,
			"03": second,
		},
	}
	res, err := EvaluateQuiz(context.Background(), nil, sub)
	if err != nil {
		t.Fatalf("EvaluateQuiz() error = %v", err)
	}

	// "3" and "03" are the same question; it must be graded exactly once.
	if len(res.Feedback) != 1 {
		t.Fatalf("feedback items = %d, want 1", len(res.Feedback))
	}
	if res.TotalQuestions != 1 {
		t.Errorf("total questions = %d, want 1", res.TotalQuestions)
	}
	if res.TotalMarks != 10 {
		t.Errorf("total marks = %v, want 10", res.TotalMarks)
	}
	fb := res.Feedback[0]
	if fb.QuestionID != "3" {
		t.Errorf("question id = %q, want %q", fb.QuestionID, "3")
	}
	if fb.Answer != first && fb.Answer != second {
		t.Errorf("answer = %q, want one of the submitted duplicates", fb.Answer)
	}
	// Both duplicates are substantial, so either survivor scores 70%.
	if fb.MarksAwarded != 7 {
		t.Errorf("marks = %v, want 7", fb.MarksAwarded)
	}
}

func TestEvaluateQuizAggregation(t *testing.T) {
	sub := Submission{
		QuizID:     "quiz_agg",
		Topic:      "Neural Networks",
		Difficulty: model.DifficultyBeginner,
		Answers: map[string]string{
			"1": "a substantial answer going well beyond thirty characters",
			"2": "short one",
			"3": "",
		},
	}
	res, err := EvaluateQuiz(context.Background(), nil, sub)
	if err != nil {
		t.Fatalf("EvaluateQuiz() error = %v", err)
	}

	// Defaults: 10 marks per question, all three count toward the total.
	if res.TotalMarks != 30 {
		t.Errorf("total marks = %v, want 30", res.TotalMarks)
	}
	// q1: 70% of 10 = 7; q2: <10 chars gives 0; q3 blank gives 0.
	if res.ObtainedMarks != 7 {
		t.Errorf("obtained marks = %v, want 7", res.ObtainedMarks)
	}
	if res.Score != Round2(7.0/30*100) {
		t.Errorf("score = %v, want %v", res.Score, Round2(7.0/30*100))
	}
	if res.CorrectAnswers != 1 || res.IncorrectAnswers != 2 {
		t.Errorf("correct/incorrect = %d/%d, want 1/2", res.CorrectAnswers, res.IncorrectAnswers)
	}
	if res.Unanswered != 1 {
		t.Errorf("unanswered = %d, want 1", res.Unanswered)
	}
	if res.TotalQuestions != 3 || len(res.Feedback) != 3 {
		t.Errorf("questions/feedback = %d/%d, want 3/3", res.TotalQuestions, len(res.Feedback))
	}
	if res.CompletenessScore != 1 {
		t.Errorf("completeness = %v, want 1", res.CompletenessScore)
	}
	if res.ConfidenceScore != 0.6 {
		t.Errorf("confidence = %v, want 0.6 without a model", res.ConfidenceScore)
	}

	// Feedback ordered by numeric key.
	for i, want := range []string{"1", "2", "3"} {
		if res.Feedback[i].QuestionID != want {
			t.Errorf("feedback[%d].QuestionID = %q, want %q", i, res.Feedback[i].QuestionID, want)
		}
	}
	if res.Feedback[2].Feedback != "No answer provided - 0 marks" {
		t.Errorf("blank feedback = %q", res.Feedback[2].Feedback)
	}
}

func TestEvaluateQuizWithModelConfidence(t *testing.T) {
	gen := &fakeGen{reply: "Marks: 10\nFeedback: perfect"}
	sub := Submission{
		QuizID:  "quiz_conf",
		Answers: map[string]string{"1": "the complete answer"},
	}
	res, err := EvaluateQuiz(context.Background(), gen, sub)
	if err != nil {
		t.Fatalf("EvaluateQuiz() error = %v", err)
	}
	if res.ConfidenceScore != 0.9 {
		t.Errorf("confidence = %v, want 0.9 with a model", res.ConfidenceScore)
	}
	if res.Score != 100 {
		t.Errorf("score = %v, want 100", res.Score)
	}
	if gen.calls != 1 {
		t.Errorf("model calls = %d, want 1", gen.calls)
	}
}

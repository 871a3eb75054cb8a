package model

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Difficulty represents quiz difficulty level.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// User represents an account in the system database.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// AuthSession represents an issued login token.
type AuthSession struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Question is a single generated quiz question.
type Question struct {
	ID       int64   `json:"id"`
	Question string  `json:"question"`
	Type     string  `json:"type"`
	Marks    float64 `json:"marks"`
}

// UnmarshalJSON accepts the id field as a number or a numeric string, since
// clients send both forms. An id that parses as neither is left at zero
// rather than failing the whole submission.
func (q *Question) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID       json.RawMessage `json:"id"`
		Question string          `json:"question"`
		Type     string          `json:"type"`
		Marks    float64         `json:"marks"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	q.Question = raw.Question
	q.Type = raw.Type
	q.Marks = raw.Marks
	q.ID = parseQuestionID(raw.ID)
	return nil
}

func parseQuestionID(raw json.RawMessage) int64 {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

// Quiz is a generated quiz returned to the client. Questions holds twice
// the requested count so the client can pick a subset.
type Quiz struct {
	QuizID            string     `json:"quiz_id"`
	Topic             string     `json:"topic"`
	Difficulty        Difficulty `json:"difficulty"`
	Questions         []Question `json:"questions"`
	TotalMarks        float64    `json:"total_marks"`
	CompletenessScore float64    `json:"completeness_score"`
	ConfidenceScore   float64    `json:"confidence_score"`
}

// QuestionFeedback is the graded outcome for one answered question.
// QuestionID carries the normalized key: numeric IDs render in decimal form
// whether the client sent "3" or 3.
type QuestionFeedback struct {
	QuestionID   string  `json:"question_id"`
	Question     string  `json:"question"`
	Answer       string  `json:"answer"`
	Correct      bool    `json:"correct"`
	MarksAwarded float64 `json:"marks_awarded"`
	MaxMarks     float64 `json:"max_marks"`
	Feedback     string  `json:"feedback"`
}

// EvaluationResult is the outcome of grading one quiz submission.
type EvaluationResult struct {
	QuizID            string             `json:"quiz_id"`
	Score             float64            `json:"score"`
	TotalQuestions    int                `json:"total_questions"`
	CorrectAnswers    int                `json:"correct_answers"`
	IncorrectAnswers  int                `json:"incorrect_answers"`
	Unanswered        int                `json:"unanswered_questions"`
	TotalMarks        float64            `json:"total_marks"`
	ObtainedMarks     float64            `json:"obtained_marks"`
	Feedback          []QuestionFeedback `json:"feedback"`
	CompletenessScore float64            `json:"completeness_score"`
	ConfidenceScore   float64            `json:"confidence_score"`
}

// QuizAttempt is one student's graded submission as persisted in the student
// database. Append-only.
type QuizAttempt struct {
	ID               int64      `json:"id"`
	StudentID        string     `json:"student_id"`
	QuizID           string     `json:"quiz_id"`
	Topic            string     `json:"topic"`
	Difficulty       Difficulty `json:"difficulty"`
	Score            float64    `json:"score"`
	TotalMarks       float64    `json:"total_marks"`
	ObtainedMarks    float64    `json:"obtained_marks"`
	TotalQuestions   int        `json:"total_questions"`
	CorrectAnswers   int        `json:"correct_answers"`
	IncorrectAnswers int        `json:"incorrect_answers"`
	Unanswered       int        `json:"unanswered_questions"`
	TimeTakenSeconds int        `json:"time_taken_seconds"`
	AttemptDate      time.Time  `json:"attempt_date"`
}

// QuestionResult is one graded question within an attempt, written in the
// same transaction as its parent attempt.
type QuestionResult struct {
	ID            int64   `json:"id"`
	QuizAttemptID int64   `json:"quiz_attempt_id"`
	QuestionID    string  `json:"question_id"`
	QuestionText  string  `json:"question_text"`
	StudentAnswer string  `json:"student_answer"`
	IsCorrect     bool    `json:"is_correct"`
	MarksAwarded  float64 `json:"marks_awarded"`
	MaxMarks      float64 `json:"max_marks"`
	Feedback      string  `json:"feedback"`
}

// TopicProgress is the cumulative learning record for a topic. Score holds
// the most recent attempt's score while the question counters accumulate
// across attempts.
type TopicProgress struct {
	Topic                   string  `json:"topic"`
	Score                   float64 `json:"score"`
	ScorePercentage         float64 `json:"score_percentage"`
	TotalQuestionsGenerated int     `json:"total_questions_generated"`
	CorrectQuestions        int     `json:"correct_questions"`
	IncorrectQuestions      int     `json:"incorrect_questions"`
}

// Student is a profile row in the student database.
type Student struct {
	ID                int64      `json:"id"`
	StudentID         string     `json:"student_id"`
	Name              string     `json:"name"`
	Email             string     `json:"email,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	LastActive        *time.Time `json:"last_active,omitempty"`
	TotalQuizzesTaken int        `json:"total_quizzes_taken"`
	AverageScore      float64    `json:"average_score"`
}

// QuizStats aggregates a student's attempt history.
type QuizStats struct {
	TotalQuizzes            int     `json:"total_quizzes"`
	AverageScore            float64 `json:"avg_score"`
	BestScore               float64 `json:"best_score"`
	WorstScore              float64 `json:"worst_score"`
	TotalQuestionsAttempted int     `json:"total_questions_attempted"`
	TotalCorrect            int     `json:"total_correct"`
}

// StudentStats is the full statistics view for one student.
type StudentStats struct {
	Student        Student         `json:"student"`
	QuizStats      QuizStats       `json:"quiz_stats"`
	Progress       []TopicProgress `json:"progress"`
	RecentAttempts []QuizAttempt   `json:"recent_attempts"`
}

// Conversation is one remembered chat turn.
type Conversation struct {
	UserMessage string    `json:"user_message"`
	AIResponse  string    `json:"ai_response"`
	Context     string    `json:"context,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// Link is a titled external reference such as a video or encyclopedia page.
type Link struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Explanation is the response payload for a topic-explain request.
type Explanation struct {
	Topic             string  `json:"topic"`
	Explanation       string  `json:"explanation"`
	YouTubeLinks      []Link  `json:"youtube_links"`
	WebsiteReferences []Link  `json:"website_references"`
	CompletenessScore float64 `json:"completeness_score"`
	ConfidenceScore   float64 `json:"confidence_score"`
}

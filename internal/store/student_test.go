package store

import (
	"math"
	"path/filepath"
	"testing"

	"aitutor/internal/model"
)

func newTestStudentStore(t *testing.T) *StudentStore {
	t.Helper()
	s, err := NewStudentStore(":memory:")
	if err != nil {
		t.Fatalf("newTestStudentStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func saveTestAttempt(t *testing.T, s *StudentStore, studentID, topic string, score float64, total, correct, incorrect int) int64 {
	t.Helper()
	id, err := s.SaveAttempt(model.QuizAttempt{
		StudentID:        studentID,
		QuizID:           "quiz_" + topic,
		Topic:            topic,
		Difficulty:       model.DifficultyBeginner,
		Score:            score,
		TotalMarks:       float64(total) * 10,
		ObtainedMarks:    float64(total) * 10 * score / 100,
		TotalQuestions:   total,
		CorrectAnswers:   correct,
		IncorrectAnswers: incorrect,
	}, nil)
	if err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}
	return id
}

func TestStudentMigrateIdempotentOnReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.db")

	s, err := NewStudentStore(path)
	if err != nil {
		t.Fatalf("NewStudentStore: %v", err)
	}
	if err := s.UpsertStudent("student_1", "Alice", "alice@example.com"); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	saveTestAttempt(t, s, "student_1", "Neural Networks", 80, 5, 4, 1)
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Opening the same file runs migrate again; data must survive.
	s, err = NewStudentStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()

	st, err := s.GetStudent("student_1")
	if err != nil {
		t.Fatalf("GetStudent after reopen: %v", err)
	}
	if st == nil || st.TotalQuizzesTaken != 1 {
		t.Errorf("student lost across reopen: %+v", st)
	}
	attempts, err := s.ListAttempts("student_1", 0)
	if err != nil {
		t.Fatalf("ListAttempts after reopen: %v", err)
	}
	if len(attempts) != 1 {
		t.Errorf("expected 1 attempt after reopen, got %d", len(attempts))
	}
}

func TestUpsertStudent(t *testing.T) {
	s := newTestStudentStore(t)

	if err := s.UpsertStudent("student_1", "Alice", "alice@example.com"); err != nil {
		t.Fatalf("UpsertStudent insert: %v", err)
	}
	st, err := s.GetStudent("student_1")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if st == nil {
		t.Fatal("expected student, got nil")
	}
	if st.Name != "Alice" || st.Email != "alice@example.com" {
		t.Errorf("unexpected student: %+v", st)
	}
	if st.LastActive == nil {
		t.Error("expected last_active to be set")
	}

	// Update without email keeps the stored one.
	if err := s.UpsertStudent("student_1", "Alice Smith", ""); err != nil {
		t.Fatalf("UpsertStudent update: %v", err)
	}
	st, _ = s.GetStudent("student_1")
	if st.Name != "Alice Smith" {
		t.Errorf("expected updated name, got %q", st.Name)
	}
	if st.Email != "alice@example.com" {
		t.Errorf("email should survive an empty update, got %q", st.Email)
	}

	// Update with email replaces it.
	if err := s.UpsertStudent("student_1", "Alice Smith", "asmith@example.com"); err != nil {
		t.Fatalf("UpsertStudent email update: %v", err)
	}
	st, _ = s.GetStudent("student_1")
	if st.Email != "asmith@example.com" {
		t.Errorf("expected replaced email, got %q", st.Email)
	}

	// Unknown student is nil, not an error.
	st, err = s.GetStudent("student_999")
	if err != nil {
		t.Fatalf("GetStudent unknown: %v", err)
	}
	if st != nil {
		t.Errorf("expected nil for unknown student, got %+v", st)
	}
}

func TestSaveAttemptUpdatesCountersAndAverage(t *testing.T) {
	s := newTestStudentStore(t)
	if err := s.UpsertStudent("student_1", "Alice", ""); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}

	saveTestAttempt(t, s, "student_1", "Neural Networks", 60, 5, 3, 2)
	saveTestAttempt(t, s, "student_1", "Decision Trees", 80, 5, 4, 1)

	st, err := s.GetStudent("student_1")
	if err != nil {
		t.Fatalf("GetStudent: %v", err)
	}
	if st.TotalQuizzesTaken != 2 {
		t.Errorf("expected 2 quizzes taken, got %d", st.TotalQuizzesTaken)
	}
	if math.Abs(st.AverageScore-70) > 1e-9 {
		t.Errorf("expected average 70, got %f", st.AverageScore)
	}
}

func TestProgressOverwritesScoreAndSumsCounts(t *testing.T) {
	s := newTestStudentStore(t)
	if err := s.UpsertStudent("student_1", "Alice", ""); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}

	saveTestAttempt(t, s, "student_1", "Neural Networks", 60, 10, 6, 4)
	saveTestAttempt(t, s, "student_1", "Neural Networks", 90, 5, 4, 1)

	p, err := s.GetProgress("Neural Networks")
	if err != nil {
		t.Fatalf("GetProgress: %v", err)
	}
	if p == nil {
		t.Fatal("expected progress row")
	}
	// Latest score wins, counters accumulate.
	if p.Score != 90 || p.ScorePercentage != 90 {
		t.Errorf("expected latest score 90, got %f/%f", p.Score, p.ScorePercentage)
	}
	if p.TotalQuestionsGenerated != 15 {
		t.Errorf("expected 15 questions accumulated, got %d", p.TotalQuestionsGenerated)
	}
	if p.CorrectQuestions != 10 || p.IncorrectQuestions != 5 {
		t.Errorf("expected 10/5 correct/incorrect, got %d/%d", p.CorrectQuestions, p.IncorrectQuestions)
	}
}

func TestSaveAttemptWithoutTopicSkipsProgress(t *testing.T) {
	s := newTestStudentStore(t)
	if err := s.UpsertStudent("student_1", "Alice", ""); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}

	saveTestAttempt(t, s, "student_1", "", 50, 4, 2, 2)

	progress, err := s.ListProgress()
	if err != nil {
		t.Fatalf("ListProgress: %v", err)
	}
	if len(progress) != 0 {
		t.Errorf("expected no progress rows for a topicless attempt, got %d", len(progress))
	}

	st, _ := s.GetStudent("student_1")
	if st.TotalQuizzesTaken != 1 {
		t.Errorf("attempt should still count, got %d quizzes", st.TotalQuizzesTaken)
	}
}

func TestSaveAttemptStoresQuestionResults(t *testing.T) {
	s := newTestStudentStore(t)
	if err := s.UpsertStudent("student_1", "Alice", ""); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}

	attemptID, err := s.SaveAttempt(model.QuizAttempt{
		StudentID:      "student_1",
		QuizID:         "quiz_x",
		Topic:          "Regression",
		Difficulty:     model.DifficultyIntermediate,
		Score:          50,
		TotalMarks:     20,
		ObtainedMarks:  10,
		TotalQuestions: 2,
		CorrectAnswers: 1,
	}, []model.QuestionResult{
		{QuestionID: "1", QuestionText: "What is linear regression?", StudentAnswer: "Fitting a line", IsCorrect: true, MarksAwarded: 10, MaxMarks: 10, Feedback: "Correct"},
		{QuestionID: "2", QuestionText: "What is overfitting?", StudentAnswer: "", IsCorrect: false, MarksAwarded: 0, MaxMarks: 10, Feedback: "No answer provided - 0 marks"},
	})
	if err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}

	results, err := s.ListQuestionResults(attemptID)
	if err != nil {
		t.Fatalf("ListQuestionResults: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if !results[0].IsCorrect || results[0].MarksAwarded != 10 {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].IsCorrect || results[1].Feedback != "No answer provided - 0 marks" {
		t.Errorf("unexpected second result: %+v", results[1])
	}
}

func TestGetStudentStats(t *testing.T) {
	s := newTestStudentStore(t)

	// Unknown student yields nil without error.
	stats, err := s.GetStudentStats("student_1")
	if err != nil {
		t.Fatalf("GetStudentStats unknown: %v", err)
	}
	if stats != nil {
		t.Fatal("expected nil stats for unknown student")
	}

	if err := s.UpsertStudent("student_1", "Alice", ""); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	saveTestAttempt(t, s, "student_1", "Neural Networks", 60, 5, 3, 2)
	saveTestAttempt(t, s, "student_1", "Clustering", 90, 5, 5, 0)

	stats, err = s.GetStudentStats("student_1")
	if err != nil {
		t.Fatalf("GetStudentStats: %v", err)
	}
	if stats == nil {
		t.Fatal("expected stats")
	}
	if stats.QuizStats.TotalQuizzes != 2 {
		t.Errorf("expected 2 quizzes, got %d", stats.QuizStats.TotalQuizzes)
	}
	if stats.QuizStats.BestScore != 90 || stats.QuizStats.WorstScore != 60 {
		t.Errorf("unexpected best/worst: %f/%f", stats.QuizStats.BestScore, stats.QuizStats.WorstScore)
	}
	if stats.QuizStats.TotalQuestionsAttempted != 10 || stats.QuizStats.TotalCorrect != 8 {
		t.Errorf("unexpected totals: %d/%d", stats.QuizStats.TotalQuestionsAttempted, stats.QuizStats.TotalCorrect)
	}
	// Progress is ordered by topic.
	if len(stats.Progress) != 2 || stats.Progress[0].Topic != "Clustering" {
		t.Errorf("unexpected progress: %+v", stats.Progress)
	}
	if len(stats.RecentAttempts) != 2 {
		t.Errorf("expected 2 recent attempts, got %d", len(stats.RecentAttempts))
	}
}

func TestListStudents(t *testing.T) {
	s := newTestStudentStore(t)

	students, err := s.ListStudents()
	if err != nil {
		t.Fatalf("ListStudents empty: %v", err)
	}
	if len(students) != 0 {
		t.Fatalf("expected no students, got %d", len(students))
	}

	if err := s.UpsertStudent("student_1", "Alice", "alice@example.com"); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	if err := s.UpsertStudent("student_2", "Bob", ""); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	saveTestAttempt(t, s, "student_1", "Neural Networks", 80, 5, 4, 1)

	students, err = s.ListStudents()
	if err != nil {
		t.Fatalf("ListStudents: %v", err)
	}
	if len(students) != 2 {
		t.Fatalf("expected 2 students, got %d", len(students))
	}
	for _, st := range students {
		switch st.StudentID {
		case "student_1":
			if st.TotalQuizzesTaken != 1 || st.AverageScore != 80 {
				t.Errorf("unexpected aggregates for student_1: %+v", st)
			}
		case "student_2":
			if st.TotalQuizzesTaken != 0 || st.AverageScore != 0 {
				t.Errorf("unexpected aggregates for student_2: %+v", st)
			}
		default:
			t.Errorf("unexpected student %q", st.StudentID)
		}
	}
}

func TestExportAll(t *testing.T) {
	s := newTestStudentStore(t)
	if err := s.UpsertStudent("student_1", "Alice", ""); err != nil {
		t.Fatalf("UpsertStudent: %v", err)
	}
	attemptID, err := s.SaveAttempt(model.QuizAttempt{
		StudentID:      "student_1",
		QuizID:         "quiz_y",
		Topic:          "SVMs",
		Score:          100,
		TotalMarks:     10,
		ObtainedMarks:  10,
		TotalQuestions: 1,
		CorrectAnswers: 1,
	}, []model.QuestionResult{
		{QuestionID: "1", QuestionText: "Define a margin.", StudentAnswer: "Distance to boundary", IsCorrect: true, MarksAwarded: 10, MaxMarks: 10},
	})
	if err != nil {
		t.Fatalf("SaveAttempt: %v", err)
	}

	export, err := s.ExportAll()
	if err != nil {
		t.Fatalf("ExportAll: %v", err)
	}
	if len(export.Students) != 1 {
		t.Fatalf("expected 1 student, got %d", len(export.Students))
	}
	se := export.Students[0]
	if len(se.Attempts) != 1 || se.Attempts[0].QuizID != "quiz_y" {
		t.Errorf("unexpected attempts: %+v", se.Attempts)
	}
	if len(se.Results[attemptID]) != 1 {
		t.Errorf("expected 1 question result for attempt %d", attemptID)
	}
	if len(export.Progress) != 1 || export.Progress[0].Topic != "SVMs" {
		t.Errorf("unexpected progress: %+v", export.Progress)
	}
}

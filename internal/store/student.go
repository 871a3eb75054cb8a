package store

import (
	"database/sql"
	"fmt"
	"time"

	"aitutor/internal/model"

	_ "modernc.org/sqlite"
)

// StudentStore is the student database: profiles, quiz attempts with
// per-question results, and cumulative topic progress. It is kept separate
// from the system database so learning records can be moved or wiped on
// their own.
type StudentStore struct {
	db *sql.DB
}

// NewStudentStore opens the student database and applies the schema.
func NewStudentStore(dbPath string) (*StudentStore, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open student database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping student database: %w", err)
	}
	s := &StudentStore{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate student database: %w", err)
	}
	return s, nil
}

func (s *StudentStore) Close() error {
	return s.db.Close()
}

func (s *StudentStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS students (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		email TEXT UNIQUE,
		created_at DATETIME NOT NULL,
		last_active DATETIME,
		total_quizzes_taken INTEGER NOT NULL DEFAULT 0,
		average_score REAL NOT NULL DEFAULT 0.0
	);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id TEXT NOT NULL,
		quiz_id TEXT NOT NULL,
		topic TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		score REAL NOT NULL,
		total_marks REAL NOT NULL,
		obtained_marks REAL NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		incorrect_answers INTEGER NOT NULL,
		unanswered_questions INTEGER NOT NULL,
		time_taken_seconds INTEGER NOT NULL DEFAULT 0,
		attempt_date DATETIME NOT NULL,
		FOREIGN KEY (student_id) REFERENCES students(student_id)
	);

	CREATE TABLE IF NOT EXISTS question_results (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quiz_attempt_id INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		question_text TEXT NOT NULL,
		student_answer TEXT NOT NULL DEFAULT '',
		is_correct INTEGER NOT NULL DEFAULT 0,
		marks_awarded REAL NOT NULL,
		max_marks REAL NOT NULL,
		feedback TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (quiz_attempt_id) REFERENCES quiz_attempts(id)
	);

	CREATE TABLE IF NOT EXISTS student_progress (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic TEXT NOT NULL UNIQUE,
		score REAL NOT NULL DEFAULT 0.0,
		score_percentage REAL NOT NULL DEFAULT 0.0,
		total_questions_generated INTEGER NOT NULL DEFAULT 0,
		correct_questions INTEGER NOT NULL DEFAULT 0,
		incorrect_questions INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_student_quiz_attempts ON quiz_attempts(student_id, attempt_date DESC);
	CREATE INDEX IF NOT EXISTS idx_question_results_attempt ON question_results(quiz_attempt_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	_, err := s.db.Exec(
		`INSERT INTO metadata (key, value) VALUES ('schema_version', ?)
		 ON CONFLICT(key) DO UPDATE SET value = ?`,
		fmt.Sprintf("%d", schemaVersion), fmt.Sprintf("%d", schemaVersion),
	)
	return err
}

// UpsertStudent creates a student profile or refreshes name, email, and
// last_active on an existing one. An empty email leaves any stored email
// untouched.
func (s *StudentStore) UpsertStudent(studentID, name, email string) error {
	now := time.Now()

	var id int64
	err := s.db.QueryRow(`SELECT id FROM students WHERE student_id = ?`, studentID).Scan(&id)
	switch {
	case err == sql.ErrNoRows:
		var emailVal any
		if email != "" {
			emailVal = email
		}
		_, err = s.db.Exec(
			`INSERT INTO students (student_id, name, email, created_at, last_active) VALUES (?, ?, ?, ?, ?)`,
			studentID, name, emailVal, now, now,
		)
		return err
	case err != nil:
		return err
	}

	if email != "" {
		_, err = s.db.Exec(
			`UPDATE students SET name = ?, email = ?, last_active = ? WHERE student_id = ?`,
			name, email, now, studentID,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE students SET name = ?, last_active = ? WHERE student_id = ?`,
			name, now, studentID,
		)
	}
	return err
}

// GetStudent returns a student profile, or nil when absent.
func (s *StudentStore) GetStudent(studentID string) (*model.Student, error) {
	var (
		st         model.Student
		email      sql.NullString
		lastActive sql.NullTime
	)
	err := s.db.QueryRow(
		`SELECT id, student_id, name, email, created_at, last_active, total_quizzes_taken, average_score
		 FROM students WHERE student_id = ?`, studentID,
	).Scan(&st.ID, &st.StudentID, &st.Name, &email, &st.CreatedAt, &lastActive, &st.TotalQuizzesTaken, &st.AverageScore)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	st.Email = email.String
	if lastActive.Valid {
		st.LastActive = &lastActive.Time
	}
	return &st, nil
}

// SaveAttempt records a graded quiz in one transaction: the attempt row, its
// question results, the student's counters and recomputed average, and the
// topic progress upsert. Progress keeps the latest score but accumulates the
// question counters across attempts. An attempt without a topic skips the
// progress update.
func (s *StudentStore) SaveAttempt(attempt model.QuizAttempt, results []model.QuestionResult) (int64, error) {
	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO quiz_attempts
		 (student_id, quiz_id, topic, difficulty, score, total_marks, obtained_marks,
		  total_questions, correct_answers, incorrect_answers, unanswered_questions,
		  time_taken_seconds, attempt_date)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attempt.StudentID, attempt.QuizID, attempt.Topic, attempt.Difficulty,
		attempt.Score, attempt.TotalMarks, attempt.ObtainedMarks,
		attempt.TotalQuestions, attempt.CorrectAnswers, attempt.IncorrectAnswers,
		attempt.Unanswered, attempt.TimeTakenSeconds, now,
	)
	if err != nil {
		return 0, err
	}
	attemptID, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, r := range results {
		_, err := tx.Exec(
			`INSERT INTO question_results
			 (quiz_attempt_id, question_id, question_text, student_answer, is_correct, marks_awarded, max_marks, feedback)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			attemptID, r.QuestionID, r.QuestionText, r.StudentAnswer, r.IsCorrect,
			r.MarksAwarded, r.MaxMarks, r.Feedback,
		)
		if err != nil {
			return 0, err
		}
	}

	_, err = tx.Exec(
		`UPDATE students SET total_quizzes_taken = total_quizzes_taken + 1, last_active = ?
		 WHERE student_id = ?`,
		now, attempt.StudentID,
	)
	if err != nil {
		return 0, err
	}

	if attempt.Topic != "" {
		_, err = tx.Exec(
			`INSERT INTO student_progress
			 (topic, score, score_percentage, total_questions_generated, correct_questions, incorrect_questions)
			 VALUES (?, ?, ?, ?, ?, ?)
			 ON CONFLICT(topic) DO UPDATE SET
				score = excluded.score,
				score_percentage = excluded.score_percentage,
				total_questions_generated = total_questions_generated + excluded.total_questions_generated,
				correct_questions = correct_questions + excluded.correct_questions,
				incorrect_questions = incorrect_questions + excluded.incorrect_questions`,
			attempt.Topic, attempt.Score, attempt.Score,
			attempt.TotalQuestions, attempt.CorrectAnswers, attempt.IncorrectAnswers,
		)
		if err != nil {
			return 0, err
		}
	}

	_, err = tx.Exec(
		`UPDATE students
		 SET average_score = (SELECT AVG(score) FROM quiz_attempts WHERE student_id = ?)
		 WHERE student_id = ?`,
		attempt.StudentID, attempt.StudentID,
	)
	if err != nil {
		return 0, err
	}

	return attemptID, tx.Commit()
}

// GetStudentStats builds the full statistics view for a student, or nil when
// the student does not exist. Progress is shared across students because the
// progress table is keyed by topic only.
func (s *StudentStore) GetStudentStats(studentID string) (*model.StudentStats, error) {
	student, err := s.GetStudent(studentID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, nil
	}

	var stats model.QuizStats
	err = s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(AVG(score), 0), COALESCE(MAX(score), 0), COALESCE(MIN(score), 0),
		        COALESCE(SUM(total_questions), 0), COALESCE(SUM(correct_answers), 0)
		 FROM quiz_attempts WHERE student_id = ?`, studentID,
	).Scan(&stats.TotalQuizzes, &stats.AverageScore, &stats.BestScore, &stats.WorstScore,
		&stats.TotalQuestionsAttempted, &stats.TotalCorrect)
	if err != nil {
		return nil, err
	}

	progress, err := s.ListProgress()
	if err != nil {
		return nil, err
	}

	recent, err := s.ListAttempts(studentID, 10)
	if err != nil {
		return nil, err
	}

	return &model.StudentStats{
		Student:        *student,
		QuizStats:      stats,
		Progress:       progress,
		RecentAttempts: recent,
	}, nil
}

// ListProgress returns topic progress ordered by topic.
func (s *StudentStore) ListProgress() ([]model.TopicProgress, error) {
	rows, err := s.db.Query(
		`SELECT topic, score, score_percentage, total_questions_generated, correct_questions, incorrect_questions
		 FROM student_progress ORDER BY topic`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var progress []model.TopicProgress
	for rows.Next() {
		var p model.TopicProgress
		if err := rows.Scan(&p.Topic, &p.Score, &p.ScorePercentage,
			&p.TotalQuestionsGenerated, &p.CorrectQuestions, &p.IncorrectQuestions); err != nil {
			return nil, err
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}

// GetProgress returns the progress row for one topic, or nil when absent.
func (s *StudentStore) GetProgress(topic string) (*model.TopicProgress, error) {
	var p model.TopicProgress
	err := s.db.QueryRow(
		`SELECT topic, score, score_percentage, total_questions_generated, correct_questions, incorrect_questions
		 FROM student_progress WHERE topic = ?`, topic,
	).Scan(&p.Topic, &p.Score, &p.ScorePercentage,
		&p.TotalQuestionsGenerated, &p.CorrectQuestions, &p.IncorrectQuestions)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListAttempts returns a student's attempts, newest first. limit <= 0 means
// no limit.
func (s *StudentStore) ListAttempts(studentID string, limit int) ([]model.QuizAttempt, error) {
	query := `SELECT id, student_id, quiz_id, topic, difficulty, score, total_marks, obtained_marks,
	                 total_questions, correct_answers, incorrect_answers, unanswered_questions,
	                 time_taken_seconds, attempt_date
	          FROM quiz_attempts WHERE student_id = ? ORDER BY attempt_date DESC, id DESC`
	args := []any{studentID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

// ListAllAttempts returns every attempt in the database, newest first.
func (s *StudentStore) ListAllAttempts() ([]model.QuizAttempt, error) {
	rows, err := s.db.Query(
		`SELECT id, student_id, quiz_id, topic, difficulty, score, total_marks, obtained_marks,
		        total_questions, correct_answers, incorrect_answers, unanswered_questions,
		        time_taken_seconds, attempt_date
		 FROM quiz_attempts ORDER BY attempt_date DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAttempts(rows)
}

func scanAttempts(rows *sql.Rows) ([]model.QuizAttempt, error) {
	var attempts []model.QuizAttempt
	for rows.Next() {
		var a model.QuizAttempt
		if err := rows.Scan(&a.ID, &a.StudentID, &a.QuizID, &a.Topic, &a.Difficulty,
			&a.Score, &a.TotalMarks, &a.ObtainedMarks,
			&a.TotalQuestions, &a.CorrectAnswers, &a.IncorrectAnswers, &a.Unanswered,
			&a.TimeTakenSeconds, &a.AttemptDate); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ListQuestionResults returns the per-question results for an attempt.
func (s *StudentStore) ListQuestionResults(attemptID int64) ([]model.QuestionResult, error) {
	rows, err := s.db.Query(
		`SELECT id, quiz_attempt_id, question_id, question_text, student_answer, is_correct, marks_awarded, max_marks, feedback
		 FROM question_results WHERE quiz_attempt_id = ? ORDER BY id`, attemptID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var results []model.QuestionResult
	for rows.Next() {
		var r model.QuestionResult
		if err := rows.Scan(&r.ID, &r.QuizAttemptID, &r.QuestionID, &r.QuestionText,
			&r.StudentAnswer, &r.IsCorrect, &r.MarksAwarded, &r.MaxMarks, &r.Feedback); err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// ListStudents returns all students, newest first, with quiz counts and
// averages computed from their attempts.
func (s *StudentStore) ListStudents() ([]model.Student, error) {
	rows, err := s.db.Query(
		`SELECT s.id, s.student_id, s.name, s.email, s.created_at, s.last_active,
		        COUNT(DISTINCT qa.id), COALESCE(AVG(qa.score), 0)
		 FROM students s
		 LEFT JOIN quiz_attempts qa ON s.student_id = qa.student_id
		 GROUP BY s.id
		 ORDER BY s.created_at DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var students []model.Student
	for rows.Next() {
		var (
			st         model.Student
			email      sql.NullString
			lastActive sql.NullTime
		)
		if err := rows.Scan(&st.ID, &st.StudentID, &st.Name, &email, &st.CreatedAt, &lastActive,
			&st.TotalQuizzesTaken, &st.AverageScore); err != nil {
			return nil, err
		}
		st.Email = email.String
		if lastActive.Valid {
			st.LastActive = &lastActive.Time
		}
		students = append(students, st)
	}
	return students, rows.Err()
}

// Package store provides the two SQLite persistence layers: Store for the
// system database (users, interaction logs, conversation memory) and
// StudentStore for the student database (attempts, per-question results,
// topic progress).
package store

import (
	"database/sql"
	"fmt"
	"time"

	"aitutor/internal/model"

	_ "modernc.org/sqlite"
)

const schemaVersion = 1

// Store is the system database: accounts, interaction logs, and chat memory.
type Store struct {
	db *sql.DB
}

// New opens the system database and applies the schema.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS auth_sessions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		created_at DATETIME NOT NULL,
		expires_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS topic_queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic_name TEXT NOT NULL,
		student_id TEXT NOT NULL DEFAULT 'default',
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiz_generations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		topic TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		num_questions INTEGER NOT NULL,
		total_marks REAL NOT NULL,
		student_id TEXT NOT NULL DEFAULT 'default',
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS quiz_evaluations (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		quiz_id TEXT NOT NULL,
		topic TEXT,
		difficulty TEXT,
		score REAL NOT NULL,
		total_questions INTEGER NOT NULL,
		correct_answers INTEGER NOT NULL,
		total_marks REAL NOT NULL,
		obtained_marks REAL NOT NULL,
		student_id TEXT NOT NULL DEFAULT 'default',
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS student_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		student_id TEXT NOT NULL,
		quiz_id TEXT NOT NULL,
		topic TEXT,
		difficulty TEXT,
		score REAL NOT NULL,
		total_marks REAL NOT NULL,
		obtained_marks REAL NOT NULL,
		correct_answers INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_decisions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		decision_type TEXT NOT NULL,
		context TEXT,
		decision TEXT NOT NULL,
		confidence REAL,
		timestamp DATETIME NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_memory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		user_message TEXT NOT NULL,
		ai_response TEXT NOT NULL,
		context TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_agent_memory_user ON agent_memory(user_id, timestamp DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return s.SetMetadata("schema_version", fmt.Sprintf("%d", schemaVersion))
}

// LogTopicQuery records an explain request.
func (s *Store) LogTopicQuery(topic, studentID string) error {
	_, err := s.db.Exec(
		`INSERT INTO topic_queries (topic_name, student_id, timestamp) VALUES (?, ?, ?)`,
		topic, studentID, time.Now(),
	)
	return err
}

// LogQuizGeneration records a generated quiz.
func (s *Store) LogQuizGeneration(topic string, difficulty model.Difficulty, numQuestions int, totalMarks float64, studentID string) error {
	_, err := s.db.Exec(
		`INSERT INTO quiz_generations (topic, difficulty, num_questions, total_marks, student_id, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		topic, difficulty, numQuestions, totalMarks, studentID, time.Now(),
	)
	return err
}

// LogQuizEvaluation records an evaluation in both the quiz_evaluations and
// student_scores tables.
func (s *Store) LogQuizEvaluation(res *model.EvaluationResult, topic string, difficulty model.Difficulty, studentID string) error {
	now := time.Now()
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO quiz_evaluations
		 (quiz_id, topic, difficulty, score, total_questions, correct_answers, total_marks, obtained_marks, student_id, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		res.QuizID, topic, difficulty, res.Score, res.TotalQuestions, res.CorrectAnswers,
		res.TotalMarks, res.ObtainedMarks, studentID, now,
	)
	if err != nil {
		return err
	}

	_, err = tx.Exec(
		`INSERT INTO student_scores
		 (student_id, quiz_id, topic, difficulty, score, total_marks, obtained_marks, correct_answers, total_questions, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		studentID, res.QuizID, topic, difficulty, res.Score, res.TotalMarks,
		res.ObtainedMarks, res.CorrectAnswers, res.TotalQuestions, now,
	)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// LogDecision records an agent decision for auditing.
func (s *Store) LogDecision(decisionType, context, decision string, confidence float64) error {
	_, err := s.db.Exec(
		`INSERT INTO agent_decisions (decision_type, context, decision, confidence, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		decisionType, context, decision, confidence, time.Now(),
	)
	return err
}

// StoreConversation appends one chat turn to the user's memory.
func (s *Store) StoreConversation(userID, userMessage, aiResponse, context string) error {
	_, err := s.db.Exec(
		`INSERT INTO agent_memory (user_id, user_message, ai_response, context, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		userID, userMessage, aiResponse, context, time.Now(),
	)
	return err
}

// GetMemory returns the user's most recent conversations, newest first.
func (s *Store) GetMemory(userID string, limit int) ([]model.Conversation, error) {
	rows, err := s.db.Query(
		`SELECT user_message, ai_response, COALESCE(context, ''), timestamp
		 FROM agent_memory WHERE user_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var conversations []model.Conversation
	for rows.Next() {
		var c model.Conversation
		if err := rows.Scan(&c.UserMessage, &c.AIResponse, &c.Context, &c.Timestamp); err != nil {
			return nil, err
		}
		conversations = append(conversations, c)
	}
	return conversations, rows.Err()
}

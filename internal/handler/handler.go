// Package handler wires the JSON API: topic explanations, quiz generation
// and grading, chat with memory, accounts, student records, and the
// reasoning endpoints.
package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"aitutor/internal/llm"
	"aitutor/internal/llm/prompts"
	"aitutor/internal/model"
	"aitutor/internal/quiz"
	"aitutor/internal/reasoning"
	"aitutor/internal/resources"
	"aitutor/internal/store"
	"aitutor/internal/topics"
)

// Handler holds shared dependencies for HTTP handlers. llm and students may
// be nil: without a model every endpoint falls back to the deterministic
// heuristics, and without a student database the student endpoints return 503.
type Handler struct {
	store    *store.Store
	students *store.StudentStore
	llm      *llm.Client
	finder   *resources.Finder
}

// New creates a new Handler.
func New(s *store.Store, students *store.StudentStore, l *llm.Client) *Handler {
	return &Handler{store: s, students: students, llm: l, finder: resources.NewFinder()}
}

// Routes registers all HTTP routes.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.handleRoot)
	r.Get("/api/health", h.handleHealth)
	r.Post("/api/topics/explain", h.handleExplainTopic)
	r.Get("/api/topics/suggestions", h.handleTopicSuggestions)
	r.Post("/api/quiz/generate", h.handleGenerateQuiz)
	r.Post("/api/quiz/evaluate", h.handleEvaluateQuiz)
	r.Post("/api/chat/message", h.handleChat)
	r.Get("/api/memory", h.handleMemory)
	r.Post("/api/auth/signup", h.handleSignUp)
	r.Post("/api/auth/signin", h.handleSignIn)
	r.Get("/api/students", h.handleListStudents)
	r.Post("/api/students", h.handleCreateStudent)
	r.Get("/api/students/{studentID}/stats", h.handleStudentStats)
	r.Post("/api/reasoning/summarize", h.handleSummarize)
	r.Post("/api/reasoning/classify", h.handleClassify)
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// generator returns the model as a grading generator, or a nil interface
// when no model is configured.
func (h *Handler) generator() quiz.Generator {
	if h.llm == nil {
		return nil
	}
	return h.llm
}

func (h *Handler) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "AI Tutor",
		"status":  "running",
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"llm_available": h.llm != nil,
		"timestamp":     time.Now().Format(time.RFC3339),
	})
}

type explainRequest struct {
	TopicName string `json:"topic_name"`
}

func (h *Handler) handleExplainTopic(w http.ResponseWriter, r *http.Request) {
	var req explainRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.TopicName) == "" {
		respondError(w, http.StatusBadRequest, "topic_name required")
		return
	}

	ctx := r.Context()
	ct, baseTopic := topics.DetectContentType(req.TopicName)

	var explanation string
	if h.llm != nil {
		reply, err := h.llm.Generate(ctx, prompts.Explanation(ct, baseTopic, req.TopicName))
		reply = strings.TrimSpace(reply)
		if err != nil || len(reply) < 50 {
			slog.Warn("explanation fell back to template", "topic", baseTopic, "error", err, "length", len(reply))
			explanation = reasoning.FallbackExplanation(baseTopic)
		} else {
			explanation = formatParagraphs(reply)
		}
	} else {
		explanation = reasoning.FallbackExplanation(baseTopic)
	}

	// The video search uses the extracted base topic while the encyclopedia
	// link keeps the query as typed.
	var title string
	if h.llm != nil {
		if reply, err := h.llm.Generate(ctx, prompts.YouTubeTitle(baseTopic)); err == nil {
			title = cleanVideoTitle(reply)
		}
	}
	youtube := h.finder.YouTubeLink(ctx, baseTopic, title)
	references := resources.FilterWikipedia([]model.Link{resources.WikipediaLink(req.TopicName)})

	completeness := float64(len(explanation)) / 500
	if completeness > 1 {
		completeness = 1
	}
	confidence := 0.6
	if h.llm != nil {
		confidence = 0.9
	}

	resp := model.Explanation{
		Topic:             baseTopic,
		Explanation:       explanation,
		YouTubeLinks:      []model.Link{youtube},
		WebsiteReferences: references,
		CompletenessScore: quiz.Round2(completeness),
		ConfidenceScore:   confidence,
	}

	if err := h.store.LogTopicQuery(req.TopicName, "default"); err != nil {
		slog.Warn("failed to log topic query", "error", err)
	}
	decision := fmt.Sprintf("Generated explanation with completeness: %.2f, confidence: %.2f",
		resp.CompletenessScore, resp.ConfidenceScore)
	if err := h.store.LogDecision("topic_explanation", req.TopicName, decision, resp.ConfidenceScore); err != nil {
		slog.Warn("failed to log decision", "error", err)
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleTopicSuggestions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{"suggestions": topics.Suggestions()})
}

type generateQuizRequest struct {
	Topic            string           `json:"topic"`
	Difficulty       model.Difficulty `json:"difficulty"`
	NumQuestions     int              `json:"num_questions"`
	MarksPerQuestion float64          `json:"marks_per_question"`
}

func (h *Handler) handleGenerateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Topic) == "" {
		respondError(w, http.StatusBadRequest, "topic required")
		return
	}
	if req.NumQuestions < 1 || req.NumQuestions > 50 {
		respondError(w, http.StatusBadRequest, "num_questions must be between 1 and 50")
		return
	}
	if req.MarksPerQuestion <= 0 {
		req.MarksPerQuestion = quiz.DefaultMarksPerQuestion
	}
	if !topics.IsAITopic(req.Topic) {
		respondError(w, http.StatusBadRequest, fmt.Sprintf(
			"Quiz generation is only available for AI-related topics. %q is not recognized as an AI topic. "+
				"Please enter an AI-related topic such as Machine Learning, Deep Learning, Neural Networks, "+
				"Natural Language Processing, etc.", req.Topic))
		return
	}

	q := quiz.Generate(r.Context(), h.generator(), req.Topic, req.NumQuestions, req.Difficulty, req.MarksPerQuestion)

	if err := h.store.LogQuizGeneration(req.Topic, req.Difficulty, req.NumQuestions, q.TotalMarks, "default"); err != nil {
		slog.Warn("failed to log quiz generation", "error", err)
	}
	decision := fmt.Sprintf("Generated %d questions with completeness: %.2f", len(q.Questions), q.CompletenessScore)
	if err := h.store.LogDecision("quiz_generation", req.Topic, decision, q.ConfidenceScore); err != nil {
		slog.Warn("failed to log decision", "error", err)
	}

	respondJSON(w, http.StatusOK, q)
}

type evaluateQuizRequest struct {
	QuizID           string            `json:"quiz_id"`
	Answers          map[string]string `json:"answers"`
	Questions        []model.Question  `json:"questions"`
	Topic            string            `json:"topic"`
	Difficulty       model.Difficulty  `json:"difficulty"`
	MarksPerQuestion float64           `json:"marks_per_question"`
	UserID           string            `json:"user_id"`
	TimeTakenSeconds int               `json:"time_taken_seconds"`
}

func (h *Handler) handleEvaluateQuiz(w http.ResponseWriter, r *http.Request) {
	var req evaluateQuizRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = "default"
	}
	if req.MarksPerQuestion <= 0 {
		req.MarksPerQuestion = quiz.DefaultMarksPerQuestion
	}

	res, err := quiz.EvaluateQuiz(r.Context(), h.generator(), quiz.Submission{
		QuizID:           req.QuizID,
		Topic:            req.Topic,
		Difficulty:       req.Difficulty,
		Answers:          req.Answers,
		Questions:        req.Questions,
		MarksPerQuestion: req.MarksPerQuestion,
	})
	if errors.Is(err, quiz.ErrNoAnswers) {
		respondError(w, http.StatusBadRequest, "No answers provided for evaluation")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Persistence is best effort: a storage failure must not lose the grade.
	if err := h.store.LogQuizEvaluation(res, req.Topic, req.Difficulty, userID); err != nil {
		slog.Warn("failed to log quiz evaluation", "error", err)
	}
	if h.students != nil {
		h.saveAttempt(userID, req, res)
	}

	respondJSON(w, http.StatusOK, res)
}

func (h *Handler) saveAttempt(userID string, req evaluateQuizRequest, res *model.EvaluationResult) {
	if err := h.students.UpsertStudent(userID, userID, ""); err != nil {
		slog.Warn("failed to upsert student", "student_id", userID, "error", err)
		return
	}

	results := make([]model.QuestionResult, 0, len(res.Feedback))
	for _, fb := range res.Feedback {
		results = append(results, model.QuestionResult{
			QuestionID:    fb.QuestionID,
			QuestionText:  fb.Question,
			StudentAnswer: fb.Answer,
			IsCorrect:     fb.Correct,
			MarksAwarded:  fb.MarksAwarded,
			MaxMarks:      fb.MaxMarks,
			Feedback:      fb.Feedback,
		})
	}

	attempt := model.QuizAttempt{
		StudentID:        userID,
		QuizID:           res.QuizID,
		Topic:            req.Topic,
		Difficulty:       req.Difficulty,
		Score:            res.Score,
		TotalMarks:       res.TotalMarks,
		ObtainedMarks:    res.ObtainedMarks,
		TotalQuestions:   res.TotalQuestions,
		CorrectAnswers:   res.CorrectAnswers,
		IncorrectAnswers: res.IncorrectAnswers,
		Unanswered:       res.Unanswered,
		TimeTakenSeconds: req.TimeTakenSeconds,
	}
	if _, err := h.students.SaveAttempt(attempt, results); err != nil {
		slog.Warn("failed to save quiz attempt", "student_id", userID, "error", err)
	}
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		respondError(w, http.StatusBadRequest, "message required")
		return
	}
	userID := req.UserID
	if userID == "" {
		userID = "default"
	}

	history, err := h.store.GetMemory(userID, 5)
	if err != nil {
		slog.Warn("failed to load memory", "user_id", userID, "error", err)
	}

	var reply string
	if h.llm != nil {
		raw, err := h.llm.Generate(r.Context(), prompts.Chat(req.Message, history))
		if err == nil {
			reply = cleanChatReply(raw)
		}
		if err != nil || len(reply) < 30 {
			slog.Warn("chat fell back to template", "error", err, "length", len(reply))
			reply = reasoning.FallbackChat(req.Message, true)
		}
	} else {
		reply = reasoning.FallbackChat(req.Message, false)
	}

	if err := h.store.StoreConversation(userID, req.Message, reply, ""); err != nil {
		slog.Warn("failed to store conversation", "user_id", userID, "error", err)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"message":   reply,
		"action":    "general_response",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *Handler) handleMemory(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		userID = "default"
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	conversations, err := h.store.GetMemory(userID, limit)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if conversations == nil {
		conversations = []model.Conversation{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"user_id":       userID,
		"conversations": conversations,
		"total_count":   len(conversations),
	})
}

type summarizeRequest struct {
	Content string `json:"content"`
}

func (h *Handler) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req summarizeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "Content required")
		return
	}

	sum := reasoning.Summarize(req.Content)

	decision := fmt.Sprintf("Summarized %d chars to %d", sum.OriginalLength, sum.SummaryLength)
	if err := h.store.LogDecision("summarization", truncate(req.Content, 100), decision, sum.ConfidenceScore); err != nil {
		slog.Warn("failed to log decision", "error", err)
	}

	respondJSON(w, http.StatusOK, sum)
}

type classifyRequest struct {
	Content    string   `json:"content"`
	Categories []string `json:"categories"`
}

func (h *Handler) handleClassify(w http.ResponseWriter, r *http.Request) {
	var req classifyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Content == "" {
		respondError(w, http.StatusBadRequest, "Content required")
		return
	}
	categories := req.Categories
	if len(categories) == 0 {
		categories = reasoning.DefaultCategories
	}

	cls := reasoning.Classify(req.Content, categories)

	if err := h.store.LogDecision("classification", truncate(req.Content, 100), cls.Category, cls.Confidence); err != nil {
		slog.Warn("failed to log decision", "error", err)
	}

	respondJSON(w, http.StatusOK, cls)
}

// formatParagraphs normalizes model output into double-newline paragraphs.
// Text with single line breaks gets them doubled; text with none is grouped
// into paragraphs of ten sentences.
func formatParagraphs(s string) string {
	if strings.Contains(s, "\n\n") {
		return s
	}
	if strings.Contains(s, "\n") {
		return strings.ReplaceAll(s, "\n", "\n\n")
	}

	sentences := strings.Split(s, ". ")
	const perParagraph = 10
	var paragraphs []string
	for i := 0; i < len(sentences); i += perParagraph {
		end := i + perParagraph
		if end > len(sentences) {
			end = len(sentences)
		}
		p := strings.Join(sentences[i:end], ". ")
		if !strings.HasSuffix(p, ".") {
			p += "."
		}
		paragraphs = append(paragraphs, p)
	}
	return strings.Join(paragraphs, "\n\n")
}

var chatPrefixes = []string{"Assistant:", "AI:", "Response:", "Answer:", "Here's", "Here is"}

func cleanChatReply(reply string) string {
	reply = strings.TrimSpace(reply)
	for _, prefix := range chatPrefixes {
		if strings.HasPrefix(reply, prefix) {
			reply = strings.TrimSpace(strings.TrimPrefix(reply, prefix))
			reply = strings.TrimSpace(strings.TrimPrefix(reply, ":"))
		}
	}
	return trimQuotes(reply)
}

func cleanVideoTitle(title string) string {
	title = strings.TrimSpace(title)
	title = strings.TrimLeft(title, "0123456789.-) ")
	return trimQuotes(strings.TrimSpace(title))
}

func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`)) ||
			(strings.HasPrefix(s, "'") && strings.HasSuffix(s, "'")) {
			s = strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

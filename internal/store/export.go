package store

import (
	"fmt"

	"aitutor/internal/model"
)

// StudentExport is the export payload for one student: the profile, every
// attempt, and each attempt's question results keyed by attempt ID.
type StudentExport struct {
	Student  model.Student                    `json:"student"`
	Attempts []model.QuizAttempt              `json:"attempts"`
	Results  map[int64][]model.QuestionResult `json:"results"`
}

// Export is the full student database dump used by the export command.
type Export struct {
	Students []StudentExport       `json:"students"`
	Progress []model.TopicProgress `json:"progress"`
}

// ExportAll builds an export of all students, their attempts with question
// results, and the shared topic progress.
func (s *StudentStore) ExportAll() (*Export, error) {
	students, err := s.ListStudents()
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}

	var out Export
	for _, st := range students {
		attempts, err := s.ListAttempts(st.StudentID, 0)
		if err != nil {
			return nil, fmt.Errorf("list attempts for %s: %w", st.StudentID, err)
		}
		results := make(map[int64][]model.QuestionResult)
		for _, a := range attempts {
			qr, err := s.ListQuestionResults(a.ID)
			if err != nil {
				return nil, fmt.Errorf("list results for attempt %d: %w", a.ID, err)
			}
			if len(qr) > 0 {
				results[a.ID] = qr
			}
		}
		out.Students = append(out.Students, StudentExport{
			Student:  st,
			Attempts: attempts,
			Results:  results,
		})
	}

	progress, err := s.ListProgress()
	if err != nil {
		return nil, fmt.Errorf("list progress: %w", err)
	}
	out.Progress = progress

	return &out, nil
}

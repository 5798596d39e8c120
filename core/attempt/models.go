package attempt

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// timestampFormat matches what the grading backend stores: RFC3339 UTC with
// millisecond precision.
const timestampFormat = "2006-01-02T15:04:05.000Z07:00"

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampFormat)
}

func parseTimestamp(s string) (time.Time, error) {
	return time.Parse(time.RFC3339, s)
}

// Test structure, read-only, owned by the grading backend. Ordinal numbers
// are server-assigned: 1-based, globally unique and increasing across the
// whole test. They are never recomputed here.
type (
	Test struct {
		ID       int    `json:"id"`
		CourseID int    `json:"courseId"`
		Title    string `json:"title"`
		Parts    []Part `json:"parts"`
	}

	Part struct {
		ID             int             `json:"id"`
		Name           string          `json:"name"`
		OrdinalNumber  int             `json:"ordinalNumber"`
		QuestionGroups []QuestionGroup `json:"questionGroups"`
	}

	// QuestionGroup is a cluster of questions sharing a requirement text
	// within a part.
	QuestionGroup struct {
		ID          int        `json:"id"`
		Requirement string     `json:"requirement"`
		Questions   []Question `json:"questions"`
	}

	Question struct {
		ID            int    `json:"id"`
		OrdinalNumber int    `json:"ordinalNumber"`
		Kind          string `json:"kind"`
	}
)

// UserAnswer is one answered question within an attempt. Answers is opaque at
// this level: a single option, several options or flattened matching pairs
// depending on the question kind; AnswerInput validates the shape where
// answers are produced.
type UserAnswer struct {
	TestQuestionID int      `json:"testQuestionId"`
	Answers        []string `json:"answers"`
}

// TestAttempt is the persisted unit: one owner's in-progress try at a test.
// StartedAt is set exactly once, when the attempt is created, and never
// overwritten. UserAnswers holds at most one entry per TestQuestionID, in
// insertion order.
type TestAttempt struct {
	TestID      int          `json:"testId"`
	CourseID    int          `json:"courseId"`
	StartedAt   null.String  `json:"startedAt"`
	UserAnswers []UserAnswer `json:"userAnswers"`
}

// SetAnswer records answers for a question: replaces the existing entry in
// place (position preserved), appends otherwise.
func (a *TestAttempt) SetAnswer(testQuestionID int, answers []string) {
	for i := range a.UserAnswers {
		if a.UserAnswers[i].TestQuestionID == testQuestionID {
			a.UserAnswers[i].Answers = answers
			return
		}
	}
	a.UserAnswers = append(a.UserAnswers, UserAnswer{TestQuestionID: testQuestionID, Answers: answers})
}

// Answer returns the recorded answers for a question, if any.
func (a *TestAttempt) Answer(testQuestionID int) ([]string, bool) {
	for i := range a.UserAnswers {
		if a.UserAnswers[i].TestQuestionID == testQuestionID {
			return a.UserAnswers[i].Answers, true
		}
	}
	return nil, false
}

// SubmitTestRequest is the wire payload the grading backend expects.
// TakingDuration is null whenever StartedAt is missing: an incomplete start
// time is a distinct state, never defaulted to zero. Unanswered questions are
// simply absent from UserAnswers.
type SubmitTestRequest struct {
	TestID         int          `json:"testId"`
	TakingDuration null.Int     `json:"takingDuration"`
	StartedAt      null.String  `json:"startedAt"`
	FinishedAt     string       `json:"finishedAt"`
	UserAnswers    []UserAnswer `json:"userAnswers"`
}

// buildSubmission converts a persisted attempt into the submit payload.
// UserAnswers are carried verbatim.
func buildSubmission(att *TestAttempt, finished time.Time) *SubmitTestRequest {
	req := &SubmitTestRequest{
		TestID:      att.TestID,
		StartedAt:   att.StartedAt,
		FinishedAt:  formatTimestamp(finished),
		UserAnswers: att.UserAnswers,
	}
	if att.StartedAt.Valid {
		if started, err := parseTimestamp(att.StartedAt.String); err == nil {
			req.TakingDuration = null.IntFrom(int(finished.Sub(started).Seconds()))
		}
		// an unparseable startedAt leaves TakingDuration null; the backend
		// treats it as incomplete attempt state
	}
	return req
}

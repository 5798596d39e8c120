package testutil

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/kipimo/core/attempt"
)

// SampleTest returns a small two-part test structure: part 1 owns ordinals
// 1..3, part 2 owns ordinals 4..5.
func SampleTest() *attempt.Test {
	return &attempt.Test{
		ID:       7,
		CourseID: 3,
		Title:    "Listening & Reading Mock",
		Parts: []attempt.Part{
			{
				ID: 1, Name: "Listening", OrdinalNumber: 1,
				QuestionGroups: []attempt.QuestionGroup{
					{ID: 10, Requirement: "Listen and choose.", Questions: []attempt.Question{
						{ID: 101, OrdinalNumber: 1, Kind: attempt.KindSingleChoice},
						{ID: 102, OrdinalNumber: 2, Kind: attempt.KindSingleChoice},
						{ID: 103, OrdinalNumber: 3, Kind: attempt.KindMultipleChoice},
					}},
				},
			},
			{
				ID: 2, Name: "Reading", OrdinalNumber: 2,
				QuestionGroups: []attempt.QuestionGroup{
					{ID: 12, Requirement: "Read the passage.", Questions: []attempt.Question{
						{ID: 104, OrdinalNumber: 4, Kind: attempt.KindMatching},
						{ID: 105, OrdinalNumber: 5, Kind: attempt.KindSingleChoice},
					}},
				},
			},
		},
	}
}

// CreateAttempt seeds a stored attempt with the given answers.
func CreateAttempt(t *testing.T, svc attempt.Service, owner string, testID, courseID int, answers map[int][]string) *attempt.TestAttempt {
	t.Helper()

	att, err := svc.Create(owner, testID, courseID)
	if err != nil {
		t.Fatalf("CreateAttempt() failed: %v", err)
	}
	for qid, ans := range answers {
		if att, err = svc.UpsertAnswer(owner, testID, qid, ans); err != nil {
			t.Fatalf("CreateAttempt() failed answering %d: %v", qid, err)
		}
	}
	return att
}

// JSONBytesEqual compares two JSON payloads structurally and reports a
// unified diff on mismatch.
func JSONBytesEqual(t *testing.T, want, got []byte) {
	t.Helper()

	var jw, jg interface{}
	if err := json.Unmarshal(want, &jw); err != nil {
		t.Fatalf("JSONBytesEqual() unmarshalling want: %v", err)
	}
	if err := json.Unmarshal(got, &jg); err != nil {
		t.Fatalf("JSONBytesEqual() unmarshalling got: %v", err)
	}
	if reflect.DeepEqual(jw, jg) {
		return
	}

	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(indentJSON(t, want)),
		B:        difflib.SplitLines(indentJSON(t, got)),
		FromFile: "want",
		ToFile:   "got",
		Context:  2,
	})
	t.Errorf("JSON mismatch:\n%s", diff)
}

func indentJSON(t *testing.T, raw []byte) string {
	t.Helper()
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		t.Fatalf("indentJSON() failed: %v", err)
	}
	return buf.String()
}

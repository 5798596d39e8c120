package attempt

import (
	"reflect"
	"testing"
)

func TestOrdinalRanges(t *testing.T) {
	test := sampleTest()

	want := map[int][]int{
		1: {1, 2, 3},
		2: {4, 5},
	}
	got := OrdinalRanges(test)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("OrdinalRanges() = %v, want %v", got, want)
	}

	// pure: same input, identical output
	if again := OrdinalRanges(test); !reflect.DeepEqual(again, got) {
		t.Errorf("OrdinalRanges() not pure: second call = %v, first = %v", again, got)
	}
}

func TestOrdinalRanges_gapsPreserved(t *testing.T) {
	test := sampleTest()
	// server skipped ordinal 2
	test.Parts[0].QuestionGroups[1].Questions[0].OrdinalNumber = 6

	want := map[int][]int{
		1: {1, 3, 6},
		2: {4, 5},
	}
	if got := OrdinalRanges(test); !reflect.DeepEqual(got, want) {
		t.Errorf("OrdinalRanges() = %v, want %v (gaps must not be filled in)", got, want)
	}
}

func TestQuestionsInRange(t *testing.T) {
	test := sampleTest()

	tests := []struct {
		name     string
		partID   int
		from     int
		count    int
		wantOrds []int
	}{
		{name: "full part", partID: 1, from: 0, count: 3, wantOrds: []int{1, 2, 3}},
		{name: "mid slice", partID: 1, from: 1, count: 2, wantOrds: []int{2, 3}},
		{name: "count exceeds length", partID: 2, from: 0, count: 99, wantOrds: []int{4, 5}},
		{name: "from exceeds length", partID: 2, from: 10, count: 2, wantOrds: []int{}},
		{name: "negative from", partID: 2, from: -1, count: 1, wantOrds: []int{4}},
		{name: "negative count clamps to end", partID: 2, from: 1, count: -1, wantOrds: []int{5}},
		{name: "unknown part", partID: 42, from: 0, count: 5, wantOrds: []int{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := QuestionsInRange(test, tt.partID, tt.from, tt.count)
			ords := make([]int, 0, len(got))
			for _, q := range got {
				ords = append(ords, q.OrdinalNumber)
			}
			if !reflect.DeepEqual(ords, tt.wantOrds) {
				t.Errorf("QuestionsInRange() ordinals = %v, want %v", ords, tt.wantOrds)
			}
		})
	}
}

func TestProgress(t *testing.T) {
	test := sampleTest()

	att := &TestAttempt{TestID: test.ID, CourseID: test.CourseID}
	att.SetAnswer(102, []string{"b"}) // ordinal 2, part 1
	att.SetAnswer(105, []string{"a"}) // ordinal 5, part 2

	if len(att.UserAnswers) != 2 {
		t.Fatalf("UserAnswers len = %d, want 2", len(att.UserAnswers))
	}

	want := []PartProgress{
		{PartID: 1, Answered: 1, Total: 3, OrdinalNumbers: []int{1, 2, 3}},
		{PartID: 2, Answered: 1, Total: 2, OrdinalNumbers: []int{4, 5}},
	}
	if got := Progress(test, att); !reflect.DeepEqual(got, want) {
		t.Errorf("Progress() = %+v, want %+v", got, want)
	}
}

func TestProgress_nilAttempt(t *testing.T) {
	test := sampleTest()
	for _, pp := range Progress(test, nil) {
		if pp.Answered != 0 {
			t.Errorf("Progress() part %d answered = %d, want 0", pp.PartID, pp.Answered)
		}
	}
}

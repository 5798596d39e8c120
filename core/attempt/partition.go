package attempt

import "sort"

// Partition index: derives, from the test structure, which ordinal numbers
// belong to each part. Pure functions of the test object; both the main view
// and the progress footer consume the same output so they cannot drift.

// OrdinalRanges buckets every question's server-assigned ordinal number under
// its owning part, walking parts, groups and questions in their given order.
// Per part the ordinals come out sorted ascending. Gaps in the source data
// are preserved faithfully, never filled in.
func OrdinalRanges(test *Test) map[int][]int {
	ranges := make(map[int][]int, len(test.Parts))
	for _, part := range test.Parts {
		ords := make([]int, 0)
		for _, grp := range part.QuestionGroups {
			for _, q := range grp.Questions {
				ords = append(ords, q.OrdinalNumber)
			}
		}
		sort.Ints(ords)
		ranges[part.ID] = ords
	}
	return ranges
}

// PartQuestions returns a part's questions flattened across its groups, in
// given order. Unknown partID yields an empty list.
func PartQuestions(test *Test, partID int) []Question {
	var qs []Question
	for _, part := range test.Parts {
		if part.ID != partID {
			continue
		}
		for _, grp := range part.QuestionGroups {
			qs = append(qs, grp.Questions...)
		}
	}
	return qs
}

// QuestionsInRange slices a part's flattened question list by position, used
// for the contiguous numeric ranges on progress-footer buttons. Out-of-range
// from/count values clamp to what is available.
func QuestionsInRange(test *Test, partID, from, count int) []Question {
	qs := PartQuestions(test, partID)
	if from < 0 {
		from = 0
	}
	if from > len(qs) {
		from = len(qs)
	}
	end := len(qs)
	if count >= 0 && from+count < end {
		end = from + count
	}
	return qs[from:end]
}

// PartProgress is the per-part answered tally backing the progress footer
// ("1 of 3").
type PartProgress struct {
	PartID         int   `json:"partId"`
	Answered       int   `json:"answered"`
	Total          int   `json:"total"`
	OrdinalNumbers []int `json:"ordinalNumbers"`
}

// Progress tallies answered questions per part. att may be nil (nothing
// answered yet).
func Progress(test *Test, att *TestAttempt) []PartProgress {
	ranges := OrdinalRanges(test)

	progress := make([]PartProgress, 0, len(test.Parts))
	for _, part := range test.Parts {
		pp := PartProgress{PartID: part.ID, OrdinalNumbers: ranges[part.ID]}
		for _, grp := range part.QuestionGroups {
			for _, q := range grp.Questions {
				pp.Total++
				if att == nil {
					continue
				}
				if _, ok := att.Answer(q.ID); ok {
					pp.Answered++
				}
			}
		}
		progress = append(progress, pp)
	}
	return progress
}

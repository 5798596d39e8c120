package attempt

import (
	"context"

	"github.com/trezcool/kipimo/core"
)

// shared fixtures and doubles for tests in this package

// sampleTest covers two parts: part 1 owns ordinals 1..3 split across two
// groups, part 2 owns ordinals 4..5. Question IDs deliberately differ from
// ordinal numbers.
func sampleTest() *Test {
	return &Test{
		ID:       7,
		CourseID: 3,
		Title:    "Listening & Reading Mock",
		Parts: []Part{
			{
				ID: 1, Name: "Listening", OrdinalNumber: 1,
				QuestionGroups: []QuestionGroup{
					{ID: 10, Requirement: "Listen and choose.", Questions: []Question{
						{ID: 101, OrdinalNumber: 1, Kind: KindSingleChoice},
					}},
					{ID: 11, Requirement: "Listen again.", Questions: []Question{
						{ID: 102, OrdinalNumber: 2, Kind: KindSingleChoice},
						{ID: 103, OrdinalNumber: 3, Kind: KindMultipleChoice},
					}},
				},
			},
			{
				ID: 2, Name: "Reading", OrdinalNumber: 2,
				QuestionGroups: []QuestionGroup{
					{ID: 12, Requirement: "Read the passage.", Questions: []Question{
						{ID: 104, OrdinalNumber: 4, Kind: KindMatching},
						{ID: 105, OrdinalNumber: 5, Kind: KindSingleChoice},
					}},
				},
			},
		},
	}
}

type nopLogger struct{}

var _ core.Logger = (*nopLogger)(nil)

func (nopLogger) Enable(bool)                   {}
func (nopLogger) Debug(string, ...interface{})  {}
func (nopLogger) Info(string, ...interface{})   {}
func (nopLogger) Warn(string, ...interface{})   {}
func (nopLogger) Error(string, ...interface{})  {}
func (nopLogger) Fatal(string, ...interface{})  {}

// flakyKV wraps a store and fails writes on demand.
type flakyKV struct {
	core.KeyValueStore
	failWrites bool
	writeErr   error
}

func (kv *flakyKV) Set(key string, value []byte) error {
	if kv.failWrites {
		return kv.writeErr
	}
	return kv.KeyValueStore.Set(key, value)
}

type fetcherStub struct {
	test *Test
	err  error
}

func (f *fetcherStub) FetchTest(context.Context, int) (*Test, error) {
	return f.test, f.err
}

type submitterStub struct {
	err  error
	got  []*SubmitTestRequest
}

func (s *submitterStub) SubmitTest(_ context.Context, req *SubmitTestRequest) error {
	if s.err != nil {
		return s.err
	}
	s.got = append(s.got, req)
	return nil
}

package gradersvc

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core/attempt"
)

// DummyService serves canned tests and swallows submissions; the DEV/TEST
// grader when no backend is running.
type DummyService struct {
	mutex       sync.Mutex
	tests       map[int]*attempt.Test
	Submissions []*attempt.SubmitTestRequest
	SubmitErr   error
}

var (
	_ attempt.TestFetcher = (*DummyService)(nil)
	_ attempt.Submitter   = (*DummyService)(nil)
)

func NewDummyService(tests ...*attempt.Test) *DummyService {
	svc := &DummyService{tests: make(map[int]*attempt.Test, len(tests))}
	for _, t := range tests {
		svc.tests[t.ID] = t
	}
	return svc
}

func (svc *DummyService) FetchTest(_ context.Context, testID int) (*attempt.Test, error) {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	test, ok := svc.tests[testID]
	if !ok {
		return nil, errors.Errorf("test %d not found", testID)
	}
	return test, nil
}

func (svc *DummyService) SubmitTest(_ context.Context, req *attempt.SubmitTestRequest) error {
	svc.mutex.Lock()
	defer svc.mutex.Unlock()

	if svc.SubmitErr != nil {
		return svc.SubmitErr
	}
	svc.Submissions = append(svc.Submissions, req)
	return nil
}

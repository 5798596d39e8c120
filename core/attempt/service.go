package attempt

import (
	"errors"
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/kipimo/core"
)

var (
	// errors
	ErrNoAttempt = errors.New("no attempt found for this test")

	nowFunc = time.Now // mockable
)

type (
	// Service manages one owner's persisted test attempts.
	//
	// Creating an attempt and answering are two explicit steps: UpsertAnswer
	// never fabricates an attempt shell, so StartedAt has exactly one writer.
	Service interface {
		// Create persists a fresh attempt with StartedAt set to now.
		// It is idempotent: an existing attempt is returned as-is, its
		// StartedAt untouched.
		Create(owner string, testID, courseID int) (*TestAttempt, error)
		// Get returns the stored attempt, or ErrNoAttempt.
		Get(owner string, testID int) (*TestAttempt, error)
		// Save overwrites the stored attempt wholesale (last-write-wins).
		Save(owner string, att *TestAttempt) error
		// UpsertAnswer records answers for one question and persists the
		// full attempt. The mutated attempt is returned even when
		// persistence fails with a StorageUnavailableError, so callers can
		// carry on in memory.
		UpsertAnswer(owner string, testID, testQuestionID int, answers []string) (*TestAttempt, error)
		// BuildSubmission converts the stored attempt into the submit
		// payload. The attempt itself is not touched; clearing happens only
		// after the grading backend acknowledges.
		BuildSubmission(owner string, testID int) (*SubmitTestRequest, error)
		Clear(owner string, testID int) error
		ClearAllForOwner(owner string) error
	}

	service struct {
		store  *store
		logger core.Logger
	}
)

var _ Service = (*service)(nil)

func NewService(kv core.KeyValueStore, logger core.Logger) Service {
	return &service{
		store:  &store{kv: kv, logger: logger},
		logger: logger,
	}
}

func (svc *service) Create(owner string, testID, courseID int) (*TestAttempt, error) {
	if att := svc.store.get(owner, testID); att != nil {
		return att, nil
	}
	att := &TestAttempt{
		TestID:      testID,
		CourseID:    courseID,
		StartedAt:   null.StringFrom(formatTimestamp(nowFunc())),
		UserAnswers: make([]UserAnswer, 0),
	}
	if err := svc.store.save(owner, att); err != nil {
		return att, err
	}
	return att, nil
}

func (svc *service) Get(owner string, testID int) (*TestAttempt, error) {
	att := svc.store.get(owner, testID)
	if att == nil {
		return nil, ErrNoAttempt
	}
	return att, nil
}

func (svc *service) Save(owner string, att *TestAttempt) error {
	return svc.store.save(owner, att)
}

func (svc *service) UpsertAnswer(owner string, testID, testQuestionID int, answers []string) (*TestAttempt, error) {
	att := svc.store.get(owner, testID)
	if att == nil {
		return nil, ErrNoAttempt
	}
	att.SetAnswer(testQuestionID, answers)
	if err := svc.store.save(owner, att); err != nil {
		return att, err
	}
	// read-after-write: the returned attempt mirrors what is stored
	if fresh := svc.store.get(owner, testID); fresh != nil {
		return fresh, nil
	}
	return att, nil
}

func (svc *service) BuildSubmission(owner string, testID int) (*SubmitTestRequest, error) {
	att := svc.store.get(owner, testID)
	if att == nil {
		return nil, ErrNoAttempt
	}
	return buildSubmission(att, nowFunc()), nil
}

func (svc *service) Clear(owner string, testID int) error {
	return svc.store.clear(owner, testID)
}

func (svc *service) ClearAllForOwner(owner string) error {
	return svc.store.clearAll(owner)
}

package attempt

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/kipimo/core"
)

// Session states.
type State string

const (
	StateLoading    State = "loading"
	StateInProgress State = "in-progress"
	StateReviewing  State = "reviewing"
	StateSubmitting State = "submitting"
	StateSubmitted  State = "submitted"
)

var (
	ErrSessionNotReady   = errors.New("session still loading")
	ErrSessionDone       = errors.New("session already submitted")
	ErrInvalidTransition = errors.New("operation not allowed in current state")
	ErrUnknownPart       = errors.New("unknown part")
	ErrUnknownOrdinal    = errors.New("no part covers this ordinal number")
)

// SubmitError wraps a grading backend transport failure. The local attempt is
// preserved unchanged and the session reverts to in-progress for a retry.
type SubmitError struct {
	Err error
}

func (err SubmitError) Error() string { return "submitting test: " + err.Err.Error() }
func (err SubmitError) Unwrap() error { return err.Err }

type (
	// TestFetcher is the read-only test structure collaborator.
	TestFetcher interface {
		FetchTest(ctx context.Context, testID int) (*Test, error)
	}

	// Submitter hands a finished attempt to the authoritative grading
	// backend.
	Submitter interface {
		SubmitTest(ctx context.Context, req *SubmitTestRequest) error
	}
)

// Session is the take-test state machine: it orchestrates navigation between
// parts and questions, funnels answer events through the service and keeps an
// in-memory mirror of the stored attempt, reconciled by reading back after
// every write.
//
// Sessions are single-goroutine by design, mirroring the event-driven UI they
// back; wrap with your own locking if sharing one across goroutines.
type Session struct {
	svc       Service
	fetcher   TestFetcher
	submitter Submitter
	mailSvc   core.EmailService // optional
	logger    core.Logger

	owner  string
	email  string // receipt recipient; optional
	testID int

	state       State
	test        *Test
	ranges      map[int][]int // single partition index call; footer and main view share it
	mirror      *TestAttempt
	currentPart int

	// degraded flips when a write fails; the mirror is then authoritative
	// for the rest of the session and persistence is retried best-effort.
	degraded bool
}

// NewSession prepares a session in the Loading state. An empty owner means a
// not-logged-in session: it gets scoped to a generated device id so progress
// survives for the duration of the session.
func NewSession(svc Service, fetcher TestFetcher, submitter Submitter, mailSvc core.EmailService, logger core.Logger, owner string, testID int) *Session {
	if owner == "" {
		owner = AnonymousOwner(uuid.New().String())
	}
	return &Session{
		svc:       svc,
		fetcher:   fetcher,
		submitter: submitter,
		mailSvc:   mailSvc,
		logger:    logger,
		owner:     owner,
		testID:    testID,
		state:     StateLoading,
	}
}

func (s *Session) State() State           { return s.state }
func (s *Session) Owner() string          { return s.owner }
func (s *Session) Test() *Test            { return s.test }
func (s *Session) CurrentPart() int       { return s.currentPart }
func (s *Session) Attempt() *TestAttempt  { return s.mirror }
func (s *Session) SetReceiptEmail(e string) { s.email = e }

// Start fetches the test structure and loads or creates the attempt:
// Loading -> InProgress.
func (s *Session) Start(ctx context.Context) error {
	if s.state != StateLoading {
		return ErrInvalidTransition
	}

	test, err := s.fetcher.FetchTest(ctx, s.testID)
	if err != nil {
		return errors.Wrap(err, "fetching test")
	}

	att, err := s.svc.Create(s.owner, s.testID, test.CourseID)
	if err != nil {
		if !core.IsStorageUnavailable(err) {
			return errors.Wrap(err, "creating attempt")
		}
		// keep going in memory only
		s.logger.Warn("session: storage degraded at start", err, s.owner)
		s.degraded = true
	}

	s.test = test
	s.ranges = OrdinalRanges(test)
	s.mirror = att
	if len(test.Parts) > 0 {
		s.currentPart = test.Parts[0].ID
	}
	s.state = StateInProgress
	return nil
}

// Answer records an answer event: ledger upsert, then mirror refresh from the
// store. A storage failure degrades persistence but never loses answers
// already held in the mirror.
func (s *Session) Answer(testQuestionID int, answers []string) error {
	if s.state != StateInProgress {
		return ErrInvalidTransition
	}

	if s.degraded {
		s.mirror.SetAnswer(testQuestionID, answers)
		// retry persistence; the mirror stays authoritative until a save lands
		if err := s.svc.Save(s.owner, s.mirror); err != nil {
			s.logger.Warn("session: save retry failed", err, s.owner)
		} else {
			s.degraded = false
		}
		return nil
	}

	att, err := s.svc.UpsertAnswer(s.owner, s.testID, testQuestionID, answers)
	if err != nil {
		if core.IsStorageUnavailable(err) {
			s.logger.Warn("session: storage degraded", err, s.owner)
			s.degraded = true
			s.mirror = att
			return nil
		}
		return err
	}
	s.mirror = att
	return nil
}

// OpenReview overlays the read-only review panel; no storage mutation.
func (s *Session) OpenReview() error {
	if s.state != StateInProgress {
		return ErrInvalidTransition
	}
	s.state = StateReviewing
	return nil
}

func (s *Session) CloseReview() error {
	if s.state != StateReviewing {
		return ErrInvalidTransition
	}
	s.state = StateInProgress
	return nil
}

// SelectPart navigates the main view to a part. The target comes from the
// partition index computed at Start.
func (s *Session) SelectPart(partID int) error {
	if s.state != StateInProgress && s.state != StateReviewing {
		return ErrInvalidTransition
	}
	if _, ok := s.ranges[partID]; !ok {
		return ErrUnknownPart
	}
	s.currentPart = partID
	return nil
}

// JumpToQuestion resolves a progress-footer jump: it finds the part covering
// the ordinal in the partition index, navigates there and returns the focus
// target ordinal.
func (s *Session) JumpToQuestion(ordinalNumber int) (int, error) {
	if s.state != StateInProgress && s.state != StateReviewing {
		return 0, ErrInvalidTransition
	}
	for _, part := range s.test.Parts {
		for _, ord := range s.ranges[part.ID] {
			if ord == ordinalNumber {
				s.currentPart = part.ID
				return ord, nil
			}
		}
	}
	return 0, ErrUnknownOrdinal
}

// Progress reports per-part answered tallies from the mirror.
func (s *Session) Progress() []PartProgress {
	return Progress(s.test, s.mirror)
}

// Submit drives InProgress/Reviewing -> Submitting -> Submitted. On transport
// failure the session reverts to InProgress with the stored attempt
// untouched, allowing resubmission. On success the stored attempt is cleared
// and a receipt is sent.
func (s *Session) Submit(ctx context.Context) error {
	switch s.state {
	case StateInProgress, StateReviewing:
	case StateSubmitted:
		return ErrSessionDone
	case StateLoading:
		return ErrSessionNotReady
	default:
		return ErrInvalidTransition
	}
	prev := s.state
	s.state = StateSubmitting

	var req *SubmitTestRequest
	if s.degraded {
		// storage may hold nothing; the mirror is the attempt
		req = buildSubmission(s.mirror, nowFunc())
	} else {
		var err error
		if req, err = s.svc.BuildSubmission(s.owner, s.testID); err != nil {
			s.state = prev
			return err
		}
	}

	if err := s.submitter.SubmitTest(ctx, req); err != nil {
		s.state = StateInProgress
		return &SubmitError{Err: err}
	}
	s.state = StateSubmitted

	if err := s.svc.Clear(s.owner, s.testID); err != nil {
		// submission is acknowledged; a lingering blob is only cosmetic
		s.logger.Warn("session: clearing submitted attempt failed", err, s.owner)
	}
	s.sendReceipt(req)
	return nil
}

func (s *Session) sendReceipt(req *SubmitTestRequest) {
	if s.mailSvc == nil || s.email == "" {
		return
	}
	title := s.test.Title
	s.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Address: s.email}},
		Subject: "Your test submission was received",
		BodyText: fmt.Sprintf(
			"We received your submission for %q (%d answered questions) at %s. Results will be available once grading completes.",
			title, len(req.UserAnswers), req.FinishedAt,
		),
	})
}

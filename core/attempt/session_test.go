package attempt

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/pkg/errors"

	inmemkv "github.com/trezcool/kipimo/storage/kv/inmem"
)

func newTestSession(owner string, sub *submitterStub, kvs ...*flakyKV) (*Session, Service) {
	var kv *flakyKV
	if len(kvs) > 0 {
		kv = kvs[0]
	} else {
		kv = &flakyKV{KeyValueStore: inmemkv.New()}
	}
	svc := NewService(kv, nopLogger{})
	sess := NewSession(svc, &fetcherStub{test: sampleTest()}, sub, nil, nopLogger{}, owner, 7)
	return sess, svc
}

func TestSession_lifecycle(t *testing.T) {
	ctx := context.Background()
	sub := &submitterStub{}
	sess, svc := newTestSession("jdoe", sub)

	if sess.State() != StateLoading {
		t.Fatalf("initial state = %s, want %s", sess.State(), StateLoading)
	}
	if err := sess.Answer(101, []string{"a"}); err != ErrInvalidTransition {
		t.Fatalf("Answer() while loading: error = %v, want ErrInvalidTransition", err)
	}

	if err := sess.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if sess.State() != StateInProgress {
		t.Fatalf("state after Start = %s, want %s", sess.State(), StateInProgress)
	}
	if sess.CurrentPart() != 1 {
		t.Errorf("CurrentPart = %d, want first part", sess.CurrentPart())
	}

	// answer events: self-loop with mirror refresh
	if err := sess.Answer(102, []string{"b"}); err != nil {
		t.Fatalf("Answer() failed: %v", err)
	}
	if err := sess.Answer(105, []string{"a"}); err != nil {
		t.Fatalf("Answer() failed: %v", err)
	}

	want := []PartProgress{
		{PartID: 1, Answered: 1, Total: 3, OrdinalNumbers: []int{1, 2, 3}},
		{PartID: 2, Answered: 1, Total: 2, OrdinalNumbers: []int{4, 5}},
	}
	if got := sess.Progress(); !reflect.DeepEqual(got, want) {
		t.Errorf("Progress() = %+v, want %+v", got, want)
	}

	// navigation consumes the partition index
	if err := sess.SelectPart(2); err != nil {
		t.Fatalf("SelectPart() failed: %v", err)
	}
	if err := sess.SelectPart(42); err != ErrUnknownPart {
		t.Errorf("SelectPart(42) error = %v, want ErrUnknownPart", err)
	}
	if target, err := sess.JumpToQuestion(3); err != nil || target != 3 || sess.CurrentPart() != 1 {
		t.Errorf("JumpToQuestion(3) = (%d, %v), part %d; want (3, nil), part 1", target, err, sess.CurrentPart())
	}
	if _, err := sess.JumpToQuestion(99); err != ErrUnknownOrdinal {
		t.Errorf("JumpToQuestion(99) error = %v, want ErrUnknownOrdinal", err)
	}

	// review overlay: no storage mutation
	if err := sess.OpenReview(); err != nil {
		t.Fatalf("OpenReview() failed: %v", err)
	}
	if err := sess.Answer(101, []string{"x"}); err != ErrInvalidTransition {
		t.Errorf("Answer() while reviewing: error = %v, want ErrInvalidTransition", err)
	}
	if err := sess.CloseReview(); err != nil {
		t.Fatalf("CloseReview() failed: %v", err)
	}

	if err := sess.Submit(ctx); err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if sess.State() != StateSubmitted {
		t.Fatalf("state after Submit = %s, want %s", sess.State(), StateSubmitted)
	}
	if len(sub.got) != 1 || len(sub.got[0].UserAnswers) != 2 {
		t.Fatalf("submitter got %+v, want 1 request with 2 answers", sub.got)
	}

	// acknowledged: local attempt auto-cleared
	if _, err := svc.Get("jdoe", 7); err != ErrNoAttempt {
		t.Errorf("attempt not cleared after submit: %v", err)
	}

	if err := sess.Submit(ctx); err != ErrSessionDone {
		t.Errorf("Submit() twice: error = %v, want ErrSessionDone", err)
	}
}

func TestSession_submitFailurePreservesAttempt(t *testing.T) {
	ctx := context.Background()
	sub := &submitterStub{err: errors.New("503 from grader")}
	sess, svc := newTestSession("jdoe", sub)

	if err := sess.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := sess.Answer(101, []string{"a"}); err != nil {
		t.Fatalf("Answer() failed: %v", err)
	}

	err := sess.Submit(ctx)
	if err == nil {
		t.Fatal("Submit() succeeded, want transport error")
	}
	var serr *SubmitError
	if !errors.As(err, &serr) {
		t.Fatalf("Submit() error = %T, want *SubmitError", err)
	}

	// reverted to in-progress, local attempt unchanged, retry allowed
	if sess.State() != StateInProgress {
		t.Errorf("state after failed submit = %s, want %s", sess.State(), StateInProgress)
	}
	att, gerr := svc.Get("jdoe", 7)
	if gerr != nil {
		t.Fatalf("attempt lost after failed submit: %v", gerr)
	}
	if ans, ok := att.Answer(101); !ok || !reflect.DeepEqual(ans, []string{"a"}) {
		t.Errorf("answers lost after failed submit: %v, %v", ans, ok)
	}

	sub.err = nil
	if err = sess.Submit(ctx); err != nil {
		t.Fatalf("resubmit failed: %v", err)
	}
	if sess.State() != StateSubmitted {
		t.Errorf("state after resubmit = %s, want %s", sess.State(), StateSubmitted)
	}
}

func TestSession_storageDegradation(t *testing.T) {
	ctx := context.Background()
	sub := &submitterStub{}
	kv := &flakyKV{KeyValueStore: inmemkv.New(), writeErr: errors.New("quota exceeded")}
	sess, _ := newTestSession("jdoe", sub, kv)

	if err := sess.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// storage dies mid-attempt; answering keeps working from the mirror
	kv.failWrites = true
	if err := sess.Answer(101, []string{"a"}); err != nil {
		t.Fatalf("Answer() during outage failed: %v", err)
	}
	if err := sess.Answer(102, []string{"b"}); err != nil {
		t.Fatalf("Answer() during outage failed: %v", err)
	}
	if ans, ok := sess.Attempt().Answer(101); !ok || !reflect.DeepEqual(ans, []string{"a"}) {
		t.Fatalf("mirror lost answers during outage: %v, %v", ans, ok)
	}

	// submit builds from the mirror, not the (stale) store
	if err := sess.Submit(ctx); err != nil {
		t.Fatalf("Submit() during outage failed: %v", err)
	}
	if len(sub.got) != 1 || len(sub.got[0].UserAnswers) != 2 {
		t.Fatalf("submitter got %+v, want both in-memory answers", sub.got)
	}
}

func TestSession_storageRecovery(t *testing.T) {
	ctx := context.Background()
	kv := &flakyKV{KeyValueStore: inmemkv.New(), writeErr: errors.New("quota exceeded")}
	sess, svc := newTestSession("jdoe", &submitterStub{}, kv)

	if err := sess.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	kv.failWrites = true
	if err := sess.Answer(101, []string{"a"}); err != nil {
		t.Fatalf("Answer() during outage failed: %v", err)
	}

	// storage comes back: the next answer persists the whole mirror
	kv.failWrites = false
	if err := sess.Answer(102, []string{"b"}); err != nil {
		t.Fatalf("Answer() after recovery failed: %v", err)
	}

	att, err := svc.Get("jdoe", 7)
	if err != nil {
		t.Fatalf("Get() after recovery failed: %v", err)
	}
	for _, qid := range []int{101, 102} {
		if _, ok := att.Answer(qid); !ok {
			t.Errorf("answer %d not persisted after recovery", qid)
		}
	}
}

func TestSession_anonymousOwner(t *testing.T) {
	sess, _ := newTestSession("", &submitterStub{})
	if !strings.HasPrefix(sess.Owner(), "anon-") {
		t.Errorf("Owner() = %s, want anon- scoped device id", sess.Owner())
	}
}

func TestSession_fetchFailure(t *testing.T) {
	svc := NewService(inmemkv.New(), nopLogger{})
	sess := NewSession(svc, &fetcherStub{err: errors.New("boom")}, &submitterStub{}, nil, nopLogger{}, "jdoe", 7)
	if err := sess.Start(context.Background()); err == nil {
		t.Fatal("Start() succeeded, want fetch error")
	}
	if sess.State() != StateLoading {
		t.Errorf("state after failed Start = %s, want %s", sess.State(), StateLoading)
	}
}

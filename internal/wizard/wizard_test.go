package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"monfily_backend/internal/i18n"
	"monfily_backend/internal/intake/transport"
	"monfily_backend/internal/throttle"
	"monfily_backend/platform/apperr"
	"monfily_backend/platform/validator"
)

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   int
	message string
	err     error
}

func (f *fakeSubmitter) Submit(_ context.Context, _ transport.LeadSubmissionRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.message, f.err
}

func (f *fakeSubmitter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newMachine(t *testing.T, submitter Submitter, opts ...Option) (*Machine, throttle.RateLimiter) {
	t.Helper()
	translator, err := i18n.New()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	limiter := throttle.NewLocalLimiter(throttle.NewMemoryStore())
	m := New("device-1", "en", limiter, submitter, validator.New(), translator, opts...)
	return m, limiter
}

func fill(m *Machine, t *testing.T) {
	t.Helper()
	m.SetContact("Jane Doe", "jane@x.com", "+1 555 000 0000", "US")
	if err := m.Next(); err != nil {
		t.Fatalf("contact -> business: %v", err)
	}
	m.SetBusiness("Acme", "", "hello")
	if err := m.Next(); err != nil {
		t.Fatalf("business -> interest: %v", err)
	}
	m.SetInterest([]string{"website"}, "lt5k", "urgent")
}

func TestNext_ContactGuard(t *testing.T) {
	m, _ := newMachine(t, &fakeSubmitter{})

	m.SetContact("", "not-an-email", "", "US")
	err := m.Next()
	if err == nil {
		t.Fatal("expected guard failure")
	}
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	fields := map[string]bool{}
	for _, fe := range domainErr.Details.([]validator.FieldError) {
		fields[fe.Field] = true
	}
	for _, want := range []string{"name", "email", "phone"} {
		if !fields[want] {
			t.Fatalf("expected %s error, got %+v", want, domainErr.Details)
		}
	}
	if m.Step() != StepContact {
		t.Fatalf("expected state unchanged on guard failure, got %s", m.Step())
	}
}

func TestNext_BusinessGuardRejectsInsecureWebsite(t *testing.T) {
	m, _ := newMachine(t, &fakeSubmitter{})
	m.SetContact("Jane Doe", "jane@x.com", "+1 555", "US")
	if err := m.Next(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	m.SetBusiness("Acme", "http://acme.example", "hello")
	if err := m.Next(); err == nil {
		t.Fatal("expected website guard failure")
	}

	m.SetBusiness("Acme", "https://acme.example", "hello")
	if err := m.Next(); err != nil {
		t.Fatalf("expected https website to pass, got %v", err)
	}
}

func TestBack_PreservesData(t *testing.T) {
	m, _ := newMachine(t, &fakeSubmitter{})
	fill(m, t)

	m.Back()
	if m.Step() != StepBusiness {
		t.Fatalf("expected business step, got %s", m.Step())
	}
	m.Back()
	if m.Step() != StepContact {
		t.Fatalf("expected contact step, got %s", m.Step())
	}
	// Back from the first step is a no-op.
	m.Back()
	if m.Step() != StepContact {
		t.Fatalf("expected contact step, got %s", m.Step())
	}

	lead := m.Lead()
	if lead.Name != "Jane Doe" || lead.Company != "Acme" || len(lead.Services) != 1 {
		t.Fatalf("expected data preserved across Back, got %+v", lead)
	}
}

func TestSubmit_HappyPath(t *testing.T) {
	submitter := &fakeSubmitter{message: "Message sent successfully."}
	m, limiter := newMachine(t, submitter)
	fill(m, t)

	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.Step() != StepDone {
		t.Fatalf("expected done, got %s", m.Step())
	}
	if m.SuccessMessage() != "Message sent successfully." {
		t.Fatalf("expected server message surfaced, got %q", m.SuccessMessage())
	}
	if submitter.callCount() != 1 {
		t.Fatalf("expected one network call, got %d", submitter.callCount())
	}

	// The success was recorded in the history.
	d, err := limiter.CanSubmit(context.Background(), "device-1", "jane@x.com", time.Now())
	if err != nil {
		t.Fatalf("can submit: %v", err)
	}
	if d.Allowed || d.Reason != throttle.ReasonEmailCooldown {
		t.Fatalf("expected recorded cooldown, got %+v", d)
	}
}

func TestSubmit_ThrottleDenialSkipsNetwork(t *testing.T) {
	submitter := &fakeSubmitter{message: "ok"}
	m, limiter := newMachine(t, submitter)
	fill(m, t)

	// A prior submission from the same email within 24h.
	if err := limiter.RecordSuccess(context.Background(), "device-1", "jane@x.com", time.Now()); err != nil {
		t.Fatalf("seed history: %v", err)
	}

	if err := m.Submit(context.Background()); err == nil {
		t.Fatal("expected throttle denial")
	}
	if m.Step() != StepFailed {
		t.Fatalf("expected failed, got %s", m.Step())
	}
	if submitter.callCount() != 0 {
		t.Fatalf("expected no network call on denial, got %d", submitter.callCount())
	}
	if m.Failure() == "" {
		t.Fatal("expected a surfaced failure reason")
	}
}

func TestSubmit_ServerFailureSurfacesMessageAndAllowsRetry(t *testing.T) {
	submitter := &fakeSubmitter{err: errors.New("Validation failed")}
	m, _ := newMachine(t, submitter)
	fill(m, t)

	if err := m.Submit(context.Background()); err == nil {
		t.Fatal("expected submit failure")
	}
	if m.Step() != StepFailed || m.Failure() != "Validation failed" {
		t.Fatalf("expected failed with server message, got %s %q", m.Step(), m.Failure())
	}

	m.Retry()
	if m.Step() != StepInterest {
		t.Fatalf("expected retry to return to interest step, got %s", m.Step())
	}
	if m.Lead().Company != "Acme" {
		t.Fatal("expected data preserved through failure")
	}

	submitter.err = nil
	submitter.message = "ok"
	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("retry submit: %v", err)
	}
	if m.Step() != StepDone {
		t.Fatalf("expected done after retry, got %s", m.Step())
	}
}

func TestSubmit_GuardRejectsIncompleteInterest(t *testing.T) {
	m, _ := newMachine(t, &fakeSubmitter{})
	m.SetContact("Jane Doe", "jane@x.com", "+1 555", "US")
	if err := m.Next(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	m.SetBusiness("Acme", "", "hello")
	if err := m.Next(); err != nil {
		t.Fatalf("advance: %v", err)
	}

	m.SetInterest(nil, "", "")
	if err := m.Submit(context.Background()); err == nil {
		t.Fatal("expected guard failure")
	}
	if m.Step() != StepInterest {
		t.Fatalf("expected state unchanged, got %s", m.Step())
	}
}

func TestDone_AutoResetsAfterDelay(t *testing.T) {
	submitter := &fakeSubmitter{message: "ok"}
	m, _ := newMachine(t, submitter, WithResetDelay(20*time.Millisecond))
	fill(m, t)

	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if m.Step() != StepDone {
		t.Fatalf("expected done, got %s", m.Step())
	}

	deadline := time.Now().Add(2 * time.Second)
	for m.Step() != StepContact {
		if time.Now().After(deadline) {
			t.Fatalf("expected auto reset, still %s", m.Step())
		}
		time.Sleep(5 * time.Millisecond)
	}

	lead := m.Lead()
	if lead.Name != "" || lead.Company != "" || lead.Services != nil {
		t.Fatalf("expected fresh payload after reset, got %+v", lead)
	}
	if lead.Language != "en" {
		t.Fatalf("expected language kept on reset, got %q", lead.Language)
	}
}

// Package wizard implements the three-step lead form state machine. It is
// the server-side twin of the browser flow, used by embedded kiosk clients
// and by tests exercising the intake pipeline end to end.
package wizard

import (
	"context"
	"strings"
	"sync"
	"time"

	"monfily_backend/internal/i18n"
	"monfily_backend/internal/intake/transport"
	"monfily_backend/internal/throttle"
	"monfily_backend/platform/apperr"
	"monfily_backend/platform/validator"
)

// Step is the machine state.
type Step int

const (
	StepContact Step = iota
	StepBusiness
	StepInterest
	StepSubmitting
	StepDone
	StepFailed
)

// String returns the step name for logging.
func (s Step) String() string {
	switch s {
	case StepContact:
		return "contact"
	case StepBusiness:
		return "business"
	case StepInterest:
		return "interest"
	case StepSubmitting:
		return "submitting"
	case StepDone:
		return "done"
	case StepFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Machine drives the wizard. All methods are safe for concurrent use; the
// zero value is not usable, construct with New.
type Machine struct {
	mu sync.Mutex

	step      Step
	retryStep Step
	lead      transport.LeadSubmissionRequest
	failure   string
	success   string

	deviceID   string
	lang       string
	limiter    throttle.RateLimiter
	submitter  Submitter
	val        *validator.Validator
	translator *i18n.Translator

	// resetDelay is how long Done stays visible before the form resets.
	// Zero disables the automatic reset.
	resetDelay time.Duration
	now        func() time.Time
}

// Option tweaks machine construction.
type Option func(*Machine)

// WithResetDelay enables the automatic reset after a successful submission.
func WithResetDelay(d time.Duration) Option {
	return func(m *Machine) { m.resetDelay = d }
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// New creates a machine at the contact step with an empty payload.
func New(deviceID, lang string, limiter throttle.RateLimiter, submitter Submitter, val *validator.Validator, translator *i18n.Translator, opts ...Option) *Machine {
	m := &Machine{
		step:       StepContact,
		deviceID:   deviceID,
		lang:       lang,
		limiter:    limiter,
		submitter:  submitter,
		val:        val,
		translator: translator,
		now:        time.Now,
	}
	m.lead.Language = lang
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Step returns the current state.
func (m *Machine) Step() Step {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.step
}

// Lead returns a copy of the payload built so far.
func (m *Machine) Lead() transport.LeadSubmissionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lead
}

// Failure returns the surfaced error message, empty outside Failed.
func (m *Machine) Failure() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failure
}

// SuccessMessage returns the server's success message, empty outside Done.
func (m *Machine) SuccessMessage() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.success
}

// SetContact fills the first step's fields.
func (m *Machine) SetContact(name, email, phone, country string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lead.Name = name
	m.lead.Email = email
	m.lead.Phone = phone
	m.lead.Country = country
}

// SetBusiness fills the second step's fields.
func (m *Machine) SetBusiness(company, website, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lead.Company = company
	m.lead.Website = website
	m.lead.Message = message
}

// SetInterest fills the third step's fields.
func (m *Machine) SetInterest(services []string, budget, timeframe string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lead.Services = append([]string(nil), services...)
	m.lead.Budget = budget
	m.lead.Timeframe = timeframe
}

// SetDetectedCountry records the geo-resolved country for currency display.
func (m *Machine) SetDetectedCountry(country string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lead.DetectedCountry = country
}

// Next advances one step when the current step's guard passes. The state is
// unchanged on a guard failure.
func (m *Machine) Next() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.step {
	case StepContact:
		if err := m.guardContact(); err != nil {
			return err
		}
		m.step = StepBusiness
	case StepBusiness:
		if err := m.guardBusiness(); err != nil {
			return err
		}
		m.step = StepInterest
	default:
		return apperr.Newf(apperr.KindBadRequest, "cannot advance from %s", m.step)
	}
	return nil
}

// Back returns to the previous step. It is always allowed from the data
// steps and never loses entered data.
func (m *Machine) Back() {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch m.step {
	case StepBusiness:
		m.step = StepContact
	case StepInterest:
		m.step = StepBusiness
	}
}

// Retry leaves Failed and returns to the step the failure interrupted.
func (m *Machine) Retry() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepFailed {
		m.step = m.retryStep
		m.failure = ""
	}
}

// Reset discards the payload and starts over at the contact step.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset()
}

func (m *Machine) reset() {
	m.lead = transport.LeadSubmissionRequest{Language: m.lang}
	m.step = StepContact
	m.failure = ""
	m.success = ""
}

// Submit runs the final guard, re-checks the throttle and performs the
// network submission. A throttle denial fails the flow without any network
// call.
func (m *Machine) Submit(ctx context.Context) error {
	m.mu.Lock()
	if m.step != StepInterest {
		m.mu.Unlock()
		return apperr.Newf(apperr.KindBadRequest, "cannot submit from %s", m.step)
	}
	if err := m.guardInterest(); err != nil {
		m.mu.Unlock()
		return err
	}
	m.step = StepSubmitting
	m.retryStep = StepInterest
	lead := m.lead
	now := m.now()
	m.mu.Unlock()

	// Close the race window between page load and submit time.
	decision, err := m.limiter.CanSubmit(ctx, m.deviceID, lead.Email, now)
	if err != nil {
		return m.fail(m.translator.T(m.lang, "error.submit_failed"))
	}
	if !decision.Allowed {
		return m.fail(m.translator.T(m.lang, "throttle."+string(decision.Reason)))
	}

	message, err := m.submitter.Submit(ctx, lead)
	if err != nil {
		return m.fail(err.Error())
	}

	// The lead went through; a history write failure only weakens the
	// advisory throttle.
	_ = m.limiter.RecordSuccess(ctx, m.deviceID, lead.Email, m.now())

	m.mu.Lock()
	m.step = StepDone
	m.success = message
	delay := m.resetDelay
	m.mu.Unlock()

	if delay > 0 {
		time.AfterFunc(delay, m.resetIfDone)
	}
	return nil
}

func (m *Machine) resetIfDone() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.step == StepDone {
		m.reset()
	}
}

func (m *Machine) fail(message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.step = StepFailed
	m.failure = message
	return apperr.New(apperr.KindUnavailable, message)
}

func (m *Machine) guardContact() error {
	var errs []validator.FieldError
	if strings.TrimSpace(m.lead.Name) == "" {
		errs = append(errs, validator.FieldError{Field: "name", Message: "is required"})
	}
	if err := m.val.Var(m.lead.Email, "required,email"); err != nil {
		errs = append(errs, validator.FieldError{Field: "email", Message: "must be a valid email address"})
	}
	if strings.TrimSpace(m.lead.Phone) == "" {
		errs = append(errs, validator.FieldError{Field: "phone", Message: "is required"})
	}
	if strings.TrimSpace(m.lead.Country) == "" {
		errs = append(errs, validator.FieldError{Field: "country", Message: "is required"})
	}
	return guardError(errs)
}

func (m *Machine) guardBusiness() error {
	var errs []validator.FieldError
	if strings.TrimSpace(m.lead.Company) == "" {
		errs = append(errs, validator.FieldError{Field: "company", Message: "is required"})
	}
	if strings.TrimSpace(m.lead.Message) == "" {
		errs = append(errs, validator.FieldError{Field: "message", Message: "is required"})
	}
	if err := m.val.Var(m.lead.Website, "secure_url"); err != nil {
		errs = append(errs, validator.FieldError{Field: "website", Message: "must be empty or start with https://"})
	}
	return guardError(errs)
}

func (m *Machine) guardInterest() error {
	var errs []validator.FieldError
	if len(m.lead.Services) == 0 {
		errs = append(errs, validator.FieldError{Field: "services", Message: "select at least one service"})
	}
	if m.lead.Budget == "" {
		errs = append(errs, validator.FieldError{Field: "budget", Message: "is required"})
	}
	if m.lead.Timeframe == "" {
		errs = append(errs, validator.FieldError{Field: "timeframe", Message: "is required"})
	}
	return guardError(errs)
}

func guardError(errs []validator.FieldError) error {
	if len(errs) == 0 {
		return nil
	}
	return apperr.Validation("step is incomplete", errs)
}

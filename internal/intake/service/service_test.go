package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"monfily_backend/internal/i18n"
	"monfily_backend/internal/intake/transport"
	"monfily_backend/platform/apperr"
)

type sentEmail struct {
	To      string
	Subject string
	HTML    string
}

// recordingSender captures every send; failOn marks recipients whose sends
// should fail.
type recordingSender struct {
	mu     sync.Mutex
	sent   []sentEmail
	failOn map[string]bool
}

func (r *recordingSender) Send(_ context.Context, to, subject, html string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failOn[to] {
		return &smtpError{to: to}
	}
	r.sent = append(r.sent, sentEmail{To: to, Subject: subject, HTML: html})
	return nil
}

type smtpError struct{ to string }

func (e *smtpError) Error() string { return "send to " + e.to + " failed" }

func validRequest() transport.LeadSubmissionRequest {
	return transport.LeadSubmissionRequest{
		Name:      "Jane Doe",
		Email:     "jane@x.com",
		Phone:     "+1 555 000 0000",
		Country:   "US",
		Company:   "Acme",
		Services:  []string{"website"},
		Budget:    "lt5k",
		Timeframe: "urgent",
		Message:   "hello",
		Language:  "en",
	}
}

func newTranslator(t *testing.T) *i18n.Translator {
	t.Helper()
	tr, err := i18n.New()
	if err != nil {
		t.Fatalf("load catalogs: %v", err)
	}
	return tr
}

func TestNotify_SendsBothEmails(t *testing.T) {
	sender := &recordingSender{}
	svc := New(sender, "ops@monfily.com", newTranslator(t), nil, nil)

	if err := svc.Notify(context.Background(), validRequest()); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(sender.sent) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(sender.sent))
	}

	byTo := map[string]sentEmail{}
	for _, e := range sender.sent {
		byTo[e.To] = e
	}

	admin, ok := byTo["ops@monfily.com"]
	if !ok {
		t.Fatal("expected an operator notification")
	}
	// Operator notification is rendered in the operator's language.
	if !strings.Contains(admin.Subject, "Jane Doe") || !strings.Contains(admin.Subject, "Acme") {
		t.Fatalf("expected subject with name and company, got %q", admin.Subject)
	}
	if !strings.HasPrefix(admin.Subject, "Novo lead:") {
		t.Fatalf("expected operator-language subject, got %q", admin.Subject)
	}
	for _, want := range []string{"jane@x.com", "Acme", "Site", "hello"} {
		if !strings.Contains(admin.HTML, want) {
			t.Fatalf("expected admin body to contain %q", want)
		}
	}
	// Budget band for a US visitor: 5000 BRL at 0.20 is $1,000.
	if !strings.Contains(admin.HTML, "1.000") && !strings.Contains(admin.HTML, "1,000") {
		t.Fatalf("expected converted budget bound in body:\n%s", admin.HTML)
	}

	conf, ok := byTo["jane@x.com"]
	if !ok {
		t.Fatal("expected a submitter confirmation")
	}
	if !strings.Contains(conf.Subject, "Jane Doe") {
		t.Fatalf("expected personalized subject, got %q", conf.Subject)
	}
	if !strings.Contains(conf.HTML, "Hi Jane Doe,") {
		t.Fatal("expected localized greeting in submitter language")
	}
}

func TestNotify_ConfirmationFollowsSubmitterLanguage(t *testing.T) {
	sender := &recordingSender{}
	svc := New(sender, "ops@monfily.com", newTranslator(t), nil, nil)

	req := validRequest()
	req.Language = "pt-BR"
	if err := svc.Notify(context.Background(), req); err != nil {
		t.Fatalf("notify: %v", err)
	}

	for _, e := range sender.sent {
		if e.To != "jane@x.com" {
			continue
		}
		if !strings.Contains(e.HTML, "Olá Jane Doe,") {
			t.Fatalf("expected pt-BR greeting, got:\n%s", e.HTML)
		}
		return
	}
	t.Fatal("confirmation email not sent")
}

func TestNotify_EitherSendFailureFailsAll(t *testing.T) {
	sender := &recordingSender{failOn: map[string]bool{"jane@x.com": true}}
	svc := New(sender, "ops@monfily.com", newTranslator(t), nil, nil)

	err := svc.Notify(context.Background(), validRequest())
	if err == nil {
		t.Fatal("expected failure when one send fails")
	}
	domainErr, ok := err.(*apperr.Error)
	if !ok || domainErr.Kind != apperr.KindInternal {
		t.Fatalf("expected internal error, got %v", err)
	}
	// The other send was still attempted.
	if len(sender.sent) != 1 || sender.sent[0].To != "ops@monfily.com" {
		t.Fatalf("expected the admin send to be attempted, got %+v", sender.sent)
	}
}

func TestNotify_StripsMarkupFromUserFields(t *testing.T) {
	sender := &recordingSender{}
	svc := New(sender, "ops@monfily.com", newTranslator(t), nil, nil)

	req := validRequest()
	req.Name = "Jane <script>alert(1)</script> Doe"
	req.Message = "hello <b>there</b>"
	if err := svc.Notify(context.Background(), req); err != nil {
		t.Fatalf("notify: %v", err)
	}

	for _, e := range sender.sent {
		if strings.Contains(e.HTML, "script") || strings.Contains(e.Subject, "script") {
			t.Fatalf("expected markup stripped, got subject %q", e.Subject)
		}
	}
}

func TestNotify_DetectedCountryDrivesCurrency(t *testing.T) {
	sender := &recordingSender{}
	svc := New(sender, "ops@monfily.com", newTranslator(t), nil, nil)

	req := validRequest()
	req.Country = "US"
	req.DetectedCountry = "BR"
	if err := svc.Notify(context.Background(), req); err != nil {
		t.Fatalf("notify: %v", err)
	}

	var admin sentEmail
	for _, e := range sender.sent {
		if e.To == "ops@monfily.com" {
			admin = e
		}
	}
	// BRL is the reference currency, so the lt5k bound stays 5000.
	if !strings.Contains(admin.HTML, "5.000") && !strings.Contains(admin.HTML, "5,000") {
		t.Fatalf("expected BRL budget bound from detected country:\n%s", admin.HTML)
	}
}

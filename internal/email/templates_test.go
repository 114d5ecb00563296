package email

import (
	"strings"
	"testing"
)

func TestRenderLeadAdmin(t *testing.T) {
	html, err := RenderLeadAdmin(LeadAdminData{
		Title:   "New lead: Jane Doe (Acme)",
		Heading: "New lead received",
		Intro:   "A new lead arrived through the contact form.",
		Fields: []FieldRow{
			{Label: "Name", Value: "Jane Doe"},
			{Label: "Email", Value: "jane@x.com"},
			{Label: "Budget", Value: "Up to $1,000"},
		},
		MessageLabel: "Message",
		Message:      "hello <world>",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"New lead received", "Jane Doe", "jane@x.com", "Up to $1,000"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected rendered email to contain %q", want)
		}
	}
	// html/template escapes user-supplied values.
	if strings.Contains(html, "<world>") {
		t.Fatal("expected message markup to be escaped")
	}
	if !strings.Contains(html, "&lt;world&gt;") {
		t.Fatal("expected escaped message text to survive")
	}
}

func TestRenderLeadConfirmation(t *testing.T) {
	html, err := RenderLeadConfirmation(LeadConfirmationData{
		Title:     "We received your message",
		Greeting:  "Hello Jane Doe,",
		Body:      "Thanks for reaching out. We will reply within one business day.",
		Closing:   "Best regards,",
		Signature: "The Monfily team",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	for _, want := range []string{"Hello Jane Doe,", "one business day", "The Monfily team"} {
		if !strings.Contains(html, want) {
			t.Fatalf("expected rendered email to contain %q", want)
		}
	}
}

package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

// FieldRow is one labeled lead attribute in the admin notification.
type FieldRow struct {
	Label string
	Value string
}

// LeadAdminData feeds the operator notification template. Labels arrive
// already localized to the operator's language.
type LeadAdminData struct {
	Title        string
	Heading      string
	Intro        string
	Fields       []FieldRow
	MessageLabel string
	Message      string
}

// LeadConfirmationData feeds the submitter confirmation template, localized
// to the submitter's language.
type LeadConfirmationData struct {
	Title     string
	Greeting  string
	Body      string
	Closing   string
	Signature string
}

type leadAdminEmailData struct {
	baseEmailData
	Intro        string
	Fields       []FieldRow
	MessageLabel string
	Message      string
}

type leadConfirmationEmailData struct {
	baseEmailData
	Greeting  string
	Body      string
	Closing   string
	Signature string
}

// RenderLeadAdmin renders the operator notification email.
func RenderLeadAdmin(data LeadAdminData) (string, error) {
	return renderEmailTemplate("lead_admin.html", leadAdminEmailData{
		baseEmailData: baseEmailData{Title: data.Title, Heading: data.Heading},
		Intro:         data.Intro,
		Fields:        data.Fields,
		MessageLabel:  data.MessageLabel,
		Message:       data.Message,
	})
}

// RenderLeadConfirmation renders the submitter confirmation email.
func RenderLeadConfirmation(data LeadConfirmationData) (string, error) {
	return renderEmailTemplate("lead_confirmation.html", leadConfirmationEmailData{
		baseEmailData: baseEmailData{Title: data.Title, Heading: data.Greeting},
		Greeting:      data.Greeting,
		Body:          data.Body,
		Closing:       data.Closing,
		Signature:     data.Signature,
	})
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}

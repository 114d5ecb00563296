// Package service renders and dispatches the bilingual lead notifications.
package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"monfily_backend/internal/currency"
	"monfily_backend/internal/email"
	"monfily_backend/internal/events"
	"monfily_backend/internal/i18n"
	"monfily_backend/internal/intake/transport"
	"monfily_backend/platform/apperr"
	"monfily_backend/platform/logger"
	"monfily_backend/platform/sanitize"
)

// budgetBounds are the band boundaries in the reference currency. They are
// converted to the visitor's display currency before rendering.
var budgetBounds = map[string][]float64{
	"lt5k":   {5000},
	"5k10k":  {5000, 10000},
	"10k25k": {10000, 25000},
	"gt25k":  {25000},
}

// Service validates nothing itself; it receives an already validated request
// and turns it into two emails, one for the operator and one for the
// submitter.
type Service struct {
	sender     email.Sender
	receiver   string
	translator *i18n.Translator
	bus        events.Bus
	log        *logger.Logger
}

// New creates the intake notification service. receiver is the operator
// inbox for admin notifications.
func New(sender email.Sender, receiver string, translator *i18n.Translator, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		sender:     sender,
		receiver:   receiver,
		translator: translator,
		bus:        bus,
		log:        log,
	}
}

// Notify renders both notification emails and dispatches them in parallel.
// Both sends are always attempted; if either fails the whole operation is
// reported as failed.
func (s *Service) Notify(ctx context.Context, req transport.LeadSubmissionRequest) error {
	lang := i18n.FromLocale(req.Language)
	toEmail := strings.TrimSpace(req.Email)

	// Display currency follows the detected country when present, otherwise
	// the country the visitor picked.
	currencyCountry := req.DetectedCountry
	if currencyCountry == "" {
		currencyCountry = req.Country
	}
	code := currency.ForCountry(currencyCountry)

	name := sanitize.Text(req.Name)
	company := sanitize.Text(req.Company)

	adminSubject, adminHTML, err := s.renderAdmin(req, name, company, toEmail, code)
	if err != nil {
		return apperr.Internal("render admin notification", err)
	}
	confSubject, confHTML, err := s.renderConfirmation(lang, name)
	if err != nil {
		return apperr.Internal("render confirmation", err)
	}

	// A plain group (no shared cancel context) so one failing send never
	// aborts the other attempt.
	var g errgroup.Group
	g.Go(func() error {
		return s.sender.Send(ctx, s.receiver, adminSubject, adminHTML)
	})
	g.Go(func() error {
		return s.sender.Send(ctx, toEmail, confSubject, confHTML)
	})
	if err := g.Wait(); err != nil {
		return apperr.Internal("notification delivery failed", err)
	}

	if s.bus != nil {
		s.bus.Publish(ctx, events.LeadReceived{
			BaseEvent: events.NewBaseEvent(),
			Name:      name,
			Email:     toEmail,
			Company:   company,
			Country:   strings.ToUpper(req.Country),
			Language:  lang,
			Services:  req.Services,
			Budget:    req.Budget,
		})
	}

	return nil
}

// renderAdmin builds the operator notification in the operator's language.
func (s *Service) renderAdmin(req transport.LeadSubmissionRequest, name, company, toEmail, currencyCode string) (subject, html string, err error) {
	op := i18n.OperatorLanguage
	subject = s.translator.Tf(op, "email.admin.subject", name, company)

	fields := []email.FieldRow{
		{Label: s.translator.T(op, "field.name"), Value: name},
		{Label: s.translator.T(op, "field.email"), Value: toEmail},
		{Label: s.translator.T(op, "field.phone"), Value: sanitize.Text(req.Phone)},
		{Label: s.translator.T(op, "field.country"), Value: i18n.CountryName(req.Country, op)},
		{Label: s.translator.T(op, "field.company"), Value: company},
	}
	if website := sanitize.Text(req.Website); website != "" {
		fields = append(fields, email.FieldRow{
			Label: s.translator.T(op, "field.website"), Value: website,
		})
	}
	fields = append(fields,
		email.FieldRow{Label: s.translator.T(op, "field.services"), Value: s.serviceLabels(op, req.Services)},
		email.FieldRow{Label: s.translator.T(op, "field.budget"), Value: s.budgetLabel(op, req.Budget, currencyCode)},
		email.FieldRow{Label: s.translator.T(op, "field.timeframe"), Value: s.translator.T(op, "timeframe."+req.Timeframe)},
	)

	html, err = email.RenderLeadAdmin(email.LeadAdminData{
		Title:        subject,
		Heading:      s.translator.T(op, "email.admin.heading"),
		Intro:        s.translator.T(op, "email.admin.intro"),
		Fields:       fields,
		MessageLabel: s.translator.T(op, "field.message"),
		Message:      sanitize.Text(req.Message),
	})
	return subject, html, err
}

// renderConfirmation builds the submitter confirmation in their language.
func (s *Service) renderConfirmation(lang, name string) (subject, html string, err error) {
	subject = s.translator.Tf(lang, "email.confirmation.subject", name)
	html, err = email.RenderLeadConfirmation(email.LeadConfirmationData{
		Title:     subject,
		Greeting:  s.translator.Tf(lang, "email.confirmation.greeting", name),
		Body:      s.translator.T(lang, "email.confirmation.body"),
		Closing:   s.translator.T(lang, "email.confirmation.closing"),
		Signature: s.translator.T(lang, "email.confirmation.signature"),
	})
	return subject, html, err
}

func (s *Service) serviceLabels(lang string, services []string) string {
	labels := make([]string, 0, len(services))
	for _, svc := range services {
		labels = append(labels, s.translator.T(lang, "service."+svc))
	}
	return strings.Join(labels, ", ")
}

// budgetLabel renders the band label with its bounds converted from the
// reference currency and formatted for the language's locale.
func (s *Service) budgetLabel(lang, budget, code string) string {
	bounds, ok := budgetBounds[budget]
	if !ok {
		return budget
	}
	args := make([]interface{}, len(bounds))
	for i, bound := range bounds {
		args[i] = currency.Format(currency.Convert(bound, code), code, lang)
	}
	return s.translator.Tf(lang, "budget."+budget, args...)
}

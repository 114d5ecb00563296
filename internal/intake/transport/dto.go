// Package transport defines the wire formats for the intake endpoint.
package transport

// LeadSubmissionRequest is the contact form payload. The enum values match
// the form options; labels are resolved server-side per language.
type LeadSubmissionRequest struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Email           string   `json:"email" validate:"required,email,max=320"`
	Phone           string   `json:"phone" validate:"required,max=32"`
	Country         string   `json:"country" validate:"required,len=2"`
	Company         string   `json:"company" validate:"required,max=200"`
	Website         string   `json:"website" validate:"omitempty,secure_url,max=500"`
	Services        []string `json:"services" validate:"required,min=1,dive,oneof=website ecommerce branding marketing seo app"`
	Budget          string   `json:"budget" validate:"required,oneof=lt5k 5k10k 10k25k gt25k"`
	Timeframe       string   `json:"timeframe" validate:"required,oneof=urgent 1to3months 3to6months flexible"`
	Message         string   `json:"message" validate:"required,max=5000"`
	Language        string   `json:"language" validate:"omitempty,max=16"`
	DetectedCountry string   `json:"detectedCountry" validate:"omitempty,len=2"`
}

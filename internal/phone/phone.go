// Package phone normalizes a visitor's keystroke stream into an
// international phone number. It infers the country from the leading digits,
// caps input at the country's canonical number length and keeps the value in
// "+<calling code> <national digits>" shape at all times.
package phone

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// maxE164Digits is the E.164 ceiling used when a country has no example
// number to derive a canonical length from.
const maxE164Digits = 15

const unknownRegion = "ZZ"

// Draft is the in-progress phone value. It is rebuilt on every keystroke and
// discarded when the form resets.
type Draft struct {
	// Raw is the last value received from the input.
	Raw string
	// Formatted is the normalized international representation.
	Formatted string
	// Region is the inferred ISO 3166-1 alpha-2 country, empty when the
	// digits typed so far do not identify one.
	Region string
}

// Service formats drafts. It is stateless and safe for concurrent use; it
// exists as a type so callers can inject an alternative formatting backend.
type Service struct{}

// NewService creates a phone formatting service backed by the embedded
// libphonenumber metadata.
func NewService() *Service {
	return &Service{}
}

// Input folds a new raw value into the draft. Values not starting with '+'
// are stripped to digits and '+'-prefixed; a lone "+" is passed through as an
// in-progress state. Digits beyond the inferred country's maximum are
// truncated and the value is reformatted from the truncated digit string.
func (s *Service) Input(prev Draft, raw string) Draft {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "+" {
		return Draft{Raw: raw, Formatted: "+", Region: prev.Region}
	}

	digits := digitsOnly(trimmed)
	if digits == "" {
		return Draft{Raw: raw, Formatted: "+", Region: prev.Region}
	}

	region := regionForDigits(digits)
	if region == "" {
		region = prev.Region
	}

	if max := s.MaxDigits(region); len(digits) > max {
		digits = digits[:max]
	}

	return Draft{
		Raw:       raw,
		Formatted: formatDigits(digits, region),
		Region:    region,
	}
}

// SetCountry applies an external country selection. Unless the field is
// focused, the value is rewritten to start with the new country's calling
// code, preserving digits typed after the old prefix as a suffix. While
// focused only the region changes, so the rewrite never fights the caret.
func (s *Service) SetCountry(prev Draft, region string, focused bool) Draft {
	region = strings.ToUpper(strings.TrimSpace(region))
	next := prev
	next.Region = region

	if focused || region == "" {
		return next
	}

	newCode := phonenumbers.GetCountryCodeForRegion(region)
	if newCode == 0 {
		return next
	}

	suffix := digitsOnly(prev.Formatted)
	if prev.Region != "" {
		if oldCode := phonenumbers.GetCountryCodeForRegion(prev.Region); oldCode != 0 {
			suffix = strings.TrimPrefix(suffix, strconv.Itoa(oldCode))
		}
	}

	digits := strconv.Itoa(newCode) + suffix
	if max := s.MaxDigits(region); len(digits) > max {
		digits = digits[:max]
	}

	next.Formatted = formatDigits(digits, region)
	next.Raw = next.Formatted
	return next
}

// PreventDelete reports whether a deletion at the given caret position must
// be blocked. The leading '+' is protected when it is the only character
// left and the caret sits immediately after it.
func (s *Service) PreventDelete(value string, caret int) bool {
	return value == "+" && caret == 1
}

// Placeholder returns an example number for the region in international
// format, or a generic placeholder built from the calling code when the
// region has no example number.
func (s *Service) Placeholder(region string) string {
	region = strings.ToUpper(strings.TrimSpace(region))

	example := phonenumbers.GetExampleNumberForType(region, phonenumbers.MOBILE)
	if example == nil {
		example = phonenumbers.GetExampleNumber(region)
	}
	if example != nil {
		return phonenumbers.Format(example, phonenumbers.INTERNATIONAL)
	}

	if code := phonenumbers.GetCountryCodeForRegion(region); code != 0 {
		return fmt.Sprintf("+%d 000 000 000", code)
	}
	return "+0 000 000 000"
}

// MaxDigits returns the digit budget for a region: the length of its example
// mobile number in E.164 form, or the E.164 ceiling when unknown.
func (s *Service) MaxDigits(region string) int {
	if region == "" {
		return maxE164Digits
	}

	example := phonenumbers.GetExampleNumberForType(region, phonenumbers.MOBILE)
	if example == nil {
		example = phonenumbers.GetExampleNumber(region)
	}
	if example == nil {
		return maxE164Digits
	}

	return len(digitsOnly(phonenumbers.Format(example, phonenumbers.E164)))
}

// regionForDigits infers a country from the leading digits of an
// international digit string. A full parse wins (it disambiguates shared
// calling codes like +1); otherwise the calling-code prefix decides.
func regionForDigits(digits string) string {
	if parsed, err := phonenumbers.Parse("+"+digits, unknownRegion); err == nil {
		if region := phonenumbers.GetRegionCodeForNumber(parsed); region != "" && region != unknownRegion {
			return region
		}
	}

	for l := 1; l <= 3 && l <= len(digits); l++ {
		code, err := strconv.Atoi(digits[:l])
		if err != nil {
			return ""
		}
		if region := phonenumbers.GetRegionCodeForCountryCode(code); region != "" && region != unknownRegion {
			return region
		}
	}
	return ""
}

// formatDigits renders an international digit string. Complete numbers get
// the full international layout; partial ones are shown as "+<cc> <rest>"
// when the calling code is known, "+<digits>" otherwise.
func formatDigits(digits, region string) string {
	if parsed, err := phonenumbers.Parse("+"+digits, unknownRegion); err == nil {
		return phonenumbers.Format(parsed, phonenumbers.INTERNATIONAL)
	}

	if region != "" {
		if code := phonenumbers.GetCountryCodeForRegion(region); code != 0 {
			prefix := strconv.Itoa(code)
			if strings.HasPrefix(digits, prefix) && len(digits) > len(prefix) {
				return "+" + prefix + " " + digits[len(prefix):]
			}
		}
	}
	return "+" + digits
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

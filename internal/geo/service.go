// Package geo resolves a visitor's country and preferred language from a
// chain of IP-geolocation providers, with an Accept-Language fallback.
package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-resty/resty/v2"

	"monfily_backend/internal/i18n"
	"monfily_backend/platform/config"
	"monfily_backend/platform/logger"
)

// Location is the resolved visitor locale. CountryCode is nil when every
// provider failed and only the language could be inferred.
type Location struct {
	Language    string
	CountryCode *string
}

// provider is one IP-geolocation lookup. Each provider has its own URL shape
// and response schema, so parsing is kept next to the URL builder.
type provider struct {
	name  string
	url   func(ip string) string
	parse func(body []byte) (string, error)
}

// Service runs the provider chain. It is stateless and safe for concurrent
// use; resolving twice for the same visitor yields the same result.
type Service struct {
	client    *resty.Client
	providers []provider
	log       *logger.Logger
}

// NewService creates a resolver with the default provider chain. Each lookup
// is bounded by the configured provider timeout.
func NewService(cfg config.GeoConfig, log *logger.Logger) *Service {
	client := resty.New().
		SetTimeout(cfg.GetGeoProviderTimeout()).
		SetHeader("Accept", "application/json")

	return &Service{
		client:    client,
		providers: defaultProviders(),
		log:       log,
	}
}

func defaultProviders() []provider {
	return []provider{
		{
			name: "ipapi.co",
			url: func(ip string) string {
				return fmt.Sprintf("https://ipapi.co/%s/json/", ip)
			},
			parse: func(body []byte) (string, error) {
				var out struct {
					CountryCode string `json:"country_code"`
					Error       bool   `json:"error"`
				}
				if err := json.Unmarshal(body, &out); err != nil {
					return "", err
				}
				if out.Error || out.CountryCode == "" {
					return "", fmt.Errorf("no country in response")
				}
				return out.CountryCode, nil
			},
		},
		{
			name: "ipwho.is",
			url: func(ip string) string {
				return "https://ipwho.is/" + ip
			},
			parse: func(body []byte) (string, error) {
				var out struct {
					Success     bool   `json:"success"`
					CountryCode string `json:"country_code"`
				}
				if err := json.Unmarshal(body, &out); err != nil {
					return "", err
				}
				if !out.Success || out.CountryCode == "" {
					return "", fmt.Errorf("no country in response")
				}
				return out.CountryCode, nil
			},
		},
		{
			name: "ip-api.com",
			url: func(ip string) string {
				return "http://ip-api.com/json/" + ip
			},
			parse: func(body []byte) (string, error) {
				var out struct {
					Status      string `json:"status"`
					CountryCode string `json:"countryCode"`
				}
				if err := json.Unmarshal(body, &out); err != nil {
					return "", err
				}
				if out.Status != "success" || out.CountryCode == "" {
					return "", fmt.Errorf("no country in response")
				}
				return out.CountryCode, nil
			},
		},
	}
}

// ResolveLocation tries each provider in order and returns on the first
// success. Provider failures are absorbed; when the whole chain fails the
// language is inferred from the Accept-Language header and the country is
// left unresolved.
func (s *Service) ResolveLocation(ctx context.Context, clientIP, acceptLanguage string) Location {
	for _, p := range s.providers {
		code, err := s.lookup(ctx, p, clientIP)
		if err != nil {
			if s.log != nil {
				s.log.GeoEvent(p.name, false, err)
			}
			continue
		}
		if s.log != nil {
			s.log.GeoEvent(p.name, true, nil)
		}
		country := strings.ToUpper(strings.TrimSpace(code))
		return Location{
			Language:    languageForCountry(country, acceptLanguage),
			CountryCode: &country,
		}
	}

	return Location{Language: i18n.FromLocale(primaryLocale(acceptLanguage))}
}

func (s *Service) lookup(ctx context.Context, p provider, ip string) (string, error) {
	resp, err := s.client.R().SetContext(ctx).Get(p.url(ip))
	if err != nil {
		return "", err
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("status %d", resp.StatusCode())
	}
	return p.parse(resp.Body())
}

// countryLanguage maps countries whose visitors get a non-English default.
var countryLanguage = map[string]string{
	"BR": "pt-BR",
	"PT": "pt-PT",
	"AO": "pt-PT",
	"MZ": "pt-PT",
	"ES": "es", "MX": "es", "AR": "es", "CO": "es", "CL": "es",
	"PE": "es", "VE": "es", "EC": "es", "GT": "es", "UY": "es",
	"PY": "es", "BO": "es", "DO": "es", "CR": "es", "PA": "es",
	"SV": "es", "HN": "es", "NI": "es", "CU": "es",
}

// languageForCountry picks the language for a resolved country, deferring to
// the browser's locale for countries with no obvious site language.
func languageForCountry(country, acceptLanguage string) string {
	if lang, ok := countryLanguage[country]; ok {
		return lang
	}
	return i18n.FromLocale(primaryLocale(acceptLanguage))
}

// primaryLocale extracts the first locale token from an Accept-Language
// header ("pt-BR,pt;q=0.9" yields "pt-BR").
func primaryLocale(acceptLanguage string) string {
	first := acceptLanguage
	if i := strings.IndexByte(first, ','); i >= 0 {
		first = first[:i]
	}
	if i := strings.IndexByte(first, ';'); i >= 0 {
		first = first[:i]
	}
	return strings.TrimSpace(first)
}

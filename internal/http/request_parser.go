package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finflow/internal/core"
	"finflow/internal/services"
)

const maxBodyBytes = 64 << 10

// ParsePeriod reads ?year=&month=, defaulting each to the month of now.
// A value that is present but not a valid month yields ErrInvalidPeriod
// together with the current period.
func ParsePeriod(query url.Values, now time.Time) (core.Period, error) {
	current := core.CurrentPeriod(now)
	p := current

	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return current, fmt.Errorf("%w: year %q", core.ErrInvalidPeriod, v)
		}
		p.Year = y
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil {
			return current, fmt.Errorf("%w: month %q", core.ErrInvalidPeriod, v)
		}
		p.Month = m
	}

	if err := p.Validate(); err != nil {
		return current, err
	}
	return p, nil
}

// RequestBodyParser reads a request body once and exposes it as key/value
// pairs, whether it was sent as JSON or form-encoded.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body != nil {
		p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	}
	return p
}

func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}
	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns the sanitized value for key, or "".
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseTransactionInput builds a service input from amount, description,
// category_id and date (YYYY-MM-DD, today when empty).
func ParseTransactionInput(p *RequestBodyParser, now time.Time) (services.TransactionInput, error) {
	amount, err := core.ParseAmount(p.Get("amount"))
	if err != nil {
		return services.TransactionInput{}, err
	}
	date, err := parseDate(p.Get("date"), now)
	if err != nil {
		return services.TransactionInput{}, err
	}
	return services.TransactionInput{
		Amount:      amount,
		Description: p.Get("description"),
		CategoryID:  p.Get("category_id"),
		Date:        date,
	}, nil
}

// ParseCategory reads name, type, icon and color.
func ParseCategory(p *RequestBodyParser) (core.Category, error) {
	typ, err := core.ParseTransactionType(p.Get("type"))
	if err != nil {
		return core.Category{}, err
	}
	return core.Category{
		Name:  p.Get("name"),
		Type:  typ,
		Icon:  p.Get("icon"),
		Color: p.Get("color"),
	}, nil
}

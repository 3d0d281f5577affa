// Package http serves the dashboard: a JSON API and the htmx-driven HTML page.
//
// This file turns request bodies and query strings into service inputs.
package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/services"
)

// RequestBodyParser reads a body once and decodes it as JSON or as a
// form, whichever it looks like.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads at most maxBodyBytes of r's body.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = fmt.Errorf("request body larger than %d bytes", maxBodyBytes)
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

	if len(strings.TrimSpace(string(p.body))) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.looksJSON() {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = fmt.Errorf("malformed JSON body: %w", err)
		}
		return p.err
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

func (p *RequestBodyParser) looksJSON() bool {
	if strings.HasPrefix(p.contentType, "application/json") {
		return true
	}
	trimmed := strings.TrimSpace(string(p.body))
	return strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")
}

// Get returns the sanitized value for key from whichever encoding was parsed.
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

// ExpenseInput collects the add-expense fields. JSON numbers are accepted
// for the amount.
func (p *RequestBodyParser) ExpenseInput() services.ExpenseInput {
	return services.ExpenseInput{
		Title:       p.Get("title"),
		Amount:      p.Get("amount"),
		CategoryID:  p.Get("category_id"),
		Date:        p.Get("date"),
		Description: p.Get("description"),
	}
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

// ParseQuery reads the q and status parameters of the transactions list.
// The search term keeps its surrounding spaces; it is matched as a substring.
func ParseQuery(values url.Values) (core.Query, error) {
	status, err := core.ParseStatusFilter(values.Get("status"))
	if err != nil {
		return core.Query{}, fmt.Errorf("status %q: %w", values.Get("status"), err)
	}
	return core.Query{
		Search: stripControl(values.Get("q")),
		Status: status,
	}, nil
}

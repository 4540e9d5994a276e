// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request
// data: filter criteria from the query string and transaction fields from
// JSON or form bodies.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"moneytracker/internal/query"
	"moneytracker/internal/services"
)

// maxBodyBytes bounds every request body, imports included.
const maxBodyBytes = 5 << 20

var errBodyTooLarge = errors.New("request body too large")

// criteriaParams are the query keys that make up the filter criteria.
var criteriaParams = []string{"type", "category", "from", "to", "search"}

// ParseCriteria builds filter criteria from query parameters. It reports
// false when none of the criteria keys is present, so callers can keep the
// active criteria.
func ParseCriteria(q url.Values) (query.Criteria, bool) {
	present := false
	for _, k := range criteriaParams {
		if _, ok := q[k]; ok {
			present = true
			break
		}
	}
	if !present {
		return query.Criteria{}, false
	}
	return query.NewCriteria(
		sanitizeInput(q.Get("type")),
		sanitizeInput(q.Get("category")),
		sanitizeInput(q.Get("from")),
		sanitizeInput(q.Get("to")),
		sanitizeInput(q.Get("search")),
	), true
}

// ParsePage returns the requested page number, or 0 when absent or not a
// positive integer.
func ParsePage(q url.Values) int {
	v := strings.TrimSpace(q.Get("page"))
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0
	}
	return n
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser reads the body once, up to maxBodyBytes.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	p.body, p.err = readBody(r)
	return p
}

func readBody(r *http.Request) ([]byte, error) {
	if r.Body == nil {
		return nil, nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxBodyBytes {
		return nil, errBodyTooLarge
	}
	return data, nil
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := strings.TrimSpace(string(p.body))
	if trimmed == "" {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' {
		p.jsonData = make(map[string]any)
		dec := json.NewDecoder(bytes.NewReader(p.body))
		dec.UseNumber()
		if err := dec.Decode(&p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(trimmed)
	return p.err
}

// Has reports whether key was sent, even with an empty value.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		v, ok := p.jsonData[key]
		return ok && v != nil
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Get returns a sanitized string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// NewTransaction reads the fields of an Add request.
func (p *RequestBodyParser) NewTransaction() services.NewTransaction {
	return services.NewTransaction{
		Type:     p.Get("type"),
		Amount:   p.Get("amount"),
		Category: p.Get("category"),
		Note:     p.Get("note"),
		Date:     p.Get("date"),
	}
}

// TransactionPatch reads the fields of an Edit request. Absent fields stay
// nil and keep their stored value.
func (p *RequestBodyParser) TransactionPatch() services.TransactionPatch {
	field := func(key string) *string {
		if !p.Has(key) {
			return nil
		}
		v := p.Get(key)
		return &v
	}
	return services.TransactionPatch{
		Type:     field("type"),
		Amount:   field("amount"),
		Category: field("category"),
		Note:     field("note"),
		Date:     field("date"),
	}
}

// stringValue converts a decoded JSON value to string.
func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// sanitizeInput removes control characters other than tab and newlines and
// trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		return r
	}, s)
}

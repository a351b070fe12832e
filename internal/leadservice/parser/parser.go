// Package parser turns a free-form customer text message into the structured
// fields the intake flow stores on a lead. It is deliberately dumb string
// matching: no NLU, no validation of what lands in each field.
package parser

import (
	"database/sql"
	"strings"
)

// ParsedMessage holds the fields recognised in a message body. A field that
// never appeared stays invalid (NULL), not empty.
type ParsedMessage struct {
	Name    sql.NullString
	Address sql.NullString
	Service sql.NullString
}

// Parse extracts name, address and service from a customer's reply.
//
// Each non-empty, trimmed line is inspected case-insensitively. A line
// containing "name", "address", or "service"/"need" together with a ':'
// assigns the text after the first ':' to that field, overwriting any prior
// value. A line matching a keyword but carrying no ':' falls through to
// positional assignment, which fills the first still-empty field in the
// order name, address, service. That can mis-assign such lines; accepted
// limitation. Parse is pure and deterministic.
func Parse(body string) ParsedMessage {
	var out ParsedMessage

	for _, raw := range strings.Split(body, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "name"):
			if v, ok := afterSeparator(line); ok {
				out.Name = sql.NullString{String: v, Valid: true}
				continue
			}
		case strings.Contains(lower, "address"):
			if v, ok := afterSeparator(line); ok {
				out.Address = sql.NullString{String: v, Valid: true}
				continue
			}
		case strings.Contains(lower, "service"), strings.Contains(lower, "need"):
			if v, ok := afterSeparator(line); ok {
				out.Service = sql.NullString{String: v, Valid: true}
				continue
			}
		default:
			assignPositional(&out, line)
			continue
		}

		// Keyword line without a separator: positional fallback.
		assignPositional(&out, line)
	}

	return out
}

func afterSeparator(line string) (string, bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", false
	}
	return strings.TrimSpace(line[idx+1:]), true
}

func assignPositional(out *ParsedMessage, line string) {
	switch {
	case !out.Name.Valid:
		out.Name = sql.NullString{String: line, Valid: true}
	case !out.Address.Valid:
		out.Address = sql.NullString{String: line, Valid: true}
	case !out.Service.Valid:
		out.Service = sql.NullString{String: line, Valid: true}
	}
}

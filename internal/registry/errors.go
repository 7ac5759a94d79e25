// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package registry

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyDocument is returned for a document with no bytes.
var ErrEmptyDocument = errors.New("definitions document is empty")

// Category names the list a definition belongs to.
type Category string

const (
	CategoryDocument Category = "document"
	CategoryKPI      Category = "kpis"
	CategoryChart    Category = "charts"
	CategoryFilter   Category = "filters"
)

// Problem is one reason a definitions document was rejected.
type Problem struct {
	Category Category `json:"category"`
	Index    int      `json:"index"`
	ID       string   `json:"id,omitempty"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
}

func (p Problem) String() string {
	if p.Category == CategoryDocument {
		return p.Message
	}
	loc := fmt.Sprintf("%s[%d]", p.Category, p.Index)
	if p.ID != "" {
		loc += fmt.Sprintf(" (%s)", p.ID)
	}
	return loc + ": " + p.Message
}

// ConfigError reports every problem found while loading definitions. A
// registry is never returned alongside a ConfigError.
type ConfigError struct {
	Source   string
	Problems []Problem
	cause    error
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("invalid dashboard definitions")
	if e.Source != "" {
		b.WriteString(" in ")
		b.WriteString(e.Source)
	}
	switch len(e.Problems) {
	case 0:
	case 1:
		b.WriteString(": ")
		b.WriteString(e.Problems[0].String())
	default:
		fmt.Fprintf(&b, " (%d problems): ", len(e.Problems))
		for i, p := range e.Problems {
			if i > 0 {
				b.WriteString("; ")
			}
			b.WriteString(p.String())
		}
	}
	return b.String()
}

func (e *ConfigError) Unwrap() error {
	return e.cause
}

// IsConfigError reports whether err is or wraps a *ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

func documentError(cause error) *ConfigError {
	return &ConfigError{
		Problems: []Problem{{Category: CategoryDocument, Message: cause.Error()}},
		cause:    cause,
	}
}

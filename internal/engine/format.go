// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tomtom215/pulseboard/internal/registry"
)

// NoDataLabel is what a KPI without a computable value renders as.
const NoDataLabel = "no data"

// Formatter renders KPI values for a locale. It is safe for concurrent use.
type Formatter struct {
	tag language.Tag
}

// NewFormatter returns a formatter for the given BCP 47 language tag.
// Unparseable tags fall back to English.
func NewFormatter(lang string) *Formatter {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return &Formatter{tag: tag}
}

// Format renders v with the presentation rules for f:
// number "1,235", currency "$1,234.56", decimal "1,234.57", percentage "66.7%".
// A nil v renders as NoDataLabel.
func (fm *Formatter) Format(v *float64, f registry.FormatKind) string {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return NoDataLabel
	}
	p := message.NewPrinter(fm.tag)
	val := *v

	switch f {
	case registry.FormatCurrency:
		if val < 0 {
			return p.Sprintf("-$%.2f", -val)
		}
		return p.Sprintf("$%.2f", val)
	case registry.FormatDecimal:
		return p.Sprintf("%.2f", val)
	case registry.FormatPercentage:
		return p.Sprintf("%.1f%%", val)
	default:
		return p.Sprintf("%d", int64(math.Round(val)))
	}
}

var defaultFormatter = NewFormatter("en")

// FormatValue renders v with the English formatter.
func FormatValue(v *float64, f registry.FormatKind) string {
	return defaultFormatter.Format(v, f)
}

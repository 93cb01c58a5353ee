package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// Placeholder strings treated as missing values regardless of field type
var missingValueTokens = map[string]bool{
	"NA":   true,
	"N/A":  true,
	"NULL": true,
	"NONE": true,
}

// Per-field fallbacks applied when a select value matches no option
var selectFieldDefaults = map[string]string{
	"customer_title": "Mr.",
	"title":          "Mr.",
}

// Date layouts tried when a value carries no slash separators
var genericDateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"02 January 2006",
	"Jan 2, 2006",
}

var genericDatetimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"02-01-2006 15:04:05",
	"02/01/2006 15:04:05",
}

// ValueConverter turns raw extracted values into typed values matching a
// policy field definition. Every conversion is total: a value that cannot be
// converted yields nil, never an error, so one bad value cannot fail a whole
// mapping run.
type ValueConverter struct {
	logger *logger.Logger
}

// NewValueConverter creates a new value converter
func NewValueConverter(logger *logger.Logger) *ValueConverter {
	return &ValueConverter{logger: logger}
}

// Convert converts a raw extracted value for the given field. The result is
// typed by field type: time.Time for Date/Datetime, int for Int, float64 for
// Float/Currency, bool for Check, string otherwise. Missing or unconvertible
// values yield nil.
func (c *ValueConverter) Convert(field models.FieldDef, raw interface{}) interface{} {
	if raw == nil {
		return nil
	}

	// Check is total over every input, placeholders included
	if field.Fieldtype == models.FieldTypeCheck {
		return c.convertCheck(raw)
	}

	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" || missingValueTokens[strings.ToUpper(s)] {
			return nil
		}
		raw = s
	}

	switch field.Fieldtype {
	case models.FieldTypeDate:
		return c.convertDate(raw)
	case models.FieldTypeDatetime:
		return c.convertDatetime(raw)
	case models.FieldTypeInt:
		return c.convertInt(raw)
	case models.FieldTypeFloat, models.FieldTypeCurrency:
		return c.convertFloat(raw)
	case models.FieldTypeSelect:
		return c.convertSelect(field, raw)
	default:
		return c.convertText(raw)
	}
}

// convertDate parses day-first dates. Slash dates with a first component
// above 12 are unambiguous DD/MM; otherwise DD/MM is preferred and MM/DD is
// the fallback. The result is a date at midnight UTC.
func (c *ValueConverter) convertDate(raw interface{}) interface{} {
	s, ok := raw.(string)
	if !ok {
		return nil
	}

	if t, ok := c.parseDate(s); ok {
		return t
	}

	c.logger.WithField("value", s).Debug("Could not parse date value")
	return nil
}

// convertDatetime parses like convertDate but also accepts timestamp layouts.
// Plain dates resolve to midnight.
func (c *ValueConverter) convertDatetime(raw interface{}) interface{} {
	s, ok := raw.(string)
	if !ok {
		return nil
	}

	for _, layout := range genericDatetimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}

	if t, ok := c.parseDate(s); ok {
		return t
	}

	c.logger.WithField("value", s).Debug("Could not parse datetime value")
	return nil
}

func (c *ValueConverter) parseDate(s string) (time.Time, bool) {
	if strings.Contains(s, "/") {
		parts := strings.Split(s, "/")
		if len(parts) == 3 {
			first, err := strconv.Atoi(strings.TrimSpace(parts[0]))
			if err == nil && first > 12 {
				// Day above 12, unambiguously day-first
				if t, err := time.Parse("2/1/2006", s); err == nil {
					return dateOnly(t), true
				}
				return time.Time{}, false
			}

			if t, err := time.Parse("2/1/2006", s); err == nil {
				return dateOnly(t), true
			}
			if t, err := time.Parse("1/2/2006", s); err == nil {
				return dateOnly(t), true
			}
			return time.Time{}, false
		}
	}

	for _, layout := range genericDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}
	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// convertFloat strips currency symbols, digit grouping and the Indian "/-"
// amount suffix before parsing
func (c *ValueConverter) convertFloat(raw interface{}) interface{} {
	switch v := raw.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		s := v
		for _, symbol := range []string{"₹", "$", "€", ","} {
			s = strings.ReplaceAll(s, symbol, "")
		}
		s = strings.TrimSpace(s)
		for _, prefix := range []string{"Rs.", "Rs", "rs.", "rs", "RS.", "RS", "INR"} {
			if strings.HasPrefix(s, prefix) {
				s = s[len(prefix):]
				break
			}
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "/-")
		s = strings.TrimSpace(s)

		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.logger.WithField("value", v).Debug("Could not parse numeric value")
			return nil
		}
		return f
	default:
		return nil
	}
}

// convertInt keeps only digit characters, so "5 seater capacity" yields 5 and
// "1,234" yields 1234
func (c *ValueConverter) convertInt(raw interface{}) interface{} {
	switch v := raw.(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		var digits strings.Builder
		for _, r := range v {
			if r >= '0' && r <= '9' {
				digits.WriteRune(r)
			}
		}
		if digits.Len() == 0 {
			return nil
		}
		n, err := strconv.Atoi(digits.String())
		if err != nil {
			return nil
		}
		return n
	default:
		return nil
	}
}

// convertCheck is total: yes/true/1/y in any casing is true, everything else
// is false
func (c *ValueConverter) convertCheck(raw interface{}) interface{} {
	switch v := raw.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "yes", "true", "1", "y":
			return true
		default:
			return false
		}
	default:
		return false
	}
}

// convertSelect resolves a value against the field's options: exact match,
// then case-insensitive, then substring containment either direction, then
// the per-field default table
func (c *ValueConverter) convertSelect(field models.FieldDef, raw interface{}) interface{} {
	s, ok := c.convertText(raw).(string)
	if !ok {
		return nil
	}

	for _, option := range field.Options {
		if s == option {
			return option
		}
	}

	lower := strings.ToLower(s)
	for _, option := range field.Options {
		if lower == strings.ToLower(option) {
			return option
		}
	}

	for _, option := range field.Options {
		optLower := strings.ToLower(option)
		if strings.Contains(optLower, lower) || strings.Contains(lower, optLower) {
			return option
		}
	}

	if fallback, ok := selectFieldDefaults[field.Fieldname]; ok {
		return fallback
	}

	c.logger.WithField("field", field.Fieldname).WithField("value", s).
		Debug("Select value matched no option")
	return nil
}

// convertText trims strings and stringifies numeric JSON values
func (c *ValueConverter) convertText(raw interface{}) interface{} {
	switch v := raw.(type) {
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return nil
		}
		return s
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case bool:
		if v {
			return "1"
		}
		return "0"
	default:
		return nil
	}
}

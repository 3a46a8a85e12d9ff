package importer

import (
	"net"
	"strings"
	"time"

	"github.com/assetdeck/assetdeck/modules/assets/domain/entities/importsource"
)

// FieldError is one validation finding on a normalized record. Blocking
// errors exclude the row from commit; non-blocking ones are reported only.
type FieldError struct {
	Field    string `json:"field"`
	Message  string `json:"message"`
	Blocking bool   `json:"-"`
}

var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"02.01.2006",
	time.RFC3339,
}

// ValidateRecord applies the schema rules to a normalized record.
// Deterministic: field definitions are checked in order, so the same input
// always yields the same error list.
func ValidateRecord(rec NormalizedRecord, defs []importsource.FieldDef) []FieldError {
	var errs []FieldError
	for _, def := range defs {
		value, present := rec.Fields[def.Name]
		value = strings.TrimSpace(value)

		if !present || value == "" {
			if def.Required {
				errs = append(errs, FieldError{Field: def.Name, Message: "required", Blocking: true})
			}
			continue
		}

		if message := checkFormat(def.Format, value); message != "" {
			errs = append(errs, FieldError{
				Field:    def.Name,
				Message:  message,
				Blocking: def.Required || def.Blocking,
			})
		}
	}
	return errs
}

// HasBlocking reports whether any error excludes the row from commit.
func HasBlocking(errs []FieldError) bool {
	for _, e := range errs {
		if e.Blocking {
			return true
		}
	}
	return false
}

func checkFormat(format importsource.Format, value string) string {
	switch format {
	case importsource.FormatDate:
		for _, layout := range dateLayouts {
			if _, err := time.Parse(layout, value); err == nil {
				return ""
			}
		}
		return "invalid date"
	case importsource.FormatMAC:
		if _, err := net.ParseMAC(value); err != nil {
			return "invalid MAC address"
		}
	case importsource.FormatIP:
		if net.ParseIP(value) == nil {
			return "invalid IP address"
		}
	}
	return ""
}

// ParseDate returns the first layout that accepts the value.
func ParseDate(value string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

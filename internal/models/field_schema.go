package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// FieldType identifies how a policy field is typed and therefore how raw
// extracted values are converted before assignment.
type FieldType string

const (
	FieldTypeData     FieldType = "Data"
	FieldTypeText     FieldType = "Text"
	FieldTypeSelect   FieldType = "Select"
	FieldTypeDate     FieldType = "Date"
	FieldTypeDatetime FieldType = "Datetime"
	FieldTypeInt      FieldType = "Int"
	FieldTypeFloat    FieldType = "Float"
	FieldTypeCurrency FieldType = "Currency"
	FieldTypeCheck    FieldType = "Check"
)

// FieldDef describes a single mappable policy field
type FieldDef struct {
	Fieldname string    `json:"fieldname"`
	Fieldtype FieldType `json:"fieldtype"`
	Label     string    `json:"label,omitempty"`
	Options   []string  `json:"options,omitempty"`
}

// Common field errors
var (
	ErrUnknownField   = errors.New("unknown field")
	ErrFieldTypeValue = errors.New("value does not match field type")

	ErrPolicyDateOrder         = errors.New("policy start date must be before expiry date")
	ErrRenewableNeedsControlNo = errors.New("old control number is required when policy is marked as renewable")
)

// SAIBA sync statuses shared by motor and health policies
const (
	SyncStatusNotSynced = "Not Synced"
	SyncStatusPending   = "Pending"
	SyncStatusSynced    = "Synced"
	SyncStatusFailed    = "Failed"
)

// CanonicalPolicyType maps user-supplied policy type spellings onto the two
// supported types
func CanonicalPolicyType(s string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "motor":
		return PolicyTypeMotor, true
	case "health":
		return PolicyTypeHealth, true
	}
	return "", false
}

// SchemaFor returns the field schema for a policy type
func SchemaFor(policyType string) (map[string]FieldDef, bool) {
	switch policyType {
	case PolicyTypeMotor:
		return motorSchema, true
	case PolicyTypeHealth:
		return healthSchema, true
	}
	return nil, false
}

// NewPolicyRecord returns an empty policy record of the given type
func NewPolicyRecord(policyType string) (PolicyRecord, bool) {
	switch policyType {
	case PolicyTypeMotor:
		return &MotorPolicy{}, true
	case PolicyTypeHealth:
		return &HealthPolicy{}, true
	}
	return nil, false
}

// ProtectedFields lists the operator-entered customer and insurer fields that
// are copied from the policy document before mapping and never overridden by
// extracted values.
func ProtectedFields() []string {
	return []string{
		"customer_code",
		"customer_name",
		"customer_group",
		"insurance_company_branch",
		"insurer_name",
		"insurer_city",
		"insurer_branch",
		"insurer_branch_code",
	}
}

// PolicyRecord is the common surface the field mapper, validation engine and
// sync payload builders use to work against motor and health policies without
// reflection. SetField and FieldValue dispatch through per-record tables keyed
// by canonical field name.
type PolicyRecord interface {
	RecordType() string
	Schema() map[string]FieldDef
	SetField(name string, value interface{}) error
	FieldValue(name string) (interface{}, bool)
	FieldIsSet(name string) bool
	CopyProtectedFrom(doc *PolicyDocument)
	Validate() error
}

// Setter helpers shared by the motor and health dispatch tables. Converted
// values arrive typed: string for Data/Text/Select, int for Int, float64 for
// Float/Currency, bool for Check, time.Time for Date/Datetime.

func setString(dst *string, value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return fmt.Errorf("%w: expected string, got %T", ErrFieldTypeValue, value)
	}
	*dst = s
	return nil
}

func setInt(dst *int, value interface{}) error {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		*dst = int(v)
	default:
		return fmt.Errorf("%w: expected int, got %T", ErrFieldTypeValue, value)
	}
	return nil
}

func setFloat(dst *float64, value interface{}) error {
	switch v := value.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	case int64:
		*dst = float64(v)
	default:
		return fmt.Errorf("%w: expected float, got %T", ErrFieldTypeValue, value)
	}
	return nil
}

func setBool(dst *bool, value interface{}) error {
	b, ok := value.(bool)
	if !ok {
		return fmt.Errorf("%w: expected bool, got %T", ErrFieldTypeValue, value)
	}
	*dst = b
	return nil
}

func setDate(dst **time.Time, value interface{}) error {
	t, ok := value.(time.Time)
	if !ok {
		return fmt.Errorf("%w: expected time.Time, got %T", ErrFieldTypeValue, value)
	}
	*dst = &t
	return nil
}

// isSet helpers used by FieldIsSet to decide whether a protected field
// already carries a value.

func stringIsSet(v string) bool   { return v != "" }
func intIsSet(v int) bool         { return v != 0 }
func floatIsSet(v float64) bool   { return v != 0 }
func dateIsSet(v *time.Time) bool { return v != nil }
func dateValue(v *time.Time) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

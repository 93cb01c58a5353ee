package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// HealthPolicy represents a health insurance policy assembled from AI-extracted
// fields and operator-entered customer details, in the shape SAIBA ERP expects.
// Insured member rows extracted from the policy schedule land in the numbered
// insured fields.
type HealthPolicy struct {
	ID               string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	PolicyDocumentID string `json:"policy_document_id" gorm:"type:uuid;index"`
	PolicyFile       string `json:"policy_file,omitempty"`

	// Protected customer and insurer fields, copied from the policy document
	CustomerCode           int    `json:"customer_code,omitempty"`
	CustomerName           string `json:"customer_name,omitempty"`
	CustomerGroup          string `json:"customer_group,omitempty"`
	InsuranceCompanyBranch string `json:"insurance_company_branch,omitempty"`
	InsurerName            string `json:"insurer_name,omitempty"`
	InsurerCity            string `json:"insurer_city,omitempty"`
	InsurerBranch          string `json:"insurer_branch,omitempty"`
	InsurerBranchCode      int    `json:"insurer_branch_code,omitempty"`

	// Policy information
	CustomerTitle    string `json:"customer_title,omitempty"`
	PolicyNo         string `json:"policy_no,omitempty" gorm:"index"`
	PolicyType       string `json:"policy_type,omitempty"`
	PlanName         string `json:"plan_name,omitempty"`
	BizType          string `json:"biz_type,omitempty"`
	PosPolicy        string `json:"pos_policy,omitempty"`
	IsRenewable      string `json:"is_renewable,omitempty"`
	OldControlNumber string `json:"old_control_number,omitempty"`
	CoverageType     string `json:"coverage_type,omitempty"`
	PolicyVertical   string `json:"policy_vertical,omitempty"`
	PrevPolicy       string `json:"prev_policy,omitempty"`
	RmCe1Code        string `json:"rm_ce1_code,omitempty" gorm:"column:rm_ce1_code"`
	Remarks          string `json:"remarks,omitempty"`

	// Dates
	PolicyIssuanceDate *time.Time `json:"policy_issuance_date,omitempty"`
	PolicyStartDate    *time.Time `json:"policy_start_date,omitempty"`
	PolicyExpiryDate   *time.Time `json:"policy_expiry_date,omitempty"`

	// Financial information
	SumInsured    float64 `json:"sum_insured,omitempty"`
	NetODPremium  float64 `json:"net_od_premium,omitempty"`
	GstTaxPercent float64 `json:"gst_tax_percent,omitempty"`
	StampDuty     float64 `json:"stamp_duty,omitempty"`

	// Insured members, row position in the policy schedule
	Insured1Name     string     `json:"insured_1_name,omitempty" gorm:"column:insured_1_name"`
	Insured1Gender   string     `json:"insured_1_gender,omitempty" gorm:"column:insured_1_gender"`
	Insured1DOB      *time.Time `json:"insured_1_dob,omitempty" gorm:"column:insured_1_dob"`
	Insured1Relation string     `json:"insured_1_relation,omitempty" gorm:"column:insured_1_relation"`
	Insured2Name     string     `json:"insured_2_name,omitempty" gorm:"column:insured_2_name"`
	Insured2Gender   string     `json:"insured_2_gender,omitempty" gorm:"column:insured_2_gender"`
	Insured2DOB      *time.Time `json:"insured_2_dob,omitempty" gorm:"column:insured_2_dob"`
	Insured2Relation string     `json:"insured_2_relation,omitempty" gorm:"column:insured_2_relation"`
	Insured3Name     string     `json:"insured_3_name,omitempty" gorm:"column:insured_3_name"`
	Insured3Gender   string     `json:"insured_3_gender,omitempty" gorm:"column:insured_3_gender"`
	Insured3DOB      *time.Time `json:"insured_3_dob,omitempty" gorm:"column:insured_3_dob"`
	Insured3Relation string     `json:"insured_3_relation,omitempty" gorm:"column:insured_3_relation"`
	Insured4Name     string     `json:"insured_4_name,omitempty" gorm:"column:insured_4_name"`
	Insured4Gender   string     `json:"insured_4_gender,omitempty" gorm:"column:insured_4_gender"`
	Insured4DOB      *time.Time `json:"insured_4_dob,omitempty" gorm:"column:insured_4_dob"`
	Insured4Relation string     `json:"insured_4_relation,omitempty" gorm:"column:insured_4_relation"`
	Insured5Name     string     `json:"insured_5_name,omitempty" gorm:"column:insured_5_name"`
	Insured5Gender   string     `json:"insured_5_gender,omitempty" gorm:"column:insured_5_gender"`
	Insured5DOB      *time.Time `json:"insured_5_dob,omitempty" gorm:"column:insured_5_dob"`
	Insured5Relation string     `json:"insured_5_relation,omitempty" gorm:"column:insured_5_relation"`

	// SAIBA sync state
	SaibaSyncStatus    string     `json:"saiba_sync_status" gorm:"default:'Not Synced'"`
	SaibaSyncDatetime  *time.Time `json:"saiba_sync_datetime,omitempty"`
	SaibaControlNumber string     `json:"saiba_control_number,omitempty"`
	SaibaSyncError     string     `json:"saiba_sync_error,omitempty"`
	SaibaSyncResponse  JSONMap    `json:"saiba_sync_response,omitempty" gorm:"type:jsonb"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName returns the table name for HealthPolicy
func (HealthPolicy) TableName() string {
	return "health_policies"
}

// RecordType returns the policy type this record represents
func (p *HealthPolicy) RecordType() string {
	return PolicyTypeHealth
}

// Schema returns the mappable field definitions for health policies
func (p *HealthPolicy) Schema() map[string]FieldDef {
	return healthSchema
}

// SetField assigns a converted value to the named field via the dispatch table
func (p *HealthPolicy) SetField(name string, value interface{}) error {
	setter, ok := healthSetters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return setter(p, value)
}

// FieldValue returns the current value of the named field. Unset date fields
// yield nil.
func (p *HealthPolicy) FieldValue(name string) (interface{}, bool) {
	getter, ok := healthGetters[name]
	if !ok {
		return nil, false
	}
	return getter(p), true
}

// FieldIsSet checks whether the named field already carries a non-zero value
func (p *HealthPolicy) FieldIsSet(name string) bool {
	value, ok := p.FieldValue(name)
	if !ok || value == nil {
		return false
	}
	switch v := value.(type) {
	case string:
		return v != ""
	case int:
		return v != 0
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}

// CopyProtectedFrom copies the operator-entered customer and insurer details
// from the source document. Called before mapping so extracted values cannot
// override them.
func (p *HealthPolicy) CopyProtectedFrom(doc *PolicyDocument) {
	p.CustomerCode = doc.CustomerCode
	p.CustomerName = doc.CustomerName
	p.CustomerGroup = doc.CustomerGroupName
	p.InsuranceCompanyBranch = doc.InsuranceCompanyBranch
	p.InsurerName = doc.InsurerName
	p.InsurerCity = doc.InsurerCity
	p.InsurerBranch = doc.InsurerBranch
	p.InsurerBranchCode = doc.InsurerBranchCode
}

// Validate applies the date ordering and renewable rules ahead of insert
func (p *HealthPolicy) Validate() error {
	if p.PolicyStartDate != nil && p.PolicyExpiryDate != nil {
		if !p.PolicyStartDate.Before(*p.PolicyExpiryDate) {
			return ErrPolicyDateOrder
		}
	}
	if p.IsRenewable == "Yes" && p.OldControlNumber == "" {
		return ErrRenewableNeedsControlNo
	}
	return nil
}

var healthGenderOptions = []string{"Male", "Female", "Other"}
var healthRelationOptions = []string{"Self", "Spouse", "Wife", "Husband", "Son", "Daughter", "Father", "Mother", "Other"}

var healthSchema = map[string]FieldDef{
	"customer_code":            {Fieldname: "customer_code", Fieldtype: FieldTypeInt, Label: "Customer Code"},
	"customer_name":            {Fieldname: "customer_name", Fieldtype: FieldTypeData, Label: "Customer Name"},
	"customer_group":           {Fieldname: "customer_group", Fieldtype: FieldTypeData, Label: "Customer Group"},
	"insurance_company_branch": {Fieldname: "insurance_company_branch", Fieldtype: FieldTypeData, Label: "Insurance Company Branch"},
	"insurer_name":             {Fieldname: "insurer_name", Fieldtype: FieldTypeData, Label: "Insurer Name"},
	"insurer_city":             {Fieldname: "insurer_city", Fieldtype: FieldTypeData, Label: "Insurer City"},
	"insurer_branch":           {Fieldname: "insurer_branch", Fieldtype: FieldTypeData, Label: "Insurer Branch"},
	"insurer_branch_code":      {Fieldname: "insurer_branch_code", Fieldtype: FieldTypeInt, Label: "Insurer Branch Code"},

	"customer_title":     {Fieldname: "customer_title", Fieldtype: FieldTypeSelect, Label: "Customer Title", Options: []string{"Mr.", "Mrs.", "Ms.", "Dr.", "M/s"}},
	"policy_no":          {Fieldname: "policy_no", Fieldtype: FieldTypeData, Label: "Policy No"},
	"policy_type":        {Fieldname: "policy_type", Fieldtype: FieldTypeSelect, Label: "Policy Type", Options: []string{"Individual", "Family Floater", "Group"}},
	"plan_name":          {Fieldname: "plan_name", Fieldtype: FieldTypeData, Label: "Plan Name"},
	"biz_type":           {Fieldname: "biz_type", Fieldtype: FieldTypeSelect, Label: "Business Type", Options: []string{"New", "Renewal"}},
	"pos_policy":         {Fieldname: "pos_policy", Fieldtype: FieldTypeSelect, Label: "POS Policy", Options: []string{"Yes", "No"}},
	"is_renewable":       {Fieldname: "is_renewable", Fieldtype: FieldTypeSelect, Label: "Is Renewable", Options: []string{"Yes", "No"}},
	"old_control_number": {Fieldname: "old_control_number", Fieldtype: FieldTypeData, Label: "Old Control Number"},
	"coverage_type":      {Fieldname: "coverage_type", Fieldtype: FieldTypeSelect, Label: "Coverage Type", Options: []string{"Individual", "Floater"}},
	"policy_vertical":    {Fieldname: "policy_vertical", Fieldtype: FieldTypeData, Label: "Policy Vertical"},
	"prev_policy":        {Fieldname: "prev_policy", Fieldtype: FieldTypeData, Label: "Previous Policy"},
	"rm_ce1_code":        {Fieldname: "rm_ce1_code", Fieldtype: FieldTypeData, Label: "RM / CE1 Code"},
	"remarks":            {Fieldname: "remarks", Fieldtype: FieldTypeText, Label: "Remarks"},

	"policy_issuance_date": {Fieldname: "policy_issuance_date", Fieldtype: FieldTypeDate, Label: "Policy Issuance Date"},
	"policy_start_date":    {Fieldname: "policy_start_date", Fieldtype: FieldTypeDate, Label: "Policy Start Date"},
	"policy_expiry_date":   {Fieldname: "policy_expiry_date", Fieldtype: FieldTypeDate, Label: "Policy Expiry Date"},

	"sum_insured":     {Fieldname: "sum_insured", Fieldtype: FieldTypeCurrency, Label: "Sum Insured"},
	"net_od_premium":  {Fieldname: "net_od_premium", Fieldtype: FieldTypeCurrency, Label: "Net Premium"},
	"gst_tax_percent": {Fieldname: "gst_tax_percent", Fieldtype: FieldTypeFloat, Label: "GST Tax Percent"},
	"stamp_duty":      {Fieldname: "stamp_duty", Fieldtype: FieldTypeCurrency, Label: "Stamp Duty"},

	"insured_1_name":     {Fieldname: "insured_1_name", Fieldtype: FieldTypeData, Label: "Insured 1 Name"},
	"insured_1_gender":   {Fieldname: "insured_1_gender", Fieldtype: FieldTypeSelect, Label: "Insured 1 Gender", Options: healthGenderOptions},
	"insured_1_dob":      {Fieldname: "insured_1_dob", Fieldtype: FieldTypeDate, Label: "Insured 1 DOB"},
	"insured_1_relation": {Fieldname: "insured_1_relation", Fieldtype: FieldTypeSelect, Label: "Insured 1 Relation", Options: healthRelationOptions},
	"insured_2_name":     {Fieldname: "insured_2_name", Fieldtype: FieldTypeData, Label: "Insured 2 Name"},
	"insured_2_gender":   {Fieldname: "insured_2_gender", Fieldtype: FieldTypeSelect, Label: "Insured 2 Gender", Options: healthGenderOptions},
	"insured_2_dob":      {Fieldname: "insured_2_dob", Fieldtype: FieldTypeDate, Label: "Insured 2 DOB"},
	"insured_2_relation": {Fieldname: "insured_2_relation", Fieldtype: FieldTypeSelect, Label: "Insured 2 Relation", Options: healthRelationOptions},
	"insured_3_name":     {Fieldname: "insured_3_name", Fieldtype: FieldTypeData, Label: "Insured 3 Name"},
	"insured_3_gender":   {Fieldname: "insured_3_gender", Fieldtype: FieldTypeSelect, Label: "Insured 3 Gender", Options: healthGenderOptions},
	"insured_3_dob":      {Fieldname: "insured_3_dob", Fieldtype: FieldTypeDate, Label: "Insured 3 DOB"},
	"insured_3_relation": {Fieldname: "insured_3_relation", Fieldtype: FieldTypeSelect, Label: "Insured 3 Relation", Options: healthRelationOptions},
	"insured_4_name":     {Fieldname: "insured_4_name", Fieldtype: FieldTypeData, Label: "Insured 4 Name"},
	"insured_4_gender":   {Fieldname: "insured_4_gender", Fieldtype: FieldTypeSelect, Label: "Insured 4 Gender", Options: healthGenderOptions},
	"insured_4_dob":      {Fieldname: "insured_4_dob", Fieldtype: FieldTypeDate, Label: "Insured 4 DOB"},
	"insured_4_relation": {Fieldname: "insured_4_relation", Fieldtype: FieldTypeSelect, Label: "Insured 4 Relation", Options: healthRelationOptions},
	"insured_5_name":     {Fieldname: "insured_5_name", Fieldtype: FieldTypeData, Label: "Insured 5 Name"},
	"insured_5_gender":   {Fieldname: "insured_5_gender", Fieldtype: FieldTypeSelect, Label: "Insured 5 Gender", Options: healthGenderOptions},
	"insured_5_dob":      {Fieldname: "insured_5_dob", Fieldtype: FieldTypeDate, Label: "Insured 5 DOB"},
	"insured_5_relation": {Fieldname: "insured_5_relation", Fieldtype: FieldTypeSelect, Label: "Insured 5 Relation", Options: healthRelationOptions},
}

var healthSetters = map[string]func(*HealthPolicy, interface{}) error{
	"customer_code":            func(p *HealthPolicy, v interface{}) error { return setInt(&p.CustomerCode, v) },
	"customer_name":            func(p *HealthPolicy, v interface{}) error { return setString(&p.CustomerName, v) },
	"customer_group":           func(p *HealthPolicy, v interface{}) error { return setString(&p.CustomerGroup, v) },
	"insurance_company_branch": func(p *HealthPolicy, v interface{}) error { return setString(&p.InsuranceCompanyBranch, v) },
	"insurer_name":             func(p *HealthPolicy, v interface{}) error { return setString(&p.InsurerName, v) },
	"insurer_city":             func(p *HealthPolicy, v interface{}) error { return setString(&p.InsurerCity, v) },
	"insurer_branch":           func(p *HealthPolicy, v interface{}) error { return setString(&p.InsurerBranch, v) },
	"insurer_branch_code":      func(p *HealthPolicy, v interface{}) error { return setInt(&p.InsurerBranchCode, v) },

	"customer_title":     func(p *HealthPolicy, v interface{}) error { return setString(&p.CustomerTitle, v) },
	"policy_no":          func(p *HealthPolicy, v interface{}) error { return setString(&p.PolicyNo, v) },
	"policy_type":        func(p *HealthPolicy, v interface{}) error { return setString(&p.PolicyType, v) },
	"plan_name":          func(p *HealthPolicy, v interface{}) error { return setString(&p.PlanName, v) },
	"biz_type":           func(p *HealthPolicy, v interface{}) error { return setString(&p.BizType, v) },
	"pos_policy":         func(p *HealthPolicy, v interface{}) error { return setString(&p.PosPolicy, v) },
	"is_renewable":       func(p *HealthPolicy, v interface{}) error { return setString(&p.IsRenewable, v) },
	"old_control_number": func(p *HealthPolicy, v interface{}) error { return setString(&p.OldControlNumber, v) },
	"coverage_type":      func(p *HealthPolicy, v interface{}) error { return setString(&p.CoverageType, v) },
	"policy_vertical":    func(p *HealthPolicy, v interface{}) error { return setString(&p.PolicyVertical, v) },
	"prev_policy":        func(p *HealthPolicy, v interface{}) error { return setString(&p.PrevPolicy, v) },
	"rm_ce1_code":        func(p *HealthPolicy, v interface{}) error { return setString(&p.RmCe1Code, v) },
	"remarks":            func(p *HealthPolicy, v interface{}) error { return setString(&p.Remarks, v) },

	"policy_issuance_date": func(p *HealthPolicy, v interface{}) error { return setDate(&p.PolicyIssuanceDate, v) },
	"policy_start_date":    func(p *HealthPolicy, v interface{}) error { return setDate(&p.PolicyStartDate, v) },
	"policy_expiry_date":   func(p *HealthPolicy, v interface{}) error { return setDate(&p.PolicyExpiryDate, v) },

	"sum_insured":     func(p *HealthPolicy, v interface{}) error { return setFloat(&p.SumInsured, v) },
	"net_od_premium":  func(p *HealthPolicy, v interface{}) error { return setFloat(&p.NetODPremium, v) },
	"gst_tax_percent": func(p *HealthPolicy, v interface{}) error { return setFloat(&p.GstTaxPercent, v) },
	"stamp_duty":      func(p *HealthPolicy, v interface{}) error { return setFloat(&p.StampDuty, v) },

	"insured_1_name":     func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured1Name, v) },
	"insured_1_gender":   func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured1Gender, v) },
	"insured_1_dob":      func(p *HealthPolicy, v interface{}) error { return setDate(&p.Insured1DOB, v) },
	"insured_1_relation": func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured1Relation, v) },
	"insured_2_name":     func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured2Name, v) },
	"insured_2_gender":   func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured2Gender, v) },
	"insured_2_dob":      func(p *HealthPolicy, v interface{}) error { return setDate(&p.Insured2DOB, v) },
	"insured_2_relation": func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured2Relation, v) },
	"insured_3_name":     func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured3Name, v) },
	"insured_3_gender":   func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured3Gender, v) },
	"insured_3_dob":      func(p *HealthPolicy, v interface{}) error { return setDate(&p.Insured3DOB, v) },
	"insured_3_relation": func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured3Relation, v) },
	"insured_4_name":     func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured4Name, v) },
	"insured_4_gender":   func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured4Gender, v) },
	"insured_4_dob":      func(p *HealthPolicy, v interface{}) error { return setDate(&p.Insured4DOB, v) },
	"insured_4_relation": func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured4Relation, v) },
	"insured_5_name":     func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured5Name, v) },
	"insured_5_gender":   func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured5Gender, v) },
	"insured_5_dob":      func(p *HealthPolicy, v interface{}) error { return setDate(&p.Insured5DOB, v) },
	"insured_5_relation": func(p *HealthPolicy, v interface{}) error { return setString(&p.Insured5Relation, v) },
}

var healthGetters = map[string]func(*HealthPolicy) interface{}{
	"customer_code":            func(p *HealthPolicy) interface{} { return p.CustomerCode },
	"customer_name":            func(p *HealthPolicy) interface{} { return p.CustomerName },
	"customer_group":           func(p *HealthPolicy) interface{} { return p.CustomerGroup },
	"insurance_company_branch": func(p *HealthPolicy) interface{} { return p.InsuranceCompanyBranch },
	"insurer_name":             func(p *HealthPolicy) interface{} { return p.InsurerName },
	"insurer_city":             func(p *HealthPolicy) interface{} { return p.InsurerCity },
	"insurer_branch":           func(p *HealthPolicy) interface{} { return p.InsurerBranch },
	"insurer_branch_code":      func(p *HealthPolicy) interface{} { return p.InsurerBranchCode },

	"customer_title":     func(p *HealthPolicy) interface{} { return p.CustomerTitle },
	"policy_no":          func(p *HealthPolicy) interface{} { return p.PolicyNo },
	"policy_type":        func(p *HealthPolicy) interface{} { return p.PolicyType },
	"plan_name":          func(p *HealthPolicy) interface{} { return p.PlanName },
	"biz_type":           func(p *HealthPolicy) interface{} { return p.BizType },
	"pos_policy":         func(p *HealthPolicy) interface{} { return p.PosPolicy },
	"is_renewable":       func(p *HealthPolicy) interface{} { return p.IsRenewable },
	"old_control_number": func(p *HealthPolicy) interface{} { return p.OldControlNumber },
	"coverage_type":      func(p *HealthPolicy) interface{} { return p.CoverageType },
	"policy_vertical":    func(p *HealthPolicy) interface{} { return p.PolicyVertical },
	"prev_policy":        func(p *HealthPolicy) interface{} { return p.PrevPolicy },
	"rm_ce1_code":        func(p *HealthPolicy) interface{} { return p.RmCe1Code },
	"remarks":            func(p *HealthPolicy) interface{} { return p.Remarks },

	"policy_issuance_date": func(p *HealthPolicy) interface{} { return dateValue(p.PolicyIssuanceDate) },
	"policy_start_date":    func(p *HealthPolicy) interface{} { return dateValue(p.PolicyStartDate) },
	"policy_expiry_date":   func(p *HealthPolicy) interface{} { return dateValue(p.PolicyExpiryDate) },

	"sum_insured":     func(p *HealthPolicy) interface{} { return p.SumInsured },
	"net_od_premium":  func(p *HealthPolicy) interface{} { return p.NetODPremium },
	"gst_tax_percent": func(p *HealthPolicy) interface{} { return p.GstTaxPercent },
	"stamp_duty":      func(p *HealthPolicy) interface{} { return p.StampDuty },

	"insured_1_name":     func(p *HealthPolicy) interface{} { return p.Insured1Name },
	"insured_1_gender":   func(p *HealthPolicy) interface{} { return p.Insured1Gender },
	"insured_1_dob":      func(p *HealthPolicy) interface{} { return dateValue(p.Insured1DOB) },
	"insured_1_relation": func(p *HealthPolicy) interface{} { return p.Insured1Relation },
	"insured_2_name":     func(p *HealthPolicy) interface{} { return p.Insured2Name },
	"insured_2_gender":   func(p *HealthPolicy) interface{} { return p.Insured2Gender },
	"insured_2_dob":      func(p *HealthPolicy) interface{} { return dateValue(p.Insured2DOB) },
	"insured_2_relation": func(p *HealthPolicy) interface{} { return p.Insured2Relation },
	"insured_3_name":     func(p *HealthPolicy) interface{} { return p.Insured3Name },
	"insured_3_gender":   func(p *HealthPolicy) interface{} { return p.Insured3Gender },
	"insured_3_dob":      func(p *HealthPolicy) interface{} { return dateValue(p.Insured3DOB) },
	"insured_3_relation": func(p *HealthPolicy) interface{} { return p.Insured3Relation },
	"insured_4_name":     func(p *HealthPolicy) interface{} { return p.Insured4Name },
	"insured_4_gender":   func(p *HealthPolicy) interface{} { return p.Insured4Gender },
	"insured_4_dob":      func(p *HealthPolicy) interface{} { return dateValue(p.Insured4DOB) },
	"insured_4_relation": func(p *HealthPolicy) interface{} { return p.Insured4Relation },
	"insured_5_name":     func(p *HealthPolicy) interface{} { return p.Insured5Name },
	"insured_5_gender":   func(p *HealthPolicy) interface{} { return p.Insured5Gender },
	"insured_5_dob":      func(p *HealthPolicy) interface{} { return dateValue(p.Insured5DOB) },
	"insured_5_relation": func(p *HealthPolicy) interface{} { return p.Insured5Relation },
}

package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// MotorPolicy represents a motor insurance policy assembled from AI-extracted
// fields and operator-entered customer details, in the shape SAIBA ERP expects.
type MotorPolicy struct {
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
	PolicyNo             string `json:"policy_no,omitempty" gorm:"index"`
	PolicyType           string `json:"policy_type,omitempty"`
	Department           string `json:"department,omitempty"`
	BizType              string `json:"biz_type,omitempty"`
	CoverageType         string `json:"coverage_type,omitempty"`
	CustomerVertical     string `json:"customer_vertical,omitempty"`
	NewRenewal           string `json:"new_renewal,omitempty"`
	IsRenewable          string `json:"is_renewable,omitempty"`
	PrevPolicyNo         string `json:"prev_policy_no,omitempty"`
	PosMispRef           string `json:"pos_misp_ref,omitempty"`
	PolicyStatusNa       string `json:"policy_status_na,omitempty"`
	CampaignName         string `json:"campaign_name,omitempty"`
	PolicyEnquiryRemarks string `json:"policy_enquiry_remarks,omitempty"`

	// Dates
	PolicyIssuanceDate *time.Time `json:"policy_issuance_date,omitempty"`
	BusBrokDate        *time.Time `json:"bus_brok_date,omitempty"`
	PolicyStartDate    *time.Time `json:"policy_start_date,omitempty"`
	PolicyExpiryDate   *time.Time `json:"policy_expiry_date,omitempty"`
	ReceiveDate        *time.Time `json:"receive_date,omitempty"`
	RegistrationDate   *time.Time `json:"registration_date,omitempty"`

	// Vehicle information
	VehicleNo     string `json:"vehicle_no,omitempty"`
	Make          string `json:"make,omitempty"`
	Model         string `json:"model,omitempty"`
	Variant       string `json:"variant,omitempty"`
	TypeOfVehicle string `json:"type_of_vehicle,omitempty"`
	YearOfMan     int    `json:"year_of_man,omitempty"`
	ChasisNo      string `json:"chasis_no,omitempty"`
	EngineNo      string `json:"engine_no,omitempty"`
	CC            string `json:"cc,omitempty"`
	Seats         string `json:"seats,omitempty"`
	Fuel          string `json:"fuel,omitempty"`
	RtoCode       string `json:"rto_code,omitempty"`
	Category      string `json:"category,omitempty"`
	PassengerGVW  string `json:"passenger_gvw,omitempty"`
	GvwTonKg      string `json:"gvw_ton_kg,omitempty"`
	NoOfPassenger string `json:"no_of_passenger,omitempty"`
	NCB           int    `json:"ncb,omitempty"`
	ODD           int    `json:"odd,omitempty"`

	// Financial information
	SumInsured    float64 `json:"sum_insured,omitempty"`
	NetODPremium  float64 `json:"net_od_premium,omitempty"`
	PremRate      float64 `json:"prem_rate,omitempty"`
	TPPremium     float64 `json:"tp_premium,omitempty"`
	LpodPremium   float64 `json:"lpod_premium,omitempty"`
	CoverageTP    string  `json:"coverage_tp,omitempty"`
	GST           float64 `json:"gst,omitempty"`
	StampDuty     float64 `json:"stamp_duty,omitempty"`
	PaymentMode1  string  `json:"payment_mode_1,omitempty" gorm:"column:payment_mode_1"`
	BankName      string  `json:"bank_name,omitempty"`
	PaymentTranNo string  `json:"payment_tran_no,omitempty"`

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

// TableName returns the table name for MotorPolicy
func (MotorPolicy) TableName() string {
	return "motor_policies"
}

// RecordType returns the policy type this record represents
func (p *MotorPolicy) RecordType() string {
	return PolicyTypeMotor
}

// Schema returns the mappable field definitions for motor policies
func (p *MotorPolicy) Schema() map[string]FieldDef {
	return motorSchema
}

// SetField assigns a converted value to the named field via the dispatch table
func (p *MotorPolicy) SetField(name string, value interface{}) error {
	setter, ok := motorSetters[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return setter(p, value)
}

// FieldValue returns the current value of the named field. Unset date fields
// yield nil.
func (p *MotorPolicy) FieldValue(name string) (interface{}, bool) {
	getter, ok := motorGetters[name]
	if !ok {
		return nil, false
	}
	return getter(p), true
}

// FieldIsSet checks whether the named field already carries a non-zero value
func (p *MotorPolicy) FieldIsSet(name string) bool {
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
func (p *MotorPolicy) CopyProtectedFrom(doc *PolicyDocument) {
	p.CustomerCode = doc.CustomerCode
	p.CustomerName = doc.CustomerName
	p.CustomerGroup = doc.CustomerGroupName
	p.InsuranceCompanyBranch = doc.InsuranceCompanyBranch
	p.InsurerName = doc.InsurerName
	p.InsurerCity = doc.InsurerCity
	p.InsurerBranch = doc.InsurerBranch
	p.InsurerBranchCode = doc.InsurerBranchCode
}

// Validate applies the date ordering rule ahead of insert
func (p *MotorPolicy) Validate() error {
	if p.PolicyStartDate != nil && p.PolicyExpiryDate != nil {
		if !p.PolicyStartDate.Before(*p.PolicyExpiryDate) {
			return ErrPolicyDateOrder
		}
	}
	return nil
}

var motorSchema = map[string]FieldDef{
	"customer_code":            {Fieldname: "customer_code", Fieldtype: FieldTypeInt, Label: "Customer Code"},
	"customer_name":            {Fieldname: "customer_name", Fieldtype: FieldTypeData, Label: "Customer Name"},
	"customer_group":           {Fieldname: "customer_group", Fieldtype: FieldTypeData, Label: "Customer Group"},
	"insurance_company_branch": {Fieldname: "insurance_company_branch", Fieldtype: FieldTypeData, Label: "Insurance Company Branch"},
	"insurer_name":             {Fieldname: "insurer_name", Fieldtype: FieldTypeData, Label: "Insurer Name"},
	"insurer_city":             {Fieldname: "insurer_city", Fieldtype: FieldTypeData, Label: "Insurer City"},
	"insurer_branch":           {Fieldname: "insurer_branch", Fieldtype: FieldTypeData, Label: "Insurer Branch"},
	"insurer_branch_code":      {Fieldname: "insurer_branch_code", Fieldtype: FieldTypeInt, Label: "Insurer Branch Code"},

	"policy_no":              {Fieldname: "policy_no", Fieldtype: FieldTypeData, Label: "Policy No"},
	"policy_type":            {Fieldname: "policy_type", Fieldtype: FieldTypeSelect, Label: "Policy Type", Options: []string{"Comprehensive", "Third Party", "Standalone OD", "Package"}},
	"department":             {Fieldname: "department", Fieldtype: FieldTypeSelect, Label: "Department", Options: []string{"Motor", "Health", "Fire", "Marine", "Misc"}},
	"biz_type":               {Fieldname: "biz_type", Fieldtype: FieldTypeSelect, Label: "Business Type", Options: []string{"New", "Renewal"}},
	"coverage_type":          {Fieldname: "coverage_type", Fieldtype: FieldTypeSelect, Label: "Coverage Type", Options: []string{"1+1", "1+3", "1+5"}},
	"customer_vertical":      {Fieldname: "customer_vertical", Fieldtype: FieldTypeData, Label: "Customer Vertical"},
	"new_renewal":            {Fieldname: "new_renewal", Fieldtype: FieldTypeSelect, Label: "New / Renewal", Options: []string{"New", "Renewal", "Rollover"}},
	"is_renewable":           {Fieldname: "is_renewable", Fieldtype: FieldTypeSelect, Label: "Is Renewable", Options: []string{"YES", "NO"}},
	"prev_policy_no":         {Fieldname: "prev_policy_no", Fieldtype: FieldTypeData, Label: "Previous Policy No"},
	"pos_misp_ref":           {Fieldname: "pos_misp_ref", Fieldtype: FieldTypeSelect, Label: "POS / MISP Ref", Options: []string{"Yes", "No"}},
	"policy_status_na":       {Fieldname: "policy_status_na", Fieldtype: FieldTypeData, Label: "Policy Status"},
	"campaign_name":          {Fieldname: "campaign_name", Fieldtype: FieldTypeData, Label: "Campaign Name"},
	"policy_enquiry_remarks": {Fieldname: "policy_enquiry_remarks", Fieldtype: FieldTypeText, Label: "Remarks"},

	"policy_issuance_date": {Fieldname: "policy_issuance_date", Fieldtype: FieldTypeDate, Label: "Policy Issuance Date"},
	"bus_brok_date":        {Fieldname: "bus_brok_date", Fieldtype: FieldTypeDate, Label: "Business Brokerage Date"},
	"policy_start_date":    {Fieldname: "policy_start_date", Fieldtype: FieldTypeDate, Label: "Policy Start Date"},
	"policy_expiry_date":   {Fieldname: "policy_expiry_date", Fieldtype: FieldTypeDate, Label: "Policy Expiry Date"},
	"receive_date":         {Fieldname: "receive_date", Fieldtype: FieldTypeDate, Label: "Policy Received Date"},
	"registration_date":    {Fieldname: "registration_date", Fieldtype: FieldTypeDate, Label: "Registration Date"},

	"vehicle_no":      {Fieldname: "vehicle_no", Fieldtype: FieldTypeData, Label: "Vehicle No"},
	"make":            {Fieldname: "make", Fieldtype: FieldTypeData, Label: "Make"},
	"model":           {Fieldname: "model", Fieldtype: FieldTypeData, Label: "Model"},
	"variant":         {Fieldname: "variant", Fieldtype: FieldTypeData, Label: "Variant"},
	"type_of_vehicle": {Fieldname: "type_of_vehicle", Fieldtype: FieldTypeSelect, Label: "Type of Vehicle", Options: []string{"Private", "Commercial", "Two Wheeler"}},
	"year_of_man":     {Fieldname: "year_of_man", Fieldtype: FieldTypeInt, Label: "Year of Manufacture"},
	"chasis_no":       {Fieldname: "chasis_no", Fieldtype: FieldTypeData, Label: "Chassis No"},
	"engine_no":       {Fieldname: "engine_no", Fieldtype: FieldTypeData, Label: "Engine No"},
	"cc":              {Fieldname: "cc", Fieldtype: FieldTypeData, Label: "CC"},
	"seats":           {Fieldname: "seats", Fieldtype: FieldTypeData, Label: "Seats"},
	"fuel":            {Fieldname: "fuel", Fieldtype: FieldTypeSelect, Label: "Fuel", Options: []string{"Petrol", "Diesel", "CNG", "Electric", "Hybrid"}},
	"rto_code":        {Fieldname: "rto_code", Fieldtype: FieldTypeData, Label: "RTO Code"},
	"category":        {Fieldname: "category", Fieldtype: FieldTypeSelect, Label: "Vehicle Category", Options: []string{"GCV", "PCV", "MISC", "GSV"}},
	"passenger_gvw":   {Fieldname: "passenger_gvw", Fieldtype: FieldTypeData, Label: "Passenger / GVW"},
	"gvw_ton_kg":      {Fieldname: "gvw_ton_kg", Fieldtype: FieldTypeData, Label: "GVW (Ton/Kg)"},
	"no_of_passenger": {Fieldname: "no_of_passenger", Fieldtype: FieldTypeData, Label: "No of Passengers"},
	"ncb":             {Fieldname: "ncb", Fieldtype: FieldTypeInt, Label: "NCB"},
	"odd":             {Fieldname: "odd", Fieldtype: FieldTypeInt, Label: "OD Discount"},

	"sum_insured":     {Fieldname: "sum_insured", Fieldtype: FieldTypeCurrency, Label: "Sum Insured"},
	"net_od_premium":  {Fieldname: "net_od_premium", Fieldtype: FieldTypeCurrency, Label: "Net OD Premium"},
	"prem_rate":       {Fieldname: "prem_rate", Fieldtype: FieldTypeFloat, Label: "Premium Rate"},
	"tp_premium":      {Fieldname: "tp_premium", Fieldtype: FieldTypeCurrency, Label: "TP Premium"},
	"lpod_premium":    {Fieldname: "lpod_premium", Fieldtype: FieldTypeCurrency, Label: "LPOD Premium"},
	"coverage_tp":     {Fieldname: "coverage_tp", Fieldtype: FieldTypeData, Label: "Coverage / TP"},
	"gst":             {Fieldname: "gst", Fieldtype: FieldTypeCurrency, Label: "GST"},
	"stamp_duty":      {Fieldname: "stamp_duty", Fieldtype: FieldTypeCurrency, Label: "Stamp Duty"},
	"payment_mode_1":  {Fieldname: "payment_mode_1", Fieldtype: FieldTypeSelect, Label: "Payment Mode", Options: []string{"Cash", "Cheque", "Online", "DD"}},
	"bank_name":       {Fieldname: "bank_name", Fieldtype: FieldTypeData, Label: "Bank Name"},
	"payment_tran_no": {Fieldname: "payment_tran_no", Fieldtype: FieldTypeData, Label: "Payment Transaction No"},
}

var motorSetters = map[string]func(*MotorPolicy, interface{}) error{
	"customer_code":            func(p *MotorPolicy, v interface{}) error { return setInt(&p.CustomerCode, v) },
	"customer_name":            func(p *MotorPolicy, v interface{}) error { return setString(&p.CustomerName, v) },
	"customer_group":           func(p *MotorPolicy, v interface{}) error { return setString(&p.CustomerGroup, v) },
	"insurance_company_branch": func(p *MotorPolicy, v interface{}) error { return setString(&p.InsuranceCompanyBranch, v) },
	"insurer_name":             func(p *MotorPolicy, v interface{}) error { return setString(&p.InsurerName, v) },
	"insurer_city":             func(p *MotorPolicy, v interface{}) error { return setString(&p.InsurerCity, v) },
	"insurer_branch":           func(p *MotorPolicy, v interface{}) error { return setString(&p.InsurerBranch, v) },
	"insurer_branch_code":      func(p *MotorPolicy, v interface{}) error { return setInt(&p.InsurerBranchCode, v) },

	"policy_no":              func(p *MotorPolicy, v interface{}) error { return setString(&p.PolicyNo, v) },
	"policy_type":            func(p *MotorPolicy, v interface{}) error { return setString(&p.PolicyType, v) },
	"department":             func(p *MotorPolicy, v interface{}) error { return setString(&p.Department, v) },
	"biz_type":               func(p *MotorPolicy, v interface{}) error { return setString(&p.BizType, v) },
	"coverage_type":          func(p *MotorPolicy, v interface{}) error { return setString(&p.CoverageType, v) },
	"customer_vertical":      func(p *MotorPolicy, v interface{}) error { return setString(&p.CustomerVertical, v) },
	"new_renewal":            func(p *MotorPolicy, v interface{}) error { return setString(&p.NewRenewal, v) },
	"is_renewable":           func(p *MotorPolicy, v interface{}) error { return setString(&p.IsRenewable, v) },
	"prev_policy_no":         func(p *MotorPolicy, v interface{}) error { return setString(&p.PrevPolicyNo, v) },
	"pos_misp_ref":           func(p *MotorPolicy, v interface{}) error { return setString(&p.PosMispRef, v) },
	"policy_status_na":       func(p *MotorPolicy, v interface{}) error { return setString(&p.PolicyStatusNa, v) },
	"campaign_name":          func(p *MotorPolicy, v interface{}) error { return setString(&p.CampaignName, v) },
	"policy_enquiry_remarks": func(p *MotorPolicy, v interface{}) error { return setString(&p.PolicyEnquiryRemarks, v) },

	"policy_issuance_date": func(p *MotorPolicy, v interface{}) error { return setDate(&p.PolicyIssuanceDate, v) },
	"bus_brok_date":        func(p *MotorPolicy, v interface{}) error { return setDate(&p.BusBrokDate, v) },
	"policy_start_date":    func(p *MotorPolicy, v interface{}) error { return setDate(&p.PolicyStartDate, v) },
	"policy_expiry_date":   func(p *MotorPolicy, v interface{}) error { return setDate(&p.PolicyExpiryDate, v) },
	"receive_date":         func(p *MotorPolicy, v interface{}) error { return setDate(&p.ReceiveDate, v) },
	"registration_date":    func(p *MotorPolicy, v interface{}) error { return setDate(&p.RegistrationDate, v) },

	"vehicle_no":      func(p *MotorPolicy, v interface{}) error { return setString(&p.VehicleNo, v) },
	"make":            func(p *MotorPolicy, v interface{}) error { return setString(&p.Make, v) },
	"model":           func(p *MotorPolicy, v interface{}) error { return setString(&p.Model, v) },
	"variant":         func(p *MotorPolicy, v interface{}) error { return setString(&p.Variant, v) },
	"type_of_vehicle": func(p *MotorPolicy, v interface{}) error { return setString(&p.TypeOfVehicle, v) },
	"year_of_man":     func(p *MotorPolicy, v interface{}) error { return setInt(&p.YearOfMan, v) },
	"chasis_no":       func(p *MotorPolicy, v interface{}) error { return setString(&p.ChasisNo, v) },
	"engine_no":       func(p *MotorPolicy, v interface{}) error { return setString(&p.EngineNo, v) },
	"cc":              func(p *MotorPolicy, v interface{}) error { return setString(&p.CC, v) },
	"seats":           func(p *MotorPolicy, v interface{}) error { return setString(&p.Seats, v) },
	"fuel":            func(p *MotorPolicy, v interface{}) error { return setString(&p.Fuel, v) },
	"rto_code":        func(p *MotorPolicy, v interface{}) error { return setString(&p.RtoCode, v) },
	"category":        func(p *MotorPolicy, v interface{}) error { return setString(&p.Category, v) },
	"passenger_gvw":   func(p *MotorPolicy, v interface{}) error { return setString(&p.PassengerGVW, v) },
	"gvw_ton_kg":      func(p *MotorPolicy, v interface{}) error { return setString(&p.GvwTonKg, v) },
	"no_of_passenger": func(p *MotorPolicy, v interface{}) error { return setString(&p.NoOfPassenger, v) },
	"ncb":             func(p *MotorPolicy, v interface{}) error { return setInt(&p.NCB, v) },
	"odd":             func(p *MotorPolicy, v interface{}) error { return setInt(&p.ODD, v) },

	"sum_insured":     func(p *MotorPolicy, v interface{}) error { return setFloat(&p.SumInsured, v) },
	"net_od_premium":  func(p *MotorPolicy, v interface{}) error { return setFloat(&p.NetODPremium, v) },
	"prem_rate":       func(p *MotorPolicy, v interface{}) error { return setFloat(&p.PremRate, v) },
	"tp_premium":      func(p *MotorPolicy, v interface{}) error { return setFloat(&p.TPPremium, v) },
	"lpod_premium":    func(p *MotorPolicy, v interface{}) error { return setFloat(&p.LpodPremium, v) },
	"coverage_tp":     func(p *MotorPolicy, v interface{}) error { return setString(&p.CoverageTP, v) },
	"gst":             func(p *MotorPolicy, v interface{}) error { return setFloat(&p.GST, v) },
	"stamp_duty":      func(p *MotorPolicy, v interface{}) error { return setFloat(&p.StampDuty, v) },
	"payment_mode_1":  func(p *MotorPolicy, v interface{}) error { return setString(&p.PaymentMode1, v) },
	"bank_name":       func(p *MotorPolicy, v interface{}) error { return setString(&p.BankName, v) },
	"payment_tran_no": func(p *MotorPolicy, v interface{}) error { return setString(&p.PaymentTranNo, v) },
}

var motorGetters = map[string]func(*MotorPolicy) interface{}{
	"customer_code":            func(p *MotorPolicy) interface{} { return p.CustomerCode },
	"customer_name":            func(p *MotorPolicy) interface{} { return p.CustomerName },
	"customer_group":           func(p *MotorPolicy) interface{} { return p.CustomerGroup },
	"insurance_company_branch": func(p *MotorPolicy) interface{} { return p.InsuranceCompanyBranch },
	"insurer_name":             func(p *MotorPolicy) interface{} { return p.InsurerName },
	"insurer_city":             func(p *MotorPolicy) interface{} { return p.InsurerCity },
	"insurer_branch":           func(p *MotorPolicy) interface{} { return p.InsurerBranch },
	"insurer_branch_code":      func(p *MotorPolicy) interface{} { return p.InsurerBranchCode },

	"policy_no":              func(p *MotorPolicy) interface{} { return p.PolicyNo },
	"policy_type":            func(p *MotorPolicy) interface{} { return p.PolicyType },
	"department":             func(p *MotorPolicy) interface{} { return p.Department },
	"biz_type":               func(p *MotorPolicy) interface{} { return p.BizType },
	"coverage_type":          func(p *MotorPolicy) interface{} { return p.CoverageType },
	"customer_vertical":      func(p *MotorPolicy) interface{} { return p.CustomerVertical },
	"new_renewal":            func(p *MotorPolicy) interface{} { return p.NewRenewal },
	"is_renewable":           func(p *MotorPolicy) interface{} { return p.IsRenewable },
	"prev_policy_no":         func(p *MotorPolicy) interface{} { return p.PrevPolicyNo },
	"pos_misp_ref":           func(p *MotorPolicy) interface{} { return p.PosMispRef },
	"policy_status_na":       func(p *MotorPolicy) interface{} { return p.PolicyStatusNa },
	"campaign_name":          func(p *MotorPolicy) interface{} { return p.CampaignName },
	"policy_enquiry_remarks": func(p *MotorPolicy) interface{} { return p.PolicyEnquiryRemarks },

	"policy_issuance_date": func(p *MotorPolicy) interface{} { return dateValue(p.PolicyIssuanceDate) },
	"bus_brok_date":        func(p *MotorPolicy) interface{} { return dateValue(p.BusBrokDate) },
	"policy_start_date":    func(p *MotorPolicy) interface{} { return dateValue(p.PolicyStartDate) },
	"policy_expiry_date":   func(p *MotorPolicy) interface{} { return dateValue(p.PolicyExpiryDate) },
	"receive_date":         func(p *MotorPolicy) interface{} { return dateValue(p.ReceiveDate) },
	"registration_date":    func(p *MotorPolicy) interface{} { return dateValue(p.RegistrationDate) },

	"vehicle_no":      func(p *MotorPolicy) interface{} { return p.VehicleNo },
	"make":            func(p *MotorPolicy) interface{} { return p.Make },
	"model":           func(p *MotorPolicy) interface{} { return p.Model },
	"variant":         func(p *MotorPolicy) interface{} { return p.Variant },
	"type_of_vehicle": func(p *MotorPolicy) interface{} { return p.TypeOfVehicle },
	"year_of_man":     func(p *MotorPolicy) interface{} { return p.YearOfMan },
	"chasis_no":       func(p *MotorPolicy) interface{} { return p.ChasisNo },
	"engine_no":       func(p *MotorPolicy) interface{} { return p.EngineNo },
	"cc":              func(p *MotorPolicy) interface{} { return p.CC },
	"seats":           func(p *MotorPolicy) interface{} { return p.Seats },
	"fuel":            func(p *MotorPolicy) interface{} { return p.Fuel },
	"rto_code":        func(p *MotorPolicy) interface{} { return p.RtoCode },
	"category":        func(p *MotorPolicy) interface{} { return p.Category },
	"passenger_gvw":   func(p *MotorPolicy) interface{} { return p.PassengerGVW },
	"gvw_ton_kg":      func(p *MotorPolicy) interface{} { return p.GvwTonKg },
	"no_of_passenger": func(p *MotorPolicy) interface{} { return p.NoOfPassenger },
	"ncb":             func(p *MotorPolicy) interface{} { return p.NCB },
	"odd":             func(p *MotorPolicy) interface{} { return p.ODD },

	"sum_insured":     func(p *MotorPolicy) interface{} { return p.SumInsured },
	"net_od_premium":  func(p *MotorPolicy) interface{} { return p.NetODPremium },
	"prem_rate":       func(p *MotorPolicy) interface{} { return p.PremRate },
	"tp_premium":      func(p *MotorPolicy) interface{} { return p.TPPremium },
	"lpod_premium":    func(p *MotorPolicy) interface{} { return p.LpodPremium },
	"coverage_tp":     func(p *MotorPolicy) interface{} { return p.CoverageTP },
	"gst":             func(p *MotorPolicy) interface{} { return p.GST },
	"stamp_duty":      func(p *MotorPolicy) interface{} { return p.StampDuty },
	"payment_mode_1":  func(p *MotorPolicy) interface{} { return p.PaymentMode1 },
	"bank_name":       func(p *MotorPolicy) interface{} { return p.BankName },
	"payment_tran_no": func(p *MotorPolicy) interface{} { return p.PaymentTranNo },
}

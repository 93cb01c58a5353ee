package services

// Default alias tables seeded into the settings row on first use and restored
// by the rebuild operation. Keys are canonical field names, values are the
// document header variants Indian insurers commonly print. Canonical fields
// always self-map on top of these.

var motorDefaultAliases = map[string][]string{
	"policy_no": {
		"policy number", "policy num", "certificate no", "certificate number",
		"policy cum certificate no",
	},
	"vehicle_no": {
		"registration no", "registration number", "vehicle number", "regn no",
		"vehicle registration number",
	},
	"chasis_no": {"chassis no", "chassis number", "chasis number", "frame no"},
	"engine_no": {"engine number", "motor no"},
	"make":      {"vehicle make", "make of vehicle", "manufacturer"},
	"model":     {"vehicle model", "model name"},
	"variant":   {"vehicle variant"},

	"policy_start_date": {
		"start date", "period of insurance from", "insurance start date",
		"risk start date", "from date", "effective date",
	},
	"policy_expiry_date": {
		"expiry date", "end date", "period of insurance to", "risk end date",
		"to date", "valid till", "insurance end date",
	},
	"policy_issuance_date": {"issue date", "issuance date", "date of issue", "policy issue date"},
	"registration_date":    {"date of registration", "regn date"},
	"receive_date":         {"received date", "policy received date"},

	"sum_insured": {
		"idv", "insured declared value", "total idv", "sum assured",
		"total sum insured",
	},
	"net_od_premium": {
		"od premium", "own damage premium", "net premium", "basic od premium",
		"total od premium",
	},
	"tp_premium": {
		"third party premium", "tp liability premium", "total tp premium",
		"liability premium",
	},
	"prem_rate":  {"premium rate"},
	"gst":        {"gst amount", "igst", "tax amount", "service tax"},
	"stamp_duty": {"stamp fee"},
	"ncb":        {"no claim bonus", "ncb percent", "ncb discount"},
	"odd":        {"od discount", "own damage discount"},

	"cc":              {"cubic capacity", "engine capacity", "capacity"},
	"seats":           {"seating capacity", "no of seats", "seat capacity"},
	"fuel":            {"fuel type"},
	"rto_code":        {"rto", "rto location"},
	"year_of_man":     {"year of manufacture", "mfg year", "manufacturing year", "year of mfg"},
	"type_of_vehicle": {"vehicle type", "class of vehicle", "vehicle class"},
	"category":        {"vehicle category"},
	"gvw_ton_kg":      {"gvw", "gross vehicle weight"},
	"no_of_passenger": {"passenger capacity", "licensed carrying capacity"},

	"policy_type":    {"type of policy", "product name", "plan type"},
	"coverage_type":  {"cover type"},
	"customer_name":  {"insured name", "name of insured", "policy holder", "policyholder name"},
	"insurer_name":   {"insurance company", "company name", "insurer"},
	"payment_mode_1": {"payment mode", "mode of payment"},
	"bank_name":      {"bank"},
	"payment_tran_no": {
		"transaction no", "transaction id", "cheque no", "utr no", "receipt no",
	},
	"prev_policy_no":         {"previous policy no", "previous policy number", "prev policy"},
	"biz_type":               {"business type"},
	"policy_enquiry_remarks": {"remarks"},
}

var healthDefaultAliases = map[string][]string{
	"policy_no": {
		"policy number", "policy num", "certificate no", "certificate number",
	},
	"plan_name":   {"product name", "plan", "product", "scheme name"},
	"policy_type": {"type of policy"},
	"coverage_type": {
		"cover basis", "policy basis", "floater or individual",
	},
	"customer_name": {
		"proposer name", "insured name", "name of proposer", "policy holder",
		"policyholder name",
	},
	"customer_title": {"title", "salutation"},

	"policy_start_date": {
		"start date", "period of insurance from", "from date", "effective date",
		"risk start date",
	},
	"policy_expiry_date": {
		"expiry date", "end date", "period of insurance to", "to date",
		"valid till",
	},
	"policy_issuance_date": {"issue date", "issuance date", "date of issue"},

	"sum_insured":     {"sum assured", "total sum insured", "cover amount"},
	"net_od_premium":  {"net premium", "base premium", "basic premium", "premium amount"},
	"gst_tax_percent": {"gst", "gst percent", "tax percent"},
	"stamp_duty":      {"stamp fee"},

	"prev_policy":        {"previous policy no", "previous policy number", "prev policy"},
	"old_control_number": {"old control no"},
	"biz_type":           {"business type"},
	"rm_ce1_code":        {"rm code"},
}

// defaultAliasesFor returns the authored alias table for a policy type
func defaultAliasesFor(policyType string) map[string][]string {
	switch policyType {
	case "Motor":
		return motorDefaultAliases
	case "Health":
		return healthDefaultAliases
	}
	return nil
}

package services

import (
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// Default SAIBA readiness rules seeded on first boot. Positions drive the
// report ordering inside each category.

var motorDefaultRules = []models.ValidationRule{
	{SaibaField: "policyNo", PolicyField: "policy_no", Label: "Policy Number", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 1},
	{SaibaField: "policyType", PolicyField: "policy_type", Label: "Policy Type", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 2},
	{SaibaField: "department", PolicyField: "department", Label: "Department", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 3},
	{SaibaField: "bizType", PolicyField: "biz_type", Label: "Business Type", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 4},
	{SaibaField: "coverageType", PolicyField: "coverage_type", Label: "Coverage Type", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 5},
	{SaibaField: "policyVertical", PolicyField: "customer_vertical", Label: "Policy Vertical", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 6},
	{SaibaField: "newRenewal", PolicyField: "new_renewal", Label: "New / Renewal", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeNewRenew, Position: 7},
	{SaibaField: "isRenewable", PolicyField: "is_renewable", Label: "Is Renewable", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeYesNo, Position: 8},
	{SaibaField: "posPolicy", PolicyField: "pos_misp_ref", Label: "POS / MISP Ref", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 9},
	{SaibaField: "prevPolicy", PolicyField: "prev_policy_no", Label: "Previous Policy", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 10},
	{SaibaField: "campaignName", PolicyField: "campaign_name", Label: "Campaign Name", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 11},
	{SaibaField: "policyStatus", PolicyField: "policy_status_na", Label: "Policy Status", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 12},

	{SaibaField: "custCode", PolicyField: "customer_code", Label: "Customer Code", Category: models.CategoryCustomerInsurer, ValidationType: models.RuleTypeIntegerNonzero, Position: 1},
	{SaibaField: "insBranchCode", PolicyField: "insurer_branch_code", Label: "Insurer Branch Code", Category: models.CategoryCustomerInsurer, ValidationType: models.RuleTypeIntegerNonzero, Position: 2},

	{SaibaField: "vehicleNo", PolicyField: "vehicle_no", Label: "Vehicle Number", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 1},
	{SaibaField: "make", PolicyField: "make", Label: "Make", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 2},
	{SaibaField: "model", PolicyField: "model", Label: "Model", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 3},
	{SaibaField: "variant", PolicyField: "variant", Label: "Variant", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 4},
	{SaibaField: "typeofVehicle", PolicyField: "type_of_vehicle", Label: "Type of Vehicle", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 5},
	{SaibaField: "yearOfMan", PolicyField: "year_of_man", Label: "Year of Manufacture", Category: models.CategoryVehicle, ValidationType: models.RuleTypeIntegerNonzero, Position: 6},
	{SaibaField: "chasisNo", PolicyField: "chasis_no", Label: "Chassis Number", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 7},
	{SaibaField: "engineNo", PolicyField: "engine_no", Label: "Engine Number", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 8},
	{SaibaField: "cc", PolicyField: "cc", Label: "Cubic Capacity", Category: models.CategoryVehicle, ValidationType: models.RuleTypeInteger, Position: 9},
	{SaibaField: "seat", PolicyField: "seats", Label: "Seating Capacity", Category: models.CategoryVehicle, ValidationType: models.RuleTypeInteger, Position: 10},
	{SaibaField: "fuel", PolicyField: "fuel", Label: "Fuel", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 11},
	{SaibaField: "rtoCode", PolicyField: "rto_code", Label: "RTO Code", Category: models.CategoryVehicle, ValidationType: models.RuleTypeString, Position: 12},
	{SaibaField: "vehicleCategory", PolicyField: "category", Label: "Vehicle Category", Category: models.CategoryVehicle, ValidationType: models.RuleTypeGcvPcvMisc, Position: 13},

	{SaibaField: "sumInsured", PolicyField: "sum_insured", Label: "Sum Insured", Category: models.CategoryFinancial, ValidationType: models.RuleTypeIntegerPositive, Position: 1},
	{SaibaField: "netODPremium", PolicyField: "net_od_premium", Label: "Net OD Premium", Category: models.CategoryFinancial, ValidationType: models.RuleTypeInteger, Position: 2},
	{SaibaField: "tpPremium", PolicyField: "tp_premium", Label: "TP Premium", Category: models.CategoryFinancial, ValidationType: models.RuleTypeInteger, Position: 3},
	{SaibaField: "gst", PolicyField: "gst", Label: "GST", Category: models.CategoryFinancial, ValidationType: models.RuleTypeInteger, Position: 4},
	{SaibaField: "stampDuty", PolicyField: "stamp_duty", Label: "Stamp Duty", Category: models.CategoryFinancial, ValidationType: models.RuleTypeInteger, Position: 5},
	{SaibaField: "ncb", PolicyField: "ncb", Label: "NCB", Category: models.CategoryFinancial, ValidationType: models.RuleTypeInteger, Position: 6},
	{SaibaField: "paymentMode", PolicyField: "payment_mode_1", Label: "Payment Mode", Category: models.CategoryFinancial, ValidationType: models.RuleTypeString, Position: 7},

	{SaibaField: "issuenceDate", PolicyField: "policy_issuance_date", Label: "Issuance Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 1},
	{SaibaField: "busBrokDate", PolicyField: "bus_brok_date", Label: "Business Brokerage Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 2},
	{SaibaField: "startDate", PolicyField: "policy_start_date", Label: "Policy Start Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 3},
	{SaibaField: "expiryDate", PolicyField: "policy_expiry_date", Label: "Policy Expiry Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 4},
	{SaibaField: "policyReceivedDate", PolicyField: "receive_date", Label: "Policy Received Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 5},
	{SaibaField: "registrationDate", PolicyField: "registration_date", Label: "Registration Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 6},
}

var healthDefaultRules = []models.ValidationRule{
	{SaibaField: "policyNo", PolicyField: "policy_no", Label: "Policy Number", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 1},
	{SaibaField: "policyType", PolicyField: "policy_type", Label: "Policy Type", Category: models.CategoryPolicyInfo, ValidationType: models.RuleTypeString, Position: 2},
	{SaibaField: "custCode", PolicyField: "customer_code", Label: "Customer Code", Category: models.CategoryCustomerInsurer, ValidationType: models.RuleTypeIntegerNonzero, Position: 1},
	{SaibaField: "insured1Name", PolicyField: "insured_1_name", Label: "Primary Insured Name", Category: models.CategoryInsuredPersons, ValidationType: models.RuleTypeString, Position: 1},
	{SaibaField: "sumInsured", PolicyField: "sum_insured", Label: "Sum Insured", Category: models.CategoryFinancial, ValidationType: models.RuleTypeIntegerPositive, Position: 1},
	{SaibaField: "issuenceDate", PolicyField: "policy_issuance_date", Label: "Issuance Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 1},
	{SaibaField: "startDate", PolicyField: "policy_start_date", Label: "Policy Start Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 2},
	{SaibaField: "expiryDate", PolicyField: "policy_expiry_date", Label: "Policy Expiry Date", Category: models.CategoryDates, ValidationType: models.RuleTypeDate, Position: 3},
}

// defaultRulesFor returns the seed rule set for a policy type
func defaultRulesFor(policyType string) []models.ValidationRule {
	switch policyType {
	case models.PolicyTypeMotor:
		return motorDefaultRules
	case models.PolicyTypeHealth:
		return healthDefaultRules
	}
	return nil
}

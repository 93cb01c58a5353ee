package services

import (
	"fmt"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// saibaDateFormat is the date layout SAIBA entry endpoints accept
const saibaDateFormat = "02-01-2006"

// BuildMotorSaibaPayload maps a motor policy onto the MotorPolicyEntryS
// request body. Key names, coercions and defaults follow what the endpoint
// accepts, including the "coverangeOrTP" spelling.
func BuildMotorSaibaPayload(p *models.MotorPolicy) map[string]interface{} {
	return map[string]interface{}{
		"custCode":             p.CustomerCode,
		"posPolicy":            strOrDefault(p.PosMispRef, "No"),
		"bizType":              strOrDefault(p.BizType, "New"),
		"insBranchCode":        p.InsurerBranchCode,
		"issuenceDate":         saibaDate(p.PolicyIssuanceDate),
		"busBrokDate":          saibaDateOr(p.BusBrokDate, p.PolicyIssuanceDate),
		"startDate":            saibaDate(p.PolicyStartDate),
		"expiryDate":           saibaDate(p.PolicyExpiryDate),
		"policyReceivedDate":   saibaDate(p.ReceiveDate),
		"policyReceivedFormat": "Recd in Hard Copy",
		"policyType":           p.PolicyType,
		"department":           p.Department,
		"coverageType":         strOrDefault(p.CoverageType, "1+1"),
		"policyVertical":       p.CustomerVertical,
		"policyNo":             p.PolicyNo,
		"isRenewable":          yesNo(p.IsRenewable == "YES"),
		"newRenewal":           strOrDefault(p.NewRenewal, "New"),
		"prevPolicy":           strOrDefault(p.PrevPolicyNo, "No"),
		"vehicleNo":            p.VehicleNo,
		"make":                 p.Make,
		"model":                p.Model,
		"variant":              p.Variant,
		"registrationDate":     saibaDateOr(p.RegistrationDate, p.PolicyStartDate),
		"typeofVehicle":        strOrDefault(p.TypeOfVehicle, "Private"),
		"yearOfMan":            p.YearOfMan,
		"chasisNo":             p.ChasisNo,
		"engineNo":             p.EngineNo,
		"cc":                   p.CC,
		"seat":                 p.Seats,
		"fuel":                 p.Fuel,
		"rtoCode":              p.RtoCode,
		"ncb":                  p.NCB,
		"odd":                  p.ODD,
		"vehicleCategory":      strOrDefault(p.Category, "PCV"),
		"passengerGVW":         p.PassengerGVW,
		"gvw":                  p.GvwTonKg,
		"noOfPassenger":        p.NoOfPassenger,
		"sumInsured":           int(p.SumInsured),
		"netODPremium":         int(p.NetODPremium),
		"premRate":             int(p.PremRate),
		"tpPremium":            int(p.TPPremium),
		"lpodPremium":          int(p.LpodPremium),
		"coverangeOrTP":        p.CoverageTP,
		"gst":                  int(p.GST),
		"stampDuty":            int(p.StampDuty),
		"paymentMode":          p.PaymentMode1,
		"bankName":             p.BankName,
		"paymentTranNo":        p.PaymentTranNo,
		"campaignName":         strOrDefault(p.CampaignName, "No Campaign"),
		"remarks":              p.PolicyEnquiryRemarks,
		"policyStatus":         strOrDefault(p.PolicyStatusNa, "NA"),
	}
}

// BuildHealthSaibaPayload maps a health policy onto the HealthPolicyEntryS
// request body, including the five numbered insured member slots
func BuildHealthSaibaPayload(p *models.HealthPolicy) map[string]interface{} {
	gst := int(p.GstTaxPercent)
	if gst == 0 {
		gst = 18
	}

	payload := map[string]interface{}{
		"custCode":       p.CustomerCode,
		"posPolicy":      strOrDefault(p.PosPolicy, "No"),
		"bizType":        strOrDefault(p.BizType, "New"),
		"insBranchCode":  p.InsurerBranchCode,
		"issuenceDate":   saibaDate(p.PolicyIssuanceDate),
		"startDate":      saibaDate(p.PolicyStartDate),
		"expiryDate":     saibaDate(p.PolicyExpiryDate),
		"policyType":     p.PolicyType,
		"policyNo":       p.PolicyNo,
		"planName":       p.PlanName,
		"isRenewable":    yesNo(p.IsRenewable == "Yes"),
		"coverageType":   p.CoverageType,
		"policyVertical": p.PolicyVertical,
		"prevPolicy":     yesNo(p.PrevPolicy != ""),
		"sumInsured":     int(p.SumInsured),
		"netODPremium":   int(p.NetODPremium),
		"gst":            gst,
		"stampDuty":      int(p.StampDuty),
		"paymentMode":    "Online",
		"bankName":       "",
		"paymentTranNo":  "",
		"campaignName":   "No Campaign",
		"remarks":        p.Remarks,
		"policyStatus":   "NA",
	}

	members := []struct {
		name     string
		gender   string
		dob      *time.Time
		relation string
	}{
		{p.Insured1Name, p.Insured1Gender, p.Insured1DOB, p.Insured1Relation},
		{p.Insured2Name, p.Insured2Gender, p.Insured2DOB, p.Insured2Relation},
		{p.Insured3Name, p.Insured3Gender, p.Insured3DOB, p.Insured3Relation},
		{p.Insured4Name, p.Insured4Gender, p.Insured4DOB, p.Insured4Relation},
		{p.Insured5Name, p.Insured5Gender, p.Insured5DOB, p.Insured5Relation},
	}
	for i, m := range members {
		n := i + 1
		payload[fmt.Sprintf("insured%dName", n)] = m.name
		payload[fmt.Sprintf("insured%dGender", n)] = m.gender
		payload[fmt.Sprintf("insured%dRelation", n)] = m.relation
		payload[fmt.Sprintf("insured%dDOB", n)] = saibaDate(m.dob)
	}
	return payload
}

// FilterPayloadToRequired trims a payload down to the SAIBA fields named by
// required validation rules. With no rules to filter by the payload passes
// through whole.
func FilterPayloadToRequired(payload map[string]interface{}, rules []*models.ValidationRule) map[string]interface{} {
	required := make(map[string]bool)
	for _, rule := range rules {
		if rule.IsRequired {
			required[rule.SaibaField] = true
		}
	}
	if len(required) == 0 {
		return payload
	}

	filtered := make(map[string]interface{}, len(required))
	for key, value := range payload {
		if required[key] {
			filtered[key] = value
		}
	}
	return filtered
}

func saibaDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(saibaDateFormat)
}

func saibaDateOr(t, fallback *time.Time) string {
	if t != nil {
		return t.Format(saibaDateFormat)
	}
	return saibaDate(fallback)
}

func strOrDefault(s, def string) string {
	if s != "" {
		return s
	}
	return def
}

func yesNo(yes bool) string {
	if yes {
		return "Yes"
	}
	return "No"
}

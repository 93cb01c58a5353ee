package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

const (
	// Aliases shown per field before collapsing to "(and N more)"
	maxAliasesPerField = 5

	// Fallback field lists used when the alias registry is unavailable
	fallbackMotorFields  = "PolicyNumber, VehicleNumber, ChasisNo, EngineNo, Make, Model, PolicyStartDate, PolicyExpiryDate, SumInsured, NetODPremium, TPPremium, GST, NCB"
	fallbackHealthFields = "PolicyNumber, InsuredName, PolicyStartDate, PolicyExpiryDate, SumInsured, Premium, GST, NCB"
)

type promptBuilderService struct {
	registry  AliasRegistryService
	logger    *logger.Logger
	textLimit int
}

// NewPromptBuilderService creates a new prompt builder. textLimit caps the
// amount of policy text embedded in a prompt before truncation.
func NewPromptBuilderService(registry AliasRegistryService, log *logger.Logger, textLimit int) PromptBuilderService {
	if textLimit <= 0 {
		textLimit = 200000
	}
	return &promptBuilderService{
		registry:  registry,
		logger:    log,
		textLimit: textLimit,
	}
}

// BuildExtractionPrompt assembles the text extraction prompt for a policy
// type: the canonical field list, the alias variations to look for, the
// extraction rules and the policy text itself. Falls back to a static prompt
// when the alias registry cannot be read.
func (s *promptBuilderService) BuildExtractionPrompt(ctx context.Context, policyType, text string) string {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return s.fallbackPrompt(policyType, text)
	}

	mapping, err := s.registry.GetAliasMap(ctx, canonicalType)
	if err != nil {
		s.logger.WithError(err).WithField("policy_type", canonicalType).
			Warn("Alias map unavailable, using fallback extraction prompt")
		return s.fallbackPrompt(canonicalType, text)
	}

	required := CanonicalFieldsOf(mapping)
	requiredLines := make([]string, len(required))
	for i, field := range required {
		requiredLines[i] = "- " + field
	}

	aliasSection := s.buildAliasSection(mapping, required)

	return fmt.Sprintf(`Extract the following fields from the %s insurance policy text as a flat JSON object.

REQUIRED FIELDS TO EXTRACT:
%s

FIELD ALIASES (look for these variations):
%s

EXTRACTION RULES:
1. Return ONLY valid flat JSON (no nested objects)
2. Use exact field names as keys (from required fields list)
3. Dates: DD/MM/YYYY format only
4. Currency/Amounts: Extract numeric value only, remove currency symbols and commas
5. Text: Extract exact text as it appears
6. Numbers: Extract as strings unless specified otherwise
7. If a field is not found, use null
8. No explanations, no markdown, no code blocks

POLICY TEXT:
%s

RESPOND WITH VALID FLAT JSON ONLY - NO EXPLANATIONS, NO MARKDOWN, NO CODE BLOCKS.`,
		strings.ToLower(canonicalType),
		strings.Join(requiredLines, "\n"),
		aliasSection,
		s.truncateText(text))
}

// BuildVisionPrompt assembles the prompt sent alongside a PDF document
// block. It lists the canonical fields and, for health policies, instructs
// the model how to read the insured persons table.
func (s *promptBuilderService) BuildVisionPrompt(ctx context.Context, policyType string) string {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return s.fallbackPrompt(policyType, "")
	}

	mapping, err := s.registry.GetAliasMap(ctx, canonicalType)
	if err != nil {
		s.logger.WithError(err).WithField("policy_type", canonicalType).
			Warn("Alias map unavailable, using fallback vision prompt")
		return s.fallbackPrompt(canonicalType, "")
	}

	required := CanonicalFieldsOf(mapping)
	requiredLines := make([]string, len(required))
	for i, field := range required {
		requiredLines[i] = "- " + field
	}

	var insuredBlock string
	if canonicalType == models.PolicyTypeHealth {
		insuredBlock = `

INSURED PERSONS TABLE EXTRACTION:
The policy lists insured persons in a table. For each row (up to 5 members), extract:
- insured_{row}_name
- insured_{row}_gender
- insured_{row}_dob
- insured_{row}_relation
Number the rows from 1 in table order. Leave fields for missing rows as null.`
	}

	return fmt.Sprintf(`Analyze this %s insurance policy PDF and extract the required fields as a flat JSON object.

Required fields to extract:
%s%s

EXTRACTION RULES:
1. Return ONLY valid flat JSON (no nested objects)
2. Use exact field names as keys (from required fields list)
3. Dates: DD/MM/YYYY format only
4. Currency/Amounts: Extract numeric value only, remove currency symbols and commas
5. Text: Extract exact text as it appears
6. Numbers: Extract as strings unless specified otherwise
7. If a field is not found, use null
8. No explanations, no markdown, no code blocks

RESPOND WITH VALID FLAT JSON ONLY - NO EXPLANATIONS, NO MARKDOWN, NO CODE BLOCKS.`,
		strings.ToLower(canonicalType),
		strings.Join(requiredLines, "\n"),
		insuredBlock)
}

// buildAliasSection renders one line per field that has aliases, capped at
// maxAliasesPerField shown variants
func (s *promptBuilderService) buildAliasSection(mapping models.AliasMap, required []string) string {
	reverse := ReverseAliasIndex(mapping)

	var lines []string
	for _, field := range required {
		aliases := reverse[field]
		if len(aliases) == 0 {
			continue
		}
		if len(aliases) > maxAliasesPerField {
			hidden := len(aliases) - maxAliasesPerField
			lines = append(lines, fmt.Sprintf("- %s: %s (and %d more)",
				field, strings.Join(aliases[:maxAliasesPerField], ", "), hidden))
		} else {
			lines = append(lines, fmt.Sprintf("- %s: %s", field, strings.Join(aliases, ", ")))
		}
	}
	if len(lines) == 0 {
		return "No aliases defined"
	}
	return strings.Join(lines, "\n")
}

func (s *promptBuilderService) truncateText(text string) string {
	if len(text) <= s.textLimit {
		return text
	}
	return text[:s.textLimit] + "\n... [truncated]"
}

// fallbackPrompt is the static prompt used when the registry is unreachable
// or the policy type is unknown
func (s *promptBuilderService) fallbackPrompt(policyType, text string) string {
	var fields string
	switch policyType {
	case models.PolicyTypeMotor:
		fields = fallbackMotorFields
	case models.PolicyTypeHealth:
		fields = fallbackHealthFields
	default:
		fields = "PolicyNumber, PolicyStartDate, PolicyExpiryDate, SumInsured, Premium"
	}

	prompt := fmt.Sprintf(`Extract insurance policy fields from this document as a flat JSON object.

Focus on these fields: %s

Dates must use DD/MM/YYYY format. Amounts must be numeric values without currency symbols or commas. If a field is not found, use null.

RESPOND WITH VALID FLAT JSON ONLY - NO EXPLANATIONS, NO MARKDOWN, NO CODE BLOCKS.`, fields)

	if text != "" {
		prompt += "\n\nPOLICY TEXT:\n" + s.truncateText(text)
	}
	return prompt
}

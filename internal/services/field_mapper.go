package services

import (
	"context"
	"sort"
	"strings"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
)

// FieldMappingResult summarizes one mapping run over an extraction payload.
// Every non-empty extracted entry is accounted for exactly once: mapped,
// unmapped, or skipped because it targets a protected field that already
// holds a value.
type FieldMappingResult struct {
	MappedCount      int                 `json:"mapped_count"`
	UnmappedFields   []string            `json:"unmapped_fields,omitempty"`
	Suggestions      map[string][]string `json:"suggestions,omitempty"`
	ProtectedSkipped []string            `json:"protected_skipped,omitempty"`
}

type fieldMappingService struct {
	registry  AliasRegistryService
	converter *ValueConverter
	logger    *logger.Logger
}

// NewFieldMappingService creates a new field mapping service
func NewFieldMappingService(registry AliasRegistryService, converter *ValueConverter, log *logger.Logger) FieldMappingService {
	return &fieldMappingService{
		registry:  registry,
		converter: converter,
		logger:    log,
	}
}

// MapFields resolves every extracted key through the alias map for the
// record's policy type, converts the value to the field's declared type and
// assigns it. Keys are processed in sorted order so repeated runs over the
// same payload produce the same record.
func (s *fieldMappingService) MapFields(ctx context.Context, record models.PolicyRecord, extracted map[string]interface{}) (*FieldMappingResult, error) {
	mapping, err := s.registry.GetAliasMap(ctx, record.RecordType())
	if err != nil {
		return nil, err
	}

	index := BuildNormalizedIndex(mapping)
	canonicals := CanonicalFieldsOf(mapping)
	schema := record.Schema()
	protected := make(map[string]bool)
	for _, name := range models.ProtectedFields() {
		protected[name] = true
	}

	rawKeys := make([]string, 0, len(extracted))
	for k := range extracted {
		rawKeys = append(rawKeys, k)
	}
	sort.Strings(rawKeys)

	result := &FieldMappingResult{Suggestions: make(map[string][]string)}
	for _, rawKey := range rawKeys {
		rawValue := extracted[rawKey]
		if rawValue == nil {
			continue
		}
		if str, ok := rawValue.(string); ok && strings.TrimSpace(str) == "" {
			continue
		}

		canonical, found := index[rawKey]
		if !found {
			canonical, found = index[NormalizeKey(rawKey)]
		}
		if !found {
			result.UnmappedFields = append(result.UnmappedFields, rawKey)
			if suggestions := SuggestCanonicalFields(rawKey, canonicals, 3); len(suggestions) > 0 {
				result.Suggestions[rawKey] = suggestions
			}
			continue
		}

		if protected[canonical] && record.FieldIsSet(canonical) {
			result.ProtectedSkipped = append(result.ProtectedSkipped, canonical)
			continue
		}

		def, known := schema[canonical]
		if !known {
			// Alias map entry pointing at a field this record type does not carry
			result.UnmappedFields = append(result.UnmappedFields, rawKey)
			continue
		}

		converted := s.converter.Convert(def, rawValue)
		if converted == nil {
			result.UnmappedFields = append(result.UnmappedFields, rawKey)
			continue
		}
		if err := record.SetField(canonical, converted); err != nil {
			s.logger.WithError(err).WithField("policy_type", record.RecordType()).
				WithField("field", canonical).Warn("Failed to assign converted value")
			result.UnmappedFields = append(result.UnmappedFields, rawKey)
			continue
		}
		result.MappedCount++
	}

	if len(result.Suggestions) == 0 {
		result.Suggestions = nil
	}
	return result, nil
}

// SuggestCanonicalFields scores every canonical field against an unresolved
// key and returns the closest matches, best first. Exact normalized match
// scores 100, one name containing the other scores 80, and a character set
// overlap above 0.6 scores 60. Ties resolve alphabetically.
func SuggestCanonicalFields(rawKey string, canonicalFields []string, limit int) []string {
	norm := NormalizeKey(rawKey)
	if norm == "" {
		return nil
	}

	type scoredField struct {
		field string
		score int
	}
	var matches []scoredField
	for _, field := range canonicalFields {
		fieldNorm := NormalizeKey(field)
		score := 0
		switch {
		case fieldNorm == norm:
			score = 100
		case strings.Contains(fieldNorm, norm) || strings.Contains(norm, fieldNorm):
			score = 80
		default:
			if charSetSimilarity(norm, fieldNorm) > 0.6 {
				score = 60
			}
		}
		if score > 0 {
			matches = append(matches, scoredField{field: field, score: score})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].field < matches[j].field
	})

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	suggestions := make([]string, len(matches))
	for i, m := range matches {
		suggestions[i] = m.field
	}
	return suggestions
}

// charSetSimilarity computes the Jaccard similarity of the character sets of
// two strings
func charSetSimilarity(a, b string) float64 {
	setA := make(map[rune]bool)
	for _, r := range a {
		setA[r] = true
	}
	setB := make(map[rune]bool)
	for _, r := range b {
		setB[r] = true
	}

	intersection := 0
	for r := range setA {
		if setB[r] {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

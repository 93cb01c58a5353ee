package services

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/logger"
	"github.com/BusinessThatWorks/Salasar/internal/models"
	"github.com/BusinessThatWorks/Salasar/internal/repositories"
)

// Alias registry errors
var (
	ErrUnsupportedPolicyType = fmt.Errorf("unsupported policy type")
	ErrUnknownCanonicalField = fmt.Errorf("unknown canonical field")
	ErrMalformedAliasPayload = fmt.Errorf("malformed alias payload")
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// NormalizeKey lowercases a raw field label and collapses every run of
// non-alphanumeric characters into a single space. The result is trimmed, so
// "Policy No." and "policy_no" both normalize to "policy no". Normalizing an
// already-normalized key returns it unchanged.
func NormalizeKey(raw string) string {
	s := strings.ToLower(raw)
	s = nonAlphanumeric.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// BuildNormalizedIndex indexes an alias map under both the stored keys and
// their normalized forms, so lookups succeed whether the caller holds a
// canonical name or a raw document label. Stored keys win over derived ones,
// and ties between derived keys resolve in sorted key order.
func BuildNormalizedIndex(mapping models.AliasMap) map[string]string {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	index := make(map[string]string, len(mapping)*2)
	for _, alias := range keys {
		index[alias] = mapping[alias]
	}
	for _, alias := range keys {
		norm := NormalizeKey(alias)
		if norm == "" {
			continue
		}
		if _, exists := index[norm]; !exists {
			index[norm] = mapping[alias]
		}
	}
	return index
}

// CanonicalFieldsOf returns the sorted canonical field names of a mapping,
// the keys that map to themselves.
func CanonicalFieldsOf(mapping models.AliasMap) []string {
	fields := make([]string, 0, len(mapping))
	for alias, canonical := range mapping {
		if alias == canonical {
			fields = append(fields, canonical)
		}
	}
	sort.Strings(fields)
	return fields
}

// ReverseAliasIndex groups a mapping by canonical field, with the aliases of
// each field sorted. Self-mappings are not listed as aliases.
func ReverseAliasIndex(mapping models.AliasMap) map[string][]string {
	index := make(map[string][]string)
	for alias, canonical := range mapping {
		if alias == canonical {
			if _, exists := index[canonical]; !exists {
				index[canonical] = []string{}
			}
			continue
		}
		index[canonical] = append(index[canonical], alias)
	}
	for canonical := range index {
		sort.Strings(index[canonical])
	}
	return index
}

// buildDefaultAliasMap assembles the default mapping for a policy type: every
// schema field self-maps, then the authored alias table layers on top.
func buildDefaultAliasMap(policyType string) (models.AliasMap, bool) {
	schema, ok := models.SchemaFor(policyType)
	if !ok {
		return nil, false
	}

	mapping := make(models.AliasMap, len(schema)*3)
	for fieldname := range schema {
		mapping[fieldname] = fieldname
	}
	for canonical, aliases := range defaultAliasesFor(policyType) {
		if _, known := schema[canonical]; !known {
			continue
		}
		for _, alias := range aliases {
			norm := NormalizeKey(alias)
			if norm == "" {
				continue
			}
			mapping[norm] = canonical
		}
	}
	return mapping, true
}

type aliasRegistryService struct {
	settingsRepo repositories.SettingsRepository
	cache        *CacheService
	logger       *logger.Logger
	cacheTTL     time.Duration
}

// NewAliasRegistryService creates a new alias registry backed by the settings
// repository, with an optional Redis cache in front of it
func NewAliasRegistryService(settingsRepo repositories.SettingsRepository, cache *CacheService, log *logger.Logger, cacheTTL time.Duration) AliasRegistryService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &aliasRegistryService{
		settingsRepo: settingsRepo,
		cache:        cache,
		logger:       log,
		cacheTTL:     cacheTTL,
	}
}

func (s *aliasRegistryService) GetAliasMap(ctx context.Context, policyType string) (models.AliasMap, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}

	cacheKey := BuildAliasMapKey(canonicalType)
	if s.cache != nil {
		var cached models.AliasMap
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil && len(cached) > 0 {
			return cached, nil
		}
	}

	settings, err := s.settingsRepo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load reader settings: %w", err)
	}

	mapping := settings.AliasMapFor(canonicalType)
	if len(mapping) == 0 {
		// First use for this policy type, seed and persist the defaults
		return s.RebuildDefaults(ctx, canonicalType)
	}

	s.cacheAliasMap(ctx, cacheKey, mapping)
	return mapping, nil
}

func (s *aliasRegistryService) Resolve(ctx context.Context, policyType, rawKey string) (string, bool, error) {
	mapping, err := s.GetAliasMap(ctx, policyType)
	if err != nil {
		return "", false, err
	}

	index := BuildNormalizedIndex(mapping)
	if canonical, found := index[rawKey]; found {
		return canonical, true, nil
	}
	if canonical, found := index[NormalizeKey(rawKey)]; found {
		return canonical, true, nil
	}
	return "", false, nil
}

func (s *aliasRegistryService) AddAlias(ctx context.Context, policyType, alias, canonical string) error {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}
	schema, _ := models.SchemaFor(canonicalType)
	if _, known := schema[canonical]; !known {
		return fmt.Errorf("%w: %s", ErrUnknownCanonicalField, canonical)
	}
	norm := NormalizeKey(alias)
	if norm == "" {
		return fmt.Errorf("%w: alias %q normalizes to nothing", ErrMalformedAliasPayload, alias)
	}

	mapping, err := s.GetAliasMap(ctx, canonicalType)
	if err != nil {
		return err
	}
	if mapping[norm] == canonical {
		return nil
	}

	updated := mapping.Clone()
	updated[canonical] = canonical
	updated[norm] = canonical
	if err := s.persistAliasMap(ctx, canonicalType, updated); err != nil {
		return err
	}

	s.logger.WithPolicyType(canonicalType).WithField("alias", norm).
		WithField("canonical", canonical).Info("Alias added")
	return nil
}

func (s *aliasRegistryService) BulkAddAliases(ctx context.Context, policyType string, payload map[string]interface{}) (int, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}
	if len(payload) == 0 {
		return 0, nil
	}
	schema, _ := models.SchemaFor(canonicalType)

	mapping, err := s.GetAliasMap(ctx, canonicalType)
	if err != nil {
		return 0, err
	}
	updated := mapping.Clone()

	added := 0
	if payloadIsCanonicalKeyed(payload) {
		// {canonical: [alias, ...]} form
		for canonical, raw := range payload {
			if _, known := schema[canonical]; !known {
				return 0, fmt.Errorf("%w: %s", ErrUnknownCanonicalField, canonical)
			}
			aliases, ok := raw.([]interface{})
			if !ok {
				return 0, fmt.Errorf("%w: value for %q is %T, expected a list", ErrMalformedAliasPayload, canonical, raw)
			}
			updated[canonical] = canonical
			for _, entry := range aliases {
				alias, ok := entry.(string)
				if !ok {
					return 0, fmt.Errorf("%w: alias for %q is %T, expected a string", ErrMalformedAliasPayload, canonical, entry)
				}
				norm := NormalizeKey(alias)
				if norm == "" {
					continue
				}
				if updated[norm] != canonical {
					updated[norm] = canonical
					added++
				}
			}
		}
	} else {
		// {alias: canonical} form
		for alias, raw := range payload {
			canonical, ok := raw.(string)
			if !ok {
				return 0, fmt.Errorf("%w: value for %q is %T, expected a string", ErrMalformedAliasPayload, alias, raw)
			}
			if _, known := schema[canonical]; !known {
				return 0, fmt.Errorf("%w: %s", ErrUnknownCanonicalField, canonical)
			}
			norm := NormalizeKey(alias)
			if norm == "" {
				continue
			}
			updated[canonical] = canonical
			if updated[norm] != canonical {
				updated[norm] = canonical
				added++
			}
		}
	}

	if added == 0 {
		return 0, nil
	}
	if err := s.persistAliasMap(ctx, canonicalType, updated); err != nil {
		return 0, err
	}

	s.logger.WithPolicyType(canonicalType).WithField("added", added).Info("Aliases bulk added")
	return added, nil
}

func (s *aliasRegistryService) ListAliases(ctx context.Context, policyType string) (map[string][]string, error) {
	mapping, err := s.GetAliasMap(ctx, policyType)
	if err != nil {
		return nil, err
	}
	return ReverseAliasIndex(mapping), nil
}

func (s *aliasRegistryService) RebuildDefaults(ctx context.Context, policyType string) (models.AliasMap, error) {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}

	mapping, _ := buildDefaultAliasMap(canonicalType)
	if err := s.persistAliasMap(ctx, canonicalType, mapping); err != nil {
		return nil, err
	}

	s.logger.WithPolicyType(canonicalType).WithField("entries", len(mapping)).
		Info("Alias map rebuilt from defaults")
	return mapping, nil
}

func (s *aliasRegistryService) CanonicalFields(ctx context.Context, policyType string) ([]string, error) {
	mapping, err := s.GetAliasMap(ctx, policyType)
	if err != nil {
		return nil, err
	}
	return CanonicalFieldsOf(mapping), nil
}

func (s *aliasRegistryService) InvalidateCache(ctx context.Context, policyType string) error {
	canonicalType, ok := models.CanonicalPolicyType(policyType)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedPolicyType, policyType)
	}
	if s.cache == nil {
		return nil
	}
	return s.cache.Delete(ctx, BuildAliasMapKey(canonicalType))
}

// persistAliasMap writes the mapping through the settings repository and
// refreshes the cache entry
func (s *aliasRegistryService) persistAliasMap(ctx context.Context, canonicalType string, mapping models.AliasMap) error {
	if err := s.settingsRepo.UpdateAliasMap(ctx, canonicalType, mapping); err != nil {
		return fmt.Errorf("failed to persist alias map: %w", err)
	}
	s.cacheAliasMap(ctx, BuildAliasMapKey(canonicalType), mapping)
	return nil
}

func (s *aliasRegistryService) cacheAliasMap(ctx context.Context, cacheKey string, mapping models.AliasMap) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetWithTags(ctx, cacheKey, mapping, s.cacheTTL, []string{TagAliasMap}); err != nil {
		s.logger.WithError(err).Warn("Failed to cache alias map")
	}
}

// payloadIsCanonicalKeyed reports whether a bulk payload uses the
// {canonical: [aliases]} form, detected from its first list-valued entry
func payloadIsCanonicalKeyed(payload map[string]interface{}) bool {
	for _, v := range payload {
		switch v.(type) {
		case []interface{}:
			return true
		case string:
			return false
		}
	}
	return false
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/BusinessThatWorks/Salasar/internal/config"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCacheTestClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use test database
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skip("Redis not available, skipping cache tests")
	}

	return client
}

func TestCacheKeyBuilders(t *testing.T) {
	assert.Equal(t, "alias_map:Motor", BuildAliasMapKey("Motor"))
	assert.Equal(t, "saiba:token", BuildSaibaTokenKey())
	assert.Equal(t, "document:status:doc-1", BuildDocumentStatusKey("doc-1"))
	assert.Equal(t, "validation:Health:pol-9", BuildValidationReportKey("Health", "pol-9"))
}

func TestCacheServiceBasicOperations(t *testing.T) {
	client := newCacheTestClient(t)
	ctx := context.Background()
	defer client.FlushDB(ctx)

	cache := NewCacheService(client, &config.Config{})

	aliasMap := map[string]interface{}{
		"policy number":  "policy_no",
		"insurer name":   "insurance_company",
		"vehicle number": "vehicle_no",
	}

	key := BuildAliasMapKey("Motor")
	err := cache.Set(ctx, key, aliasMap, 5*time.Minute)
	require.NoError(t, err)

	exists, err := cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	var retrieved map[string]interface{}
	err = cache.Get(ctx, key, &retrieved)
	require.NoError(t, err)
	assert.Equal(t, "policy_no", retrieved["policy number"])
	assert.Equal(t, "vehicle_no", retrieved["vehicle number"])

	// Cache miss
	var missData map[string]interface{}
	err = cache.Get(ctx, BuildAliasMapKey("Health"), &missData)
	assert.Equal(t, ErrCacheMiss, err)

	err = cache.Delete(ctx, key)
	require.NoError(t, err)

	err = cache.Get(ctx, key, &retrieved)
	assert.Equal(t, ErrCacheMiss, err)

	exists, err = cache.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCacheServiceWithTags(t *testing.T) {
	client := newCacheTestClient(t)
	ctx := context.Background()
	defer client.FlushDB(ctx)

	cache := NewCacheService(client, &config.Config{})

	err := cache.SetWithTags(ctx, BuildAliasMapKey("Motor"), "motor aliases", 5*time.Minute, []string{TagAliasMap})
	require.NoError(t, err)

	err = cache.SetWithTags(ctx, BuildAliasMapKey("Health"), "health aliases", 5*time.Minute, []string{TagAliasMap})
	require.NoError(t, err)

	err = cache.SetWithTags(ctx, BuildDocumentStatusKey("doc-1"), "Processing", 5*time.Minute, []string{TagDocuments})
	require.NoError(t, err)

	var value string
	err = cache.Get(ctx, BuildAliasMapKey("Motor"), &value)
	require.NoError(t, err)
	assert.Equal(t, "motor aliases", value)

	err = cache.InvalidateByTag(ctx, TagAliasMap)
	require.NoError(t, err)

	// Both alias maps are gone
	err = cache.Get(ctx, BuildAliasMapKey("Motor"), &value)
	assert.Equal(t, ErrCacheMiss, err)

	err = cache.Get(ctx, BuildAliasMapKey("Health"), &value)
	assert.Equal(t, ErrCacheMiss, err)

	// The document status key was tagged separately and survives
	err = cache.Get(ctx, BuildDocumentStatusKey("doc-1"), &value)
	require.NoError(t, err)
	assert.Equal(t, "Processing", value)
}

func TestCacheServiceDeletePattern(t *testing.T) {
	client := newCacheTestClient(t)
	ctx := context.Background()
	defer client.FlushDB(ctx)

	cache := NewCacheService(client, &config.Config{})

	require.NoError(t, cache.Set(ctx, BuildValidationReportKey("Motor", "pol-1"), "report-1", time.Minute))
	require.NoError(t, cache.Set(ctx, BuildValidationReportKey("Motor", "pol-2"), "report-2", time.Minute))
	require.NoError(t, cache.Set(ctx, BuildDocumentStatusKey("doc-1"), "Queued", time.Minute))

	err := cache.DeletePattern(ctx, "validation:Motor:*")
	require.NoError(t, err)

	var value string
	err = cache.Get(ctx, BuildValidationReportKey("Motor", "pol-1"), &value)
	assert.Equal(t, ErrCacheMiss, err)

	err = cache.Get(ctx, BuildValidationReportKey("Motor", "pol-2"), &value)
	assert.Equal(t, ErrCacheMiss, err)

	err = cache.Get(ctx, BuildDocumentStatusKey("doc-1"), &value)
	require.NoError(t, err)
	assert.Equal(t, "Queued", value)
}

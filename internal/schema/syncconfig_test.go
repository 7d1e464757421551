package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(n int) *int { return &n }

func TestSyncConfigValidateChunkSize(t *testing.T) {
	c := DefaultSyncConfig()
	c.ChunkSize = 0
	assert.Error(t, c.Validate())
}

func TestSyncConfigValidateLimitBelowChunkSize(t *testing.T) {
	c := DefaultSyncConfig()
	c.ChunkSize = 1000
	c.Limit = intPtr(10)
	assert.Error(t, c.Validate())
}

func TestSyncConfigValidateLimitAtChunkSizeOK(t *testing.T) {
	c := DefaultSyncConfig()
	c.ChunkSize = 1000
	c.Limit = intPtr(1000)
	assert.NoError(t, c.Validate())
}

func TestSyncConfigValidateBadStrategy(t *testing.T) {
	c := DefaultSyncConfig()
	c.CacheStrategy = "bogus"
	assert.Error(t, c.Validate())
}

func TestSyncConfigValidateIncrementalRequiresField(t *testing.T) {
	c := DefaultSyncConfig()
	c.IncrementalMode = true
	assert.Error(t, c.Validate())
	c.IncrementalField = "updated_at"
	assert.NoError(t, c.Validate())
}

func TestSyncConfigValidateNegativeTTL(t *testing.T) {
	c := DefaultSyncConfig()
	ttl := -1
	c.TTLSeconds = &ttl
	assert.Error(t, c.Validate())
}

func TestSyncConfigCloneIndependence(t *testing.T) {
	c := DefaultSyncConfig()
	c.Limit = intPtr(5000)
	clone := c.Clone()
	*clone.Limit = 1
	assert.Equal(t, 5000, *c.Limit)
}

package cache

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestProductKey(t *testing.T) {
	id := uuid.MustParse("6f1c1c2e-6a55-4c59-9b0e-3f1f2f4f5a6b")
	assert.Equal(t, "crm:product:6f1c1c2e-6a55-4c59-9b0e-3f1f2f4f5a6b", productKey(id))
}

func TestNewProductCache_DefaultTTL(t *testing.T) {
	c := NewProductCache(nil, 0, zap.NewNop())
	assert.Equal(t, DefaultCacheTTL, c.ttl)
}

func TestInvalidateProducts_NoIDsIsNoop(t *testing.T) {
	c := NewProductCache(nil, 0, zap.NewNop())
	// must not touch the nil client
	c.InvalidateProducts(context.Background())
}

package formstate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaanchinar/petshop-storefront/internal/domain"
)

func TestMemoryStore_RoundTripAndNilDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	payment := domain.PaymentInfo{Method: domain.PaymentMethodCreditCard, CardNumber: "4242424242424242"}
	require.NoError(t, store.Set(ctx, "sess-1", "payment", payment))

	var got domain.PaymentInfo
	found, err := store.Get(ctx, "sess-1", "payment", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, payment, got)

	require.NoError(t, store.Set(ctx, "sess-1", "payment", nil))
	found, err = store.Get(ctx, "sess-1", "payment", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestMemoryStore_CorruptEntryTreatedAsAbsence(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "sess-1", "payment", domain.PaymentInfo{Method: domain.PaymentMethodPayPal}))
	store.Corrupt("sess-1", "payment")

	var got domain.PaymentInfo
	found, err := store.Get(ctx, "sess-1", "payment", &got)
	require.NoError(t, err)
	assert.False(t, found)
}

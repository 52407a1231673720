package orderv1

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrder(quantity int64) *Order {
	return NewOrder("user1", "PROP-1", SideBuy, KindLimit, quantity, decimal.NewFromInt(10), time.Now())
}

func TestNewOrder(t *testing.T) {
	now := time.Now()
	order := NewOrder("user1", "PROP-1", SideSell, KindLimit, 50, decimal.NewFromFloat(9.75), now)

	assert.NotEmpty(t, order.ID)
	assert.Equal(t, StatusPending, order.Status)
	assert.Equal(t, int64(50), order.Quantity)
	assert.Equal(t, int64(0), order.Filled)
	assert.Equal(t, int64(50), order.Remaining)
	assert.Equal(t, now.Add(ExpiryDuration), order.ExpiresAt)
	assert.True(t, order.IsOpen())
	assert.False(t, order.IsTerminal())
}

func TestOrder_ApplyFill(t *testing.T) {
	tests := []struct {
		name           string
		quantity       int64
		fills          []int64
		expectedStatus Status
		expectedFilled int64
	}{
		{
			name:           "partial fill",
			quantity:       50,
			fills:          []int64{20},
			expectedStatus: StatusPartial,
			expectedFilled: 20,
		},
		{
			name:           "full fill in one match",
			quantity:       50,
			fills:          []int64{50},
			expectedStatus: StatusFilled,
			expectedFilled: 50,
		},
		{
			name:           "full fill across matches",
			quantity:       15,
			fills:          []int64{10, 5},
			expectedStatus: StatusFilled,
			expectedFilled: 15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := newTestOrder(tt.quantity)

			for i, qty := range tt.fills {
				require.NoError(t, order.ApplyFill("fill-"+string(rune('a'+i)), qty))
				// Conservation holds after every fill.
				assert.Equal(t, order.Quantity, order.Filled+order.Remaining)
			}

			assert.Equal(t, tt.expectedStatus, order.Status)
			assert.Equal(t, tt.expectedFilled, order.Filled)
			assert.Len(t, order.FillIDs, len(tt.fills))
		})
	}
}

func TestOrder_ApplyFill_Rejections(t *testing.T) {
	order := newTestOrder(10)

	assert.Error(t, order.ApplyFill("f1", 0))
	assert.Error(t, order.ApplyFill("f1", 11))

	require.NoError(t, order.ApplyFill("f1", 10))
	assert.Error(t, order.ApplyFill("f2", 1), "filled order cannot fill again")
}

func TestOrder_UnapplyFill(t *testing.T) {
	order := newTestOrder(50)
	require.NoError(t, order.ApplyFill("f1", 20))
	require.NoError(t, order.ApplyFill("f2", 30))
	require.Equal(t, StatusFilled, order.Status)

	require.NoError(t, order.UnapplyFill("f2", 30))

	assert.Equal(t, StatusPartial, order.Status)
	assert.Equal(t, int64(20), order.Filled)
	assert.Equal(t, int64(30), order.Remaining)
	assert.Equal(t, []string{"f1"}, order.FillIDs)

	require.NoError(t, order.UnapplyFill("f1", 20))
	assert.Equal(t, StatusPending, order.Status)
	assert.Empty(t, order.FillIDs)

	assert.Error(t, order.UnapplyFill("f1", 1), "nothing left to unapply")
}

func TestOrder_Cancel(t *testing.T) {
	order := newTestOrder(50)
	require.NoError(t, order.ApplyFill("f1", 20))

	require.NoError(t, order.Cancel())
	assert.Equal(t, StatusCancelled, order.Status)
	assert.Equal(t, int64(20), order.Filled)
	assert.Equal(t, int64(30), order.Remaining)

	assert.Error(t, order.Cancel(), "cancel is not idempotent on terminal orders")
}

func TestOrder_Expire(t *testing.T) {
	now := time.Now()
	order := NewOrder("user1", "PROP-1", SideBuy, KindLimit, 10, decimal.NewFromInt(10), now)

	assert.False(t, order.IsExpiredAt(now.Add(ExpiryDuration-time.Second)))
	assert.True(t, order.IsExpiredAt(now.Add(ExpiryDuration)))

	require.NoError(t, order.Expire())
	assert.Equal(t, StatusExpired, order.Status)
	assert.Error(t, order.Expire())
}

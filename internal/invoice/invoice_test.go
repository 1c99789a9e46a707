package invoice

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/inventory-register-service/internal/cart"
	"github.com/fairyhunter13/inventory-register-service/internal/model"
)

func sale(id, total string) cart.Sale {
	return cart.Sale{ID: id, Total: decimal.RequireFromString(total),
		Lines: []cart.Line{{ProductID: "p1", Quantity: 1, UnitPrice: decimal.RequireFromString(total)}}}
}

func TestLedger(t *testing.T) {
	t.Run("Issue_NumbersSequentially", func(t *testing.T) {
		l := NewLedger()
		a := l.Issue(sale("s1", "10.00"), "Ada")
		b := l.Issue(sale("s2", "2.50"), "")
		require.Equal(t, "INV-0001", a.Number)
		require.Equal(t, "INV-0002", b.Number)
		require.Equal(t, "Walk-in customer", b.Customer)
		require.Equal(t, Pending, a.Status)
		require.Equal(t, "s1", a.SaleID)

		list := l.List("")
		require.Len(t, list, 2)
		require.Equal(t, b.ID, list[0].ID)
		require.True(t, l.Outstanding().Equal(decimal.RequireFromString("12.50")))
	})

	t.Run("MarkPaid", func(t *testing.T) {
		l := NewLedger()
		a := l.Issue(sale("s1", "10.00"), "Ada")
		paid, changed, err := l.MarkPaid(a.ID)
		require.NoError(t, err)
		require.True(t, changed)
		require.Equal(t, Paid, paid.Status)
		require.NotNil(t, paid.PaidAt)

		_, changed, err = l.MarkPaid(a.ID)
		require.NoError(t, err)
		require.False(t, changed)

		require.Len(t, l.List(Paid), 1)
		require.Empty(t, l.List(Pending))
		require.True(t, l.Outstanding().IsZero())

		got, err := l.Get(a.ID)
		require.NoError(t, err)
		require.Equal(t, Paid, got.Status)
	})

	t.Run("UnknownInvoice", func(t *testing.T) {
		l := NewLedger()
		_, _, err := l.MarkPaid("nope")
		require.ErrorIs(t, err, model.ErrInvoiceNotFound)
		_, err = l.Get("nope")
		require.ErrorIs(t, err, model.ErrInvoiceNotFound)
	})
}

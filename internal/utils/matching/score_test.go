package matching

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
)

func txn(amount string, date time.Time, description string) domain.ExternalTransaction {
	return domain.ExternalTransaction{
		TransactionID: "txn-1",
		Amount:        decimal.RequireFromString(amount),
		TxnDate:       date,
		Description:   description,
	}
}

func invoice(reference string, remaining string, date time.Time) domain.Invoice {
	return domain.Invoice{
		InvoiceID:   "inv-" + reference,
		Reference:   reference,
		Amount:      decimal.RequireFromString(remaining),
		Remaining:   decimal.RequireFromString(remaining),
		InvoiceDate: date,
	}
}

func TestScore(t *testing.T) {
	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		txn      domain.ExternalTransaction
		invoice  domain.Invoice
		expected float64
	}{
		{
			"perfect match scores 1.0",
			txn("500.00", base, "payment for INV-100"),
			invoice("INV-100", "500.00", base),
			1.0,
		},
		{
			"exact amount only",
			txn("500.00", base.AddDate(0, 1, 0), "wire transfer"),
			invoice("INV-100", "500.00", base),
			0.4,
		},
		{
			"near amount within a dollar",
			txn("500.50", base.AddDate(0, 1, 0), "wire transfer"),
			invoice("INV-100", "500.00", base),
			0.2,
		},
		{
			"amount too far off scores nothing on amount",
			txn("600.00", base.AddDate(0, 1, 0), "wire transfer"),
			invoice("INV-100", "500.00", base),
			0.0,
		},
		{
			"date within one day",
			txn("999.00", base.AddDate(0, 0, 1), "wire transfer"),
			invoice("INV-100", "500.00", base),
			0.3,
		},
		{
			"date within a week",
			txn("999.00", base.AddDate(0, 0, 6), "wire transfer"),
			invoice("INV-100", "500.00", base),
			0.2,
		},
		{
			"date eight days out scores nothing on date",
			txn("999.00", base.AddDate(0, 0, 8), "wire transfer"),
			invoice("INV-100", "500.00", base),
			0.0,
		},
		{
			"reference match is case insensitive",
			txn("999.00", base.AddDate(0, 1, 0), "Payment inv-100 August"),
			invoice("INV-100", "500.00", base),
			0.3,
		},
		{
			"empty invoice reference never matches",
			txn("999.00", base.AddDate(0, 1, 0), "payment"),
			invoice("", "500.00", base),
			0.0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Score(tc.txn, tc.invoice), 0.0001)
		})
	}
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	payment := txn("500.00", base, "payment for INV-100")

	invoices := []domain.Invoice{
		invoice("INV-999", "123.00", base.AddDate(0, -2, 0)), // poor match
		invoice("INV-100", "500.00", base),                   // perfect match
		invoice("INV-200", "500.50", base),                   // near amount + date
	}

	ranked := Rank(payment, invoices)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "INV-100", ranked[0].Invoice.Reference)
	assert.Equal(t, "INV-200", ranked[1].Invoice.Reference)
	assert.Equal(t, "INV-999", ranked[2].Invoice.Reference)
	assert.InDelta(t, 1.0, ranked[0].Score, 0.0001)
}

func TestRank_TieBreaksOnEarliestInvoiceDate(t *testing.T) {
	base := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	payment := txn("500.00", base, "wire transfer")

	// Both invoices score identically on amount and reference; keeping both
	// dates inside the one-day band makes the scores tie exactly. The later
	// invoice is listed first to prove ordering is not positional.
	later := invoice("INV-B", "500.00", base)
	earlier := invoice("INV-A", "500.00", base.AddDate(0, 0, -1))

	ranked := Rank(payment, []domain.Invoice{later, earlier})
	assert.Len(t, ranked, 2)
	assert.Equal(t, "INV-A", ranked[0].Invoice.Reference)
	assert.Equal(t, "INV-B", ranked[1].Invoice.Reference)
}

func TestAmbiguous(t *testing.T) {
	mk := func(scores ...float64) []Candidate {
		out := make([]Candidate, len(scores))
		for i, s := range scores {
			out[i] = Candidate{Score: s}
		}
		return out
	}

	assert.False(t, Ambiguous(nil, 0.05))
	assert.False(t, Ambiguous(mk(0.9), 0.05))
	assert.True(t, Ambiguous(mk(0.9, 0.9), 0.05))
	assert.True(t, Ambiguous(mk(0.9, 0.87), 0.05))
	assert.False(t, Ambiguous(mk(0.9, 0.85), 0.05))
	assert.False(t, Ambiguous(mk(0.9, 0.5, 0.49), 0.05))
}

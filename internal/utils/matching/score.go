package matching

import (
	"sort"
	"strings"
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// Weights of the scoring rules. A perfect candidate scores 1.0.
var (
	exactAmountTolerance = decimal.RequireFromString("0.01")
	nearAmountTolerance  = decimal.RequireFromString("1.00")
)

const (
	exactAmountScore = 0.4
	nearAmountScore  = 0.2
	nearDateScore    = 0.3
	weekDateScore    = 0.2
	referenceScore   = 0.3
)

// Score rates how well an external transaction matches an open invoice.
//   - amount: +0.4 when |txn - remaining| < 0.01, +0.2 when < 1.00
//   - date:   +0.3 within 1 day, +0.2 within 7 days
//   - reference: +0.3 when the invoice reference appears in the description
func Score(txn domain.ExternalTransaction, invoice domain.Invoice) float64 {
	score := 0.0

	diff := txn.Amount.Sub(invoice.Remaining).Abs()
	switch {
	case diff.LessThan(exactAmountTolerance):
		score += exactAmountScore
	case diff.LessThan(nearAmountTolerance):
		score += nearAmountScore
	}

	days := daysApart(txn.TxnDate, invoice.InvoiceDate)
	switch {
	case days <= 1:
		score += nearDateScore
	case days <= 7:
		score += weekDateScore
	}

	if invoice.Reference != "" &&
		strings.Contains(strings.ToLower(txn.Description), strings.ToLower(invoice.Reference)) {
		score += referenceScore
	}

	return score
}

func daysApart(a, b time.Time) int {
	d := a.Truncate(24 * time.Hour).Sub(b.Truncate(24 * time.Hour))
	if d < 0 {
		d = -d
	}
	return int(d.Hours() / 24)
}

// Candidate is one scored invoice for a transaction.
type Candidate struct {
	Invoice domain.Invoice
	Score   float64
}

// Rank scores every invoice against the transaction and orders candidates by
// score descending, breaking ties by earliest invoice date.
func Rank(txn domain.ExternalTransaction, invoices []domain.Invoice) []Candidate {
	candidates := make([]Candidate, 0, len(invoices))
	for _, inv := range invoices {
		candidates = append(candidates, Candidate{Invoice: inv, Score: Score(txn, inv)})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Invoice.InvoiceDate.Before(candidates[j].Invoice.InvoiceDate)
	})
	return candidates
}

// Ambiguous reports whether the top two candidates sit within the given
// confidence window of each other. Ambiguous results are surfaced for manual
// tie-break, never auto-resolved.
func Ambiguous(candidates []Candidate, window float64) bool {
	if len(candidates) < 2 {
		return false
	}
	return candidates[0].Score-candidates[1].Score < window
}

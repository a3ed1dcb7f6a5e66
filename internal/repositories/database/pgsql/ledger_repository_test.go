package pgsql

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestDiffTotals(t *testing.T) {
	maintained := []replayedTotal{
		{accountCode: "1000", periodID: "p1", totalDebit: decimal.RequireFromString("100.00"), totalCredit: decimal.Zero},
		{accountCode: "4000", periodID: "p1", totalDebit: decimal.Zero, totalCredit: decimal.RequireFromString("100.00")},
		{accountCode: "5000", periodID: "p1", totalDebit: decimal.RequireFromString("25.00"), totalCredit: decimal.Zero},
	}
	replayed := []replayedTotal{
		{accountCode: "1000", periodID: "p1", totalDebit: decimal.RequireFromString("100.00"), totalCredit: decimal.Zero},
		{accountCode: "4000", periodID: "p1", totalDebit: decimal.Zero, totalCredit: decimal.RequireFromString("99.00")},
		{accountCode: "2000", periodID: "p1", totalDebit: decimal.Zero, totalCredit: decimal.RequireFromString("25.00")},
	}

	drift := diffTotals(maintained, replayed)

	// 4000 diverges, 5000 exists only in the maintained state, 2000 only in
	// the replay. 1000 agrees and reports nothing.
	assert.Len(t, drift, 3)
	nets := map[string][2]decimal.Decimal{}
	for _, d := range drift {
		nets[d.AccountCode] = [2]decimal.Decimal{d.MaintainedNet, d.ReplayedNet}
	}
	assert.True(t, nets["4000"][0].Equal(decimal.RequireFromString("-100.00")))
	assert.True(t, nets["4000"][1].Equal(decimal.RequireFromString("-99.00")))
	assert.True(t, nets["5000"][0].Equal(decimal.RequireFromString("25.00")))
	assert.True(t, nets["5000"][1].IsZero())
	assert.True(t, nets["2000"][0].IsZero())
	assert.True(t, nets["2000"][1].Equal(decimal.RequireFromString("-25.00")))
}

func TestDiffTotals_Clean(t *testing.T) {
	totals := []replayedTotal{
		{accountCode: "1000", periodID: "p1", totalDebit: decimal.RequireFromString("100.00"), totalCredit: decimal.Zero},
	}
	assert.Empty(t, diffTotals(totals, totals))
}

func TestDiffAccountBalances(t *testing.T) {
	checks := []accountBalanceCheck{
		{accountCode: "1000", maintained: decimal.RequireFromString("150.00"), replayed: decimal.RequireFromString("150.00")},
		{accountCode: "1100", maintained: decimal.RequireFromString("99.00"), replayed: decimal.RequireFromString("100.00")},
		{accountCode: "4000", maintained: decimal.Zero, replayed: decimal.Zero},
	}

	drift := diffAccountBalances(checks)

	assert.Len(t, drift, 1)
	assert.Equal(t, "1100", drift[0].AccountCode)
	assert.Empty(t, drift[0].PeriodID)
	assert.True(t, drift[0].MaintainedNet.Equal(decimal.RequireFromString("99.00")))
	assert.True(t, drift[0].ReplayedNet.Equal(decimal.RequireFromString("100.00")))
}

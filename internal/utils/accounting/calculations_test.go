package accounting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
)

func debitLine(account string, amount string) domain.JournalLine {
	return domain.JournalLine{
		AccountCode: account,
		Debit:       decimal.RequireFromString(amount),
		Credit:      decimal.Zero,
	}
}

func creditLine(account string, amount string) domain.JournalLine {
	return domain.JournalLine{
		AccountCode: account,
		Debit:       decimal.Zero,
		Credit:      decimal.RequireFromString(amount),
	}
}

func TestSignedAmount(t *testing.T) {
	cases := []struct {
		name        string
		line        domain.JournalLine
		accountType domain.AccountType
		expected    string
	}{
		{"debit on debit-normal asset increases", debitLine("1000", "150.00"), domain.Asset, "150.00"},
		{"credit on debit-normal asset decreases", creditLine("1000", "150.00"), domain.Asset, "-150.00"},
		{"debit on debit-normal expense increases", debitLine("5000", "25.50"), domain.Expense, "25.50"},
		{"credit on credit-normal revenue increases", creditLine("4000", "150.00"), domain.Revenue, "150.00"},
		{"debit on credit-normal revenue decreases", debitLine("4000", "150.00"), domain.Revenue, "-150.00"},
		{"credit on credit-normal liability increases", creditLine("2000", "99.99"), domain.Liability, "99.99"},
		{"credit on credit-normal equity increases", creditLine("3000", "10.00"), domain.Equity, "10.00"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signed, err := SignedAmount(tc.line, tc.accountType)
			assert.NoError(t, err)
			assert.True(t, signed.Equal(decimal.RequireFromString(tc.expected)),
				"expected %s, got %s", tc.expected, signed)
		})
	}
}

func TestSignedAmount_UnknownAccountType(t *testing.T) {
	_, err := SignedAmount(debitLine("1000", "150.00"), domain.AccountType("GOLD"))
	assert.Error(t, err)
}

func TestValidateLines_Balanced(t *testing.T) {
	lines := []domain.JournalLine{
		debitLine("1000", "150.00"),
		creditLine("4000", "100.00"),
		creditLine("2000", "50.00"),
	}
	assert.NoError(t, ValidateLines(lines))
}

func TestValidateLines_Empty(t *testing.T) {
	err := ValidateLines(nil)
	assert.ErrorIs(t, err, apperrors.ErrEmptyEntry)
}

func TestValidateLines_Unbalanced(t *testing.T) {
	lines := []domain.JournalLine{
		debitLine("1000", "150.00"),
		creditLine("4000", "149.99"),
	}
	err := ValidateLines(lines)
	assert.ErrorIs(t, err, apperrors.ErrUnbalancedEntry)
}

func TestValidateLines_BothSidesOnOneLine(t *testing.T) {
	lines := []domain.JournalLine{
		{
			AccountCode: "1000",
			Debit:       decimal.RequireFromString("100.00"),
			Credit:      decimal.RequireFromString("100.00"),
		},
		creditLine("4000", "100.00"),
	}
	err := ValidateLines(lines)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateLines_ZeroLine(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountCode: "1000", Debit: decimal.Zero, Credit: decimal.Zero},
		debitLine("1000", "100.00"),
		creditLine("4000", "100.00"),
	}
	err := ValidateLines(lines)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateLines_NegativeAmount(t *testing.T) {
	lines := []domain.JournalLine{
		{AccountCode: "1000", Debit: decimal.RequireFromString("-100.00"), Credit: decimal.Zero},
		creditLine("4000", "-100.00"),
	}
	err := ValidateLines(lines)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestValidateLines_TooManyDecimalPlaces(t *testing.T) {
	lines := []domain.JournalLine{
		debitLine("1000", "100.001"),
		creditLine("4000", "100.001"),
	}
	err := ValidateLines(lines)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBalanceChanges(t *testing.T) {
	lines := []domain.JournalLine{
		debitLine("1000", "150.00"),
		creditLine("4000", "100.00"),
		creditLine("1000", "50.00"),
	}
	accountTypes := map[string]domain.AccountType{
		"1000": domain.Asset,
		"4000": domain.Revenue,
	}

	changes, err := BalanceChanges(lines, accountTypes)
	assert.NoError(t, err)
	assert.Len(t, changes, 2)
	// The two cash lines net to a single delta.
	assert.True(t, changes["1000"].Equal(decimal.RequireFromString("100.00")), "got %s", changes["1000"])
	assert.True(t, changes["4000"].Equal(decimal.RequireFromString("100.00")), "got %s", changes["4000"])
}

func TestBalanceChanges_UnknownAccount(t *testing.T) {
	lines := []domain.JournalLine{debitLine("9999", "10.00")}
	_, err := BalanceChanges(lines, map[string]domain.AccountType{"1000": domain.Asset})
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}

func TestReverseLines(t *testing.T) {
	lines := []domain.JournalLine{
		debitLine("1000", "150.00"),
		creditLine("4000", "150.00"),
	}

	reversed := ReverseLines(lines)
	assert.Len(t, reversed, 2)
	assert.True(t, reversed[0].Debit.IsZero())
	assert.True(t, reversed[0].Credit.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, reversed[1].Credit.IsZero())
	assert.True(t, reversed[1].Debit.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, "1000", reversed[0].AccountCode)

	// The originals are untouched.
	assert.True(t, lines[0].Debit.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, lines[0].Credit.IsZero())
}

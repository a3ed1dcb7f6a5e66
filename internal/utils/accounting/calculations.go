package accounting

import (
	"fmt"

	"github.com/m1ndvortex/goldledger/internal/apperrors"
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount applies the account's normal side to a journal line.
// A debit against a debit-normal account (asset/expense) increases its balance,
// against a credit-normal account it decreases it, and vice versa.
func SignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	if !accountType.Valid() {
		return decimal.Zero, fmt.Errorf("unknown account type '%s' for account %s", accountType, line.AccountCode)
	}
	amount := line.Amount()
	if accountType.NormalSide() == domain.DebitSide {
		if !line.IsDebit() {
			amount = amount.Neg()
		}
	} else {
		if line.IsDebit() {
			amount = amount.Neg()
		}
	}
	return amount, nil
}

// ValidateLines enforces the structural invariants on an entry's lines:
// non-empty, exactly one nonzero side per line, no negative amounts, at most
// two decimal places, and sum(debits) == sum(credits) exactly.
func ValidateLines(lines []domain.JournalLine) error {
	if len(lines) == 0 {
		return apperrors.ErrEmptyEntry
	}

	hundred := decimal.NewFromInt(100)
	debits := decimal.Zero
	credits := decimal.Zero

	for _, line := range lines {
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: negative amount on account %s", apperrors.ErrValidation, line.AccountCode)
		}
		hasDebit := !line.Debit.IsZero()
		hasCredit := !line.Credit.IsZero()
		if hasDebit == hasCredit {
			return fmt.Errorf("%w: line for account %s must have exactly one of debit or credit", apperrors.ErrValidation, line.AccountCode)
		}
		amount := line.Amount()
		if !amount.Mul(hundred).Equal(amount.Mul(hundred).Floor()) {
			return fmt.Errorf("%w: amount %s on account %s has more than 2 decimal places", apperrors.ErrValidation, amount, line.AccountCode)
		}
		debits = debits.Add(line.Debit)
		credits = credits.Add(line.Credit)
	}

	if !debits.Equal(credits) {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedEntry, debits.String(), credits.String())
	}
	return nil
}

// BalanceChanges computes the net signed balance delta per account for a set of lines.
func BalanceChanges(lines []domain.JournalLine, accountTypes map[string]domain.AccountType) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(lines))
	for _, line := range lines {
		accountType, ok := accountTypes[line.AccountCode]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, line.AccountCode)
		}
		signed, err := SignedAmount(line, accountType)
		if err != nil {
			return nil, err
		}
		changes[line.AccountCode] = changes[line.AccountCode].Add(signed)
	}
	return changes, nil
}

// ReverseLines builds the opposite-side lines for a reversing entry.
func ReverseLines(lines []domain.JournalLine) []domain.JournalLine {
	reversed := make([]domain.JournalLine, len(lines))
	for i, line := range lines {
		reversed[i] = line
		reversed[i].Debit = line.Credit
		reversed[i].Credit = line.Debit
	}
	return reversed
}

package domain

import "github.com/shopspring/decimal"

// AccountBalance is the projector's maintained per-account, per-period totals.
// Derived state only: discard and rebuild from the journal at any time.
type AccountBalance struct {
	AccountCode string          `json:"accountCode"`
	PeriodID    string          `json:"periodID"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// Balance returns the signed balance using the account's normal side.
func (b AccountBalance) Balance(side BalanceSide) decimal.Decimal {
	if side == DebitSide {
		return b.TotalDebit.Sub(b.TotalCredit)
	}
	return b.TotalCredit.Sub(b.TotalDebit)
}

// TrialBalanceRow is one account's line in a period trial balance.
type TrialBalanceRow struct {
	AccountCode string          `json:"accountCode"`
	AccountName string          `json:"accountName"`
	AccountType AccountType     `json:"accountType"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// TrialBalance is the full per-period statement with its zero-sum self-check.
type TrialBalance struct {
	PeriodID string            `json:"periodID"`
	Rows     []TrialBalanceRow `json:"rows"`
	// Net is sum(debits) - sum(credits) across all rows; zero for a healthy ledger.
	Net decimal.Decimal `json:"net"`
}

// SubsidiaryBalance is a per-counterparty projection filtered by counterparty tag.
type SubsidiaryBalance struct {
	CounterpartyTag string          `json:"counterpartyTag"`
	AccountCode     string          `json:"accountCode"`
	TotalDebit      decimal.Decimal `json:"totalDebit"`
	TotalCredit     decimal.Decimal `json:"totalCredit"`
}

package domain

import "github.com/shopspring/decimal"

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// BalanceSide is the side on which an account's balance normally sits.
type BalanceSide string

const (
	DebitSide  BalanceSide = "DEBIT"
	CreditSide BalanceSide = "CREDIT"
)

// NormalSide returns the normal balance side for the account type.
// Asset and Expense accounts carry debit balances, the rest credit balances.
func (t AccountType) NormalSide() BalanceSide {
	if t == Asset || t == Expense {
		return DebitSide
	}
	return CreditSide
}

// Valid reports whether the account type is one of the five known types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Revenue, Expense:
		return true
	}
	return false
}

// Account represents a financial account in the chart of accounts.
// The code is the stable external identifier; accounts are never deleted,
// only marked inactive, so historical postings stay resolvable.
type Account struct {
	AccountCode string      `json:"accountCode"` // Unique, immutable once referenced by a posted line
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	ParentCode  string      `json:"parentCode"` // Empty for root accounts
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive"`
	// Balance is the maintained running balance, signed by the account's
	// normal side. Updated by the posting path, rebuilt on demand.
	Balance decimal.Decimal `json:"balance"`
	AuditFields
}

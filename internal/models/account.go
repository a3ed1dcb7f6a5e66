package models

import "github.com/shopspring/decimal"

// AccountType categorizes accounts and fixes their normal balance side.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Revenue   AccountType = "REVENUE"
	Expense   AccountType = "EXPENSE"
)

// Account represents one node in the chart of accounts.
type Account struct {
	AccountCode string      `json:"accountCode"` // Primary key, unique business code
	Name        string      `json:"name"`
	AccountType AccountType `json:"accountType"`
	ParentCode  string      `json:"parentCode"` // Empty for root accounts
	Description string      `json:"description"`
	IsActive    bool        `json:"isActive"`
	Balance     decimal.Decimal `json:"balance"` // Signed by the normal side
	AuditFields
}

package dto

import (
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the payload for creating an account.
type CreateAccountRequest struct {
	AccountCode string             `json:"accountCode" binding:"required,max=32,accountcode"`
	Name        string             `json:"name" binding:"required,max=120"`
	AccountType domain.AccountType `json:"accountType" binding:"required,oneof=ASSET LIABILITY EQUITY REVENUE EXPENSE"`
	ParentCode  string             `json:"parentCode,omitempty"`
	Description string             `json:"description,omitempty"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountCode string             `json:"accountCode"`
	Name        string             `json:"name"`
	AccountType domain.AccountType `json:"accountType"`
	NormalSide  domain.BalanceSide `json:"normalSide"`
	ParentCode  string             `json:"parentCode,omitempty"`
	Description string             `json:"description,omitempty"`
	IsActive    bool               `json:"isActive"`
	Balance     decimal.Decimal    `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a *domain.Account) AccountResponse {
	return AccountResponse{
		AccountCode: a.AccountCode,
		Name:        a.Name,
		AccountType: a.AccountType,
		NormalSide:  a.AccountType.NormalSide(),
		ParentCode:  a.ParentCode,
		Description: a.Description,
		IsActive:    a.IsActive,
		Balance:     a.Balance,
	}
}

// ToAccountResponses converts a slice of domain.Account to []AccountResponse.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	responses := make([]AccountResponse, len(accounts))
	for i := range accounts {
		responses[i] = ToAccountResponse(&accounts[i])
	}
	return responses
}

package dto

import (
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// IngestTransactionRequest adds a bank line to the unmatched pool.
type IngestTransactionRequest struct {
	ExternalID  string          `json:"externalID" binding:"required,max=64"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date" binding:"required"`
	Description string          `json:"description,omitempty"`
}

// EnrollInvoiceRequest registers an open invoice for settlement matching.
type EnrollInvoiceRequest struct {
	Reference       string          `json:"reference" binding:"required,max=64"`
	CounterpartyTag string          `json:"counterpartyTag" binding:"required,max=64"`
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Date            time.Time       `json:"date" binding:"required"`
}

// MatchResponse defines the data returned for a reconciliation match.
type MatchResponse struct {
	MatchID       string             `json:"matchID"`
	TransactionID string             `json:"transactionID"`
	InvoiceID     string             `json:"invoiceID"`
	Confidence    float64            `json:"confidence"`
	Status        domain.MatchStatus `json:"status"`
	Reason        string             `json:"reason,omitempty"`
	Justification string             `json:"justification,omitempty"`
	CreatedAt     time.Time          `json:"createdAt"`
}

// ProposeMatchesResponse is the outcome of one matcher batch run.
type ProposeMatchesResponse struct {
	Proposed  []MatchResponse `json:"proposed"`
	Ambiguous []MatchResponse `json:"ambiguous"`
	Unmatched int             `json:"unmatched"`
	Scanned   int             `json:"scanned"`
}

// DeferMatchRequest carries the reviewer's justification for deferring.
type DeferMatchRequest struct {
	Justification string `json:"justification" binding:"required"`
}

// ToMatchResponse converts a domain.ReconciliationMatch to MatchResponse DTO.
func ToMatchResponse(m *domain.ReconciliationMatch) MatchResponse {
	return MatchResponse{
		MatchID:       m.MatchID,
		TransactionID: m.TransactionID,
		InvoiceID:     m.InvoiceID,
		Confidence:    m.Confidence,
		Status:        m.Status,
		Reason:        m.Reason,
		Justification: m.Justification,
		CreatedAt:     m.CreatedAt,
	}
}

// ToMatchResponses converts a slice of matches to DTOs.
func ToMatchResponses(matches []domain.ReconciliationMatch) []MatchResponse {
	responses := make([]MatchResponse, len(matches))
	for i := range matches {
		responses[i] = ToMatchResponse(&matches[i])
	}
	return responses
}

package dto

import (
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// PostLineRequest is one line of a posting request. Exactly one of debit or
// credit must be nonzero; the service enforces this beyond binding.
type PostLineRequest struct {
	AccountCode     string          `json:"accountCode" binding:"required,accountcode"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Description     string          `json:"description,omitempty"`
	CounterpartyTag string          `json:"counterpartyTag,omitempty"`
}

// PostEntryRequest defines the payload for posting a journal entry.
type PostEntryRequest struct {
	Date        time.Time          `json:"date" binding:"required"`
	Reference   string             `json:"reference" binding:"required,max=64"`
	Description string             `json:"description" binding:"required"`
	Source      domain.EntrySource `json:"source" binding:"required,oneof=INVOICE PAYMENT ADJUSTMENT MANUAL"`
	SourceID    string             `json:"sourceID,omitempty"`
	Metadata    map[string]string  `json:"metadata,omitempty"`
	Lines       []PostLineRequest  `json:"lines" binding:"required,dive"`
}

// LineResponse defines the data returned for a journal line.
type LineResponse struct {
	LineID          string          `json:"lineID"`
	AccountCode     string          `json:"accountCode"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	Description     string          `json:"description,omitempty"`
	CounterpartyTag string          `json:"counterpartyTag,omitempty"`
}

// EntryResponse defines the data returned for a journal entry.
type EntryResponse struct {
	EntryID          string             `json:"entryID"`
	Date             time.Time          `json:"date"`
	Reference        string             `json:"reference"`
	Description      string             `json:"description"`
	Source           domain.EntrySource `json:"source"`
	SourceID         string             `json:"sourceID,omitempty"`
	PeriodID         string             `json:"periodID"`
	Status           domain.EntryStatus `json:"status"`
	OriginalEntryID  *string            `json:"originalEntryID,omitempty"`
	ReversingEntryID *string            `json:"reversingEntryID,omitempty"`
	Lines            []LineResponse     `json:"lines,omitempty"`
	CreatedAt        time.Time          `json:"createdAt"`
	CreatedBy        string             `json:"createdBy"`
}

// ListEntriesParams holds parameters for listing entries.
type ListEntriesParams struct {
	Limit            int     `form:"limit"`
	NextToken        *string `form:"nextToken"`
	IncludeReversals bool    `form:"includeReversals"`
	IncludeLines     bool    `form:"includeLines"`
}

// ListEntriesResponse is the paginated entry listing.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}

// ListLinesParams holds parameters for listing an account's lines.
type ListLinesParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListLinesResponse is the paginated line listing for one account.
type ListLinesResponse struct {
	Lines     []LineResponse `json:"lines"`
	NextToken *string        `json:"nextToken,omitempty"`
}

// ToLineResponse converts a domain.JournalLine to LineResponse DTO.
func ToLineResponse(l *domain.JournalLine) LineResponse {
	return LineResponse{
		LineID:          l.LineID,
		AccountCode:     l.AccountCode,
		Debit:           l.Debit,
		Credit:          l.Credit,
		Description:     l.Description,
		CounterpartyTag: l.CounterpartyTag,
	}
}

// ToLineResponses converts a slice of domain.JournalLine to []LineResponse.
func ToLineResponses(lines []domain.JournalLine) []LineResponse {
	responses := make([]LineResponse, len(lines))
	for i := range lines {
		responses[i] = ToLineResponse(&lines[i])
	}
	return responses
}

// ToEntryResponse converts a domain.JournalEntry to EntryResponse DTO.
func ToEntryResponse(e *domain.JournalEntry) EntryResponse {
	resp := EntryResponse{
		EntryID:          e.EntryID,
		Date:             e.EntryDate,
		Reference:        e.Reference,
		Description:      e.Description,
		Source:           e.Source,
		SourceID:         e.SourceID,
		PeriodID:         e.PeriodID,
		Status:           e.Status,
		OriginalEntryID:  e.OriginalEntryID,
		ReversingEntryID: e.ReversingEntryID,
		CreatedAt:        e.CreatedAt,
		CreatedBy:        e.CreatedBy,
	}
	if len(e.Lines) > 0 {
		resp.Lines = ToLineResponses(e.Lines)
	}
	return resp
}

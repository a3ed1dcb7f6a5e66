package dto

import (
	"time"

	"github.com/m1ndvortex/goldledger/internal/core/domain"
)

// CreatePeriodRequest defines the payload for opening a new accounting period.
type CreatePeriodRequest struct {
	Name      string    `json:"name" binding:"required,max=64"`
	StartDate time.Time `json:"startDate" binding:"required"`
	EndDate   time.Time `json:"endDate" binding:"required"`
}

// PeriodResponse defines the data returned for a period.
type PeriodResponse struct {
	PeriodID  string              `json:"periodID"`
	Name      string              `json:"name"`
	StartDate time.Time           `json:"startDate"`
	EndDate   time.Time           `json:"endDate"`
	Status    domain.PeriodStatus `json:"status"`
}

// ReopenPeriodRequest carries the privileged reopen justification.
type ReopenPeriodRequest struct {
	Justification string `json:"justification" binding:"required"`
}

// ToPeriodResponse converts a domain.Period to PeriodResponse DTO.
func ToPeriodResponse(p *domain.Period) PeriodResponse {
	return PeriodResponse{
		PeriodID:  p.PeriodID,
		Name:      p.Name,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Status:    p.Status,
	}
}

// ToPeriodResponses converts a slice of domain.Period to []PeriodResponse.
func ToPeriodResponses(periods []domain.Period) []PeriodResponse {
	responses := make([]PeriodResponse, len(periods))
	for i := range periods {
		responses[i] = ToPeriodResponse(&periods[i])
	}
	return responses
}

package mapping

import (
	"github.com/m1ndvortex/goldledger/internal/core/domain"
	"github.com/m1ndvortex/goldledger/internal/models"
)

// ToModelTransaction converts a domain ExternalTransaction to a model ExternalTransaction
func ToModelTransaction(d domain.ExternalTransaction) models.ExternalTransaction {
	return models.ExternalTransaction{
		TransactionID: d.TransactionID,
		ExternalID:    d.ExternalID,
		Amount:        d.Amount,
		TxnDate:       d.TxnDate,
		Description:   d.Description,
		Matched:       d.Matched,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model ExternalTransaction to a domain ExternalTransaction
func ToDomainTransaction(m models.ExternalTransaction) domain.ExternalTransaction {
	return domain.ExternalTransaction{
		TransactionID: m.TransactionID,
		ExternalID:    m.ExternalID,
		Amount:        m.Amount,
		TxnDate:       m.TxnDate,
		Description:   m.Description,
		Matched:       m.Matched,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransactionSlice converts model ExternalTransactions to domain ones
func ToDomainTransactionSlice(ms []models.ExternalTransaction) []domain.ExternalTransaction {
	ds := make([]domain.ExternalTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransaction(m)
	}
	return ds
}

// ToModelInvoice converts a domain Invoice to a model Invoice
func ToModelInvoice(d domain.Invoice) models.Invoice {
	return models.Invoice{
		InvoiceID:       d.InvoiceID,
		Reference:       d.Reference,
		CounterpartyTag: d.CounterpartyTag,
		Amount:          d.Amount,
		Remaining:       d.Remaining,
		InvoiceDate:     d.InvoiceDate,
		Status:          models.InvoiceStatus(d.Status),
		Version:         d.Version,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainInvoice converts a model Invoice to a domain Invoice
func ToDomainInvoice(m models.Invoice) domain.Invoice {
	return domain.Invoice{
		InvoiceID:       m.InvoiceID,
		Reference:       m.Reference,
		CounterpartyTag: m.CounterpartyTag,
		Amount:          m.Amount,
		Remaining:       m.Remaining,
		InvoiceDate:     m.InvoiceDate,
		Status:          domain.InvoiceStatus(m.Status),
		Version:         m.Version,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainInvoiceSlice converts model Invoices to domain Invoices
func ToDomainInvoiceSlice(ms []models.Invoice) []domain.Invoice {
	ds := make([]domain.Invoice, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainInvoice(m)
	}
	return ds
}

// ToModelMatch converts a domain ReconciliationMatch to a model ReconciliationMatch
func ToModelMatch(d domain.ReconciliationMatch) models.ReconciliationMatch {
	return models.ReconciliationMatch{
		MatchID:        d.MatchID,
		TransactionID:  d.TransactionID,
		InvoiceID:      d.InvoiceID,
		Confidence:     d.Confidence,
		Status:         models.MatchStatus(d.Status),
		InvoiceVersion: d.InvoiceVersion,
		Reason:         d.Reason,
		Justification:  d.Justification,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMatch converts a model ReconciliationMatch to a domain ReconciliationMatch
func ToDomainMatch(m models.ReconciliationMatch) domain.ReconciliationMatch {
	return domain.ReconciliationMatch{
		MatchID:        m.MatchID,
		TransactionID:  m.TransactionID,
		InvoiceID:      m.InvoiceID,
		Confidence:     m.Confidence,
		Status:         domain.MatchStatus(m.Status),
		InvoiceVersion: m.InvoiceVersion,
		Reason:         m.Reason,
		Justification:  m.Justification,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainMatchSlice converts model ReconciliationMatches to domain ones
func ToDomainMatchSlice(ms []models.ReconciliationMatch) []domain.ReconciliationMatch {
	ds := make([]domain.ReconciliationMatch, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainMatch(m)
	}
	return ds
}

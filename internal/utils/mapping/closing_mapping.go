package mapping

import (
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/models"
)

// ToModelYearEndClosing converts a domain YearEndClosing to its model form
func ToModelYearEndClosing(d domain.YearEndClosing) models.YearEndClosing {
	return models.YearEndClosing{
		ClosingID:      d.ClosingID,
		VereinID:       d.VereinID,
		Year:           d.Year,
		CashOpening:    d.CashOpening,
		CashClosing:    d.CashClosing,
		BankOpening:    d.BankOpening,
		BankClosing:    d.BankClosing,
		SavingsClosing: d.SavingsClosing,
		ClosingDate:    d.ClosingDate,
		Audited:        d.Audited,
		AuditedBy:      d.AuditedBy,
		AuditedAt:      d.AuditedAt,
		Note:           d.Note,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainYearEndClosing converts a model YearEndClosing to its domain form
func ToDomainYearEndClosing(m models.YearEndClosing) domain.YearEndClosing {
	return domain.YearEndClosing{
		ClosingID:      m.ClosingID,
		VereinID:       m.VereinID,
		Year:           m.Year,
		CashOpening:    m.CashOpening,
		CashClosing:    m.CashClosing,
		BankOpening:    m.BankOpening,
		BankClosing:    m.BankClosing,
		SavingsClosing: m.SavingsClosing,
		ClosingDate:    m.ClosingDate,
		Audited:        m.Audited,
		AuditedBy:      m.AuditedBy,
		AuditedAt:      m.AuditedAt,
		Note:           m.Note,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainYearEndClosingSlice converts model closings to domain closings
func ToDomainYearEndClosingSlice(ms []models.YearEndClosing) []domain.YearEndClosing {
	ds := make([]domain.YearEndClosing, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainYearEndClosing(m)
	}
	return ds
}

package mapping

import (
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/models"
)

// ToModelBankTransaction converts a domain BankTransaction to its model form
func ToModelBankTransaction(d domain.BankTransaction) models.BankTransaction {
	return models.BankTransaction{
		BankTransactionID: d.BankTransactionID,
		VereinID:          d.VereinID,
		BankAccountID:     d.BankAccountID,
		BookingDate:       d.BookingDate,
		Amount:            d.Amount,
		CurrencyCode:      d.CurrencyCode,
		Counterparty:      d.Counterparty,
		Purpose:           d.Purpose,
		Reference:         d.Reference,
		IBAN:              d.IBAN,
		BatchID:           d.BatchID,
		Status:            models.BankTransactionStatus(d.Status),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankTransaction converts a model BankTransaction to its domain form
func ToDomainBankTransaction(m models.BankTransaction) domain.BankTransaction {
	return domain.BankTransaction{
		BankTransactionID: m.BankTransactionID,
		VereinID:          m.VereinID,
		BankAccountID:     m.BankAccountID,
		BookingDate:       m.BookingDate,
		Amount:            m.Amount,
		CurrencyCode:      m.CurrencyCode,
		Counterparty:      m.Counterparty,
		Purpose:           m.Purpose,
		Reference:         m.Reference,
		IBAN:              m.IBAN,
		BatchID:           m.BatchID,
		Status:            domain.BankTransactionStatus(m.Status),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainBankTransactionSlice converts model rows to domain transactions
func ToDomainBankTransactionSlice(ms []models.BankTransaction) []domain.BankTransaction {
	ds := make([]domain.BankTransaction, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainBankTransaction(m)
	}
	return ds
}

package mapping

import (
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/models"
)

// ToModelCashBookEntry converts a domain CashBookEntry to its model form
func ToModelCashBookEntry(d domain.CashBookEntry) models.CashBookEntry {
	return models.CashBookEntry{
		EntryID:           d.EntryID,
		VereinID:          d.VereinID,
		ReceiptNo:         d.ReceiptNo,
		EntryDate:         d.EntryDate,
		AccountNo:         d.AccountNo,
		Purpose:           d.Purpose,
		CashIncome:        d.CashIncome,
		CashExpense:       d.CashExpense,
		BankIncome:        d.BankIncome,
		BankExpense:       d.BankExpense,
		Year:              d.Year,
		MemberID:          d.MemberID,
		PaymentID:         d.PaymentID,
		BankTransactionID: d.BankTransactionID,
		PaymentMethod:     d.PaymentMethod,
		Note:              d.Note,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainCashBookEntry converts a model CashBookEntry to its domain form
func ToDomainCashBookEntry(m models.CashBookEntry) domain.CashBookEntry {
	return domain.CashBookEntry{
		EntryID:           m.EntryID,
		VereinID:          m.VereinID,
		ReceiptNo:         m.ReceiptNo,
		EntryDate:         m.EntryDate,
		AccountNo:         m.AccountNo,
		Purpose:           m.Purpose,
		CashIncome:        m.CashIncome,
		CashExpense:       m.CashExpense,
		BankIncome:        m.BankIncome,
		BankExpense:       m.BankExpense,
		Year:              m.Year,
		MemberID:          m.MemberID,
		PaymentID:         m.PaymentID,
		BankTransactionID: m.BankTransactionID,
		PaymentMethod:     m.PaymentMethod,
		Note:              m.Note,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainCashBookEntrySlice converts model entries to domain entries
func ToDomainCashBookEntrySlice(ms []models.CashBookEntry) []domain.CashBookEntry {
	ds := make([]domain.CashBookEntry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainCashBookEntry(m)
	}
	return ds
}

// ToDomainChartAccount converts a model ChartAccount to its domain form
func ToDomainChartAccount(m models.ChartAccount) domain.ChartAccount {
	return domain.ChartAccount{
		AccountNo:   m.AccountNo,
		Description: m.Description,
		Transit:     m.Transit,
	}
}

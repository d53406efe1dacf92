package mapping

import (
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/models"
)

// ToModelPayment converts a domain Payment to a model Payment
func ToModelPayment(d domain.Payment) models.Payment {
	return models.Payment{
		PaymentID:         d.PaymentID,
		VereinID:          d.VereinID,
		MemberID:          d.MemberID,
		Amount:            d.Amount,
		CurrencyCode:      d.CurrencyCode,
		PaymentDate:       d.PaymentDate,
		Method:            models.PaymentMethod(d.Method),
		BankAccountID:     d.BankAccountID,
		BankTransactionID: d.BankTransactionID,
		ClaimID:           d.ClaimID,
		Reference:         d.Reference,
		Note:              d.Note,
		Status:            models.PaymentStatus(d.Status),
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainPayment converts a model Payment to a domain Payment
func ToDomainPayment(m models.Payment) domain.Payment {
	return domain.Payment{
		PaymentID:         m.PaymentID,
		VereinID:          m.VereinID,
		MemberID:          m.MemberID,
		Amount:            m.Amount,
		CurrencyCode:      m.CurrencyCode,
		PaymentDate:       m.PaymentDate,
		Method:            domain.PaymentMethod(m.Method),
		BankAccountID:     m.BankAccountID,
		BankTransactionID: m.BankTransactionID,
		ClaimID:           m.ClaimID,
		Reference:         m.Reference,
		Note:              m.Note,
		Status:            domain.PaymentStatus(m.Status),
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainPaymentSlice converts a slice of model Payments to domain Payments
func ToDomainPaymentSlice(ms []models.Payment) []domain.Payment {
	ds := make([]domain.Payment, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainPayment(m)
	}
	return ds
}

// ToModelAllocation converts a domain Allocation to a model Allocation
func ToModelAllocation(d domain.Allocation) models.Allocation {
	return models.Allocation{
		AllocationID: d.AllocationID,
		ClaimID:      d.ClaimID,
		PaymentID:    d.PaymentID,
		Amount:       d.Amount,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAllocation converts a model Allocation to a domain Allocation
func ToDomainAllocation(m models.Allocation) domain.Allocation {
	return domain.Allocation{
		AllocationID: m.AllocationID,
		ClaimID:      m.ClaimID,
		PaymentID:    m.PaymentID,
		Amount:       m.Amount,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAllocationSlice converts a slice of model Allocations to domain Allocations
func ToDomainAllocationSlice(ms []models.Allocation) []domain.Allocation {
	ds := make([]domain.Allocation, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAllocation(m)
	}
	return ds
}

// ToModelCreditBalance converts a domain CreditBalance to its model form
func ToModelCreditBalance(d domain.CreditBalance) models.CreditBalance {
	return models.CreditBalance{
		CreditBalanceID: d.CreditBalanceID,
		VereinID:        d.VereinID,
		MemberID:        d.MemberID,
		PaymentID:       d.PaymentID,
		Amount:          d.Amount,
		Note:            d.Note,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

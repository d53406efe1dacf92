package mapping

import (
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/models"
)

// ToModelClaim converts a domain Claim to a model Claim
func ToModelClaim(d domain.Claim) models.Claim {
	return models.Claim{
		ClaimID:      d.ClaimID,
		VereinID:     d.VereinID,
		MemberID:     d.MemberID,
		ClaimNumber:  d.ClaimNumber,
		ClaimType:    d.ClaimType,
		Amount:       d.Amount,
		CurrencyCode: d.CurrencyCode,
		DueDate:      d.DueDate,
		Year:         d.Year,
		Quarter:      d.Quarter,
		Month:        d.Month,
		Status:       models.ClaimStatus(d.Status),
		PaidAt:       d.PaidAt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainClaim converts a model Claim to a domain Claim
func ToDomainClaim(m models.Claim) domain.Claim {
	return domain.Claim{
		ClaimID:      m.ClaimID,
		VereinID:     m.VereinID,
		MemberID:     m.MemberID,
		ClaimNumber:  m.ClaimNumber,
		ClaimType:    m.ClaimType,
		Amount:       m.Amount,
		CurrencyCode: m.CurrencyCode,
		DueDate:      m.DueDate,
		Year:         m.Year,
		Quarter:      m.Quarter,
		Month:        m.Month,
		Status:       domain.ClaimStatus(m.Status),
		PaidAt:       m.PaidAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainClaimSlice converts a slice of model Claims to domain Claims
func ToDomainClaimSlice(ms []models.Claim) []domain.Claim {
	ds := make([]domain.Claim, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainClaim(m)
	}
	return ds
}

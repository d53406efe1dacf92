package mapping

import (
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	"github.com/drkbluescience/verein-finanz/internal/models"
)

// ToModelTransitItem converts a domain TransitItem to its model form
func ToModelTransitItem(d domain.TransitItem) models.TransitItem {
	return models.TransitItem{
		TransitItemID:   d.TransitItemID,
		VereinID:        d.VereinID,
		AccountNo:       d.AccountNo,
		Description:     d.Description,
		IncomingDate:    d.IncomingDate,
		IncomingAmount:  d.IncomingAmount,
		OutgoingDate:    d.OutgoingDate,
		OutgoingAmount:  d.OutgoingAmount,
		Recipient:       d.Recipient,
		Reference:       d.Reference,
		Status:          models.TransitStatus(d.Status),
		IncomingEntryID: d.IncomingEntryID,
		OutgoingEntryID: d.OutgoingEntryID,
		Note:            d.Note,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransitItem converts a model TransitItem to its domain form
func ToDomainTransitItem(m models.TransitItem) domain.TransitItem {
	return domain.TransitItem{
		TransitItemID:   m.TransitItemID,
		VereinID:        m.VereinID,
		AccountNo:       m.AccountNo,
		Description:     m.Description,
		IncomingDate:    m.IncomingDate,
		IncomingAmount:  m.IncomingAmount,
		OutgoingDate:    m.OutgoingDate,
		OutgoingAmount:  m.OutgoingAmount,
		Recipient:       m.Recipient,
		Reference:       m.Reference,
		Status:          domain.TransitStatus(m.Status),
		IncomingEntryID: m.IncomingEntryID,
		OutgoingEntryID: m.OutgoingEntryID,
		Note:            m.Note,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainTransitItemSlice converts model items to domain items
func ToDomainTransitItemSlice(ms []models.TransitItem) []domain.TransitItem {
	ds := make([]domain.TransitItem, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainTransitItem(m)
	}
	return ds
}

package domain

import "time"

// Project is the minimal projection of a project this subsystem needs:
// enough to validate foreign keys and to resolve a rate snapshot. Project
// management itself lives outside this core.
type Project struct {
	ID              string
	UserID          string
	Name            string
	HourlyRateCents *int64 // overrides the user's default rate when set
}

// InvoiceStatus is the lifecycle status of an invoice as far as the
// linkage gate cares: entries may only be detached while still draft.
type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "draft"
	InvoiceStatusSent  InvoiceStatus = "sent"
)

// Invoice is the minimal projection of an invoice this subsystem needs.
// The invoicing subsystem proper is an external collaborator.
type Invoice struct {
	ID        string
	UserID    string
	Status    InvoiceStatus
	CreatedAt time.Time
}

// IsDraft reports whether the invoice has never been sent.
func (inv Invoice) IsDraft() bool {
	return inv.Status == InvoiceStatusDraft
}

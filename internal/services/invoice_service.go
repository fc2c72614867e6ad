package services

import (
	"time"

	"timeledger/internal/domain"
	"timeledger/internal/errors"
	"timeledger/internal/logging"
	"timeledger/internal/repository/sqlite"

	"github.com/google/uuid"
)

// invoiceGateImpl implements the InvoiceGate interface
type invoiceGateImpl struct {
	repo   sqlite.Repository
	mapper *domain.Mapper
	clock  Clock
}

// NewInvoiceGate creates a new InvoiceGate instance.
func NewInvoiceGate(repo sqlite.Repository) InvoiceGate {
	return NewInvoiceGateWithClock(repo, time.Now)
}

// NewInvoiceGateWithClock creates an InvoiceGate with an injected clock for
// tests.
func NewInvoiceGateWithClock(repo sqlite.Repository, clock Clock) InvoiceGate {
	return &invoiceGateImpl{
		repo:   repo,
		mapper: domain.NewMapper(),
		clock:  clock,
	}
}

// SelectBillableEntries returns the completed billable entries not yet
// attached to any invoice, optionally filtered by project and date range.
func (g *invoiceGateImpl) SelectBillableEntries(userID string, projectID *string, from, to *time.Time) ([]*domain.TimeEntry, error) {
	billable := true
	dbEntries, err := g.repo.SearchTimeEntries(sqlite.SearchOptions{
		UserID:     userID,
		From:       from,
		To:         to,
		ProjectID:  projectID,
		Billable:   &billable,
		Uninvoiced: true,
		Unlocked:   true,
	})
	if err != nil {
		return nil, err
	}

	entries := g.mapper.TimeEntry.FromDatabaseSlice(dbEntries)
	selected := make([]*domain.TimeEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsRunning() {
			continue
		}
		selected = append(selected, entry)
	}
	return selected, nil
}

// AttachToInvoice attaches and locks the given entries to a draft invoice.
// All-or-nothing: if any entry is ineligible, no entry is modified.
func (g *invoiceGateImpl) AttachToInvoice(entryIDs []string, invoiceID string) error {
	if len(entryIDs) == 0 {
		return errors.NewInvalidInputError("entry_ids", entryIDs, "must not be empty")
	}

	invoice, err := g.GetInvoice(invoiceID)
	if err != nil {
		return err
	}
	if !invoice.IsDraft() {
		return errors.NewStateConflictError("invoice is not a draft").WithContext("invoice_id", invoiceID)
	}

	if err := g.repo.AttachEntriesToInvoice(entryIDs, invoiceID, g.clock()); err != nil {
		return err
	}

	logging.Debugf("attached %d entries to invoice %s\n", len(entryIDs), invoiceID)
	return nil
}

// DetachFromDraftInvoice unlocks and detaches every entry attached to a
// draft invoice, returning the affected entry IDs. Entries on a sent
// invoice stay locked permanently.
func (g *invoiceGateImpl) DetachFromDraftInvoice(invoiceID string) ([]string, error) {
	invoice, err := g.GetInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	if !invoice.IsDraft() {
		return nil, errors.NewStateConflictError("invoice is not a draft").WithContext("invoice_id", invoiceID)
	}

	return g.repo.DetachEntriesFromInvoice(invoiceID, g.clock())
}

// CreateDraftInvoice creates an empty draft invoice for the user.
func (g *invoiceGateImpl) CreateDraftInvoice(userID string) (*domain.Invoice, error) {
	invoice := domain.Invoice{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.InvoiceStatusDraft,
		CreatedAt: g.clock(),
	}

	dbInvoice := g.mapper.Invoice.ToDatabase(invoice)
	if err := g.repo.CreateInvoice(&dbInvoice); err != nil {
		return nil, err
	}
	return &invoice, nil
}

// GetInvoice returns an invoice by id.
func (g *invoiceGateImpl) GetInvoice(invoiceID string) (*domain.Invoice, error) {
	dbInvoice, err := g.repo.GetInvoice(invoiceID)
	if err != nil {
		return nil, err
	}
	invoice := g.mapper.Invoice.FromDatabase(*dbInvoice)
	return &invoice, nil
}

// MarkInvoiceSent finalizes a draft invoice. After this the attached
// entries can never be unlocked.
func (g *invoiceGateImpl) MarkInvoiceSent(invoiceID string) error {
	invoice, err := g.GetInvoice(invoiceID)
	if err != nil {
		return err
	}
	if !invoice.IsDraft() {
		return errors.NewStateConflictError("invoice is not a draft").WithContext("invoice_id", invoiceID)
	}

	return g.repo.UpdateInvoiceStatus(invoiceID, string(domain.InvoiceStatusSent))
}

// DeleteDraftInvoice detaches every attached entry and deletes the draft.
// A sent invoice cannot be deleted.
func (g *invoiceGateImpl) DeleteDraftInvoice(invoiceID string) error {
	ids, err := g.DetachFromDraftInvoice(invoiceID)
	if err != nil {
		return err
	}

	if err := g.repo.DeleteInvoice(invoiceID); err != nil {
		return err
	}

	logging.Debugf("deleted draft invoice %s, released %d entries\n", invoiceID, len(ids))
	return nil
}

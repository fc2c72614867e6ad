package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newInvoiceCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Manage invoices and entry locking",
	}

	handler := &invoiceCommand{app: app, errorHandler: NewErrorHandler()}

	draftCmd := &cobra.Command{
		Use:   "draft",
		Short: "Create a draft invoice",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.draft()
		},
	}

	var projectID, from, to string
	billableCmd := &cobra.Command{
		Use:   "billable",
		Short: "List entries eligible for invoicing",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.billable(projectID, from, to)
		},
	}
	billableCmd.Flags().StringVar(&projectID, "project", "", "Filter by project")
	billableCmd.Flags().StringVar(&from, "from", "", "Range start date (2006-01-02)")
	billableCmd.Flags().StringVar(&to, "to", "", "Range end date, exclusive (2006-01-02)")

	attachCmd := &cobra.Command{
		Use:   "attach [invoice-id] [entry-id...]",
		Short: "Attach entries to a draft invoice",
		Long:  "Attach and lock entries to a draft invoice. All-or-nothing: one ineligible entry fails the whole batch.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.attach(args[0], args[1:])
		},
	}

	sendCmd := &cobra.Command{
		Use:   "send [invoice-id]",
		Short: "Mark a draft invoice as sent",
		Long:  "Finalize a draft invoice. Attached entries can never be unlocked afterwards.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.send(args[0])
		},
	}

	deleteCmd := &cobra.Command{
		Use:   "delete [invoice-id]",
		Short: "Delete a draft invoice",
		Long:  "Delete a draft invoice and release its entries back to editable state.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return handler.deleteDraft(args[0])
		},
	}

	cmd.AddCommand(draftCmd, billableCmd, attachCmd, sendCmd, deleteCmd)
	return cmd
}

type invoiceCommand struct {
	app          *App
	errorHandler *ErrorHandler
}

func (c *invoiceCommand) draft() error {
	invoice, err := c.app.api.CreateDraftInvoice(c.app.UserID())
	if err != nil {
		return c.errorHandler.Handle("create invoice", err)
	}
	fmt.Printf("Created draft invoice %s\n", invoice.ID)
	return nil
}

func (c *invoiceCommand) billable(projectID, fromStr, toStr string) error {
	var project *string
	if projectID != "" {
		project = &projectID
	}

	var from, to *time.Time
	if fromStr != "" {
		parsed, err := parseDate(fromStr, c.app.loc)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		from = &parsed
	}
	if toStr != "" {
		parsed, err := parseDate(toStr, c.app.loc)
		if err != nil {
			return c.errorHandler.HandleSimple(err)
		}
		to = &parsed
	}

	entries, err := c.app.api.SelectBillableEntries(c.app.UserID(), project, from, to)
	if err != nil {
		return c.errorHandler.Handle("select billable entries", err)
	}
	if len(entries) == 0 {
		fmt.Println("No billable entries")
		return nil
	}

	var totalCents int64
	for _, entry := range entries {
		fmt.Printf("%s  %s  %-8s %s  %s\n",
			entry.ID,
			entry.StartTime.Format(c.app.config.Display.DateFormat),
			formatSeconds(*entry.DurationSeconds),
			c.app.api.FormatCurrency(entry.EarningsCents()),
			entry.Description)
		totalCents += entry.EarningsCents()
	}
	fmt.Printf("Total: %s\n", c.app.api.FormatCurrency(totalCents))
	return nil
}

func (c *invoiceCommand) attach(invoiceID string, entryIDs []string) error {
	if err := c.app.api.AttachToInvoice(entryIDs, invoiceID); err != nil {
		return c.errorHandler.Handle("attach entries", err)
	}
	fmt.Printf("Attached %d entries to invoice %s\n", len(entryIDs), invoiceID)
	return nil
}

func (c *invoiceCommand) send(invoiceID string) error {
	if err := c.app.api.MarkInvoiceSent(invoiceID); err != nil {
		return c.errorHandler.Handle("send invoice", err)
	}
	fmt.Printf("Invoice %s marked as sent\n", invoiceID)
	return nil
}

func (c *invoiceCommand) deleteDraft(invoiceID string) error {
	if err := c.app.api.DeleteDraftInvoice(invoiceID); err != nil {
		return c.errorHandler.Handle("delete invoice", err)
	}
	fmt.Printf("Deleted draft invoice %s\n", invoiceID)
	return nil
}

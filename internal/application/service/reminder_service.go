package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/email"
	"go.uber.org/zap"
)

// finalNoticeAfterDays is how overdue an invoice must be before a final notice is suggested
const finalNoticeAfterDays = 30

// ReminderService composes payment reminders and tracks how many were sent
type ReminderService struct {
	store    repository.Store
	composer *email.Composer
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminderService creates a new reminder service
func NewReminderService(store repository.Store, composer *email.Composer, logger *zap.Logger) *ReminderService {
	return &ReminderService{
		store:    store,
		composer: composer,
		logger:   logger,
		now:      time.Now,
	}
}

// Reminder is a composed reminder together with the updated invoice
type Reminder struct {
	ReminderType enum.ReminderType `json:"reminder_type"`
	DaysOverdue  int               `json:"days_overdue"`
	Message      *email.Message    `json:"message"`
	Invoice      *entity.Invoice   `json:"invoice"`
}

// ReminderInfo describes whether and how a reminder should be sent
type ReminderInfo struct {
	InvoiceID             uuid.UUID          `json:"invoice_id"`
	InvoiceNo             string             `json:"invoice_no"`
	Status                enum.InvoiceStatus `json:"status"`
	DaysOverdue           int                `json:"days_overdue"`
	DaysUntilDue          int                `json:"days_until_due"`
	CanSendReminder       bool               `json:"can_send_reminder"`
	SuggestedReminderType enum.ReminderType  `json:"suggested_reminder_type"`
	RemindersSent         int                `json:"reminders_sent"`
	LastReminderDate      *time.Time         `json:"last_reminder_date,omitempty"`
}

// GenerateReminder composes a reminder for the invoice and records that it was sent.
// A SENT invoice past its due date becomes OVERDUE in the same write. The invoice
// row stays locked from read to write so concurrent payments are not overwritten.
func (s *ReminderService) GenerateReminder(ctx context.Context, id uuid.UUID, reminderType enum.ReminderType, customMessage string) (*Reminder, error) {
	if reminderType == "" {
		reminderType = enum.ReminderTypePayment
	}

	var reminder *Reminder
	err := s.store.WithinTransaction(ctx, func(tx repository.Store) error {
		invoice, err := tx.Invoices().GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if invoice == nil {
			return apperror.NewNotFoundError("Invoice")
		}
		if invoice.Status.IsTerminal() {
			return apperror.NewBadRequestError("Cannot send a reminder for a " + invoice.Status.String() + " invoice")
		}
		customer, err := tx.Parties().GetByID(ctx, invoice.CustomerID)
		if err != nil {
			return err
		}
		if customer == nil || !customer.HasEmail() {
			return apperror.NewBadRequestError("Customer has no email on file")
		}
		invoice.Customer = customer

		now := s.now().UTC()
		daysOverdue := invoice.DaysOverdue(now)
		if daysOverdue > 0 && invoice.Status == enum.InvoiceStatusSent {
			invoice.Status = enum.InvoiceStatusOverdue
		}
		invoice.RemindersSent++
		invoice.LastReminderDate = &now

		msg, err := s.composer.Compose(reminderType, email.ReminderData{
			CustomerName:  customer.Name,
			CustomerEmail: *customer.Email,
			InvoiceNo:     invoice.InvoiceNo,
			IssueDate:     invoice.IssueDate,
			DueDate:       invoice.DueDate,
			TotalAmount:   invoice.TotalAmount,
			BalanceAmount: invoice.BalanceAmount,
			DaysOverdue:   daysOverdue,
			RemindersSent: invoice.RemindersSent,
		}, customMessage)
		if err != nil {
			return err
		}
		if err := tx.Invoices().Update(ctx, invoice); err != nil {
			return err
		}

		reminder = &Reminder{
			ReminderType: reminderType,
			DaysOverdue:  daysOverdue,
			Message:      msg,
			Invoice:      invoice,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reminder generated",
		zap.String("invoice_id", id.String()),
		zap.String("type", reminderType.String()),
		zap.Int("reminders_sent", reminder.Invoice.RemindersSent),
	)
	return reminder, nil
}

// GetReminderInfo reports the reminder state of an invoice without changing it
func (s *ReminderService) GetReminderInfo(ctx context.Context, id uuid.UUID) (*ReminderInfo, error) {
	invoice, err := s.store.Invoices().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice == nil {
		return nil, apperror.NewNotFoundError("Invoice")
	}

	days := invoice.DaysOverdue(s.now().UTC())
	info := &ReminderInfo{
		InvoiceID:             invoice.ID,
		InvoiceNo:             invoice.InvoiceNo,
		Status:                invoice.Status,
		DaysOverdue:           max(0, days),
		DaysUntilDue:          max(0, -days),
		CanSendReminder:       !invoice.Status.IsTerminal(),
		SuggestedReminderType: enum.ReminderTypePayment,
		RemindersSent:         invoice.RemindersSent,
		LastReminderDate:      invoice.LastReminderDate,
	}
	if info.DaysOverdue > finalNoticeAfterDays {
		info.SuggestedReminderType = enum.ReminderTypeFinalNotice
	}
	return info, nil
}

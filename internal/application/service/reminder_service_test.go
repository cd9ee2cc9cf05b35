package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/internal/domain/repository/mocks"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/email"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

// reminderStore runs units of work inline against the mocked invoice repository
type reminderStore struct {
	repository.Store
	invoices repository.InvoiceRepository
	parties  partyLookup
	inTx     bool
}

func (s *reminderStore) Invoices() repository.InvoiceRepository { return s.invoices }

func (s *reminderStore) Parties() repository.PartyRepository { return s.parties }

func (s *reminderStore) WithinTransaction(ctx context.Context, fn func(tx repository.Store) error) error {
	s.inTx = true
	defer func() { s.inTx = false }()
	return fn(s)
}

type partyLookup map[uuid.UUID]*entity.Party

func (p partyLookup) Create(ctx context.Context, party *entity.Party) error { return nil }

func (p partyLookup) GetByID(ctx context.Context, id uuid.UUID) (*entity.Party, error) {
	return p[id], nil
}

func (p partyLookup) List(ctx context.Context, params *repository.PartyFilterParams) ([]entity.Party, int64, error) {
	return nil, 0, nil
}

func newReminderService(t *testing.T) (*ReminderService, *mocks.MockInvoiceRepository, *reminderStore) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockInvoiceRepository(ctrl)
	store := &reminderStore{invoices: repo, parties: partyLookup{}}
	svc := NewReminderService(store, email.NewComposer("Acme Traders"), zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	return svc, repo, store
}

func reminderInvoice(store *reminderStore, status enum.InvoiceStatus, due time.Time, customerEmail string) *entity.Invoice {
	customer := &entity.Party{ID: uuid.New(), Type: enum.PartyTypeCustomer, Name: "Jane Buyer"}
	if customerEmail != "" {
		customer.Email = &customerEmail
	}
	store.parties[customer.ID] = customer
	return &entity.Invoice{
		ID:            uuid.New(),
		InvoiceNo:     "INV-202403-1",
		Status:        status,
		CustomerID:    customer.ID,
		IssueDate:     due.AddDate(0, 0, -30),
		DueDate:       due,
		TotalAmount:   dec("110.00"),
		BalanceAmount: dec("110.00"),
	}
}

func TestReminderService_RejectsSettledInvoices(t *testing.T) {
	for _, status := range []enum.InvoiceStatus{enum.InvoiceStatusPaid, enum.InvoiceStatusCancelled} {
		t.Run(status.String(), func(t *testing.T) {
			svc, repo, store := newReminderService(t)
			inv := reminderInvoice(store, status, fixedNow.AddDate(0, 0, -5), "jane@example.com")
			repo.EXPECT().GetForUpdate(gomock.Any(), inv.ID).Return(inv, nil)
			repo.EXPECT().Update(gomock.Any(), gomock.Any()).Times(0)

			_, err := svc.GenerateReminder(context.Background(), inv.ID, enum.ReminderTypePayment, "")
			assertKind(t, err, apperror.KindValidation)
			assert.Equal(t, 0, inv.RemindersSent)
		})
	}
}

func TestReminderService_RequiresCustomerEmail(t *testing.T) {
	svc, repo, store := newReminderService(t)
	inv := reminderInvoice(store, enum.InvoiceStatusSent, fixedNow, "")
	repo.EXPECT().GetForUpdate(gomock.Any(), inv.ID).Return(inv, nil)

	_, err := svc.GenerateReminder(context.Background(), inv.ID, enum.ReminderTypePayment, "")
	assertKind(t, err, apperror.KindValidation)
}

func TestReminderService_NotFound(t *testing.T) {
	svc, repo, _ := newReminderService(t)
	id := uuid.New()
	repo.EXPECT().GetForUpdate(gomock.Any(), id).Return(nil, nil)

	_, err := svc.GenerateReminder(context.Background(), id, enum.ReminderTypePayment, "")
	assertKind(t, err, apperror.KindNotFound)
}

func TestReminderService_OverdueSentInvoiceBecomesOverdue(t *testing.T) {
	svc, repo, store := newReminderService(t)
	inv := reminderInvoice(store, enum.InvoiceStatusSent, fixedNow.Add(-36*time.Hour), "jane@example.com")
	gomock.InOrder(
		repo.EXPECT().GetForUpdate(gomock.Any(), inv.ID).DoAndReturn(func(context.Context, uuid.UUID) (*entity.Invoice, error) {
			assert.True(t, store.inTx, "invoice must be locked inside the unit of work")
			return inv, nil
		}),
		repo.EXPECT().Update(gomock.Any(), inv).DoAndReturn(func(_ context.Context, saved *entity.Invoice) error {
			assert.True(t, store.inTx, "invoice must be saved inside the unit of work")
			assert.Equal(t, enum.InvoiceStatusOverdue, saved.Status)
			assert.Equal(t, 1, saved.RemindersSent)
			require.NotNil(t, saved.LastReminderDate)
			assert.True(t, saved.LastReminderDate.Equal(fixedNow))
			return nil
		}),
	)

	reminder, err := svc.GenerateReminder(context.Background(), inv.ID, enum.ReminderTypePayment, "")
	require.NoError(t, err)
	assert.Equal(t, 2, reminder.DaysOverdue)
	assert.Equal(t, "jane@example.com", reminder.Message.To)
	assert.True(t, strings.HasPrefix(reminder.Message.Subject, "Overdue: "), reminder.Message.Subject)
	require.NotNil(t, reminder.Invoice.Customer)
	assert.Equal(t, "Jane Buyer", reminder.Invoice.Customer.Name)
}

func TestReminderService_CustomMessageOverridesBody(t *testing.T) {
	svc, repo, store := newReminderService(t)
	inv := reminderInvoice(store, enum.InvoiceStatusSent, fixedNow.AddDate(0, 0, 10), "jane@example.com")
	repo.EXPECT().GetForUpdate(gomock.Any(), inv.ID).Return(inv, nil)
	repo.EXPECT().Update(gomock.Any(), inv).Return(nil)

	reminder, err := svc.GenerateReminder(context.Background(), inv.ID, enum.ReminderTypePayment, "Please pay when you can.")
	require.NoError(t, err)
	assert.Equal(t, "Please pay when you can.", reminder.Message.Body)
	assert.Equal(t, "Invoice INV-202403-1 from Acme Traders", reminder.Message.Subject)
	assert.Equal(t, enum.InvoiceStatusSent, reminder.Invoice.Status)
	assert.LessOrEqual(t, reminder.DaysOverdue, 0)
}

func TestReminderService_KeepsRecordedPayments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	invoices := env.invoices()
	customer := env.party(t, enum.PartyTypeCustomer, "billing@example.com")

	inv, err := invoices.Create(ctx, serviceInvoice(customer, fixedNow.AddDate(0, 0, -40), "50.00"))
	require.NoError(t, err)
	_, err = invoices.Send(ctx, inv.ID)
	require.NoError(t, err)
	_, err = invoices.RecordPayment(ctx, inv.ID, &PaymentInput{Amount: dec("60.00"), PaymentMethod: "bank"})
	require.NoError(t, err)

	reminders := NewReminderService(env.store, email.NewComposer("Acme Traders"), env.logger)
	reminders.now = func() time.Time { return fixedNow }
	reminder, err := reminders.GenerateReminder(ctx, inv.ID, enum.ReminderTypePayment, "")
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, reminder.Invoice.Status)

	stored, err := invoices.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, enum.InvoiceStatusOverdue, stored.Status)
	assert.Equal(t, 1, stored.RemindersSent)
	assertMoney(t, "60.00", stored.PaidAmount)
	assertMoney(t, "50.00", stored.BalanceAmount)
	assert.Len(t, stored.Payments, 1)
}

func TestReminderService_GetReminderInfo(t *testing.T) {
	svc, repo, store := newReminderService(t)
	inv := reminderInvoice(store, enum.InvoiceStatusOverdue, fixedNow.AddDate(0, 0, -45), "jane@example.com")
	inv.RemindersSent = 3
	repo.EXPECT().GetByID(gomock.Any(), inv.ID).Return(inv, nil)

	info, err := svc.GetReminderInfo(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 45, info.DaysOverdue)
	assert.Equal(t, 0, info.DaysUntilDue)
	assert.True(t, info.CanSendReminder)
	assert.Equal(t, enum.ReminderTypeFinalNotice, info.SuggestedReminderType)
	assert.Equal(t, 3, info.RemindersSent)
}

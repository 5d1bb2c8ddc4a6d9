package user_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/amirasaad/payadvance/internal/fixtures/fakes"
	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/provider"
	usersvc "github.com/amirasaad/payadvance/pkg/service/user"
	"github.com/amirasaad/payadvance/pkg/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMain(m *testing.M) {
	utils.HashCost = bcrypt.MinCost
	m.Run()
}

func newService(t *testing.T) (*usersvc.Service, *fakes.UoW) {
	t.Helper()
	uow := fakes.NewUoW()
	svc := usersvc.New(config.Deps{Uow: uow, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))})
	return svc, uow
}

func register(t *testing.T, svc *usersvc.Service, email string, role user.Role) *user.User {
	t.Helper()
	u, err := svc.Register(context.Background(), user.Registration{
		Email: email, Password: "password123", FirstName: "Test", LastName: "User", Role: role,
	})
	require.NoError(t, err)
	return u
}

func TestRegister(t *testing.T) {
	svc, uow := newService(t)

	u := register(t, svc, "Alice@Example.com", "")
	assert.NotZero(t, u.ID)
	assert.Equal(t, user.RoleEmployee, u.Role)

	got, err := svc.GetByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Register(context.Background(), user.Registration{
		Email: "alice@example.com", Password: "password123", FirstName: "A", LastName: "B",
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	assert.Equal(t, []events.EventType{events.EventTypeUserCreated}, uow.RecordedTypes())
}

func TestUpdateKycStatus(t *testing.T) {
	svc, uow := newService(t)
	u := register(t, svc, "kyc@example.com", user.RoleEmployee)

	_, err := svc.UpdateKycStatus(context.Background(), u.ID, user.KycVerified)
	assert.ErrorIs(t, err, domain.ErrIllegalTransition)

	_, err = svc.UpdateKycStatus(context.Background(), u.ID, user.KycInProgress)
	require.NoError(t, err)
	got, err := svc.UpdateKycStatus(context.Background(), u.ID, user.KycVerified)
	require.NoError(t, err)
	assert.Equal(t, user.KycVerified, got.KycStatus)

	_, err = svc.UpdateKycStatus(context.Background(), 999, user.KycInProgress)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, []events.EventType{
		events.EventTypeUserCreated,
		events.EventTypeUserUpdated,
		events.EventTypeUserVerified,
	}, uow.RecordedTypes())
}

func TestProfiles(t *testing.T) {
	svc, _ := newService(t)
	employer := register(t, svc, "boss@example.com", user.RoleEmployer)
	employee := register(t, svc, "worker@example.com", user.RoleEmployee)

	err := svc.CreateEmployeeProfile(context.Background(), &user.EmployeeProfile{
		UserID: employee.ID, EmployerID: employer.ID, MonthlySalary: decimal.NewFromInt(3000),
	})
	assert.ErrorIs(t, err, usersvc.ErrEmployerNotFound)

	require.NoError(t, svc.CreateEmployerProfile(context.Background(), &user.EmployerProfile{
		UserID: employer.ID, CompanyName: "Acme",
	}))
	employerProfile, err := svc.GetEmployerProfile(context.Background(), employer.ID)
	require.NoError(t, err)
	assert.Equal(t, user.DefaultMaxAdvancePercent, employerProfile.MaxAdvancePercent)

	require.NoError(t, svc.CreateEmployeeProfile(context.Background(), &user.EmployeeProfile{
		UserID: employee.ID, EmployerID: employer.ID, MonthlySalary: decimal.NewFromInt(3000), JobTitle: "Clerk",
	}))
	err = svc.CreateEmployeeProfile(context.Background(), &user.EmployeeProfile{
		UserID: employee.ID, MonthlySalary: decimal.NewFromInt(1),
	})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)

	updated, err := svc.UpdateEmployeeProfile(context.Background(), employee.ID, &user.EmployeeProfile{
		EmployerID: employer.ID, MonthlySalary: decimal.NewFromInt(3600), JobTitle: "Senior clerk",
	})
	require.NoError(t, err)
	assert.Equal(t, employee.ID, updated.UserID)
	assert.Equal(t, "Senior clerk", updated.JobTitle)

	staff, err := svc.ListEmployees(context.Background(), employer.ID)
	require.NoError(t, err)
	require.Len(t, staff, 1)
	assert.Equal(t, employee.ID, staff[0].UserID)

	_, err = svc.ListEmployees(context.Background(), employee.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	renamed, err := svc.UpdateEmployerProfile(context.Background(), employer.ID, &user.EmployerProfile{CompanyName: "Acme Ltd"})
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", renamed.CompanyName)
}

func TestCreateProfileForUnknownUser(t *testing.T) {
	svc, _ := newService(t)
	err := svc.CreateEmployeeProfile(context.Background(), &user.EmployeeProfile{
		UserID: 42, MonthlySalary: decimal.NewFromInt(1000),
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetSalaryInfo(t *testing.T) {
	svc, _ := newService(t)
	svc.SetClock(func() time.Time { return time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC) })
	employee := register(t, svc, "paid@example.com", user.RoleEmployee)

	_, err := svc.GetSalaryInfo(context.Background(), employee.ID)
	assert.ErrorIs(t, err, provider.ErrSalaryNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.CreateEmployeeProfile(context.Background(), &user.EmployeeProfile{
		UserID: employee.ID, MonthlySalary: decimal.RequireFromString("3000.00"),
	}))
	info, err := svc.GetSalaryInfo(context.Background(), employee.ID)
	require.NoError(t, err)
	assert.Equal(t, "3000.00", info.MonthlySalary.StringFixed(2))
	assert.Equal(t, "1000.00", info.EarnedAmount.StringFixed(2))
}

func TestDeliverNotification(t *testing.T) {
	svc, uow := newService(t)
	u := register(t, svc, "notify@example.com", user.RoleEmployee)
	source := uuid.New()

	require.NoError(t, svc.DeliverNotification(context.Background(), events.NotificationPayload{
		RecipientID: u.ID, Channel: "EMAIL", Subject: "hi", Message: "approved", SourceEventID: source,
	}))
	require.NoError(t, svc.DeliverNotification(context.Background(), events.NotificationPayload{
		RecipientID: 999, Channel: "EMAIL", Subject: "lost", Message: "nobody home",
	}))

	msgs := uow.Outbox()
	require.Len(t, msgs, 2)
	assert.Equal(t, events.EventTypeNotificationDelivered, msgs[1].EventType)
	env, err := events.Unmarshal(msgs[1].Envelope)
	require.NoError(t, err)
	payload, err := events.Decode[events.NotificationPayload](env)
	require.NoError(t, err)
	assert.Equal(t, source, payload.SourceEventID)

	stored := uow.Notifications(u.ID)
	require.Len(t, stored, 1)
	assert.Equal(t, "approved", stored[0].Message)
	assert.Equal(t, source, stored[0].SourceEventID)
	assert.False(t, stored[0].Read)
	assert.Empty(t, uow.Notifications(999))
}

func TestDeliverNotificationSkipsRedelivery(t *testing.T) {
	svc, uow := newService(t)
	u := register(t, svc, "again@example.com", user.RoleEmployee)
	notice := events.NotificationPayload{
		RecipientID: u.ID, Channel: "EMAIL", Subject: "hi", Message: "approved", SourceEventID: uuid.New(),
	}

	require.NoError(t, svc.DeliverNotification(context.Background(), notice))
	require.NoError(t, svc.DeliverNotification(context.Background(), notice))

	assert.Len(t, uow.Notifications(u.ID), 1)
	assert.Equal(t, []events.EventType{
		events.EventTypeUserCreated,
		events.EventTypeNotificationDelivered,
	}, uow.RecordedTypes())
}

func TestDeliverNotificationRejectsEmptyMessage(t *testing.T) {
	svc, _ := newService(t)
	err := svc.DeliverNotification(context.Background(), events.NotificationPayload{RecipientID: 1, Subject: "hi"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestNotificationInbox(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	owner := register(t, svc, "owner@example.com", user.RoleEmployee)
	other := register(t, svc, "other@example.com", user.RoleEmployee)
	for _, subject := range []string{"first", "second"} {
		require.NoError(t, svc.DeliverNotification(ctx, events.NotificationPayload{
			RecipientID: owner.ID, Channel: "EMAIL", Subject: subject, Message: "body", SourceEventID: uuid.New(),
		}))
	}

	list, err := svc.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Subject)

	empty, err := svc.ListNotifications(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = svc.MarkNotificationRead(ctx, other.ID, list[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.MarkNotificationRead(ctx, owner.ID, 404)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	read, err := svc.MarkNotificationRead(ctx, owner.ID, list[0].ID)
	require.NoError(t, err)
	assert.True(t, read.Read)
	require.NotNil(t, read.ReadAt)

	again, err := svc.MarkNotificationRead(ctx, owner.ID, list[0].ID)
	require.NoError(t, err)
	assert.Equal(t, *read.ReadAt, *again.ReadAt)

	list, err = svc.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	assert.True(t, list[0].Read)
	assert.False(t, list[1].Read)
}

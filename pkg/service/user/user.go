// Package user provides business logic for users, their KYC lifecycle and
// employee/employer profiles. It also serves salary information to the
// advance service and delivers notifications.
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/amirasaad/payadvance/pkg/config"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/amirasaad/payadvance/pkg/domain/notification"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	"github.com/amirasaad/payadvance/pkg/outbox"
	"github.com/amirasaad/payadvance/pkg/provider"
	"github.com/amirasaad/payadvance/pkg/repository"
	notificationrepo "github.com/amirasaad/payadvance/pkg/repository/notification"
	userrepo "github.com/amirasaad/payadvance/pkg/repository/user"
)

// ErrEmployerNotFound is returned when a profile names an unknown employer.
var ErrEmployerNotFound = fmt.Errorf("%w: employer profile not found", domain.ErrValidation)

// Service provides business logic for users and profiles.
type Service struct {
	uow    repository.UnitOfWork
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new Service.
func New(deps config.Deps) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		uow:    deps.Uow,
		logger: logger.With("service", "user"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with a hashed password and KYC PENDING.
func (s *Service) Register(ctx context.Context, reg user.Registration) (*user.User, error) {
	u, err := user.New(reg)
	if err != nil {
		return nil, err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, u); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, events.EventTypeUserCreated, u.ID, u.Payload())
		return err
	})
	if err != nil {
		s.logger.Warn("⚠️ Registration failed", "email", u.Email, "error", err)
		return nil, err
	}
	s.logger.Info("✅ [SUCCESS] User registered", "user_id", u.ID, "role", u.Role)
	return u, nil
}

// Get retrieves a user by ID.
func (s *Service) Get(ctx context.Context, id uint) (*user.User, error) {
	repo, err := repository.Get[userrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

// GetByEmail retrieves a user by email.
func (s *Service) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	repo, err := repository.Get[userrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.GetByEmail(ctx, email)
}

// UpdateKycStatus moves the user's KYC status forward.
func (s *Service) UpdateKycStatus(ctx context.Context, id uint, status user.KycStatus) (u *user.User, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		if u, err = repo.Get(ctx, id); err != nil {
			return err
		}
		if err := u.SetKycStatus(status, s.now()); err != nil {
			return err
		}
		if err := repo.Update(ctx, u); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, user.KycEventType(u.KycStatus), u.ID, u.Payload())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("KYC status updated", "user_id", id, "kyc_status", status)
	return u, nil
}

// CreateEmployeeProfile attaches an employee profile to an existing user.
func (s *Service) CreateEmployeeProfile(ctx context.Context, p *user.EmployeeProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		if err := s.checkEmployeeRefs(ctx, uow, p); err != nil {
			return err
		}
		repo, err := repository.Get[userrepo.EmployeeProfileRepository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, events.EventTypeEmployeeProfileCreated, p.ID, p.Payload())
		return err
	})
}

// GetEmployeeProfile returns the employee profile of a user.
func (s *Service) GetEmployeeProfile(ctx context.Context, userID uint) (*user.EmployeeProfile, error) {
	repo, err := repository.Get[userrepo.EmployeeProfileRepository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.GetByUserID(ctx, userID)
}

// UpdateEmployeeProfile replaces the editable fields of a user's profile.
func (s *Service) UpdateEmployeeProfile(ctx context.Context, userID uint, in *user.EmployeeProfile) (p *user.EmployeeProfile, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.EmployeeProfileRepository](uow)
		if err != nil {
			return err
		}
		current, err := repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		p = in
		p.ID, p.UserID, p.CreatedAt = current.ID, current.UserID, current.CreatedAt
		p.UpdatedAt = s.now()
		if err := p.Validate(); err != nil {
			return err
		}
		if err := s.checkEmployeeRefs(ctx, uow, p); err != nil {
			return err
		}
		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, events.EventTypeEmployeeProfileUpdated, p.ID, p.Payload())
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) checkEmployeeRefs(ctx context.Context, uow repository.UnitOfWork, p *user.EmployeeProfile) error {
	users, err := repository.Get[userrepo.Repository](uow)
	if err != nil {
		return err
	}
	if _, err := users.Get(ctx, p.UserID); err != nil {
		return err
	}
	if p.EmployerID == 0 {
		return nil
	}
	employers, err := repository.Get[userrepo.EmployerProfileRepository](uow)
	if err != nil {
		return err
	}
	if _, err := employers.GetByUserID(ctx, p.EmployerID); errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrEmployerNotFound, p.EmployerID)
	} else if err != nil {
		return err
	}
	return nil
}

// CreateEmployerProfile attaches an employer profile to an existing user.
func (s *Service) CreateEmployerProfile(ctx context.Context, p *user.EmployerProfile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	now := s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	return s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		if _, err := users.Get(ctx, p.UserID); err != nil {
			return err
		}
		repo, err := repository.Get[userrepo.EmployerProfileRepository](uow)
		if err != nil {
			return err
		}
		if err := repo.Create(ctx, p); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, events.EventTypeEmployerProfileCreated, p.ID, p.Payload())
		return err
	})
}

// GetEmployerProfile returns the employer profile of a user.
func (s *Service) GetEmployerProfile(ctx context.Context, userID uint) (*user.EmployerProfile, error) {
	repo, err := repository.Get[userrepo.EmployerProfileRepository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.GetByUserID(ctx, userID)
}

// UpdateEmployerProfile replaces the editable fields of an employer profile.
func (s *Service) UpdateEmployerProfile(ctx context.Context, userID uint, in *user.EmployerProfile) (p *user.EmployerProfile, err error) {
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[userrepo.EmployerProfileRepository](uow)
		if err != nil {
			return err
		}
		current, err := repo.GetByUserID(ctx, userID)
		if err != nil {
			return err
		}
		p = in
		p.ID, p.UserID, p.CreatedAt = current.ID, current.UserID, current.CreatedAt
		p.UpdatedAt = s.now()
		if err := p.Validate(); err != nil {
			return err
		}
		if err := repo.Update(ctx, p); err != nil {
			return err
		}
		_, err = outbox.Record(ctx, uow, events.EventTypeEmployerProfileUpdated, p.ID, p.Payload())
		return err
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListEmployees returns the employee profiles of an employer.
func (s *Service) ListEmployees(ctx context.Context, employerUserID uint) ([]*user.EmployeeProfile, error) {
	if _, err := s.GetEmployerProfile(ctx, employerUserID); err != nil {
		return nil, err
	}
	repo, err := repository.Get[userrepo.EmployeeProfileRepository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByEmployer(ctx, employerUserID)
}

// GetSalaryInfo reports the employee's salary and what has been earned so
// far this month. An employee without a profile yields provider.ErrSalaryNotFound.
func (s *Service) GetSalaryInfo(ctx context.Context, employeeID uint) (*user.SalaryInfo, error) {
	p, err := s.GetEmployeeProfile(ctx, employeeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: employee %d", provider.ErrSalaryNotFound, employeeID)
	}
	if err != nil {
		return nil, err
	}
	info := p.SalaryInfo(s.now())
	return &info, nil
}

// DeliverNotification stores a requested notification for its recipient and
// records its delivery. Notifications for unknown recipients are dropped, and
// a notification already stored for the same source event is skipped.
func (s *Service) DeliverNotification(ctx context.Context, notice events.NotificationPayload) error {
	log := s.logger.With("recipient_id", notice.RecipientID, "channel", notice.Channel, "source_event_id", notice.SourceEventID)
	n, err := notification.FromRequest(notice, s.now())
	if err != nil {
		return err
	}
	err = s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		users, err := repository.Get[userrepo.Repository](uow)
		if err != nil {
			return err
		}
		u, err := users.Get(ctx, notice.RecipientID)
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("⚠️ Notification recipient not found, dropping")
			return nil
		}
		if err != nil {
			return err
		}
		notifications, err := repository.Get[notificationrepo.Repository](uow)
		if err != nil {
			return err
		}
		if err := notifications.Create(ctx, n); err != nil {
			return err
		}
		log.Info("📧 Notification delivered", "to", u.Email, "subject", n.Subject, "notification_id", n.ID)
		_, err = outbox.Record(ctx, uow, events.EventTypeNotificationDelivered, u.ID, notice)
		return err
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		log.Info("🔁 [SKIP] Notification already delivered")
		return nil
	}
	return err
}

// ListNotifications returns the user's notifications, newest first.
func (s *Service) ListNotifications(ctx context.Context, userID uint) ([]*notification.Notification, error) {
	repo, err := repository.Get[notificationrepo.Repository](s.uow)
	if err != nil {
		return nil, err
	}
	return repo.ListByUser(ctx, userID)
}

// MarkNotificationRead flags one of the user's notifications as read. A
// notification of another user is reported as not found.
func (s *Service) MarkNotificationRead(ctx context.Context, userID, id uint) (*notification.Notification, error) {
	var n *notification.Notification
	err := s.uow.Do(ctx, func(uow repository.UnitOfWork) error {
		repo, err := repository.Get[notificationrepo.Repository](uow)
		if err != nil {
			return err
		}
		n, err = repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if n.UserID != userID {
			return fmt.Errorf("%w: notification %d", domain.ErrNotFound, id)
		}
		if n.Read {
			return nil
		}
		n.MarkRead(s.now())
		return repo.MarkRead(ctx, n)
	})
	if err != nil {
		return nil, err
	}
	return n, nil
}

var _ provider.SalaryProvider = (*Service)(nil)

package user

import (
	"context"
	"strings"

	infrarepo "github.com/amirasaad/payadvance/infra/repository"
	"github.com/amirasaad/payadvance/pkg/domain/user"
	userrepo "github.com/amirasaad/payadvance/pkg/repository/user"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New creates a new user repository with the given database connection.
func New(db *gorm.DB) userrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, u *user.User) error {
	m := mapUserToModel(u)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	u.ID = m.ID
	return nil
}

func (r *repository) Get(ctx context.Context, id uint) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToUser(&m), nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	var m User
	if err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(email)).
		First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToUser(&m), nil
}

func (r *repository) Update(ctx context.Context, u *user.User) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&User{}).
			Where("id = ?", u.ID).
			Updates(map[string]any{
				"first_name":   u.FirstName,
				"last_name":    u.LastName,
				"phone_number": u.PhoneNumber,
				"kyc_status":   string(u.KycStatus),
				"updated_at":   u.UpdatedAt,
			}).Error
	})
}

func (r *repository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&User{}).
		Where("email = ?", strings.ToLower(email)).
		Count(&count).Error
	if err != nil {
		return false, infrarepo.MapGormErrorToDomain(err)
	}
	return count > 0, nil
}

var _ userrepo.Repository = (*repository)(nil)

type employeeRepository struct {
	db *gorm.DB
}

// NewEmployeeProfile returns a gorm-backed employee profile repository.
func NewEmployeeProfile(db *gorm.DB) userrepo.EmployeeProfileRepository {
	return &employeeRepository{db: db}
}

func (r *employeeRepository) Create(ctx context.Context, p *user.EmployeeProfile) error {
	m := mapEmployeeToModel(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	p.ID = m.ID
	return nil
}

func (r *employeeRepository) GetByUserID(ctx context.Context, userID uint) (*user.EmployeeProfile, error) {
	var m EmployeeProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToEmployee(&m), nil
}

func (r *employeeRepository) Update(ctx context.Context, p *user.EmployeeProfile) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Save(mapEmployeeToModel(p)).Error
	})
}

func (r *employeeRepository) ListByEmployer(ctx context.Context, employerID uint) ([]*user.EmployeeProfile, error) {
	var models []EmployeeProfile
	if err := r.db.WithContext(ctx).
		Where("employer_id = ?", employerID).
		Order("id ASC").
		Find(&models).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*user.EmployeeProfile, 0, len(models))
	for i := range models {
		out = append(out, mapModelToEmployee(&models[i]))
	}
	return out, nil
}

var _ userrepo.EmployeeProfileRepository = (*employeeRepository)(nil)

type employerRepository struct {
	db *gorm.DB
}

// NewEmployerProfile returns a gorm-backed employer profile repository.
func NewEmployerProfile(db *gorm.DB) userrepo.EmployerProfileRepository {
	return &employerRepository{db: db}
}

func (r *employerRepository) Create(ctx context.Context, p *user.EmployerProfile) error {
	m := mapEmployerToModel(p)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	p.ID = m.ID
	return nil
}

func (r *employerRepository) GetByUserID(ctx context.Context, userID uint) (*user.EmployerProfile, error) {
	var m EmployerProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToEmployer(&m), nil
}

func (r *employerRepository) Update(ctx context.Context, p *user.EmployerProfile) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Save(mapEmployerToModel(p)).Error
	})
}

var _ userrepo.EmployerProfileRepository = (*employerRepository)(nil)

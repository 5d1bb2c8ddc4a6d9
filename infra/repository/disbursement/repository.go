package disbursement

import (
	"context"
	"time"

	infrarepo "github.com/amirasaad/payadvance/infra/repository"
	"github.com/amirasaad/payadvance/pkg/domain/disbursement"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	disbursementrepo "github.com/amirasaad/payadvance/pkg/repository/disbursement"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed disbursement repository.
func New(db *gorm.DB) disbursementrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d *disbursement.Disbursement) error {
	m := mapDomainToModel(d)
	m.Version = 1
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	d.ID = m.ID
	d.Version = m.Version
	return nil
}

func (r *repository) Get(ctx context.Context, id uint) (*disbursement.Disbursement, error) {
	var m Disbursement
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) GetByAdvanceRequest(ctx context.Context, advanceRequestID uint) (*disbursement.Disbursement, error) {
	var m Disbursement
	if err := r.db.WithContext(ctx).
		Where("advance_request_id = ?", advanceRequestID).
		First(&m).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID uint) ([]*disbursement.Disbursement, error) {
	var models []Disbursement
	if err := r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelsToDomain(models), nil
}

func (r *repository) Update(ctx context.Context, d *disbursement.Disbursement) error {
	err := infrarepo.UpdateVersioned(r.db.WithContext(ctx), &Disbursement{}, d.ID, d.Version, map[string]any{
		"status":                string(d.Status),
		"transaction_reference": d.TransactionReference,
		"disbursement_date":     d.DisbursementDate,
		"failure_reason":        d.FailureReason,
		"updated_at":            d.UpdatedAt,
	})
	if err != nil {
		return err
	}
	d.Version++
	return nil
}

func (r *repository) ListStale(ctx context.Context, status payment.Status, before time.Time, limit int) ([]*disbursement.Disbursement, error) {
	var models []Disbursement
	if err := r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", string(status), before).
		Order("updated_at ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelsToDomain(models), nil
}

var _ disbursementrepo.Repository = (*repository)(nil)

package repayment

import (
	"context"
	"time"

	infrarepo "github.com/amirasaad/payadvance/infra/repository"
	"github.com/amirasaad/payadvance/pkg/domain/payment"
	"github.com/amirasaad/payadvance/pkg/domain/repayment"
	repaymentrepo "github.com/amirasaad/payadvance/pkg/repository/repayment"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed repayment repository.
func New(db *gorm.DB) repaymentrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, rp *repayment.Repayment) error {
	m := mapDomainToModel(rp)
	m.Version = 1
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	rp.ID = m.ID
	rp.Version = m.Version
	return nil
}

func (r *repository) Get(ctx context.Context, id uint) (*repayment.Repayment, error) {
	var m Repayment
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) ListByDisbursement(ctx context.Context, disbursementID uint) ([]*repayment.Repayment, error) {
	return r.find(r.db.WithContext(ctx).
		Where("disbursement_id = ?", disbursementID).
		Order("payment_date ASC, id ASC"))
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID uint) ([]*repayment.Repayment, error) {
	return r.find(r.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("created_at DESC, id DESC"))
}

func (r *repository) Update(ctx context.Context, rp *repayment.Repayment) error {
	err := infrarepo.UpdateVersioned(r.db.WithContext(ctx), &Repayment{}, rp.ID, rp.Version, map[string]any{
		"status":                string(rp.Status),
		"payment_date":          rp.PaymentDate,
		"transaction_reference": rp.TransactionReference,
		"failure_reason":        rp.FailureReason,
		"updated_at":            rp.UpdatedAt,
	})
	if err != nil {
		return err
	}
	rp.Version++
	return nil
}

func (r *repository) ListStale(ctx context.Context, status payment.Status, before time.Time, limit int) ([]*repayment.Repayment, error) {
	return r.find(r.db.WithContext(ctx).
		Where("status = ? AND updated_at < ?", string(status), before).
		Order("updated_at ASC").
		Limit(limit))
}

func (r *repository) find(q *gorm.DB) ([]*repayment.Repayment, error) {
	var models []Repayment
	if err := q.Find(&models).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*repayment.Repayment, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out, nil
}

var _ repaymentrepo.Repository = (*repository)(nil)

package advance

import (
	"context"

	infrarepo "github.com/amirasaad/payadvance/infra/repository"
	"github.com/amirasaad/payadvance/pkg/domain/advance"
	advancerepo "github.com/amirasaad/payadvance/pkg/repository/advance"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed advance request repository.
func New(db *gorm.DB) advancerepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, a *advance.AdvanceRequest) error {
	m := mapDomainToModel(a)
	m.Version = 1
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	a.ID = m.ID
	a.Version = m.Version
	return nil
}

func (r *repository) Get(ctx context.Context, id uint) (*advance.AdvanceRequest, error) {
	var m AdvanceRequest
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) Update(ctx context.Context, a *advance.AdvanceRequest) error {
	err := infrarepo.UpdateVersioned(r.db.WithContext(ctx), &AdvanceRequest{}, a.ID, a.Version, map[string]any{
		"status":           string(a.Status),
		"approved_by":      a.ApprovedBy,
		"approval_date":    a.ApprovalDate,
		"rejection_reason": a.RejectionReason,
		"updated_at":       a.UpdatedAt,
	})
	if err != nil {
		return err
	}
	a.Version++
	return nil
}

func (r *repository) ListByEmployee(ctx context.Context, employeeID uint) ([]*advance.AdvanceRequest, error) {
	return r.list(ctx, "employee_id = ?", employeeID)
}

func (r *repository) ListByStatus(ctx context.Context, status advance.Status) ([]*advance.AdvanceRequest, error) {
	return r.list(ctx, "status = ?", string(status))
}

func (r *repository) HasOutstanding(ctx context.Context, employeeID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AdvanceRequest{}).
		Where("employee_id = ? AND status IN ?", employeeID,
			[]string{string(advance.StatusPending), string(advance.StatusApproved)}).
		Count(&count).Error
	if err != nil {
		return false, infrarepo.MapGormErrorToDomain(err)
	}
	return count > 0, nil
}

func (r *repository) list(ctx context.Context, query string, arg any) ([]*advance.AdvanceRequest, error) {
	var models []AdvanceRequest
	if err := r.db.WithContext(ctx).
		Where(query, arg).
		Order("created_at DESC, id DESC").
		Find(&models).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*advance.AdvanceRequest, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out, nil
}

var _ advancerepo.Repository = (*repository)(nil)

package notification

import (
	"context"
	"fmt"

	infrarepo "github.com/amirasaad/payadvance/infra/repository"
	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/notification"
	notificationrepo "github.com/amirasaad/payadvance/pkg/repository/notification"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed notification repository.
func New(db *gorm.DB) notificationrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *notification.Notification) error {
	m := mapDomainToModel(n)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return infrarepo.MapGormErrorToDomain(err)
	}
	n.ID = m.ID
	return nil
}

func (r *repository) Get(ctx context.Context, id uint) (*notification.Notification, error) {
	var m Notification
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	return mapModelToDomain(&m), nil
}

func (r *repository) ListByUser(ctx context.Context, userID uint) ([]*notification.Notification, error) {
	var models []Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*notification.Notification, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out, nil
}

func (r *repository) MarkRead(ctx context.Context, n *notification.Notification) error {
	res := r.db.WithContext(ctx).Model(&Notification{}).
		Where("id = ?", n.ID).
		Updates(map[string]any{
			"is_read": n.Read,
			"read_at": n.ReadAt,
		})
	if res.Error != nil {
		return infrarepo.MapGormErrorToDomain(res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %d", domain.ErrNotFound, n.ID)
	}
	return nil
}

var _ notificationrepo.Repository = (*repository)(nil)

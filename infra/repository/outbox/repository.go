package outbox

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	infrarepo "github.com/amirasaad/payadvance/infra/repository"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	outboxrepo "github.com/amirasaad/payadvance/pkg/repository/outbox"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxErrorLength = 1000

type repository struct {
	db *gorm.DB
}

// New returns a gorm-backed outbox repository.
func New(db *gorm.DB) outboxrepo.Repository {
	return &repository{db: db}
}

func (r *repository) Add(ctx context.Context, env events.Envelope) error {
	topic, err := events.TopicFor(env.EventType)
	if err != nil {
		return err
	}
	data, err := env.Marshal()
	if err != nil {
		return fmt.Errorf("outbox: marshal envelope: %w", err)
	}
	m := &Message{
		EventID:   env.EventID,
		Topic:     topic.String(),
		EventType: env.EventType.String(),
		EntityID:  env.EntityID,
		Envelope:  data,
		CreatedAt: time.Now().UTC(),
	}
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Create(m).Error
	})
}

func (r *repository) Pending(ctx context.Context, limit, maxAttempts int) ([]*outboxrepo.Message, error) {
	var models []Message
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("dispatched_at IS NULL AND attempts < ?", maxAttempts).
		Order("id ASC").
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, infrarepo.MapGormErrorToDomain(err)
	}
	out := make([]*outboxrepo.Message, 0, len(models))
	for i := range models {
		out = append(out, mapModelToDomain(&models[i]))
	}
	return out, nil
}

func (r *repository) MarkDispatched(ctx context.Context, id uint, at time.Time) error {
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Message{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"dispatched_at": at,
				"attempts":      gorm.Expr("attempts + 1"),
				"last_error":    "",
			}).Error
	})
}

func (r *repository) MarkFailed(ctx context.Context, id uint, reason string) error {
	reason = truncateReason(reason)
	return infrarepo.WrapError(func() error {
		return r.db.WithContext(ctx).Model(&Message{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"attempts":   gorm.Expr("attempts + 1"),
				"last_error": reason,
			}).Error
	})
}

// truncateReason cuts reason to at most maxErrorLength bytes without
// splitting a UTF-8 sequence.
func truncateReason(reason string) string {
	reason = strings.ToValidUTF8(reason, "\uFFFD")
	if len(reason) <= maxErrorLength {
		return reason
	}
	cut := maxErrorLength
	for cut > 0 && !utf8.RuneStart(reason[cut]) {
		cut--
	}
	return reason[:cut]
}

var _ outboxrepo.Repository = (*repository)(nil)

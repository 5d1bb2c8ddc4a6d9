// Package common holds helpers shared by the event listeners.
package common

import (
	"errors"
	"log/slog"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
)

// Permanent reports whether redelivering the same envelope can never
// succeed: the payload is unusable or the state it asks for is already
// reached or impossible.
func Permanent(err error) bool {
	return errors.Is(err, events.ErrInvalidEnvelope) ||
		errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrIllegalTransition) ||
		errors.Is(err, domain.ErrAlreadyExists)
}

// Settle logs err and returns only errors worth a redelivery. Permanent
// errors are dropped; everything else goes back to the transport.
func Settle(log *slog.Logger, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrAlreadyExists) {
		log.Info("🔁 [SKIP] Already handled", "reason", err)
		return nil
	}
	if Permanent(err) {
		log.Warn("⚠️ Dropping event", "error", err)
		return nil
	}
	log.Error("❌ [ERROR] Handler failed, returning to transport", "error", err)
	return err
}

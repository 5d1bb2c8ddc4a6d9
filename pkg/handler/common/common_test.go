package common

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/amirasaad/payadvance/pkg/domain"
	"github.com/amirasaad/payadvance/pkg/domain/events"
	"github.com/stretchr/testify/assert"
)

func TestSettle(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	transient := errors.New("connection reset")

	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"undecodable", fmt.Errorf("%w: bad json", events.ErrInvalidEnvelope), nil},
		{"validation", fmt.Errorf("%w: amount", domain.ErrValidation), nil},
		{"duplicate", domain.ErrAlreadyExists, nil},
		{"not found", domain.ErrNotFound, nil},
		{"illegal", domain.ErrIllegalTransition, nil},
		{"concurrent update is retried", domain.ErrConcurrentUpdate, domain.ErrConcurrentUpdate},
		{"dependency is retried", domain.ErrDependencyUnavailable, domain.ErrDependencyUnavailable},
		{"transient", transient, transient},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Settle(log, tt.err))
		})
	}
}

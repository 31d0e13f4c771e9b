package services

import (
	"context"
	"time"

	"mealrec/models"
	"mealrec/repository"

	"github.com/rs/zerolog"
)

const AlertAllergen = "allergen"

// Broadcaster pushes a payload to a user's live connections.
type Broadcaster interface {
	Broadcast(userID uint, payload any)
}

// AlertBus persists alerts and pushes them to connected clients.
type AlertBus struct {
	alerts repository.AlertRepository
	rt     Broadcaster
	log    zerolog.Logger
}

func NewAlertBus(alerts repository.AlertRepository, rt Broadcaster, log zerolog.Logger) *AlertBus {
	return &AlertBus{alerts: alerts, rt: rt, log: log.With().Str("component", "alerts").Logger()}
}

// Emit never fails the caller; a lost alert is logged.
func (b *AlertBus) Emit(ctx context.Context, userID uint, typ, message string) {
	if b == nil {
		return
	}
	a := &models.Alert{UserID: userID, Type: typ, Message: message, CreatedAt: time.Now()}
	if err := b.alerts.Create(ctx, a); err != nil {
		b.log.Error().Err(err).Uint("user_id", userID).Str("type", typ).Msg("persist alert")
		return
	}
	if b.rt != nil {
		b.rt.Broadcast(userID, map[string]any{
			"kind":  "alert.created",
			"alert": a,
		})
	}
}

func (b *AlertBus) List(ctx context.Context, userID uint, limit int) ([]models.Alert, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return b.alerts.ListByUser(ctx, userID, limit)
}

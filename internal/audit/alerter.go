package audit

import (
	"context"
	"log/slog"

	"github.com/attaboy/trustplane/internal/domain"
	"github.com/attaboy/trustplane/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Alerter queues alerts on the outbox for the relay and mirrors them to
// the structured log at a level matching their severity.
type Alerter struct {
	pool   *pgxpool.Pool
	outbox repository.OutboxRepository
	logger *slog.Logger
}

// NewAlerter creates the alert sink.
func NewAlerter(pool *pgxpool.Pool, outbox repository.OutboxRepository, logger *slog.Logger) *Alerter {
	return &Alerter{pool: pool, outbox: outbox, logger: logger}
}

// SendAlert queues the alert for delivery.
func (a *Alerter) SendAlert(ctx context.Context, alert domain.Alert) error {
	level := slog.LevelWarn
	if alert.Severity == domain.SeverityHigh || alert.Severity == domain.SeverityCritical {
		level = slog.LevelError
	}
	a.logger.Log(ctx, level, "alert raised",
		"severity", alert.Severity,
		"component", alert.Component,
		"message", alert.Message,
	)

	return a.outbox.Insert(ctx, a.pool, domain.NewAlertEvent(alert))
}

package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/apperrors"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/repository"
)

// ArchiveWriter mirrors order events into the database. The in-memory store
// stays authoritative; write failures are logged and the event is dropped.
type ArchiveWriter struct {
	repo   repository.OrderRepository
	logger *slog.Logger
}

func NewArchiveWriter(repo repository.OrderRepository, logger *slog.Logger) *ArchiveWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArchiveWriter{repo: repo, logger: logger}
}

// Run consumes events until ctx ends or the channel is closed.
func (w *ArchiveWriter) Run(ctx context.Context, events <-chan models.OrderEvent) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := w.Handle(ev); err != nil {
				w.logger.Warn("failed to archive order event",
					"order_id", ev.Order.ID, "kind", ev.Kind, "error", err)
			}
		}
	}
}

func (w *ArchiveWriter) Handle(ev models.OrderEvent) error {
	switch ev.Kind {
	case models.EventPlaced:
		return w.repo.Create(ev.Order)
	case models.EventStatusChanged:
		if ev.Change == nil {
			return fmt.Errorf("status event for %s has no change", ev.Order.ID)
		}
		err := w.repo.AppendStatusChange(*ev.Change)
		if !errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		// The placement event was missed; archive the order as it is now.
		if err := w.repo.Create(ev.Order); err != nil {
			return err
		}
		return w.repo.AppendStatusChange(*ev.Change)
	}
	return fmt.Errorf("unknown order event kind %q", ev.Kind)
}

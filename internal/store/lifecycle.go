package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/vswdatasolutions/Shuarya-Dhaba/internal/models"
)

var ErrInvalidTransition = errors.New("invalid status transition")

type TransitionError struct {
	OrderID string
	From    models.OrderStatus
	To      models.OrderStatus
	Reason  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %s: cannot move from %s to %s: %s", e.OrderID, e.From, e.To, e.Reason)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// CanTransition reports whether o may move to next. Status only ever moves
// forward along PENDING, PREPARING, READY, OUT_FOR_DELIVERY, DELIVERED;
// steps may be skipped. CANCELLED is reachable from any non-terminal status.
func CanTransition(o models.Order, next models.OrderStatus) error {
	reject := func(reason string) error {
		return &TransitionError{OrderID: o.ID, From: o.Status, To: next, Reason: reason}
	}
	switch {
	case !next.Valid():
		return reject("unknown status")
	case o.Status.IsTerminal():
		return reject("order is already " + string(o.Status))
	case next == o.Status:
		return reject("order is already " + string(o.Status))
	case next == models.StatusCancelled:
		return nil
	case next == models.StatusOutForDelivery && o.Type() != models.TypeDelivery:
		return reject("only delivery orders go out for delivery")
	case next.Rank() < o.Status.Rank():
		return reject("status cannot move backward")
	}
	return nil
}

// Thresholds are the minimum order ages for automatic advancement.
type Thresholds struct {
	ToPreparing time.Duration
	ToReady     time.Duration
}

var DefaultThresholds = Thresholds{
	ToPreparing: 30 * time.Second,
	ToReady:     120 * time.Second,
}

// NextAutomatic returns the status the kitchen simulation would move o to at
// now. Nothing advances automatically past READY.
func (t Thresholds) NextAutomatic(o models.Order, now time.Time) (models.OrderStatus, bool) {
	age := o.Age(now)
	switch {
	case o.Status == models.StatusPending && age > t.ToPreparing:
		return models.StatusPreparing, true
	case o.Status == models.StatusPreparing && age > t.ToReady:
		return models.StatusReady, true
	}
	return "", false
}

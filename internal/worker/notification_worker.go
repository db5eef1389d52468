package worker

import (
	"context"
	"sync"
	"time"

	"github.com/facilityops/facility-ops/internal/events"
	"github.com/facilityops/facility-ops/internal/service"
)

const defaultAlertCapacity = 100

// Alert is an unresolved coverage problem reported to operators.
type Alert struct {
	EventID    string    `json:"event_id"`
	Date       string    `json:"date"`
	Invariants []string  `json:"invariants"`
	Reasons    []string  `json:"reasons"`
	RaisedAt   time.Time `json:"raised_at"`
}

// AlertLog keeps the most recent coverage alerts in memory, newest last.
type AlertLog struct {
	mu       sync.RWMutex
	alerts   []Alert
	capacity int
}

// NewAlertLog creates a log holding at most capacity alerts.
func NewAlertLog(capacity int) *AlertLog {
	if capacity <= 0 {
		capacity = defaultAlertCapacity
	}
	return &AlertLog{capacity: capacity}
}

// Recent returns alerts for date, or all alerts when date is empty.
func (l *AlertLog) Recent(date string) []Alert {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]Alert, 0, len(l.alerts))
	for _, alert := range l.alerts {
		if date == "" || alert.Date == date {
			result = append(result, alert)
		}
	}
	return result
}

func (l *AlertLog) record(_ context.Context, event events.Event) error {
	alert := Alert{EventID: event.ID, Date: event.Date, RaisedAt: event.Timestamp}
	if payload, ok := event.Payload.(events.CoverageUnsatisfiablePayload); ok {
		alert.Invariants = payload.Invariants
		alert.Reasons = payload.Reasons
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.alerts = append(l.alerts, alert)
	if len(l.alerts) > l.capacity {
		l.alerts = l.alerts[len(l.alerts)-l.capacity:]
	}
	return nil
}

func (l *AlertLog) clear(_ context.Context, event events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	kept := l.alerts[:0]
	for _, alert := range l.alerts {
		if alert.Date != event.Date {
			kept = append(kept, alert)
		}
	}
	l.alerts = kept
	return nil
}

// StartNotificationWorker registers notification handlers and, when alerts is
// non-nil, records unsatisfiable sweeps until a later sweep of the date repairs it
// or finds nothing to do.
func StartNotificationWorker(notificationService *service.NotificationService, dispatcher events.Dispatcher, alerts *AlertLog) {
	if notificationService != nil {
		notificationService.RegisterHandlers()
	}
	if dispatcher == nil || alerts == nil {
		return
	}
	dispatcher.Subscribe(events.EventCoverageUnsatisfiable, alerts.record)
	dispatcher.Subscribe(events.EventCoverageRepaired, alerts.clear)
	dispatcher.Subscribe(events.EventCoverageSatisfied, alerts.clear)
}

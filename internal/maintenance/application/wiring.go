package application

import (
	"context"

	"maintenance-kpi/internal/eventing"
	"maintenance-kpi/internal/maintenance/application/events"
)

// WireMaintenanceEventBus refreshes the status gauges after every completion
// so the overdue count does not wait for the next sweep tick.
func WireMaintenanceEventBus(bus eventing.Bus, sweeper *Sweeper, processed eventing.ProcessedStore) {
	if bus == nil || sweeper == nil {
		return
	}
	eventing.Subscribe(bus, eventing.TypeOf[events.ScheduleCompleted](), "maintenance.sweep", func(ctx context.Context, event any) error {
		if _, ok := event.(events.ScheduleCompleted); !ok {
			return eventing.ErrInvalidEventType
		}
		_, err := sweeper.Sweep(ctx)
		return err
	}, processed)
}

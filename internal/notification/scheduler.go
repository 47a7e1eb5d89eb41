package notification

import (
	"context"
	"log"
	"time"

	"go.uber.org/fx"
)

// NotificationScheduler periodically sweeps scheduled notifications and
// dispatches the ones that are due.
type NotificationScheduler struct {
	service *NotificationService
}

func NewNotificationScheduler(service *NotificationService) *NotificationScheduler {
	return &NotificationScheduler{service: service}
}

// StartScheduler runs the sweep loop on the fx lifecycle.
func (s *NotificationScheduler) StartScheduler(lc fx.Lifecycle) {
	ticker := time.NewTicker(time.Minute)
	done := make(chan bool)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("Starting notification scheduler (checking every minute)...")
			go func() {
				sweepCtx := context.Background()
				for {
					select {
					case <-ticker.C:
						s.service.SendDueScheduled(sweepCtx)
					case <-done:
						return
					}
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("Stopping notification scheduler...")
			ticker.Stop()
			done <- true
			return nil
		},
	})
}

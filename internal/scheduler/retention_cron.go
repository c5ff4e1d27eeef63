package cron

import (
	"context"

	"github.com/adilzhan-s/crowdsolve/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// StartRetentionCronJobs purges stale notifications once a day so the
// collection does not grow without bound.
func StartRetentionCronJobs(notificationService *services.NotificationService) *cron.Cron {
	c := cron.New()

	// Notification retention sweep
	c.AddFunc("0 3 * * *", func() {
		err := notificationService.PurgeStale(context.Background())
		if err != nil {
			logrus.WithError(err).Error("Notification retention sweep failed")
		}
	})

	c.Start()
	return c
}

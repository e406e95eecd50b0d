// Package alerts pkg/alerts/fanout.go
package alerts

import (
	"context"
	"errors"
	"log"
)

// Fanout delivers one alert to every enabled service. Cooldown rejections
// are expected and logged at most; other delivery errors are logged and do
// not stop delivery to the remaining services.
func Fanout(ctx context.Context, services []AlertService, alert *WebhookAlert) {
	for _, svc := range services {
		if !svc.IsEnabled() {
			continue
		}

		if err := svc.Alert(ctx, alert); err != nil {
			if errors.Is(err, errWebhookCooldown) {
				continue
			}

			log.Printf("Error sending alert '%s': %v", alert.Title, err)
		}
	}
}

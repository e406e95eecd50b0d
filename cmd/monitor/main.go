// cmd/monitor/main.go
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/cloudpulse/cloudpulse/pkg/alerts"
	"github.com/cloudpulse/cloudpulse/pkg/api"
	"github.com/cloudpulse/cloudpulse/pkg/config"
	"github.com/cloudpulse/cloudpulse/pkg/db"
	"github.com/cloudpulse/cloudpulse/pkg/lifecycle"
	"github.com/cloudpulse/cloudpulse/pkg/loader"
	"github.com/cloudpulse/cloudpulse/pkg/models"
	"github.com/cloudpulse/cloudpulse/pkg/monitoring"
)

const (
	defaultListenAddr     = ":8090"
	defaultDBPath         = "/var/lib/cloudpulse/cloudpulse.db"
	defaultAlertRetention = 7 * 24 * time.Hour
	cleanupInterval       = time.Hour
)

// Config is the monitor daemon's top-level configuration.
type Config struct {
	ListenAddr     string                 `json:"listen_addr"`
	DBPath         string                 `json:"db_path"`
	RegionsFile    string                 `json:"regions_file,omitempty"`
	AlertRetention config.Duration        `json:"alert_retention"`
	Monitor        monitoring.Config      `json:"monitor"`
	Webhooks       []alerts.WebhookConfig `json:"webhooks,omitempty"`
}

func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		c.ListenAddr = defaultListenAddr
	}

	if c.DBPath == "" {
		c.DBPath = defaultDBPath
	}

	if time.Duration(c.AlertRetention) <= 0 {
		c.AlertRetention = config.Duration(defaultAlertRetention)
	}

	return c.Monitor.Validate()
}

func main() {
	log.Printf("Starting cloudpulse monitor...")

	configPath := flag.String("config", "/etc/cloudpulse/monitor.json", "Path to config file")
	flag.Parse()

	var cfg Config
	if err := config.LoadAndValidate(*configPath, &cfg); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}

	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	monitor, err := monitoring.NewMonitor(cfg.Monitor)
	if err != nil {
		log.Fatalf("Failed to create monitor: %v", err)
	}

	if cfg.RegionsFile != "" {
		regions, err := loader.LoadRegions(cfg.RegionsFile)
		if err != nil {
			log.Fatalf("Failed to load regions from %s: %v", cfg.RegionsFile, err)
		}

		for _, endpoint := range loader.EndpointsFromRegions(regions) {
			if err := monitor.AddEndpoint(endpoint); err != nil {
				log.Printf("Skipping endpoint %s: %v", endpoint.ID, err)
			}
		}
	}

	if monitor.EndpointCount() == 0 {
		log.Printf("Warning: no endpoints configured")
	}

	monitor.AddAlertHandler(func(_ context.Context, alert models.Alert) {
		if err := database.StoreAlert(&alert); err != nil {
			log.Printf("Failed to store alert %s: %v", alert.ID, err)
		}
	})

	alerters := make([]alerts.AlertService, 0, len(cfg.Webhooks))
	for _, webhookCfg := range cfg.Webhooks {
		alerters = append(alerters, alerts.NewWebhookAlerter(webhookCfg))
	}

	if len(alerters) > 0 {
		monitor.AddAlertHandler(func(ctx context.Context, alert models.Alert) {
			alerts.Fanout(ctx, alerters, alerts.FromAlert(&alert))
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go cleanupLoop(ctx, database, time.Duration(cfg.AlertRetention))

	apiServer := api.NewAPIServer(monitor, database)

	opts := &lifecycle.ServerOptions{
		ListenAddr:  cfg.ListenAddr,
		ServiceName: "cloudpulse-monitor",
		Service:     monitor,
		APIServer:   apiServer,
	}

	if err := lifecycle.RunServer(ctx, opts); err != nil {
		log.Fatalf("Monitor failed: %v", err)
	}
}

func cleanupLoop(ctx context.Context, database db.Service, retention time.Duration) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := database.CleanOldAlerts(retention); err != nil {
				log.Printf("Failed to clean old alerts: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

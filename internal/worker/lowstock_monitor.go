package worker

// Background goroutine that periodically scans for products at or below their
// low-stock thresholds and emails a digest of fresh alerts. A Redis SETNX key
// per product+balance suppresses re-alerting for 24h, so a product sitting at
// a low balance produces one email, not one per scan.

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storepos/internal/service"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const alertDedupeTTL = 24 * time.Hour

// LowStockMonitorConfig holds all dependencies for the monitor goroutine.
type LowStockMonitorConfig struct {
	Stock        service.StockService
	RDB          *redis.Client
	Dispatcher   *Dispatcher
	AlertEmail   string
	ScanInterval time.Duration
}

// StartLowStockMonitor launches a goroutine that ticks every ScanInterval,
// scans for low balances, and enqueues an alert digest email for entries not
// alerted within the dedupe window. Respects the context for graceful shutdown.
func StartLowStockMonitor(ctx context.Context, cfg LowStockMonitorConfig) {
	if cfg.AlertEmail == "" {
		log.Info().Msg("lowstock_monitor: no alert email configured, not starting")
		return
	}
	if cfg.ScanInterval <= 0 {
		cfg.ScanInterval = 15 * time.Minute
	}

	go func() {
		ticker := time.NewTicker(cfg.ScanInterval)
		defer ticker.Stop()

		log.Info().Dur("interval", cfg.ScanInterval).Msg("lowstock_monitor: started")

		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("lowstock_monitor: shutting down")
				return
			case <-ticker.C:
				scanOnce(ctx, cfg)
			}
		}
	}()
}

func scanOnce(ctx context.Context, cfg LowStockMonitorConfig) {
	alerts, err := cfg.Stock.LowStock(ctx)
	if err != nil {
		log.Error().Err(err).Msg("lowstock_monitor: scan failed")
		return
	}
	if len(alerts) == 0 {
		return
	}

	var fresh []string
	for _, a := range alerts {
		key := fmt.Sprintf("lowstock:alerted:%s:%s", a.ProductID, a.Balance)
		ok, err := cfg.RDB.SetNX(ctx, key, 1, alertDedupeTTL).Result()
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("lowstock_monitor: dedupe check failed")
			continue
		}
		if !ok {
			continue // already alerted within the window
		}
		fresh = append(fresh, fmt.Sprintf("%s (%s): %d on hand, threshold %d",
			a.Name, a.Balance, a.Current, a.Threshold))
	}
	if len(fresh) == 0 {
		return
	}

	body := "The following products are at or below their stock thresholds:\n\n" +
		strings.Join(fresh, "\n") + "\n"
	payload := EmailJobPayload{
		ToEmail: cfg.AlertEmail,
		Subject: fmt.Sprintf("Low stock alert: %d product(s)", len(fresh)),
		Body:    body,
	}
	if err := cfg.Dispatcher.EnqueueEmail(ctx, payload); err != nil {
		log.Error().Err(err).Msg("lowstock_monitor: failed to enqueue digest")
		return
	}
	log.Info().Int("alerts", len(fresh)).Msg("lowstock_monitor: digest enqueued")
}

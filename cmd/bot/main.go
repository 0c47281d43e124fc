package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/quantbyte/signal-fusion-bot/internal/config"
	"github.com/quantbyte/signal-fusion-bot/internal/engine"
	"github.com/quantbyte/signal-fusion-bot/internal/exchange/bybit"
	"github.com/quantbyte/signal-fusion-bot/internal/logger"
	"github.com/quantbyte/signal-fusion-bot/internal/monitoring"
	"github.com/quantbyte/signal-fusion-bot/internal/notifications"
	"github.com/quantbyte/signal-fusion-bot/pkg/reporting"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config file (defaults apply when empty)")
	envFile := flag.String("env", ".env", "path to .env file with credentials")
	logDir := flag.String("logs", "logs", "directory for log files")
	reportPath := flag.String("report", "", "write trade history to this xlsx file on shutdown")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load %s: %v", *envFile, err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	botLog, err := logger.New(*logDir)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer botLog.Close()

	healthChecker := monitoring.NewHealthChecker()

	var notifier notifications.Notifier = notifications.Noop{}
	if cfg.Notifications != nil && cfg.Notifications.Enabled && cfg.Notifications.TelegramToken != "" {
		notifier = notifications.NewTelegramNotifier(cfg.Notifications.TelegramToken, cfg.Notifications.TelegramChat)
		log.Println("Telegram notifications enabled")
	} else {
		log.Println("Telegram notifications disabled (no token configured)")
	}

	client := bybit.NewClient(cfg.Exchange)
	eng := engine.New(cfg, client, botLog, healthChecker, notifier)

	go setupMonitoringServers(cfg, healthChecker)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng.Start(ctx)
	log.Printf("Signal fusion bot started: %v every %s", cfg.Engine.Symbols, cfg.Engine.CycleInterval)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down...")
	cancel()
	eng.Stop()

	console := reporting.NewConsoleReporter()
	console.PrintRiskSummary(eng.Risk().Balance(), eng.Risk().State())

	// Positions left open at shutdown, marked at the latest venue price.
	if open := eng.Risk().OpenPositions(); len(open) > 0 {
		prices := make(map[string]float64, len(open))
		for _, pos := range open {
			price, err := client.GetCurrentPrice(context.Background(), pos.Symbol)
			if err != nil {
				price = pos.EntryPrice
			}
			prices[pos.Symbol] = price
		}
		console.PrintOpenPositions(open, prices)
	}

	console.PrintTradeHistory(eng.Risk().TradeHistory())

	if *reportPath != "" {
		if err := reporting.NewExcelReporter().WriteTradeHistory(eng.Risk().TradeHistory(), *reportPath); err != nil {
			log.Printf("Failed to write trade report: %v", err)
		} else {
			log.Printf("Trade report written to %s", *reportPath)
		}
	}

	log.Println("Bot stopped")
}

func setupMonitoringServers(cfg *config.Config, healthChecker *monitoring.HealthChecker) {
	healthMux := http.NewServeMux()
	healthMux.Handle("/health", healthChecker)

	go func() {
		log.Printf("Starting health server on port %d", cfg.Monitoring.HealthPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.HealthPort), healthMux); err != nil {
			log.Printf("Health server error: %v", err)
		}
	}()

	go func() {
		log.Printf("Starting metrics server on port %d", cfg.Monitoring.MetricsPort)
		if err := http.ListenAndServe(fmt.Sprintf(":%d", cfg.Monitoring.MetricsPort), monitoring.NewMetricsHandler()); err != nil {
			log.Printf("Metrics server error: %v", err)
		}
	}()
}

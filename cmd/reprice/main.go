// one-shot job: reprice every variant from shop rates and product metafields
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jewelry-repricer/internal/adapters/shopify"
	"jewelry-repricer/internal/app/usecases"
	"jewelry-repricer/internal/config"
	infrahttp "jewelry-repricer/internal/infra/http"
	"jewelry-repricer/internal/logging"
	"jewelry-repricer/internal/metrics"
)

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.LoadForRepricing()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error %v\n", err)
		return 2
	}

	httpClient := infrahttp.NewClient(cfg.Shopify.Timeout)
	logger := logging.NewLogger(cfg.TelegramBot, cfg.Log, httpClient)
	batchMetrics := metrics.NewBatchMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runLog, err := logging.NewFileRunLog(cfg.Reprice.LogFile)
	if err != nil {
		logger.LogError("run log error", err)
		return 2
	}

	shopifyClient := shopify.NewClient(cfg.Shopify, httpClient, logger, batchMetrics)
	reprice := usecases.NewRepriceVariants(shopifyClient, shopifyClient, runLog, logger, batchMetrics, usecases.RepriceOptions{
		PageSize:    cfg.Reprice.PageSize,
		MaxPages:    cfg.Reprice.MaxPages,
		MetalOption: cfg.Reprice.MetalOption,
		DryRun:      cfg.Reprice.DryRun,
	})

	logger.Log(fmt.Sprintf("Reprice job start store=%s run_log=%s", cfg.Shopify.ShopDomain, runLog.Path()))
	started := time.Now()
	summary, err := reprice.Run(ctx)
	finished := time.Now()

	batchMetrics.RunFinished(finished.Sub(started), err == nil, finished)
	if cfg.Metrics.TextfilePath != "" {
		if writeErr := batchMetrics.WriteTextfile(cfg.Metrics.TextfilePath); writeErr != nil {
			logger.LogError("metrics textfile error", writeErr)
		}
	}

	if err != nil {
		logger.LogError(fmt.Sprintf("reprice error %s", summary), err)
		return 1
	}
	return 0
}

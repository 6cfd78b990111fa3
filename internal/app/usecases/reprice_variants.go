package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"jewelry-repricer/internal/adapters/shopify"
	"jewelry-repricer/internal/domain/model"
	"jewelry-repricer/internal/logging"
	"jewelry-repricer/internal/metrics"
	"jewelry-repricer/internal/pricing"
)

type RepriceVariantsService interface {
	Run(ctx context.Context) (RunSummary, error)
}

// BatchRecorder receives per-item outcomes; *metrics.BatchMetrics satisfies it.
type BatchRecorder interface {
	ProductVisited(ok bool)
	VariantOutcome(outcome string)
}

type RepriceOptions struct {
	PageSize    int
	MaxPages    int
	MetalOption int
	DryRun      bool
}

type RunSummary struct {
	Products       int
	FailedProducts int
	Variants       int
	Updated        int
	Unchanged      int
	Failed         int
	WouldUpdate    int
}

func (s RunSummary) String() string {
	return fmt.Sprintf(
		"products=%d failed_products=%d variants=%d updated=%d unchanged=%d failed=%d would_update=%d",
		s.Products, s.FailedProducts, s.Variants, s.Updated, s.Unchanged, s.Failed, s.WouldUpdate,
	)
}

type ClientReprice struct {
	catalogClient shopify.CatalogService
	priceClient   shopify.PriceService
	runLog        logging.RunLog
	logger        logging.LoggerService
	recorder      BatchRecorder
	options       RepriceOptions
	now           func() time.Time

	headerWritten bool
}

func NewRepriceVariants(
	catalogClient shopify.CatalogService,
	priceClient shopify.PriceService,
	runLog logging.RunLog,
	logger logging.LoggerService,
	recorder BatchRecorder,
	options RepriceOptions,
) RepriceVariantsService {
	if options.PageSize <= 0 {
		options.PageSize = 50
	}
	if options.MetalOption <= 0 {
		options.MetalOption = 3
	}
	if runLog == nil || options.DryRun {
		runLog = logging.DiscardRunLog{}
	}
	return &ClientReprice{
		catalogClient: catalogClient,
		priceClient:   priceClient,
		runLog:        runLog,
		logger:        logger,
		recorder:      recorder,
		options:       options,
		now:           time.Now,
	}
}

func (c *ClientReprice) Run(ctx context.Context) (RunSummary, error) {
	var summary RunSummary
	c.headerWritten = false
	c.log(fmt.Sprintf("Reprice started page_size=%d metal_option=%d dry_run=%t",
		c.options.PageSize, c.options.MetalOption, c.options.DryRun))

	rates, err := c.catalogClient.ShopRates(ctx)
	if err != nil {
		c.logError("Error fetch shop rates", err)
		return summary, fmt.Errorf("fetch shop rates: %w", err)
	}

	products, err := c.catalogClient.ListProducts(ctx, c.options.PageSize, c.options.MaxPages)
	if err != nil {
		c.logError("Error fetch products", err)
		return summary, fmt.Errorf("list products: %w", err)
	}
	c.log(fmt.Sprintf("Reprice fetched products=%d", len(products)))

	for _, product := range products {
		if err := ctx.Err(); err != nil {
			c.logWarning(fmt.Sprintf("Reprice interrupted %s", summary))
			return summary, err
		}
		c.repriceProduct(ctx, rates, product, &summary)
	}

	c.logSuccess(fmt.Sprintf("Reprice completed %s", summary))
	return summary, nil
}

func (c *ClientReprice) repriceProduct(ctx context.Context, rates model.ShopRates, product model.Product, summary *RunSummary) {
	summary.Products++

	attrs, err := c.catalogClient.ProductAttributes(ctx, product.ID)
	if err != nil {
		summary.FailedProducts++
		c.recordProduct(false)
		c.logError(fmt.Sprintf("Error fetch attributes product=%s", product.ID), err)
		c.appendLine(fmt.Sprintf("❌ Failed to read attributes for product %s (%s) → %v",
			product.DisplayName(), legacyID(product.ID), err))
		return
	}
	c.recordProduct(true)

	for _, variant := range product.Variants {
		summary.Variants++
		priced := pricing.PriceVariant(rates, attrs, variant, c.options.MetalOption)
		if !pricing.NeedsUpdate(priced.PreviousPrice, priced.FinalPrice) {
			summary.Unchanged++
			c.recordVariant(metrics.OutcomeUnchanged)
			continue
		}

		if c.options.DryRun {
			summary.WouldUpdate++
			c.recordVariant(metrics.OutcomeDryRun)
			c.log(fmt.Sprintf("Dry run product=%s variant=%s grade=%s previous=%s new=%s",
				product.DisplayName(), legacyID(variant.ID), priced.Breakdown.Grade,
				pricing.FormatPrice(priced.PreviousPrice), pricing.FormatPrice(priced.FinalPrice)))
			continue
		}

		result, err := c.priceClient.SetVariantPrice(ctx, shopify.PriceUpdateInput{
			ProductID: product.ID,
			VariantID: variant.ID,
			Price:     priced.FinalPrice,
		})
		if err != nil {
			summary.Failed++
			c.recordVariant(metrics.OutcomeFailed)
			c.appendLine(failureLine(product, variant, priced, err))
			if isRejection(err) {
				c.logWarning(fmt.Sprintf("Shopify rejected price variant=%s: %v", variant.ID, err))
			} else {
				c.logError(fmt.Sprintf("Error update price variant=%s", variant.ID), err)
			}
			continue
		}

		summary.Updated++
		c.recordVariant(metrics.OutcomeUpdated)
		if !result.Price.Equal(priced.FinalPrice) {
			c.logWarning(fmt.Sprintf("Shopify stored price=%s for variant=%s, sent %s",
				pricing.FormatPrice(result.Price), variant.ID, pricing.FormatPrice(priced.FinalPrice)))
		}
		c.appendLine(successLine(product, variant, priced))
	}
}

func successLine(product model.Product, variant model.Variant, priced model.PricedVariant) string {
	return fmt.Sprintf("✅ Product: %s | Variant ID: %s, Name: %s, Previous Price: %s, New Price: %s",
		product.DisplayName(),
		legacyID(variant.ID),
		variant.DisplayName(),
		pricing.FormatPrice(priced.PreviousPrice),
		pricing.FormatPrice(priced.FinalPrice),
	)
}

func failureLine(product model.Product, variant model.Variant, priced model.PricedVariant, err error) string {
	return fmt.Sprintf("❌ Failed for %s (Product: %s) attempted price %s → %v",
		legacyID(variant.ID),
		product.DisplayName(),
		pricing.FormatPrice(priced.FinalPrice),
		err,
	)
}

// appendLine writes to the run log, opening each run with a timestamped header.
// A write failure is reported and the run carries on.
func (c *ClientReprice) appendLine(line string) {
	if !c.headerWritten {
		header := fmt.Sprintf("--- price update run %s ---", c.now().UTC().Format(time.RFC3339))
		if err := c.runLog.AppendLine(header); err != nil {
			c.logError("Error write run log", err)
		}
		c.headerWritten = true
	}
	if err := c.runLog.AppendLine(line); err != nil {
		c.logError("Error write run log", err)
	}
}

func isRejection(err error) bool {
	var userErr *shopify.UserErrorsError
	return errors.As(err, &userErr)
}

// legacyID turns "gid://shopify/ProductVariant/123" into "123".
func legacyID(gid string) string {
	gid = strings.TrimSpace(gid)
	if i := strings.LastIndex(gid, "/"); i >= 0 && i < len(gid)-1 {
		return gid[i+1:]
	}
	return gid
}

func (c *ClientReprice) recordProduct(ok bool) {
	if c.recorder != nil {
		c.recorder.ProductVisited(ok)
	}
}

func (c *ClientReprice) recordVariant(outcome string) {
	if c.recorder != nil {
		c.recorder.VariantOutcome(outcome)
	}
}

func (c *ClientReprice) log(message string) {
	if c.logger != nil {
		c.logger.Log(message)
	}
}

func (c *ClientReprice) logError(message string, err error) {
	if c.logger != nil {
		c.logger.LogError(message, err)
	}
}

func (c *ClientReprice) logWarning(message string) {
	if c.logger != nil {
		c.logger.LogWarning(message)
	}
}

func (c *ClientReprice) logSuccess(message string) {
	if c.logger != nil {
		c.logger.LogSuccess(message)
	}
}

package replenish

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/procurehq/replenish/internal/cache"
	"github.com/procurehq/replenish/internal/cleaner"
	"github.com/procurehq/replenish/internal/config"
	"github.com/procurehq/replenish/internal/dataset"
	"github.com/procurehq/replenish/internal/domain"
	"github.com/procurehq/replenish/internal/forecast"
	"github.com/procurehq/replenish/internal/harmonizer"
	"github.com/procurehq/replenish/internal/inference"
	"github.com/procurehq/replenish/internal/inventory"
	"github.com/procurehq/replenish/internal/stock"
)

const batchConcurrency = 4

// Service orchestrates the full pipeline: schema detection, cleaning,
// aggregation, forecasting, stock check, and order sizing.
type Service struct {
	cfg        *config.Config
	harmonizer *harmonizer.Harmonizer
	forecaster *forecast.Forecaster
	repo       *inventory.Repository
	monitor    *stock.Monitor
	calculator *Calculator
	inferer    inference.Service
	recCache   cache.RecommendationCache

	// The order history schema is inferred once and reused; the history
	// file is append-only between process restarts.
	schemaMu sync.Mutex
	schema   *domain.SchemaMapping
}

func NewService(
	cfg *config.Config,
	h *harmonizer.Harmonizer,
	f *forecast.Forecaster,
	repo *inventory.Repository,
	monitor *stock.Monitor,
	calc *Calculator,
	inferer inference.Service,
	recCache cache.RecommendationCache,
) *Service {
	return &Service{
		cfg:        cfg,
		harmonizer: h,
		forecaster: f,
		repo:       repo,
		monitor:    monitor,
		calculator: calc,
		inferer:    inferer,
		recCache:   recCache,
	}
}

// Forecast runs the demand pipeline for one item against the order
// history file.
func (s *Service) Forecast(ctx context.Context, itemCode string) (domain.DemandForecast, error) {
	series, err := s.demandSeries(ctx, itemCode)
	if err != nil {
		return domain.DemandForecast{}, err
	}

	fc, _, err := s.forecaster.Forecast(itemCode, series)
	return fc, err
}

// Recommend produces a full order recommendation for one item,
// cache-aside against the recommendation cache.
func (s *Service) Recommend(ctx context.Context, itemCode string) (domain.OrderRecommendation, error) {
	if rec, ok, err := s.recCache.Get(ctx, itemCode); err == nil && ok {
		log.Debug().Str("item_code", itemCode).Msg("recommendation cache hit")
		return rec, nil
	} else if err != nil {
		log.Warn().Err(err).Str("item_code", itemCode).Msg("recommendation cache read failed")
	}

	item, err := s.repo.ByCode(itemCode)
	if err != nil {
		return domain.OrderRecommendation{}, err
	}

	fc, err := s.Forecast(ctx, itemCode)
	if err != nil {
		return domain.OrderRecommendation{}, err
	}

	status, err := s.monitor.Check(itemCode)
	if err != nil {
		return domain.OrderRecommendation{}, err
	}

	calc := s.calculator.Calculate(fc, item)
	urgency := s.calculator.UrgencyFor(fc, item)

	rec := domain.OrderRecommendation{
		ItemCode:            item.ItemCode,
		ItemName:            item.ItemName,
		RecommendedQuantity: calc.FinalQuantity,
		Urgency:             urgency,
		Calculation:         calc,
		Forecast:            fc,
		Stock:               status,
	}
	rec.Reason = s.reasoning(ctx, item, rec)

	if err := s.recCache.Set(ctx, itemCode, rec); err != nil {
		log.Warn().Err(err).Str("item_code", itemCode).Msg("recommendation cache write failed")
	}

	return rec, nil
}

// RecommendBatch fans the pipeline out over multiple items with bounded
// concurrency. Per-item failures are logged and skipped; one bad item
// does not poison the batch.
func (s *Service) RecommendBatch(ctx context.Context, itemCodes []string) ([]domain.OrderRecommendation, error) {
	results := make([]*domain.OrderRecommendation, len(itemCodes))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(batchConcurrency)

	for i, code := range itemCodes {
		i, code := i, code
		g.Go(func() error {
			rec, err := s.Recommend(ctx, code)
			if err != nil {
				log.Warn().Err(err).Str("item_code", code).Msg("skipping item in batch recommendation")
				return nil
			}
			results[i] = &rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	recs := make([]domain.OrderRecommendation, 0, len(itemCodes))
	for _, r := range results {
		if r != nil {
			recs = append(recs, *r)
		}
	}
	return recs, nil
}

// PriorityOrders recommends orders for every item at or below its
// reorder point, most urgent first.
func (s *Service) PriorityOrders(ctx context.Context) ([]domain.OrderRecommendation, error) {
	low, err := s.monitor.LowStockItems()
	if err != nil {
		return nil, err
	}

	codes := make([]string, len(low))
	for i, status := range low {
		codes[i] = status.ItemCode
	}

	recs, err := s.RecommendBatch(ctx, codes)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return urgencyRank(recs[i].Urgency) > urgencyRank(recs[j].Urgency)
	})
	return recs, nil
}

// InvalidateCache drops cached recommendations so the next request
// recomputes against the current snapshot. An empty item code drops
// everything; operators use this after the inventory file changes
// out-of-band.
func (s *Service) InvalidateCache(ctx context.Context, itemCode string) error {
	if itemCode == "" {
		return s.recCache.InvalidateAll(ctx)
	}
	return s.recCache.Invalidate(ctx, itemCode)
}

// demandSeries runs harmonize -> clean -> aggregate for one item's
// order history.
func (s *Service) demandSeries(ctx context.Context, itemCode string) (domain.MonthlySeries, error) {
	schema, err := s.historySchema(ctx)
	if err != nil {
		return nil, err
	}

	table, err := dataset.Load(s.cfg.Data.HistoryPath)
	if err != nil {
		return nil, err
	}

	rows, report := cleaner.Clean(table, schema)
	log.Debug().
		Int("rows_before", report.RowsBefore).
		Int("rows_after", report.RowsAfter).
		Int("duplicates_removed", report.DuplicatesRemoved).
		Int("outliers", len(report.OutliersDetected)).
		Msg("order history cleaned")

	var itemRows []domain.OrderRow
	for _, row := range rows {
		if row.ItemCode == itemCode {
			itemRows = append(itemRows, row)
		}
	}

	return forecast.Aggregate(itemRows)
}

// historySchema infers and validates the order history schema once per
// process.
func (s *Service) historySchema(ctx context.Context) (domain.SchemaMapping, error) {
	s.schemaMu.Lock()
	defer s.schemaMu.Unlock()

	if s.schema != nil {
		return *s.schema, nil
	}

	result, err := s.harmonizer.Analyze(ctx, s.cfg.Data.HistoryPath)
	if err != nil {
		return domain.SchemaMapping{}, err
	}
	if !result.Validation.IsValid {
		return domain.SchemaMapping{}, domain.NewError(domain.ErrSchemaInvalid,
			"order history schema invalid: %v", result.Validation.Errors)
	}

	s.schema = &result.Schema
	return result.Schema, nil
}

// reasoning asks the inference service for a narrative justification and
// falls back to a deterministic template when it is unavailable.
func (s *Service) reasoning(ctx context.Context, item domain.InventoryItem, rec domain.OrderRecommendation) string {
	input := inference.ReasoningInput{
		ItemName:        item.ItemName,
		CurrentStock:    item.CurrentQuantity,
		ReorderPoint:    item.ReorderPoint,
		PredictedDemand: rec.Forecast.PredictedDemand,
		ModelUsed:       rec.Forecast.ModelUsed,
		Confidence:      rec.Forecast.Confidence,
		Trend:           rec.Forecast.Trend,
		FinalQuantity:   rec.RecommendedQuantity,
		Urgency:         rec.Urgency,
	}

	reason, err := s.inferer.GenerateReasoning(ctx, input)
	if err != nil {
		log.Warn().Err(err).Str("item_code", item.ItemCode).Msg("reasoning generation failed, using template")
		return templateReasoning(input)
	}
	return reason
}

// templateReasoning is the deterministic fallback narrative. It carries
// the same facts the generated version would.
func templateReasoning(in inference.ReasoningInput) string {
	return fmt.Sprintf(
		"%s has %d units on hand against a reorder point of %d. The %s model predicts demand of %d units next month (confidence %.0f%%, %s trend). Ordering %d units covers the shortfall plus safety stock and lead-time demand. Urgency: %s.",
		in.ItemName, in.CurrentStock, in.ReorderPoint,
		in.ModelUsed, in.PredictedDemand, in.Confidence*100, in.Trend,
		in.FinalQuantity, in.Urgency,
	)
}

func urgencyRank(u domain.Urgency) int {
	switch u {
	case domain.UrgencyUrgent:
		return 3
	case domain.UrgencyHigh:
		return 2
	case domain.UrgencyMedium:
		return 1
	default:
		return 0
	}
}

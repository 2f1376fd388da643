package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"jaikod-scoring/config"
	"jaikod-scoring/models"
	"jaikod-scoring/notify"
	"jaikod-scoring/scraper/comparables"
	"jaikod-scoring/services"
	"jaikod-scoring/storage"
	"jaikod-scoring/utils"
)

func main() {
	mode := flag.String("mode", "score", "score | collect")
	input := flag.String("input", "", "JSON file of score requests (default stdin)")
	category := flag.String("category", "", "comma-separated categories to collect (default: all built-in)")
	flag.Parse()

	cfg := config.Load()
	logger := utils.NewLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("=== Trust & Pricing Scoring starting (mode: %s) ===", *mode)

	var err error
	switch *mode {
	case "score":
		err = runScore(ctx, cfg, logger, *input)
	case "collect":
		err = runCollect(ctx, cfg, logger, *category)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		logger.Error("%v", err)
		os.Exit(1)
	}
}

func runScore(ctx context.Context, cfg *config.Config, logger *utils.Logger, input string) error {
	reqs, err := readRequests(input)
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		return fmt.Errorf("no score requests in input")
	}

	var pg *storage.PostgresReference
	if cfg.HasPostgres() {
		pg, err = connectPostgres(ctx, cfg, logger)
		if err != nil {
			logger.Warn("PostgreSQL unavailable, scoring from static tables: %v", err)
		} else {
			defer pg.Close()
		}
	}

	provider, fallback, closeRef, err := buildReference(ctx, cfg, logger, pg)
	if err != nil {
		return err
	}
	defer closeRef()

	engine := buildEngine(cfg, provider, fallback, logger)
	assessments := engine.AssessBatch(ctx, reqs)

	csvWriter, err := storage.NewCSVWriter(cfg.CSVOutputPath)
	if err != nil {
		return fmt.Errorf("create CSV writer: %w", err)
	}
	defer csvWriter.Close()

	writers := []storage.AssessmentWriter{csvWriter}
	if pg != nil {
		writers = append(writers, pg)
	}
	for _, w := range writers {
		if err := w.WriteAssessments(assessments); err != nil {
			logger.Error("Assessment write failed: %v", err)
		}
	}
	logger.Info("Assessments saved to %s", cfg.CSVOutputPath)

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	events := notify.BoostEvents(assessments, time.Now())
	if err := publisher.Publish(ctx, events); err != nil {
		logger.Error("Publishing %d boost events failed: %v", len(events), err)
	}

	insightSvc := services.NewInsightService(logger)
	insightSvc.Print(insightSvc.Generate(assessments))

	fmt.Printf("  Done. %d listings scored → %s\n\n", len(assessments), cfg.CSVOutputPath)
	return nil
}

func runCollect(ctx context.Context, cfg *config.Config, logger *utils.Logger, categoryFlag string) error {
	if !cfg.HasPostgres() {
		return fmt.Errorf("collect mode needs POSTGRES_HOST")
	}

	logger.Info("Config: pages %d | listings/page %d | concurrency %d | rate %dms",
		cfg.PagesToScrape, cfg.ListingsPerPage, cfg.MaxConcurrency, cfg.RateLimitMs)

	pg, err := connectPostgres(ctx, cfg, logger)
	if err != nil {
		logger.Error("Make sure Docker is running: docker compose up -d")
		return err
	}
	defer pg.Close()

	builtin := storage.NewMemoryReference()
	regions, _ := builtin.RegionMultipliers(ctx)
	if err := pg.SeedRegionMultipliers(ctx, regions); err != nil {
		logger.Warn("Seeding region multipliers failed: %v", err)
	}

	categories := splitCategories(categoryFlag)
	if len(categories) == 0 {
		categories = builtin.Categories()
	}

	scraper := comparables.New(cfg, logger)
	cleaner := services.NewCleaner(logger)

	var stored int
	for _, category := range categories {
		raw, err := scraper.Scrape(ctx, category)
		if err != nil {
			logger.Error("Scrape of %s failed: %v", category, err)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		points := cleaner.Clean(raw)
		if len(points) == 0 {
			logger.Warn("No usable comparables for %s", category)
			continue
		}
		if err := pg.Write(points); err != nil {
			logger.Error("PostgreSQL write for %s failed: %v", category, err)
			continue
		}
		stored += len(points)
	}

	if stored == 0 {
		return fmt.Errorf("no comparables were stored")
	}
	fmt.Printf("  Done. %d comparables → PostgreSQL (price_history table)\n\n", stored)
	return nil
}

func connectPostgres(ctx context.Context, cfg *config.Config, logger *utils.Logger) (*storage.PostgresReference, error) {
	retry := &utils.RetryConfig{MaxAttempts: cfg.MaxRetries, BaseDelay: 2 * time.Second, Logger: logger}
	pg, err := storage.NewPostgresReference(ctx, cfg.DSN(), retry)
	if err != nil {
		return nil, fmt.Errorf("connect to PostgreSQL: %w", err)
	}
	return pg, nil
}

// buildReference stacks the reference sources: PostgreSQL over the static
// tables, with an optional Redis cache in front.
func buildReference(ctx context.Context, cfg *config.Config, logger *utils.Logger, pg *storage.PostgresReference) (services.ReferenceProvider, []float64, func(), error) {
	var static storage.ReferenceSource = storage.NewMemoryReference()
	var fallback []float64

	if cfg.ReferenceFile != "" {
		tables, err := storage.LoadReferenceFile(cfg.ReferenceFile)
		if err != nil {
			return nil, nil, nil, err
		}
		static = tables.Reference
		fallback = tables.DefaultDistribution
		logger.Info("Reference tables loaded from %s", cfg.ReferenceFile)
	}

	source := static
	if pg != nil {
		source = storage.NewLayeredReference(pg, static, logger)
	}

	closeFn := func() {}
	if cfg.RedisURL != "" {
		client, err := storage.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("Redis unavailable, reference cache disabled: %v", err)
		} else {
			source = storage.NewCachedReference(source, storage.NewRedisCache(client), cfg.ReferenceCacheTTL, logger)
			closeFn = func() { _ = client.Close() }
		}
	}

	return source, fallback, closeFn, nil
}

func buildEngine(cfg *config.Config, provider services.ReferenceProvider, fallback []float64, logger *utils.Logger) *services.Engine {
	return services.NewEngine(services.EngineDeps{
		Pricing: services.NewPriceEstimator(provider, services.EstimatorConfig{
			LookupTimeout:       cfg.LookupTimeout,
			DefaultDistribution: fallback,
		}, logger),
		Trust:      services.NewTrustScorer(listingQuality(cfg), logger),
		Boost:      services.NewBoostEngine(costPolicy(cfg), logger),
		MaxWorkers: cfg.MaxConcurrency,
	}, logger)
}

func costPolicy(cfg *config.Config) services.CostPolicy {
	if cfg.BoostCostPolicy == config.CostPolicyBudget {
		return services.BudgetAwareCost{}
	}
	return services.CappedCost{Cap: decimal.NewFromFloat(cfg.BoostCostCap)}
}

func listingQuality(cfg *config.Config) services.ListingQualityScorer {
	if cfg.ListingQualityMode == config.ListingQualityFixed {
		return services.FixedListingQuality{Points: cfg.ListingQualityPoints}
	}
	return services.ContentListingQuality{NeutralPoints: cfg.ListingQualityPoints}
}

func buildPublisher(cfg *config.Config, logger *utils.Logger) (notify.Publisher, error) {
	if len(cfg.KafkaBrokers) == 0 {
		return notify.NewLogPublisher(logger), nil
	}
	p, err := notify.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopicBoost)
	if err != nil {
		return nil, fmt.Errorf("create kafka publisher: %w", err)
	}
	logger.Info("Publishing boost events to %s on %v", cfg.KafkaTopicBoost, cfg.KafkaBrokers)
	return p, nil
}

func readRequests(path string) ([]models.ScoreRequest, error) {
	var r io.Reader = os.Stdin
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	return decodeRequests(r)
}

// decodeRequests accepts either a JSON array of requests or a single request.
func decodeRequests(r io.Reader) ([]models.ScoreRequest, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return nil, nil
	}

	if strings.HasPrefix(trimmed, "{") {
		var one models.ScoreRequest
		if err := json.Unmarshal([]byte(trimmed), &one); err != nil {
			return nil, fmt.Errorf("decode request: %w", err)
		}
		return []models.ScoreRequest{one}, nil
	}

	var many []models.ScoreRequest
	if err := json.Unmarshal([]byte(trimmed), &many); err != nil {
		return nil, fmt.Errorf("decode requests: %w", err)
	}
	return many, nil
}

func splitCategories(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"

	"homebuyer-lead-engine/internal/config"
	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/services/ai"
	"homebuyer-lead-engine/internal/services/census"
	"homebuyer-lead-engine/internal/services/database"
	"homebuyer-lead-engine/internal/services/engine"
	"homebuyer-lead-engine/internal/services/events"
	"homebuyer-lead-engine/internal/services/financial"
	"homebuyer-lead-engine/internal/services/leads"
	s3service "homebuyer-lead-engine/internal/services/s3"
	"homebuyer-lead-engine/internal/services/ses"
	"homebuyer-lead-engine/internal/utils"
)

// Services holds the collaborators shared by every handler. Optional
// collaborators that are not configured, or fail to start, stay nil and the
// handlers degrade around them.
type Services struct {
	Config      *config.Config
	DB          *database.DB
	Engine      *engine.Engine
	BatchEngine *engine.Engine
	Census      *census.Client
	Leads       *leads.Service
	Reports     *s3service.Service

	aiConfigured bool
	cache        *census.RedisCache
	redis        *redis.Client
	publisher    *events.KafkaPublisher
}

// NewServices wires the application from cfg.
func NewServices(ctx context.Context, cfg *config.Config) *Services {
	logger := utils.GetLogger()
	s := &Services{Config: cfg}

	calculator := financial.NewCalculator(financial.NewModel(cfg.AffordabilityModel, cfg.MortgageRate, cfg.LoanTermYears))
	opts := engine.Options{Calculator: calculator, AITimeout: cfg.AITimeout}
	s.BatchEngine = engine.New(opts)

	if cfg.GeminiAPIKey != "" {
		gen, err := ai.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Warn("AI reports disabled", utils.Error(err))
		} else {
			opts.Generator = gen
			s.aiConfigured = true
		}
	}
	s.Engine = engine.New(opts)

	var cache census.Cache = census.NewMemoryCache(cfg.CensusCacheTTL, nil)
	if cfg.RedisAddr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		s.cache = census.NewRedisCache(s.redis, cfg.CensusCacheTTL)
		cache = s.cache
	}
	s.Census = census.NewClient(cfg.CensusBaseURL, cfg.CensusAPIKey, cache)

	deps := leads.Dependencies{}
	if cfg.DatabaseConfigured() {
		db, err := database.New(cfg)
		if err != nil {
			logger.Warn("Database unavailable, leads will not be stored", utils.Error(err))
		} else {
			s.DB = db
			deps.Repository = db.Leads()
		}
	}

	if cfg.S3Bucket != "" {
		reports, err := s3service.NewService(ctx, cfg.S3Bucket)
		if err != nil {
			logger.Warn("Report archive disabled", utils.Error(err))
		} else {
			s.Reports = reports
			deps.Archiver = reports
		}
	}

	if cfg.SESSenderEmail != "" {
		mailer, err := ses.NewService(ctx, cfg.SESSenderEmail)
		if err != nil {
			logger.Warn("Report email disabled", utils.Error(err))
		} else {
			deps.Mailer = mailer
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		s.publisher = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		deps.Publisher = s.publisher
	}

	var channels []leads.Channel
	if cfg.CRMAPIURL != "" {
		channels = append(channels, leads.NewCRMChannel(cfg.CRMAPIURL, cfg.CRMAPIKey))
	}
	if cfg.LeadWebhookURL != "" {
		channels = append(channels, leads.NewWebhookChannel(cfg.LeadWebhookURL))
	}
	if len(channels) == 0 {
		logger.Warn("No lead submission channel configured")
	}
	s.Leads = leads.NewService(leads.NewSubmitter(channels...), deps)

	logger.Info("Services initialized",
		utils.Bool("ai", s.aiConfigured),
		utils.Bool("database", s.DB != nil),
		utils.Bool("redis", s.redis != nil),
		utils.Bool("reports", s.Reports != nil),
		utils.Bool("kafka", s.publisher != nil),
		utils.Int("channels", len(channels)))

	return s
}

// HealthOptions returns the health checks for the wired services.
func (s *Services) HealthOptions() HealthOptions {
	opts := HealthOptions{
		AIConfigured: s.aiConfigured,
		Stage:        s.Config.Stage,
		Version:      s.Config.ServiceVersion,
	}
	if s.DB != nil {
		opts.Database = s.DB
	}
	if s.cache != nil {
		opts.Cache = s.cache
	}
	return opts
}

// ReportHandler returns a report handler over the wired services.
func (s *Services) ReportHandler() *ReportHandler {
	return NewReportHandler(s.Engine, s.Census)
}

// LeadHandler returns a lead handler over the wired services.
func (s *Services) LeadHandler() *LeadHandler {
	return NewLeadHandler(s.Engine, s.Census, s.Leads)
}

// ReportLinkHandler returns a report link handler, unavailable without a
// database and an archive bucket.
func (s *Services) ReportLinkHandler() *ReportLinkHandler {
	h := &ReportLinkHandler{}
	if s.DB != nil {
		h.leads = s.DB.Leads()
	}
	if s.Reports != nil {
		h.reports = s.Reports
	}
	return h
}

// BatchHandler returns a batch handler. Batches use the rule-based engine.
func (s *Services) BatchHandler(locale models.Locale) *BatchHandler {
	h := NewBatchHandler(s.BatchEngine, s.Census, nil, locale)
	if s.Reports != nil {
		h.store = s.Reports
	}
	return h
}

// Close releases every connection the services hold.
func (s *Services) Close() {
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			utils.GetLogger().Warn("Failed to close Kafka writer", utils.Error(err))
		}
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if s.DB != nil {
		s.DB.Close()
	}
}

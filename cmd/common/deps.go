// Package common provides shared dependency wiring for command
// implementations.
package common

import (
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/lead-harvester/internal/brightdata"
	"github.com/jonesrussell/lead-harvester/internal/config"
	"github.com/jonesrussell/lead-harvester/internal/database"
	"github.com/jonesrussell/lead-harvester/internal/logger"
	"github.com/jonesrussell/lead-harvester/internal/pipeline"
)

// Deps holds the dependencies every command builds on: configuration,
// logging, the database connection, the collection client, and the
// repositories.
type Deps struct {
	Config *config.Config
	Logger logger.Logger
	DB     *sqlx.DB

	Client    *brightdata.Client
	Snapshots *database.SnapshotRepository
	Responses *database.ResponseRepository
	Emails    *database.EmailRepository
}

// Build loads configuration and wires the full dependency graph. Callers
// own the returned Deps and must Close them.
func Build() (*Deps, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	db, err := database.NewConnection(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Database,
		SSLMode:         cfg.Database.SSLMode,
		MaxConnections:  cfg.Database.MaxConnections,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		syncLogger(log)
		return nil, fmt.Errorf("connect database: %w", err)
	}

	client := brightdata.NewClient(brightdata.Config{
		URL:     cfg.Brightdata.URL,
		APIKey:  cfg.Brightdata.APIKey,
		Timeout: cfg.Brightdata.RequestTimeout,
	}, log)

	return &Deps{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		Client:    client,
		Snapshots: database.NewSnapshotRepository(db),
		Responses: database.NewResponseRepository(db),
		Emails:    database.NewEmailRepository(db),
	}, nil
}

// Close releases the database connection and flushes buffered log entries.
func (d *Deps) Close() {
	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			d.Logger.Warn("Failed to close database", logger.Error(err))
		}
	}
	syncLogger(d.Logger)
}

// NewSubmitter builds the batch submitter from configuration.
func (d *Deps) NewSubmitter() *pipeline.Submitter {
	return pipeline.NewSubmitter(d.Client, d.Snapshots, pipeline.SubmitterConfig{
		BatchSize: d.Config.Harvester.BatchSize,
		Interval:  d.Config.Harvester.SubmitInterval,
	}, d.Logger)
}

// NewRetriever builds the snapshot retriever from configuration.
func (d *Deps) NewRetriever() *pipeline.Retriever {
	return pipeline.NewRetriever(d.Client, d.Snapshots, d.Responses, pipeline.RetrieverConfig{
		Interval: d.Config.Harvester.RetrieveInterval,
	}, d.Logger)
}

// NewExtractor builds the email extractor from configuration.
func (d *Deps) NewExtractor() *pipeline.Extractor {
	return pipeline.NewExtractor(d.Responses, d.Emails, pipeline.ExtractorConfig{
		PageSize: d.Config.Harvester.ExtractPageSize,
	}, d.Logger)
}

// NewPoller builds the readiness poller from configuration.
func (d *Deps) NewPoller() *pipeline.Poller {
	return pipeline.NewPoller(d.Client, d.Snapshots, pipeline.PollerConfig{
		Interval:    d.Config.Harvester.PollInterval,
		MaxAttempts: d.Config.Harvester.PollMaxAttempts,
	}, d.Logger)
}

// syncLogger flushes the logger, ignoring the stdout sync error that zap
// reports on some platforms.
func syncLogger(log logger.Logger) {
	_ = log.Sync()
}

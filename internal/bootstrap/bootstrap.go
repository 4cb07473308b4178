package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dkotenko/docstore/internal/config"
	"github.com/dkotenko/docstore/internal/core/ports"
	"github.com/dkotenko/docstore/internal/core/usecase"
	"github.com/dkotenko/docstore/internal/infrastructure/analyzer/ollama"
	"github.com/dkotenko/docstore/internal/infrastructure/extractor"
	"github.com/dkotenko/docstore/internal/infrastructure/ocr"
	"github.com/dkotenko/docstore/internal/infrastructure/queue/nats"
	"github.com/dkotenko/docstore/internal/infrastructure/repository/postgres"
	"github.com/dkotenko/docstore/internal/infrastructure/resilience"
	"github.com/dkotenko/docstore/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Batches   ports.BatchRepository
	Documents ports.DocumentRepository
	Versions  ports.VersionRepository
	Templates ports.TemplateRepository
	Storage   ports.ObjectStorage

	Intake       ports.BatchIntake
	Orchestrator *usecase.OrchestrateBatchUseCase
	VersionSvc   ports.VersionService
	ExportSvc    ports.ExportService
	TemplateSvc  ports.TemplateService
	Dashboard    ports.DashboardService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	batches := postgres.NewBatchRepository(db)
	documents := postgres.NewDocumentRepository(db)
	versions := postgres.NewVersionRepository(db)
	templates := postgres.NewTemplateRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	ocrClient := ocr.New(cfg.OCRURL, executor)
	textExtractor := extractor.New(storage, ocrClient)
	analyzer := ollama.New(cfg.OllamaURL, cfg.OllamaModel, executor)

	transform := usecase.NewTransformUseCase(
		documents,
		storage,
		textExtractor,
		analyzer,
		time.Duration(cfg.ExtractTimeoutSeconds)*time.Second,
	)
	intake := usecase.NewIntakeUseCase(batches, storage, queue, transform)
	orchestrator := usecase.NewOrchestrateBatchUseCase(batches, storage, transform, cfg.BatchParallelism)
	versionSvc := usecase.NewVersionUseCase(documents, versions)
	exportSvc := usecase.NewExportUseCase(documents, versions, batches)
	templateSvc := usecase.NewTemplateUseCase(templates)
	dashboard := usecase.NewDashboardUseCase(batches, documents)

	return &App{
		Config: cfg,

		Queue:     queue,
		Batches:   batches,
		Documents: documents,
		Versions:  versions,
		Templates: templates,
		Storage:   storage,

		Intake:       intake,
		Orchestrator: orchestrator,
		VersionSvc:   versionSvc,
		ExportSvc:    exportSvc,
		TemplateSvc:  templateSvc,
		Dashboard:    dashboard,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

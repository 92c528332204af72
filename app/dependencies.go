package app

import (
	"context"
	"fmt"

	"github.com/gatewise/accesssim/config"
	"github.com/gatewise/accesssim/middleware"
	"github.com/gatewise/accesssim/models"
	"github.com/gatewise/accesssim/repositories"
	"github.com/gatewise/accesssim/repositories/postgres"
	"github.com/gatewise/accesssim/services/audit"
	"github.com/gatewise/accesssim/services/evaluation"
	"github.com/gatewise/accesssim/services/loader"
	"go.uber.org/zap"
)

// DocumentSource produces the immutable input snapshot for one
// evaluation: the policy set, the subject directory and the context.
type DocumentSource interface {
	Load(ctx context.Context) (*models.PolicySet, *models.SubjectDirectory, *models.ContextSnapshot, error)
}

// FileSource loads all three documents from JSON files.
type FileSource struct {
	loader    *loader.Loader
	documents config.DocumentsConfig
}

// NewFileSource creates a new FileSource
func NewFileSource(l *loader.Loader, documents config.DocumentsConfig) *FileSource {
	return &FileSource{loader: l, documents: documents}
}

// Load implements DocumentSource.
func (s *FileSource) Load(_ context.Context) (*models.PolicySet, *models.SubjectDirectory, *models.ContextSnapshot, error) {
	return s.loader.LoadAll(s.documents.PolicyFile, s.documents.UserFile, s.documents.ContextFile)
}

// StoreSource loads policies and subjects from the database; the context
// snapshot still comes from the context document, since environmental
// facts are not stored.
type StoreSource struct {
	policies    repositories.PolicyRepository
	subjects    repositories.SubjectRepository
	loader      *loader.Loader
	contextFile string
}

// NewStoreSource creates a new StoreSource
func NewStoreSource(policies repositories.PolicyRepository, subjects repositories.SubjectRepository, l *loader.Loader, contextFile string) *StoreSource {
	return &StoreSource{
		policies:    policies,
		subjects:    subjects,
		loader:      l,
		contextFile: contextFile,
	}
}

// Load implements DocumentSource.
func (s *StoreSource) Load(ctx context.Context) (*models.PolicySet, *models.SubjectDirectory, *models.ContextSnapshot, error) {
	set, err := s.policies.ListPolicies(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load policies from store: %w", err)
	}
	dir, err := s.subjects.ListSubjects(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load subjects from store: %w", err)
	}
	snap, err := s.loader.LoadContextSnapshot(s.contextFile)
	if err != nil {
		return nil, nil, nil, err
	}
	return set, dir, snap, nil
}

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	Config *config.Config
	Logger *zap.Logger
	DB     *postgres.DB // nil in file-backed mode

	Source    DocumentSource
	Evaluator *evaluation.Service
	Recorder  *audit.Recorder

	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	docs := loader.New(logger)

	if cfg.Database != nil {
		db, err := postgres.NewDB(*cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		deps.DB = db
		deps.Source = NewStoreSource(
			postgres.NewPolicyRepository(db, logger),
			postgres.NewSubjectRepository(db, logger),
			docs,
			cfg.Documents.ContextFile,
		)
		logger.Info("policy store initialized", zap.String("connection", cfg.Database.LogString()))
	} else {
		deps.Source = NewFileSource(docs, cfg.Documents)
		logger.Info("file-backed documents initialized",
			zap.String("policy_file", cfg.Documents.PolicyFile),
			zap.String("user_file", cfg.Documents.UserFile),
			zap.String("context_file", cfg.Documents.ContextFile))
	}

	if cfg.Documents.CacheTTL > 0 {
		deps.Source = NewCachedSource(deps.Source, cfg.Documents.CacheTTL)
		logger.Info("document snapshot cache enabled",
			zap.Duration("ttl", cfg.Documents.CacheTTL))
	}

	deps.Evaluator = evaluation.NewService(logger)

	deps.Recorder = audit.NewRecorder(audit.NewZapSink(logger), logger, audit.Config{
		BufferSize:  cfg.Audit.BufferSize,
		WorkerCount: cfg.Audit.WorkerCount,
	})
	if err := deps.Recorder.Start(); err != nil {
		return nil, fmt.Errorf("failed to start audit recorder: %w", err)
	}

	if cfg.Auth.Secret != "" {
		validator := middleware.NewHMACValidator(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.Audience)
		deps.AuthMiddleware = middleware.NewAuthMiddleware(validator, logger)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// Close releases held resources.
func (d *Dependencies) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

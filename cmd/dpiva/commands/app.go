package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sirosfoundation/go-dpiva/internal/config"
	"github.com/sirosfoundation/go-dpiva/internal/keystore"
	"github.com/sirosfoundation/go-dpiva/internal/storage"
	"github.com/sirosfoundation/go-dpiva/internal/storage/mongodb"
	"github.com/sirosfoundation/go-dpiva/pkg/security"
	"github.com/sirosfoundation/go-dpiva/pkg/submission"
	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

// app holds what the submit command wires together
type app struct {
	cfg         *config.Config
	logger      *slog.Logger
	credentials *security.CredentialMap
	submitter   *submission.Submitter
	store       storage.ResultStore
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	pub, err := keystore.LoadPublicKey(cfg.Webservice.PublicKeyFile)
	if err != nil {
		return nil, fmt.Errorf("loading public key: %w", err)
	}
	creds, err := keystore.LoadCredentials(cfg.Webservice.CredentialsFile)
	if err != nil {
		return nil, fmt.Errorf("loading credentials: %w", err)
	}

	hc, err := keystore.NewHTTPSConfig(cfg, logger)
	if err != nil {
		return nil, err
	}
	client, err := transport.NewHTTPSClient(hc)
	if err != nil {
		return nil, err
	}

	sub, err := submission.New(submission.Config{
		Credentials: creds,
		PublicKey:   pub,
		Sender:      client,
		Version:     cfg.Webservice.DeclarationVersion,
		Logger:      logger,
	})
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:         cfg,
		logger:      logger,
		credentials: creds,
		submitter:   sub,
		store:       store,
	}, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.ResultStore, error) {
	if !cfg.UsesMongoDB() {
		logger.Debug("no storage configured, results are kept in memory")
		return storage.NewMemoryStore(), nil
	}
	store, err := mongodb.NewStore(ctx, &mongodb.Config{
		URI:        cfg.Storage.MongoDB.URI,
		Database:   cfg.Storage.MongoDB.Database,
		Collection: cfg.Storage.MongoDB.Collection,
	})
	if err != nil {
		return nil, fmt.Errorf("opening result store: %w", err)
	}
	logger.Debug("storing results in MongoDB",
		"database", cfg.Storage.MongoDB.Database,
		"collection", cfg.Storage.MongoDB.Collection)
	return store, nil
}

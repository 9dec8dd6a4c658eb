package submission

import (
	"context"
	"crypto/rsa"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/sirosfoundation/go-dpiva/pkg/declaration"
	"github.com/sirosfoundation/go-dpiva/pkg/message"
	"github.com/sirosfoundation/go-dpiva/pkg/security"
	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

// Sender delivers an envelope to a target and returns the raw response.
// A response with any HTTP status is not an error.
type Sender interface {
	Send(ctx context.Context, target transport.Target, envelope []byte) (*transport.Response, error)
}

// Config holds what a Submitter needs
type Config struct {
	Credentials *security.CredentialMap
	PublicKey   *rsa.PublicKey
	Sender      Sender
	// Version is sent as versaoDeclaracao, default message.DefaultDeclarationVersion
	Version string
	Logger  *slog.Logger
	// TokenOptions are passed to the UsernameToken generator
	TokenOptions []security.TokenOption
}

// Submitter runs submission pipelines. It is safe for concurrent use.
type Submitter struct {
	credentials *security.CredentialMap
	tokens      *security.TokenGenerator
	sender      Sender
	version     string
	logger      *slog.Logger
}

// Item is one declaration of a batch and the client filing it
type Item struct {
	ClientID    string
	Declaration *declaration.Declaration
}

// New creates a Submitter.
func New(cfg Config) (*Submitter, error) {
	if cfg.Sender == nil {
		return nil, errors.New("submission: sender is required")
	}
	tokens, err := security.NewTokenGenerator(cfg.PublicKey, cfg.TokenOptions...)
	if err != nil {
		return nil, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	version := cfg.Version
	if version == "" {
		version = message.DefaultDeclarationVersion
	}
	return &Submitter{
		credentials: cfg.Credentials,
		tokens:      tokens,
		sender:      cfg.Sender,
		version:     version,
		logger:      logger,
	}, nil
}

// Submit runs the pipeline for one declaration filed by clientID.
func (s *Submitter) Submit(ctx context.Context, target transport.Target, clientID string, decl *declaration.Declaration) *Result {
	if decl == nil {
		decl = &declaration.Declaration{Err: errors.New("no declaration")}
	}
	r := NewResult(decl.Name, clientID, target)
	log := s.logger.With(
		"result_id", r.ID,
		"file", r.File,
		"client_id", clientID,
		"target", target,
	)

	defer func() {
		if r.Failed() {
			log.Warn("submission failed", "errors", r.ErrorList)
		} else {
			log.Info("submission accepted", "response", r.Stages[StageResponse].Data)
		}
	}()

	if decl.Err != nil {
		r.StageFail(StageDeclaration, decl.Err)
		return r
	}
	if decl.Info != nil && !strings.HasPrefix(strings.TrimSpace(clientID), decl.Info.NIF) {
		r.AddWarning("declaration NIF %s does not match client %s", decl.Info.NIF, clientID)
	}

	encoded, err := declaration.Encode(decl.Data)
	if err != nil {
		r.StageFail(StageDeclaration, err)
		return r
	}
	r.StageOK(StageDeclaration, describe(decl))

	envelope, err := s.buildEnvelope(clientID, encoded)
	if err != nil {
		r.StageFail(StageEnvelope, err)
		return r
	}
	r.StageOK(StageEnvelope, fmt.Sprintf("%d bytes", len(envelope)))
	if log.Enabled(ctx, slog.LevelDebug) {
		log.Debug("request envelope", "xml", message.Pretty(envelope))
	}

	resp, err := s.sender.Send(ctx, target, envelope)
	if err != nil {
		r.StageFail(StageWebserviceRequest, err)
		return r
	}
	r.markSent()
	r.StageOK(StageWebserviceRequest, fmt.Sprintf("%d %s", resp.StatusCode, resp.StatusMessage))
	log.Debug("response received", "status", resp.StatusCode, "body", string(resp.Body))

	outcome, err := message.ParseResponse(resp)
	if err != nil {
		r.StageFail(StageResponse, err)
		return r
	}
	if !outcome.OK() {
		r.StageFail(StageResponse, &BusinessError{Code: outcome.Code, Message: outcome.Message})
		return r
	}
	r.StageOK(StageResponse, outcome.Message)
	r.succeed()
	return r
}

// SubmitBatch submits items with at most concurrency pipelines in flight.
// Results are in the order of items.
func (s *Submitter) SubmitBatch(ctx context.Context, target transport.Target, items []Item, concurrency int) []*Result {
	results := make([]*Result, len(items))
	if concurrency < 1 {
		concurrency = 1
	}

	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i] = s.Submit(ctx, target, item.ClientID, item.Declaration)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// buildEnvelope generates the filer token, plus the accountant token when
// one is configured, and renders the envelope.
func (s *Submitter) buildEnvelope(clientID, encoded string) ([]byte, error) {
	cred, err := s.credentials.Lookup(clientID)
	if err != nil {
		return nil, err
	}
	filer, err := s.tokens.Generate(clientID, cred.Password)
	if err != nil {
		return nil, err
	}

	req := &message.SubmitRequest{
		Filer:       filer,
		Declaration: encoded,
		Version:     s.version,
	}

	toc, err := s.credentials.Accountant()
	if err != nil {
		return nil, err
	}
	if toc != nil {
		req.Accountant, err = s.tokens.Generate(toc.Username, toc.Password)
		if err != nil {
			return nil, err
		}
	}

	return message.BuildEnvelope(req)
}

func describe(decl *declaration.Declaration) string {
	if decl.Info == nil {
		return decl.Name
	}
	return fmt.Sprintf("NIF %s %s/%s", decl.Info.NIF, decl.Info.Year, decl.Info.Period)
}

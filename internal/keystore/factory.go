package keystore

import (
	"fmt"
	"log/slog"

	"github.com/sirosfoundation/go-dpiva/internal/config"
	"github.com/sirosfoundation/go-dpiva/pkg/transport"
)

// NewEndpoint builds the transport endpoint of a target, loading its client
// certificate and CA bundle when configured.
func NewEndpoint(tc config.TargetConfig) (*transport.Endpoint, error) {
	ep := &transport.Endpoint{URL: tc.Endpoint}

	switch {
	case tc.PFXFile != "":
		cert, err := LoadPKCS12(tc.PFXFile, tc.PFXPassword)
		if err != nil {
			return nil, err
		}
		ep.Certificates = append(ep.Certificates, cert)
	case tc.CertFile != "":
		cert, err := LoadKeyPair(tc.CertFile, tc.KeyFile)
		if err != nil {
			return nil, err
		}
		ep.Certificates = append(ep.Certificates, cert)
	}

	if tc.CAFile != "" {
		pool, err := LoadCertPool(tc.CAFile)
		if err != nil {
			return nil, err
		}
		ep.RootCAs = pool
	}
	return ep, nil
}

// NewHTTPSConfig builds the transport configuration for every configured target.
func NewHTTPSConfig(cfg *config.Config, logger *slog.Logger) (*transport.HTTPSConfig, error) {
	if logger == nil {
		logger = slog.Default()
	}
	hc := transport.DefaultHTTPSConfig()
	hc.Timeout = cfg.Webservice.Timeout
	hc.MaxResponseSize = cfg.Webservice.MaxResponseSize
	hc.Logger = logger

	for name, tc := range cfg.Webservice.Targets {
		target, err := transport.ParseTarget(name)
		if err != nil {
			return nil, err
		}
		ep, err := NewEndpoint(tc)
		if err != nil {
			return nil, fmt.Errorf("target %s: %w", target, err)
		}
		for _, cert := range ep.Certificates {
			if cert.Leaf != nil {
				logger.Debug("client certificate loaded", "target", target,
					"subject", cert.Leaf.Subject.String(), "algorithm", KeyAlgorithm(cert.Leaf),
					"not_after", cert.Leaf.NotAfter)
			}
		}
		hc.Endpoints[target] = ep
	}
	return hc, nil
}

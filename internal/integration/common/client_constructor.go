package common

import (
	"github.com/futig/jarvis-backend/internal/config"
	pkgHTTP "github.com/futig/jarvis-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a JSON connector for cfg. Extra options are applied
// after the defaults, so services can add their own auth header.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	return NewConnectorWithURL(cfg, cfg.Url, logger, extra...)
}

// NewConnectorWithURL is NewBaseConnector with an explicit base URL, for
// services that have a well-known default endpoint.
func NewConnectorWithURL(cfg config.HTTPClientConfig, baseURL string, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: baseURL,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}
	opts = append(opts, extra...)

	return pkgHTTP.NewConnector(connCfg, opts...)
}

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/stewardhq/steward/pkg/logger"
)

// ControlPlane provisions physical databases through the managed-database
// service's HTTP API.
type ControlPlane struct {
	client *resty.Client
	log    *slog.Logger
}

type createDatabaseRequest struct {
	Name string `json:"name"`
}

type createDatabaseResponse struct {
	URL   string `json:"url"`
	Token string `json:"token"`
}

// NewControlPlane builds the client from Config. Transient failures
// (connection errors, 5xx) are retried with backoff before surfacing as
// ErrControlPlaneUnavailable.
func NewControlPlane(cfg Config, log *slog.Logger) (*ControlPlane, error) {
	if cfg.ControlPlaneURL == "" {
		return nil, ErrMissingControlPlaneURL
	}
	if log == nil {
		log = slog.Default()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.ControlPlaneURL, "/")).
		SetTimeout(cfg.RequestTimeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWaitTime).
		SetRetryMaxWaitTime(cfg.RetryMaxWaitTime).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetAuthToken(cfg.ControlPlaneToken).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		})

	return &ControlPlane{client: client, log: log}, nil
}

func (p *ControlPlane) CreateDatabase(ctx context.Context, name string) (Database, error) {
	var out createDatabaseResponse
	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(createDatabaseRequest{Name: name}).
		SetResult(&out).
		Post("/v1/databases")
	if err != nil {
		return Database{}, errors.Join(ErrControlPlaneUnavailable, err)
	}

	switch {
	case resp.StatusCode() == http.StatusConflict:
		return Database{}, fmt.Errorf("%w: %s", ErrNameTaken, name)
	case resp.StatusCode() >= http.StatusInternalServerError:
		return Database{}, fmt.Errorf("%w: status %d", ErrControlPlaneUnavailable, resp.StatusCode())
	case !resp.IsSuccess():
		return Database{}, fmt.Errorf("control plane rejected database %q: status %d", name, resp.StatusCode())
	}

	if out.URL == "" {
		return Database{}, fmt.Errorf("control plane returned no connection url for %q", name)
	}

	p.log.InfoContext(ctx, "tenant database created", logger.Database(name))

	return Database{Name: name, URL: out.URL, Credential: out.Token}, nil
}

package arr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"loopguard/internal/config"
)

// ErrNoInstance reports that no configured instance serves the category.
var ErrNoInstance = errors.New("no instance for category")

// Gateway routes blocklist requests to the instance serving a category.
// Radarr instances are consulted before Sonarr when both claim a category.
type Gateway struct {
	instances []boundInstance
}

type boundInstance struct {
	category string
	kind     string
	client   *Client
}

// NewGateway builds a gateway from the configured instances.
func NewGateway(cfg *config.Config) *Gateway {
	gw := &Gateway{}
	for _, instance := range cfg.RadarrInstances {
		gw.instances = append(gw.instances, boundInstance{
			category: strings.ToLower(strings.TrimSpace(instance.Category)),
			kind:     "radarr",
			client:   NewClient(instance, cfg.VerifySSL, cfg.GatewayTimeout()),
		})
	}
	for _, instance := range cfg.SonarrInstances {
		gw.instances = append(gw.instances, boundInstance{
			category: strings.ToLower(strings.TrimSpace(instance.Category)),
			kind:     "sonarr",
			client:   NewClient(instance, cfg.VerifySSL, cfg.GatewayTimeout()),
		})
	}
	return gw
}

// Blocklist removes the release from the queue of an instance bound to the
// category, with blocklisting enabled. When several instances claim the
// category, a failure on one falls through to the next; the returned kind
// names the instance type that handled the request, for logging.
func (g *Gateway) Blocklist(ctx context.Context, category, title, downloadID string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		return "", ErrNoInstance
	}
	var (
		lastKind string
		lastErr  error
	)
	for _, bound := range g.instances {
		if bound.category != category {
			continue
		}
		if err := bound.client.Blocklist(ctx, title, downloadID); err != nil {
			lastKind = bound.kind
			lastErr = fmt.Errorf("%s blocklist: %w", bound.kind, err)
			continue
		}
		return bound.kind, nil
	}
	if lastErr != nil {
		return lastKind, lastErr
	}
	return "", ErrNoInstance
}

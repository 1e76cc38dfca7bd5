package storage

import (
	"context"
	"strings"

	appcatalog "github.com/velux/backend/internal/application/catalog"
)

var _ appcatalog.ImageURLResolver = PublicURLResolver{}

// PublicURLResolver builds image URLs from a fixed base URL. It serves
// deployments where uploads are disabled but images are still published
// behind a CDN or static host.
type PublicURLResolver struct {
	BaseURL string
}

// NewPublicURLResolver returns nil when baseURL is empty so that callers
// fall back to empty image URLs.
func NewPublicURLResolver(baseURL string) appcatalog.ImageURLResolver {
	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil
	}
	return PublicURLResolver{BaseURL: baseURL}
}

// ImageURL joins the base URL and key
func (r PublicURLResolver) ImageURL(_ context.Context, key string) string {
	if key == "" {
		return ""
	}
	return joinPublicURL(r.BaseURL, key)
}

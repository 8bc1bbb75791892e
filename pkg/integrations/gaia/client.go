package gaia

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/matzehuels/skyrender/pkg/buildinfo"
	"github.com/matzehuels/skyrender/pkg/integrations"
)

// BaseURL is the gaia_source directory of the DR3 release.
const BaseURL = "https://cdn.gea.esac.esa.int/Gaia/gdr3/gaia_source"

// ManifestFile is the checksum listing published next to the shards.
const ManifestFile = "_MD5SUM.txt"

// Client provides access to the Gaia DR3 gaia_source directory.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a Gaia client. timeout bounds each download, body
// included; non-positive means [integrations.DefaultTimeout].
func NewClient(timeout time.Duration) *Client {
	headers := map[string]string{
		"User-Agent": buildinfo.UserAgent(),
	}
	return &Client{
		Client:  integrations.NewClient(timeout, headers),
		baseURL: BaseURL,
	}
}

// WithBaseURL returns a copy of c that downloads from base instead of
// [BaseURL]. Used for mirrors and tests.
func (c *Client) WithBaseURL(base string) *Client {
	cp := *c
	cp.baseURL = strings.TrimRight(base, "/")
	return &cp
}

// BaseURL returns the directory the client downloads from.
func (c *Client) BaseURL() string { return c.baseURL }

// ShardURL returns the download URL of a shard file.
func (c *Client) ShardURL(filename string) string {
	return c.baseURL + "/" + url.PathEscape(filename)
}

// OpenShard starts downloading a shard and returns the still compressed
// body. The caller must close it.
//
// Returns:
//   - [integrations.ErrNotFound] if the shard doesn't exist
//   - [integrations.ErrNetwork] or [integrations.ErrTimeout], wrapped as
//     retryable, for transient failures
func (c *Client) OpenShard(ctx context.Context, filename string) (io.ReadCloser, error) {
	body, err := c.Open(ctx, c.ShardURL(filename))
	if err != nil {
		return nil, fmt.Errorf("shard %s: %w", filename, err)
	}
	return body, nil
}

// FetchManifest downloads the upstream checksum listing.
func (c *Client) FetchManifest(ctx context.Context) ([]byte, error) {
	data, err := c.GetBytes(ctx, c.ShardURL(ManifestFile))
	if err != nil {
		return nil, fmt.Errorf("manifest: %w", err)
	}
	return data, nil
}

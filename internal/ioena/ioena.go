// Package ioena is a client of the ENA browser API that returns taxonomy
// records with lineages as XML.
package ioena

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gnames/gntaxdb/pkg/config"
	"github.com/gnames/gntaxdb/pkg/lineage"
)

type client struct {
	url     string
	timeout time.Duration
	http    *http.Client
}

// New creates a lineage.Source that posts taxids to the configured ENA
// endpoint. Every request is limited by the configured timeout.
func New(cfg *config.Config) lineage.Source {
	timeout := time.Duration(cfg.Taxonomy.TimeoutSec) * time.Second
	return &client{
		url:     cfg.Taxonomy.SourceURL,
		timeout: timeout,
		http:    &http.Client{Timeout: timeout},
	}
}

// Fetch asks for a gzipped download of taxids and copies the response
// body to w.
func (c *client) Fetch(
	ctx context.Context,
	taxids []string,
	w io.Writer,
) (int64, error) {
	if len(taxids) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	form := url.Values{}
	form.Set("accessions", strings.Join(taxids, ","))
	form.Set("download", "true")
	form.Set("gzip", "true")

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, c.url, strings.NewReader(form.Encode()),
	)
	if err != nil {
		return 0, RequestError(c.url, len(taxids), err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, RequestError(c.url, len(taxids), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, StatusError(c.url, resp.StatusCode)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, RequestError(c.url, len(taxids), err)
	}

	slog.Debug("Fetched lineages",
		"taxids", len(taxids),
		"bytes", n,
		"duration", time.Since(start).String(),
	)
	return n, nil
}

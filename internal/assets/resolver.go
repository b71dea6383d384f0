package assets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hhsystems1/Intakeform/internal/cache"
)

const logoCacheKey = "assets:logo"

var ErrEmptyPath = errors.New("asset path is empty")

type Asset struct {
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Data        []byte `json:"data"`
}

// cachedLogo is the cache entry. Suppressed records that both paths failed,
// so repeated requests inside the TTL skip the fetches.
type cachedLogo struct {
	Asset
	Suppressed bool `json:"suppressed,omitempty"`
}

type Fetcher interface {
	Fetch(ctx context.Context, path string) (Asset, error)
}

// Resolver loads the branding image: primary path first, then the fallback,
// then nothing. Each path is tried once.
type Resolver struct {
	Primary  string
	Fallback string
	Fetcher  Fetcher
	Cache    cache.Cache
	TTL      time.Duration
	Log      *slog.Logger
}

func NewResolver(primary, fallback string, c cache.Cache, ttl time.Duration, log *slog.Logger) *Resolver {
	if c == nil {
		c = cache.NewNoop()
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Resolver{
		Primary:  primary,
		Fallback: fallback,
		Fetcher:  NewFetcher(5 * time.Second),
		Cache:    c,
		TTL:      ttl,
		Log:      log,
	}
}

// Resolve returns ok=false when both paths failed and the image should be
// suppressed.
func (r *Resolver) Resolve(ctx context.Context) (Asset, bool) {
	if raw, hit, err := r.Cache.Get(ctx, logoCacheKey); err == nil && hit {
		var cached cachedLogo
		if err := json.Unmarshal(raw, &cached); err == nil {
			if cached.Suppressed {
				return Asset{}, false
			}
			return cached.Asset, true
		}
	} else if err != nil {
		r.Log.Warn("asset cache read failed", slog.String("error", err.Error()))
	}

	asset, err := r.Fetcher.Fetch(ctx, r.Primary)
	if err != nil {
		r.Log.Warn("primary logo unavailable", slog.String("path", r.Primary), slog.String("error", err.Error()))
		asset, err = r.Fetcher.Fetch(ctx, r.Fallback)
		if err != nil {
			r.Log.Warn("fallback logo unavailable", slog.String("path", r.Fallback), slog.String("error", err.Error()))
			r.store(ctx, cachedLogo{Suppressed: true})
			return Asset{}, false
		}
	}

	r.store(ctx, cachedLogo{Asset: asset})
	return asset, true
}

func (r *Resolver) store(ctx context.Context, entry cachedLogo) {
	raw, err := json.Marshal(entry)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, logoCacheKey, raw, r.TTL); err != nil {
		r.Log.Warn("asset cache write failed", slog.String("error", err.Error()))
	}
}

type defaultFetcher struct {
	httpClient *http.Client
}

// NewFetcher reads http(s) URLs over the network and anything else from disk.
func NewFetcher(timeout time.Duration) Fetcher {
	return &defaultFetcher{httpClient: &http.Client{Timeout: timeout}}
}

func (f *defaultFetcher) Fetch(ctx context.Context, path string) (Asset, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Asset{}, ErrEmptyPath
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return f.fetchURL(ctx, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Asset{}, err
	}
	return Asset{Path: path, ContentType: contentType(path, data), Data: data}, nil
}

func (f *defaultFetcher) fetchURL(ctx context.Context, url string) (Asset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Asset{}, err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return Asset{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Asset{}, fmt.Errorf("asset fetch failed: status=%d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return Asset{}, err
	}
	ct := resp.Header.Get("Content-Type")
	if ct == "" {
		ct = contentType(url, data)
	}
	return Asset{Path: url, ContentType: ct, Data: data}, nil
}

func contentType(path string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

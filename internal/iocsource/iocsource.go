// Package iocsource implements spec §1's external loader for the
// compromised-package table: fetching DataDog's consolidated Shai-Hulud IOC
// CSV over the network, caching it locally with a TTL, and parsing it into
// the same map[types.CompromisedPackage]bool shape internal/ioc's embedded
// fallback table uses.
package iocsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/seanhalberthal/shaihulud-scan/internal/types"
)

// DefaultURL is DataDog's consolidated Shai-Hulud IOC list.
const DefaultURL = "https://raw.githubusercontent.com/DataDog/indicators-of-compromise/main/shai-hulud-2.0/consolidated_iocs.csv"

// defaultTTL is how long a cached fetch is considered fresh before Refresh
// hits the network again.
const defaultTTL = 6 * time.Hour

// Source fetches and caches the network IOC table.
type Source struct {
	url        string
	cacheDir   string
	httpClient *http.Client
}

// Option configures a Source.
type Option func(*Source)

// WithURL overrides DefaultURL.
func WithURL(url string) Option {
	return func(s *Source) { s.url = url }
}

// WithCacheDir overrides the default ~/.cache/shaihulud-scan directory.
func WithCacheDir(dir string) Option {
	return func(s *Source) { s.cacheDir = dir }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Source) { s.httpClient = c }
}

// New creates a Source, resolving a default cache directory under the user's
// home directory when none is supplied via WithCacheDir.
func New(opts ...Option) *Source {
	s := &Source{
		url:        DefaultURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cacheDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			s.cacheDir = filepath.Join(home, ".cache", "shaihulud-scan")
		}
	}
	return s
}

// RefreshInfo reports what Refresh did.
type RefreshInfo struct {
	Updated       bool
	PackageCount  int
	CacheAgeHours int
}

type cacheMeta struct {
	LastUpdated string `json:"last_updated"`
}

// Refresh returns the current compromised-package set, fetching over the
// network when the cache is stale or force is true. On any network or parse
// failure it falls back to whatever is on disk; when there is no usable cache
// either, it returns a nil set and a non-nil error so the caller can fall
// back further to ioc.EmbeddedFallbackPackages.
func (s *Source) Refresh(ctx context.Context, force bool) (map[types.CompromisedPackage]bool, RefreshInfo, error) {
	if !force && !s.isStale() {
		if set, err := s.loadCache(); err == nil && set != nil {
			return set, RefreshInfo{Updated: false, PackageCount: len(set), CacheAgeHours: s.cacheAgeHours()}, nil
		}
	}

	set, err := s.fetch(ctx)
	if err != nil {
		if cached, cacheErr := s.loadCache(); cacheErr == nil && cached != nil {
			return cached, RefreshInfo{Updated: false, PackageCount: len(cached), CacheAgeHours: s.cacheAgeHours()}, nil
		}
		return nil, RefreshInfo{}, fmt.Errorf("refresh IOC table: %w", err)
	}

	_ = s.saveCache(set)
	return set, RefreshInfo{Updated: true, PackageCount: len(set), CacheAgeHours: 0}, nil
}

func (s *Source) fetch(ctx context.Context) (map[types.CompromisedPackage]bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", s.url, resp.StatusCode)
	}

	return parseCSV(resp.Body)
}

// parseCSV parses the package_name,package_versions,sources CSV format.
func parseCSV(r io.Reader) (map[types.CompromisedPackage]bool, error) {
	reader := csv.NewReader(bufio.NewReader(r))

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}

	nameCol := findColumn(header, "package_name", "name", "package")
	versionCol := findColumn(header, "package_versions", "version", "compromised_version")
	if nameCol == -1 || versionCol == -1 {
		return nil, fmt.Errorf("CSV missing package_name/package_versions columns")
	}

	set := make(map[types.CompromisedPackage]bool)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(record) <= nameCol || len(record) <= versionCol {
			continue
		}

		name := strings.TrimSpace(record[nameCol])
		versions := splitAndTrim(record[versionCol])
		if name == "" || len(versions) == 0 {
			continue
		}
		for _, v := range versions {
			set[types.CompromisedPackage{Name: name, Version: v}] = true
		}
	}

	return set, nil
}

func splitAndTrim(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func findColumn(header []string, names ...string) int {
	for i, col := range header {
		col = strings.TrimSpace(col)
		for _, name := range names {
			if strings.EqualFold(col, name) {
				return i
			}
		}
	}
	return -1
}

func (s *Source) dataPath() string { return filepath.Join(s.cacheDir, "iocs.json") }
func (s *Source) metaPath() string { return filepath.Join(s.cacheDir, "meta.json") }

func (s *Source) loadCache() (map[types.CompromisedPackage]bool, error) {
	data, err := os.ReadFile(s.dataPath())
	if err != nil {
		return nil, err
	}
	var entries []types.CompromisedPackage
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}
	set := make(map[types.CompromisedPackage]bool, len(entries))
	for _, e := range entries {
		set[e] = true
	}
	return set, nil
}

func (s *Source) saveCache(set map[types.CompromisedPackage]bool) error {
	if s.cacheDir == "" {
		return fmt.Errorf("no cache directory resolved")
	}
	if err := os.MkdirAll(s.cacheDir, 0o750); err != nil {
		return err
	}

	entries := make([]types.CompromisedPackage, 0, len(set))
	for e := range set {
		entries = append(entries, e)
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(s.dataPath(), data, 0o600); err != nil {
		return err
	}

	meta, err := json.Marshal(cacheMeta{LastUpdated: time.Now().UTC().Format(time.RFC3339)})
	if err != nil {
		return err
	}
	return os.WriteFile(s.metaPath(), meta, 0o600)
}

func (s *Source) loadMeta() (*cacheMeta, error) {
	data, err := os.ReadFile(s.metaPath())
	if err != nil {
		return nil, err
	}
	var meta cacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (s *Source) isStale() bool {
	meta, err := s.loadMeta()
	if err != nil {
		return true
	}
	updated, err := time.Parse(time.RFC3339, meta.LastUpdated)
	if err != nil {
		return true
	}
	return time.Since(updated) > defaultTTL
}

func (s *Source) cacheAgeHours() int {
	meta, err := s.loadMeta()
	if err != nil {
		return -1
	}
	updated, err := time.Parse(time.RFC3339, meta.LastUpdated)
	if err != nil {
		return -1
	}
	return int(time.Since(updated).Hours())
}

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Default capability bounds. Requests outside these are clamped by the
// capability clients.
const (
	DefaultCapabilityTimeoutMS = 30000
	DefaultSearchMaxResults    = 5
	DefaultSearchMaxTokens     = 1024
	DefaultMediaSize           = "1024x1024"
)

// Config holds application configuration.
//
// Credentials are never read from config.json; the binary populates
// them from the environment once at startup and passes the config into
// capability constructors. Core packages do no ambient lookup.
type Config struct {
	// SearchBaseURL is the evidence capability endpoint.
	SearchBaseURL string `json:"search_base_url,omitempty"`

	// MediaBaseURL is the media-generation capability endpoint.
	MediaBaseURL string `json:"media_base_url,omitempty"`

	// CapabilityTimeoutMS bounds each external capability call.
	CapabilityTimeoutMS int `json:"capability_timeout_ms"`

	// SearchMaxResults is the default result count per query (clamped 1-20).
	SearchMaxResults int `json:"search_max_results"`

	// SearchMaxTokensPerPage is the per-result snippet token budget (clamped 128-4096).
	SearchMaxTokensPerPage int `json:"search_max_tokens_per_page"`

	// MediaSize is the target image resolution passed to the media capability.
	MediaSize string `json:"media_size,omitempty"`

	// DBMaxOpenConns limits the maximum number of open database connections.
	// 0 means use sql.DB default.
	DBMaxOpenConns int `json:"db_max_open_conns,omitempty"`

	// DBMaxIdleConns limits the maximum number of idle database connections.
	DBMaxIdleConns int `json:"db_max_idle_conns,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`

	// SearchAPIKey authenticates against the evidence capability.
	// Populated from the environment by the binary, not from config.json.
	SearchAPIKey string `json:"-"`

	// MediaAPIKey authenticates against the media-generation capability.
	MediaAPIKey string `json:"-"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		CapabilityTimeoutMS:    DefaultCapabilityTimeoutMS,
		SearchMaxResults:       DefaultSearchMaxResults,
		SearchMaxTokensPerPage: DefaultSearchMaxTokens,
		MediaSize:              DefaultMediaSize,
	}
}

// Load loads configuration from baseDir/config.json.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.studio.
func Load(baseDir string) (*Config, error) {
	cfg, err := loadFileRaw(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.SearchBaseURL = overlay.SearchBaseURL
	if result.SearchBaseURL == "" {
		result.SearchBaseURL = base.SearchBaseURL
	}

	result.MediaBaseURL = overlay.MediaBaseURL
	if result.MediaBaseURL == "" {
		result.MediaBaseURL = base.MediaBaseURL
	}

	result.CapabilityTimeoutMS = overlay.CapabilityTimeoutMS
	if result.CapabilityTimeoutMS == 0 {
		result.CapabilityTimeoutMS = base.CapabilityTimeoutMS
	}

	result.SearchMaxResults = overlay.SearchMaxResults
	if result.SearchMaxResults == 0 {
		result.SearchMaxResults = base.SearchMaxResults
	}

	result.SearchMaxTokensPerPage = overlay.SearchMaxTokensPerPage
	if result.SearchMaxTokensPerPage == 0 {
		result.SearchMaxTokensPerPage = base.SearchMaxTokensPerPage
	}

	result.MediaSize = overlay.MediaSize
	if result.MediaSize == "" {
		result.MediaSize = base.MediaSize
	}

	result.DBMaxOpenConns = overlay.DBMaxOpenConns
	if result.DBMaxOpenConns == 0 {
		result.DBMaxOpenConns = base.DBMaxOpenConns
	}

	result.DBMaxIdleConns = overlay.DBMaxIdleConns
	if result.DBMaxIdleConns == 0 {
		result.DBMaxIdleConns = base.DBMaxIdleConns
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	result.SearchAPIKey = overlay.SearchAPIKey
	if result.SearchAPIKey == "" {
		result.SearchAPIKey = base.SearchAPIKey
	}
	result.MediaAPIKey = overlay.MediaAPIKey
	if result.MediaAPIKey == "" {
		result.MediaAPIKey = base.MediaAPIKey
	}

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

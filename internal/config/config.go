/* Copyright (c) 2026 Eric Schwartz
 * SPDX-License-Identifier: BSD-3-Clause */
package config

import (
	"encoding/json"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	TZ       string
	HTTPAddr string

	// Optional; when set, the checkpoint and run accounting live in postgres
	// instead of the local state file.
	DBDSN string

	LinearAPIKey  string
	LinearURL     string
	LinearPageSize int

	OpenAIKey     string
	OpenAIModel   string
	OpenAITimeout time.Duration

	SlackWebhookURL string

	GranolaCachePath string
	GranolaAPIBase   string
	GranolaAPIToken  string

	StateFile         string
	StartDateOverride string
	LookbackDays      int
	MeetingLookback   int

	// CustomerAliases maps a lowercased customer name to the folder search
	// terms used when locating that customer's meetings.
	CustomerAliases  map[string][]string
	AliasesFile      string

	// Prompt customization blocks, injected into every prompt build instead
	// of being edited in place.
	ProductContext string
	VoiceTone      string
	TrackerContext string

	DigestCron  string
	HTTPTimeout time.Duration
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" { return def }
	return v
}

func atoi(key string, def int) int {
	v := os.Getenv(key)
	if v == "" { return def }
	i, err := strconv.Atoi(v)
	if err != nil { return def }
	return i
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" { return def }
	d, err := time.ParseDuration(v)
	if err != nil { return def }
	return d
}

func defaultGranolaCache() string {
	home, err := os.UserHomeDir()
	if err != nil { return "" }
	return home + "/Library/Application Support/Granola/cache-v3.json"
}

func Load() Config {
	cfg := Config{
		AppEnv:   getenv("APP_ENV", "dev"),
		TZ:       getenv("APP_TZ", "UTC"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		DBDSN: getenv("DB_DSN", ""),

		LinearAPIKey:   getenv("LINEAR_API_KEY", ""),
		LinearURL:      getenv("LINEAR_URL", "https://api.linear.app/graphql"),
		LinearPageSize: atoi("LINEAR_PAGE_SIZE", 100),

		OpenAIKey:     getenv("OPENAI_API_KEY", ""),
		OpenAIModel:   getenv("OPENAI_MODEL", "gpt-4.1"),
		OpenAITimeout: dur("OPENAI_TIMEOUT", 120*time.Second),

		SlackWebhookURL: getenv("SLACK_WEBHOOK_URL", ""),

		GranolaCachePath: getenv("GRANOLA_CACHE_PATH", defaultGranolaCache()),
		GranolaAPIBase:   getenv("GRANOLA_API_BASE", ""),
		GranolaAPIToken:  getenv("GRANOLA_API_TOKEN", ""),

		StateFile:         getenv("STATE_FILE", ".changelog_state.json"),
		StartDateOverride: strings.TrimSpace(getenv("START_DATE", "")),
		LookbackDays:      atoi("LOOKBACK_DAYS", 7),
		MeetingLookback:   atoi("MEETING_LOOKBACK_DAYS", 30),

		AliasesFile: getenv("CUSTOMER_ALIASES_FILE", ""),

		ProductContext: getenv("PRODUCT_CONTEXT", "We build a B2B SaaS product."),
		VoiceTone:      getenv("VOICE_TONE", "Casual and friendly, like a Slack message to customers. Use \"we\" naturally. No marketing-speak or buzzwords."),
		TrackerContext: getenv("TRACKER_CONTEXT", ""),

		DigestCron:  getenv("CRON_SPEC", "0 10 * * FRI"),
		HTTPTimeout: dur("HTTP_TIMEOUT", 15*time.Second),
	}

	if loc, err := time.LoadLocation(cfg.TZ); err == nil {
		time.Local = loc
	} else {
		log.Printf("warning: cannot load TZ %s: %v", cfg.TZ, err)
	}

	// Aliases come from CUSTOMER_ALIASES (inline JSON) or from a file,
	// whichever is present. Format: {"acme": ["acme", "acme corp"]}.
	if raw := strings.TrimSpace(getenv("CUSTOMER_ALIASES", "")); raw != "" {
		cfg.CustomerAliases = parseAliases([]byte(raw))
	} else if cfg.AliasesFile != "" {
		if data, err := os.ReadFile(cfg.AliasesFile); err == nil {
			cfg.CustomerAliases = parseAliases(data)
		}
	}
	return cfg
}

func parseAliases(data []byte) map[string][]string {
	var m map[string][]string
	if err := json.Unmarshal(data, &m); err != nil { return nil }
	out := make(map[string][]string, len(m))
	for k, terms := range m {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" { continue }
		cleaned := make([]string, 0, len(terms))
		for _, t := range terms {
			t = strings.ToLower(strings.TrimSpace(t))
			if t != "" { cleaned = append(cleaned, t) }
		}
		if len(cleaned) > 0 { out[k] = cleaned }
	}
	if len(out) == 0 { return nil }
	return out
}

// AliasTerms returns the folder search terms for a customer, defaulting to
// the lowercased customer name itself when no alias entry exists.
func (c Config) AliasTerms(customer string) []string {
	key := strings.ToLower(strings.TrimSpace(customer))
	if terms, ok := c.CustomerAliases[key]; ok { return terms }
	return []string{key}
}

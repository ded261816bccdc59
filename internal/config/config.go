package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"RecipeScanner/internal/domain"
)

const (
	defaultTimezone = "UTC"
	configPathEnv   = "RECIPE_SCANNER_CONFIG"

	notionAPIKeyEnv     = "NOTION_API_KEY"
	notionRecipesDBEnv  = "NOTION_RECIPES_DB_ID"
	notionWebsitesDBEnv = "NOTION_WEBSITES_DB_ID"
	notionBaseURLEnv    = "NOTION_BASE_URL"
	databaseDSNEnv      = "DATABASE_DSN"
	telegramTokenEnv    = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv   = "TELEGRAM_CHAT_ID"
	pinclicksCookieEnv  = "PINCLICKS_COOKIE"
	logLevelEnv         = "LOG_LEVEL"
	serverAddrEnv       = "SERVER_ADDR"
	scheduledRunsEnv    = "ENABLE_SCHEDULED_AUTOMATION"
)

// envFiles are read before the environment, first file wins. Missing files are ignored.
var envFiles = []string{".env.local", ".env"}

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Notion        NotionConfig       `yaml:"notion"`
	Upsert        UpsertConfig       `yaml:"upsert"`
	Keywords      KeywordsConfig     `yaml:"keywords"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Database      DatabaseConfig     `yaml:"database"`
	Notifications NotificationConfig `yaml:"notifications"`
	PinClicks     PinClicksConfig    `yaml:"pinclicks"`
	Inbox         InboxConfig        `yaml:"inbox"`
	Server        ServerConfig       `yaml:"server"`
	Websites      []WebsiteConfig    `yaml:"websites"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// NotionConfig points at the recipes and websites databases.
type NotionConfig struct {
	APIKey            string        `yaml:"apiKey"`
	RecipesDB         string        `yaml:"recipesDatabaseId"`
	WebsitesDB        string        `yaml:"websitesDatabaseId"`
	BaseURL           string        `yaml:"baseUrl"`
	Version           string        `yaml:"version"`
	RequestsPerSecond float64       `yaml:"requestsPerSecond"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Validate reports which credentials are missing.
func (n NotionConfig) Validate() error {
	var missing []string
	if n.APIKey == "" {
		missing = append(missing, notionAPIKeyEnv)
	}
	if n.RecipesDB == "" {
		missing = append(missing, notionRecipesDBEnv)
	}
	if n.WebsitesDB == "" {
		missing = append(missing, notionWebsitesDBEnv)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", domain.ErrMissingCredentials, strings.Join(missing, ", "))
	}
	return nil
}

// UpsertConfig tunes chunked writes.
type UpsertConfig struct {
	ChunkSize     int           `yaml:"chunkSize"`
	ChunkInterval time.Duration `yaml:"chunkInterval"`
	WriteTimeout  time.Duration `yaml:"writeTimeout"`
}

// KeywordsConfig configures keyword generation.
type KeywordsConfig struct {
	DefaultCount int    `yaml:"defaultCount"`
	ContextFile  string `yaml:"contextFile"`
}

// DatabaseConfig describes Postgres connection details. An empty DSN disables the run journal.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines when automation runs.
type SchedulerConfig struct {
	Enabled        bool           `yaml:"enabled"`
	CronExpression string         `yaml:"cronExpression"`
	Timezone       string         `yaml:"timezone"`
	Prompt         string         `yaml:"prompt"`
	WebsiteDelay   time.Duration  `yaml:"websiteDelay"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// Enabled reports whether both the token and the chat are set.
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ChatID != ""
}

// PinClicksConfig describes where exports are fetched from and saved to.
type PinClicksConfig struct {
	BaseURL        string `yaml:"baseUrl"`
	SearchPath     string `yaml:"searchPath"`
	ExportSelector string `yaml:"exportSelector"`
	Cookie         string `yaml:"cookie"`
	DownloadDir    string `yaml:"downloadDir"`
}

// InboxConfig enables the drop directory when Dir is set.
type InboxConfig struct {
	Dir    string        `yaml:"dir"`
	Settle time.Duration `yaml:"settle"`
}

// ServerConfig holds the HTTP listen address.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// WebsiteConfig is one configured website. Theme fields are optional and
// register a keyword theme when PrimaryTheme is set.
type WebsiteConfig struct {
	Domain          string   `yaml:"domain"`
	Name            string   `yaml:"name"`
	Active          *bool    `yaml:"active"`
	PrimaryTheme    string   `yaml:"primaryTheme"`
	SecondaryThemes []string `yaml:"secondaryThemes"`
	CuisineType     string   `yaml:"cuisineType"`
	DietaryFocus    string   `yaml:"dietaryFocus"`
	CookingMethod   string   `yaml:"cookingMethod"`
	TargetAudience  string   `yaml:"targetAudience"`
}

// Website converts the entry; websites are active unless disabled explicitly.
func (w WebsiteConfig) Website() domain.Website {
	active := w.Active == nil || *w.Active
	return domain.Website{Domain: strings.ToLower(strings.TrimSpace(w.Domain)), Name: w.Name, Active: active}
}

// Theme returns the keyword theme of the entry, if one is configured.
func (w WebsiteConfig) Theme() (domain.WebsiteTheme, bool) {
	if w.PrimaryTheme == "" {
		return domain.WebsiteTheme{}, false
	}
	return domain.WebsiteTheme{
		Domain:          strings.ToLower(strings.TrimSpace(w.Domain)),
		Name:            w.Name,
		PrimaryTheme:    w.PrimaryTheme,
		SecondaryThemes: w.SecondaryThemes,
		CuisineType:     w.CuisineType,
		DietaryFocus:    w.DietaryFocus,
		CookingMethod:   w.CookingMethod,
		TargetAudience:  w.TargetAudience,
	}, true
}

// WebsiteList returns every configured website.
func (c Config) WebsiteList() []domain.Website {
	out := make([]domain.Website, 0, len(c.Websites))
	for _, w := range c.Websites {
		out = append(out, w.Website())
	}
	return out
}

// Themes returns the keyword themes configured alongside the websites.
func (c Config) Themes() []domain.WebsiteTheme {
	var out []domain.WebsiteTheme
	for _, w := range c.Websites {
		if t, ok := w.Theme(); ok {
			out = append(out, t)
		}
	}
	return out
}

// Load reads .env files and YAML configuration (if present) and applies environment overrides.
func Load() Config {
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	setString := func(env string, dst *string) {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}

	setString(notionAPIKeyEnv, &c.Notion.APIKey)
	setString(notionRecipesDBEnv, &c.Notion.RecipesDB)
	setString(notionWebsitesDBEnv, &c.Notion.WebsitesDB)
	setString(notionBaseURLEnv, &c.Notion.BaseURL)
	setString(databaseDSNEnv, &c.Database.DSN)
	setString(telegramTokenEnv, &c.Notifications.Telegram.BotToken)
	setString(telegramChatIDEnv, &c.Notifications.Telegram.ChatID)
	setString(pinclicksCookieEnv, &c.PinClicks.Cookie)
	setString(logLevelEnv, &c.Logging.Level)
	setString(serverAddrEnv, &c.Server.Addr)

	if v := os.Getenv(scheduledRunsEnv); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("config: %s=%q is not a boolean, ignoring", scheduledRunsEnv, v)
		} else {
			c.Scheduler.Enabled = enabled
		}
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, _ = time.LoadLocation(defaultTimezone)
		c.Scheduler.Timezone = defaultTimezone
	}
	c.Scheduler.location = loc
}

func mergeConfig(base, override Config) Config {
	mergeString(&base.Logging.Level, override.Logging.Level)
	mergeString(&base.Logging.Format, override.Logging.Format)

	mergeString(&base.Notion.APIKey, override.Notion.APIKey)
	mergeString(&base.Notion.RecipesDB, override.Notion.RecipesDB)
	mergeString(&base.Notion.WebsitesDB, override.Notion.WebsitesDB)
	mergeString(&base.Notion.BaseURL, override.Notion.BaseURL)
	mergeString(&base.Notion.Version, override.Notion.Version)
	if override.Notion.RequestsPerSecond != 0 {
		base.Notion.RequestsPerSecond = override.Notion.RequestsPerSecond
	}
	mergeDuration(&base.Notion.Timeout, override.Notion.Timeout)

	if override.Upsert.ChunkSize > 0 {
		base.Upsert.ChunkSize = override.Upsert.ChunkSize
	}
	mergeDuration(&base.Upsert.ChunkInterval, override.Upsert.ChunkInterval)
	mergeDuration(&base.Upsert.WriteTimeout, override.Upsert.WriteTimeout)

	if override.Keywords.DefaultCount > 0 {
		base.Keywords.DefaultCount = override.Keywords.DefaultCount
	}
	mergeString(&base.Keywords.ContextFile, override.Keywords.ContextFile)

	if override.Scheduler.Enabled {
		base.Scheduler.Enabled = true
	}
	mergeString(&base.Scheduler.CronExpression, override.Scheduler.CronExpression)
	mergeString(&base.Scheduler.Timezone, override.Scheduler.Timezone)
	mergeString(&base.Scheduler.Prompt, override.Scheduler.Prompt)
	mergeDuration(&base.Scheduler.WebsiteDelay, override.Scheduler.WebsiteDelay)

	mergeString(&base.Database.DSN, override.Database.DSN)

	mergeString(&base.Notifications.Telegram.BaseURL, override.Notifications.Telegram.BaseURL)
	mergeString(&base.Notifications.Telegram.BotToken, override.Notifications.Telegram.BotToken)
	mergeString(&base.Notifications.Telegram.ChatID, override.Notifications.Telegram.ChatID)

	mergeString(&base.PinClicks.BaseURL, override.PinClicks.BaseURL)
	mergeString(&base.PinClicks.SearchPath, override.PinClicks.SearchPath)
	mergeString(&base.PinClicks.ExportSelector, override.PinClicks.ExportSelector)
	mergeString(&base.PinClicks.Cookie, override.PinClicks.Cookie)
	mergeString(&base.PinClicks.DownloadDir, override.PinClicks.DownloadDir)

	mergeString(&base.Inbox.Dir, override.Inbox.Dir)
	mergeDuration(&base.Inbox.Settle, override.Inbox.Settle)

	mergeString(&base.Server.Addr, override.Server.Addr)

	if len(override.Websites) > 0 {
		base.Websites = override.Websites
	}

	return base
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeDuration(dst *time.Duration, v time.Duration) {
	if v > 0 {
		*dst = v
	}
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Notion: NotionConfig{
			BaseURL:           "https://api.notion.com/v1",
			Version:           "2022-06-28",
			RequestsPerSecond: 3,
			Timeout:           30 * time.Second,
		},
		Upsert:   UpsertConfig{ChunkSize: 5, ChunkInterval: time.Second, WriteTimeout: 20 * time.Second},
		Keywords: KeywordsConfig{DefaultCount: 3, ContextFile: "data/keyword-contexts.yaml"},
		Scheduler: SchedulerConfig{
			CronExpression: "0 2 * * *",
			Timezone:       defaultTimezone,
			WebsiteDelay:   3 * time.Second,
			location:       tz,
		},
		PinClicks: PinClicksConfig{
			BaseURL:     "https://app.pinclicks.com",
			DownloadDir: "data/exports",
		},
		Inbox:  InboxConfig{Settle: 500 * time.Millisecond},
		Server: ServerConfig{Addr: ":3000"},
	}
}

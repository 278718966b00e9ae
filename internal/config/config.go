package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/dsyryh/feedsync/internal/domain/models"
)

// PriceSource selects where priced products come from.
type PriceSource string

const (
	// PriceSourceArchive reads the price list shipped inside the mail archive.
	PriceSourceArchive PriceSource = "archive"
	// PriceSourceSheets pushes stock into the external spreadsheet and reads
	// it back as the priced source of truth.
	PriceSourceSheets PriceSource = "sheets"
)

// RunMode selects between a single run and a cron-driven daemon.
type RunMode string

const (
	RunModeOnce RunMode = "once"
	RunModeCron RunMode = "cron"
)

// Config represents the full application configuration surface.
type Config struct {
	Mail      MailConfig
	Dirs      DirsConfig
	Feed      FeedConfig
	Rules     RulesConfig
	Sheets    SheetsConfig
	Ledger    LedgerConfig
	MongoDB   MongoDBConfig
	Scheduler SchedulerConfig
}

// MailConfig contains IMAP credentials and the message filter.
type MailConfig struct {
	Address        string
	Password       string
	Server         string
	SubjectPattern *regexp.Regexp
	ScanDepth      uint32
}

// DirsConfig holds the local working directories.
type DirsConfig struct {
	SaveDir   string
	ResultDir string
}

// FeedConfig describes the published artifact and its remote location.
type FeedConfig struct {
	GitHubToken string
	GitHubRepo  string
	RemotePath  string
	CSVHeader   bool
}

// RulesConfig holds the business transforms applied during reconciliation.
type RulesConfig struct {
	MarkupFactor       decimal.Decimal
	StockCap           int
	MultiplicityPhrase string
	Brand              string
	Aliases            models.ColumnAliases
	PriceSource        PriceSource
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	SheetName       string
}

// LedgerConfig points at the processed-archives ledger file.
type LedgerConfig struct {
	Path string
}

// MongoDBConfig holds settings for the optional run-report archive.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// SchedulerConfig holds run-mode settings.
type SchedulerConfig struct {
	Mode         RunMode
	CronSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from the
		// environment directly.
		_ = godotenv.Load()
	}

	pattern, err := regexp.Compile(getenvWithDefault("SUBJECT_PATTERN", "Остатки Подольск от"))
	if err != nil {
		return nil, fmt.Errorf("invalid SUBJECT_PATTERN: %w", err)
	}

	markup, err := decimal.NewFromString(getenvWithDefault("MARKUP_FACTOR", "1.2"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKUP_FACTOR: %w", err)
	}

	stockCap, err := strconv.Atoi(getenvWithDefault("STOCK_CAP", "10"))
	if err != nil {
		return nil, fmt.Errorf("invalid STOCK_CAP: %w", err)
	}

	scanDepth, err := strconv.ParseUint(getenvWithDefault("MAIL_SCAN_DEPTH", "50"), 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid MAIL_SCAN_DEPTH: %w", err)
	}

	aliases := models.DefaultAliases()
	if custom := os.Getenv("ARTICLE_ALIASES"); custom != "" {
		aliases[models.RoleArticle] = splitAliases(custom)
	}
	if custom := os.Getenv("QUANTITY_ALIASES"); custom != "" {
		aliases[models.RoleQuantity] = splitAliases(custom)
	}

	cfg := &Config{
		Mail: MailConfig{
			Address:        os.Getenv("EMAIL"),
			Password:       os.Getenv("PASSWORD"),
			Server:         getenvWithDefault("IMAP_SERVER", "imap.gmail.com:993"),
			SubjectPattern: pattern,
			ScanDepth:      uint32(scanDepth),
		},
		Dirs: DirsConfig{
			SaveDir:   getenvWithDefault("SAVE_DIR", "downloads"),
			ResultDir: getenvWithDefault("RESULT_DIR", "result"),
		},
		Feed: FeedConfig{
			GitHubToken: os.Getenv("GITHUB_TOKEN"),
			GitHubRepo:  os.Getenv("GITHUB_REPO"),
			RemotePath:  getenvWithDefault("FEED_PATH", "price_for_emex.csv"),
			CSVHeader:   getenvWithDefault("CSV_HEADER", "false") == "true",
		},
		Rules: RulesConfig{
			MarkupFactor:       markup,
			StockCap:           stockCap,
			MultiplicityPhrase: getenvWithDefault("MULTIPLICITY_TOKEN", "диск тормозной"),
			Brand:              getenvWithDefault("BRAND", "AVTOPRIBOR"),
			Aliases:            aliases,
			PriceSource:        PriceSource(getenvWithDefault("PRICE_SOURCE", string(PriceSourceArchive))),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("SPREADSHEET_ID"),
			SheetName:       getenvWithDefault("SHEET_NAME", "Прайс"),
		},
		Ledger: LedgerConfig{
			Path: getenvWithDefault("LEDGER_PATH", "processed_archives.txt"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "feedsync"),
		},
		Scheduler: SchedulerConfig{
			Mode:         RunMode(getenvWithDefault("RUN_MODE", string(RunModeOnce))),
			CronSchedule: getenvWithDefault("CRON_SCHEDULE", "0 8 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	switch {
	case c.Mail.Address == "":
		return errors.New("EMAIL must be provided")
	case c.Mail.Password == "":
		return errors.New("PASSWORD must be provided")
	case c.Mail.Server == "":
		return errors.New("IMAP_SERVER must not be empty")
	}

	if c.Dirs.SaveDir == "" || c.Dirs.ResultDir == "" {
		return errors.New("SAVE_DIR and RESULT_DIR must not be empty")
	}

	if c.Rules.StockCap <= 0 {
		return errors.New("STOCK_CAP must be positive")
	}

	if !c.Rules.MarkupFactor.IsPositive() {
		return errors.New("MARKUP_FACTOR must be positive")
	}

	switch c.Rules.PriceSource {
	case PriceSourceArchive:
	case PriceSourceSheets:
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided in sheets mode")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("SPREADSHEET_ID must be provided in sheets mode")
		}
	default:
		return fmt.Errorf("unknown PRICE_SOURCE %q", c.Rules.PriceSource)
	}

	switch c.Scheduler.Mode {
	case RunModeOnce:
	case RunModeCron:
		if c.Scheduler.CronSchedule == "" {
			return errors.New("CRON_SCHEDULE must be provided in cron mode")
		}
	default:
		return fmt.Errorf("unknown RUN_MODE %q", c.Scheduler.Mode)
	}

	// GitHub settings may be left empty: the run then produces local artifacts
	// only and skips publishing.
	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func splitAliases(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(strings.ToLower(p)); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

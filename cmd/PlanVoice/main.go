package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/BenefitSphere/PlanVoice/internal/api"
	"github.com/BenefitSphere/PlanVoice/internal/enhance"
	"github.com/BenefitSphere/PlanVoice/internal/genai"
	"github.com/BenefitSphere/PlanVoice/internal/lockfile"
	"github.com/BenefitSphere/PlanVoice/internal/store"
	"github.com/BenefitSphere/PlanVoice/internal/task"
	"github.com/BenefitSphere/PlanVoice/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for PlanVoice state data
	DefaultStateDir = "/var/lib/planvoice"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "planvoice.db"
	// DefaultAccountBalance is the vested balance assumed for sessions without one
	DefaultAccountBalance = 85000
	// DefaultAnnualSalary is the salary assumed for sessions without one
	DefaultAnnualSalary = 60000
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// SQLite state is single-writer; refuse to start over a live instance.
	if store.DetectDSNType(*flags.dbDSN) == "sqlite" {
		lock, err := lockfile.AcquireLock(filepath.Dir(*flags.dbDSN))
		if err != nil {
			slog.Error("Failed to acquire state directory lock", "error", err)
			os.Exit(1)
		}
		defer lock.Release()
	}

	// Build module options
	storeOpts := buildStoreOptions(flags)
	apiOpts := buildAPIOptions(flags, config)
	enhancer := buildEnhancer(flags, config)

	// Start the service
	slog.Info("Bootstrapping PlanVoice with configured modules")
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "enhancement_enabled", config.EnhancementOn)
	if err := api.Run(storeOpts, enhancer, apiOpts...); err != nil {
		slog.Error("PlanVoice failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("PlanVoice exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL    string
	StateDir       string
	OpenAIKey      string
	APIAddr        string
	EnhanceURL     string
	EnhancementOn  bool
	AccountBalance float64
	AnnualSalary   float64
}

// Flags holds command line flag values
type Flags struct {
	stateDir   *string
	dbDSN      *string
	openaiKey  *string
	apiAddr    *string
	enhanceURL *string
}

// initializeLogger sets up structured logging with debug level
func initializeLogger() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		StateDir:       os.Getenv("PLANVOICE_STATE_DIR"),
		OpenAIKey:      os.Getenv("OPENAI_API_KEY"),
		APIAddr:        os.Getenv("API_ADDR"),
		EnhanceURL:     os.Getenv("ENHANCEMENT_ENDPOINT"),
		EnhancementOn:  util.ParseBoolEnv("ENHANCEMENT_ENABLED", false),
		AccountBalance: util.ParseFloatEnv("DEFAULT_ACCOUNT_BALANCE", DefaultAccountBalance),
		AnnualSalary:   util.ParseFloatEnv("DEFAULT_ANNUAL_SALARY", DefaultAnnualSalary),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No PLANVOICE_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	} else {
		slog.Debug("PLANVOICE_STATE_DIR found in environment", "state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", os.Getenv("DATABASE_URL") != "",
		"PLANVOICE_STATE_DIR", config.StateDir,
		"OPENAI_API_KEY_SET", config.OpenAIKey != "",
		"API_ADDR", config.APIAddr,
		"ENHANCEMENT_ENDPOINT_SET", config.EnhanceURL != "",
		"ENHANCEMENT_ENABLED", config.EnhancementOn)

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		stateDir:   flag.String("state-dir", config.StateDir, "state directory for PlanVoice data (overrides $PLANVOICE_STATE_DIR)"),
		dbDSN:      flag.String("db-dsn", config.DatabaseURL, "database DSN for the audit store (overrides $DATABASE_URL)"),
		openaiKey:  flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key for text enhancement (overrides $OPENAI_API_KEY)"),
		apiAddr:    flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		enhanceURL: flag.String("enhancement-endpoint", config.EnhanceURL, "HTTP enhancement service endpoint (overrides $ENHANCEMENT_ENDPOINT)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"openaiKeySet", *flags.openaiKey != "",
		"apiAddr", *flags.apiAddr,
		"enhanceURL_set", *flags.enhanceURL != "")

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "new_state_dir", *flags.stateDir)
	}

	return flags
}

// buildStoreOptions constructs store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		// Check if it's a PostgreSQL DSN using the shared detection function
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql")
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			// Assume SQLite for file paths
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags, config Config) []api.Option {
	apiOpts := []api.Option{
		api.WithDefaultProfile(task.Profile{
			AccountBalance: config.AccountBalance,
			AnnualSalary:   config.AnnualSalary,
		}),
	}
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	return apiOpts
}

// buildEnhancer selects the enhancement backend. Responses pass through
// unchanged when enhancement is disabled or no backend is configured.
func buildEnhancer(flags Flags, config Config) enhance.TextEnhancer {
	if !config.EnhancementOn {
		slog.Debug("Enhancement disabled, responses pass through unchanged")
		return enhance.Noop{}
	}

	if *flags.enhanceURL != "" {
		backend, err := enhance.NewHTTPBackend(enhance.WithEndpoint(*flags.enhanceURL))
		if err != nil {
			slog.Error("Failed to configure HTTP enhancement backend, falling back to passthrough", "error", err)
			return enhance.Noop{}
		}
		slog.Info("Using HTTP enhancement backend")
		return enhance.New(backend)
	}

	if *flags.openaiKey != "" {
		client, err := genai.NewClient(genai.WithAPIKey(*flags.openaiKey))
		if err != nil {
			slog.Error("Failed to configure OpenAI enhancement backend, falling back to passthrough", "error", err)
			return enhance.Noop{}
		}
		slog.Info("Using OpenAI enhancement backend")
		return enhance.New(enhance.NewOpenAIBackend(client))
	}

	slog.Warn("Enhancement enabled but no backend configured, responses pass through unchanged")
	return enhance.Noop{}
}

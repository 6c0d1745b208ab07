package cmd

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/skillmatch/internal/catalog"
	"github.com/spigell/skillmatch/internal/gaps"
	"github.com/spigell/skillmatch/internal/logger"
	"github.com/spigell/skillmatch/internal/training"
	"github.com/spigell/skillmatch/internal/workflow"
)

const (
	app       = "skillmatch"
	envPrefix = "SKILLMATCH"
)

type Config struct {
	APIURL      string            `mapstructure:"api-url" validate:"required,url"`
	DatabaseURL string            `mapstructure:"database-url"`
	Catalog     catalog.Config    `mapstructure:"catalog"`
	AI          AIConfig          `mapstructure:"ai"`
	Matching    MatchingConfig    `mapstructure:"matching"`
	Training    TrainingConfig    `mapstructure:"training"`
	Server      ServerConfig      `mapstructure:"server"`
	Timeouts    workflow.Timeouts `mapstructure:"timeouts"`
}

type AIConfig struct {
	Provider     string         `mapstructure:"provider" validate:"omitempty,oneof=gemini openai anthropic heuristic"`
	MaxLogLength int            `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       ProviderConfig `mapstructure:"gemini"`
	OpenAI       ProviderConfig `mapstructure:"openai"`
	Anthropic    ProviderConfig `mapstructure:"anthropic"`
}

type ProviderConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url" validate:"omitempty,url"`
}

type MatchingConfig struct {
	gaps.Config `mapstructure:",squash"`

	RankThreshold float64 `mapstructure:"rank-threshold" validate:"gt=0,lte=1"`
	MaxJobs       int     `mapstructure:"max-jobs" validate:"gte=1"`
	FetchLimit    int     `mapstructure:"fetch-limit" validate:"gte=1"`
}

type TrainingConfig struct {
	Limit int `mapstructure:"limit" validate:"gte=1"`
}

type ServerConfig struct {
	Port      int  `mapstructure:"port" validate:"gt=0,lte=65535"`
	DebugLogs bool `mapstructure:"debug-logs"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "skillmatch matches candidates to jobs and recommends trainings for their skill gaps",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is skillmatch.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api-url", catalog.DefaultAPIURL)
	v.SetDefault("database-url", "")

	v.SetDefault("catalog.timeout", 10*time.Second)
	v.SetDefault("catalog.requests-per-second", 0)
	v.SetDefault("catalog.burst", 1)
	v.SetDefault("catalog.max-retries", 3)

	v.SetDefault("ai.provider", "heuristic")
	v.SetDefault("ai.max-log-length", 200)
	for _, provider := range []string{"gemini", "openai", "anthropic"} {
		v.SetDefault("ai."+provider+".api-key", "")
		v.SetDefault("ai."+provider+".api-key-file", "")
		v.SetDefault("ai."+provider+".model", "")
		v.SetDefault("ai."+provider+".base-url", "")
	}

	v.SetDefault("matching.good-match-threshold", 60)
	v.SetDefault("matching.min-good-matches", 2)
	v.SetDefault("matching.gap-limit", 5)
	v.SetDefault("matching.rank-threshold", workflow.DefaultRankThreshold)
	v.SetDefault("matching.max-jobs", workflow.DefaultMaxJobs)
	v.SetDefault("matching.fetch-limit", workflow.DefaultJobFetchLimit)

	v.SetDefault("training.limit", training.DefaultLimit)
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.debug-logs", false)

	v.SetDefault("timeouts.profile", 10*time.Second)
	v.SetDefault("timeouts.search", 15*time.Second)
	v.SetDefault("timeouts.classify", 20*time.Second)
	v.SetDefault("timeouts.training", 15*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional: defaults and environment are enough to
	// run. An explicitly given file must parse.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.Catalog.APIURL = config.APIURL
	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &config, nil
}

func newLogger() *zap.Logger {
	l, err := logger.New(logger.Options{
		JSON:  viper.GetBool("json"),
		Debug: viper.GetBool("debug"),
	})
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

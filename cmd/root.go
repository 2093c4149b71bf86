package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "hh-interviewer"
)

type Config struct {
	Server    *ServerConfig    `mapstructure:"server"`
	AI        *AIConfig        `mapstructure:"ai"`
	Interview *InterviewConfig `mapstructure:"interview"`
}

type ServerConfig struct {
	Listen       string        `mapstructure:"listen"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout"`
	WriteTimeout time.Duration `mapstructure:"write-timeout"`
}

type AIConfig struct {
	Provider         string        `mapstructure:"provider"`
	EvaluationPolicy string        `mapstructure:"evaluation-policy"`
	TurnTimeout      time.Duration `mapstructure:"turn-timeout"`
	Gemini           *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile      string  `mapstructure:"api-key-file"`
	APIKey          string  `mapstructure:"api-key"`
	Model           string  `mapstructure:"model"`
	MaxRetries      int     `mapstructure:"max-retries"`
	Temperature     float32 `mapstructure:"temperature"`
	MaxOutputTokens int32   `mapstructure:"max-output-tokens"`
	MaxLogLength    int     `mapstructure:"max-log-length"`
}

type InterviewConfig struct {
	JobDescriptionFile string            `mapstructure:"job-description-file"`
	ResumeFile         string            `mapstructure:"resume-file"`
	TranscriptDir      string            `mapstructure:"transcript-dir"`
	Schedule           []ScheduleConfig  `mapstructure:"schedule"`
	HeadHunter         *HeadHunterConfig `mapstructure:"headhunter"`
}

// HeadHunterConfig points the interview at an hh.ru vacancy and resume instead of local files.
type HeadHunterConfig struct {
	Vacancy   string `mapstructure:"vacancy"`
	ResumeID  string `mapstructure:"resume-id"`
	TokenFile string `mapstructure:"token-file"`
}

type ScheduleConfig struct {
	Round    string        `mapstructure:"round"`
	Duration time.Duration `mapstructure:"duration"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-interviewer runs LLM driven job interviews over HTTP or in the terminal",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	bindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE")
	bindEnv("server.listen", "HH_INTERVIEWER_LISTEN")
	bindEnv("interview.headhunter.token-file", "HH_TOKEN_FILE")

	viper.SetDefault("server.listen", ":3000")
	viper.SetDefault("server.read-timeout", 30*time.Second)
	viper.SetDefault("server.write-timeout", 90*time.Second)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.evaluation-policy", "balanced")
	viper.SetDefault("ai.turn-timeout", 45*time.Second)
	viper.SetDefault("ai.gemini.model", "gemini-2.0-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.temperature", 0.6)
	viper.SetDefault("ai.gemini.max-output-tokens", 400)
	viper.SetDefault("ai.gemini.max-log-length", 200)

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func bindEnv(key, env string) {
	if err := viper.BindEnv(key, env); err != nil {
		log.Fatalf("binding %s environment variable: %v", env, err)
	}
}

func initConfig() {
	// A missing .env file is fine, the environment may already be set.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app)
	viper.SetConfigType("yaml")

	// Without a config file defaults and environment are used.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}
	if config.Server == nil {
		config.Server = &ServerConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Interview == nil {
		config.Interview = &InterviewConfig{}
	}
	if config.Interview.HeadHunter == nil {
		config.Interview.HeadHunter = &HeadHunterConfig{}
	}

	return config, nil
}

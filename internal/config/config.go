package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
	Attempts AttemptsConfig `mapstructure:"attempts"`
	Database DatabaseConfig `mapstructure:"database"`
}

type QuizConfig struct {
	QuestionCount       int            `mapstructure:"question_count" validate:"gte=1"`
	CurrencyTolerance   float64        `mapstructure:"currency_tolerance" validate:"gt=0"`
	PercentageTolerance float64        `mapstructure:"percentage_tolerance" validate:"gt=0"`
	Sampling            SamplingConfig `mapstructure:"sampling"`
}

type SamplingConfig struct {
	Principals   []float64 `mapstructure:"principals" validate:"min=1"`
	RateTickMin  int       `mapstructure:"rate_tick_min"`
	RateTickMax  int       `mapstructure:"rate_tick_max" validate:"gtefield=RateTickMin"`
	RateTickStep float64   `mapstructure:"rate_tick_step" validate:"gt=0"`
	DaysMin      int       `mapstructure:"days_min" validate:"gte=1"`
	DaysMax      int       `mapstructure:"days_max" validate:"gtefield=DaysMin"`
	MonthsMin    int       `mapstructure:"months_min" validate:"gte=1"`
	MonthsMax    int       `mapstructure:"months_max" validate:"gtefield=MonthsMin"`
	YearsMin     int       `mapstructure:"years_min" validate:"gte=1"`
	YearsMax     int       `mapstructure:"years_max" validate:"gtefield=YearsMin"`
}

type AttemptsConfig struct {
	Backend  string `mapstructure:"backend" validate:"oneof=mysql file none"`
	FilePath string `mapstructure:"file_path"`
}

type DatabaseConfig struct {
	Host            string            `mapstructure:"host"`
	Port            int               `mapstructure:"port"`
	Database        string            `mapstructure:"database"`
	Username        string            `mapstructure:"username"`
	Password        string            `mapstructure:"password"`
	TLS             bool              `mapstructure:"tls"`
	Params          map[string]string `mapstructure:"params"`
	MaxOpenConns    int               `mapstructure:"max_open_conns"`
	MaxIdleConns    int               `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int               `mapstructure:"conn_max_lifetime_seconds"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/finquiz")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("quiz.question_count", 5)
	v.SetDefault("quiz.currency_tolerance", 1.0)
	v.SetDefault("quiz.percentage_tolerance", 0.015)
	v.SetDefault("quiz.sampling.principals", []float64{500, 1000, 5000, 10000, 20000, 50000})
	v.SetDefault("quiz.sampling.rate_tick_min", 10)
	v.SetDefault("quiz.sampling.rate_tick_max", 60)
	v.SetDefault("quiz.sampling.rate_tick_step", 0.12)
	v.SetDefault("quiz.sampling.days_min", 30)
	v.SetDefault("quiz.sampling.days_max", 700)
	v.SetDefault("quiz.sampling.months_min", 2)
	v.SetDefault("quiz.sampling.months_max", 24)
	v.SetDefault("quiz.sampling.years_min", 1)
	v.SetDefault("quiz.sampling.years_max", 10)
	v.SetDefault("attempts.backend", "file")
	v.SetDefault("attempts.file_path", filepath.Join("outputs", "attempts.yml"))
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.database", "local")
	v.SetDefault("database.username", "user")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})

	// Bind database password to environment variable
	if err := v.BindEnv("database.password", "DB_PASSWORD"); err != nil {
		return nil, fmt.Errorf("failed to bind DB_PASSWORD environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

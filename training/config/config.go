package config

import (
	"log"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/wolox-training/training-service/pkg/circuit_breaker"
	"github.com/wolox-training/training-service/pkg/kafka"
	"github.com/wolox-training/training-service/pkg/logger"
	"github.com/wolox-training/training-service/pkg/postgres"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"TRAINING_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"TRAINING_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE"`
}

type OpenLibrary struct {
	BaseURL        string        `envconfig:"OPENLIBRARY_BASE_URL" default:"https://openlibrary.org/api/books"`
	Timeout        time.Duration `envconfig:"OPENLIBRARY_TIMEOUT" default:"10s"`
	CircuitBreaker circuit_breaker.Config
}

type Config struct {
	Server      HTTPServer   `yaml:"server"`
	Database    postgres.DB  `yaml:"db"`
	Kafka       kafka.Config `yaml:"kafka"`
	OpenLibrary OpenLibrary  `yaml:"openLibrary"`
	Log         logger.Log   `yaml:"log"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options set values that the
// environment may still override.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = &config
	})

	return cfg
}

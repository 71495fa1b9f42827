// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек сервиса.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	JWTToken                `yaml:"jwttoken"`
	Gateway                 `yaml:"gateway"`
	Simulator               `yaml:"simulator"`
	RabbitMQ                `yaml:"rabbitmq"`
	AdminBootstrap          `yaml:"admin_bootstrap"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	TimeoutRedis time.Duration `yaml:"timeoutredis"`
}

// JWTToken структура для работы с jwt-токеном.
type JWTToken struct {
	JWTSecretKey string        `yaml:"jwt_secret_key" env:"JWT_SECRET_KEY"`
	TokenTTL     time.Duration `yaml:"token_ttl" env-default:"24h"`
}

// Gateway содержит реквизиты внешнего платёжного шлюза.
// Если SecretKey пуст, приложение работает с симулятором платежей.
type Gateway struct {
	APIURL         string        `yaml:"api_url"`
	SecretKey      string        `yaml:"secret_key" env:"GATEWAY_SECRET_KEY"`
	PriceID        string        `yaml:"price_id"`
	BaseURL        string        `yaml:"base_url" env-default:"http://localhost:8080"`
	RequestTimeout time.Duration `yaml:"request_timeout" env-default:"10s"`
}

// Simulator настраивает симулятор обработки платежей.
type Simulator struct {
	MaturationWindow time.Duration `yaml:"maturation_window" env-default:"60s"`
	AmountMinor      int64         `yaml:"amount_minor" env-default:"1990"`
	Currency         string        `yaml:"currency" env-default:"BRL"`
}

// RabbitMQ содержит параметры подключения к брокеру событий.
// Пустой ConnectionString отключает публикацию событий.
type RabbitMQ struct {
	ConnectionString string        `yaml:"connection_string"`
	Retries          int           `yaml:"retries" env-default:"5"`
	RetryDelay       time.Duration `yaml:"retry_delay" env-default:"2s"`
}

// AdminBootstrap описывает учётную запись администратора,
// создаваемую при старте, если её ещё нет.
type AdminBootstrap struct {
	Email    string `yaml:"email"`
	Name     string `yaml:"name" env-default:"Admin"`
	Password string `yaml:"password" env:"ADMIN_BOOTSTRAP_PASSWORD"`
}

// MustLoad загружает конфиг по пути из CONFIG_PATH, при ошибке завершает процесс.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}

// UseSimulator сообщает, нужно ли работать с симулятором вместо реального шлюза.
func (c *Config) UseSimulator() bool {
	return c.Gateway.SecretKey == ""
}

package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config конфигурация сервиса, загружается из config.toml.
// Все поведенческие тумблеры (пропуск валидационного платежа, порог расхождения
// сметы и т.п.) живут здесь и передаются в компоненты при конструировании -
// никакого чтения окружения из глубины кода.
type Config struct {
	Server         ServerConfig         `toml:"server"`
	Database       DatabaseConfig       `toml:"database"`
	Logs           LogsConfig           `toml:"logs"`
	Metrics        MetricsConfig        `toml:"metrics"`
	PaymentGateway PaymentGatewayConfig `toml:"payment_gateway"`
	Saga           SagaConfig           `toml:"saga"`
	Orders         OrdersConfig         `toml:"orders"`
}

// ServerConfig настройки HTTP сервера
type ServerConfig struct {
	HTTPPort        int `toml:"http_port"`
	ReadTimeout     int `toml:"read_timeout"`
	WriteTimeout    int `toml:"write_timeout"`
	IdleTimeout     int `toml:"idle_timeout"`
	ShutdownTimeout int `toml:"shutdown_timeout"`
}

// DatabaseConfig настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	DBName          string `toml:"dbname"`
	SSLMode         string `toml:"sslmode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime int    `toml:"conn_max_lifetime"`
}

// DSN возвращает строку подключения к PostgreSQL
func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// LogsConfig настройки логирования
type LogsConfig struct {
	File  string `toml:"file"`
	Level string `toml:"level"`
}

// MetricsConfig настройки метрик
type MetricsConfig struct {
	Enabled     bool   `toml:"enabled"`
	Path        string `toml:"path"`
	ServiceName string `toml:"service_name"`
}

// PaymentGatewayConfig настройки клиента платежного шлюза
type PaymentGatewayConfig struct {
	URL     string `toml:"url"`
	APIKey  string `toml:"api_key"`
	Timeout int    `toml:"timeout"` // секунды, на один исходящий вызов

	// WebhookToken общий секрет для входящих webhook-событий шлюза.
	// Пустое значение отключает проверку.
	WebhookToken string `toml:"webhook_token"`

	// Circuit breaker
	BreakerMaxRequests      int     `toml:"breaker_max_requests"`      // пробные вызовы в half-open
	BreakerIntervalSeconds  int     `toml:"breaker_interval_seconds"`  // окно подсчета отказов
	BreakerCooldownSeconds  int     `toml:"breaker_cooldown_seconds"`  // пауза в open
	BreakerFailureRatio     float64 `toml:"breaker_failure_ratio"`     // доля отказов для открытия
	BreakerMinRequests      int     `toml:"breaker_min_requests"`      // минимум вызовов до оценки
	// Quota manager
	RateLimitPerSecond float64 `toml:"rate_limit_per_second"`
	RateLimitBurst     int     `toml:"rate_limit_burst"`
}

// SagaConfig настройки саги бронирования
type SagaConfig struct {
	// ValidationCharge включает проверочный платеж с немедленным возвратом
	// при регистрации платежного метода. Отключается для доверенных клиентов.
	ValidationCharge       bool  `toml:"validation_charge"`
	ValidationChargeAmount int64 `toml:"validation_charge_amount"` // в минорных единицах

	// RunTTLSeconds: незавершенная сага старше TTL считается брошенной -
	// компенсируется по журналу шагов и выполняется заново
	RunTTLSeconds int `toml:"run_ttl_seconds"`
}

// OrdersConfig настройки жизненного цикла заказа
type OrdersConfig struct {
	// VarianceThresholdPercent порог расхождения сметы и котировки, выше которого
	// требуется явное подтверждение клиента (AWAITING_APPROVAL)
	VarianceThresholdPercent float64 `toml:"variance_threshold_percent"`

	// GracePeriodHours окно после неуспешного списания, в течение которого
	// клиент может заменить платежный метод
	GracePeriodHours int `toml:"grace_period_hours"`

	// GraceWorkerIntervalSeconds периодичность проверки истекших grace-периодов
	GraceWorkerIntervalSeconds int `toml:"grace_worker_interval_seconds"`
}

// Load загружает конфигурацию из TOML файла
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("config: failed to decode %s: %w", path, err)
	}

	return cfg, nil
}

// defaultConfig значения по умолчанию, перекрываются файлом
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort:        8080,
			ReadTimeout:     10,
			WriteTimeout:    10,
			IdleTimeout:     60,
			ShutdownTimeout: 15,
		},
		Database: DatabaseConfig{
			Host:            "localhost",
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 300,
		},
		Logs: LogsConfig{Level: "info"},
		Metrics: MetricsConfig{
			Path:        "/metrics",
			ServiceName: "smc-order-service",
		},
		PaymentGateway: PaymentGatewayConfig{
			Timeout:                10,
			BreakerMaxRequests:     3,
			BreakerIntervalSeconds: 60,
			BreakerCooldownSeconds: 30,
			BreakerFailureRatio:    0.5,
			BreakerMinRequests:     5,
			RateLimitPerSecond:     20,
			RateLimitBurst:         40,
		},
		Saga: SagaConfig{
			ValidationCharge:       true,
			ValidationChargeAmount: 100,
			RunTTLSeconds:          600,
		},
		Orders: OrdersConfig{
			VarianceThresholdPercent:   20,
			GracePeriodHours:           24,
			GraceWorkerIntervalSeconds: 300,
		},
	}
}

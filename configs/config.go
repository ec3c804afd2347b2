package configs

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App struct {
		Name     string `koanf:"name"`
		HTTPAddr string `koanf:"http_addr"`
		LogLevel string `koanf:"log_level"`
		LogFile  string `koanf:"log_file"`
	} `koanf:"app"`

	HTTP struct {
		ReadTimeout  time.Duration `koanf:"read_timeout"`
		WriteTimeout time.Duration `koanf:"write_timeout"`
		IdleTimeout  time.Duration `koanf:"idle_timeout"`
	} `koanf:"http"`

	Catalog struct {
		Path string `koanf:"path"`
	} `koanf:"catalog"`

	Cart struct {
		AutoCloseDelay       time.Duration `koanf:"auto_close_delay"`
		CancelPendingOnClose bool          `koanf:"cancel_pending_on_close"`
		ShippingThreshold    float64       `koanf:"shipping_threshold"`
		ShippingCost         float64       `koanf:"shipping_cost"`
		TaxRate              float64       `koanf:"tax_rate"`
	} `koanf:"cart"`

	Storage struct {
		// Backend selects the cart persistence adapter: file | redis | mysql.
		Backend string `koanf:"backend"`
		Key     string `koanf:"key"`
		File    struct {
			Path string `koanf:"path"`
		} `koanf:"file"`
	} `koanf:"storage"`

	Redis struct {
		Addr     string `koanf:"addr"`
		Password string `koanf:"password"`
	} `koanf:"redis"`

	MySQL struct {
		DSN             string        `koanf:"dsn"`
		MaxOpenConns    int           `koanf:"max_open_conns"`
		MaxIdleConns    int           `koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	} `koanf:"mysql"`

	Rabbit struct {
		Enabled bool   `koanf:"enabled"`
		URL     string `koanf:"url"`
	} `koanf:"rabbitmq"`
}

func Load(pathDir, envName string) (Config, error) {
	k := koanf.New(".")
	// 1) base
	if err := k.Load(file.Provider(fmt.Sprintf("%s/base.yaml", pathDir)), yaml.Parser()); err != nil {
		return Config{}, fmt.Errorf("load base: %w", err)
	}

	// 2) env override (dev/staging/prod). Optional: allow missing for local runs.
	_ = k.Load(file.Provider(fmt.Sprintf("%s/%s.yaml", pathDir, envName)), yaml.Parser())

	// 3) environment variables override (prefix STOREFRONT_, nested with __)
	// e.g. STOREFRONT_REDIS__ADDR, STOREFRONT_STORAGE__BACKEND
	if err := k.Load(env.Provider("STOREFRONT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "STOREFRONT_")
		s = strings.ReplaceAll(s, "__", ".")
		return strings.ToLower(s)
	}), nil); err != nil {
		return Config{}, fmt.Errorf("env overlay: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.App.HTTPAddr == "" {
		return fmt.Errorf("app.http_addr required")
	}
	if c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path required")
	}
	switch c.Storage.Backend {
	case "", "file":
		if c.Storage.File.Path == "" {
			return fmt.Errorf("storage.file.path required for file backend")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr required for redis backend")
		}
	case "mysql":
		if c.MySQL.DSN == "" {
			return fmt.Errorf("mysql.dsn required for mysql backend")
		}
	default:
		return fmt.Errorf("storage.backend must be file, redis or mysql")
	}
	if c.Rabbit.Enabled && c.Rabbit.URL == "" {
		return fmt.Errorf("rabbitmq.url required when rabbitmq.enabled")
	}
	if c.Cart.TaxRate < 0 || c.Cart.ShippingCost < 0 || c.Cart.ShippingThreshold < 0 {
		return fmt.Errorf("cart money settings must be non-negative")
	}
	return nil
}

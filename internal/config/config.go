package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/carafecoffee/orderflow/internal/shipping"
)

// Gateway holds the hosted-payment-pages credentials. All fields are required
// before a payment session can be initiated; missing values surface as a
// configuration error at call time, never as a silent fallback.
type Gateway struct {
	BaseURL        string `mapstructure:"base_url"`
	Username       string `mapstructure:"username"`
	Password       string `mapstructure:"password"`
	MerchantEntity string `mapstructure:"merchant_entity"`
	MACSecret      string `mapstructure:"mac_secret"`
}

// Configured reports whether every credential needed for session initiation is set.
func (g Gateway) Configured() bool {
	return g.BaseURL != "" && g.Username != "" && g.Password != "" && g.MerchantEntity != ""
}

// Dedup selects the processed-event store backend for the webhook reconciler.
type Dedup struct {
	Backend    string `mapstructure:"backend"` // dynamodb | redis | memory
	RedisAddr  string `mapstructure:"redis_addr"`
	MaxEntries int    `mapstructure:"max_entries"` // memory backend size bound
}

// Config is the full service configuration.
type Config struct {
	Env     string `mapstructure:"env"` // "live" or "sandbox"
	SiteURL string `mapstructure:"site_url"`

	OrdersTable          string `mapstructure:"orders_table"`
	ProcessedEventsTable string `mapstructure:"processed_events_table"`
	NotificationsQueue   string `mapstructure:"notifications_queue"`

	JWTSecret string `mapstructure:"jwt_secret"`

	Gateway  Gateway         `mapstructure:"gateway"`
	Dedup    Dedup           `mapstructure:"dedup"`
	Shipping shipping.Config `mapstructure:"shipping"`
}

// Live reports whether this deployment talks to the live gateway. Only live
// deployments are allowed to skip nothing: MAC validation without a secret is
// refused when Live() is true.
func (c Config) Live() bool {
	return strings.EqualFold(c.Env, "live")
}

// Load reads configuration from environment variables (prefix ORDERFLOW_,
// dots replaced by underscores) layered over an optional orderflow.yaml in
// the working directory, over built-in defaults.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("orderflow")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	v.SetConfigName("orderflow")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Shipping.Options) == 0 {
		cfg.Shipping = shipping.Default()
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "sandbox")
	v.SetDefault("site_url", "http://localhost:3000")
	v.SetDefault("orders_table", "orders")
	v.SetDefault("processed_events_table", "processed-webhook-events")
	v.SetDefault("notifications_queue", "")
	v.SetDefault("jwt_secret", "")

	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.username", "")
	v.SetDefault("gateway.password", "")
	v.SetDefault("gateway.merchant_entity", "")
	v.SetDefault("gateway.mac_secret", "")

	v.SetDefault("dedup.backend", "dynamodb")
	v.SetDefault("dedup.redis_addr", "localhost:6379")
	v.SetDefault("dedup.max_entries", 1000)
}

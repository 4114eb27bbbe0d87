package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ManuelReschke/tiersync/app/models"
	"github.com/ManuelReschke/tiersync/app/repository"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Stripe   StripeConfig
	Supabase SupabaseConfig
	Store    StoreConfig
	Tiers    TierConfig
}

type ServerConfig struct {
	Host string
	Port int `validate:"min=1,max=65535"`
}

type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	APIURL        string `validate:"omitempty,url"`
}

type SupabaseConfig struct {
	URL            string `validate:"omitempty,url"`
	ServiceRoleKey string
}

type StoreConfig struct {
	Backend       string `validate:"oneof=supabase postgres mysql redis memory"`
	DatabaseDSN   string
	CacheHost     string
	CachePort     string
	CachePassword string
}

type TierConfig struct {
	Products map[string]string
	Default  string `validate:"required"`
}

// TierEntry is one row of the tiers list in a TIER_MAP_FILE.
type TierEntry struct {
	Product string `mapstructure:"product"`
	Tier    string `mapstructure:"tier"`
}

// Variables the webhook cannot run without.
var requiredEnv = []string{
	"STRIPE_SECRET_KEY",
	"SUPABASE_URL",
	"SUPABASE_SERVICE_ROLE_KEY",
	"STRIPE_WEBHOOK_SECRET",
}

// Load reads the service configuration from the environment and fails when
// any required variable is missing.
func Load() (Config, error) {
	return load(true)
}

// LoadForTool loads config for CLI tools that only need store settings.
func LoadForTool() (Config, error) {
	return load(false)
}

func load(requireWebhook bool) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("app_host", "0.0.0.0")
	v.SetDefault("app_port", 4000)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("subscriber_store", repository.BackendSupabase)
	v.SetDefault("database_dsn", "")
	v.SetDefault("cache_host", "localhost")
	v.SetDefault("cache_port", "6379")
	v.SetDefault("cache_password", "")
	v.SetDefault("stripe_api_url", "")
	v.SetDefault("tier_map_file", "")
	v.SetDefault("tier_map", "")
	v.SetDefault("default_tier", models.TierGold)

	products, err := loadTiers(v)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Server: ServerConfig{
			Host: strings.TrimSpace(v.GetString("app_host")),
			Port: v.GetInt("app_port"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(strings.TrimSpace(v.GetString("log_level"))),
			Format: strings.ToLower(strings.TrimSpace(v.GetString("log_format"))),
		},
		Stripe: StripeConfig{
			SecretKey:     strings.TrimSpace(v.GetString("stripe_secret_key")),
			WebhookSecret: strings.TrimSpace(v.GetString("stripe_webhook_secret")),
			APIURL:        strings.TrimSpace(v.GetString("stripe_api_url")),
		},
		Supabase: SupabaseConfig{
			URL:            strings.TrimSpace(v.GetString("supabase_url")),
			ServiceRoleKey: strings.TrimSpace(v.GetString("supabase_service_role_key")),
		},
		Store: StoreConfig{
			Backend:       strings.ToLower(strings.TrimSpace(v.GetString("subscriber_store"))),
			DatabaseDSN:   strings.TrimSpace(v.GetString("database_dsn")),
			CacheHost:     strings.TrimSpace(v.GetString("cache_host")),
			CachePort:     strings.TrimSpace(v.GetString("cache_port")),
			CachePassword: v.GetString("cache_password"),
		},
		Tiers: TierConfig{
			Products: products,
			Default:  strings.TrimSpace(v.GetString("default_tier")),
		},
	}

	var missing []string
	if requireWebhook {
		for _, key := range requiredEnv {
			if strings.TrimSpace(v.GetString(strings.ToLower(key))) == "" {
				missing = append(missing, key)
			}
		}
	}
	if cfg.UsesDatabase() && cfg.Store.DatabaseDSN == "" {
		missing = append(missing, "DATABASE_DSN")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadTiers reads the product mapping from TIER_MAP_FILE when set, else from
// TIER_MAP ("prod_a=Gold,prod_b=Platinum").
func loadTiers(v *viper.Viper) (map[string]string, error) {
	if path := strings.TrimSpace(v.GetString("tier_map_file")); path != "" {
		fv := viper.New()
		fv.SetConfigFile(path)
		if err := fv.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read TIER_MAP_FILE %s: %w", path, err)
		}
		// A list keeps product ids intact; viper lowercases map keys.
		var entries []TierEntry
		if err := fv.UnmarshalKey("tiers", &entries); err != nil {
			return nil, fmt.Errorf("parse TIER_MAP_FILE %s: %w", path, err)
		}
		out := make(map[string]string, len(entries))
		for _, e := range entries {
			p := strings.TrimSpace(e.Product)
			t := strings.TrimSpace(e.Tier)
			if p == "" || t == "" {
				continue
			}
			out[p] = t
		}
		return out, nil
	}
	return parseTierMap(v.GetString("tier_map")), nil
}

func parseTierMap(raw string) map[string]string {
	out := make(map[string]string)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		pair := strings.SplitN(part, "=", 2)
		if len(pair) != 2 {
			continue
		}
		product := strings.TrimSpace(pair[0])
		tier := strings.TrimSpace(pair[1])
		if product == "" || tier == "" {
			continue
		}
		out[product] = tier
	}
	return out
}

// UsesDatabase reports whether the selected store needs DATABASE_DSN.
func (c Config) UsesDatabase() bool {
	return c.Store.Backend == repository.BackendPostgres || c.Store.Backend == repository.BackendMySQL
}

func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c Config) CacheAddr() string {
	return fmt.Sprintf("%s:%s", c.Store.CacheHost, c.Store.CachePort)
}

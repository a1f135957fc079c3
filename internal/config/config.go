package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App struct {
		Env        string
		SessionTTL time.Duration `mapstructure:"session_ttl"`
	} `mapstructure:"app"`

	Telegram struct {
		Token      string
		OperatorID int64 `mapstructure:"operator_id"`
		ChannelID  int64 `mapstructure:"channel_id"`
	} `mapstructure:"telegram"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Postgres struct {
		DSN string
	} `mapstructure:"postgres"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`
}

func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	// Любое поле можно переопределить через ENV (APP_*)
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()

	v.SetDefault("app.session_ttl", time.Hour)
	v.SetDefault("http.addr", ":8080")

	var c Config
	if err := v.ReadInConfig(); err != nil {
		return c, err
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, err
	}
	return c, nil
}

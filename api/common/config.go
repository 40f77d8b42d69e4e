package common

import (
	"time"

	"github.com/spf13/viper"
)

// Config api configuration
type Config struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"readTimeout"`
	WriteTimeout    time.Duration `mapstructure:"writeTimeout"`
	MaxContentSize  int64         `mapstructure:"maxContentSize"`
	ProxyCount      int           `mapstructure:"proxyCount"`
	AuthCookieName  string        `mapstructure:"authCookieName"`
	InternalAPIKey  string        `mapstructure:"internalApiKey"`
	AllowedOrigins  []string      `mapstructure:"allowedOrigins"`
	TokenExpiration time.Duration `mapstructure:"tokenExpiration"`
}

// InitConfig initialize api configuration
func InitConfig() (*Config, error) {
	config := &Config{}
	subv := viper.Sub("api")
	err := subv.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	if config.MaxContentSize <= 0 {
		config.MaxContentSize = 1
	}
	return config, err
}

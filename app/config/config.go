package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config app configuration
type Config struct {
	JWTKey          string        `mapstructure:"jwtKey"`
	VapidPublicKey  string        `mapstructure:"vapidPublicKey"`
	VapidPrivateKey string        `mapstructure:"vapidPrivateKey"`
	VapidSubscriber string        `mapstructure:"vapidSubscriber"`
	PollInterval    time.Duration `mapstructure:"pollInterval"`
	ReconnectDelay  time.Duration `mapstructure:"reconnectDelay"`
	SessionTTL      time.Duration `mapstructure:"sessionTTL"`
}

// InitConfig initialize app configuration
func InitConfig() (*Config, error) {
	config := &Config{}
	subv := viper.Sub("app")
	err := subv.Unmarshal(&config)
	if err != nil {
		return nil, err
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 30 * time.Second
	}
	if config.ReconnectDelay <= 0 {
		config.ReconnectDelay = 2 * time.Second
	}
	if config.SessionTTL <= 0 {
		config.SessionTTL = 15 * time.Minute
	}
	return config, nil
}

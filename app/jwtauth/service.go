package jwtauth

import (
	"time"

	"github.com/estateshq/estates-backend/estates-notification/app/config"
)

// Service - defines JWT auth service
type Service interface {
	FetchJWTToken(token string) (*Claims, error)
	CreateJWTToken(ownerID string, tokenExpiration time.Duration) (*JWTToken, error)
}

type service struct {
	config *config.Config
}

// NewService - creates new JWT auth service
func NewService(conf *config.Config) Service {
	return &service{
		config: conf,
	}
}

func (s *service) FetchJWTToken(token string) (*Claims, error) {
	return fetchJWTToken(token, s.config.JWTKey)
}

func (s *service) CreateJWTToken(ownerID string, tokenExpiration time.Duration) (*JWTToken, error) {
	return createJWTToken(ownerID, tokenExpiration, s.config.JWTKey)
}

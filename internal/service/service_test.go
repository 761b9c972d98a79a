package service_test

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/church-content-api/internal/config"
	"github.com/church-content-api/internal/mocks"
	"github.com/church-content-api/internal/repository"
	"github.com/church-content-api/internal/service"
)

// newTestServices wires the service layer over in-memory mocks with a low
// bcrypt cost so tests stay fast
func newTestServices(users *mocks.MockUserRepository, posts *mocks.MockPostRepository, store *mocks.MockStore) *service.Services {
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:  "test-secret",
			TokenTTL:   time.Hour,
			BcryptCost: 4,
		},
		Storage: config.StorageConfig{
			MaxUploadSize: 1024,
		},
		Sweep: config.SweepConfig{
			TriggerDelay: time.Millisecond,
			Interval:     time.Hour,
		},
	}

	repos := &repository.Repositories{User: users, Post: posts}
	return service.NewServices(repos, store, cfg, zerolog.Nop())
}

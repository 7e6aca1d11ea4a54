package fees

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/vipinkoroth/sarvodaya/core"
)

// Config holds the configured fee requirements. Development fees are keyed
// by class, except classes 11 and 12 which configure per division and key by
// "{class}-{division}". Bus fees are keyed by stop name. A missing key
// resolves to a zero fee; it is a policy choice, not an error.
type Config struct {
	DevelopmentFees map[string]int `json:"development_fees"`
	BusStops        map[string]int `json:"bus_stops"`
	UpdatedAt       time.Time      `json:"updated_at"` // UTC
}

// DevelopmentFeeKey returns the lookup key for a class/division pair.
func DevelopmentFeeKey(class, division string) string {
	if class == "11" || class == "12" {
		return class + "-" + division
	}
	return class
}

// UpdateConfig replaces the configured fee tables wholesale.
type UpdateConfig struct {
	DevelopmentFees map[string]int `json:"development_fees" validate:"omitempty,dive,min=0"`
	BusStops        map[string]int `json:"bus_stops" validate:"omitempty,dive,min=0"`
}

func (uc *UpdateConfig) Validate(validate *validator.Validate) error {
	cleaned := make(map[string]int, len(uc.BusStops))
	for stop, fee := range uc.BusStops {
		cleaned[core.CleanString(stop)] = fee
	}
	uc.BusStops = cleaned
	return validate.Struct(uc)
}

type (
	Repository interface {
		// GetConfig returns the stored configuration; empty maps when unset.
		GetConfig(ctx context.Context) (Config, error)
		SaveConfig(ctx context.Context, cfg Config) (Config, error)
	}

	Service interface {
		Get() (Config, error)
		Update(uc UpdateConfig) (Config, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Get() (Config, error) {
	cfg, err := svc.repo.GetConfig(context.Background())
	if err != nil {
		return Config{}, err
	}
	if cfg.DevelopmentFees == nil {
		cfg.DevelopmentFees = make(map[string]int)
	}
	if cfg.BusStops == nil {
		cfg.BusStops = make(map[string]int)
	}
	return cfg, nil
}

func (svc *service) Update(uc UpdateConfig) (Config, error) {
	cfg := Config{
		DevelopmentFees: uc.DevelopmentFees,
		BusStops:        uc.BusStops,
		UpdatedAt:       time.Now().UTC(),
	}
	if cfg.DevelopmentFees == nil {
		cfg.DevelopmentFees = make(map[string]int)
	}
	if cfg.BusStops == nil {
		cfg.BusStops = make(map[string]int)
	}
	return svc.repo.SaveConfig(context.Background(), cfg)
}

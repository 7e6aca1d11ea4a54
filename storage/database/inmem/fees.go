package inmemdb

import (
	"context"

	"github.com/vipinkoroth/sarvodaya/core/fees"
)

type feesRepository struct {
	db *feeConfigTable
}

var _ fees.Repository = (*feesRepository)(nil) // interface compliance check

func NewFeesRepository(db *DB) *feesRepository {
	return &feesRepository{db: db.feeConfig}
}

func (repo *feesRepository) GetConfig(_ context.Context) (fees.Config, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if repo.db.cfg == nil {
		return fees.Config{}, nil
	}
	return copyConfig(*repo.db.cfg), nil
}

func (repo *feesRepository) SaveConfig(_ context.Context, cfg fees.Config) (fees.Config, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	stored := copyConfig(cfg)
	repo.db.cfg = &stored
	return cfg, nil
}

// copyConfig protects the stored maps from mutation by callers.
func copyConfig(cfg fees.Config) fees.Config {
	cp := fees.Config{
		DevelopmentFees: make(map[string]int, len(cfg.DevelopmentFees)),
		BusStops:        make(map[string]int, len(cfg.BusStops)),
		UpdatedAt:       cfg.UpdatedAt,
	}
	for k, v := range cfg.DevelopmentFees {
		cp.DevelopmentFees[k] = v
	}
	for k, v := range cfg.BusStops {
		cp.BusStops[k] = v
	}
	return cp
}

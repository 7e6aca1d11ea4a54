package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/vipinkoroth/sarvodaya/core/fees"
)

// fee_config is a singleton row; upserts keep id pinned to 1.
type feeConfigRow struct {
	ID              int             `db:"id"`
	DevelopmentFees json.RawMessage `db:"development_fees"`
	BusStops        json.RawMessage `db:"bus_stops"`
	UpdatedAt       null.Time       `db:"updated_at"`
}

type feesRepository struct {
	db *sqlx.DB
}

var _ fees.Repository = (*feesRepository)(nil) // interface compliance check

func NewFeesRepository(db *sqlx.DB) *feesRepository {
	return &feesRepository{db: db}
}

func (repo feesRepository) GetConfig(ctx context.Context) (fees.Config, error) {
	var row feeConfigRow
	if err := repo.db.GetContext(ctx, &row, "SELECT * FROM fee_config WHERE id = 1"); err != nil {
		if err == sql.ErrNoRows {
			return fees.Config{}, nil
		}
		return fees.Config{}, errors.Wrap(err, "loading fee configuration")
	}

	var cfg fees.Config
	if len(row.DevelopmentFees) > 0 {
		if err := json.Unmarshal(row.DevelopmentFees, &cfg.DevelopmentFees); err != nil {
			return fees.Config{}, errors.Wrap(err, "decoding development fees")
		}
	}
	if len(row.BusStops) > 0 {
		if err := json.Unmarshal(row.BusStops, &cfg.BusStops); err != nil {
			return fees.Config{}, errors.Wrap(err, "decoding bus stops")
		}
	}
	cfg.UpdatedAt = row.UpdatedAt.Time
	return cfg, nil
}

func (repo feesRepository) SaveConfig(ctx context.Context, cfg fees.Config) (fees.Config, error) {
	devFees, err := json.Marshal(cfg.DevelopmentFees)
	if err != nil {
		return fees.Config{}, errors.Wrap(err, "encoding development fees")
	}
	busStops, err := json.Marshal(cfg.BusStops)
	if err != nil {
		return fees.Config{}, errors.Wrap(err, "encoding bus stops")
	}

	query := `
INSERT INTO fee_config (id, development_fees, bus_stops, updated_at)
VALUES (1, $1, $2, $3)
ON CONFLICT (id) DO UPDATE
SET development_fees = EXCLUDED.development_fees, bus_stops = EXCLUDED.bus_stops, updated_at = EXCLUDED.updated_at`
	if _, err = repo.db.ExecContext(ctx, query, devFees, busStops, cfg.UpdatedAt.UTC()); err != nil {
		return fees.Config{}, errors.Wrap(err, "saving fee configuration")
	}
	return cfg, nil
}

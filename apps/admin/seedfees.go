package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/vipinkoroth/sarvodaya/core/fees"
)

// seedFees replaces the stored fee configuration with the tables in a JSON
// file of the form {"development_fees": {...}, "bus_stops": {...}}.
func (cli *commandLine) seedFees(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var cfg fees.Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return err
	}
	for class, fee := range cfg.DevelopmentFees {
		if fee < 0 {
			return fmt.Errorf("development fee for %q is negative", class)
		}
	}
	for stop, fee := range cfg.BusStops {
		if fee < 0 {
			return fmt.Errorf("bus fee for %q is negative", stop)
		}
	}
	cfg.UpdatedAt = time.Now().UTC()

	_, err = cli.feesRepo.SaveConfig(context.Background(), cfg)
	return err
}

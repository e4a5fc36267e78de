package engine

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/duelmarket/duelmarket/engine/database"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log    LogConfig         `toml:"log"`
	DB     database.DBConfig `toml:"db"`
	Web    WebConfig         `toml:"web"`
	Market MarketConfig      `toml:"market"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	Format    string     `toml:"format"`
	AddSource bool       `toml:"add_source"`
}

type WebConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

func (c WebConfig) Addr() string {
	host := c.Host
	port := c.Port
	if port == 0 {
		port = 8080
	}
	return fmt.Sprintf("%s:%d", host, port)
}

// MarketConfig carries the expiry horizons and the settlement cadence.
// Durations use Go syntax, e.g. "72h" or "15s".
type MarketConfig struct {
	ListingDuration duration `toml:"listing_duration"`
	AuctionDuration duration `toml:"auction_duration"`
	SweepInterval   duration `toml:"sweep_interval"`
}

func (c MarketConfig) ListingHorizon() time.Duration { return time.Duration(c.ListingDuration) }
func (c MarketConfig) AuctionHorizon() time.Duration { return time.Duration(c.AuctionDuration) }
func (c MarketConfig) SweepEvery() time.Duration     { return time.Duration(c.SweepInterval) }

type duration time.Duration

func (d *duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	*d = duration(parsed)
	return nil
}

func (d duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

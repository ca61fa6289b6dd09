package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"staybook/internal/app/commands"
	"staybook/internal/app/dto"
	roomsapp "staybook/internal/app/handlers/rooms"
	domainrooms "staybook/internal/domain/rooms"
)

type roomFixture struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Capacity    int      `json:"capacity"`
	Amenities   []string `json:"amenities"`
	RateAmount  int64    `json:"nightly_rate_cents"`
	Currency    string   `json:"currency"`
	Available   *bool    `json:"available"`
}

func (f roomFixture) command() roomsapp.CreateRoomCommand {
	available := true
	if f.Available != nil {
		available = *f.Available
	}
	return roomsapp.CreateRoomCommand{
		AdminScope: roomsapp.AdminScope{ActorAdmin: true},
		RoomID:     f.ID,
		Details: roomsapp.RoomDetails{
			Name:        f.Name,
			Type:        f.Type,
			Description: f.Description,
			Capacity:    f.Capacity,
			Amenities:   append([]string(nil), f.Amenities...),
			RateAmount:  f.RateAmount,
			Currency:    f.Currency,
		},
		Available: available,
	}
}

// loadRoomFixtures creates rooms through the admin command path. Rooms that
// already exist are left untouched so restarts against mongo stay idempotent.
func loadRoomFixtures(ctx context.Context, bus commands.Bus, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("room fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	if len(data) == 0 {
		return nil
	}
	var fixtures []roomFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}
	imported := 0
	for _, fx := range fixtures {
		_, err := commands.Dispatch[roomsapp.CreateRoomCommand, *dto.Room](ctx, bus, fx.command())
		switch {
		case err == nil:
			imported++
		case errors.Is(err, domainrooms.ErrRoomExists):
			logger.Debug("room fixture already present", "room_id", fx.ID)
		default:
			logger.Error("room fixture rejected", "room_id", fx.ID, "error", err)
		}
	}
	logger.Info("room fixtures imported", "path", path, "count", imported)
	return nil
}

func fixturesPath(configured string) string {
	if configured != "" {
		return configured
	}
	return filepath.Join("data", "rooms.json")
}

// Command plaza-enroll adds or replaces a farm in the store used by the farms auth mode.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-plaza/internal/auth"
	"github.com/pixil98/go-plaza/internal/room"
	"github.com/pixil98/go-plaza/internal/storage"
)

func main() {
	farms := flag.String("farms", "", "directory holding farm records")
	farmId := flag.Int64("farm", 0, "farm id")
	token := flag.String("token", "", "token the farm's client will present when joining")
	username := flag.String("username", "", "display name")
	faction := flag.String("faction", "", "faction the farm belongs to")
	experience := flag.Float64("experience", 0, "experience points")
	flag.Parse()

	err := enroll(*farms, *token, &auth.Farm{
		FarmId:     *farmId,
		Username:   *username,
		Faction:    room.Faction(*faction),
		Experience: *experience,
	})
	if err != nil {
		slog.Error("enrolling farm", "farmId", *farmId, "error", err)
		os.Exit(1)
	}

	slog.Info("farm enrolled", "farmId", *farmId)
}

func enroll(path, token string, farm *auth.Farm) error {
	if path == "" {
		return fmt.Errorf("farms directory is required")
	}
	if token == "" {
		return fmt.Errorf("token is required")
	}

	store, err := storage.NewFileStore[*auth.Farm](path)
	if err != nil {
		return fmt.Errorf("opening farm store: %w", err)
	}

	return auth.NewFarmAuthenticator(store).Enroll(farm, token)
}

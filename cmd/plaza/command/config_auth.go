package command

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-plaza/internal/auth"
	"github.com/pixil98/go-plaza/internal/room"
	"github.com/pixil98/go-plaza/internal/storage"
)

type AuthMode int

const (
	AuthModeFarms AuthMode = iota
	AuthModeTrust
)

func (m *AuthMode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "farms":
		*m = AuthModeFarms
	case "trust":
		*m = AuthModeTrust
	default:
		return fmt.Errorf("unknown auth mode: %s", text)
	}
	return nil
}

type AuthConfig struct {
	Mode      AuthMode `json:"mode"`
	FarmsPath string   `json:"farms_path,omitempty"`
}

func (c *AuthConfig) validate() error {
	el := errors.NewErrorList()

	if c.Mode == AuthModeFarms {
		if c.FarmsPath == "" {
			el.Add(fmt.Errorf("auth: farms_path is required"))
		} else if _, err := os.Stat(c.FarmsPath); err != nil {
			el.Add(fmt.Errorf("auth: invalid farms_path %q: %w", c.FarmsPath, err))
		}
	}

	return el.Err()
}

func (c *AuthConfig) BuildAuthenticator() (room.Authenticator, error) {
	switch c.Mode {
	case AuthModeTrust:
		return auth.TrustAuthenticator{}, nil
	case AuthModeFarms:
		farms, err := storage.NewFileStore[*auth.Farm](c.FarmsPath)
		if err != nil {
			return nil, fmt.Errorf("creating farm store: %w", err)
		}
		slog.Info("farm store loaded", "path", c.FarmsPath, "farms", len(farms.GetAll()))
		return auth.NewFarmAuthenticator(farms), nil
	default:
		return nil, fmt.Errorf("unknown auth mode: %v", c.Mode)
	}
}

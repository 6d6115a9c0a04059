package auth

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pixil98/go-plaza/internal/room"
	"github.com/pixil98/go-plaza/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// FarmAuthenticator admits farms that have a stored record and present its token. The stored
// record, not the client, decides who the player is and what they look like.
type FarmAuthenticator struct {
	farms storage.Storer[*Farm]
}

func NewFarmAuthenticator(farms storage.Storer[*Farm]) *FarmAuthenticator {
	return &FarmAuthenticator{farms: farms}
}

func (a *FarmAuthenticator) Authenticate(_ context.Context, req room.JoinRequest) (room.Verdict, error) {
	farm := a.farms.Get(farmKey(req.FarmId))
	if farm == nil {
		return room.Verdict{}, fmt.Errorf("%w: unknown farm %d", room.ErrAuthenticationFailed, req.FarmId)
	}

	err := bcrypt.CompareHashAndPassword([]byte(farm.TokenHash), []byte(req.Token))
	if err != nil {
		return room.Verdict{}, fmt.Errorf("%w: invalid token for farm %d", room.ErrAuthenticationFailed, req.FarmId)
	}

	username := farm.Username
	if username == "" {
		username = req.Username
	}

	return room.Verdict{
		FarmId:     farm.FarmId,
		SceneId:    req.SceneId,
		Experience: farm.Experience,
		Username:   username,
		Faction:    farm.Faction,
		Equipped:   farm.Equipped,
	}, nil
}

// Enroll stores farm with a hash of token, replacing any previous record for it.
func (a *FarmAuthenticator) Enroll(farm *Farm, token string) error {
	hash, err := HashToken(token)
	if err != nil {
		return err
	}

	farm.TokenHash = hash
	err = a.farms.Save(farmKey(farm.FarmId), farm)
	if err != nil {
		return fmt.Errorf("saving farm %d: %w", farm.FarmId, err)
	}
	return nil
}

// TrustAuthenticator accepts whatever the client claims. It is meant for local development
// where there is no identity service to ask.
type TrustAuthenticator struct{}

func (TrustAuthenticator) Authenticate(_ context.Context, req room.JoinRequest) (room.Verdict, error) {
	if req.FarmId <= 0 {
		return room.Verdict{}, fmt.Errorf("%w: farm id is required", room.ErrAuthenticationFailed)
	}

	return room.Verdict{
		FarmId:     req.FarmId,
		SceneId:    req.SceneId,
		Experience: req.Experience,
		Username:   req.Username,
		Faction:    req.Faction,
		Equipped:   req.Bumpkin.Equipped,
	}, nil
}

func farmKey(farmId int64) string {
	return strconv.FormatInt(farmId, 10)
}

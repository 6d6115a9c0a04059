package room

import (
	"context"
	"errors"
	"fmt"
)

// Authenticator verifies a join request's proof and returns the trusted view of who is
// joining. Any error rejects the join.
type Authenticator interface {
	Authenticate(ctx context.Context, req JoinRequest) (Verdict, error)
}

type Bumpkin struct {
	Equipped Equipped `json:"equipped"`
}

// JoinRequest is what a client sends when it asks to enter the room.
type JoinRequest struct {
	FarmId     int64    `json:"farmId"`
	Token      string   `json:"token,omitempty"`
	SceneId    string   `json:"sceneId"`
	Experience float64  `json:"experience"`
	Username   string   `json:"username,omitempty"`
	Faction    Faction  `json:"faction,omitempty"`
	Bumpkin    Bumpkin  `json:"bumpkin"`
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
}

// Verdict is an accepted join, normalized by the Authenticator.
type Verdict struct {
	FarmId     int64
	SceneId    string
	Experience float64
	Username   string
	Faction    Faction
	Equipped   Equipped
}

// AdmissionController decides whether a verified join may enter the world.
type AdmissionController struct {
	auth      Authenticator
	protected map[string]bool
	seats     int
}

func NewAdmissionController(auth Authenticator, protectedZones []string) *AdmissionController {
	protected := make(map[string]bool, len(protectedZones))
	for _, z := range protectedZones {
		protected[z] = true
	}

	return &AdmissionController{
		auth:      auth,
		protected: protected,
		seats:     MaxSeats,
	}
}

func (a *AdmissionController) authenticate(ctx context.Context, req JoinRequest) (Verdict, error) {
	v, err := a.auth.Authenticate(ctx, req)
	if err != nil {
		if errors.Is(err, ErrAuthenticationFailed) {
			return Verdict{}, err
		}
		return Verdict{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	return v, nil
}

// decide runs on the simulation goroutine. existing is the session currently registered for
// the joining farm, if any. It returns the session that has to be evicted to make way.
func (a *AdmissionController) decide(w *WorldState, existing string) (string, error) {
	var evict string
	if existing != "" {
		if p := w.GetPlayer(existing); p != nil {
			if a.protected[p.SceneId] {
				return "", ErrAdmissionRejected
			}
			evict = existing
		}
	}

	occupied := w.PlayerCount()
	if evict != "" {
		occupied--
	}
	if occupied >= a.seats {
		return "", ErrCapacityExceeded
	}

	return evict, nil
}

func newPlayer(s *Session, v Verdict, req JoinRequest) *Player {
	p := &Player{
		SessionId:  s.Id,
		FarmId:     v.FarmId,
		Username:   sanitizeText(v.Username, maxUsernameRunes),
		Faction:    v.Faction,
		SceneId:    v.SceneId,
		Experience: v.Experience,
		X:          SpawnX,
		Y:          SpawnY,
		Clothing:   v.Equipped,
		queue:      s.queue,
	}
	if req.X != nil {
		p.X = *req.X
	}
	if req.Y != nil {
		p.Y = *req.Y
	}
	return p
}

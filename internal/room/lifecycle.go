package room

import (
	"context"
	"fmt"
	"log/slog"
)

// Join verifies req and admits a new player. If the farm is already connected the older
// session is evicted, unless its player is standing in a protected zone, in which case the
// join fails with ErrAdmissionRejected.
func (r *Room) Join(ctx context.Context, req JoinRequest) (*Session, error) {
	verdict, err := r.admission.authenticate(ctx, req)
	if err != nil {
		slog.InfoContext(ctx, "join rejected", "roomId", r.id, "farmId", req.FarmId, "error", err)
		return nil, err
	}

	claim, err := r.registry.Claim(ctx, verdict.FarmId)
	if err != nil {
		return nil, fmt.Errorf("claiming farm %d: %w", verdict.FarmId, err)
	}
	defer claim.Release()

	existing, _ := claim.Current()
	sess := newSession(r.newSessionId(), verdict.FarmId, r.queueCapacity)

	var admitErr error
	var evicted string
	err = r.do(ctx, func() {
		evict, err := r.admission.decide(r.world, existing)
		if err != nil {
			admitErr = err
			return
		}

		if evict != "" {
			r.disconnect(evict, ErrSessionReplaced)
			evicted = evict
		}

		err = r.world.AddPlayer(newPlayer(sess, verdict, req))
		if err != nil {
			admitErr = fmt.Errorf("adding player: %w", err)
			return
		}
		r.sessions[sess.Id] = sess
	})
	if err != nil {
		return nil, err
	}
	if admitErr != nil {
		slog.InfoContext(ctx, "join rejected", "roomId", r.id, "farmId", verdict.FarmId, "error", admitErr)
		return nil, admitErr
	}

	claim.Register(sess.Id)

	if evicted != "" {
		slog.InfoContext(ctx, "previous session evicted", "roomId", r.id, "farmId", verdict.FarmId, "sessionId", evicted)
	}
	slog.InfoContext(ctx, "player joined", "roomId", r.id, "farmId", verdict.FarmId, "sessionId", sess.Id)

	return sess, nil
}

// Leave removes a session's player and anything it placed. Leaving twice is not an error.
func (r *Room) Leave(ctx context.Context, sessionId string, consented bool) error {
	var removed bool
	err := r.do(ctx, func() {
		removed = r.disconnect(sessionId, nil)
	})
	if err != nil {
		return err
	}

	if removed {
		slog.InfoContext(ctx, "player left", "roomId", r.id, "sessionId", sessionId, "consented", consented)
	}
	return nil
}

// disconnect runs on the simulation goroutine. A non-nil reason also ends the session so its
// connection closes.
func (r *Room) disconnect(sessionId string, reason error) bool {
	removed := r.world.RemovePlayer(sessionId)

	if s, ok := r.sessions[sessionId]; ok {
		delete(r.sessions, sessionId)
		if reason != nil {
			s.kick(reason)
		}
	}

	return removed
}

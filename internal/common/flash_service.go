package common

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/models/dtos"
)

// FlashService keeps transient notices per session until they expire or are dismissed
type FlashService struct {
	cache CacheInterface
	ttl   time.Duration
	now   func() time.Time

	// serializes read-modify-write of a session's notice list
	mu sync.Mutex
}

func NewFlashService(cache CacheInterface, ttl time.Duration) *FlashService {
	return &FlashService{
		cache: cache,
		ttl:   ttl,
		now:   time.Now,
	}
}

func flashKey(sessionID string) string {
	return string(constants.CachePrefixFlash) + sessionID
}

// Push appends a notice for the session. The stored list lives as long as its newest notice.
func (s *FlashService) Push(ctx context.Context, sessionID string, level constants.NoticeLevel, message string) (dtos.Notice, error) {
	now := s.now()
	notice := dtos.Notice{
		ID:        uuid.New().String(),
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	notices, err := s.load(ctx, sessionID)
	if err != nil {
		return dtos.Notice{}, err
	}
	notices = append(pruneExpired(notices, now), notice)
	if err := s.store(ctx, sessionID, notices); err != nil {
		return dtos.Notice{}, err
	}
	return notice, nil
}

// Pending returns the unexpired notices of the session, oldest first
func (s *FlashService) Pending(ctx context.Context, sessionID string) ([]dtos.Notice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notices, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return pruneExpired(notices, s.now()), nil
}

// Dismiss removes one notice before its expiry
func (s *FlashService) Dismiss(ctx context.Context, sessionID, noticeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	notices, err := s.load(ctx, sessionID)
	if err != nil {
		return err
	}
	kept := notices[:0]
	for _, n := range notices {
		if n.ID != noticeID {
			kept = append(kept, n)
		}
	}
	return s.store(ctx, sessionID, pruneExpired(kept, s.now()))
}

// ForSession returns a notifier bound to one session
func (s *FlashService) ForSession(sessionID string) *SessionNotifier {
	return &SessionNotifier{flash: s, sessionID: sessionID}
}

func (s *FlashService) load(ctx context.Context, sessionID string) ([]dtos.Notice, error) {
	data, found, err := s.cache.Get(ctx, flashKey(sessionID))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	var notices []dtos.Notice
	if err := json.Unmarshal(data, &notices); err != nil {
		// a corrupt entry is dropped rather than blocking new notices
		logging.Warn("Discarding unreadable flash entry", "session_id", sessionID, "error", err)
		return nil, nil
	}
	return notices, nil
}

func (s *FlashService) store(ctx context.Context, sessionID string, notices []dtos.Notice) error {
	if len(notices) == 0 {
		return s.cache.Delete(ctx, flashKey(sessionID))
	}
	data, err := json.Marshal(notices)
	if err != nil {
		return fmt.Errorf("failed to marshal notices: %w", err)
	}
	ttl := notices[len(notices)-1].ExpiresAt.Sub(s.now())
	if ttl <= 0 {
		ttl = s.ttl
	}
	return s.cache.Set(ctx, flashKey(sessionID), data, ttl)
}

func pruneExpired(notices []dtos.Notice, now time.Time) []dtos.Notice {
	out := make([]dtos.Notice, 0, len(notices))
	for _, n := range notices {
		if !n.Expired(now) {
			out = append(out, n)
		}
	}
	return out
}

// SessionNotifier publishes notices into a single session's flash list
type SessionNotifier struct {
	flash     *FlashService
	sessionID string
}

// Notify stores the notice. Storage failures are logged, never surfaced to the caller.
func (n *SessionNotifier) Notify(ctx context.Context, level constants.NoticeLevel, message string) {
	if _, err := n.flash.Push(ctx, n.sessionID, level, message); err != nil {
		logging.Error("Failed to store notice",
			"session_id", n.sessionID,
			"level", level,
			"error", err,
		)
	}
}

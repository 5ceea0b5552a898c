package round

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	storex "github.com/tanpawarit/golf-caddy-agent/agent/store"
)

// Store owns the round, hole and conversation binding records.
type Store struct {
	client   storex.Client
	resolver Resolver
	log      zerolog.Logger
	now      func() time.Time
	newID    func(player string, now time.Time) string
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func WithSessionIDs(gen func(player string, now time.Time) string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

func NewStore(client storex.Client, resolver Resolver, log zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		client:   client,
		resolver: resolver,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    NewSessionID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GetOrCreateRound resumes the player's eligible round or starts a new one.
func (s *Store) GetOrCreateRound(ctx context.Context, player, courseName string) (Round, error) {
	res, err := s.FindResumable(ctx, player)
	if err != nil {
		return Round{}, err
	}
	if res.Active != nil {
		return *res.Active, nil
	}

	name, _ := NormalizeName(player)
	now := s.now()
	rnd := Round{
		PlayerName:    name,
		SessionID:     s.newID(name, now),
		CourseName:    courseName,
		Status:        StatusInProgress,
		StartedAt:     now,
		LastTouchedAt: now,
	}
	if err := s.putMetadata(ctx, rnd); err != nil {
		return Round{}, err
	}
	s.log.Info().Str("player", name).Str("session_id", rnd.SessionID).Msg("round started")
	return rnd, nil
}

// FindResumable resolves the player's rounds without creating one.
func (s *Store) FindResumable(ctx context.Context, player string) (Resolution, error) {
	name, err := NormalizeName(player)
	if err != nil {
		return Resolution{}, err
	}
	rounds, err := s.listRounds(ctx, name)
	if err != nil {
		return Resolution{}, err
	}
	res := s.resolver.Resolve(rounds, s.now())
	for _, stale := range res.Stale {
		s.log.Warn().
			Str("player", name).
			Str("session_id", stale.SessionID).
			Str("resumed_session_id", res.Active.SessionID).
			Msg("duplicate in-progress round left untouched")
	}
	return res, nil
}

// LatestRound returns the resumable round, or else the most recently touched
// round of any status still inside the window.
func (s *Store) LatestRound(ctx context.Context, player string) (Round, bool, error) {
	name, err := NormalizeName(player)
	if err != nil {
		return Round{}, false, err
	}
	rounds, err := s.listRounds(ctx, name)
	if err != nil {
		return Round{}, false, err
	}
	now := s.now()
	if res := s.resolver.Resolve(rounds, now); res.Active != nil {
		return *res.Active, true, nil
	}

	var recent []Round
	for _, rnd := range rounds {
		if now.Sub(rnd.touched()) <= s.resolver.window() {
			recent = append(recent, rnd)
		}
	}
	if len(recent) == 0 {
		return Round{}, false, nil
	}
	sortNewestFirst(recent)
	return recent[0], true, nil
}

// RoundForScore returns the round a score for hole belongs to. Re-recording
// the last hole corrects the round it completed while that round is inside
// the window; any other score resumes or starts an in-progress round.
func (s *Store) RoundForScore(ctx context.Context, player, courseName string, hole int) (Round, error) {
	if hole == LastHole {
		rnd, ok, err := s.LatestRound(ctx, player)
		if err != nil {
			return Round{}, err
		}
		if ok && rnd.Status == StatusCompleted {
			return rnd, nil
		}
	}
	return s.GetOrCreateRound(ctx, player, courseName)
}

// RecordHoleScore writes (or overwrites) one hole and refreshes the round
// metadata. approximate records that par is a default rather than a known value.
func (s *Store) RecordHoleScore(ctx context.Context, rnd Round, hole, strokes, par int, approximate bool) (Round, error) {
	if rnd.SessionID == "" {
		return Round{}, ErrNoRound
	}
	if err := validateHole(hole); err != nil {
		return Round{}, err
	}
	if strokes < 1 || strokes > MaxStrokes {
		return Round{}, ErrInvalidStrokes
	}
	if !ValidPar(par) {
		return Round{}, ErrInvalidPar
	}

	now := s.now()
	data, err := json.Marshal(HoleScore{
		HoleNumber:  hole,
		Strokes:     strokes,
		Par:         par,
		Approximate: approximate,
		RecordedAt:  now,
	})
	if err != nil {
		return Round{}, fmt.Errorf("marshal hole score: %w", err)
	}
	if err := s.client.Put(ctx, storex.Item{
		PartitionKey: rnd.PlayerName,
		SortKey:      holeKey(rnd.SessionID, hole),
		Data:         data,
	}); err != nil {
		return Round{}, storeErr("put hole score", err)
	}

	holes, err := s.client.Query(ctx, rnd.PlayerName, holePrefix(rnd.SessionID))
	if err != nil {
		return Round{}, storeErr("count holes", err)
	}

	rnd.LastTouchedAt = now
	rnd.HolesRecorded = len(holes)
	if err := s.putMetadata(ctx, rnd); err != nil {
		return Round{}, err
	}
	s.log.Debug().
		Str("session_id", rnd.SessionID).
		Int("hole", hole).
		Int("strokes", strokes).
		Int("par", par).
		Bool("approximate", approximate).
		Int("holes_recorded", rnd.HolesRecorded).
		Msg("hole score recorded")
	return rnd, nil
}

// LoadRoundScores returns the recorded holes in ascending hole order.
func (s *Store) LoadRoundScores(ctx context.Context, rnd Round) ([]HoleScore, error) {
	if rnd.SessionID == "" {
		return nil, ErrNoRound
	}
	items, err := s.client.Query(ctx, rnd.PlayerName, holePrefix(rnd.SessionID))
	if err != nil {
		return nil, storeErr("load hole scores", err)
	}
	scores := make([]HoleScore, 0, len(items))
	for _, it := range items {
		var hs HoleScore
		if err := json.Unmarshal(it.Data, &hs); err != nil {
			s.log.Warn().Err(err).Str("sort_key", it.SortKey).Msg("skipping undecodable hole record")
			continue
		}
		scores = append(scores, hs)
	}
	return scores, nil
}

// CloseRound marks the round completed. A completed round is never resumed.
func (s *Store) CloseRound(ctx context.Context, rnd Round) (Round, error) {
	if rnd.SessionID == "" {
		return Round{}, ErrNoRound
	}
	now := s.now()
	rnd.Status = StatusCompleted
	rnd.CompletedAt = &now
	rnd.LastTouchedAt = now
	if err := s.putMetadata(ctx, rnd); err != nil {
		return Round{}, err
	}
	s.log.Info().Str("player", rnd.PlayerName).Str("session_id", rnd.SessionID).Msg("round completed")
	return rnd, nil
}

// BindConversation records which player a conversational session registered as.
func (s *Store) BindConversation(ctx context.Context, conversationID, player string) error {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return fmt.Errorf("%w: session id is required", contractx.ErrInvalidArguments)
	}
	name, err := NormalizeName(player)
	if err != nil {
		return err
	}
	data, err := json.Marshal(bindingRecord{PlayerName: name, BoundAt: s.now()})
	if err != nil {
		return fmt.Errorf("marshal binding: %w", err)
	}
	if err := s.client.Put(ctx, storex.Item{
		PartitionKey: bindingPartition,
		SortKey:      bindingKey(conversationID),
		Data:         data,
	}); err != nil {
		return storeErr("bind conversation", err)
	}
	return nil
}

// PlayerFor returns the player bound to a conversation, or ErrPlayerNotRegistered.
func (s *Store) PlayerFor(ctx context.Context, conversationID string) (string, error) {
	conversationID = strings.TrimSpace(conversationID)
	if conversationID == "" {
		return "", contractx.ErrPlayerNotRegistered
	}
	it, err := s.client.Get(ctx, bindingPartition, bindingKey(conversationID))
	if errors.Is(err, storex.ErrNotFound) {
		return "", contractx.ErrPlayerNotRegistered
	}
	if err != nil {
		return "", storeErr("load binding", err)
	}
	var rec bindingRecord
	if err := json.Unmarshal(it.Data, &rec); err != nil {
		return "", fmt.Errorf("decode binding: %w", err)
	}
	if rec.PlayerName == "" {
		return "", contractx.ErrPlayerNotRegistered
	}
	return rec.PlayerName, nil
}

func (s *Store) listRounds(ctx context.Context, player string) ([]Round, error) {
	items, err := s.client.Query(ctx, player, "")
	if err != nil {
		return nil, storeErr("list rounds", err)
	}
	var rounds []Round
	for _, it := range items {
		sessionID, ok := strings.CutSuffix(it.SortKey, metadataSuffix)
		if !ok || sessionID == "" {
			continue
		}
		var rec metadataRecord
		if err := json.Unmarshal(it.Data, &rec); err != nil {
			s.log.Warn().Err(err).Str("sort_key", it.SortKey).Msg("skipping undecodable round metadata")
			continue
		}
		rounds = append(rounds, Round{
			PlayerName:    player,
			SessionID:     sessionID,
			CourseName:    rec.CourseName,
			Status:        rec.Status,
			StartedAt:     rec.StartedAt,
			LastTouchedAt: rec.LastTouchedAt,
			CompletedAt:   rec.CompletedAt,
			HolesRecorded: rec.HolesRecorded,
		})
	}
	return rounds, nil
}

func (s *Store) putMetadata(ctx context.Context, rnd Round) error {
	data, err := json.Marshal(metadataRecord{
		Status:        rnd.Status,
		StartedAt:     rnd.StartedAt,
		LastTouchedAt: rnd.LastTouchedAt,
		CompletedAt:   rnd.CompletedAt,
		CourseName:    rnd.CourseName,
		HolesRecorded: rnd.HolesRecorded,
	})
	if err != nil {
		return fmt.Errorf("marshal round metadata: %w", err)
	}
	if err := s.client.Put(ctx, storex.Item{
		PartitionKey: rnd.PlayerName,
		SortKey:      metadataKey(rnd.SessionID),
		Data:         data,
	}); err != nil {
		return storeErr("put round metadata", err)
	}
	return nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, storex.ErrUnavailable) {
		return fmt.Errorf("%s: %w: %w", op, contractx.ErrStoreUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

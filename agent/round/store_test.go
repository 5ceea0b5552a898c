package round

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	contractx "github.com/tanpawarit/golf-caddy-agent/agent/contract"
	storex "github.com/tanpawarit/golf-caddy-agent/agent/store"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestStore(t *testing.T, client storex.Client) (*Store, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 5, 2, 8, 0, 0, 0, time.UTC)}
	var seq atomic.Int64
	ids := func(player string, now time.Time) string {
		return fmt.Sprintf("%s_%s_%08d", now.Format(sessionTimeLayout), player, seq.Add(1))
	}
	s := NewStore(client, NewResolver(4*time.Hour), zerolog.Nop(), WithClock(clock.Now), WithSessionIDs(ids))
	return s, clock
}

func TestGetOrCreateRoundNewPlayer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	rnd, err := s.GetOrCreateRound(ctx, " ben ", "Sunny Hills Golf Club")
	if err != nil {
		t.Fatalf("GetOrCreateRound() error = %v", err)
	}
	if rnd.PlayerName != "Ben" || rnd.Status != StatusInProgress || rnd.SessionID == "" {
		t.Fatalf("unexpected round: %#v", rnd)
	}

	again, err := s.GetOrCreateRound(ctx, "BEN", "Sunny Hills Golf Club")
	if err != nil {
		t.Fatalf("GetOrCreateRound() error = %v", err)
	}
	if again.SessionID != rnd.SessionID {
		t.Fatalf("second call session = %s, want resumed %s", again.SessionID, rnd.SessionID)
	}

	other, err := s.GetOrCreateRound(ctx, "Sam", "Sunny Hills Golf Club")
	if err != nil {
		t.Fatalf("GetOrCreateRound() error = %v", err)
	}
	if other.SessionID == rnd.SessionID {
		t.Fatal("distinct players share a session id")
	}
}

func TestRecordHoleScoreIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	rnd, err := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	if err != nil {
		t.Fatalf("GetOrCreateRound() error = %v", err)
	}
	for range 2 {
		if rnd, err = s.RecordHoleScore(ctx, rnd, 3, 4, 4, false); err != nil {
			t.Fatalf("RecordHoleScore() error = %v", err)
		}
	}
	scores, err := s.LoadRoundScores(ctx, rnd)
	if err != nil {
		t.Fatalf("LoadRoundScores() error = %v", err)
	}
	if len(scores) != 1 || scores[0].HoleNumber != 3 || scores[0].Strokes != 4 || scores[0].Par != 4 {
		t.Fatalf("scores = %#v, want single hole 3 with 4/4", scores)
	}
	if rnd.HolesRecorded != 1 {
		t.Fatalf("HolesRecorded = %d, want 1", rnd.HolesRecorded)
	}
}

func TestRecordHoleScoreCorrectionOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	rnd, _ := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	rnd, _ = s.RecordHoleScore(ctx, rnd, 1, 4, 4, false)
	rnd, _ = s.RecordHoleScore(ctx, rnd, 2, 3, 3, false)
	rnd, err := s.RecordHoleScore(ctx, rnd, 1, 5, 4, false)
	if err != nil {
		t.Fatalf("RecordHoleScore() error = %v", err)
	}

	scores, err := s.LoadRoundScores(ctx, rnd)
	if err != nil {
		t.Fatalf("LoadRoundScores() error = %v", err)
	}
	if len(scores) != 2 || scores[0].HoleNumber != 1 || scores[0].Strokes != 5 || scores[1].HoleNumber != 2 {
		t.Fatalf("scores = %#v", scores)
	}
	if rnd.HolesRecorded != 2 {
		t.Fatalf("HolesRecorded = %d, want 2", rnd.HolesRecorded)
	}
}

func TestRecordHoleScoreValidation(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())
	rnd, _ := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")

	cases := []struct {
		hole, strokes, par int
		want               error
	}{
		{hole: 0, strokes: 4, par: 4, want: ErrInvalidHole},
		{hole: 19, strokes: 4, par: 4, want: ErrInvalidHole},
		{hole: 1, strokes: 0, par: 4, want: ErrInvalidStrokes},
		{hole: 1, strokes: 16, par: 4, want: ErrInvalidStrokes},
		{hole: 1, strokes: 4, par: 6, want: ErrInvalidPar},
	}
	for _, tc := range cases {
		_, err := s.RecordHoleScore(ctx, rnd, tc.hole, tc.strokes, tc.par, false)
		if !errors.Is(err, tc.want) {
			t.Fatalf("RecordHoleScore(%d,%d,%d) error = %v, want %v", tc.hole, tc.strokes, tc.par, err, tc.want)
		}
		if !errors.Is(err, contractx.ErrInvalidArguments) {
			t.Fatalf("validation error %v does not classify as invalid arguments", err)
		}
	}
	if _, err := s.RecordHoleScore(ctx, Round{}, 1, 4, 4, false); !errors.Is(err, ErrNoRound) {
		t.Fatalf("RecordHoleScore(empty round) error = %v, want ErrNoRound", err)
	}
}

func TestGetOrCreateRoundResumeWindow(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, clock := newTestStore(t, storex.NewMemoryClient())

	first, _ := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	first, _ = s.RecordHoleScore(ctx, first, 1, 4, 4, false)

	clock.Advance(4 * time.Hour)
	resumed, err := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	if err != nil {
		t.Fatalf("GetOrCreateRound() error = %v", err)
	}
	if resumed.SessionID != first.SessionID {
		t.Fatalf("at window: session = %s, want resumed %s", resumed.SessionID, first.SessionID)
	}

	clock.Advance(time.Second)
	fresh, err := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	if err != nil {
		t.Fatalf("GetOrCreateRound() error = %v", err)
	}
	if fresh.SessionID == first.SessionID {
		t.Fatal("window + 1s must start a new round")
	}
	if fresh.HolesRecorded != 0 {
		t.Fatalf("fresh round HolesRecorded = %d", fresh.HolesRecorded)
	}
}

func TestCloseRoundStopsResumption(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	rnd, _ := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	rnd, _ = s.RecordHoleScore(ctx, rnd, 18, 5, 5, false)
	closed, err := s.CloseRound(ctx, rnd)
	if err != nil {
		t.Fatalf("CloseRound() error = %v", err)
	}
	if closed.Status != StatusCompleted || closed.CompletedAt == nil {
		t.Fatalf("closed round = %#v", closed)
	}

	latest, ok, err := s.LatestRound(ctx, "Ben")
	if err != nil || !ok {
		t.Fatalf("LatestRound() = %v, %v", ok, err)
	}
	if latest.SessionID != rnd.SessionID || latest.Status != StatusCompleted {
		t.Fatalf("LatestRound() = %#v, want completed %s", latest, rnd.SessionID)
	}

	next, err := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	if err != nil {
		t.Fatalf("GetOrCreateRound() error = %v", err)
	}
	if next.SessionID == rnd.SessionID {
		t.Fatal("completed round was resumed")
	}
}

func TestRoundForScoreCorrectsCompletedRound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, clock := newTestStore(t, storex.NewMemoryClient())

	rnd, _ := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	rnd, _ = s.RecordHoleScore(ctx, rnd, 17, 4, 4, false)
	rnd, _ = s.RecordHoleScore(ctx, rnd, 18, 4, 5, false)
	closed, err := s.CloseRound(ctx, rnd)
	if err != nil {
		t.Fatalf("CloseRound() error = %v", err)
	}

	clock.Advance(time.Minute)
	target, err := s.RoundForScore(ctx, "Ben", "Sunny Hills Golf Club", LastHole)
	if err != nil {
		t.Fatalf("RoundForScore() error = %v", err)
	}
	if target.SessionID != closed.SessionID {
		t.Fatalf("RoundForScore(18) = %s, want completed round %s", target.SessionID, closed.SessionID)
	}
	corrected, err := s.RecordHoleScore(ctx, target, 18, 6, 5, false)
	if err != nil {
		t.Fatalf("RecordHoleScore() error = %v", err)
	}
	if corrected.Status != StatusCompleted || corrected.HolesRecorded != 2 {
		t.Fatalf("corrected round = %#v", corrected)
	}
	scores, err := s.LoadRoundScores(ctx, corrected)
	if err != nil {
		t.Fatalf("LoadRoundScores() error = %v", err)
	}
	if len(scores) != 2 || scores[1].HoleNumber != 18 || scores[1].Strokes != 6 {
		t.Fatalf("scores = %#v", scores)
	}

	other, err := s.RoundForScore(ctx, "Ben", "Sunny Hills Golf Club", 1)
	if err != nil {
		t.Fatalf("RoundForScore(1) error = %v", err)
	}
	if other.SessionID == closed.SessionID || other.Status != StatusInProgress {
		t.Fatalf("RoundForScore(1) = %#v, want a new in-progress round", other)
	}
}

func TestRoundForScoreIgnoresExpiredCompletedRound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, clock := newTestStore(t, storex.NewMemoryClient())

	rnd, _ := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	rnd, _ = s.RecordHoleScore(ctx, rnd, 18, 5, 5, false)
	closed, _ := s.CloseRound(ctx, rnd)

	clock.Advance(4*time.Hour + time.Second)
	target, err := s.RoundForScore(ctx, "Ben", "Sunny Hills Golf Club", LastHole)
	if err != nil {
		t.Fatalf("RoundForScore() error = %v", err)
	}
	if target.SessionID == closed.SessionID {
		t.Fatal("expired completed round received a correction")
	}
}

func TestRecordHoleScoreKeepsApproximatePar(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	rnd, _ := s.GetOrCreateRound(ctx, "Ben", "Sunny Hills Golf Club")
	rnd, err := s.RecordHoleScore(ctx, rnd, 7, 5, 4, true)
	if err != nil {
		t.Fatalf("RecordHoleScore() error = %v", err)
	}
	scores, err := s.LoadRoundScores(ctx, rnd)
	if err != nil {
		t.Fatalf("LoadRoundScores() error = %v", err)
	}
	if len(scores) != 1 || !scores[0].Approximate || scores[0].Par != 4 {
		t.Fatalf("scores = %#v, want approximate par 4", scores)
	}
}

func TestLatestRoundNone(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	_, ok, err := s.LatestRound(context.Background(), "Nobody")
	if err != nil {
		t.Fatalf("LatestRound() error = %v", err)
	}
	if ok {
		t.Fatal("LatestRound() found a round for a new player")
	}
}

func TestFindResumableReportsStaleDuplicates(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	client := storex.NewMemoryClient()
	s, clock := newTestStore(t, client)

	a, _ := s.putRoundForTest(ctx, t, "Sam", clock.Now())
	clock.Advance(time.Minute)
	b, _ := s.putRoundForTest(ctx, t, "Sam", clock.Now())
	clock.Advance(time.Minute)
	a, _ = s.RecordHoleScore(ctx, a, 1, 4, 4, false)

	res, err := s.FindResumable(ctx, "sam")
	if err != nil {
		t.Fatalf("FindResumable() error = %v", err)
	}
	if res.Active == nil || res.Active.SessionID != a.SessionID {
		t.Fatalf("Active = %#v, want most recently touched %s", res.Active, a.SessionID)
	}
	if len(res.Stale) != 1 || res.Stale[0].SessionID != b.SessionID {
		t.Fatalf("Stale = %#v, want [%s]", res.Stale, b.SessionID)
	}

	// the loser stays untouched
	items, err := client.Query(ctx, "Sam", metadataKey(b.SessionID))
	if err != nil || len(items) != 1 {
		t.Fatalf("stale metadata missing: %v %#v", err, items)
	}
}

func TestConcurrentGetOrCreateDoesNotCorruptHoles(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	rounds := make([]Round, 2)
	var wg conc.WaitGroup
	for i := range rounds {
		wg.Go(func() {
			rnd, err := s.GetOrCreateRound(ctx, "Sam", "Sunny Hills Golf Club")
			if err != nil {
				t.Errorf("GetOrCreateRound() error = %v", err)
				return
			}
			rnd, err = s.RecordHoleScore(ctx, rnd, i+1, 3+i, 4, false)
			if err != nil {
				t.Errorf("RecordHoleScore() error = %v", err)
				return
			}
			rounds[i] = rnd
		})
	}
	wg.Wait()

	for i, rnd := range rounds {
		scores, err := s.LoadRoundScores(ctx, rnd)
		if err != nil {
			t.Fatalf("LoadRoundScores() error = %v", err)
		}
		found := false
		for _, hs := range scores {
			if hs.HoleNumber == i+1 {
				found = true
				if hs.Strokes != 3+i {
					t.Fatalf("session %s hole %d strokes = %d, want %d", rnd.SessionID, i+1, hs.Strokes, 3+i)
				}
			}
		}
		if !found {
			t.Fatalf("session %s lost hole %d", rnd.SessionID, i+1)
		}
	}

	// whichever way the race went, the resolver settles on one round afterwards
	res, err := s.FindResumable(ctx, "Sam")
	if err != nil || res.Active == nil {
		t.Fatalf("FindResumable() = %#v, %v", res, err)
	}
}

func TestConversationBinding(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s, _ := newTestStore(t, storex.NewMemoryClient())

	if _, err := s.PlayerFor(ctx, "conv-1"); !errors.Is(err, contractx.ErrPlayerNotRegistered) {
		t.Fatalf("PlayerFor(unbound) error = %v, want ErrPlayerNotRegistered", err)
	}
	if err := s.BindConversation(ctx, "conv-1", "  ben"); err != nil {
		t.Fatalf("BindConversation() error = %v", err)
	}
	got, err := s.PlayerFor(ctx, "conv-1")
	if err != nil {
		t.Fatalf("PlayerFor() error = %v", err)
	}
	if got != "Ben" {
		t.Fatalf("PlayerFor() = %q, want Ben", got)
	}
}

type unavailableClient struct{ *storex.MemoryClient }

func (unavailableClient) Query(context.Context, string, string) ([]storex.Item, error) {
	return nil, fmt.Errorf("%w: query after 3 attempts", storex.ErrUnavailable)
}

func TestStoreUnavailableIsClassified(t *testing.T) {
	t.Parallel()
	s, _ := newTestStore(t, unavailableClient{storex.NewMemoryClient()})

	_, err := s.GetOrCreateRound(context.Background(), "Ben", "Sunny Hills Golf Club")
	if !errors.Is(err, contractx.ErrStoreUnavailable) {
		t.Fatalf("GetOrCreateRound() error = %v, want ErrStoreUnavailable", err)
	}
	if got := contractx.KindOf(err); got != contractx.KindStoreUnavailable {
		t.Fatalf("KindOf() = %s, want StoreUnavailable", got)
	}
}

// putRoundForTest writes a fresh in-progress round directly, bypassing
// resolution, to simulate two sessions that raced GetOrCreateRound.
func (s *Store) putRoundForTest(ctx context.Context, t *testing.T, player string, now time.Time) (Round, error) {
	t.Helper()
	rnd := Round{
		PlayerName:    player,
		SessionID:     s.newID(player, now),
		CourseName:    "Sunny Hills Golf Club",
		Status:        StatusInProgress,
		StartedAt:     now,
		LastTouchedAt: now,
	}
	if err := s.putMetadata(ctx, rnd); err != nil {
		t.Fatalf("putMetadata() error = %v", err)
	}
	return rnd, nil
}

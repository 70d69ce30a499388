package quiz

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/wordvault/api/internal/model"
)

func testPool(n int) []model.VocabEntry {
	pool := make([]model.VocabEntry, n)
	for i := range pool {
		pool[i] = model.VocabEntry{
			ID:         fmt.Sprintf("entry-%d", i),
			Word:       fmt.Sprintf("word-%d", i),
			Definition: fmt.Sprintf("definition-%d", i),
		}
	}
	return pool
}

func testRNG() *rand.Rand {
	return rand.New(rand.NewSource(42))
}

func TestStartChoiceRequiresFourEntries(t *testing.T) {
	_, err := Start(testPool(3), ModeChoice, 0, testRNG())

	var poolErr *InsufficientPoolError
	if !errors.As(err, &poolErr) {
		t.Fatalf("expected InsufficientPoolError, got %v", err)
	}
	if poolErr.Required != 4 || poolErr.Got != 3 {
		t.Fatalf("error should name the minimum: %+v", poolErr)
	}

	// Exactly 4 entries is enough
	if _, err := Start(testPool(4), ModeChoice, 0, testRNG()); err != nil {
		t.Fatalf("pool of 4 must start: %v", err)
	}
}

func TestStartCardRequiresOneEntry(t *testing.T) {
	var poolErr *InsufficientPoolError
	if _, err := Start(nil, ModeCard, 0, testRNG()); !errors.As(err, &poolErr) {
		t.Fatalf("expected InsufficientPoolError, got %v", err)
	}

	if _, err := Start(testPool(1), ModeCard, 0, testRNG()); err != nil {
		t.Fatalf("pool of 1 must start card mode: %v", err)
	}
}

func TestChoiceOptionsAreDistinctAndContainTarget(t *testing.T) {
	// Repeat across seeds; option drawing must never produce duplicates
	for seed := int64(0); seed < 50; seed++ {
		rng := rand.New(rand.NewSource(seed))
		session, err := Start(testPool(6), ModeChoice, 0, rng)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}

		for qi, q := range session.questions {
			if len(q.Options) != 4 {
				t.Fatalf("seed %d q%d: %d options", seed, qi, len(q.Options))
			}
			seen := map[string]bool{}
			targetCount := 0
			for _, opt := range q.Options {
				if seen[opt.ID] {
					t.Fatalf("seed %d q%d: duplicate option %s", seed, qi, opt.ID)
				}
				seen[opt.ID] = true
				if opt.ID == q.Target.ID {
					targetCount++
				}
			}
			if targetCount != 1 {
				t.Fatalf("seed %d q%d: target appears %d times", seed, qi, targetCount)
			}
		}
	}
}

func TestStartShufflesAndTruncates(t *testing.T) {
	session, err := Start(testPool(10), ModeChoice, 5, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(session.questions) != 5 {
		t.Fatalf("limit 5: got %d questions", len(session.questions))
	}

	// "all" (limit 0) keeps the whole pool
	session, err = Start(testPool(10), ModeCard, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(session.questions) != 10 {
		t.Fatalf("limit 0: got %d questions", len(session.questions))
	}

	// Questions cover distinct entries (shuffle, not sampling with replacement)
	seen := map[string]bool{}
	for _, q := range session.questions {
		if seen[q.Target.ID] {
			t.Fatalf("duplicate question target %s", q.Target.ID)
		}
		seen[q.Target.ID] = true
	}
}

func TestChoiceScoring(t *testing.T) {
	session, err := Start(testPool(8), ModeChoice, 5, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Answer the first 3 correctly, the last 2 wrong
	for i := 0; i < 5; i++ {
		q, index, total, err := session.Current()
		if err != nil {
			t.Fatalf("question %d: %v", i, err)
		}
		if index != i || total != 5 {
			t.Fatalf("cursor %d/%d, want %d/5", index, total, i)
		}

		optionID := q.Target.ID
		if i >= 3 {
			optionID = wrongOption(q)
		}

		correct, err := session.Answer(optionID)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if correct != (i < 3) {
			t.Fatalf("answer %d: correct=%v", i, correct)
		}

		session.advance()
	}

	if session.State() != StateResult {
		t.Fatalf("expected result state, got %s", session.State())
	}

	report, err := session.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Score != 3 || report.Total != 5 || report.Percent != 60 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if len(report.Review) != 5 {
		t.Fatalf("review should list every question, got %d", len(report.Review))
	}
	for i, item := range report.Review {
		if item.Correct != (i < 3) {
			t.Fatalf("review item %d: correct=%v", i, item.Correct)
		}
	}
}

func TestSecondAnswerIsIgnored(t *testing.T) {
	session, err := Start(testPool(4), ModeChoice, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q, _, _, _ := session.Current()
	if _, err := session.Answer(wrongOption(q)); err != nil {
		t.Fatalf("first answer: %v", err)
	}

	// A late correct selection must not rescue the score
	if _, err := session.Answer(q.Target.ID); !errors.Is(err, ErrAlreadyAnswered) {
		t.Fatalf("expected ErrAlreadyAnswered, got %v", err)
	}
	if session.score != 0 {
		t.Fatalf("score changed by ignored answer: %d", session.score)
	}
}

func TestAnswerRejectsUnknownOption(t *testing.T) {
	session, err := Start(testPool(8), ModeChoice, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := session.Answer("not-an-option"); !errors.Is(err, ErrUnknownOption) {
		t.Fatalf("expected ErrUnknownOption, got %v", err)
	}
}

func TestCardNavigation(t *testing.T) {
	session, err := Start(testPool(3), ModeCard, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	// Prev at the first card is a no-op
	if err := session.Prev(); err != nil {
		t.Fatalf("prev at start: %v", err)
	}
	if _, index, _, _ := session.Current(); index != 0 {
		t.Fatalf("prev at start moved cursor to %d", index)
	}

	if state, _ := session.Next(); state != StatePlaying {
		t.Fatalf("next: state %s", state)
	}
	if err := session.Prev(); err != nil {
		t.Fatalf("prev: %v", err)
	}
	if _, index, _, _ := session.Current(); index != 0 {
		t.Fatalf("expected cursor back at 0, got %d", index)
	}

	// Walk off the end
	session.Next()
	session.Next()
	state, err := session.Next()
	if err != nil {
		t.Fatalf("final next: %v", err)
	}
	if state != StateResult {
		t.Fatalf("expected result state, got %s", state)
	}

	report, err := session.Report()
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if report.Total != 3 || report.Score != 0 || report.Percent != 0 || report.Review != nil {
		t.Fatalf("card report must only count reviewed entries: %+v", report)
	}
}

func TestCardModeRejectsAnswer(t *testing.T) {
	session, err := Start(testPool(2), ModeCard, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.Answer("entry-0"); !errors.Is(err, ErrWrongMode) {
		t.Fatalf("expected ErrWrongMode, got %v", err)
	}
}

func TestSetFavoritePatchesSessionCopies(t *testing.T) {
	session, err := Start(testPool(5), ModeChoice, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	session.SetFavorite("entry-2", true)

	for _, q := range session.questions {
		if q.Target.ID == "entry-2" && !q.Target.Favorite {
			t.Fatal("target copy not patched")
		}
		for _, opt := range q.Options {
			if opt.ID == "entry-2" && !opt.Favorite {
				t.Fatal("option copy not patched")
			}
		}
	}
}

func TestReportRequiresFinishedSession(t *testing.T) {
	session, err := Start(testPool(4), ModeChoice, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := session.Report(); !errors.Is(err, ErrNotFinished) {
		t.Fatalf("expected ErrNotFinished, got %v", err)
	}
}

func TestMarkRecordedIsOneShot(t *testing.T) {
	session, err := Start(testPool(1), ModeCard, 0, testRNG())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if !session.MarkRecorded() {
		t.Fatal("first call must return true")
	}
	if session.MarkRecorded() {
		t.Fatal("second call must return false")
	}
}

func TestManagerAutoAdvance(t *testing.T) {
	m := NewManager(20*time.Millisecond, testRNG())

	session, err := m.Start(1, testPool(4), ModeChoice, "all", 2)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q, _, _, _ := session.Current()
	if _, err := m.Answer(1, session.ID, q.Target.ID); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// Cursor holds during the feedback delay, then advances by itself
	if _, index, _, _ := session.Current(); index != 0 {
		t.Fatalf("advanced before the delay: index %d", index)
	}
	time.Sleep(100 * time.Millisecond)
	if _, index, _, _ := session.Current(); index != 1 {
		t.Fatalf("expected auto-advance to question 1, got %d", index)
	}
}

func TestManagerAbandonMidDelay(t *testing.T) {
	m := NewManager(20*time.Millisecond, testRNG())

	session, err := m.Start(1, testPool(4), ModeChoice, "all", 1)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	q, _, _, _ := session.Current()
	if _, err := m.Answer(1, session.ID, q.Target.ID); err != nil {
		t.Fatalf("answer: %v", err)
	}

	// Abandon before the delay fires; the timer must find nothing to touch
	m.Remove(session.ID)
	time.Sleep(100 * time.Millisecond)

	if _, err := m.Get(1, session.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("session should be gone, got %v", err)
	}
	if session.State() != StatePlaying {
		t.Fatalf("abandoned session mutated after removal: %s", session.State())
	}
}

func TestManagerScopesSessionsByUser(t *testing.T) {
	m := NewManager(0, testRNG())

	session, err := m.Start(1, testPool(4), ModeChoice, "all", 0)
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	if _, err := m.Get(2, session.ID); !errors.Is(err, ErrNoSession) {
		t.Fatalf("another user must not see the session, got %v", err)
	}
}

func wrongOption(q Question) string {
	for _, opt := range q.Options {
		if opt.ID != q.Target.ID {
			return opt.ID
		}
	}
	return ""
}

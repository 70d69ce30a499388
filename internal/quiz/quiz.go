package quiz

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"

	"github.com/wordvault/api/internal/model"
)

type Mode string

const (
	ModeChoice Mode = "choice"
	ModeCard   Mode = "card"
)

// MinChoicePool is the smallest pool a multiple-choice run can start from:
// one correct entry plus three distractors.
const MinChoicePool = 4

type State string

const (
	StatePlaying State = "playing"
	StateResult  State = "result"
)

// InsufficientPoolError rejects a quiz start whose scoped pool is too small
// for the chosen mode. The caller stays in its configuration step and may
// retry with a different scope or mode.
type InsufficientPoolError struct {
	Required int
	Got      int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("quiz: pool has %d entries, need at least %d", e.Got, e.Required)
}

var (
	ErrWrongMode       = errors.New("quiz: operation not valid in this mode")
	ErrAlreadyAnswered = errors.New("quiz: question already answered")
	ErrFinished        = errors.New("quiz: session already finished")
	ErrNotFinished     = errors.New("quiz: session still in progress")
	ErrUnknownOption   = errors.New("quiz: option not in current question")
)

// Question is one quiz item. In choice mode Options holds exactly 4 entries
// (the target plus 3 distinct distractors) in display order; in card mode it
// is nil.
type Question struct {
	Target  model.VocabEntry
	Options []model.VocabEntry
}

// ReviewItem records one answered question for the result screen.
type ReviewItem struct {
	Word       string `json:"word"`
	Definition string `json:"definition"`
	Correct    bool   `json:"correct"`
}

// Report is the outcome of a finished run. Review is nil in card mode,
// where there is no correctness concept.
type Report struct {
	Mode    Mode         `json:"mode"`
	Total   int          `json:"total"`
	Score   int          `json:"score"`
	Percent int          `json:"percent"`
	Review  []ReviewItem `json:"review,omitempty"`
}

// Session is one quiz run. All mutable state is guarded by mu; a Session is
// discarded (never reset in place) on restart.
type Session struct {
	ID    string
	Mode  Mode
	Scope string

	mu        sync.Mutex
	state     State
	questions []Question
	index     int
	score     int
	answered  bool
	review    []ReviewItem
	recorded  bool
}

// Start builds a session from an already-scoped pool. The pool is shuffled
// with a uniform permutation from rng and truncated to limit (0 means all).
// Choice mode requires at least MinChoicePool entries, card mode at least
// one; otherwise an InsufficientPoolError is returned and no session exists.
func Start(pool []model.VocabEntry, mode Mode, limit int, rng *rand.Rand) (*Session, error) {
	minimum := 1
	if mode == ModeChoice {
		minimum = MinChoicePool
	}
	if len(pool) < minimum {
		return nil, &InsufficientPoolError{Required: minimum, Got: len(pool)}
	}

	shuffled := make([]model.VocabEntry, len(pool))
	copy(shuffled, pool)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}

	if limit > 0 && limit < len(shuffled) {
		shuffled = shuffled[:limit]
	}

	questions := make([]Question, len(shuffled))
	for i, target := range shuffled {
		q := Question{Target: target}
		if mode == ModeChoice {
			q.Options = drawOptions(pool, target, rng)
		}
		questions[i] = q
	}

	return &Session{
		Mode:      mode,
		state:     StatePlaying,
		questions: questions,
	}, nil
}

// drawOptions picks 3 distinct distractors from the pool (excluding the
// target), appends the target, and shuffles the display order.
func drawOptions(pool []model.VocabEntry, target model.VocabEntry, rng *rand.Rand) []model.VocabEntry {
	candidates := make([]model.VocabEntry, 0, len(pool)-1)
	for _, e := range pool {
		if e.ID != target.ID {
			candidates = append(candidates, e)
		}
	}

	// Partial Fisher-Yates: only the first 3 positions matter.
	for k := 0; k < 3; k++ {
		j := k + rng.Intn(len(candidates)-k)
		candidates[k], candidates[j] = candidates[j], candidates[k]
	}

	options := make([]model.VocabEntry, 0, 4)
	options = append(options, candidates[:3]...)
	options = append(options, target)
	for i := len(options) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		options[i], options[j] = options[j], options[i]
	}
	return options
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Current returns the question at the cursor, its zero-based index, and the
// question count.
func (s *Session) Current() (Question, int, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return Question{}, 0, 0, ErrFinished
	}
	return s.questions[s.index], s.index, len(s.questions), nil
}

// Answer records a choice-mode selection. Exactly one answer is accepted per
// question; repeats return ErrAlreadyAnswered and change nothing. The cursor
// does not move here; advancement happens separately after the feedback
// delay.
func (s *Session) Answer(optionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Mode != ModeChoice {
		return false, ErrWrongMode
	}
	if s.state != StatePlaying {
		return false, ErrFinished
	}
	if s.answered {
		return false, ErrAlreadyAnswered
	}

	q := s.questions[s.index]
	found := false
	for _, opt := range q.Options {
		if opt.ID == optionID {
			found = true
			break
		}
	}
	if !found {
		return false, ErrUnknownOption
	}

	correct := optionID == q.Target.ID
	if correct {
		s.score++
	}
	s.answered = true
	s.review = append(s.review, ReviewItem{
		Word:       q.Target.Word,
		Definition: q.Target.Definition,
		Correct:    correct,
	})
	return correct, nil
}

// advance moves the cursor forward, entering the result state past the last
// question. Answering state is cleared for the next question.
func (s *Session) advance() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StatePlaying {
		return s.state
	}
	if s.index+1 >= len(s.questions) {
		s.state = StateResult
		return s.state
	}
	s.index++
	s.answered = false
	return s.state
}

// Next moves a card-mode session forward; past the last card it finishes.
func (s *Session) Next() (State, error) {
	if s.Mode != ModeCard {
		return "", ErrWrongMode
	}
	return s.advance(), nil
}

// Prev moves a card-mode session back one card; at the first card it is a
// no-op.
func (s *Session) Prev() error {
	if s.Mode != ModeCard {
		return ErrWrongMode
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StatePlaying {
		return ErrFinished
	}
	if s.index > 0 {
		s.index--
	}
	return nil
}

// SetFavorite patches the in-session copies of an entry so flashcards show
// a favorite toggle without a data reload. The store write-through is the
// caller's responsibility.
func (s *Session) SetFavorite(entryID string, favorite bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.questions {
		if s.questions[i].Target.ID == entryID {
			s.questions[i].Target.Favorite = favorite
		}
		for j := range s.questions[i].Options {
			if s.questions[i].Options[j].ID == entryID {
				s.questions[i].Options[j].Favorite = favorite
			}
		}
	}
}

// Report returns the final outcome; ErrNotFinished while still playing.
func (s *Session) Report() (Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateResult {
		return Report{}, ErrNotFinished
	}

	r := Report{
		Mode:  s.Mode,
		Total: len(s.questions),
	}
	if s.Mode == ModeChoice {
		r.Score = s.score
		r.Percent = int(math.Round(100 * float64(s.score) / float64(len(s.questions))))
		r.Review = s.review
	}
	return r, nil
}

// Reviewed lists the entries the session covered, in quiz order.
func (s *Session) Reviewed() []model.VocabEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]model.VocabEntry, len(s.questions))
	for i, q := range s.questions {
		entries[i] = q.Target
	}
	return entries
}

// MarkRecorded returns true exactly once per session, so completion side
// effects (history, persisted results) are not applied twice.
func (s *Session) MarkRecorded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recorded {
		return false
	}
	s.recorded = true
	return true
}

package adminform

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"artwall/internal/domain"
)

// DefaultAutosaveDelay is how long form edits settle before a draft write.
const DefaultAutosaveDelay = time.Second

const draftWriteTimeout = 5 * time.Second

// Autosaver debounces draft writes for one owner and draft key. Only the
// latest form is written; a newer Touch restarts the delay.
type Autosaver struct {
	store  domain.DraftStore
	owner  string
	key    string
	delay  time.Duration
	logger zerolog.Logger
	now    func() time.Time
	// idle runs after a timer-driven write leaves nothing pending.
	idle func(*Autosaver)

	// writeMu serialises store writes; Close takes it to wait out a write in
	// flight.
	writeMu sync.Mutex

	mu      sync.Mutex
	timer   *time.Timer
	pending *Form
	closed  bool
}

// NewAutosaver returns an idle autosaver.
func NewAutosaver(store domain.DraftStore, owner, key string, delay time.Duration, logger zerolog.Logger) *Autosaver {
	if delay <= 0 {
		delay = DefaultAutosaveDelay
	}
	return &Autosaver{store: store, owner: owner, key: key, delay: delay, logger: logger, now: time.Now}
}

// Touch records the latest form state and (re)arms the save timer. It is a
// no-op once the autosaver is closed.
func (a *Autosaver) Touch(f Form) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.pending = &f
	if a.timer != nil {
		a.timer.Stop()
	}
	a.timer = time.AfterFunc(a.delay, a.fire)
}

func (a *Autosaver) fire() {
	ctx, cancel := context.WithTimeout(context.Background(), draftWriteTimeout)
	defer cancel()
	if err := a.Flush(ctx); err != nil {
		a.logger.Warn().Err(err).Str("owner", a.owner).Str("key", a.key).Msg("adminform: autosave failed")
	}
	if a.idle != nil && !a.Pending() {
		a.idle(a)
	}
}

// Flush writes the pending form now, if any. Nothing is written after Close.
func (a *Autosaver) Flush(ctx context.Context) error {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()

	a.mu.Lock()
	f := a.pending
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
	closed := a.closed
	a.mu.Unlock()
	if f == nil || closed {
		return nil
	}
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	return a.store.Save(ctx, domain.Draft{Owner: a.owner, Key: a.key, Payload: payload, SavedAt: a.now().UTC()})
}

// Pending reports whether a write is waiting for the timer.
func (a *Autosaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.pending != nil
}

// Close cancels the timer, drops any unsaved state and waits for a write
// already in progress to finish.
func (a *Autosaver) Close() {
	a.writeMu.Lock()
	defer a.writeMu.Unlock()
	a.mu.Lock()
	defer a.mu.Unlock()
	a.closed = true
	a.pending = nil
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}

// Drafts manages one Autosaver per owner and key on top of a DraftStore.
// Savers are dropped once their last write lands.
type Drafts struct {
	store  domain.DraftStore
	delay  time.Duration
	logger zerolog.Logger

	mu     sync.Mutex
	savers map[string]*Autosaver
}

// NewDrafts creates a draft manager.
func NewDrafts(store domain.DraftStore, delay time.Duration, logger zerolog.Logger) *Drafts {
	return &Drafts{store: store, delay: delay, logger: logger, savers: map[string]*Autosaver{}}
}

func draftID(owner, key string) string {
	return owner + "/" + key
}

// Touch schedules a debounced save of f.
func (d *Drafts) Touch(owner, key string, f Form) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := draftID(owner, key)
	s, ok := d.savers[id]
	if !ok {
		s = NewAutosaver(d.store, owner, key, d.delay, d.logger)
		s.idle = func(a *Autosaver) { d.release(id, a) }
		d.savers[id] = s
	}
	s.Touch(f)
}

// release forgets an idle saver. Touch holds d.mu while arming a saver, so
// an edit cannot slip in between the check and the removal.
func (d *Drafts) release(id string, a *Autosaver) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.savers[id] != a || a.Pending() {
		return
	}
	delete(d.savers, id)
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
}

// Active reports how many drafts have an autosaver.
func (d *Drafts) Active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.savers)
}

// Load flushes any pending edit and returns the stored draft.
func (d *Drafts) Load(ctx context.Context, owner, key string) (*Form, time.Time, error) {
	d.mu.Lock()
	s := d.savers[draftID(owner, key)]
	d.mu.Unlock()
	if s != nil {
		if err := s.Flush(ctx); err != nil {
			return nil, time.Time{}, err
		}
	}
	draft, err := d.store.Load(ctx, owner, key)
	if err != nil {
		return nil, time.Time{}, err
	}
	var f Form
	if err := json.Unmarshal(draft.Payload, &f); err != nil {
		return nil, time.Time{}, err
	}
	return &f, draft.SavedAt, nil
}

// Discard cancels pending edits, waits for a write in flight and removes the
// stored draft. A missing draft is not an error.
func (d *Drafts) Discard(ctx context.Context, owner, key string) error {
	id := draftID(owner, key)
	d.mu.Lock()
	s, ok := d.savers[id]
	delete(d.savers, id)
	d.mu.Unlock()
	if ok {
		s.Close()
	}
	if err := d.store.Delete(ctx, owner, key); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// Close flushes every pending draft and stops all timers.
func (d *Drafts) Close(ctx context.Context) error {
	d.mu.Lock()
	savers := d.savers
	d.savers = map[string]*Autosaver{}
	d.mu.Unlock()
	var errs []error
	for _, s := range savers {
		if err := s.Flush(ctx); err != nil {
			errs = append(errs, err)
		}
		s.Close()
	}
	return errors.Join(errs...)
}

package auth

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"rally/api"
	"rally/metrics"
)

// Status is the session determination state.
type Status int

const (
	// StatusUndetermined is the state before hydration resolves. It is
	// distinct from anonymous so consumers do not flash a logged-out
	// view before startup settles; once left it is never re-entered.
	StatusUndetermined Status = iota

	// StatusAnonymous means there is no session.
	StatusAnonymous

	// StatusAuthenticated means a token pair and user are held.
	StatusAuthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAnonymous:
		return "anonymous"
	case StatusAuthenticated:
		return "authenticated"
	default:
		return "undetermined"
	}
}

// Snapshot is a consistent copy of the session state.
type Snapshot struct {
	Status Status
	Tokens *TokenPair
	User   *User
}

// Manager owns one logical session: the current token pair and user,
// the renewal timer, and the change observer. All exported methods are
// safe for concurrent use; overlapping operations resolve by
// last-write-wins on the shared state.
type Manager struct {
	cfg Config
	gw  *Gateway
	log *slog.Logger
	met *metrics.Session
	now func() time.Time

	onChange func(*TokenPair)
	onError  func(error)

	// base is cancelled by Close so an in-flight scheduled renewal
	// cannot outlive the manager.
	base   context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	status   Status
	tokens   *TokenPair
	user     *User
	timer    *time.Timer
	hydrated bool
	closed   bool

	// gen increments on every committed transition; the renewal timer
	// captures it when armed and discards its result when superseded.
	gen uint64

	// notified tracks the last observer-visible pair so updates that
	// net to the same value do not double-fire.
	notified     bool
	lastNotified *TokenPair
}

// Option configures optional Manager dependencies.
type Option func(*Manager)

// WithLogger sets the manager's logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) {
		if m == nil || log == nil {
			return
		}
		m.log = log
	}
}

// WithObserver registers the token-change observer. It is invoked with
// the current pair (nil for anonymous) once per credential transition,
// including the first determination, and never while undetermined.
func WithObserver(fn func(*TokenPair)) Option {
	return func(m *Manager) {
		if m == nil || fn == nil {
			return
		}
		m.onChange = fn
	}
}

// WithErrorObserver registers the background-error observer, which
// receives failures of scheduled renewals.
func WithErrorObserver(fn func(error)) Option {
	return func(m *Manager) {
		if m == nil || fn == nil {
			return
		}
		m.onError = fn
	}
}

// WithSessionMetrics enables session lifecycle metrics.
func WithSessionMetrics(met *metrics.Session) Option {
	return func(m *Manager) {
		if m == nil || met == nil {
			return
		}
		m.met = met
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		if m == nil || now == nil {
			return
		}
		m.now = now
	}
}

// NewManager constructs a Manager in the undetermined state.
func NewManager(cfg Config, gw *Gateway, opts ...Option) *Manager {
	base, cancel := context.WithCancel(context.Background())
	m := &Manager{
		cfg:    cfg,
		gw:     gw,
		log:    slog.Default(),
		now:    time.Now,
		base:   base,
		cancel: cancel,
		status: StatusUndetermined,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(m)
	}
	m.met.SetState(metrics.StateUndetermined)
	return m
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		Status: m.status,
		Tokens: clonePair(m.tokens),
		User:   cloneUser(m.user),
	}
}

// Status returns the current determination state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Hydrate resolves the externally supplied initial tokens into session
// state. It executes at most once per manager; src may be nil (no
// initial tokens) or may block (a pending asynchronous value).
//
// An access-valid pair resolves the user and authenticates. An expired
// or absent pair yields an anonymous session with zero remote calls,
// unless Config.RenewOnHydrate permits one renewal attempt for a
// refresh-valid pair.
func (m *Manager) Hydrate(ctx context.Context, src TokenSource) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.hydrated {
		m.mu.Unlock()
		return ErrAlreadyHydrated
	}
	m.hydrated = true
	m.mu.Unlock()

	var pair *TokenPair
	if src != nil {
		p, err := src.Tokens(ctx)
		if err != nil {
			m.commit(StatusAnonymous, nil, nil)
			return err
		}
		pair = p
	}

	now := m.now()
	switch {
	case AccessValid(pair, now):
		user, err := m.gw.CurrentUser(ctx, pair.Access, "")
		if err != nil {
			// Never surface a pair without a user.
			m.commit(StatusAnonymous, nil, nil)
			return err
		}
		m.commit(StatusAuthenticated, clonePair(pair), &user)
		return nil

	case m.cfg.RenewOnHydrate && RefreshValid(pair, now):
		renewed, err := m.gw.Renew(ctx, pair.Refresh)
		if err != nil {
			m.commit(StatusAnonymous, nil, nil)
			return err
		}
		user, err := m.gw.CurrentUser(ctx, renewed.Access, "")
		if err != nil {
			m.commit(StatusAnonymous, nil, nil)
			return err
		}
		m.commit(StatusAuthenticated, &renewed, &user)
		return nil

	default:
		m.commit(StatusAnonymous, nil, nil)
		return nil
	}
}

// Login issues tokens for the credentials and resolves the user behind
// them: exactly two remote calls on success. A rejection surfaces the
// server message and leaves state unchanged. Login does not require a
// prior anonymous state; it overwrites whatever is held.
func (m *Manager) Login(ctx context.Context, creds Credentials) error {
	if err := m.operational(); err != nil {
		return err
	}

	pair, err := m.gw.Issue(ctx, creds)
	if err != nil {
		m.met.ObserveLogin(loginResult(err))
		return err
	}

	fallback := ""
	if m.cfg.LoginEmailFallback {
		fallback = creds.Email
	}
	user, err := m.gw.CurrentUser(ctx, pair.Access, fallback)
	if err != nil {
		m.met.ObserveLogin("error")
		return err
	}

	m.commit(StatusAuthenticated, &pair, &user)
	m.met.ObserveLogin("ok")
	return nil
}

// Logout clears the session. It fails with ErrNoSession, without side
// effects, when no user is authenticated; it never performs a remote
// call (the platform has no revocation endpoint for this client).
func (m *Manager) Logout() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.status != StatusAuthenticated {
		m.mu.Unlock()
		return ErrNoSession
	}
	notify, val := m.commitLocked(StatusAnonymous, nil, nil)
	m.mu.Unlock()

	m.emit(notify, val)
	return nil
}

// Refresh renews the held pair on demand. With no pair it fails with
// ErrNoTokens; with an expired refresh token the session lapses to
// anonymous and ErrRefreshExpired is returned; a transport failure
// leaves the stale pair in place.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrClosed
	}
	if m.tokens == nil {
		m.mu.Unlock()
		return ErrNoTokens
	}
	pair := *m.tokens
	user := cloneUser(m.user)
	m.mu.Unlock()

	if !RefreshValid(&pair, m.now()) {
		m.met.ObserveRenewal("expired")
		m.commit(StatusAnonymous, nil, nil)
		return ErrRefreshExpired
	}

	renewed, err := m.gw.Renew(ctx, pair.Refresh)
	if err != nil {
		m.met.ObserveRenewal("error")
		return err
	}

	m.met.ObserveRenewal("ok")
	m.commit(StatusAuthenticated, &renewed, user)
	return nil
}

// Close cancels the renewal timer and any in-flight scheduled renewal.
// Subsequent operations return ErrClosed.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.gen++
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.mu.Unlock()

	m.cancel()
	return nil
}

func (m *Manager) operational() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	return nil
}

// commit applies a state transition and fires the observer outside the
// lock.
func (m *Manager) commit(status Status, tokens *TokenPair, user *User) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	notify, val := m.commitLocked(status, tokens, user)
	m.mu.Unlock()

	m.emit(notify, val)
}

// commitLocked mutates the state, bumps the generation, re-arms the
// renewal timer, and decides whether the observer must fire. The
// observer fires on every change of the token value and on the first
// determination even when the result is anonymous.
func (m *Manager) commitLocked(status Status, tokens *TokenPair, user *User) (notify bool, val *TokenPair) {
	m.status = status
	m.tokens = tokens
	m.user = user
	m.gen++
	m.armLocked()

	m.met.SetState(stateValue(status))
	m.met.ObserveTransition(status.String())

	if status == StatusUndetermined {
		return false, nil
	}
	if m.notified && equalPair(m.lastNotified, tokens) {
		return false, nil
	}
	m.notified = true
	m.lastNotified = clonePair(tokens)
	return true, clonePair(tokens)
}

func (m *Manager) emit(notify bool, val *TokenPair) {
	if !notify || m.onChange == nil {
		return
	}
	m.onChange(val)
}

// armLocked cancels any pending renewal timer and, when authenticated,
// arranges the next one. Exactly one timer exists per manager at a
// time; a non-positive delay fires immediately rather than never.
func (m *Manager) armLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.closed || m.status != StatusAuthenticated || m.tokens == nil {
		return
	}

	d, err := RefreshTimeout(m.tokens, m.now(), m.cfg.RefreshTimeoutCeiling)
	if err != nil {
		return
	}
	if d < 0 {
		d = 0
	}

	gen := m.gen
	m.timer = time.AfterFunc(d, func() { m.renewScheduled(gen) })
}

// renewScheduled is the timer callback. gen is the generation the timer
// was armed under; any committed transition since then supersedes it.
func (m *Manager) renewScheduled(gen uint64) {
	m.mu.Lock()
	if m.closed || gen != m.gen || m.status != StatusAuthenticated || m.tokens == nil {
		m.mu.Unlock()
		return
	}
	pair := *m.tokens
	user := cloneUser(m.user)
	m.mu.Unlock()

	if !RefreshValid(&pair, m.now()) {
		// The session has lapsed; renewal would be rejected anyway, so
		// fail fast without touching the network.
		m.met.ObserveRenewal("expired")
		m.mu.Lock()
		if m.closed || gen != m.gen {
			m.mu.Unlock()
			return
		}
		notify, val := m.commitLocked(StatusAnonymous, nil, nil)
		m.mu.Unlock()
		m.emit(notify, val)
		m.report(ErrRefreshExpired)
		return
	}

	renewed, err := m.gw.Renew(m.base, pair.Refresh)
	if err != nil {
		// The stale pair stays in place until the caller intervenes;
		// the timer is not re-armed.
		m.met.ObserveRenewal("error")
		m.log.Warn("scheduled token renewal failed", "err", err)
		m.report(err)
		return
	}

	m.met.ObserveRenewal("ok")

	m.mu.Lock()
	if m.closed || gen != m.gen {
		// A login, logout, or newer renewal won the race; drop this result.
		m.mu.Unlock()
		return
	}
	notify, val := m.commitLocked(StatusAuthenticated, &renewed, user)
	m.mu.Unlock()

	m.emit(notify, val)
}

func (m *Manager) report(err error) {
	if m.onError != nil {
		m.onError(err)
	}
}

func loginResult(err error) string {
	if api.IsRemote(err) {
		return "rejected"
	}
	return "error"
}

func stateValue(s Status) float64 {
	switch s {
	case StatusAnonymous:
		return metrics.StateAnonymous
	case StatusAuthenticated:
		return metrics.StateAuthenticated
	default:
		return metrics.StateUndetermined
	}
}

func clonePair(p *TokenPair) *TokenPair {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}

func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}

package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/sakif/scholarship-globe/internal/apiclient"
	"github.com/sakif/scholarship-globe/internal/geo"
	"github.com/sakif/scholarship-globe/internal/globe"
	"github.com/sakif/scholarship-globe/internal/listview"
	"github.com/sakif/scholarship-globe/internal/selection"
	"github.com/sakif/scholarship-globe/internal/session"
)

// Options configures every workspace the registry creates.
type Options struct {
	APIBase        string
	RequestTimeout time.Duration
	Width, Height  float64
	Engine         globe.Config
	// Transport overrides the HTTP transport of each workspace's client.
	Transport http.RoundTripper

	// IdleTimeout is how long a workspace may go without a request before
	// the sweep drops it. Zero keeps workspaces forever.
	IdleTimeout time.Duration
	// MaxWorkspaces caps the registry; creating one more evicts the least
	// recently seen. Zero means no cap.
	MaxWorkspaces int
	// Clock overrides time.Now for idle tracking.
	Clock func() time.Time
}

// Workspace is everything one signed-in user sees: their globe, tooltip,
// search results and saved list, all talking to the scholarship API with
// their session.
type Workspace struct {
	Client    *apiclient.Client
	Scene     *globe.Scene
	Engine    *globe.Engine
	Tooltip   *selection.Tooltip
	Countries *listview.CountryList

	logger *slog.Logger

	mu      sync.Mutex
	session session.Session
	saved   *listview.SavedList

	// lastSeen is guarded by the registry's mutex.
	lastSeen time.Time
}

// Session returns the workspace's session. The token never changes; the
// name follows the latest request that carried one.
func (w *Workspace) Session() session.Session {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.session
}

func (w *Workspace) rename(name string) {
	if name == "" {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.session.Name = name
}

// OpenSaved starts a new saved-list view, replacing the previous one.
func (w *Workspace) OpenSaved() *listview.SavedList {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.saved = listview.NewSavedList(w.Client, w.logger)
	return w.saved
}

// Saved returns the current saved-list view, opening one if needed.
func (w *Workspace) Saved() *listview.SavedList {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.saved == nil {
		w.saved = listview.NewSavedList(w.Client, w.logger)
	}
	return w.saved
}

// Workspaces creates workspaces lazily, one per session token, and keeps
// every workspace's engine registered with the rotation scheduler.
//
// EVICTION:
// The dashboard cannot validate tokens, so any bearer value creates a
// workspace. Two bounds keep that from growing without limit: Sweep drops
// workspaces idle for longer than Options.IdleTimeout (an open page polls
// /globe.svg continuously, so only closed tabs go idle), and
// Options.MaxWorkspaces evicts the least recently seen workspace when full.
// Removal also unregisters the engine, so evicted globes stop rotating.
type Workspaces struct {
	opts      Options
	countries []geo.CountryFeature
	scheduler *globe.Scheduler
	logger    *slog.Logger

	mu    sync.Mutex
	items map[string]*Workspace
}

// NewWorkspaces creates an empty registry. countries is the loaded world
// geometry, possibly empty when loading failed.
func NewWorkspaces(opts Options, countries []geo.CountryFeature, scheduler *globe.Scheduler, logger *slog.Logger) *Workspaces {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Workspaces{
		opts:      opts,
		countries: countries,
		scheduler: scheduler,
		logger:    logger,
		items:     make(map[string]*Workspace),
	}
}

// Get returns the workspace for sess.Token, creating it on first use, and
// marks it as seen. A non-empty sess.Name replaces the stored name.
func (ws *Workspaces) Get(sess session.Session) *Workspace {
	ws.mu.Lock()
	defer ws.mu.Unlock()

	now := ws.opts.Clock()
	if w, ok := ws.items[sess.Token]; ok {
		w.lastSeen = now
		w.rename(sess.Name)
		return w
	}

	if ws.opts.MaxWorkspaces > 0 && len(ws.items) >= ws.opts.MaxWorkspaces {
		ws.evictOldestLocked()
	}

	w := ws.newWorkspace(sess)
	w.lastSeen = now
	ws.items[sess.Token] = w
	ws.scheduler.Add(sess.Token, w.Engine)

	ws.logger.Info("workspace created",
		slog.String("user", sess.DisplayName()),
		slog.Int("countries", len(ws.countries)),
		slog.Int("workspaces", len(ws.items)),
	)
	return w
}

// Remove drops the workspace for token and stops its rotation.
func (ws *Workspaces) Remove(token string) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.removeLocked(token)
}

func (ws *Workspaces) removeLocked(token string) {
	delete(ws.items, token)
	ws.scheduler.Remove(token)
}

func (ws *Workspaces) evictOldestLocked() {
	var oldest string
	var oldestSeen time.Time
	first := true
	for token, w := range ws.items {
		if first || w.lastSeen.Before(oldestSeen) {
			oldest, oldestSeen, first = token, w.lastSeen, false
		}
	}
	if first {
		return
	}

	ws.removeLocked(oldest)
	ws.logger.Warn("workspace limit reached, evicted least recently seen",
		slog.Int("limit", ws.opts.MaxWorkspaces),
		slog.Time("last_seen", oldestSeen),
	)
}

// Sweep removes every workspace idle for longer than the idle timeout and
// returns how many it removed.
func (ws *Workspaces) Sweep() int {
	if ws.opts.IdleTimeout <= 0 {
		return 0
	}

	ws.mu.Lock()
	defer ws.mu.Unlock()

	cutoff := ws.opts.Clock().Add(-ws.opts.IdleTimeout)
	removed := 0
	for token, w := range ws.items {
		if w.lastSeen.Before(cutoff) {
			ws.removeLocked(token)
			removed++
		}
	}

	if removed > 0 {
		ws.logger.Info("idle workspaces removed",
			slog.Int("removed", removed),
			slog.Int("remaining", len(ws.items)),
		)
	}
	return removed
}

// Run sweeps four times per idle timeout until ctx is cancelled. It returns
// nil on cancellation so it can run in the server's errgroup.
func (ws *Workspaces) Run(ctx context.Context) error {
	if ws.opts.IdleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}

	ticker := time.NewTicker(max(ws.opts.IdleTimeout/4, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			ws.Sweep()
		}
	}
}

// Len returns the number of live workspaces.
func (ws *Workspaces) Len() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return len(ws.items)
}

func (ws *Workspaces) newWorkspace(sess session.Session) *Workspace {
	var clientOpts []apiclient.Option
	if ws.opts.Transport != nil {
		clientOpts = append(clientOpts, apiclient.WithTransport(ws.opts.Transport))
	}
	if ws.opts.RequestTimeout > 0 {
		clientOpts = append(clientOpts, apiclient.WithTimeout(ws.opts.RequestTimeout))
	}

	client := apiclient.New(ws.opts.APIBase, sess, ws.logger, clientOpts...)
	scene := globe.NewScene(ws.opts.Width, ws.opts.Height, ws.countries)

	return &Workspace{
		session:   sess,
		Client:    client,
		Scene:     scene,
		Engine:    globe.NewEngine(ws.opts.Engine, scene),
		Tooltip:   &selection.Tooltip{},
		Countries: listview.NewCountryList(client, ws.logger),
		logger:    ws.logger,
	}
}

// Package controller owns the raw device, tag, lease and stats collections
// and is the only component that talks to the backend. It runs the bulk and
// targeted refreshes, the background refresh schedule, and every mutation.
package controller

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"dhcpconsole/internal/reconcile"
	"dhcpconsole/internal/tags"
	"dhcpconsole/pkg/models"
	"dhcpconsole/pkg/utils"
)

// DefaultRefreshInterval is the background refresh period
const DefaultRefreshInterval = 30 * time.Second

var (
	ErrAlreadyStarted = errors.New("controller already started")
	ErrStopped        = errors.New("controller stopped")
)

// Resource names one of the collections the controller owns
type Resource string

const (
	Stats   Resource = "stats"
	Devices Resource = "devices"
	Tags    Resource = "tags"
	Leases  Resource = "leases"
)

// AllResources lists every resource in bulk-refresh order
var AllResources = []Resource{Stats, Devices, Tags, Leases}

// Backend is the request contract the controller drives
type Backend interface {
	tags.Backend
	Stats(ctx context.Context) (models.Stats, error)
	Devices(ctx context.Context) ([]models.Device, error)
	Tags(ctx context.Context) ([]models.Tag, error)
	Leases(ctx context.Context) ([]models.Lease, error)
	ApplyTag(ctx context.Context, mac, tag, name string) error
}

// Notifier receives operator notifications and resource update signals
type Notifier interface {
	Notify(n models.Notification)
	Updated(r Resource)
}

type nopNotifier struct{}

func (nopNotifier) Notify(models.Notification) {}
func (nopNotifier) Updated(Resource)           {}

// Phase is the fetch state of a resource
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseFetching Phase = "fetching"
)

// ResourceState reports the fetch state of one resource
type ResourceState struct {
	Phase       Phase     `json:"state"`
	InFlight    int       `json:"inFlight"`
	LastError   string    `json:"lastError,omitempty"`
	LastSuccess time.Time `json:"lastSuccess"`
}

type resourceState struct {
	issued      uint64
	applied     uint64
	inFlight    int
	lastErr     error
	lastSuccess time.Time
}

// Options configures a controller
type Options struct {
	RefreshInterval time.Duration
	Reconciler      *reconcile.Reconciler
	Notifier        Notifier
}

// Controller owns the raw collections and their refresh cycle
type Controller struct {
	backend    Backend
	tagStore   *tags.Store
	reconciler *reconcile.Reconciler
	notifier   Notifier
	interval   time.Duration

	mu          sync.Mutex
	data        reconcile.Snapshot
	states      map[Resource]*resourceState
	lastUpdated time.Time
	active      bool

	lifecycleMu sync.Mutex
	cron        *cron.Cron
	started     bool
	stopped     bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// New creates a controller. The consuming surface starts out active.
func New(backend Backend, opts Options) *Controller {
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	if opts.Reconciler == nil {
		opts.Reconciler = reconcile.New(nil, nil)
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}

	ctx, cancel := context.WithCancel(context.Background())

	c := &Controller{
		backend:    backend,
		tagStore:   tags.NewStore(backend),
		reconciler: opts.Reconciler,
		notifier:   opts.Notifier,
		interval:   opts.RefreshInterval,
		data: reconcile.Snapshot{
			Devices: []models.Device{},
			Tags:    []models.Tag{},
			Leases:  []models.Lease{},
		},
		states: make(map[Resource]*resourceState),
		active: true,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, r := range AllResources {
		c.states[r] = &resourceState{}
	}
	return c
}

// Start schedules the background refresh. It may be called once.
func (c *Controller) Start() error {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.stopped {
		return ErrStopped
	}
	if c.started {
		return ErrAlreadyStarted
	}

	c.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)))
	c.cron.Schedule(cron.Every(c.interval), cron.FuncJob(c.backgroundRefresh))
	c.cron.Start()
	c.started = true

	log.Printf("Background refresh every %s", c.interval)
	return nil
}

// Stop cancels the background refresh and waits for a running refresh to
// finish. No refresh fires after Stop returns.
func (c *Controller) Stop() {
	c.lifecycleMu.Lock()
	defer c.lifecycleMu.Unlock()

	if c.stopped {
		return
	}
	c.stopped = true
	c.cancel()

	if c.cron != nil {
		<-c.cron.Stop().Done()
	}
	log.Println("Background refresh stopped")
}

func (c *Controller) backgroundRefresh() {
	if c.ctx.Err() != nil || !c.Active() {
		return
	}

	if err := c.loadConcurrently(c.ctx, Stats, Leases); err != nil {
		log.Printf("Background refresh failed: %v", err)
	}
}

// Active reports whether the consuming surface is visible
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// SetActive records a visibility change. Becoming active triggers one bulk
// refresh; the background schedule is left as it is.
func (c *Controller) SetActive(ctx context.Context, active bool) error {
	c.mu.Lock()
	was := c.active
	c.active = active
	c.mu.Unlock()

	if active && !was {
		log.Println("Console became active, refreshing all data")
		return c.LoadAll(ctx)
	}
	return nil
}

// Snapshot returns a copy of the raw collections
func (c *Controller) Snapshot() reconcile.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return reconcile.Snapshot{
		Stats:   c.data.Stats,
		Devices: append([]models.Device{}, c.data.Devices...),
		Tags:    append([]models.Tag{}, c.data.Tags...),
		Leases:  append([]models.Lease{}, c.data.Leases...),
	}
}

// View reconciles the current snapshot
func (c *Controller) View() reconcile.View {
	return c.reconciler.Reconcile(c.Snapshot())
}

// LastUpdated returns when the last complete bulk refresh finished
func (c *Controller) LastUpdated() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastUpdated
}

// States returns the fetch state of every resource
func (c *Controller) States() map[Resource]ResourceState {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[Resource]ResourceState, len(c.states))
	for r, st := range c.states {
		state := ResourceState{
			Phase:       PhaseIdle,
			InFlight:    st.inFlight,
			LastSuccess: st.lastSuccess,
		}
		if st.inFlight > 0 {
			state.Phase = PhaseFetching
		}
		if st.lastErr != nil {
			state.LastError = st.lastErr.Error()
		}
		out[r] = state
	}
	return out
}

// knownTags returns the custom tags once they have been fetched, nil before
func (c *Controller) knownTags() []models.Tag {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.states[Tags].applied == 0 {
		return nil
	}
	return append([]models.Tag{}, c.data.Tags...)
}

func (c *Controller) deviceName(mac string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.data.Devices {
		if utils.SameMAC(d.MAC, mac) {
			return d.Name
		}
	}
	return ""
}

func (c *Controller) notify(level models.Level, message string) {
	log.Printf("[%s] %s", level, message)
	c.notifier.Notify(models.NewNotification(level, message))
}

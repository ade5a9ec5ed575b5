package highlight

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Request asks for one content item to be scrolled into view and pulsed.
// Requests are transient: consumed once, never stored.
type Request struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ItemIndex reports which item ids a module currently has on screen.
// Modules keep their index current as items mount and unmount.
type ItemIndex interface {
	Contains(id string) bool
}

const (
	// pulseDuration is how long the visual emphasis stays on a found item.
	pulseDuration = 2 * time.Second
	// SettleDelay gives a freshly loaded page time to mount its items
	// before a deep-link highlight fires.
	SettleDelay = 500 * time.Millisecond
)

// Dispatcher routes highlight requests to the module owning the requested
// type. Each dispatch runs the short lifecycle: a request either finds its
// item (pulse + scroll target recorded, pulse expires after a fixed delay)
// or misses (logged no-op; the item may live on an unmounted tab, which is a
// normal race, not an error). Either way the dispatcher returns to idle.
type Dispatcher struct {
	mu      sync.Mutex
	indexes map[string]ItemIndex
	pulses  map[string]time.Time // "type/id" -> pulse expiry
	log     *zap.Logger
	now     func() time.Time
	after   func(time.Duration, func())
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		indexes: make(map[string]ItemIndex),
		pulses:  make(map[string]time.Time),
		log:     log,
		now:     time.Now,
		after:   func(d time.Duration, fn func()) { time.AfterFunc(d, fn) },
	}
}

// Register attaches a module's item index and returns its teardown closure.
// Unregistering on teardown is mandatory so stale modules never receive
// dispatches.
func (d *Dispatcher) Register(moduleType string, index ItemIndex) (unregister func()) {
	d.mu.Lock()
	d.indexes[moduleType] = index
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		if d.indexes[moduleType] == index {
			delete(d.indexes, moduleType)
		}
		d.mu.Unlock()
	}
}

// Listener returns a handler scoped to one module type. Requests for other
// types are ignored without any state change.
func (d *Dispatcher) Listener(moduleType string) func(Request) bool {
	return func(req Request) bool {
		if req.Type != moduleType {
			return false
		}
		return d.Dispatch(req)
	}
}

// Dispatch resolves a request against the owning module's index. It reports
// whether the item was found and pulsed.
func (d *Dispatcher) Dispatch(req Request) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	index, ok := d.indexes[req.Type]
	if !ok || !index.Contains(req.ID) {
		d.log.Debug("highlight target not found",
			zap.String("type", req.Type),
			zap.String("id", req.ID))
		return false
	}

	key := req.Type + "/" + req.ID
	d.pulses[key] = d.now().Add(pulseDuration)
	return true
}

// DispatchAfter schedules a dispatch once the settle delay elapses. Used by
// the deep-link path so the page's items have a chance to mount first.
func (d *Dispatcher) DispatchAfter(req Request, delay time.Duration) {
	d.after(delay, func() { d.Dispatch(req) })
}

// Active reports whether the item's pulse is still live. Expired entries
// are pruned as they are observed.
func (d *Dispatcher) Active(moduleType, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := moduleType + "/" + id
	expiry, ok := d.pulses[key]
	if !ok {
		return false
	}
	if !d.now().Before(expiry) {
		delete(d.pulses, key)
		return false
	}
	return true
}

// MemoryIndex is a mutex-guarded ItemIndex for modules that track their
// mounted items in process.
type MemoryIndex struct {
	mu  sync.RWMutex
	ids map[string]bool
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{ids: make(map[string]bool)}
}

func (m *MemoryIndex) Add(id string) {
	m.mu.Lock()
	m.ids[id] = true
	m.mu.Unlock()
}

func (m *MemoryIndex) Remove(id string) {
	m.mu.Lock()
	delete(m.ids, id)
	m.mu.Unlock()
}

func (m *MemoryIndex) Contains(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.ids[id]
}

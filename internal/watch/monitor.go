package watch

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/akelsh/seek/internal/apperr"
	"github.com/akelsh/seek/internal/exclude"
	"github.com/akelsh/seek/internal/logx"
	"github.com/akelsh/seek/internal/model"
	"github.com/akelsh/seek/internal/scan"
	"github.com/akelsh/seek/internal/store"
)

// State is one of the change monitor's lifecycle states.
type State int

const (
	Stopped State = iota
	Starting
	Active
	Stopping
)

func (s State) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case Starting:
		return "starting"
	case Active:
		return "active"
	case Stopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Default batching knobs.
const (
	DefaultBatchThreshold = 50
	DefaultFlushDelay     = 2 * time.Second
)

// Monitor is the change monitor (C8): it owns the fsnotify-backed stream,
// the pending-updates barrier, and the commit-of-changes path into the
// store.
type Monitor struct {
	pool   *store.Pool
	policy *exclude.Policy
	log    *logx.Logger

	batchThreshold int
	flushDelay     time.Duration

	stateMu sync.RWMutex
	state   State

	generation    int64
	lastIssuedID  int64
	currentStream *stream
	stopCh        chan struct{}
	doneCh        chan struct{}

	pendingMu sync.RWMutex
	pending   map[string]struct{}
	timer     *time.Timer
}

// New builds a Monitor over pool, applying policy to decide which
// directories are watched.
func New(pool *store.Pool, policy *exclude.Policy) *Monitor {
	return &Monitor{
		pool:           pool,
		policy:         policy,
		log:            logx.New("watch"),
		batchThreshold: DefaultBatchThreshold,
		flushDelay:     DefaultFlushDelay,
		pending:        make(map[string]struct{}),
	}
}

// State reports the monitor's current lifecycle state.
func (m *Monitor) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()
	return m.state
}

// IsEventIDValid reports whether id is still usable as a resume cursor.
// The adapter can never truly resume a kernel stream (fsnotify has no
// FSEvents-style since-id API), so validity is generation-scoped: an id
// is only valid if it was issued by the generation this Monitor most
// recently started (whether still running or already stopped) and is not
// ahead of the last id that generation issued.
func (m *Monitor) IsEventIDValid(id int64) bool {
	m.stateMu.RLock()
	gen, lastIssued := m.generation, m.lastIssuedID
	m.stateMu.RUnlock()
	return isEventIDValid(id, gen, lastIssued)
}

// StartMonitoringWithRecovery transitions Stopped -> Starting -> Active.
// Idempotent when already Active. Loads the stored last_event_id purely
// to log whether this is a resume attempt; since fsnotify cannot resume
// a kernel cursor, the stream always begins "since now" in a fresh
// generation (see DESIGN.md's generation resolution).
func (m *Monitor) StartMonitoringWithRecovery(roots []string) error {
	m.stateMu.Lock()
	if m.state == Active {
		m.stateMu.Unlock()
		return nil
	}
	m.state = Starting
	m.generation++
	gen := m.generation
	m.stateMu.Unlock()

	meta, err := m.pool.Metadata()
	if err == nil && meta.LastEventID != nil {
		m.log.Printf("start monitoring: stored last_event_id=%d predates generation %d, starting fresh", *meta.LastEventID, gen)
	}

	st, err := newStream(m.policy, gen)
	if err != nil {
		m.stateMu.Lock()
		m.state = Stopped
		m.stateMu.Unlock()
		return err
	}
	if err := st.addRoots(roots); err != nil {
		st.close()
		m.stateMu.Lock()
		m.state = Stopped
		m.stateMu.Unlock()
		return err
	}

	m.stateMu.Lock()
	m.currentStream = st
	m.state = Active
	m.stateMu.Unlock()

	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})

	go st.run()
	go m.pump(st)

	return nil
}

// pump consumes the stream's typed events, applying the batching policy.
func (m *Monitor) pump(st *stream) {
	defer close(m.doneCh)
	for {
		select {
		case <-m.stopCh:
			return
		case ev, ok := <-st.events:
			if !ok {
				return
			}
			m.handleEvent(ev)
		}
	}
}

func (m *Monitor) handleEvent(ev Event) {
	switch {
	case ev.Flags&FlagKernelDropped != 0 || ev.Flags&FlagUserDropped != 0:
		m.log.Printf("events dropped for %s, caller should consider a full reindex", ev.Path)
		return
	case ev.Flags&FlagRootChanged != 0:
		m.log.Printf("root changed: %s", ev.Path)
		return
	case ev.Flags&FlagMustScanSubDirs != 0:
		m.log.Printf("coalesced events under %s, rescan needed", ev.Path)
		return
	case ev.Flags&FlagHistoryDone != 0:
		return
	}

	if ev.Flags&(FlagItemCreated|FlagItemRemoved|FlagItemRenamed) == 0 {
		return
	}

	m.acceptPath(ev.Path)

	m.stateMu.Lock()
	if ev.EventID > m.lastIssuedID {
		m.lastIssuedID = ev.EventID
	}
	m.stateMu.Unlock()

	if err := m.pool.SetLastEventID(ev.EventID); err != nil {
		m.log.Printf("checkpoint event id %d failed: %v", ev.EventID, err)
	}
}

// acceptPath adds path to pending_updates under the batching rules:
// flush immediately once the threshold is hit, otherwise debounce with
// a timer.
func (m *Monitor) acceptPath(path string) {
	m.pendingMu.Lock()
	m.pending[path] = struct{}{}
	size := len(m.pending)
	if size >= m.batchThreshold {
		if m.timer != nil {
			m.timer.Stop()
			m.timer = nil
		}
		m.pendingMu.Unlock()
		m.flush()
		return
	}
	if m.timer != nil {
		m.timer.Stop()
	}
	m.timer = time.AfterFunc(m.flushDelay, m.flush)
	m.pendingMu.Unlock()
}

// flush drains pending_updates atomically and commits them to the store.
func (m *Monitor) flush() {
	m.pendingMu.Lock()
	if len(m.pending) == 0 {
		m.timer = nil
		m.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(m.pending))
	for p := range m.pending {
		paths = append(paths, p)
	}
	m.pending = make(map[string]struct{})
	m.timer = nil
	m.pendingMu.Unlock()

	if err := m.commit(paths); err != nil {
		m.log.Printf("commit of changes failed: %v", err)
	}
}

// commit classifies each drained path as an upsert or a delete and
// applies both as single batched writes.
func (m *Monitor) commit(paths []string) error {
	factory := scan.NewFactory(m.policy, float64(time.Now().Unix()))

	var upserts []model.Entry
	var deletes []string

	for _, path := range paths {
		info, err := os.Lstat(path)
		if err != nil {
			deletes = append(deletes, path)
			continue
		}
		upserts = append(upserts, factory.EntryFor(path, info))
	}

	if len(upserts) > 0 {
		inserted, err := m.pool.WriteBatch(upserts)
		if err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrIndexBatchInsert, err)
		}
		if inserted < len(upserts) {
			m.log.Printf("commit of changes: dropped %d of %d upserts", len(upserts)-inserted, len(upserts))
		}
	}
	if len(deletes) > 0 {
		if err := m.pool.DeleteBatch(deletes); err != nil {
			return fmt.Errorf("%w: %v", apperr.ErrStoreQueryFailed, err)
		}
	}
	return nil
}

// StopMonitoring invalidates the stream, cancels the flush timer, clears
// pending_updates, and returns to Stopped.
func (m *Monitor) StopMonitoring() error {
	m.stateMu.Lock()
	if m.state == Stopped {
		m.stateMu.Unlock()
		return nil
	}
	m.state = Stopping
	st := m.currentStream
	m.currentStream = nil
	m.stateMu.Unlock()

	if m.stopCh != nil {
		close(m.stopCh)
	}
	if st != nil {
		st.close()
	}
	if m.doneCh != nil {
		<-m.doneCh
	}

	m.pendingMu.Lock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.pending = make(map[string]struct{})
	m.pendingMu.Unlock()

	m.stateMu.Lock()
	m.state = Stopped
	m.stateMu.Unlock()
	return nil
}

// Package store keeps the client's in-memory mirror of the backend's
// collections. All writes go through the facade; nothing mutates a
// collection directly.
package store

import (
	"sync"

	"asset-console/pkg/model"
)

// Store aggregates the entity collections plus the single nullable
// active-scan slot. Each collection guards itself; the scan slot carries an
// epoch so observations captured before a cancel cannot resurrect the task.
type Store struct {
	Assets      *Collection[model.Asset]
	Groups      *Collection[model.AssetGroup]
	Labels      *Collection[model.Label]
	ScanTasks   *Collection[model.ScanTask]
	Operations  *Collection[model.Operation]
	Jobs        *Collection[model.Job]
	Credentials *Collection[model.Credential]

	scanMu      sync.Mutex
	active      *model.ScanTask
	epoch       uint64
	cancelledID int64
}

func New() *Store {
	return &Store{
		Assets:      NewCollection[model.Asset](),
		Groups:      NewCollection[model.AssetGroup](),
		Labels:      NewCollection[model.Label](),
		ScanTasks:   NewCollection[model.ScanTask](),
		Operations:  NewCollection[model.Operation](),
		Jobs:        NewCollection[model.Job](),
		Credentials: NewCollection[model.Credential](),
	}
}

// ActiveScanTask returns a copy of the active task, if any.
func (s *Store) ActiveScanTask() (model.ScanTask, bool) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	if s.active == nil {
		return model.ScanTask{}, false
	}
	return *s.active, true
}

// ScanEpoch is captured before an asynchronous observation starts; pass it
// back to SetActiveScanTaskIf to detect that a cancel slipped in between.
func (s *Store) ScanEpoch() uint64 {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return s.epoch
}

// SetActiveScanTask unconditionally replaces the slot and advances the
// epoch, invalidating any observation still in flight.
func (s *Store) SetActiveScanTask(t *model.ScanTask) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.epoch++
	s.setLocked(t)
}

// SetActiveScanTaskIf applies an observation only when the epoch has not
// moved since it was captured. Returns false for dropped stale writes.
func (s *Store) SetActiveScanTaskIf(epoch uint64, t *model.ScanTask) bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	if s.epoch != epoch {
		return false
	}
	s.setLocked(t)
	return true
}

// MarkScanCancelled empties the slot, advances the epoch and remembers the
// cancelled id. The epoch kills observations that captured it before the
// cancel; the remembered id kills observations produced before the cancel
// but delivered after it (buffered stream frames).
func (s *Store) MarkScanCancelled(id int64) {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	s.epoch++
	s.active = nil
	s.cancelledID = id
}

// ScanCancelled reports whether id is the most recently cancelled scan.
func (s *Store) ScanCancelled(id int64) bool {
	s.scanMu.Lock()
	defer s.scanMu.Unlock()
	return id != 0 && id == s.cancelledID
}

func (s *Store) setLocked(t *model.ScanTask) {
	if t == nil {
		s.active = nil
		return
	}
	cp := *t
	s.active = &cp
}

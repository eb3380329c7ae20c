package metrics

import (
	"sync"
	"sync/atomic"
)

// InMemoryRecorder stores counters in memory. It backs the stats endpoint
// and is also handy in tests.
type InMemoryRecorder struct {
	trackLogged    atomic.Int64
	locationLogged atomic.Int64
	approvals      atomic.Int64

	mu             sync.Mutex
	geoLookups     map[string]int64
	registrations  map[string]int64
	logins         map[string]int64
	authRejections map[string]int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		geoLookups:     make(map[string]int64),
		registrations:  make(map[string]int64),
		logins:         make(map[string]int64),
		authRejections: make(map[string]int64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		TrackLogged:    m.trackLogged.Load(),
		LocationLogged: m.locationLogged.Load(),
		GeoLookups:     copyCounts(m.geoLookups),
		Registrations:  copyCounts(m.registrations),
		Logins:         copyCounts(m.logins),
		Approvals:      m.approvals.Load(),
		AuthRejections: copyCounts(m.authRejections),
	}
}

// IncTrackLogged increments the tracking log counter.
func (m *InMemoryRecorder) IncTrackLogged() {
	m.trackLogged.Add(1)
}

// IncLocationLogged increments the location report counter.
func (m *InMemoryRecorder) IncLocationLogged() {
	m.locationLogged.Add(1)
}

// IncGeoLookup increments the geolocation lookup counter for a status.
func (m *InMemoryRecorder) IncGeoLookup(status string) {
	m.incKeyed(m.geoLookups, status)
}

// IncRegistration increments the registration counter for a status.
func (m *InMemoryRecorder) IncRegistration(status string) {
	m.incKeyed(m.registrations, status)
}

// IncLogin increments the login counter for a status.
func (m *InMemoryRecorder) IncLogin(status string) {
	m.incKeyed(m.logins, status)
}

// IncApproval increments the approval counter.
func (m *InMemoryRecorder) IncApproval() {
	m.approvals.Add(1)
}

// IncAuthRejection increments the gate rejection counter for a kind.
func (m *InMemoryRecorder) IncAuthRejection(kind string) {
	m.incKeyed(m.authRejections, kind)
}

func (m *InMemoryRecorder) incKeyed(counts map[string]int64, key string) {
	m.mu.Lock()
	counts[key]++
	m.mu.Unlock()
}

func copyCounts(counts map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(counts))
	for k, v := range counts {
		out[k] = v
	}
	return out
}

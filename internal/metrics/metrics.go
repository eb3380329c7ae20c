// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Tracking metrics
	IncTrackLogged()
	IncLocationLogged()
	IncGeoLookup(status string) // status: "resolved", "unknown"

	// Account workflow metrics
	IncRegistration(status string) // status: "accepted", "rejected"
	IncLogin(status string)        // status: "success", "denied"
	IncApproval()

	// Gate metrics
	IncAuthRejection(kind string) // kind: "service_key", "token"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Snapshot is a point-in-time view of counters for the stats endpoint.
type Snapshot struct {
	TrackLogged       int64            `json:"track_logged"`
	LocationLogged    int64            `json:"location_logged"`
	GeoLookups        map[string]int64 `json:"geo_lookups"`
	Registrations     map[string]int64 `json:"registrations"`
	Logins            map[string]int64 `json:"logins"`
	Approvals         int64            `json:"approvals"`
	AuthRejections    map[string]int64 `json:"auth_rejections"`
}

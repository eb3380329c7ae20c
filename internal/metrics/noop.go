package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncTrackLogged is a no-op.
func (n *NoopRecorder) IncTrackLogged() {}

// IncLocationLogged is a no-op.
func (n *NoopRecorder) IncLocationLogged() {}

// IncGeoLookup is a no-op.
func (n *NoopRecorder) IncGeoLookup(status string) {}

// IncRegistration is a no-op.
func (n *NoopRecorder) IncRegistration(status string) {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(status string) {}

// IncApproval is a no-op.
func (n *NoopRecorder) IncApproval() {}

// IncAuthRejection is a no-op.
func (n *NoopRecorder) IncAuthRejection(kind string) {}

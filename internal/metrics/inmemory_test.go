package metrics

import (
	"sync"
	"testing"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()

	rec.IncTrackLogged()
	rec.IncTrackLogged()
	rec.IncLocationLogged()
	rec.IncGeoLookup("resolved")
	rec.IncGeoLookup("unknown")
	rec.IncGeoLookup("unknown")
	rec.IncRegistration("accepted")
	rec.IncRegistration("rejected")
	rec.IncLogin("success")
	rec.IncLogin("denied")
	rec.IncApproval()
	rec.IncAuthRejection("service_key")
	rec.IncAuthRejection("token")

	snap := rec.Snapshot()

	if snap.TrackLogged != 2 {
		t.Errorf("TrackLogged = %d, want 2", snap.TrackLogged)
	}
	if snap.LocationLogged != 1 {
		t.Errorf("LocationLogged = %d, want 1", snap.LocationLogged)
	}
	if snap.GeoLookups["resolved"] != 1 || snap.GeoLookups["unknown"] != 2 {
		t.Errorf("unexpected GeoLookups: %v", snap.GeoLookups)
	}
	if snap.Registrations["accepted"] != 1 || snap.Registrations["rejected"] != 1 {
		t.Errorf("unexpected Registrations: %v", snap.Registrations)
	}
	if snap.Logins["success"] != 1 || snap.Logins["denied"] != 1 {
		t.Errorf("unexpected Logins: %v", snap.Logins)
	}
	if snap.Approvals != 1 {
		t.Errorf("Approvals = %d, want 1", snap.Approvals)
	}
	if snap.AuthRejections["service_key"] != 1 || snap.AuthRejections["token"] != 1 {
		t.Errorf("unexpected AuthRejections: %v", snap.AuthRejections)
	}
}

func TestInMemoryRecorder_SnapshotIsCopy(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()
	rec.IncGeoLookup("resolved")

	snap := rec.Snapshot()
	snap.GeoLookups["resolved"] = 99

	if rec.Snapshot().GeoLookups["resolved"] != 1 {
		t.Error("mutating a snapshot must not affect the recorder")
	}
}

func TestInMemoryRecorder_ConcurrentUse(t *testing.T) {
	t.Parallel()

	rec := NewInMemory()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				rec.IncTrackLogged()
				rec.IncGeoLookup("resolved")
				rec.IncAuthRejection("token")
			}
		}()
	}
	wg.Wait()

	snap := rec.Snapshot()
	if snap.TrackLogged != 1000 {
		t.Errorf("TrackLogged = %d, want 1000", snap.TrackLogged)
	}
	if snap.GeoLookups["resolved"] != 1000 {
		t.Errorf("GeoLookups[resolved] = %d, want 1000", snap.GeoLookups["resolved"])
	}
	if snap.AuthRejections["token"] != 1000 {
		t.Errorf("AuthRejections[token] = %d, want 1000", snap.AuthRejections["token"])
	}
}

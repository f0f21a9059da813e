package fsynclock

import "testing"

func TestDetectorLockUnlock(t *testing.T) {
	d := New()
	if d.LockedForWriting() {
		t.Fatalf("expected a fresh detector to start unlocked")
	}
	d.Lock()
	if !d.LockedForWriting() {
		t.Fatalf("expected LockedForWriting to report true after Lock")
	}
	d.Unlock()
	if d.LockedForWriting() {
		t.Fatalf("expected LockedForWriting to report false after Unlock")
	}
}

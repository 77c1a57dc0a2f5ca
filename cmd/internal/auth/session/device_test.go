package session

import (
	"regexp"
	"testing"
)

var hex32Re = regexp.MustCompile(`^[0-9a-f]{32}$`)

func TestDeviceFingerprint(t *testing.T) {
	t.Parallel()

	a := DeviceContext{UserAgent: "Mozilla/5.0", IP: "203.0.113.7"}
	b := DeviceContext{UserAgent: "Mozilla/5.0", IP: "203.0.113.8"}

	fa := a.Fingerprint()
	if !hex32Re.MatchString(fa) {
		t.Fatalf("fingerprint %q is not 32 lowercase hex chars", fa)
	}
	if fa != a.Fingerprint() {
		t.Fatalf("fingerprint should be deterministic")
	}
	if fa == b.Fingerprint() {
		t.Fatalf("different IPs should not share a fingerprint")
	}

	// The separator keeps (ua, ip) pairs unambiguous.
	c := DeviceContext{UserAgent: "Mozilla/5.0203", IP: ".0.113.7"}
	if fa == c.Fingerprint() {
		t.Fatalf("shifted ua/ip split should not collide")
	}
}

func TestDeviceFingerprint_EmptyFields(t *testing.T) {
	t.Parallel()

	f := DeviceContext{}.Fingerprint()
	if !hex32Re.MatchString(f) {
		t.Fatalf("empty device fingerprint %q is not 32 hex chars", f)
	}
}

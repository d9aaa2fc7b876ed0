package resilience

import (
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"
)

func TestIsTransient_Nil(t *testing.T) {
	if IsTransient(nil) {
		t.Error("nil should not be transient")
	}
}

func TestIsTransient_WrappedTransientError(t *testing.T) {
	base := Transient(errors.New("http 503"), 503)
	wrapped := fmt.Errorf("fetch page: %w", base)
	if !IsTransient(wrapped) {
		t.Error("wrapped TransientError should be transient")
	}
}

func TestIsTransient_Syscall(t *testing.T) {
	if !IsTransient(syscall.ECONNRESET) {
		t.Error("ECONNRESET should be transient")
	}
	if !IsTransient(syscall.ECONNREFUSED) {
		t.Error("ECONNREFUSED should be transient")
	}
}

func TestIsTransient_DNSTemporary(t *testing.T) {
	err := &net.DNSError{Err: "server misbehaving", IsTemporary: true}
	if !IsTransient(err) {
		t.Error("temporary DNS error should be transient")
	}

	nxdomain := &net.DNSError{Err: "no such host", IsNotFound: true}
	if IsTransient(nxdomain) {
		t.Error("NXDOMAIN should not be transient")
	}
}

func TestIsTransient_StringPatterns(t *testing.T) {
	for _, msg := range []string{
		"read tcp: connection reset by peer",
		"net/http: TLS handshake timeout",
		"dial tcp: i/o timeout",
	} {
		if !IsTransient(errors.New(msg)) {
			t.Errorf("%q should be transient", msg)
		}
	}

	if IsTransient(errors.New("parse error")) {
		t.Error("parse error should not be transient")
	}
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{408, 429, 500, 502, 503, 504} {
		if !IsTransientHTTPStatus(code) {
			t.Errorf("status %d should be transient", code)
		}
	}
	for _, code := range []int{200, 301, 400, 401, 403, 404} {
		if IsTransientHTTPStatus(code) {
			t.Errorf("status %d should not be transient", code)
		}
	}
}

func TestTransientError_Unwrap(t *testing.T) {
	inner := errors.New("boom")
	te := Transient(inner, 500)
	if !errors.Is(te, inner) {
		t.Error("Unwrap should expose the inner error")
	}
	if te.Error() != "boom" {
		t.Errorf("unexpected message %q", te.Error())
	}
}

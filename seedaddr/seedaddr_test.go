package seedaddr

import (
	"errors"
	"testing"

	"github.com/streamworks-oss/clog/errcode"
)

func TestPlainSchemeAccepted(t *testing.T) {
	a, err := Parse("kafka://kafka:9092")
	if err != nil {
		t.Fatal(err)
	}
	if a.UseTLS {
		t.Fatal("expected plain scheme to not request TLS")
	}
	if a.HostPort() != "kafka:9092" {
		t.Fatalf("HostPort() = %q, want kafka:9092", a.HostPort())
	}
}

func TestTLSSchemeAccepted(t *testing.T) {
	a, err := Parse("kafka+ssl://kafka:9093")
	if err != nil {
		t.Fatal(err)
	}
	if !a.UseTLS {
		t.Fatal("expected kafka+ssl scheme to request TLS")
	}
}

func TestSchemeWithoutPortDefaults(t *testing.T) {
	a, err := Parse("kafka://kafka")
	if err != nil {
		t.Fatal(err)
	}
	if a.Port != "9092" {
		t.Fatalf("Port = %q, want default 9092", a.Port)
	}
}

func TestUnknownSchemeRejected(t *testing.T) {
	_, err := Parse("http://kafka")
	if !errors.Is(err, errcode.ErrInvalidURI) {
		t.Fatalf("got %v, want ErrInvalidURI", err)
	}
	want := "invalid protocol `http` in `http://kafka`"
	if err.Error() != "invalid uri: "+want {
		t.Fatalf("got message %q, want suffix %q", err.Error(), want)
	}
}

func TestParseAllStopsAtFirstInvalid(t *testing.T) {
	_, err := ParseAll([]string{"kafka://a:9092", "http://b"})
	if !errors.Is(err, errcode.ErrInvalidURI) {
		t.Fatalf("got %v, want ErrInvalidURI", err)
	}
}

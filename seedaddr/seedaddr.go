// Package seedaddr parses and validates the seed broker URIs a Cluster is
// configured with, per spec.md §6: scheme://host:port, where scheme names
// either the plain TCP dialer or its TLS variant.
package seedaddr

import (
	"fmt"
	"net/url"

	"github.com/streamworks-oss/clog/errcode"
)

// Plain and TLS are the two recognized seed broker URI schemes. Any other
// scheme fails validation.
const (
	Plain = "kafka"
	TLS   = "kafka+ssl"
)

// Addr is a parsed, validated seed broker address.
type Addr struct {
	Host   string
	Port   string
	UseTLS bool
	raw    string
}

// HostPort returns "host:port", the form net.Dial expects.
func (a Addr) HostPort() string { return a.Host + ":" + a.Port }

func (a Addr) String() string { return a.raw }

// Parse validates uri against the recognized schemes and splits it into
// host and port. An unrecognized scheme fails with errcode.ErrInvalidURI,
// carrying the message format spec.md §6 and §8 scenario 6 require:
// "invalid protocol `<scheme>` in `<uri>`".
func Parse(uri string) (Addr, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return Addr{}, fmt.Errorf("%w: %s", errcode.ErrInvalidURI, err)
	}
	switch u.Scheme {
	case Plain:
		return Addr{Host: u.Hostname(), Port: portOrDefault(u.Port()), UseTLS: false, raw: uri}, nil
	case TLS:
		return Addr{Host: u.Hostname(), Port: portOrDefault(u.Port()), UseTLS: true, raw: uri}, nil
	default:
		return Addr{}, fmt.Errorf("%w: invalid protocol `%s` in `%s`", errcode.ErrInvalidURI, u.Scheme, uri)
	}
}

// ParseAll parses every URI in uris, stopping at the first invalid one.
func ParseAll(uris []string) ([]Addr, error) {
	out := make([]Addr, 0, len(uris))
	for _, u := range uris {
		a, err := Parse(u)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

const defaultPort = "9092"

func portOrDefault(p string) string {
	if p == "" {
		return defaultPort
	}
	return p
}

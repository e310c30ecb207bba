package config

import (
	"net"
	"net/url"
	"strconv"
)

// ConnectionURI returns URI when set, otherwise a mongodb:// URI built from
// the individual fields. Credentials are only included when a user is set.
func (m Mongo) ConnectionURI() string {
	if m.URI != "" {
		return m.URI
	}
	u := url.URL{
		Scheme: "mongodb",
		Host:   net.JoinHostPort(m.Host, strconv.Itoa(m.Port)),
		Path:   "/" + m.Database,
	}
	if m.Username != "" {
		u.User = url.UserPassword(m.Username, m.Password)
	}
	return u.String()
}

func redactURI(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return redactedSecret
	}
	return u.Redacted()
}

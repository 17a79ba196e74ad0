package client

import (
	"errors"
	"net"
	"time"
)

// ErrConnExpired marks a connection that outlived its configured lifetime.
// The retry transport treats it as "fetch a fresh connection", not as a
// failed attempt.
var ErrConnExpired = errors.New("connection expired")

// timedConn is a net.Conn with a bounded lifetime. Once the lifetime is up
// the next read or write fails with ErrConnExpired, which evicts the
// connection from the transport's pool and forces a fresh dial, and with it
// a fresh DNS lookup, so traffic follows pod churn.
type timedConn struct {
	net.Conn
	createdAt   time.Time
	maxLifetime time.Duration
}

func (c *timedConn) expired() bool {
	return time.Since(c.createdAt) > c.maxLifetime
}

func (c *timedConn) Read(b []byte) (int, error) {
	if c.expired() {
		_ = c.Close()
		return 0, ErrConnExpired
	}
	return c.Conn.Read(b)
}

func (c *timedConn) Write(b []byte) (int, error) {
	if c.expired() {
		_ = c.Close()
		return 0, ErrConnExpired
	}
	return c.Conn.Write(b)
}

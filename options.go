package minerva

import "time"

// sessionConfig holds internal configuration for a Session.
type sessionConfig struct {
	debugAddr  string
	opTimeout  time.Duration
	launch     bool
	chromePath string
}

func defaultSessionConfig() sessionConfig {
	return sessionConfig{
		debugAddr: "127.0.0.1:9222",
		opTimeout: 15 * time.Second,
	}
}

// Option configures a [Session].
type Option func(*sessionConfig)

// WithDebuggerAddress sets the host:port of the remote debugging endpoint
// of the externally launched browser. Defaults to 127.0.0.1:9222, matching
//
//	chrome --remote-debugging-port=9222 --user-data-dir=/tmp/chrome-minerva-profile
func WithDebuggerAddress(addr string) Option {
	return func(c *sessionConfig) {
		c.debugAddr = addr
	}
}

// WithWaitTimeout sets the maximum duration for a single browser round
// trip. Defaults to 15 seconds.
func WithWaitTimeout(d time.Duration) Option {
	return func(c *sessionConfig) {
		c.opTimeout = d
	}
}

// WithLaunch makes the Session launch its own (visible) browser instead of
// attaching to an already-running one. The operator still logs in and
// navigates to the list page by hand before the traversal starts.
func WithLaunch() Option {
	return func(c *sessionConfig) {
		c.launch = true
	}
}

// WithChromePath sets the path to the Chrome or Chromium executable used
// with [WithLaunch]. When empty, a cached Chromium is resolved (and
// downloaded on first use).
func WithChromePath(path string) Option {
	return func(c *sessionConfig) {
		c.chromePath = path
	}
}

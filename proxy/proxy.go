// Package proxy implements a MITM proxy that records the DOM structure of
// the HTML documents passing through it into DOMGuard constraint trees, one
// frame per origin host. The accumulated constraint HTML can then seed a
// frame running in enforce mode.
package proxy

import (
	"fmt"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/AdguardTeam/gomitmproxy"
)

// defaultMaxBodySize bounds the HTML bodies the proxy is willing to buffer
// for recording. Larger responses pass through unrecorded.
const defaultMaxBodySize = 5 << 20

// Config contains the recording proxy configuration.
type Config struct {
	// ProxyConfig is the underlying MITM proxy configuration.
	ProxyConfig gomitmproxy.Config

	// MaxBodySize is the largest HTML body, in bytes, buffered for
	// recording. Zero means the default.
	MaxBodySize int64
}

// String - server's configuration description
func (c *Config) String() string {
	str := ""
	str += fmt.Sprintf("Listen addr: %s\n", c.ProxyConfig.ListenAddr.String())
	str += fmt.Sprintf("MITM status: %v\n", c.ProxyConfig.MITMConfig != nil)
	str += fmt.Sprintf("Max body size: %d\n", c.MaxBodySize)

	if c.ProxyConfig.Username != "" {
		str += fmt.Sprintf("Proxy auth: %s/%s\n", c.ProxyConfig.Username, c.ProxyConfig.Password)
	}

	return str
}

// Server contains the current server state.
type Server struct {
	// the MITM proxy server instance
	proxyServer *gomitmproxy.Proxy

	// recorder accumulates per-host constraint trees
	recorder *Recorder

	// time when the server was created
	createdAt time.Time

	Config // Server configuration
}

// NewServer creates a new instance of the recording proxy server.
func NewServer(config Config) (s *Server, err error) {
	if config.MaxBodySize == 0 {
		config.MaxBodySize = defaultMaxBodySize
	}

	log.Info("domguard: initializing the proxy server:\n%s", config.String())

	s = &Server{
		createdAt: time.Now(),
		recorder:  NewRecorder(),
		Config:    config,
	}

	s.ProxyConfig.OnRequest = s.onRequest
	s.ProxyConfig.OnResponse = s.onResponse
	s.proxyServer = gomitmproxy.NewProxy(s.ProxyConfig)

	return s, nil
}

// Start starts the proxy server.
func (s *Server) Start() error {
	return s.proxyServer.Start()
}

// Close stops the proxy server.
func (s *Server) Close() {
	s.proxyServer.Close()
}

// Recorder returns the server's constraint recorder.
func (s *Server) Recorder() *Recorder {
	return s.recorder
}

package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/vocdoni/proof-artifacts/api"
	"github.com/vocdoni/proof-artifacts/log"
	"github.com/vocdoni/proof-artifacts/storage"
)

// shutdownTimeout bounds the graceful shutdown of the HTTP server.
const shutdownTimeout = 5 * time.Second

// APIService represents a service that manages the HTTP API server.
type APIService struct {
	storage *storage.Storage
	api     *api.API
	mu      sync.Mutex
	server  *http.Server
	host    string
	port    int
	// stop is closed by Stop, watching when the ctx watcher returns
	stop     chan struct{}
	watching chan struct{}
}

// NewAPI creates a new APIService instance. Port 0 lets the OS choose an
// available port, returned by HostPort once the service is started.
func NewAPI(storage *storage.Storage, host string, port int) *APIService {
	return &APIService{
		storage: storage,
		host:    host,
		port:    port,
	}
}

// Start begins the API server. It returns an error if the service
// is already running or if it fails to start. The server is stopped when ctx
// is done.
func (as *APIService) Start(ctx context.Context) error {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.server != nil {
		return fmt.Errorf("service already running")
	}

	var err error
	as.api, err = api.New(&api.APIConfig{Storage: as.storage})
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	ln, err := net.Listen("tcp", net.JoinHostPort(as.host, strconv.Itoa(as.port)))
	if err != nil {
		return fmt.Errorf("failed to start API server: %w", err)
	}
	as.port = ln.Addr().(*net.TCPAddr).Port
	srv := &http.Server{Handler: as.api.Router(), ReadHeaderTimeout: 10 * time.Second}
	as.server = srv

	go func() {
		log.Infow("API server started", "host", as.host, "port", as.port)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorw(err, "API server failed")
		}
	}()
	stop, watching := make(chan struct{}), make(chan struct{})
	as.stop, as.watching = stop, watching
	go func() {
		defer close(watching)
		select {
		case <-ctx.Done():
			as.Stop()
		case <-stop:
		}
	}()
	return nil
}

// Stop halts the API server. It is safe to call Stop on a stopped service.
func (as *APIService) Stop() {
	as.mu.Lock()
	defer as.mu.Unlock()

	if as.server == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := as.server.Shutdown(ctx); err != nil {
		log.Warnw("API server shutdown failed", "error", err.Error())
	}
	as.server = nil
	close(as.stop)
	log.Infow("API server stopped")
}

// HostPort returns the host and port of the API server.
func (as *APIService) HostPort() (string, int) {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.host, as.port
}

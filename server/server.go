package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/ridoystarlord/custompost/auth"
	"github.com/ridoystarlord/custompost/forms"
	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/provisioner"
	"github.com/ridoystarlord/custompost/records"
)

// Options wires the collaborators of the HTTP API.
type Options struct {
	Catalog       *introspect.Catalog
	Provisioner   *provisioner.Provisioner
	Forms         *forms.Inferencer
	Records       *records.Engine
	Authenticator auth.Authenticator
	Policy        auth.Policy
	// Uploads, when set, is served under /uploads/ so stored relative paths
	// resolve against the API's base URL.
	Uploads        afero.Fs
	MaxUploadBytes int64
	Logger         zerolog.Logger
}

// Server is the HTTP API consumed by the admin UI.
type Server struct {
	catalog   *introspect.Catalog
	prov      *provisioner.Provisioner
	forms     *forms.Inferencer
	records   *records.Engine
	authn     auth.Authenticator
	policy    auth.Policy
	uploads   afero.Fs
	maxUpload int64
	log       zerolog.Logger
}

// New creates the API server.
func New(opts Options) *Server {
	policy := opts.Policy
	if policy == nil {
		policy = auth.AnyAuthenticated{}
	}
	maxUpload := opts.MaxUploadBytes
	if maxUpload <= 0 {
		maxUpload = 32 << 20
	}
	return &Server{
		catalog:   opts.Catalog,
		prov:      opts.Provisioner,
		forms:     opts.Forms,
		records:   opts.Records,
		authn:     opts.Authenticator,
		policy:    policy,
		uploads:   opts.Uploads,
		maxUpload: maxUpload,
		log:       opts.Logger.With().Str("component", "server").Logger(),
	}
}

// Handler returns the routed, middleware-wrapped handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	mux.HandleFunc("POST /custom-post/create-table", s.handleCreateTable)
	mux.HandleFunc("GET /custom-post/tables", s.handleTables)
	mux.HandleFunc("GET /custom-post-form-fields/{table}", s.handleFormFields)

	mux.HandleFunc("POST /custom-post/create/{table}", s.handleCreateRecord)
	mux.HandleFunc("GET /custom-post/list/{table}", s.handleListRecords)
	mux.HandleFunc("GET /custom-post/details/{table}/{id}", s.handleRecordDetails)
	mux.HandleFunc("POST /custom-post/update/{table}/{id}", s.handleUpdateRecord)
	mux.HandleFunc("PUT /custom-post/update/{table}/{id}", s.handleUpdateRecord)
	mux.HandleFunc("DELETE /custom-post/delete/{table}/{id}", s.handleDeleteRecord)

	if s.uploads != nil {
		mux.Handle("GET /uploads/", http.FileServer(afero.NewHttpFs(s.uploads)))
	}

	return s.withRequestLog(s.withCaller(mux))
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.catalog.ListDynamicTables(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, envelope{Success: false, Message: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, envelope{Success: true, Message: "ok"})
}

package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/matzehuels/depinfo/pkg/buildinfo"
	errs "github.com/matzehuels/depinfo/pkg/errors"
	"github.com/matzehuels/depinfo/pkg/info"
	"github.com/matzehuels/depinfo/pkg/modgraph"
	"github.com/matzehuels/depinfo/pkg/npm"
	"github.com/matzehuels/depinfo/pkg/observability"
)

const (
	maxRequestBody  = 32 << 20
	shutdownTimeout = 5 * time.Second
)

type serveOpts struct {
	addr    string
	noCache bool
}

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve dependency reports over HTTP",
		Long: `Serve dependency reports over HTTP.

POST /v1/info accepts {"graph": {...}, "snapshot": {...}} and answers with the
text tree, or with the augmented JSON document when called with
?format=json. GET /healthz reports liveness. Every response carries an
X-Request-ID header.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the package size cache")

	return cmd
}

func (c *CLI) runServe(cmd *cobra.Command, opts serveOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if opts.addr != "" {
		addr = opts.addr
	}
	if err := errs.ValidateListenAddr(addr); err != nil {
		return err
	}

	store := c.newCache(ctx, cfg, opts.noCache)
	defer store.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           newHandler(newSizer(cfg, store)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logger.Info("server stopped")
	return nil
}

// =============================================================================
// HTTP Handler
// =============================================================================

type reportServer struct {
	sizer info.PackageSizer
}

// infoRequest is the body of POST /v1/info.
type infoRequest struct {
	Graph    json.RawMessage `json:"graph"`
	Snapshot json.RawMessage `json:"snapshot"`
}

// newHandler returns the report API. sizer may be nil.
func newHandler(sizer info.PackageSizer) http.Handler {
	s := &reportServer{sizer: sizer}

	r := chi.NewRouter()
	r.Use(observe)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", s.handleHealth)
	r.Post("/v1/info", s.handleInfo)
	return r
}

// observe assigns each request an id and reports it to the HTTP hooks. A
// well-formed X-Request-ID from the client is kept.
func observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		w.Header().Set("Server", buildinfo.UserAgent())

		ctx := context.WithValue(r.Context(), requestIDKey, id)
		hooks := observability.HTTP()
		hooks.OnRequest(ctx, id, r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r.WithContext(ctx))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(ctx, id, r.Method, r.URL.Path, status, time.Since(start))
	})
}

func (s *reportServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

func (s *reportServer) handleInfo(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "text"
	}
	if format != "text" && format != "json" {
		s.fail(w, r, errs.New(errs.ErrCodeUnsupported, "format must be text or json, got %q", format))
		return
	}

	var req infoRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody)).Decode(&req); err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidGraph, err, "decode request"))
		return
	}
	if len(req.Graph) == 0 {
		s.fail(w, r, errs.New(errs.ErrCodeInvalidGraph, "request has no graph"))
		return
	}
	g, err := modgraph.ReadGraph(bytes.NewReader(req.Graph))
	if err != nil {
		s.fail(w, r, errs.Wrap(graphErrorCode(err), err, "read graph"))
		return
	}
	snap := npm.NewSnapshot()
	if len(req.Snapshot) > 0 && !bytes.Equal(req.Snapshot, []byte("null")) {
		if snap, err = npm.ReadSnapshot(bytes.NewReader(req.Snapshot)); err != nil {
			s.fail(w, r, errs.Wrap(errs.ErrCodeInvalidSnapshot, err, "read snapshot"))
			return
		}
	}

	var buf bytes.Buffer
	contentType := "text/plain; charset=utf-8"
	if format == "json" {
		contentType = "application/json"
		err = info.WriteJSON(r.Context(), &buf, g, snap)
	} else {
		err = info.Write(r.Context(), &buf, g, snap, info.Options{Sizer: s.sizer})
	}
	if err != nil {
		s.fail(w, r, errs.Wrap(errs.ErrCodeInternal, err, "write report"))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// fail reports err to the HTTP hooks and writes it as a JSON error body.
func (s *reportServer) fail(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), requestIDFromContext(r.Context()), r.Method, r.URL.Path, err)

	body := map[string]string{"error": errs.UserMessage(err)}
	if code := errs.GetCode(err); code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, errorStatus(err), body)
}

// errorStatus maps an error to its HTTP status: 413 for oversized bodies,
// 400 for bad input and unsupported options, 500 for everything else.
func errorStatus(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr):
		return http.StatusRequestEntityTooLarge
	case errs.IsInput(err), errs.Is(err, errs.ErrCodeUnsupported):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/germanamz/nmapsum/pkg/httputil"
)

const (
	maxScanBytes    = 1 << 20
	requestTimeout  = 2 * time.Minute
	shutdownTimeout = 10 * time.Second
)

type summarizeRequest struct {
	APIKey string `json:"api_key"`
	Scan   string `json:"scan" validate:"required"`
}

type summarizeResponse struct {
	Summary  string `json:"summary"`
	Graph    string `json:"graph"`
	GraphRaw string `json:"graph_raw"`
}

func runServe(ctx context.Context, c commonFlags, addr string) error {
	d, err := buildDeps(c, logStderr)
	if err != nil {
		return err
	}
	defer func() { _ = d.Close() }()

	if addr == "" {
		addr = d.cfg.Addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           newServer(d),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	d.log.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}

func newServer(d *deps) http.Handler {
	r := httputil.NewRouter(d.log, requestTimeout)

	r.Get("/healthz", httputil.HealthHandler(d.log))
	r.Post("/api/summarize", summarizeHandler(d))

	return r
}

func summarizeHandler(d *deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req summarizeRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScanBytes)).Decode(&req); err != nil {
			httputil.Fail(d.log, w, "invalid payload", err, http.StatusBadRequest)
			return
		}

		if err := httputil.Validator.Struct(&req); err != nil {
			httputil.ValidationError(d.log, w, err)
			return
		}

		apiKey := req.APIKey
		if apiKey == "" {
			stored, err := d.creds.Get()
			if err != nil {
				httputil.Fail(d.log, w, "failed to read stored api key", err, http.StatusInternalServerError)
				return
			}
			apiKey = stored
		}

		res, err := d.sum.Run(r.Context(), apiKey, req.Scan)
		if err != nil {
			httputil.Fail(d.log, w, "model request failed: "+err.Error(), err, http.StatusBadGateway)
			return
		}

		httputil.WriteJSON(w, http.StatusOK, summarizeResponse{
			Summary:  res.Summary,
			Graph:    res.GraphSource(),
			GraphRaw: res.Graph,
		})
	}
}

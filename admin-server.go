package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	router "github.com/gorilla/mux"
	"github.com/journeymidnight/radosmirror/admin"
	"github.com/journeymidnight/radosmirror/helper"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type adminServerConfig struct {
	Address string
}

// adminCommandHandler dispatches one registered admin command, e.g.
// GET /admin/command?cmd=rbd+mirror+deletion+status&format=json
func adminCommandHandler(w http.ResponseWriter, r *http.Request) {
	cmd := r.URL.Query().Get("cmd")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "json"
	}

	var out bytes.Buffer
	ok, err := admin.Dispatch(cmd, format, &out)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(err.Error()))
		return
	}
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	if format == "json" {
		w.Header().Set("Content-Type", "application/json")
	}
	_, _ = w.Write(out.Bytes())
}

func adminListCommandsHandler(w http.ResponseWriter, r *http.Request) {
	encoded, err := json.Marshal(admin.Default.Commands())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(encoded)
}

func configureAdminHandler() http.Handler {
	mux := router.NewRouter()
	mux.HandleFunc("/admin/command",
		SetJwtMiddlewareFunc(adminCommandHandler)).Methods("GET")
	mux.HandleFunc("/admin/commands",
		SetJwtMiddlewareFunc(adminListCommandsHandler)).Methods("GET")
	mux.Handle("/metrics", promhttp.Handler()).Methods("GET")
	return mux
}

func startAdminServer(config *adminServerConfig) *http.Server {
	server := &http.Server{
		Addr:         config.Address,
		Handler:      configureAdminHandler(),
		ReadTimeout:  time.Minute,
		WriteTimeout: time.Minute,
	}
	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			helper.Logger.Error("admin server:", err)
		}
	}()
	helper.Logger.Info("admin server listening on", config.Address)
	return server
}

func stopAdminServer(server *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		helper.Logger.Error("admin server shutdown:", err)
	}
}

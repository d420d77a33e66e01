// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

// Package export serves map statistics to monitoring systems: prometheus
// gauges for entry counts plus JSON snapshot endpoints.
package export

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apperrors "grimm.is/bpfmap/internal/errors"
	"grimm.is/bpfmap/internal/loader"
	"grimm.is/bpfmap/internal/logging"
	"grimm.is/bpfmap/internal/maps"
	"grimm.is/bpfmap/internal/sys"
)

// Config configures the exporter endpoint and refresh cadence.
type Config struct {
	Listen   string        `yaml:"listen"`
	Interval time.Duration `yaml:"interval"`
}

// DefaultConfig returns the default exporter configuration.
func DefaultConfig() Config {
	return Config{
		Listen:   ":9476",
		Interval: 10 * time.Second,
	}
}

// Exporter periodically counts map entries and serves them over HTTP.
// Counting iterates live kernel maps, so figures are best-effort snapshots
// under concurrent writers.
type Exporter struct {
	coll *loader.Collection
	log  *logging.Logger
	cfg  Config

	registry     *prometheus.Registry
	entries      *prometheus.GaugeVec
	scrapeErrors prometheus.Counter
}

// New builds an exporter over coll. If gw is non-nil its gateway counters
// are served from the same registry.
func New(coll *loader.Collection, gw *sys.Instrumented, cfg Config, log *logging.Logger) (*Exporter, error) {
	e := &Exporter{
		coll:     coll,
		log:      log,
		cfg:      cfg,
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "bpfmap_map_entries",
			Help: "Number of live entries per map at the last scrape",
		}, []string{"map"}),
		scrapeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bpfmap_scrape_errors_total",
			Help: "Total number of failed map entry counts",
		}),
	}

	if err := e.registry.Register(e.entries); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "registering entry gauge")
	}
	if err := e.registry.Register(e.scrapeErrors); err != nil {
		return nil, apperrors.Wrap(err, apperrors.KindInternal, "registering scrape counter")
	}
	if gw != nil {
		if err := gw.Register(e.registry); err != nil {
			return nil, apperrors.Wrap(err, apperrors.KindInternal, "registering gateway counters")
		}
	}
	return e, nil
}

// Collect refreshes the entry gauges for every registered map.
func (e *Exporter) Collect() {
	for _, name := range e.coll.Names() {
		n, err := e.countMap(name)
		if err != nil {
			e.scrapeErrors.Inc()
			e.log.Warn("Failed to count map entries", "map", name, "error", err)
			continue
		}
		e.entries.WithLabelValues(name).Set(float64(n))
	}
}

func (e *Exporter) countMap(name string) (int, error) {
	ref, err := e.coll.Map(name)
	if err != nil {
		return 0, err
	}
	defer ref.Close()
	return maps.Count(ref)
}

// MapStatus is the JSON shape served for one map.
type MapStatus struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	KeySize    uint32 `json:"key_size"`
	ValueSize  uint32 `json:"value_size"`
	MaxEntries uint32 `json:"max_entries"`
	Entries    int    `json:"entries"`
}

func (e *Exporter) status(name string) (MapStatus, error) {
	s, err := e.coll.Shared(name)
	if err != nil {
		return MapStatus{}, err
	}
	n, err := e.countMap(name)
	if err != nil {
		return MapStatus{}, err
	}
	def := s.Definition()
	return MapStatus{
		Name:       name,
		Kind:       def.Kind.String(),
		KeySize:    def.KeySize,
		ValueSize:  def.ValueSize,
		MaxEntries: def.MaxEntries,
		Entries:    n,
	}, nil
}

// Handler returns the HTTP routes: /metrics, /maps and /maps/{name}.
func (e *Exporter) Handler() http.Handler {
	r := mux.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	r.HandleFunc("/maps", e.handleMaps).Methods(http.MethodGet)
	r.HandleFunc("/maps/{name}", e.handleMap).Methods(http.MethodGet)
	return r
}

func (e *Exporter) handleMaps(w http.ResponseWriter, r *http.Request) {
	statuses := make([]MapStatus, 0)
	for _, name := range e.coll.Names() {
		st, err := e.status(name)
		if err != nil {
			e.log.Warn("Failed to read map status", "map", name, "error", err)
			continue
		}
		statuses = append(statuses, st)
	}
	writeJSON(w, statuses)
}

func (e *Exporter) handleMap(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	st, err := e.status(name)
	if err != nil {
		if apperrors.GetKind(err) == apperrors.KindNotFound {
			http.Error(w, "map not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, st)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// Run serves the endpoints and refreshes gauges until ctx is cancelled.
func (e *Exporter) Run(ctx context.Context) error {
	e.Collect()

	srv := &http.Server{
		Addr:    e.cfg.Listen,
		Handler: e.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	e.log.Info("Exporter listening", "addr", e.cfg.Listen, "interval", e.cfg.Interval)

	ticker := time.NewTicker(e.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			e.Collect()
		case err := <-errCh:
			return apperrors.Wrap(err, apperrors.KindUnavailable, "exporter server")
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
			return nil
		}
	}
}

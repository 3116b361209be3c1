package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/huangsam/gridline/core"
	"github.com/huangsam/gridline/internal/contract"
	"github.com/huangsam/gridline/internal/outwriter"
	"github.com/huangsam/gridline/internal/render"
	"github.com/huangsam/gridline/schema"
)

// errBadRequest marks query problems the caller can fix.
var errBadRequest = errors.New("bad request")

type healthResponse struct {
	Status    string `json:"status"`
	Games     int    `json:"games"`
	Scheduled int    `json:"scheduled"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Games: len(s.ds.Table), Scheduled: len(s.ds.Schedule)})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r, chi.URLParam(r, "player"))
	if err != nil {
		writeError(w, err)
		return
	}
	points, err := core.GetSeriesResults(s.ds, cfg)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, outwriter.SeriesResult{
		Player:      cfg.Player,
		FirstSeason: cfg.FirstSeason,
		LastSeason:  cfg.LastSeason,
		Points:      points,
		Percentiles: core.GetPercentileResults(s.ds),
	})
}

func (s *Server) handlePercentiles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, core.GetPercentileResults(s.ds))
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.requestConfig(r, r.URL.Query().Get("player"))
	if err != nil {
		writeError(w, err)
		return
	}
	chart, err := core.GetStaticChartResults(s.ds, cfg)
	if err != nil {
		writeError(w, err)
		return
	}

	format, contentType := schema.PNGOut, "image/png"
	if strings.HasSuffix(r.URL.Path, ".svg") {
		format, contentType = schema.SVGOut, "image/svg+xml"
	}
	opts := render.Options{Width: cfg.ChartWidth, Height: cfg.ChartHeight, Logos: s.logos}
	writeRendered(w, contentType, func(out io.Writer) error {
		return render.RenderStatic(r.Context(), out, chart, format, opts)
	})
}

func (s *Server) handleInteractiveJSON(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.interactiveChart(w, r)
	if !ok {
		return
	}
	writeRendered(w, "application/json", func(out io.Writer) error {
		return render.WriteFigureJSON(out, chart)
	})
}

func (s *Server) handleInteractiveHTML(w http.ResponseWriter, r *http.Request) {
	chart, ok := s.interactiveChart(w, r)
	if !ok {
		return
	}
	writeRendered(w, "text/html; charset=utf-8", func(out io.Writer) error {
		return render.WriteInteractiveHTML(out, chart)
	})
}

func (s *Server) interactiveChart(w http.ResponseWriter, r *http.Request) (schema.InteractiveChart, bool) {
	cfg, err := s.requestConfig(r, r.URL.Query().Get("player"))
	if err != nil {
		writeError(w, err)
		return schema.InteractiveChart{}, false
	}
	chart, err := core.GetInteractiveChartResults(s.ds, cfg)
	if err != nil {
		writeError(w, err)
		return schema.InteractiveChart{}, false
	}
	return chart, true
}

// requestConfig overlays the query parameters on a clone of the base config.
func (s *Server) requestConfig(r *http.Request, player string) (*contract.Config, error) {
	cfg := s.cfg.Clone()
	cfg.Player = strings.TrimSpace(player)

	q := r.URL.Query()
	for name, target := range map[string]*int{
		"season":       &cfg.Season,
		"first_season": &cfg.FirstSeason,
		"last_season":  &cfg.LastSeason,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be an integer, got %q", errBadRequest, name, raw)
		}
		*target = v
	}
	if q.Get("season") != "" && q.Get("first_season") == "" && q.Get("last_season") == "" {
		cfg.FirstSeason, cfg.LastSeason = cfg.Season, cfg.Season
	}
	if cfg.FirstSeason > cfg.LastSeason {
		return nil, fmt.Errorf("%w: first_season %d is after last_season %d", errBadRequest, cfg.FirstSeason, cfg.LastSeason)
	}
	return cfg, nil
}

// writeRendered buffers the body so a render failure can still become a 500.
func writeRendered(w http.ResponseWriter, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		contract.LogWarn("Failed to encode response", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, core.ErrNoPlayer) || errors.Is(err, errBadRequest) {
		status = http.StatusBadRequest
	} else {
		contract.LogWarn("Request failed", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

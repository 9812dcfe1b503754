// Package web is the HTTP front end: a JSON conversion API next to the
// static converter page.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/bytedance/sonic"

	"csv2json/internal/convert"
	"csv2json/internal/dialect"
	"csv2json/internal/eol"
	"csv2json/internal/jsonout"
	"csv2json/internal/mapper"
	"csv2json/internal/store"
)

// DownloadName is the file name offered for downloads.
const DownloadName = "converted.json"

// History records conversions. *store.Store implements it.
type History interface {
	Save(ctx context.Context, c store.Conversion, records []mapper.Record) (store.Conversion, error)
	Recent(ctx context.Context, limit int) ([]store.Conversion, error)
}

type Server struct {
	defaults convert.Options
	history  History
	assets   http.Handler
	maxBody  int64
}

// NewServer builds the handler set. history may be nil.
func NewServer(defaults convert.Options, assets http.Handler, history History, maxBody int64) *Server {
	if maxBody <= 0 {
		maxBody = 10 << 20
	}
	return &Server{
		defaults: defaults,
		history:  history,
		assets:   assets,
		maxBody:  maxBody,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/convert", s.handleConvert)
	mux.HandleFunc("/api/convert", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "use POST")
	})
	mux.HandleFunc("GET /api/sample", s.handleSample)
	mux.HandleFunc("GET /api/history", s.handleHistory)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})
	if s.assets != nil {
		mux.Handle("/", s.assets)
	}
	return mux
}

type convertRequest struct {
	CSV       string  `json:"csv"`
	Source    string  `json:"source"`
	Delimiter *string `json:"delimiter"`
	EOL       *string `json:"eol"`
	HasHeader *bool   `json:"hasHeader"`
	Empty     *string `json:"empty"`
	Mode      *string `json:"mode"`
	KeepExtra *bool   `json:"keepExtra"`
}

type convertResponse struct {
	JSON      string `json:"json"`
	Delimiter string `json:"delimiter"`
	Rows      int    `json:"rows"`
	Records   int    `json:"records"`
	ID        string `json:"id,omitempty"`
}

// options applies the request fields over the server defaults.
func (req *convertRequest) options(def convert.Options) (convert.Options, error) {
	opt := def
	if req.Delimiter != nil {
		opt.Delimiter = *req.Delimiter
	}
	if req.HasHeader != nil {
		opt.HasHeader = *req.HasHeader
	}
	if req.KeepExtra != nil {
		opt.KeepExtra = *req.KeepExtra
	}
	if req.EOL != nil {
		m, err := eol.ParseMode(*req.EOL)
		if err != nil {
			return opt, err
		}
		opt.EOL = m
	}
	if req.Empty != nil {
		p, err := mapper.ParseEmptyPolicy(*req.Empty)
		if err != nil {
			return opt, err
		}
		opt.Empty = p
	}
	if req.Mode != nil {
		m, err := jsonout.ParseMode(*req.Mode)
		if err != nil {
			return opt, err
		}
		opt.Mode = m
	}
	return opt, nil
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
			return
		}
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	var req convertRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	opt, err := req.options(s.defaults)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := convert.Run(req.CSV, opt)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	resp := convertResponse{
		JSON:      res.JSON,
		Delimiter: res.Delimiter.String(),
		Rows:      res.Stats.Rows,
		Records:   len(res.Records),
	}
	if s.history != nil {
		saved, err := s.history.Save(r.Context(), store.Conversion{
			Source:    req.Source,
			Delimiter: resp.Delimiter,
			HasHeader: opt.HasHeader,
			Empty:     string(opt.Empty),
			Rows:      res.Stats.Rows,
		}, res.Records)
		if err != nil {
			// the conversion itself succeeded
			log.Printf("web: history save failed: %v", err)
		} else {
			resp.ID = saved.ID
		}
	}

	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+DownloadName+`"`)
		_, _ = io.WriteString(w, res.JSON)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSample(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	_, _ = io.WriteString(w, convert.Sample)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeError(w, http.StatusNotFound, "history store is not configured")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	list, err := s.history.Recent(ctx, limit)
	if err != nil {
		log.Printf("web: history: %v", err)
		writeError(w, http.StatusInternalServerError, "history unavailable")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, convert.ErrEmptyInput),
		errors.Is(err, dialect.ErrInvalidDelimiter),
		errors.Is(err, eol.ErrInvalidMode),
		errors.Is(err, mapper.ErrInvalidPolicy),
		errors.Is(err, jsonout.ErrInvalidMode):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := sonic.Marshal(v)
	if err != nil {
		log.Printf("web: encode response: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{
		"error":  message,
		"status": status,
	})
}

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/chriskillpack/whiskers"
	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

type Server struct {
	hs     *http.Server
	w      *whiskers.Whiskers
	logger zerolog.Logger
}

func NewServer(w *whiskers.Whiskers, addr string, logger zerolog.Logger) *Server {
	srv := &Server{
		w:      w,
		logger: logger,
	}

	srv.hs = &http.Server{
		Addr:    addr,
		Handler: srv.serveHandler(),
	}

	return srv
}

func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.hs.Addr).Msg("listening")
	return s.hs.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.hs.Shutdown(ctx)
}

func (s *Server) serveHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /{imgid}", s.serveImage())
	mux.Handle("GET /{imgid}/description", s.serveDescription())
	mux.Handle("POST /{imgid}/tags", s.serveTags())

	return withRequestLogging(mux, s.logger)
}

// serveImage passes the upstream response through untouched, including error
// statuses.
func (s *Server) serveImage() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		imgid := req.PathValue("imgid")
		log := hlog.FromRequest(req).With().Str("imgid", imgid).Logger()

		resp, err := s.w.Images.Fetch(req.Context(), imgid)
		if err != nil {
			log.Error().Err(err).Msg("fetching image")
			status := http.StatusBadGateway
			if errors.Is(err, whiskers.ErrNoImageURLTemplate) {
				status = http.StatusInternalServerError
			}
			http.Error(w, http.StatusText(status), status)
			return
		}
		defer resp.Body.Close()

		var body io.Reader = resp.Body
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			data, err := io.ReadAll(resp.Body)
			if err != nil {
				log.Error().Err(err).Int("status", resp.StatusCode).Msg("reading upstream error body")
				http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
				return
			}
			log.Debug().Int("status", resp.StatusCode).Bytes("body", data).Msg("upstream error")
			body = bytes.NewReader(data)
		}

		copyHeader(w.Header(), resp.Header)
		w.WriteHeader(resp.StatusCode)

		n, err := io.Copy(w, body)
		if err != nil {
			// Headers are gone, nothing left to tell the client
			log.Warn().Err(err).Msg("copying image body")
			return
		}
		log.Debug().Int("status", resp.StatusCode).Str("size", humanize.Bytes(uint64(n))).Msg("proxied image")
	}
}

// Headers that only apply to a single connection and are never forwarded.
var hopHeaders = []string{
	"Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Proxy-Connection",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// copyHeader copies upstream headers onto dst, leaving out hop-by-hop headers,
// including any named in Connection, and the request id already set on dst.
func copyHeader(dst, src http.Header) {
	skip := map[string]bool{headerRequestID: true}
	for _, h := range hopHeaders {
		skip[h] = true
	}
	for _, h := range src.Values("Connection") {
		for _, f := range strings.Split(h, ",") {
			skip[http.CanonicalHeaderKey(strings.TrimSpace(f))] = true
		}
	}

	for k, vv := range src {
		if skip[http.CanonicalHeaderKey(k)] {
			continue
		}
		dst[k] = append([]string(nil), vv...)
	}
}

func (s *Server) serveDescription() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		imgid := req.PathValue("imgid")

		res, err := s.w.Describe(req.Context(), imgid)
		if err != nil {
			hlog.FromRequest(req).Error().Err(err).Str("imgid", imgid).Msg("describing image")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		writeJSON(w, req, res)
	}
}

type tagsRequest struct {
	Description *string `json:"description"`
}

func (s *Server) serveTags() http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		imgid := req.PathValue("imgid")
		log := hlog.FromRequest(req).With().Str("imgid", imgid).Logger()

		var body tagsRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Description == nil {
			log.Debug().Err(err).Msg("bad tags request body")
			http.Error(w, `body must be a JSON object with a "description" string`, http.StatusUnprocessableEntity)
			return
		}

		res, err := s.w.Tags(req.Context(), imgid, *body.Description)
		if err != nil {
			log.Error().Err(err).Msg("extracting tags")
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		writeJSON(w, req, res)
	}
}

func writeJSON(w http.ResponseWriter, req *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(req).Warn().Err(err).Msg("writing response")
	}
}

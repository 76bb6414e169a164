package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/osubuf/pkg/codec"
	"github.com/ssargent/osubuf/pkg/layout"
	"github.com/ssargent/osubuf/pkg/storage"
)

// Server holds the API server state
type Server struct {
	archive ArchiveStore
	layouts *layout.Registry
	config  ServerConfig
	metrics *Metrics
	logger  *zap.Logger
}

// NewServer creates a new API server
func NewServer(archive ArchiveStore, layouts *layout.Registry, config ServerConfig, metrics *Metrics, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		archive: archive,
		layouts: layouts,
		config:  config,
		metrics: metrics,
		logger:  logger,
	}
}

// statusFor maps codec, layout and storage errors to HTTP status codes.
func statusFor(err error) int {
	var maxBytes *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytes), errors.Is(err, codec.ErrBufferOverflow):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, layout.ErrUnknownLayout), errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, codec.ErrBufferUnderflow),
		errors.Is(err, codec.ErrInvalidLength),
		errors.Is(err, codec.ErrInvalidPosition):
		return http.StatusUnprocessableEntity
	case errors.Is(err, layout.ErrInvalidValue),
		errors.Is(err, layout.ErrMissingField),
		errors.Is(err, codec.ErrUnrepresentableText),
		errors.Is(err, codec.ErrCollectionTooLarge):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		sendError(w, "internal error", status)
		return
	}
	s.logger.Debug("request rejected", zap.String("path", r.URL.Path), zap.Int("status", status), zap.Error(err))
	sendError(w, err.Error(), status)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body := r.Body
	if s.config.MaxBodySize > 0 {
		body = http.MaxBytesReader(w, r.Body, int64(s.config.MaxBodySize))
	}
	return io.ReadAll(body)
}

func (s *Server) resolveLayout(r *http.Request) (layout.Layout, error) {
	l, err := s.layouts.Get(chi.URLParam(r, "layout"))
	if err != nil {
		return layout.Layout{}, err
	}
	if s.config.NullableStrings {
		l = l.WithNullableStrings()
	}
	return l, nil
}

func decodePayload(payload []byte, l layout.Layout, all bool) (*DecodeResponse, error) {
	rd := codec.NewReader(payload)
	var recs []*layout.Record
	if all {
		var err error
		recs, err = layout.DecodeAll(rd, l)
		if err != nil {
			return nil, err
		}
	} else {
		rec, err := layout.Decode(rd, l)
		if err != nil {
			return nil, err
		}
		recs = []*layout.Record{rec}
	}
	return &DecodeResponse{
		Layout:    l.Name,
		Consumed:  rd.Cursor().Position(),
		Remaining: rd.Cursor().Remaining(),
		Records:   recs,
	}, nil
}

func parseID(r *http.Request) (ksuid.KSUID, error) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return ksuid.Nil, errors.Wrapf(layout.ErrInvalidValue, "invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// handleHealth godoc
//
//	@Summary		Health check
//	@Description	Get the health status of the API
//	@Tags			health
//	@Produce		json
//	@Success		200	{object}	map[string]string
//	@Router			/health [get]
//	@Security		ApiKeyAuth
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.metrics != nil {
		s.metrics.RecordHealthCheck(true)
	}
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleLayouts godoc
//
//	@Summary		List layouts
//	@Description	List every registered record layout
//	@Tags			layouts
//	@Produce		json
//	@Success		200	{array}	layout.Layout
//	@Router			/layouts [get]
//	@Security		ApiKeyAuth
func (s *Server) handleLayouts(w http.ResponseWriter, r *http.Request) {
	sendSuccess(w, s.layouts.All())
}

// handleDecode godoc
//
//	@Summary		Decode a payload
//	@Description	Decode the raw request body with the named layout
//	@Tags			codec
//	@Accept			octet-stream
//	@Produce		json
//	@Param			layout	path		string	true	"Layout name"
//	@Param			all		query		bool	false	"Decode records until the body is exhausted"
//	@Success		200		{object}	DecodeResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/decode/{layout} [post]
//	@Security		ApiKeyAuth
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	l, err := s.resolveLayout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	payload, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	all, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	resp, err := decodePayload(payload, l, all)
	if s.metrics != nil {
		s.metrics.RecordCodecOperation("decode", l.Name, err == nil, len(payload))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendSuccess(w, resp)
}

// handleEncode godoc
//
//	@Summary		Encode a record
//	@Description	Encode a JSON object of field values with the named layout
//	@Tags			codec
//	@Accept			json
//	@Produce		octet-stream
//	@Param			layout	path		string			true	"Layout name"
//	@Param			body	body		map[string]any	true	"Field values"
//	@Success		200		{file}		binary
//	@Failure		400		{object}	APIResponse
//	@Failure		404		{object}	APIResponse
//	@Router			/encode/{layout} [post]
//	@Security		ApiKeyAuth
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	l, err := s.resolveLayout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	body, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var values map[string]any
	if err := dec.Decode(&values); err != nil {
		sendError(w, "Invalid JSON in request body", http.StatusBadRequest)
		return
	}

	wr := codec.NewWriter()
	if s.config.MaxBodySize > 0 {
		wr.Cursor().SetLimit(s.config.MaxBodySize)
	}
	err = layout.Encode(wr, l, values)
	if s.metrics != nil {
		s.metrics.RecordCodecOperation("encode", l.Name, err == nil, wr.Len())
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(wr.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(wr.Bytes())
}

// handleArchivePut godoc
//
//	@Summary		Archive a payload
//	@Description	Validate the raw body against the named layout and store it
//	@Tags			archive
//	@Accept			octet-stream
//	@Produce		json
//	@Param			layout	path		string	true	"Layout name"
//	@Success		201		{object}	ArchiveEntryResponse
//	@Failure		404		{object}	APIResponse
//	@Failure		422		{object}	APIResponse
//	@Router			/archive/{layout} [post]
//	@Security		ApiKeyAuth
func (s *Server) handleArchivePut(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	l, err := s.resolveLayout(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	payload, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := layout.Decode(codec.NewReader(payload), l); err != nil {
		s.fail(w, r, err)
		return
	}

	id, err := s.archive.Put(l.Name, payload)
	if s.metrics != nil {
		s.metrics.RecordArchiveOperation("put", err == nil, time.Since(start))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	e, err := s.archive.Get(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendJSON(w, http.StatusCreated, entryResponse(*e))
}

// handleArchiveList godoc
//
//	@Summary		List archived payloads
//	@Description	List archived payloads in capture order
//	@Tags			archive
//	@Produce		json
//	@Param			limit	query	int	false	"Maximum number of entries"
//	@Success		200		{array}	ArchiveEntryResponse
//	@Router			/archive [get]
//	@Security		ApiKeyAuth
func (s *Server) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			sendError(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	entries, err := s.archive.List(limit)
	if s.metrics != nil {
		s.metrics.RecordArchiveOperation("list", err == nil, time.Since(start))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}

	out := make([]ArchiveEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse(e))
	}
	sendSuccess(w, out)
}

// handleArchiveGet godoc
//
//	@Summary		Fetch an archived payload
//	@Description	Return the raw archived bytes
//	@Tags			archive
//	@Produce		octet-stream
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	APIResponse
//	@Router			/archive/{id} [get]
//	@Security		ApiKeyAuth
func (s *Server) handleArchiveGet(w http.ResponseWriter, r *http.Request) {
	e, ok := s.getEntry(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Length", strconv.Itoa(len(e.Payload)))
	w.Header().Set("X-Osubuf-Layout", e.Layout)
	w.Header().Set("X-Osubuf-Captured", e.Captured.Format(time.RFC3339Nano))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Payload)
}

// handleArchiveDecoded godoc
//
//	@Summary		Decode an archived payload
//	@Description	Decode an archived payload with the layout it was stored under
//	@Tags			archive
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	ArchiveDecodedResponse
//	@Failure		404	{object}	APIResponse
//	@Router			/archive/{id}/decoded [get]
//	@Security		ApiKeyAuth
func (s *Server) handleArchiveDecoded(w http.ResponseWriter, r *http.Request) {
	e, ok := s.getEntry(w, r)
	if !ok {
		return
	}
	l, err := s.layouts.Get(e.Layout)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	resp, err := decodePayload(e.Payload, l, false)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendSuccess(w, ArchiveDecodedResponse{
		ArchiveEntryResponse: entryResponse(*e),
		Remaining:            resp.Remaining,
		Records:              resp.Records,
	})
}

// handleArchiveDelete godoc
//
//	@Summary		Delete an archived payload
//	@Tags			archive
//	@Produce		json
//	@Param			id	path		string	true	"Entry id"
//	@Success		200	{object}	map[string]string
//	@Failure		404	{object}	APIResponse
//	@Router			/archive/{id} [delete]
//	@Security		ApiKeyAuth
func (s *Server) handleArchiveDelete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id, err := parseID(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	err = s.archive.Delete(id)
	if s.metrics != nil {
		s.metrics.RecordArchiveOperation("delete", err == nil, time.Since(start))
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	sendSuccess(w, map[string]string{"message": "Archive entry deleted"})
}

func (s *Server) getEntry(w http.ResponseWriter, r *http.Request) (*storage.Entry, bool) {
	start := time.Now()
	id, err := parseID(r)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	e, err := s.archive.Get(id)
	if s.metrics != nil {
		s.metrics.RecordArchiveOperation("get", err == nil, time.Since(start))
	}
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return e, true
}

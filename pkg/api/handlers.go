package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/segmentio/ksuid"
	"github.com/ssargent/sdbuf/pkg/codec"
	"github.com/ssargent/sdbuf/pkg/export"
	"github.com/ssargent/sdbuf/pkg/storage"
)

// Server holds the API server state
type Server struct {
	archive storage.Archive
	codec   *codec.Codec
	config  ServerConfig
	metrics *Metrics
}

// NewServer creates a new API server. A nil codec means codec.NewCodec().
func NewServer(archive storage.Archive, c *codec.Codec, config ServerConfig, metrics *Metrics) *Server {
	if c == nil {
		c = codec.NewCodec()
	}
	if config.BlobEncoding == "" {
		config.BlobEncoding = export.Hex
	}
	return &Server{
		archive: archive,
		codec:   c,
		config:  config,
		metrics: metrics,
	}
}

// clientErrors are codec failures caused by the request payload.
var clientErrors = []error{
	codec.ErrIncompatibleVersion,
	codec.ErrUnknownType,
	codec.ErrTruncatedBuffer,
	codec.ErrMalformedEntry,
	codec.ErrInvalidKey,
	codec.ErrTypeInference,
	codec.ErrInvalidType,
	codec.ErrEmptyEntry,
	codec.ErrTooManyElements,
	codec.ErrValueOutOfRange,
	codec.ErrBlobLengthMismatch,
	codec.ErrBlobTooLarge,
	codec.ErrRecordTooLarge,
	codec.ErrTypeMismatch,
}

// statusFor maps an error to an HTTP status code
func statusFor(err error) int {
	if errors.Is(err, storage.ErrNotFound) {
		return http.StatusNotFound
	}
	for _, target := range clientErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

// readBody reads the whole request body up to the configured limit
func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.config.maxBodyBytes()))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			sendError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return nil, false
		}
		sendError(w, "Failed to read request body", http.StatusBadRequest)
		return nil, false
	}
	return body, true
}

// mediaType returns the media type of a Content-Type or Accept value
func mediaType(header string) string {
	if header == "" {
		return ""
	}
	// Accept may list several types; the first one wins.
	first := strings.TrimSpace(strings.Split(header, ",")[0])
	mt, _, err := mime.ParseMediaType(first)
	if err != nil {
		return ""
	}
	return mt
}

// parseRecordID reads and validates the {id} URL parameter
func parseRecordID(w http.ResponseWriter, r *http.Request) (ksuid.KSUID, bool) {
	id, err := ksuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		sendError(w, "Invalid record ID", http.StatusBadRequest)
		return ksuid.Nil, false
	}
	return id, true
}

// parseJSONRecord parses a JSON record body, answering 400 on failure
func (s *Server) parseJSONRecord(w http.ResponseWriter, body []byte) (*codec.Record, bool) {
	rec, err := export.ParseJSON(body)
	if err != nil {
		s.metrics.RecordCodecOperation("parse", false, 0)
		sendError(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return rec, true
}

func (s *Server) decodeResponse(rec *codec.Record) DecodeResponse {
	return DecodeResponse{
		Values:  export.Flat(rec, s.config.BlobEncoding),
		Entries: export.Detailed(rec, s.config.BlobEncoding),
	}
}

// handleHealth godoc
//
//	@Summary	Health check
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	map[string]string
//	@Router		/health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleEncode godoc
//
//	@Summary	Encode a JSON record
//	@Tags		codec
//	@Accept		json
//	@Produce	octet-stream
//	@Success	200	{string}	binary
//	@Failure	400	{object}	APIResponse
//	@Router		/encode [post]
func (s *Server) handleEncode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	rec, ok := s.parseJSONRecord(w, body)
	if !ok {
		return
	}

	buf, err := s.codec.Encode(rec)
	if err != nil {
		s.metrics.RecordCodecOperation("encode", false, 0)
		sendError(w, fmt.Sprintf("Failed to encode record: %v", err), statusFor(err))
		return
	}
	s.metrics.RecordCodecOperation("encode", true, len(buf))
	sendBinary(w, buf)
}

// handleDecode godoc
//
//	@Summary	Decode a buffer
//	@Tags		codec
//	@Accept		octet-stream
//	@Produce	json
//	@Success	200	{object}	DecodeResponse
//	@Failure	400	{object}	APIResponse
//	@Router		/decode [post]
func (s *Server) handleDecode(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	rec, err := s.codec.Decode(body)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false, 0)
		sendError(w, fmt.Sprintf("Failed to decode buffer: %v", err), statusFor(err))
		return
	}
	s.metrics.RecordCodecOperation("decode", true, len(body))
	sendSuccess(w, s.decodeResponse(rec))
}

// handleCreateRecord godoc
//
//	@Summary	Store a record
//	@Description	Accepts a JSON record or an encoded buffer (application/octet-stream)
//	@Tags		records
//	@Accept		json,octet-stream
//	@Produce	json
//	@Success	201	{object}	RecordResponse
//	@Failure	400	{object}	APIResponse
//	@Router		/records [post]
func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	var (
		id  ksuid.KSUID
		err error
	)
	size := len(body)
	if mediaType(r.Header.Get("Content-Type")) == contentTypeOctetStream {
		id, err = s.archive.PutRaw(body)
	} else {
		rec, ok := s.parseJSONRecord(w, body)
		if !ok {
			return
		}
		size = s.codec.EncodedSize(rec)
		id, err = s.archive.Put(rec)
	}
	s.metrics.RecordArchiveOperation("put", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to store record: %v", err), statusFor(err))
		return
	}

	sendCreated(w, RecordResponse{ID: id.String(), Size: size})
}

// handleListRecords godoc
//
//	@Summary	List record IDs
//	@Tags		records
//	@Produce	json
//	@Success	200	{array}	string
//	@Router		/records [get]
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ids, err := s.archive.List()
	s.metrics.RecordArchiveOperation("list", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list records: %v", err), statusFor(err))
		return
	}
	s.metrics.UpdateArchiveStats(len(ids))

	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	sendSuccess(w, out)
}

// handleGetRecord godoc
//
//	@Summary	Get a record
//	@Description	Returns the decoded views, or the raw buffer with Accept: application/octet-stream
//	@Tags		records
//	@Produce	json,octet-stream
//	@Param		id	path		string	true	"Record ID"
//	@Success	200	{object}	RecordResponse
//	@Failure	404	{object}	APIResponse
//	@Router		/records/{id} [get]
func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRecordID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	buf, err := s.archive.GetRaw(id)
	s.metrics.RecordArchiveOperation("get", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to get record: %v", err), statusFor(err))
		return
	}

	if mediaType(r.Header.Get("Accept")) == contentTypeOctetStream {
		sendBinary(w, buf)
		return
	}

	rec, err := s.codec.Decode(buf)
	if err != nil {
		s.metrics.RecordCodecOperation("decode", false, 0)
		// A stored buffer that no longer decodes is a server-side problem.
		sendError(w, fmt.Sprintf("Stored record is corrupt: %v", err), http.StatusInternalServerError)
		return
	}
	s.metrics.RecordCodecOperation("decode", true, len(buf))

	view := s.decodeResponse(rec)
	sendSuccess(w, RecordResponse{
		ID:      id.String(),
		Size:    len(buf),
		Values:  view.Values,
		Entries: view.Entries,
	})
}

// handleUpdateRecord godoc
//
//	@Summary	Replace a record
//	@Tags		records
//	@Accept		json
//	@Produce	json
//	@Param		id	path		string	true	"Record ID"
//	@Success	200	{object}	RecordResponse
//	@Failure	404	{object}	APIResponse
//	@Router		/records/{id} [put]
func (s *Server) handleUpdateRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRecordID(w, r)
	if !ok {
		return
	}
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	rec, ok := s.parseJSONRecord(w, body)
	if !ok {
		return
	}

	start := time.Now()
	err := s.archive.Update(id, rec)
	s.metrics.RecordArchiveOperation("update", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to update record: %v", err), statusFor(err))
		return
	}
	sendSuccess(w, RecordResponse{ID: id.String(), Size: s.codec.EncodedSize(rec)})
}

// handleDeleteRecord godoc
//
//	@Summary	Delete a record
//	@Tags		records
//	@Param		id	path		string	true	"Record ID"
//	@Success	200	{object}	map[string]string
//	@Failure	404	{object}	APIResponse
//	@Router		/records/{id} [delete]
func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id, ok := parseRecordID(w, r)
	if !ok {
		return
	}

	start := time.Now()
	err := s.archive.Delete(id)
	s.metrics.RecordArchiveOperation("delete", err == nil, time.Since(start))
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to delete record: %v", err), statusFor(err))
		return
	}
	sendSuccess(w, map[string]string{"id": id.String(), "status": "deleted"})
}

// startMetricsUpdater periodically refreshes the archive gauge until ctx ends
func (s *Server) startMetricsUpdater(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ids, err := s.archive.List(); err == nil {
				s.metrics.UpdateArchiveStats(len(ids))
			}
		}
	}
}

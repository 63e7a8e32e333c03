// Package http provides helpers for writing JSON responses with a consistent envelope
package http

import (
	"encoding/json"
	stdhttp "net/http"
	"sync/atomic"

	perr "codespeak/internal/platform/errors"
	pnet "codespeak/internal/platform/net"
)

// debugDetail controls whether error envelopes carry the root-cause detail.
// Off in production configuration.
var debugDetail atomic.Bool

// SetDebugDetail toggles diagnostic detail on error envelopes
func SetDebugDetail(on bool) { debugDetail.Store(on) }

// Envelope is the standard response body for all endpoints
type Envelope struct {
	StatusCode int            `json:"status_code"`
	Status     string         `json:"status"`
	Code       perr.ErrorCode `json:"code,omitempty"`
	Error      string         `json:"error,omitempty"`
	Errors     []string       `json:"errors,omitempty"`
	Detail     string         `json:"detail,omitempty"`
	RequestID  string         `json:"request_id,omitempty"`
	Data       any            `json:"data,omitempty"`
	Page       *Page          `json:"page,omitempty"`
}

// Page describes pagination when returning lists
type Page struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"limit"`
	Pages    int `json:"pages"`
}

// JSON writes v as application/json with the given status
func JSON(w stdhttp.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// RespondError maps a project error into an envelope and writes it
func RespondError(w stdhttp.ResponseWriter, r *stdhttp.Request, err error) {
	errorEnvelope(err, pnet.RequestID(r.Context())).write(w)
}

// Response is a functional response object for return-style handlers
type Response struct {
	Status int
	Body   any
	// optional headers if a handler wants to add any
	Header stdhttp.Header
}

// Handle adapts a Response-returning handler to net/http
func Handle(h func(r *stdhttp.Request) Response) stdhttp.HandlerFunc {
	return func(w stdhttp.ResponseWriter, r *stdhttp.Request) {
		h(r).write(w, r)
	}
}

type envelopeWriter struct {
	status int
	env    Envelope
}

func (e envelopeWriter) write(w stdhttp.ResponseWriter) { JSON(w, e.status, e.env) }

func errorEnvelope(err error, reqID string) envelopeWriter {
	status := perr.HTTPStatus(err)
	wr := perr.WireFrom(err)
	env := Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		Code:       wr.Code,
		Error:      wr.Message,
		Errors:     wr.Details,
		RequestID:  reqID,
	}
	if debugDetail.Load() {
		if root := perr.Root(err); root != nil && root.Error() != wr.Message {
			env.Detail = root.Error()
		}
	}
	return envelopeWriter{status: status, env: env}
}

func (resp Response) write(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	status := resp.Status
	if status == 0 {
		status = stdhttp.StatusOK
	}
	// allow header overrides
	if resp.Header != nil {
		for k, vv := range resp.Header {
			for _, v := range vv {
				w.Header().Add(k, v)
			}
		}
	}
	if status == stdhttp.StatusNoContent {
		w.WriteHeader(stdhttp.StatusNoContent)
		return
	}

	reqID := pnet.RequestID(r.Context())

	// If Body is an error, derive status from error *before* building the envelope
	if err, ok := resp.Body.(error); ok && err != nil {
		errorEnvelope(err, reqID).write(w)
		return
	}

	// success path
	JSON(w, status, Envelope{
		StatusCode: status,
		Status:     stdhttp.StatusText(status),
		RequestID:  reqID,
		Data:       resp.Body,
	})
}

// OK returns a 200 response
func OK(data any) Response { return Response{Status: stdhttp.StatusOK, Body: data} }

// Created returns a 201 response
func Created(data any) Response { return Response{Status: stdhttp.StatusCreated, Body: data} }

// NoContent returns a 204 response
func NoContent() Response { return Response{Status: stdhttp.StatusNoContent} }

// Error returns a response that maps the error to status and envelope
func Error(err error) Response { return Response{Body: err} }

// List returns a 200 response with items and pagination
func List(items any, total, page, limit int) Response {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return OK(struct {
		Items any  `json:"items"`
		Page  Page `json:"pagination"`
	}{Items: items, Page: Page{Total: total, Page: page, PageSize: limit, Pages: pages}})
}

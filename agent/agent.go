/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

// Package agent exposes a server.Server over HTTP as JSON.
//
//	GET  /mbeans?query=<pattern>             list object names
//	GET  /mbeans/{name}                      descriptor
//	GET  /mbeans/{name}/attributes?names=a,b bulk read
//	POST /mbeans/{name}/attributes           bulk write
//	GET  /mbeans/{name}/attributes/{attr}    read
//	PUT  /mbeans/{name}/attributes/{attr}    write
//	POST /mbeans/{name}/operations/{op}      invoke
//
// Object names may be path-escaped. Unknown names answer 404, an
// unresolvable backing instance answers 503 and malformed input 400.
package agent

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"dirpx.dev/mbx/mbean"
	"dirpx.dev/mbx/server"
)

// resulter is implemented by mbean.Adapter. When available the agent can
// tell access failures apart from nil values.
type resulter interface {
	Get(name string) mbean.Result
	Set(name string, value any) mbean.Result
	Call(op string, args []any, signature []string) mbean.Result
}

// Handler serves the management API.
type Handler struct {
	srv      *server.Server
	log      *zap.Logger
	validate *validator.Validate
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger; nil keeps the no-op default.
func WithLogger(log *zap.Logger) Option {
	return func(h *Handler) {
		if log != nil {
			h.log = log
		}
	}
}

// New constructs a Handler over srv.
func New(srv *server.Server, opts ...Option) *Handler {
	h := &Handler{srv: srv, log: zap.NewNop(), validate: validator.New()}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes returns the router. Mount it at any prefix.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Logger(h.log))

	r.Get("/mbeans", h.list)
	r.Route("/mbeans/{name}", func(r chi.Router) {
		r.Get("/", h.descriptor)
		r.Get("/attributes", h.getAttributes)
		r.Post("/attributes", h.setAttributes)
		r.Get("/attributes/{attr}", h.getAttribute)
		r.Put("/attributes/{attr}", h.setAttribute)
		r.Post("/operations/{op}", h.invoke)
	})
	return r
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var pattern server.ObjectName
	if q := r.URL.Query().Get("query"); q != "" {
		p, err := server.ParseName(q)
		if err != nil {
			h.respondError(w, http.StatusBadRequest, err)
			return
		}
		pattern = p
	}
	names := h.srv.Names(pattern)
	out := nameList{Names: make([]string, len(names))}
	for i, n := range names {
		out.Names[i] = n.String()
	}
	h.respondJSON(w, http.StatusOK, out)
}

func (h *Handler) descriptor(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	d, err := h.srv.Descriptor(name)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, describe(name.String(), d))
}

func (h *Handler) getAttributes(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	var names []string
	for _, part := range strings.Split(r.URL.Query().Get("names"), ",") {
		if part = strings.TrimSpace(part); part != "" {
			names = append(names, part)
		}
	}
	if len(names) == 0 {
		d, err := h.srv.Descriptor(name)
		if err != nil {
			h.respondFailure(w, err)
			return
		}
		for _, a := range d.Attributes() {
			names = append(names, a.Name)
		}
	}
	got, err := h.srv.GetAttributes(name, names)
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toList(got))
}

func (h *Handler) setAttributes(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	var req attributeList
	if !h.decode(w, r, &req) {
		return
	}
	applied, err := h.srv.SetAttributes(name, fromList(req))
	if err != nil {
		h.respondFailure(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, toList(applied))
}

func (h *Handler) getAttribute(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	attr := chi.URLParam(r, "attr")
	h.respondResult(w, name, func(rs resulter) mbean.Result {
		return rs.Get(attr)
	}, func() (any, error) {
		return h.srv.GetAttribute(name, attr)
	})
}

func (h *Handler) setAttribute(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	var req setRequest
	if !h.decode(w, r, &req) {
		return
	}
	attr := chi.URLParam(r, "attr")
	h.respondResult(w, name, func(rs resulter) mbean.Result {
		return rs.Set(attr, req.Value)
	}, func() (any, error) {
		return req.Value, h.srv.SetAttribute(name, attr, req.Value)
	})
}

func (h *Handler) invoke(w http.ResponseWriter, r *http.Request) {
	name, ok := h.name(w, r)
	if !ok {
		return
	}
	var req invokeRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}
	op := chi.URLParam(r, "op")
	h.respondResult(w, name, func(rs resulter) mbean.Result {
		return rs.Call(op, req.Args, req.Signature)
	}, func() (any, error) {
		return h.srv.Invoke(name, op, req.Args, req.Signature)
	})
}

// respondResult prefers the discriminated result when the mbean offers it.
func (h *Handler) respondResult(w http.ResponseWriter, name server.ObjectName, rich func(resulter) mbean.Result, plain func() (any, error)) {
	mb, ok := h.srv.Lookup(name)
	if !ok {
		h.respondError(w, http.StatusNotFound, errors.New("mbean "+name.String()+" not registered"))
		return
	}
	rs, ok := mb.(resulter)
	if !ok {
		v, err := plain()
		if err != nil {
			h.respondFailure(w, err)
			return
		}
		h.respondJSON(w, http.StatusOK, valueResponse{Value: v})
		return
	}

	res := rich(rs)
	switch res.Status {
	case mbean.StatusOK:
		h.respondJSON(w, http.StatusOK, valueResponse{Value: res.Value})
	case mbean.StatusNotFound:
		h.respondStatus(w, http.StatusNotFound, res)
	case mbean.StatusUnresolved:
		h.respondStatus(w, http.StatusServiceUnavailable, res)
	default:
		h.respondStatus(w, http.StatusInternalServerError, res)
	}
}

func (h *Handler) name(w http.ResponseWriter, r *http.Request) (server.ObjectName, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return server.ObjectName{}, false
	}
	n, err := server.ParseName(raw)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err)
		return server.ObjectName{}, false
	}
	return n, true
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, errors.New("invalid request body: "+err.Error()))
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		h.respondError(w, http.StatusBadRequest, errors.New("validation error: "+err.Error()))
		return false
	}
	return true
}

// respondFailure maps protocol errors: unknown names are 404, anything else
// from a registered mbean is an unresolved backing instance.
func (h *Handler) respondFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, server.ErrNotRegistered),
		errors.Is(err, mbean.ErrAttributeNotFound),
		errors.Is(err, mbean.ErrOperationNotFound):
		h.respondError(w, http.StatusNotFound, err)
	default:
		h.respondError(w, http.StatusServiceUnavailable, err)
	}
}

func (h *Handler) respondStatus(w http.ResponseWriter, code int, res mbean.Result) {
	msg := res.Status.String()
	if res.Err != nil {
		msg = res.Err.Error()
	}
	h.respondJSON(w, code, errorResponse{Error: msg, Status: res.Status.String()})
}

func (h *Handler) respondError(w http.ResponseWriter, code int, err error) {
	h.respondJSON(w, code, errorResponse{Error: err.Error()})
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

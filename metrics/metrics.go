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

// Package metrics exports managed attributes as Prometheus gauges.
package metrics

import (
	"net/http"
	"reflect"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"dirpx.dev/mbx/server"
)

// Collector reads every numeric or boolean attribute of every registered
// mbean on each scrape.
type Collector struct {
	srv    *server.Server
	value  *prometheus.Desc
	mbeans *prometheus.Desc

	// HTTPRequests and HTTPDuration are fed by Instrument.
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a Collector over srv. Register it with a
// prometheus.Registerer to export it.
func NewCollector(namespace string, srv *server.Server) *Collector {
	return &Collector{
		srv: srv,
		value: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "attribute_value"),
			"Current value of a numeric or boolean managed attribute",
			[]string{"object_name", "attribute"}, nil,
		),
		mbeans: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "mbeans"),
			"Number of registered mbeans",
			nil, nil,
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of management HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Management HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.value
	ch <- c.mbeans
	c.HTTPRequests.Describe(ch)
	c.HTTPDuration.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	names := c.srv.Names(server.ObjectName{})
	ch <- prometheus.MustNewConstMetric(c.mbeans, prometheus.GaugeValue, float64(len(names)))

	for _, name := range names {
		mb, ok := c.srv.Lookup(name)
		if !ok {
			continue
		}
		var attrs []string
		for _, a := range mb.Descriptor().Attributes() {
			attrs = append(attrs, a.Name)
		}
		object := name.String()
		for _, a := range mb.GetAttributes(attrs) {
			if f, ok := Float(a.Value); ok {
				ch <- prometheus.MustNewConstMetric(c.value, prometheus.GaugeValue, f, object, a.Name)
			}
		}
	}
	c.HTTPRequests.Collect(ch)
	c.HTTPDuration.Collect(ch)
}

// Float converts numeric and boolean values to float64.
func Float(v any) (float64, bool) {
	if v == nil {
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		if rv.Bool() {
			return 1, true
		}
		return 0, true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// Instrument counts and times requests by chi route pattern.
func (c *Collector) Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				route = p
			}
		}
		c.HTTPRequests.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
		c.HTTPDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}

// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// ObservabilityRecorder is component O: additive hooks called around
// dispatch (§2 EXPANSION). It never sits on the routing hot path's
// correctness — a nil recorder simply skips every hook.
type ObservabilityRecorder interface {
	// OnRequestStart is called once resolution and context preparation
	// have completed, before the dispatch chain runs. The returned state
	// is opaque to the Router and passed back to OnRequestEnd.
	OnRequestStart(c *Context) any

	// OnRequestEnd is called after the dispatch chain and error rescue
	// have produced a final status.
	OnRequestEnd(c *Context, state any, status int)

	// OnSecondaryFailure is called when rescueToResponse itself fails to
	// serialize an error response (§4.K "surface the secondary failure
	// to an event listener").
	OnSecondaryFailure(c *Context, err error)
}

// otelObservability is the default ObservabilityRecorder, grounded in the
// teacher's tracing.go/metrics.go split: one span per request, duration +
// status-class counters recorded at OnRequestEnd.
type otelObservability struct {
	tracer          trace.Tracer
	requestDuration metric.Float64Histogram
	requestTotal    metric.Int64Counter
	secondaryErrors metric.Int64Counter
}

type otelRequestState struct {
	span  trace.Span
	start time.Time
}

// NewOTelObservability builds an ObservabilityRecorder backed by the
// given tracer and meter, matching the teacher's pattern of accepting
// already-configured OTel providers rather than owning provider setup
// itself (provider wiring is the application's responsibility, as in
// router/tracing.go and router/metrics_providers.go).
func NewOTelObservability(tracer trace.Tracer, meter metric.Meter) (ObservabilityRecorder, error) {
	duration, err := meter.Float64Histogram(
		"router.request.duration",
		metric.WithDescription("Request dispatch duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	total, err := meter.Int64Counter(
		"router.request.total",
		metric.WithDescription("Total requests dispatched, by status class"),
	)
	if err != nil {
		return nil, err
	}
	secondary, err := meter.Int64Counter(
		"router.error_rescue.secondary_failures",
		metric.WithDescription("Failures converting an Error into a Response"),
	)
	if err != nil {
		return nil, err
	}

	return &otelObservability{
		tracer:          tracer,
		requestDuration: duration,
		requestTotal:    total,
		secondaryErrors: secondary,
	}, nil
}

func (o *otelObservability) OnRequestStart(c *Context) any {
	ctx, span := o.tracer.Start(c.RequestContext(), c.Method()+" "+c.URI().Path)
	c.Request = c.Request.WithContext(ctx)
	return &otelRequestState{span: span, start: time.Now()}
}

func (o *otelObservability) OnRequestEnd(c *Context, state any, status int) {
	st, ok := state.(*otelRequestState)
	if !ok || st == nil {
		return
	}

	st.span.SetAttributes(attribute.Int("http.status_code", status))
	st.span.End()

	attrs := metric.WithAttributes(
		attribute.String("http.method", c.Method()),
		attribute.String("http.status_class", statusClass(status)),
	)
	o.requestDuration.Record(c.RequestContext(), time.Since(st.start).Seconds(), attrs)
	o.requestTotal.Add(c.RequestContext(), 1, attrs)
}

func (o *otelObservability) OnSecondaryFailure(c *Context, err error) {
	o.secondaryErrors.Add(c.RequestContext(), 1)
	c.Logger().Error("error rescue: secondary serialization failure", "err", err)
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}

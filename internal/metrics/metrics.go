/*
 * Copyright (c) 2026, WSO2 LLC. (https://www.wso2.com).
 *
 * WSO2 LLC. licenses this file to you under the Apache License,
 * Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing,
 * software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
 * KIND, either express or implied.  See the License for the
 * specific language governing permissions and limitations
 * under the License.
 */

// Package metrics exposes Prometheus metrics for the REST-to-SOAP policy.
package metrics

import (
	"errors"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "rest_to_soap"
)

// Label values.
const (
	VariantStream      = "stream"
	VariantDeclarative = "declarative"

	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	// TransformationsTotal counts envelope renderings by variant and outcome.
	TransformationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transformations_total",
			Help:      "Total number of REST to SOAP envelope renderings",
		},
		[]string{"variant", "outcome"},
	)

	// TemplateDurationSeconds observes envelope template evaluation time.
	TemplateDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "template_duration_seconds",
			Help:      "Duration of envelope template evaluation in seconds",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"variant"},
	)

	// EnvelopeBytes observes the size of rendered envelopes.
	EnvelopeBytes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "envelope_bytes",
			Help:      "Size of rendered SOAP envelopes in bytes",
			Buckets:   prometheus.ExponentialBuckets(256, 4, 8),
		},
	)
)

// Collectors are exposed through the default registerer of the host process.
func init() {
	Register(prometheus.DefaultRegisterer)
}

// Register adds the policy collectors to reg. Collectors that are already
// registered are skipped.
func Register(reg prometheus.Registerer) {
	for _, c := range []prometheus.Collector{TransformationsTotal, TemplateDurationSeconds, EnvelopeBytes} {
		if err := reg.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				slog.Warn("Failed to register REST to SOAP metric", "error", err)
			}
		}
	}
}

/*
Copyright 2024 The Kubeflow authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package metrics records submission metrics and pushes them to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/controller-runtime/pkg/metrics"

	"github.com/kubeflow/job-submitter/internal/jobstate"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

var (
	logger = log.Log.WithName("")
)

type SubmissionMetrics struct {
	prefix   string
	registry metrics.RegistererGatherer

	submitCount             *prometheus.CounterVec
	failedSubmissionCount   *prometheus.CounterVec
	provisionLatencySeconds *prometheus.HistogramVec
	statusQueryCount        *prometheus.CounterVec
}

// Option configures SubmissionMetrics.
type Option func(m *SubmissionMetrics)

// WithRegistry replaces the controller-runtime registry the metrics are registered to.
func WithRegistry(registry metrics.RegistererGatherer) Option {
	return func(m *SubmissionMetrics) {
		m.registry = registry
	}
}

func NewSubmissionMetrics(prefix string, provisionLatencyBuckets []float64, options ...Option) *SubmissionMetrics {
	m := &SubmissionMetrics{
		prefix:   prefix,
		registry: metrics.Registry,

		submitCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricName(prefix, common.MetricJobSubmitCount),
				Help: "Total number of jobs accepted by the launcher",
			},
			[]string{common.MetricLabelVirtualCluster},
		),
		failedSubmissionCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricName(prefix, common.MetricJobFailedSubmissionCount),
				Help: "Total number of failed job submissions",
			},
			[]string{common.MetricLabelVirtualCluster, common.MetricLabelErrorCode},
		),
		provisionLatencySeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    util.CreateValidMetricName(prefix, common.MetricJobProvisionLatencySeconds),
				Help:    "Time spent writing the job context to the distributed filesystem",
				Buckets: provisionLatencyBuckets,
			},
			[]string{common.MetricLabelVirtualCluster},
		),
		statusQueryCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: util.CreateValidMetricName(prefix, common.MetricJobStatusQueryCount),
				Help: "Total number of job status queries by returned job state",
			},
			[]string{common.MetricLabelJobState},
		),
	}
	for _, option := range options {
		option(m)
	}
	return m
}

func (m *SubmissionMetrics) Register() {
	if err := m.registry.Register(m.submitCount); err != nil {
		logger.Error(err, "Failed to register submission metric", "name", common.MetricJobSubmitCount)
	}
	if err := m.registry.Register(m.failedSubmissionCount); err != nil {
		logger.Error(err, "Failed to register submission metric", "name", common.MetricJobFailedSubmissionCount)
	}
	if err := m.registry.Register(m.provisionLatencySeconds); err != nil {
		logger.Error(err, "Failed to register submission metric", "name", common.MetricJobProvisionLatencySeconds)
	}
	if err := m.registry.Register(m.statusQueryCount); err != nil {
		logger.Error(err, "Failed to register submission metric", "name", common.MetricJobStatusQueryCount)
	}
}

// HandleSubmitted records a job accepted by the launcher.
func (m *SubmissionMetrics) HandleSubmitted(virtualCluster string) {
	m.submitCount.WithLabelValues(virtualCluster).Inc()
}

// HandleSubmissionFailure records a rejected submission by the code of err.
func (m *SubmissionMetrics) HandleSubmissionFailure(virtualCluster string, err error) {
	m.failedSubmissionCount.WithLabelValues(virtualCluster, string(apierrors.CodeOf(err))).Inc()
}

// ObserveProvisionLatency records the time spent provisioning a job context.
func (m *SubmissionMetrics) ObserveProvisionLatency(virtualCluster string, latency time.Duration) {
	m.provisionLatencySeconds.WithLabelValues(virtualCluster).Observe(latency.Seconds())
}

// HandleStatusQuery records a status query answered with state.
func (m *SubmissionMetrics) HandleStatusQuery(state jobstate.JobState) {
	m.statusQueryCount.WithLabelValues(string(state)).Inc()
}

// Push sends every metric of the registry to the Pushgateway at url under job.
func (m *SubmissionMetrics) Push(ctx context.Context, url, job string) error {
	if err := push.New(url, job).Gatherer(m.registry).AddContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %v", url, err)
	}
	logger.V(1).Info("Pushed submission metrics", "url", url, "job", job)
	return nil
}

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

package common

// Job submission metric names.
const (
	MetricJobSubmitCount = "job_submit_count"

	MetricJobFailedSubmissionCount = "job_failed_submission_count"

	MetricJobProvisionLatencySeconds = "job_provision_latency_seconds"

	MetricJobStatusQueryCount = "job_status_query_count"
)

// Metric label names.
const (
	MetricLabelVirtualCluster = "virtual_cluster"

	MetricLabelErrorCode = "error_code"

	MetricLabelJobState = "job_state"
)

/*
Copyright 2026 The Kubeflow authors.

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

// Package jobstate translates launcher framework and task states into user facing job states.
package jobstate

import (
	"k8s.io/utils/ptr"

	"github.com/kubeflow/job-submitter/pkg/common"
)

// JobState is the user facing state of a job or task.
type JobState string

const (
	JobStateWaiting   JobState = "WAITING"
	JobStateRunning   JobState = "RUNNING"
	JobStateSucceeded JobState = "SUCCEEDED"
	JobStateFailed    JobState = "FAILED"
	JobStateStopped   JobState = "STOPPED"
	JobStateUnknown   JobState = "UNKNOWN"
)

// DisplayStateStopping is shown for a live job its user asked to stop.
const DisplayStateStopping = "Stopping"

// Translate returns the job state of a framework in the given launcher state.
func Translate(frameworkState string, exitCode *int32) JobState {
	switch frameworkState {
	case common.FrameworkStateWaiting,
		common.FrameworkStateApplicationCreated,
		common.FrameworkStateApplicationLaunched,
		common.FrameworkStateApplicationWaiting:
		return JobStateWaiting
	case common.FrameworkStateApplicationRunning,
		common.FrameworkStateApplicationRetrievingDiagnostics,
		common.FrameworkStateApplicationCompleted:
		return JobStateRunning
	case common.FrameworkStateCompleted:
		return completedState(exitCode)
	default:
		return JobStateUnknown
	}
}

// TranslateTask returns the state of a task in the given launcher task state.
func TranslateTask(taskState string, exitCode *int32) JobState {
	switch taskState {
	case common.TaskStateWaiting,
		common.TaskStateContainerRequested:
		return JobStateWaiting
	case common.TaskStateContainerAllocated,
		common.TaskStateContainerLaunched,
		common.TaskStateContainerRunning:
		return JobStateRunning
	case common.TaskStateContainerCompleted,
		common.TaskStateCompleted:
		return completedState(exitCode)
	default:
		return JobStateUnknown
	}
}

func completedState(exitCode *int32) JobState {
	if exitCode == nil {
		return JobStateFailed
	}
	switch *exitCode {
	case 0:
		return JobStateSucceeded
	case common.ExitCodeStopped:
		return JobStateStopped
	default:
		return JobStateFailed
	}
}

// IsFinal reports whether a job in state will not change state anymore.
func IsFinal(state JobState) bool {
	switch state {
	case JobStateSucceeded, JobStateFailed, JobStateStopped:
		return true
	default:
		return false
	}
}

// DisplayState returns the label shown to users. A waiting or running job with execution
// type STOP is shown as stopping.
func DisplayState(state JobState, executionType string) string {
	if executionType == common.ExecutionTypeStop && (state == JobStateWaiting || state == JobStateRunning) {
		return DisplayStateStopping
	}
	return string(state)
}

// RetryCounters are the retry counters of a framework. Absent counters are nil.
type RetryCounters struct {
	SucceededRetriedCount         *int32 `json:"succeededRetriedCount,omitempty"`
	TransientNormalRetriedCount   *int32 `json:"transientNormalRetriedCount,omitempty"`
	TransientConflictRetriedCount *int32 `json:"transientConflictRetriedCount,omitempty"`
	NonTransientRetriedCount      *int32 `json:"nonTransientRetriedCount,omitempty"`
	UnKnownRetriedCount           *int32 `json:"unKnownRetriedCount,omitempty"`
}

// Retries returns the number of retries reported to users.
func Retries(counters RetryCounters) int32 {
	return ptr.Deref(counters.SucceededRetriedCount, 0) +
		ptr.Deref(counters.TransientNormalRetriedCount, 0) +
		ptr.Deref(counters.TransientConflictRetriedCount, 0) +
		ptr.Deref(counters.NonTransientRetriedCount, 0) +
		ptr.Deref(counters.UnKnownRetriedCount, 0)
}

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

// Package launcher submits, queries and stops frameworks on a cluster launcher.
package launcher

import (
	"context"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/jobstate"
)

// Launcher types.
const (
	TypeYARN       = "yarn"
	TypeKubernetes = "kubernetes"
)

// Launcher is a cluster launcher.
type Launcher interface {
	// Submit creates the framework described by req. It returns an UnknownError when the
	// launcher does not accept it.
	Submit(ctx context.Context, req *SubmitRequest) error
	// Get returns the status of a framework, or a NoJobError if it does not exist.
	Get(ctx context.Context, name string) (*FrameworkStatus, error)
	// Stop asks the launcher to stop a framework.
	Stop(ctx context.Context, user, name string) error
	// List returns the frameworks of a user, or of every user if user is empty.
	List(ctx context.Context, user string) ([]FrameworkSummary, error)
}

// SubmitRequest is a framework to submit.
type SubmitRequest struct {
	// Name is the framework name, {user}~{job}.
	Name           string
	User           string
	Config         *v1.JobConfig
	Descriptor     *framework.Descriptor
	DescriptorJSON []byte
	// JobStorageRoot is the job directory qualified with the default filesystem URI.
	JobStorageRoot string
}

// FrameworkStatus is the status of a framework expressed in launcher states.
type FrameworkStatus struct {
	Name                   string
	User                   string
	VirtualCluster         string
	ExecutionType          string
	FrameworkState         string
	ApplicationExitCode    *int32
	ApplicationID          string
	ApplicationDiagnostics string
	RetryCounters          jobstate.RetryCounters
	CreatedTimestamp       int64
	CompletedTimestamp     int64
	// TaskRoles are keyed by task role name and ordered by task index.
	TaskRoles map[string][]TaskStatus
}

// TaskStatus is the status of one task.
type TaskStatus struct {
	Index             int32
	State             string
	ContainerID       string
	ContainerIP       string
	ContainerPorts    string
	ContainerLogURL   string
	ContainerExitCode *int32
}

// FrameworkSummary is a framework in a list.
type FrameworkSummary struct {
	Name                string
	User                string
	VirtualCluster      string
	ExecutionType       string
	FrameworkState      string
	ApplicationExitCode *int32
	RetryCounters       jobstate.RetryCounters
	CreatedTimestamp    int64
	CompletedTimestamp  int64
	TotalTaskNumber     int32
	TotalGPUNumber      int32
}

// State returns the job state of the framework.
func (s *FrameworkStatus) State() jobstate.JobState {
	return jobstate.Translate(s.FrameworkState, s.ApplicationExitCode)
}

// State returns the job state of the framework.
func (s *FrameworkSummary) State() jobstate.JobState {
	return jobstate.Translate(s.FrameworkState, s.ApplicationExitCode)
}

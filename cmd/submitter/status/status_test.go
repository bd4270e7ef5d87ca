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

package status

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"

	"github.com/kubeflow/job-submitter/internal/jobstate"
	"github.com/kubeflow/job-submitter/internal/submission"
)

func TestPrintStatus(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	status := &submission.JobStatus{
		Name:                   "mnist",
		User:                   "alice",
		VirtualCluster:         "default",
		State:                  jobstate.JobStateFailed,
		DisplayState:           "FAILED",
		Retries:                2,
		ApplicationExitCode:    ptr.To[int32](1),
		ApplicationDiagnostics: "container exited with 1",
		CreatedTimestamp:       created.UnixMilli(),
		TaskRoles: map[string][]submission.TaskDetail{
			"worker": {
				{Index: 0, State: jobstate.JobStateFailed, ContainerIP: "10.0.0.1", ExitCode: ptr.To[int32](1)},
			},
		},
	}

	var buf bytes.Buffer
	printStatus(&buf, status, created.Add(90*time.Second))
	out := buf.String()

	assert.Contains(t, out, "job state:")
	assert.Contains(t, out, "mnist")
	assert.Contains(t, out, "FAILED")
	assert.Contains(t, out, "2026-01-01T00:00:00Z")
	assert.Contains(t, out, "1m30s")
	assert.Contains(t, out, "container exited with 1")
	assert.Contains(t, out, "task state:")
	assert.Contains(t, out, "10.0.0.1")
}

func TestPrintStatusWithoutTasks(t *testing.T) {
	var buf bytes.Buffer
	printStatus(&buf, &submission.JobStatus{Name: "mnist", DisplayState: "WAITING"}, time.Now())
	assert.NotContains(t, buf.String(), "task state:")
	assert.Contains(t, buf.String(), "N.A.")
}

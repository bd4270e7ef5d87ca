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

package v2

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/kubeflow/job-submitter/pkg/apierrors"
)

const testSpecYAML = `
protocolVersion: 2
name: mnist
type: job
prerequisites:
- type: dockerimage
  name: image
  uri: openpai/tensorflow:latest
- type: data
  name: dataset
  uri:
  - hdfs://namenode:9000/data/mnist
  - http://example.com/labels.tgz
parameters:
  epochs: 10
taskRoles:
  worker:
    instances: 2
    cpuNumber: 4
    memoryMB: 8192
    gpuNumber: 1
    dockerImage: image
    data: dataset
    command:
    - python train.py --epochs $$epochs$$
`

func TestParse(t *testing.T) {
	spec, err := Parse([]byte(testSpecYAML))
	require.NoError(t, err)

	assert.Equal(t, intstr.FromInt32(2), spec.ProtocolVersion)
	assert.Equal(t, "mnist", spec.Name)
	require.Len(t, spec.Prerequisites, 2)
	assert.Equal(t, URIList{"openpai/tensorflow:latest"}, spec.Prerequisites[0].URI)
	assert.Equal(t, URIList{"hdfs://namenode:9000/data/mnist", "http://example.com/labels.tgz"}, spec.Prerequisites[1].URI)
	assert.Equal(t, float64(10), spec.Parameters["epochs"])

	worker := spec.TaskRoles["worker"]
	assert.Equal(t, int32(2), worker.Instances)
	assert.Equal(t, map[PrerequisiteType]string{
		PrerequisiteTypeDockerImage: "image",
		PrerequisiteTypeData:        "dataset",
	}, worker.PrerequisiteReferences())

	SetJobSpecDefaults(spec)
	assert.NoError(t, Validate(spec))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*JobSpec)
		wantError bool
		contains  string
	}{
		{
			name:   "valid spec",
			mutate: func(*JobSpec) {},
		},
		{
			name:      "parent directory as job name",
			mutate:    func(s *JobSpec) { s.Name = ".." },
			wantError: true,
			contains:  "/name",
		},
		{
			name:      "current directory as job name",
			mutate:    func(s *JobSpec) { s.Name = "." },
			wantError: true,
			contains:  "/name",
		},
		{
			name:   "dots inside job name",
			mutate: func(s *JobSpec) { s.Name = "mnist..v1.~" },
		},
		{
			name: "minFailedTaskCount greater than instances",
			mutate: func(s *JobSpec) {
				role := s.TaskRoles["worker"]
				role.MinFailedTaskCount = ptr.To[int32](3)
				s.TaskRoles["worker"] = role
			},
			wantError: true,
			contains:  "minFailedTaskCount 3 is greater than instances 2",
		},
		{
			name: "unknown prerequisite type",
			mutate: func(s *JobSpec) {
				s.Prerequisites[0].Type = "volume"
			},
			wantError: true,
			contains:  "/prerequisites/0/type",
		},
		{
			name: "empty command",
			mutate: func(s *JobSpec) {
				role := s.TaskRoles["worker"]
				role.Command = []string{}
				s.TaskRoles["worker"] = role
			},
			wantError: true,
			contains:  "/taskRoles/worker/command",
		},
		{
			name: "no task roles",
			mutate: func(s *JobSpec) {
				s.TaskRoles = map[string]TaskRole{}
			},
			wantError: true,
			contains:  "/taskRoles",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec, err := Parse([]byte(testSpecYAML))
			require.NoError(t, err)
			SetJobSpecDefaults(spec)
			tc.mutate(spec)

			err = Validate(spec)
			if !tc.wantError {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apierrors.IsInvalidParameters(err))
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestSetJobSpecDefaults(t *testing.T) {
	spec := &JobSpec{
		Name: "job",
		TaskRoles: map[string]TaskRole{
			"worker": {Command: []string{"echo"}},
		},
	}
	SetJobSpecDefaults(spec)

	assert.Equal(t, intstr.FromInt32(2), spec.ProtocolVersion)
	assert.Equal(t, "default", spec.VirtualCluster)
	assert.Equal(t, ptr.To[int32](0), spec.RetryCount)
	assert.Equal(t, TaskRole{
		Instances:          1,
		ShmMB:              64,
		MinFailedTaskCount: ptr.To[int32](1),
		Command:            []string{"echo"},
	}, spec.TaskRoles["worker"])
}

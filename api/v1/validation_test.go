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

package v1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/kubeflow/job-submitter/pkg/apierrors"
)

func newTestJobConfig() *JobConfig {
	return &JobConfig{
		JobName: "mnist",
		Image:   "openpai/tensorflow:latest",
		TaskRoles: []TaskRole{
			{
				Name:       "worker",
				TaskNumber: 2,
				CPUNumber:  4,
				MemoryMB:   8192,
				GPUNumber:  1,
				Command:    "python train.py",
			},
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*JobConfig)
		wantError bool
		contains  string
	}{
		{
			name:   "valid config",
			mutate: func(*JobConfig) {},
		},
		{
			name:      "parent directory as job name",
			mutate:    func(c *JobConfig) { c.JobName = ".." },
			wantError: true,
			contains:  "/jobName",
		},
		{
			name:      "current directory as job name",
			mutate:    func(c *JobConfig) { c.JobName = "." },
			wantError: true,
			contains:  "/jobName",
		},
		{
			name: "minFailedTaskCount greater than taskNumber",
			mutate: func(c *JobConfig) {
				c.TaskRoles[0].MinFailedTaskCount = ptr.To[int32](3)
			},
			wantError: true,
			contains:  "minFailedTaskCount 3 is greater than taskNumber 2",
		},
		{
			name: "minSucceededTaskCount greater than taskNumber",
			mutate: func(c *JobConfig) {
				c.TaskRoles[0].MinSucceededTaskCount = ptr.To[int32](5)
			},
			wantError: true,
			contains:  "minSucceededTaskCount 5 is greater than taskNumber 2",
		},
		{
			name: "min counts equal to taskNumber",
			mutate: func(c *JobConfig) {
				c.TaskRoles[0].MinFailedTaskCount = ptr.To[int32](2)
				c.TaskRoles[0].MinSucceededTaskCount = ptr.To[int32](2)
			},
		},
		{
			name: "duplicated task role",
			mutate: func(c *JobConfig) {
				c.TaskRoles = append(c.TaskRoles, c.TaskRoles[0])
			},
			wantError: true,
			contains:  "task role worker is duplicated",
		},
		{
			name: "duplicated port label",
			mutate: func(c *JobConfig) {
				c.TaskRoles[0].PortList = []Port{{Label: "tb", PortNumber: 1}, {Label: "tb", PortNumber: 2}}
			},
			wantError: true,
			contains:  "port label tb is duplicated",
		},
		{
			name: "invalid job name",
			mutate: func(c *JobConfig) {
				c.JobName = "bad name"
			},
			wantError: true,
			contains:  "/jobName",
		},
		{
			name: "zero task number",
			mutate: func(c *JobConfig) {
				c.TaskRoles[0].TaskNumber = 0
			},
			wantError: true,
			contains:  "/taskRoles/0/taskNumber",
		},
		{
			name: "no task roles",
			mutate: func(c *JobConfig) {
				c.TaskRoles = nil
			},
			wantError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := newTestJobConfig()
			tc.mutate(config)
			err := Validate(config)
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

func TestParse(t *testing.T) {
	data := []byte(`
jobName: mnist
image: openpai/tensorflow:latest
taskRoles:
- name: worker
  taskNumber: 1
  cpuNumber: 2
  memoryMB: 4096
  command: python train.py
  portList:
  - label: tensorboard
    beginAt: 0
    portNumber: 1
`)
	config, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "mnist", config.JobName)
	require.Len(t, config.TaskRoles, 1)
	assert.Equal(t, []Port{{Label: "tensorboard", PortNumber: 1}}, config.TaskRoles[0].PortList)
	assert.NoError(t, Validate(config))

	_, err = Parse([]byte("jobName: [unterminated"))
	assert.True(t, apierrors.IsInvalidParameters(err))
}

func TestTaskRoleImage(t *testing.T) {
	config := newTestJobConfig()
	assert.Equal(t, "openpai/tensorflow:latest", config.TaskRoleImage(&config.TaskRoles[0]))
	config.TaskRoles[0].DockerImage = "openpai/pytorch:latest"
	assert.Equal(t, "openpai/pytorch:latest", config.TaskRoleImage(&config.TaskRoles[0]))
}

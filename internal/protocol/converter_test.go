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

package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	v2 "github.com/kubeflow/job-submitter/api/v2"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
)

func newTestJobSpec() *v2.JobSpec {
	return &v2.JobSpec{
		ProtocolVersion: intstr.FromInt32(2),
		Name:            "mnist",
		VirtualCluster:  "vc1",
		RetryCount:      ptr.To[int32](1),
		Parameters: map[string]interface{}{
			ParameterDataDir: "hdfs://namenode:9000/data",
		},
		Prerequisites: []v2.Prerequisite{
			{Type: v2.PrerequisiteTypeDockerImage, Name: "tf", URI: v2.URIList{"openpai/tensorflow:latest"}},
			{Type: v2.PrerequisiteTypeDockerImage, Name: "torch", URI: v2.URIList{"openpai/pytorch:latest"}},
			{Type: v2.PrerequisiteTypeData, Name: "mnist", URI: v2.URIList{"hdfs://namenode:9000/data/mnist", "https://example.com/labels.tgz"}},
			{Type: v2.PrerequisiteTypeScript, Name: "code", URI: v2.URIList{"git+https://github.com/example/models.git#v1.0"}},
			{Type: v2.PrerequisiteTypeStorage, Name: "output", URI: v2.URIList{"hdfs://namenode:9000/output/mnist"}},
		},
		TaskRoles: map[string]v2.TaskRole{
			"worker": {
				Instances:          2,
				CPUNumber:          4,
				MemoryMB:           8192,
				ShmMB:              64,
				GPUNumber:          1,
				MinFailedTaskCount: ptr.To[int32](1),
				PortList:           []v2.Port{{Label: "tensorboard", PortNumber: 1}},
				Command:            []string{"cd $PAI_WORK_DIR/script/code", "python train.py"},
				DockerImage:        "tf",
				Data:               "mnist",
				Script:             "code",
				Storage:            "output",
			},
			"ps": {
				Instances:   1,
				CPUNumber:   2,
				MemoryMB:    4096,
				Command:     []string{"python ps.py"},
				DockerImage: "torch",
			},
		},
	}
}

func TestConvertToV1(t *testing.T) {
	config, err := ConvertToV1(newTestJobSpec())
	require.NoError(t, err)

	assert.Equal(t, "mnist", config.JobName)
	assert.Equal(t, "openpai/pytorch:latest", config.Image)
	assert.Equal(t, "hdfs://namenode:9000/data", config.DataDir)
	assert.Equal(t, "vc1", config.VirtualCluster)
	assert.Equal(t, ptr.To[int32](1), config.RetryCount)
	require.Len(t, config.TaskRoles, 2)

	ps := config.TaskRoles[0]
	assert.Equal(t, v1.TaskRole{
		Name:       "ps",
		TaskNumber: 1,
		CPUNumber:  2,
		MemoryMB:   4096,
		Command:    "python ps.py",
	}, ps)

	worker := config.TaskRoles[1]
	assert.Equal(t, "worker", worker.Name)
	assert.Equal(t, int32(2), worker.TaskNumber)
	assert.Equal(t, "openpai/tensorflow:latest", worker.DockerImage)
	assert.Equal(t, []v1.Port{{Label: "tensorboard", PortNumber: 1}}, worker.PortList)
	assert.Equal(t, ptr.To[int32](1), worker.MinFailedTaskCount)

	expectedCommand := "" +
		"mkdir -p $PAI_WORK_DIR/data/mnist;" +
		"if hdfs dfs -test -e hdfs://namenode:9000/data/mnist; then hdfs dfs -get hdfs://namenode:9000/data/mnist $PAI_WORK_DIR/data/mnist; else mkdir -p $PAI_WORK_DIR/data/mnist/mnist; fi;" +
		"mkdir -p $PAI_WORK_DIR/data/mnist;" +
		"wget -q -P $PAI_WORK_DIR/data/mnist https://example.com/labels.tgz;" +
		"mkdir -p $PAI_WORK_DIR/script/code;" +
		"git clone https://github.com/example/models.git $PAI_WORK_DIR/script/code;" +
		"git -C $PAI_WORK_DIR/script/code checkout v1.0;" +
		"mkdir -p $PAI_WORK_DIR/storage/output;" +
		"if hdfs dfs -test -e hdfs://namenode:9000/output/mnist; then hdfs dfs -get hdfs://namenode:9000/output/mnist $PAI_WORK_DIR/storage/output; else mkdir -p $PAI_WORK_DIR/storage/output/mnist; fi;" +
		"cd $PAI_WORK_DIR/script/code;" +
		"python train.py;" +
		"if ! hdfs dfs -test -e hdfs://namenode:9000/output/mnist; then hdfs dfs -mkdir -p hdfs://namenode:9000/output/mnist; fi;" +
		"hdfs dfs -put -f $PAI_WORK_DIR/storage/output/mnist/. hdfs://namenode:9000/output/mnist"
	assert.Equal(t, expectedCommand, worker.Command)
}

func TestConvertToV1Errors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(*v2.JobSpec)
		contains string
	}{
		{
			name: "missing data prerequisite",
			mutate: func(s *v2.JobSpec) {
				role := s.TaskRoles["worker"]
				role.Data = "missing"
				s.TaskRoles["worker"] = role
			},
			contains: "data prerequisite missing is not found",
		},
		{
			name: "missing dockerimage prerequisite",
			mutate: func(s *v2.JobSpec) {
				role := s.TaskRoles["ps"]
				role.DockerImage = "missing"
				s.TaskRoles["ps"] = role
			},
			contains: "dockerimage prerequisite missing is not found",
		},
		{
			name: "ambiguous dockerimage",
			mutate: func(s *v2.JobSpec) {
				role := s.TaskRoles["ps"]
				role.DockerImage = ""
				s.TaskRoles["ps"] = role
			},
			contains: "more than one",
		},
		{
			name: "duplicated prerequisite",
			mutate: func(s *v2.JobSpec) {
				s.Prerequisites = append(s.Prerequisites, s.Prerequisites[2])
			},
			contains: "prerequisite data mnist is duplicated",
		},
		{
			name: "storage on http",
			mutate: func(s *v2.JobSpec) {
				s.Prerequisites[4].URI = v2.URIList{"http://example.com/output"}
			},
			contains: "storage output only supports hdfs uri",
		},
		{
			name: "unsupported scheme",
			mutate: func(s *v2.JobSpec) {
				s.Prerequisites[2].URI = v2.URIList{"s3://bucket/data"}
			},
			contains: `unsupported uri scheme "s3"`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			spec := newTestJobSpec()
			tc.mutate(spec)
			_, err := ConvertToV1(spec)
			require.Error(t, err)
			assert.True(t, apierrors.IsInvalidParameters(err))
			assert.Contains(t, err.Error(), tc.contains)
		})
	}
}

func TestConvertToV1SingleImage(t *testing.T) {
	spec := &v2.JobSpec{
		Name: "single",
		Prerequisites: []v2.Prerequisite{
			{Type: v2.PrerequisiteTypeDockerImage, Name: "image", URI: v2.URIList{"busybox"}},
		},
		TaskRoles: map[string]v2.TaskRole{
			"main": {Instances: 1, CPUNumber: 1, MemoryMB: 512, Command: []string{"echo hello"}},
		},
	}
	config, err := ConvertToV1(spec)
	require.NoError(t, err)
	assert.Equal(t, "busybox", config.Image)
	assert.Equal(t, "echo hello", config.TaskRoles[0].Command)
	assert.Empty(t, config.TaskRoles[0].DockerImage)
}

func TestGitRepoAndRef(t *testing.T) {
	tests := []struct {
		uri  string
		repo string
		ref  string
	}{
		{uri: "git+ssh://git@github.com/example/models.git", repo: "ssh://git@github.com/example/models.git", ref: "HEAD"},
		{uri: "git+https://github.com/example/models.git#main", repo: "https://github.com/example/models.git", ref: "main"},
		{uri: "git+https://github.com/example/models.git#", repo: "https://github.com/example/models.git", ref: "HEAD"},
	}
	for _, tc := range tests {
		t.Run(tc.uri, func(t *testing.T) {
			repo, ref := gitRepoAndRef(tc.uri)
			assert.Equal(t, tc.repo, repo)
			assert.Equal(t, tc.ref, ref)
		})
	}
}

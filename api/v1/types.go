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

// Package v1 contains the legacy flat job configuration: a job name, a single image and an
// ordered list of task roles each carrying one shell command.
package v1

// JobConfig is the v1 job configuration.
type JobConfig struct {
	// JobName is the name of the job, unique per user.
	JobName string `json:"jobName"`
	// Image is the default docker image of every task role.
	Image string `json:"image"`
	// AuthFile is the docker registry authentication file.
	// +optional
	AuthFile string `json:"authFile,omitempty"`
	// DataDir is the input data directory on the distributed filesystem.
	// +optional
	DataDir string `json:"dataDir,omitempty"`
	// OutputDir is the output directory on the distributed filesystem.
	// +optional
	OutputDir string `json:"outputDir,omitempty"`
	// CodeDir is the code directory on the distributed filesystem.
	// +optional
	CodeDir string `json:"codeDir,omitempty"`
	// VirtualCluster is the queue the job is submitted to.
	// +optional
	VirtualCluster string `json:"virtualCluster,omitempty"`
	// GpuType restricts task placement to nodes with this GPU type.
	// +optional
	GpuType string `json:"gpuType,omitempty"`
	// RetryCount is the maximum number of retries. -2 disables the fancy retry policy.
	// +optional
	RetryCount *int32 `json:"retryCount,omitempty"`
	// +optional
	GangAllocation *bool `json:"gangAllocation,omitempty"`
	// KillAllOnCompletedTaskNumber stops the job once this many tasks completed.
	// +optional
	KillAllOnCompletedTaskNumber *int32 `json:"killAllOnCompletedTaskNumber,omitempty"`
	// JobEnvs are exported in every container of the job.
	// +optional
	JobEnvs map[string]string `json:"jobEnvs,omitempty"`
	// TaskRoles are the task roles of the job.
	TaskRoles []TaskRole `json:"taskRoles"`
}

// TaskRole is a group of identical task instances.
type TaskRole struct {
	Name       string `json:"name"`
	TaskNumber int32  `json:"taskNumber"`
	CPUNumber  int32  `json:"cpuNumber"`
	MemoryMB   int32  `json:"memoryMB"`
	// +optional
	ShmMB int32 `json:"shmMB,omitempty"`
	// +optional
	GPUNumber int32 `json:"gpuNumber"`
	// +optional
	PortList []Port `json:"portList,omitempty"`
	Command  string `json:"command"`
	// MinFailedTaskCount fails the job once this many tasks of the role failed. Nil never fails early.
	// +optional
	MinFailedTaskCount *int32 `json:"minFailedTaskCount,omitempty"`
	// MinSucceededTaskCount succeeds the job once this many tasks of the role succeeded.
	// +optional
	MinSucceededTaskCount *int32 `json:"minSucceededTaskCount,omitempty"`
	// DockerImage overrides the job image for this role.
	// +optional
	DockerImage string `json:"dockerImage,omitempty"`
}

// Port is a named range of ports requested by a task role.
type Port struct {
	Label      string `json:"label"`
	BeginAt    int32  `json:"beginAt"`
	PortNumber int32  `json:"portNumber"`
}

// TaskRoleImage returns the image the given task role runs.
func (c *JobConfig) TaskRoleImage(role *TaskRole) string {
	if role.DockerImage != "" {
		return role.DockerImage
	}
	return c.Image
}

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

// Package v2 contains the declarative job specification: task roles keyed by name that
// reference shared prerequisites, plus job-level parameters.
package v2

import (
	"encoding/json"

	"k8s.io/apimachinery/pkg/util/intstr"
)

// PrerequisiteType is the type of a prerequisite.
type PrerequisiteType string

const (
	PrerequisiteTypeDockerImage PrerequisiteType = "dockerimage"
	PrerequisiteTypeData        PrerequisiteType = "data"
	PrerequisiteTypeScript      PrerequisiteType = "script"
	PrerequisiteTypeStorage     PrerequisiteType = "storage"
)

// JobSpec is the v2 job specification.
type JobSpec struct {
	// ProtocolVersion is the version of the job protocol, usually 2.
	ProtocolVersion intstr.IntOrString `json:"protocolVersion"`
	// Name is the name of the job, unique per user.
	Name string `json:"name"`
	// +optional
	Type string `json:"type,omitempty"`
	// +optional
	Description string `json:"description,omitempty"`
	// Prerequisites are the images, data, scripts and storage referenced by task roles.
	// +optional
	Prerequisites []Prerequisite `json:"prerequisites,omitempty"`
	// Parameters are substituted into "$$name$$" placeholders before validation.
	// +optional
	Parameters map[string]interface{} `json:"parameters,omitempty"`
	// TaskRoles are the task roles of the job keyed by name.
	TaskRoles map[string]TaskRole `json:"taskRoles"`
	// +optional
	RetryCount *int32 `json:"retryCount,omitempty"`
	// +optional
	GpuType string `json:"gpuType,omitempty"`
	// +optional
	VirtualCluster string `json:"virtualCluster,omitempty"`
	// +optional
	GangAllocation *bool `json:"gangAllocation,omitempty"`
	// +optional
	KillAllOnCompletedTaskNumber *int32 `json:"killAllOnCompletedTaskNumber,omitempty"`
	// +optional
	JobEnvs map[string]string `json:"jobEnvs,omitempty"`
}

// Prerequisite is a named resource shared by task roles.
type Prerequisite struct {
	Type PrerequisiteType `json:"type"`
	Name string           `json:"name"`
	URI  URIList          `json:"uri"`
	// +optional
	Description string `json:"description,omitempty"`
}

// URIList is a list of URIs that also accepts a single string.
type URIList []string

func (l *URIList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*l = URIList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*l = list
	return nil
}

// TaskRole is a group of identical task instances.
type TaskRole struct {
	Instances int32 `json:"instances"`
	CPUNumber int32 `json:"cpuNumber"`
	MemoryMB  int32 `json:"memoryMB"`
	// +optional
	ShmMB int32 `json:"shmMB,omitempty"`
	// +optional
	GPUNumber int32 `json:"gpuNumber"`
	// +optional
	MinFailedTaskCount *int32 `json:"minFailedTaskCount,omitempty"`
	// +optional
	MinSucceededTaskCount *int32 `json:"minSucceededTaskCount,omitempty"`
	// +optional
	PortList []Port  `json:"portList,omitempty"`
	Command  []string `json:"command"`
	// DockerImage is the name of a dockerimage prerequisite.
	// +optional
	DockerImage string `json:"dockerImage,omitempty"`
	// Data is the name of a data prerequisite.
	// +optional
	Data string `json:"data,omitempty"`
	// Script is the name of a script prerequisite.
	// +optional
	Script string `json:"script,omitempty"`
	// Storage is the name of a storage prerequisite.
	// +optional
	Storage string `json:"storage,omitempty"`
}

// Port is a named range of ports requested by a task role.
type Port struct {
	Label      string `json:"label"`
	BeginAt    int32  `json:"beginAt"`
	PortNumber int32  `json:"portNumber"`
}

// PrerequisiteReferences returns the prerequisite names referenced by role keyed by type.
// Empty references are omitted.
func (r *TaskRole) PrerequisiteReferences() map[PrerequisiteType]string {
	refs := make(map[PrerequisiteType]string, 4)
	for typ, name := range map[PrerequisiteType]string{
		PrerequisiteTypeDockerImage: r.DockerImage,
		PrerequisiteTypeData:        r.Data,
		PrerequisiteTypeScript:      r.Script,
		PrerequisiteTypeStorage:     r.Storage,
	} {
		if name != "" {
			refs[typ] = name
		}
	}
	return refs
}

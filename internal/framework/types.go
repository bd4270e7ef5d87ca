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

package framework

// Descriptor is the framework description accepted by the launcher.
type Descriptor struct {
	Version                    int32                      `json:"version"`
	User                       User                       `json:"user"`
	RetryPolicy                RetryPolicy                `json:"retryPolicy"`
	TaskRoles                  map[string]TaskRole        `json:"taskRoles"`
	PlatformSpecificParameters PlatformSpecificParameters `json:"platformSpecificParameters"`
}

type User struct {
	Name string `json:"name"`
}

type RetryPolicy struct {
	MaxRetryCount    int32 `json:"maxRetryCount"`
	FancyRetryPolicy bool  `json:"fancyRetryPolicy"`
}

type TaskRole struct {
	TaskNumber                  int32                       `json:"taskNumber"`
	TaskService                 TaskService                 `json:"taskService"`
	ApplicationCompletionPolicy ApplicationCompletionPolicy `json:"applicationCompletionPolicy"`
}

type TaskService struct {
	Version         int32    `json:"version"`
	EntryPoint      string   `json:"entryPoint"`
	SourceLocations []string `json:"sourceLocations"`
	Resource        Resource `json:"resource"`
}

type Resource struct {
	CPUNumber       int32                     `json:"cpuNumber"`
	MemoryMB        int32                     `json:"memoryMB"`
	GPUNumber       int32                     `json:"gpuNumber"`
	DiskType        int32                     `json:"diskType"`
	DiskMB          int32                     `json:"diskMB"`
	PortDefinitions map[string]PortDefinition `json:"portDefinitions"`
}

type PortDefinition struct {
	Start int32 `json:"start"`
	Count int32 `json:"count"`
}

// ApplicationCompletionPolicy decides when a task role completes the whole framework.
// A nil count is sent as null and never triggers completion.
type ApplicationCompletionPolicy struct {
	MinFailedTaskCount    *int32 `json:"minFailedTaskCount"`
	MinSucceededTaskCount *int32 `json:"minSucceededTaskCount"`
}

type PlatformSpecificParameters struct {
	Queue                        string      `json:"queue"`
	TaskNodeGpuType              *string     `json:"taskNodeGpuType"`
	GangAllocation               bool        `json:"gangAllocation"`
	KillAllOnAnyCompleted        bool        `json:"killAllOnAnyCompleted"`
	KillAllOnAnyServiceCompleted bool        `json:"killAllOnAnyServiceCompleted"`
	GenerateContainerIPList      bool        `json:"generateContainerIpList"`
	AMResource                   *AMResource `json:"amResource,omitempty"`
}

// AMResource is the resource of the application master of each framework.
type AMResource struct {
	CPUNumber int32 `json:"cpuNumber"`
	MemoryMB  int32 `json:"memoryMB"`
	DiskType  int32 `json:"diskType"`
	DiskMB    int32 `json:"diskMB"`
}

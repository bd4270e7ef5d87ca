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

// Package protocol converts between the v2 job specification and the v1 job configuration.
package protocol

import (
	"fmt"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	v2 "github.com/kubeflow/job-submitter/api/v2"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/util"
)

// Parameters carrying the v1 directory fields.
const (
	ParameterAuthFile  = "authFile"
	ParameterDataDir   = "dataDir"
	ParameterOutputDir = "outputDir"
	ParameterCodeDir   = "codeDir"
)

type prerequisiteKey struct {
	typ  v2.PrerequisiteType
	name string
}

type prerequisiteIndex map[prerequisiteKey]*v2.Prerequisite

func newPrerequisiteIndex(prerequisites []v2.Prerequisite) (prerequisiteIndex, error) {
	index := make(prerequisiteIndex, len(prerequisites))
	for i := range prerequisites {
		p := &prerequisites[i]
		key := prerequisiteKey{typ: p.Type, name: p.Name}
		if _, ok := index[key]; ok {
			return nil, apierrors.NewInvalidParameters("prerequisite %s %s is duplicated", p.Type, p.Name)
		}
		index[key] = p
	}
	return index, nil
}

// reference returns the prerequisite of type typ referenced by role, or nil if role references none.
func (index prerequisiteIndex) reference(role *v2.TaskRole, typ v2.PrerequisiteType) (*v2.Prerequisite, error) {
	name, ok := role.PrerequisiteReferences()[typ]
	if !ok {
		return nil, nil
	}
	prerequisite, ok := index[prerequisiteKey{typ: typ, name: name}]
	if !ok {
		return nil, fmt.Errorf("%s prerequisite %s is not found", typ, name)
	}
	return prerequisite, nil
}

// image returns the image of role. A role without dockerimage reference uses the only
// dockerimage prerequisite of the job, if there is exactly one.
func (index prerequisiteIndex) image(role *v2.TaskRole) (string, error) {
	prerequisite, err := index.reference(role, v2.PrerequisiteTypeDockerImage)
	if err != nil {
		return "", err
	}
	if prerequisite == nil {
		for key, p := range index {
			if key.typ != v2.PrerequisiteTypeDockerImage {
				continue
			}
			if prerequisite != nil {
				return "", fmt.Errorf("no dockerimage is referenced and the job has more than one")
			}
			prerequisite = p
		}
	}
	if prerequisite == nil {
		return "", fmt.Errorf("no dockerimage is referenced")
	}
	if len(prerequisite.URI) == 0 || prerequisite.URI[0] == "" {
		return "", fmt.Errorf("dockerimage %s has no uri", prerequisite.Name)
	}
	return prerequisite.URI[0], nil
}

// ConvertToV1 converts a resolved and validated v2 job spec into a v1 job config.
// Task roles are emitted in name order. The image of the first task role becomes the job image.
func ConvertToV1(spec *v2.JobSpec) (*v1.JobConfig, error) {
	index, err := newPrerequisiteIndex(spec.Prerequisites)
	if err != nil {
		return nil, err
	}

	config := &v1.JobConfig{
		JobName:                      spec.Name,
		AuthFile:                     stringParameter(spec.Parameters, ParameterAuthFile),
		DataDir:                      stringParameter(spec.Parameters, ParameterDataDir),
		OutputDir:                    stringParameter(spec.Parameters, ParameterOutputDir),
		CodeDir:                      stringParameter(spec.Parameters, ParameterCodeDir),
		VirtualCluster:               spec.VirtualCluster,
		GpuType:                      spec.GpuType,
		RetryCount:                   spec.RetryCount,
		GangAllocation:               spec.GangAllocation,
		KillAllOnCompletedTaskNumber: spec.KillAllOnCompletedTaskNumber,
		JobEnvs:                      spec.JobEnvs,
	}

	for _, name := range util.SortedKeys(spec.TaskRoles) {
		role := spec.TaskRoles[name]

		image, err := index.image(&role)
		if err != nil {
			return nil, apierrors.NewInvalidParameters("task role %s: %v", name, err)
		}
		command, err := buildTaskRoleCommand(name, &role, index)
		if err != nil {
			return nil, err
		}

		taskRole := v1.TaskRole{
			Name:                  name,
			TaskNumber:            role.Instances,
			CPUNumber:             role.CPUNumber,
			MemoryMB:              role.MemoryMB,
			ShmMB:                 role.ShmMB,
			GPUNumber:             role.GPUNumber,
			Command:               command,
			MinFailedTaskCount:    role.MinFailedTaskCount,
			MinSucceededTaskCount: role.MinSucceededTaskCount,
		}
		for _, port := range role.PortList {
			taskRole.PortList = append(taskRole.PortList, v1.Port{
				Label:      port.Label,
				BeginAt:    port.BeginAt,
				PortNumber: port.PortNumber,
			})
		}

		if config.Image == "" {
			config.Image = image
		} else if image != config.Image {
			taskRole.DockerImage = image
		}
		config.TaskRoles = append(config.TaskRoles, taskRole)
	}

	return config, nil
}

func stringParameter(parameters map[string]interface{}, key string) string {
	if s, ok := parameters[key].(string); ok {
		return s
	}
	return ""
}

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
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	v2 "github.com/kubeflow/job-submitter/api/v2"
	"github.com/kubeflow/job-submitter/pkg/common"
)

const (
	// ImagePrerequisiteName is the name of the dockerimage prerequisite holding the v1 job image.
	ImagePrerequisiteName = "image"

	jobType = "job"
)

// Upgrade converts a v1 job config into a v2 job spec.
func Upgrade(config *v1.JobConfig) *v2.JobSpec {
	spec := &v2.JobSpec{
		ProtocolVersion:              intstr.FromInt32(v2.ProtocolVersion),
		Name:                         config.JobName,
		Type:                         jobType,
		VirtualCluster:               config.VirtualCluster,
		GpuType:                      config.GpuType,
		RetryCount:                   config.RetryCount,
		GangAllocation:               config.GangAllocation,
		KillAllOnCompletedTaskNumber: config.KillAllOnCompletedTaskNumber,
		JobEnvs:                      config.JobEnvs,
		TaskRoles:                    make(map[string]v2.TaskRole, len(config.TaskRoles)),
	}

	if spec.VirtualCluster == "" {
		spec.VirtualCluster = common.DefaultVirtualCluster
	}
	if spec.RetryCount == nil {
		spec.RetryCount = ptr.To[int32](0)
	}

	if config.Image != "" {
		spec.Prerequisites = append(spec.Prerequisites, v2.Prerequisite{
			Type: v2.PrerequisiteTypeDockerImage,
			Name: ImagePrerequisiteName,
			URI:  v2.URIList{config.Image},
		})
	}

	for key, value := range map[string]string{
		ParameterAuthFile:  config.AuthFile,
		ParameterDataDir:   config.DataDir,
		ParameterOutputDir: config.OutputDir,
		ParameterCodeDir:   config.CodeDir,
	} {
		if value == "" {
			continue
		}
		if spec.Parameters == nil {
			spec.Parameters = map[string]interface{}{}
		}
		spec.Parameters[key] = value
	}

	for _, role := range config.TaskRoles {
		taskRole := v2.TaskRole{
			Instances:             role.TaskNumber,
			CPUNumber:             role.CPUNumber,
			MemoryMB:              role.MemoryMB,
			ShmMB:                 role.ShmMB,
			GPUNumber:             role.GPUNumber,
			MinFailedTaskCount:    role.MinFailedTaskCount,
			MinSucceededTaskCount: role.MinSucceededTaskCount,
			Command:               []string{role.Command},
		}
		if taskRole.MinFailedTaskCount == nil {
			taskRole.MinFailedTaskCount = ptr.To[int32](common.DefaultMinFailedTaskCount)
		}
		for _, port := range role.PortList {
			taskRole.PortList = append(taskRole.PortList, v2.Port{
				Label:      port.Label,
				BeginAt:    port.BeginAt,
				PortNumber: port.PortNumber,
			})
		}

		switch {
		case role.DockerImage != "" && role.DockerImage != config.Image:
			imageName := role.Name + "-" + ImagePrerequisiteName
			spec.Prerequisites = append(spec.Prerequisites, v2.Prerequisite{
				Type: v2.PrerequisiteTypeDockerImage,
				Name: imageName,
				URI:  v2.URIList{role.DockerImage},
			})
			taskRole.DockerImage = imageName
		case config.Image != "":
			taskRole.DockerImage = ImagePrerequisiteName
		}

		spec.TaskRoles[role.Name] = taskRole
	}

	return spec
}

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

// Package framework renders a job config into the launcher framework descriptor and the
// startup scripts of its containers.
package framework

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"k8s.io/utils/ptr"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

// Options configures a Generator.
type Options struct {
	// HDFSURI is the default filesystem URI used by container scripts, e.g. hdfs://namenode:9000.
	HDFSURI string
	// LauncherURI is the base URI of the launcher REST API polled by container scripts.
	LauncherURI string
	// AMResource is the application master resource of every framework. Nil leaves it to the launcher.
	AMResource *AMResource
}

// Generator builds descriptors and scripts. It performs no I/O.
type Generator struct {
	options Options
}

func NewGenerator(options Options) *Generator {
	return &Generator{options: options}
}

// Artifacts are the rendered artifacts of one job.
type Artifacts struct {
	Descriptor     *Descriptor
	DescriptorJSON []byte
	// YarnContainerScripts and DockerContainerScripts are keyed by task role name.
	YarnContainerScripts   map[string]string
	DockerContainerScripts map[string]string
}

// Generate renders the descriptor and both scripts of every task role.
func (g *Generator) Generate(user string, config *v1.JobConfig) (*Artifacts, error) {
	descriptor := g.Descriptor(user, config)
	descriptorJSON, err := json.MarshalIndent(descriptor, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal framework descriptor: %v", err)
	}

	artifacts := &Artifacts{
		Descriptor:             descriptor,
		DescriptorJSON:         descriptorJSON,
		YarnContainerScripts:   make(map[string]string, len(config.TaskRoles)),
		DockerContainerScripts: make(map[string]string, len(config.TaskRoles)),
	}
	for i := range config.TaskRoles {
		role := &config.TaskRoles[i]
		bindings := g.ScriptBindings(user, config, role)

		script, err := Render(TemplateYarnContainer, bindings)
		if err != nil {
			return nil, err
		}
		artifacts.YarnContainerScripts[role.Name] = script

		script, err = Render(TemplateDockerContainer, bindings)
		if err != nil {
			return nil, err
		}
		artifacts.DockerContainerScripts[role.Name] = script
	}
	return artifacts, nil
}

// Descriptor builds the framework descriptor of a job config.
func (g *Generator) Descriptor(user string, config *v1.JobConfig) *Descriptor {
	retryCount := ptr.Deref(config.RetryCount, 0)
	killAllOnCompleted := ptr.Deref(config.KillAllOnCompletedTaskNumber, 0) > 0

	descriptor := &Descriptor{
		Version: common.FrameworkDescriptorVersion,
		User:    User{Name: user},
		RetryPolicy: RetryPolicy{
			MaxRetryCount:    retryCount,
			FancyRetryPolicy: retryCount != common.RetryCountNoFancyRetry,
		},
		TaskRoles: make(map[string]TaskRole, len(config.TaskRoles)),
		PlatformSpecificParameters: PlatformSpecificParameters{
			Queue:                        config.VirtualCluster,
			GangAllocation:               ptr.Deref(config.GangAllocation, true),
			KillAllOnAnyCompleted:        killAllOnCompleted,
			KillAllOnAnyServiceCompleted: killAllOnCompleted,
			GenerateContainerIPList:      true,
			AMResource:                   g.options.AMResource,
		},
	}
	if descriptor.PlatformSpecificParameters.Queue == "" {
		descriptor.PlatformSpecificParameters.Queue = common.DefaultVirtualCluster
	}
	if config.GpuType != "" {
		descriptor.PlatformSpecificParameters.TaskNodeGpuType = ptr.To(config.GpuType)
	}

	sourceLocation := path.Join(util.JobDir(user, config.JobName), common.YarnContainerScriptsDir)
	for _, role := range config.TaskRoles {
		descriptor.TaskRoles[role.Name] = TaskRole{
			TaskNumber: role.TaskNumber,
			TaskService: TaskService{
				Version:         0,
				EntryPoint:      fmt.Sprintf("source %s/%s%s", common.YarnContainerScriptsDir, role.Name, common.ScriptFileExtension),
				SourceLocations: []string{sourceLocation},
				Resource: Resource{
					CPUNumber:       role.CPUNumber,
					MemoryMB:        role.MemoryMB,
					GPUNumber:       role.GPUNumber,
					PortDefinitions: portDefinitions(role.PortList),
				},
			},
			ApplicationCompletionPolicy: ApplicationCompletionPolicy{
				MinFailedTaskCount:    role.MinFailedTaskCount,
				MinSucceededTaskCount: role.MinSucceededTaskCount,
			},
		}
	}
	return descriptor
}

// portDefinitions returns the user ports plus the http and ssh ports when not requested.
func portDefinitions(ports []v1.Port) map[string]PortDefinition {
	definitions := map[string]PortDefinition{
		common.PortLabelHTTP: {Start: common.DefaultPortBeginAt, Count: common.DefaultPortNumber},
		common.PortLabelSSH:  {Start: common.DefaultPortBeginAt, Count: common.DefaultPortNumber},
	}
	for _, port := range ports {
		definitions[port.Label] = PortDefinition{Start: port.BeginAt, Count: port.PortNumber}
	}
	return definitions
}

// AggregatedStatusURI returns the launcher URI of the aggregated status of a framework.
func AggregatedStatusURI(launcherURI, frameworkName string) string {
	return fmt.Sprintf("%s/v1/Frameworks/%s/AggregatedFrameworkStatus", strings.TrimSuffix(launcherURI, "/"), frameworkName)
}

// FrameworkURI returns the launcher URI of a framework.
func FrameworkURI(launcherURI, frameworkName string) string {
	return fmt.Sprintf("%s/v1/Frameworks/%s", strings.TrimSuffix(launcherURI, "/"), frameworkName)
}

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
	"k8s.io/utils/ptr"

	"github.com/kubeflow/job-submitter/pkg/common"
)

// SetJobConfigDefaults sets default values for certain fields of a JobConfig.
func SetJobConfigDefaults(config *JobConfig) {
	if config == nil {
		return
	}

	if config.VirtualCluster == "" {
		config.VirtualCluster = common.DefaultVirtualCluster
	}

	if config.RetryCount == nil {
		config.RetryCount = ptr.To[int32](0)
	}

	if config.GangAllocation == nil {
		config.GangAllocation = ptr.To(true)
	}

	for i := range config.TaskRoles {
		setTaskRoleDefaults(&config.TaskRoles[i])
	}
}

func setTaskRoleDefaults(role *TaskRole) {
	if role.ShmMB == 0 {
		role.ShmMB = common.DefaultShmMB
	}
}

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
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"

	"github.com/kubeflow/job-submitter/pkg/common"
)

// ProtocolVersion is the protocol version of this package.
const ProtocolVersion = 2

// SetJobSpecDefaults sets default values for certain fields of a JobSpec.
func SetJobSpecDefaults(spec *JobSpec) {
	if spec == nil {
		return
	}

	if spec.ProtocolVersion.Type == intstr.Int && spec.ProtocolVersion.IntVal == 0 {
		spec.ProtocolVersion = intstr.FromInt32(ProtocolVersion)
	}

	if spec.VirtualCluster == "" {
		spec.VirtualCluster = common.DefaultVirtualCluster
	}

	if spec.RetryCount == nil {
		spec.RetryCount = ptr.To[int32](0)
	}

	for name, role := range spec.TaskRoles {
		setTaskRoleDefaults(&role)
		spec.TaskRoles[name] = role
	}
}

func setTaskRoleDefaults(role *TaskRole) {
	if role.Instances == 0 {
		role.Instances = 1
	}

	if role.ShmMB == 0 {
		role.ShmMB = common.DefaultShmMB
	}

	if role.MinFailedTaskCount == nil {
		role.MinFailedTaskCount = ptr.To[int32](common.DefaultMinFailedTaskCount)
	}
}

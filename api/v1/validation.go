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
	_ "embed"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/util"
)

const schemaURL = "https://github.com/kubeflow/job-submitter/api/v1/schema.json"

//go:embed schema.json
var schemaJSON []byte

var schema = util.MustCompileSchema(schemaURL, schemaJSON)

// Parse decodes a v1 job config from JSON or YAML.
func Parse(data []byte) (*JobConfig, error) {
	config := &JobConfig{}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, apierrors.NewInvalidParameters("failed to parse job config: %v", err)
	}
	return config, nil
}

// Validate checks config against the v1 schema and the task count constraints.
// All findings are reported together as an InvalidParametersError.
func Validate(config *JobConfig) error {
	var result *multierror.Error
	for _, err := range util.ValidateAgainstSchema(schema, config) {
		result = multierror.Append(result, err)
	}

	names := make(map[string]bool, len(config.TaskRoles))
	for _, role := range config.TaskRoles {
		if names[role.Name] {
			result = multierror.Append(result, fmt.Errorf("task role %s is duplicated", role.Name))
		}
		names[role.Name] = true

		if role.MinFailedTaskCount != nil && *role.MinFailedTaskCount > role.TaskNumber {
			result = multierror.Append(result, fmt.Errorf("task role %s: minFailedTaskCount %d is greater than taskNumber %d",
				role.Name, *role.MinFailedTaskCount, role.TaskNumber))
		}
		if role.MinSucceededTaskCount != nil && *role.MinSucceededTaskCount > role.TaskNumber {
			result = multierror.Append(result, fmt.Errorf("task role %s: minSucceededTaskCount %d is greater than taskNumber %d",
				role.Name, *role.MinSucceededTaskCount, role.TaskNumber))
		}

		labels := make(map[string]bool, len(role.PortList))
		for _, port := range role.PortList {
			if labels[port.Label] {
				result = multierror.Append(result, fmt.Errorf("task role %s: port label %s is duplicated", role.Name, port.Label))
			}
			labels[port.Label] = true
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = util.ListErrorFormat
	return &apierrors.Error{
		Code:    apierrors.CodeInvalidParameters,
		Message: fmt.Sprintf("invalid job config %s: %v", config.JobName, result),
		Err:     result,
	}
}

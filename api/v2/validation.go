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
	_ "embed"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/util"
)

const schemaURL = "https://github.com/kubeflow/job-submitter/api/v2/schema.json"

//go:embed schema.json
var schemaJSON []byte

var schema = util.MustCompileSchema(schemaURL, schemaJSON)

// Parse decodes a v2 job spec from YAML or JSON.
func Parse(data []byte) (*JobSpec, error) {
	spec := &JobSpec{}
	if err := yaml.Unmarshal(data, spec); err != nil {
		return nil, apierrors.NewInvalidParameters("failed to parse job spec: %v", err)
	}
	return spec, nil
}

// Validate checks spec against the v2 schema and the instance count constraints.
// All findings are reported together as an InvalidParametersError.
func Validate(spec *JobSpec) error {
	var result *multierror.Error
	for _, err := range util.ValidateAgainstSchema(schema, spec) {
		result = multierror.Append(result, err)
	}

	for _, name := range util.SortedKeys(spec.TaskRoles) {
		role := spec.TaskRoles[name]
		if role.MinFailedTaskCount != nil && *role.MinFailedTaskCount > role.Instances {
			result = multierror.Append(result, fmt.Errorf("task role %s: minFailedTaskCount %d is greater than instances %d",
				name, *role.MinFailedTaskCount, role.Instances))
		}
		if role.MinSucceededTaskCount != nil && *role.MinSucceededTaskCount > role.Instances {
			result = multierror.Append(result, fmt.Errorf("task role %s: minSucceededTaskCount %d is greater than instances %d",
				name, *role.MinSucceededTaskCount, role.Instances))
		}
	}

	if result == nil {
		return nil
	}
	result.ErrorFormat = util.ListErrorFormat
	return &apierrors.Error{
		Code:    apierrors.CodeInvalidParameters,
		Message: fmt.Sprintf("invalid job spec %s: %v", spec.Name, result),
		Err:     result,
	}
}

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

// Package jobconfig reads the stored config of a submitted job.
package jobconfig

import (
	"context"
	"errors"
	"path"

	"sigs.k8s.io/controller-runtime/pkg/log"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	v2 "github.com/kubeflow/job-submitter/api/v2"
	"github.com/kubeflow/job-submitter/internal/protocol"
	"github.com/kubeflow/job-submitter/internal/webhdfs"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

var (
	logger = log.Log.WithName("")
)

// FileReader reads whole files from the distributed filesystem. Missing files are reported
// with an error matching webhdfs.ErrNotFound.
type FileReader interface {
	Open(ctx context.Context, p string) ([]byte, error)
}

// Accessor reads job configs.
type Accessor struct {
	reader FileReader
}

func NewAccessor(reader FileReader) *Accessor {
	return &Accessor{reader: reader}
}

// GetJobConfig returns the config of a job as a v2 job spec. A v2 YAML config is preferred; a
// v1 JSON config is upgraded. It returns a NoJobConfigError when neither exists.
func (a *Accessor) GetJobConfig(ctx context.Context, user, job string) (*v2.JobSpec, error) {
	jobDir := util.JobDir(user, job)

	data, err := a.reader.Open(ctx, path.Join(jobDir, common.JobConfigYAMLFileName))
	if err == nil {
		return v2.Parse(data)
	}
	if !errors.Is(err, webhdfs.ErrNotFound) {
		return nil, err
	}

	logger.V(1).Info("No YAML job config, trying JSON", "user", user, "job", job)
	data, err = a.reader.Open(ctx, path.Join(jobDir, common.JobConfigJSONFileName))
	if err != nil {
		if errors.Is(err, webhdfs.ErrNotFound) {
			return nil, apierrors.NewNoJobConfig("config of job %s is not found", util.FrameworkName(user, job))
		}
		return nil, err
	}
	config, err := v1.Parse(data)
	if err != nil {
		return nil, err
	}
	v1.SetJobConfigDefaults(config)
	return protocol.Upgrade(config), nil
}

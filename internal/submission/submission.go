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

// Package submission runs job submissions end to end and answers job queries.
package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"sigs.k8s.io/controller-runtime/pkg/log"
	"sigs.k8s.io/yaml"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	v2 "github.com/kubeflow/job-submitter/api/v2"
	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/interpolation"
	"github.com/kubeflow/job-submitter/internal/jobstate"
	"github.com/kubeflow/job-submitter/internal/launcher"
	"github.com/kubeflow/job-submitter/internal/metrics"
	"github.com/kubeflow/job-submitter/internal/protocol"
	"github.com/kubeflow/job-submitter/internal/provisioner"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

var (
	logger = log.Log.WithName("")
)

// v1JobNameField only exists in v1 job configs.
const v1JobNameField = "jobName"

// PermissionChecker gates submissions by user and virtual cluster.
type PermissionChecker interface {
	CheckUserVC(ctx context.Context, user, vc string) error
}

// Provisioner writes the job context before the launcher is called.
type Provisioner interface {
	Provision(ctx context.Context, job *provisioner.Job) (*provisioner.Result, error)
}

// JobConfigReader reads stored job configs.
type JobConfigReader interface {
	GetJobConfig(ctx context.Context, user, job string) (*v2.JobSpec, error)
}

// Options are the collaborators of a Service.
type Options struct {
	Launcher    launcher.Launcher
	Checker     PermissionChecker
	Generator   *framework.Generator
	Provisioner Provisioner
	Configs     JobConfigReader
	// Metrics is optional.
	Metrics *metrics.SubmissionMetrics
	// HDFSURI qualifies job directories for containers, e.g. hdfs://namenode:9000.
	HDFSURI string
}

// Service submits, queries and stops jobs.
type Service struct {
	options Options
	now     func() time.Time
}

func NewService(options Options) *Service {
	return &Service{
		options: options,
		now:     time.Now,
	}
}

// Result describes an accepted submission.
type Result struct {
	ID             string
	User           string
	JobName        string
	FrameworkName  string
	VirtualCluster string
	SSHEnabled     bool
}

// job is a validated submission ready to be rendered.
type job struct {
	config         *v1.JobConfig
	configFileName string
	configData     []byte
}

// Submit runs the full submission pipeline for a v1 or v2 payload in YAML or JSON.
func (s *Service) Submit(ctx context.Context, user string, payload []byte) (*Result, error) {
	id := uuid.New().String()
	logger.Info("Received job submission", "id", id, "user", user)

	j, err := s.prepare(payload)
	if err != nil {
		s.recordFailure("", err)
		return nil, err
	}
	config := j.config
	frameworkName := util.FrameworkName(user, config.JobName)

	if err := s.options.Checker.CheckUserVC(ctx, user, config.VirtualCluster); err != nil {
		s.recordFailure(config.VirtualCluster, err)
		return nil, err
	}

	artifacts, err := s.options.Generator.Generate(user, config)
	if err != nil {
		err = apierrors.NewUnknown(err, "failed to render job %s: %v", frameworkName, err)
		s.recordFailure(config.VirtualCluster, err)
		return nil, err
	}

	start := s.now()
	provisioned, err := s.options.Provisioner.Provision(ctx, &provisioner.Job{
		User:           user,
		Name:           config.JobName,
		ConfigFileName: j.configFileName,
		ConfigData:     j.configData,
		Artifacts:      artifacts,
	})
	if err != nil {
		logger.Error(err, "Failed to provision job context", "id", id, "name", frameworkName)
		s.recordFailure(config.VirtualCluster, err)
		return nil, err
	}
	if s.options.Metrics != nil {
		s.options.Metrics.ObserveProvisionLatency(config.VirtualCluster, s.now().Sub(start))
	}

	err = s.options.Launcher.Submit(ctx, &launcher.SubmitRequest{
		Name:           frameworkName,
		User:           user,
		Config:         config,
		Descriptor:     artifacts.Descriptor,
		DescriptorJSON: artifacts.DescriptorJSON,
		JobStorageRoot: s.jobStorageRoot(user, config.JobName),
	})
	if err != nil {
		s.recordFailure(config.VirtualCluster, err)
		return nil, err
	}
	if s.options.Metrics != nil {
		s.options.Metrics.HandleSubmitted(config.VirtualCluster)
	}
	logger.Info("Submitted job", "id", id, "name", frameworkName, "virtualCluster", config.VirtualCluster, "sshEnabled", provisioned.SSHEnabled)

	return &Result{
		ID:             id,
		User:           user,
		JobName:        config.JobName,
		FrameworkName:  frameworkName,
		VirtualCluster: config.VirtualCluster,
		SSHEnabled:     provisioned.SSHEnabled,
	}, nil
}

// prepare decodes, resolves, converts and validates a payload. It performs no I/O.
func (s *Service) prepare(payload []byte) (*job, error) {
	data, err := yaml.YAMLToJSON(payload)
	if err != nil {
		return nil, apierrors.NewInvalidParameters("failed to parse job: %v", err)
	}
	// Numbers keep their literal text so parameters are substituted verbatim.
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, apierrors.NewInvalidParameters("failed to parse job: %v", err)
	}
	fields, ok := doc.(map[string]interface{})
	if !ok {
		return nil, apierrors.NewInvalidParameters("job must be an object")
	}

	if _, ok := fields[v1JobNameField]; ok {
		return prepareV1(payload)
	}
	return prepareV2(payload, doc)
}

func prepareV1(payload []byte) (*job, error) {
	config, err := v1.Parse(payload)
	if err != nil {
		return nil, err
	}
	v1.SetJobConfigDefaults(config)
	if err := v1.Validate(config); err != nil {
		return nil, err
	}
	// The submitted document is stored as is. YAML is only re-encoded as JSON.
	data := payload
	if !json.Valid(payload) {
		if data, err = yaml.YAMLToJSON(payload); err != nil {
			return nil, apierrors.NewInvalidParameters("failed to encode job config: %v", err)
		}
	}
	return &job{config: config, configFileName: common.JobConfigJSONFileName, configData: data}, nil
}

func prepareV2(payload []byte, doc interface{}) (*job, error) {
	resolved, err := interpolation.Interpolate(doc)
	if err != nil {
		return nil, apierrors.NewInvalidParameters("failed to resolve parameters: %v", err)
	}
	resolvedJSON, err := json.Marshal(resolved)
	if err != nil {
		return nil, apierrors.NewInvalidParameters("failed to encode resolved job: %v", err)
	}
	spec, err := v2.Parse(resolvedJSON)
	if err != nil {
		return nil, err
	}
	v2.SetJobSpecDefaults(spec)
	if err := v2.Validate(spec); err != nil {
		return nil, err
	}

	config, err := protocol.ConvertToV1(spec)
	if err != nil {
		return nil, err
	}
	v1.SetJobConfigDefaults(config)
	if err := v1.Validate(config); err != nil {
		return nil, err
	}

	data, err := yaml.JSONToYAML(payload)
	if err != nil {
		return nil, apierrors.NewInvalidParameters("failed to encode job spec: %v", err)
	}
	return &job{config: config, configFileName: common.JobConfigYAMLFileName, configData: data}, nil
}

func (s *Service) jobStorageRoot(user, jobName string) string {
	return strings.TrimSuffix(s.options.HDFSURI, "/") + util.JobDir(user, jobName)
}

func (s *Service) recordFailure(virtualCluster string, err error) {
	if s.options.Metrics != nil {
		s.options.Metrics.HandleSubmissionFailure(virtualCluster, err)
	}
}

// JobStatus is the detail of one job.
type JobStatus struct {
	Name                   string
	User                   string
	VirtualCluster         string
	State                  jobstate.JobState
	DisplayState           string
	Retries                int32
	ApplicationID          string
	ApplicationExitCode    *int32
	ApplicationDiagnostics string
	CreatedTimestamp       int64
	CompletedTimestamp     int64
	// TaskRoles are keyed by task role name.
	TaskRoles map[string][]TaskDetail
}

// TaskDetail is the detail of one task.
type TaskDetail struct {
	Index         int32
	State         jobstate.JobState
	ContainerIP   string
	ContainerPort string
	ContainerLog  string
	ExitCode      *int32
}

// Status returns the detail of the job of user.
func (s *Service) Status(ctx context.Context, user, jobName string) (*JobStatus, error) {
	status, err := s.options.Launcher.Get(ctx, util.FrameworkName(user, jobName))
	if err != nil {
		return nil, err
	}

	state := status.State()
	if s.options.Metrics != nil {
		s.options.Metrics.HandleStatusQuery(state)
	}
	result := &JobStatus{
		Name:                   jobName,
		User:                   user,
		VirtualCluster:         status.VirtualCluster,
		State:                  state,
		DisplayState:           jobstate.DisplayState(state, status.ExecutionType),
		Retries:                jobstate.Retries(status.RetryCounters),
		ApplicationID:          status.ApplicationID,
		ApplicationExitCode:    status.ApplicationExitCode,
		ApplicationDiagnostics: status.ApplicationDiagnostics,
		CreatedTimestamp:       status.CreatedTimestamp,
		CompletedTimestamp:     status.CompletedTimestamp,
		TaskRoles:              make(map[string][]TaskDetail, len(status.TaskRoles)),
	}
	for role, tasks := range status.TaskRoles {
		details := make([]TaskDetail, 0, len(tasks))
		for _, task := range tasks {
			details = append(details, TaskDetail{
				Index:         task.Index,
				State:         jobstate.TranslateTask(task.State, task.ContainerExitCode),
				ContainerIP:   task.ContainerIP,
				ContainerPort: task.ContainerPorts,
				ContainerLog:  task.ContainerLogURL,
				ExitCode:      task.ContainerExitCode,
			})
		}
		result.TaskRoles[role] = details
	}
	return result, nil
}

// JobSummary is one job in a list.
type JobSummary struct {
	Name               string
	User               string
	VirtualCluster     string
	State              jobstate.JobState
	DisplayState       string
	Retries            int32
	CreatedTimestamp   int64
	CompletedTimestamp int64
	TotalTaskNumber    int32
	TotalGPUNumber     int32
}

// List returns the jobs of user, or of every user if user is empty, newest first.
func (s *Service) List(ctx context.Context, user string) ([]JobSummary, error) {
	frameworks, err := s.options.Launcher.List(ctx, user)
	if err != nil {
		return nil, err
	}
	jobs := make([]JobSummary, 0, len(frameworks))
	for i := range frameworks {
		f := &frameworks[i]
		owner, name := util.SplitFrameworkName(f.Name)
		if owner == "" {
			owner = f.User
		}
		state := f.State()
		jobs = append(jobs, JobSummary{
			Name:               name,
			User:               owner,
			VirtualCluster:     f.VirtualCluster,
			State:              state,
			DisplayState:       jobstate.DisplayState(state, f.ExecutionType),
			Retries:            jobstate.Retries(f.RetryCounters),
			CreatedTimestamp:   f.CreatedTimestamp,
			CompletedTimestamp: f.CompletedTimestamp,
			TotalTaskNumber:    f.TotalTaskNumber,
			TotalGPUNumber:     f.TotalGPUNumber,
		})
	}
	return jobs, nil
}

// Stop asks the launcher to stop the job of user.
func (s *Service) Stop(ctx context.Context, user, jobName string) error {
	frameworkName := util.FrameworkName(user, jobName)
	if err := s.options.Launcher.Stop(ctx, user, frameworkName); err != nil {
		return err
	}
	logger.Info("Stopping job", "name", frameworkName, "user", user)
	return nil
}

// GetJobConfig returns the stored config of the job of user as a v2 job spec.
func (s *Service) GetJobConfig(ctx context.Context, user, jobName string) (*v2.JobSpec, error) {
	return s.options.Configs.GetJobConfig(ctx, user, jobName)
}

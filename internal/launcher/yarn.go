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

package launcher

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/job-submitter/internal/jobstate"
	"github.com/kubeflow/job-submitter/internal/restclient"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/common"
)

var (
	logger = log.Log.WithName("")
)

const headerUserName = "UserName"

// YARNLauncher is a client of the Framework Launcher REST API.
type YARNLauncher struct {
	uri        string
	httpClient *http.Client
}

var _ Launcher = &YARNLauncher{}

// NewYARNLauncher returns a client of the launcher at uri. A nil httpClient uses a pooled client.
func NewYARNLauncher(uri string, httpClient *http.Client, timeout time.Duration) *YARNLauncher {
	return &YARNLauncher{
		uri:        strings.TrimSuffix(uri, "/"),
		httpClient: restclient.NewHTTPClient(httpClient, timeout),
	}
}

func (l *YARNLauncher) frameworkURL(name string) string {
	return fmt.Sprintf("%s/v1/Frameworks/%s", l.uri, url.PathEscape(name))
}

func (l *YARNLauncher) Submit(ctx context.Context, req *SubmitRequest) error {
	resp, err := restclient.Do(ctx, l.httpClient, &restclient.Request{
		Method: http.MethodPut,
		URL:    l.frameworkURL(req.Name),
		Header: http.Header{
			headerUserName: []string{req.User},
			"Content-Type": []string{"application/json"},
		},
		Body: req.DescriptorJSON,
	})
	if err != nil {
		return apierrors.NewUnknown(err, "failed to submit framework %s: %v", req.Name, err)
	}
	if resp.StatusCode != http.StatusAccepted {
		return apierrors.NewUnknown(nil, "%s", string(resp.Body))
	}
	logger.Info("Submitted framework", "name", req.Name, "user", req.User)
	return nil
}

func (l *YARNLauncher) Get(ctx context.Context, name string) (*FrameworkStatus, error) {
	resp, err := restclient.Do(ctx, l.httpClient, &restclient.Request{
		Method: http.MethodGet,
		URL:    l.frameworkURL(name),
	})
	if err != nil {
		return nil, apierrors.NewUnknown(err, "failed to get framework %s: %v", name, err)
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, apierrors.NewNoJob("job %s is not found", name)
	default:
		return nil, apierrors.NewUnknown(nil, "%s", string(resp.Body))
	}

	var info frameworkInfo
	if err := json.Unmarshal(resp.Body, &info); err != nil {
		return nil, apierrors.NewUnknown(err, "failed to decode status of framework %s: %v", name, err)
	}
	return info.toFrameworkStatus(name), nil
}

func (l *YARNLauncher) Stop(ctx context.Context, user, name string) error {
	body, err := json.Marshal(executionTypeRequest{ExecutionType: common.ExecutionTypeStop})
	if err != nil {
		return err
	}
	resp, err := restclient.Do(ctx, l.httpClient, &restclient.Request{
		Method: http.MethodPut,
		URL:    l.frameworkURL(name) + "/ExecutionType",
		Header: http.Header{
			headerUserName: []string{user},
			"Content-Type": []string{"application/json"},
		},
		Body: body,
	})
	if err != nil {
		return apierrors.NewUnknown(err, "failed to stop framework %s: %v", name, err)
	}
	switch resp.StatusCode {
	case http.StatusAccepted, http.StatusOK:
		logger.Info("Stopped framework", "name", name, "user", user)
		return nil
	case http.StatusNotFound:
		return apierrors.NewNoJob("job %s is not found", name)
	default:
		return apierrors.NewUnknown(nil, "%s", string(resp.Body))
	}
}

func (l *YARNLauncher) List(ctx context.Context, user string) ([]FrameworkSummary, error) {
	target := l.uri + "/v1/Frameworks"
	if user != "" {
		target += "?" + url.Values{headerUserName: []string{user}}.Encode()
	}
	resp, err := restclient.Do(ctx, l.httpClient, &restclient.Request{Method: http.MethodGet, URL: target})
	if err != nil {
		return nil, apierrors.NewUnknown(err, "failed to list frameworks: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apierrors.NewUnknown(nil, "%s", string(resp.Body))
	}

	var list summarizedFrameworkInfoList
	if err := json.Unmarshal(resp.Body, &list); err != nil {
		return nil, apierrors.NewUnknown(err, "failed to decode framework list: %v", err)
	}
	summaries := make([]FrameworkSummary, 0, len(list.SummarizedFrameworkInfos))
	for _, info := range list.SummarizedFrameworkInfos {
		summaries = append(summaries, FrameworkSummary{
			Name:                info.FrameworkName,
			User:                info.UserName,
			VirtualCluster:      info.Queue,
			ExecutionType:       info.ExecutionType,
			FrameworkState:      info.FrameworkState,
			ApplicationExitCode: info.ApplicationExitCode,
			RetryCounters:       info.FrameworkRetryPolicyState,
			CreatedTimestamp:    info.FirstRequestTimestamp,
			CompletedTimestamp:  info.FrameworkCompletedTimestamp,
			TotalTaskNumber:     info.TotalTaskNumber,
			TotalGPUNumber:      info.TotalGPUNumber,
		})
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedTimestamp > summaries[j].CreatedTimestamp
	})
	return summaries, nil
}

type executionTypeRequest struct {
	ExecutionType string `json:"executionType"`
}

// frameworkInfo is the response of GET /v1/Frameworks/{name}.
type frameworkInfo struct {
	AggregatedFrameworkRequest struct {
		FrameworkRequest struct {
			FrameworkDescriptor struct {
				User struct {
					Name string `json:"name"`
				} `json:"user"`
				ExecutionType              string `json:"executionType"`
				PlatformSpecificParameters struct {
					Queue string `json:"queue"`
				} `json:"platformSpecificParameters"`
			} `json:"frameworkDescriptor"`
		} `json:"frameworkRequest"`
	} `json:"aggregatedFrameworkRequest"`
	AggregatedFrameworkStatus struct {
		FrameworkStatus struct {
			FrameworkState              string                 `json:"frameworkState"`
			FrameworkRetryPolicyState   jobstate.RetryCounters `json:"frameworkRetryPolicyState"`
			FrameworkCreatedTimestamp   int64                  `json:"frameworkCreatedTimestamp"`
			FrameworkCompletedTimestamp int64                  `json:"frameworkCompletedTimestamp"`
			ApplicationID               string                 `json:"applicationId"`
			ApplicationExitCode         *int32                 `json:"applicationExitCode"`
			ApplicationExitDiagnostics  string                 `json:"applicationExitDiagnostics"`
		} `json:"frameworkStatus"`
		AggregatedTaskRoleStatuses map[string]struct {
			TaskStatuses struct {
				TaskStatusArray []taskStatus `json:"taskStatusArray"`
			} `json:"taskStatuses"`
		} `json:"aggregatedTaskRoleStatuses"`
	} `json:"aggregatedFrameworkStatus"`
}

type taskStatus struct {
	TaskIndex               int32  `json:"taskIndex"`
	TaskState               string `json:"taskState"`
	ContainerID             string `json:"containerId"`
	ContainerIP             string `json:"containerIp"`
	ContainerPorts          string `json:"containerPorts"`
	ContainerLogHTTPAddress string `json:"containerLogHttpAddress"`
	ContainerExitCode       *int32 `json:"containerExitCode"`
}

func (info *frameworkInfo) toFrameworkStatus(name string) *FrameworkStatus {
	descriptor := info.AggregatedFrameworkRequest.FrameworkRequest.FrameworkDescriptor
	status := info.AggregatedFrameworkStatus.FrameworkStatus
	result := &FrameworkStatus{
		Name:                   name,
		User:                   descriptor.User.Name,
		VirtualCluster:         descriptor.PlatformSpecificParameters.Queue,
		ExecutionType:          descriptor.ExecutionType,
		FrameworkState:         status.FrameworkState,
		ApplicationExitCode:    status.ApplicationExitCode,
		ApplicationID:          status.ApplicationID,
		ApplicationDiagnostics: status.ApplicationExitDiagnostics,
		RetryCounters:          status.FrameworkRetryPolicyState,
		CreatedTimestamp:       status.FrameworkCreatedTimestamp,
		CompletedTimestamp:     status.FrameworkCompletedTimestamp,
		TaskRoles:              make(map[string][]TaskStatus, len(info.AggregatedFrameworkStatus.AggregatedTaskRoleStatuses)),
	}
	for role, roleStatus := range info.AggregatedFrameworkStatus.AggregatedTaskRoleStatuses {
		tasks := make([]TaskStatus, 0, len(roleStatus.TaskStatuses.TaskStatusArray))
		for _, task := range roleStatus.TaskStatuses.TaskStatusArray {
			tasks = append(tasks, TaskStatus{
				Index:             task.TaskIndex,
				State:             task.TaskState,
				ContainerID:       task.ContainerID,
				ContainerIP:       task.ContainerIP,
				ContainerPorts:    task.ContainerPorts,
				ContainerLogURL:   task.ContainerLogHTTPAddress,
				ContainerExitCode: task.ContainerExitCode,
			})
		}
		sort.Slice(tasks, func(i, j int) bool { return tasks[i].Index < tasks[j].Index })
		result.TaskRoles[role] = tasks
	}
	return result
}

// summarizedFrameworkInfoList is the response of GET /v1/Frameworks.
type summarizedFrameworkInfoList struct {
	SummarizedFrameworkInfos []struct {
		FrameworkName               string                 `json:"frameworkName"`
		UserName                    string                 `json:"userName"`
		Queue                       string                 `json:"queue"`
		ExecutionType               string                 `json:"executionType"`
		FrameworkState              string                 `json:"frameworkState"`
		ApplicationExitCode         *int32                 `json:"applicationExitCode"`
		FrameworkRetryPolicyState   jobstate.RetryCounters `json:"frameworkRetryPolicyState"`
		FirstRequestTimestamp       int64                  `json:"firstRequestTimestamp"`
		FrameworkCompletedTimestamp int64                  `json:"frameworkCompletedTimestamp"`
		TotalTaskNumber             int32                  `json:"totalTaskNumber"`
		TotalGPUNumber              int32                  `json:"totalGpuNumber"`
	} `json:"summarizedFrameworkInfos"`
}

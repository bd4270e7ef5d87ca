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
	"fmt"
	"regexp"
	"sort"
	"strings"

	corev1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/utils/ptr"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/jobstate"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

// FrameworkGVK is the group version kind of FrameworkController frameworks.
var FrameworkGVK = schema.GroupVersionKind{
	Group:   "frameworkcontroller.microsoft.com",
	Version: "v1",
	Kind:    "Framework",
}

const (
	LabelUser                = "jobsubmitter.kubeflow.org/user"
	AnnotationFrameworkName  = "jobsubmitter.kubeflow.org/framework-name"
	AnnotationUser           = "jobsubmitter.kubeflow.org/user"
	AnnotationVirtualCluster = "jobsubmitter.kubeflow.org/virtual-cluster"

	executionTypeStart = "Start"
	executionTypeStop  = "Stop"

	resourceGPU      = corev1.ResourceName("nvidia.com/gpu")
	shmVolumeName    = "dshm"
	maxObjectNameLen = 50
)

// FrameworkController framework states.
const (
	fcStateAttemptCreationPending   = "AttemptCreationPending"
	fcStateAttemptCreationRequested = "AttemptCreationRequested"
	fcStateAttemptPreparing         = "AttemptPreparing"
	fcStateAttemptRunning           = "AttemptRunning"
	fcStateAttemptDeletionPending   = "AttemptDeletionPending"
	fcStateAttemptDeletionRequested = "AttemptDeletionRequested"
	fcStateAttemptDeleting          = "AttemptDeleting"
	fcStateAttemptCompleted         = "AttemptCompleted"
	fcStateCompleted                = "Completed"
)

// FrameworkController task states.
const (
	fcTaskStateAttemptCreationPending   = "TaskAttemptCreationPending"
	fcTaskStateAttemptCreationRequested = "TaskAttemptCreationRequested"
	fcTaskStateAttemptPreparing         = "TaskAttemptPreparing"
	fcTaskStateAttemptRunning           = "TaskAttemptRunning"
	fcTaskStateAttemptDeletionPending   = "TaskAttemptDeletionPending"
	fcTaskStateAttemptDeletionRequested = "TaskAttemptDeletionRequested"
	fcTaskStateAttemptDeleting          = "TaskAttemptDeleting"
	fcTaskStateAttemptCompleted         = "TaskAttemptCompleted"
	fcTaskStateCompleted                = "TaskCompleted"
)

var invalidNameChars = regexp.MustCompile(`[^a-z0-9-]+`)

// KubernetesLauncher runs frameworks as FrameworkController Framework objects.
type KubernetesLauncher struct {
	client    client.Client
	namespace string
}

var _ Launcher = &KubernetesLauncher{}

func NewKubernetesLauncher(c client.Client, namespace string) *KubernetesLauncher {
	return &KubernetesLauncher{client: c, namespace: namespace}
}

func (l *KubernetesLauncher) Submit(ctx context.Context, req *SubmitRequest) error {
	obj, err := newFrameworkObject(l.namespace, req)
	if err != nil {
		return apierrors.NewUnknown(err, "failed to build framework %s: %v", req.Name, err)
	}
	if err := l.client.Create(ctx, obj); err != nil {
		return apierrors.NewUnknown(err, "failed to create framework %s: %v", req.Name, err)
	}
	logger.Info("Created framework", "name", req.Name, "object", obj.GetName(), "namespace", l.namespace)
	return nil
}

func (l *KubernetesLauncher) Get(ctx context.Context, name string) (*FrameworkStatus, error) {
	obj := newEmptyFramework()
	key := client.ObjectKey{Namespace: l.namespace, Name: ObjectName(name)}
	if err := l.client.Get(ctx, key, obj); err != nil {
		if k8serrors.IsNotFound(err) {
			return nil, apierrors.NewNoJob("job %s is not found", name)
		}
		return nil, apierrors.NewUnknown(err, "failed to get framework %s: %v", name, err)
	}
	return frameworkStatusFromObject(obj)
}

func (l *KubernetesLauncher) Stop(ctx context.Context, user, name string) error {
	obj := newEmptyFramework()
	obj.SetNamespace(l.namespace)
	obj.SetName(ObjectName(name))
	patch := []byte(fmt.Sprintf(`{"spec":{"executionType":%q}}`, executionTypeStop))
	if err := l.client.Patch(ctx, obj, client.RawPatch(types.MergePatchType, patch)); err != nil {
		if k8serrors.IsNotFound(err) {
			return apierrors.NewNoJob("job %s is not found", name)
		}
		return apierrors.NewUnknown(err, "failed to stop framework %s: %v", name, err)
	}
	logger.Info("Stopped framework", "name", name, "user", user)
	return nil
}

func (l *KubernetesLauncher) List(ctx context.Context, user string) ([]FrameworkSummary, error) {
	list := &unstructured.UnstructuredList{}
	list.SetGroupVersionKind(FrameworkGVK.GroupVersion().WithKind(FrameworkGVK.Kind + "List"))
	opts := []client.ListOption{client.InNamespace(l.namespace)}
	if user != "" {
		opts = append(opts, client.MatchingLabels{LabelUser: labelValue(user)})
	}
	if err := l.client.List(ctx, list, opts...); err != nil {
		return nil, apierrors.NewUnknown(err, "failed to list frameworks: %v", err)
	}

	summaries := make([]FrameworkSummary, 0, len(list.Items))
	for i := range list.Items {
		status, err := frameworkStatusFromObject(&list.Items[i])
		if err != nil {
			logger.Error(err, "Failed to read framework status", "object", list.Items[i].GetName())
			continue
		}
		if user != "" && status.User != user {
			continue
		}
		summary := FrameworkSummary{
			Name:                status.Name,
			User:                status.User,
			VirtualCluster:      status.VirtualCluster,
			ExecutionType:       status.ExecutionType,
			FrameworkState:      status.FrameworkState,
			ApplicationExitCode: status.ApplicationExitCode,
			RetryCounters:       status.RetryCounters,
			CreatedTimestamp:    status.CreatedTimestamp,
			CompletedTimestamp:  status.CompletedTimestamp,
		}
		for _, tasks := range status.TaskRoles {
			summary.TotalTaskNumber += int32(len(tasks))
		}
		summaries = append(summaries, summary)
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedTimestamp > summaries[j].CreatedTimestamp
	})
	return summaries, nil
}

// ObjectName returns the Kubernetes object name of a framework.
func ObjectName(frameworkName string) string {
	name := strings.Trim(invalidNameChars.ReplaceAllString(strings.ToLower(frameworkName), "-"), "-")
	if len(name) > maxObjectNameLen {
		name = strings.TrimRight(name[:maxObjectNameLen], "-")
	}
	hasher := util.NewHash32()
	_, _ = hasher.Write([]byte(frameworkName))
	return fmt.Sprintf("%s-%08x", name, hasher.Sum32())
}

func labelValue(s string) string {
	value := strings.Trim(invalidNameChars.ReplaceAllString(strings.ToLower(s), "-"), "-")
	if len(value) > 63 {
		value = strings.Trim(value[:63], "-")
	}
	return value
}

func newEmptyFramework() *unstructured.Unstructured {
	obj := &unstructured.Unstructured{}
	obj.SetGroupVersionKind(FrameworkGVK)
	return obj
}

type fcFrameworkSpec struct {
	ExecutionType string           `json:"executionType"`
	RetryPolicy   fcRetryPolicy    `json:"retryPolicy"`
	TaskRoles     []fcTaskRoleSpec `json:"taskRoles"`
}

type fcRetryPolicy struct {
	FancyRetryPolicy bool  `json:"fancyRetryPolicy"`
	MaxRetryCount    int32 `json:"maxRetryCount"`
}

type fcTaskRoleSpec struct {
	Name                             string             `json:"name"`
	TaskNumber                       int32              `json:"taskNumber"`
	FrameworkAttemptCompletionPolicy fcCompletionPolicy `json:"frameworkAttemptCompletionPolicy"`
	Task                             fcTaskSpec         `json:"task"`
}

type fcCompletionPolicy struct {
	MinFailedTaskCount    int32 `json:"minFailedTaskCount"`
	MinSucceededTaskCount int32 `json:"minSucceededTaskCount"`
}

type fcTaskSpec struct {
	RetryPolicy fcRetryPolicy          `json:"retryPolicy"`
	Pod         corev1.PodTemplateSpec `json:"pod"`
}

// newFrameworkObject builds the Framework object of req. The retry and completion policies
// come from the descriptor, the pods from the job config.
func newFrameworkObject(namespace string, req *SubmitRequest) (*unstructured.Unstructured, error) {
	if req.Config == nil || req.Descriptor == nil {
		return nil, fmt.Errorf("job config and descriptor are required")
	}

	spec := fcFrameworkSpec{
		ExecutionType: executionTypeStart,
		RetryPolicy: fcRetryPolicy{
			FancyRetryPolicy: req.Descriptor.RetryPolicy.FancyRetryPolicy,
			MaxRetryCount:    req.Descriptor.RetryPolicy.MaxRetryCount,
		},
	}
	for i := range req.Config.TaskRoles {
		role := &req.Config.TaskRoles[i]
		descriptorRole := req.Descriptor.TaskRoles[role.Name]
		spec.TaskRoles = append(spec.TaskRoles, fcTaskRoleSpec{
			Name:       role.Name,
			TaskNumber: role.TaskNumber,
			FrameworkAttemptCompletionPolicy: fcCompletionPolicy{
				MinFailedTaskCount:    ptr.Deref(descriptorRole.ApplicationCompletionPolicy.MinFailedTaskCount, -1),
				MinSucceededTaskCount: ptr.Deref(descriptorRole.ApplicationCompletionPolicy.MinSucceededTaskCount, -1),
			},
			Task: fcTaskSpec{
				Pod: newPodTemplate(req, role.Name, req.Config.TaskRoleImage(role), role.CPUNumber, role.MemoryMB, role.GPUNumber, role.ShmMB),
			},
		})
	}

	specMap, err := runtime.DefaultUnstructuredConverter.ToUnstructured(&spec)
	if err != nil {
		return nil, err
	}

	obj := newEmptyFramework()
	obj.SetNamespace(namespace)
	obj.SetName(ObjectName(req.Name))
	obj.SetLabels(map[string]string{LabelUser: labelValue(req.User)})
	obj.SetAnnotations(map[string]string{
		AnnotationFrameworkName:  req.Name,
		AnnotationUser:           req.User,
		AnnotationVirtualCluster: req.Descriptor.PlatformSpecificParameters.Queue,
	})
	obj.Object["spec"] = specMap
	return obj, nil
}

func newPodTemplate(req *SubmitRequest, role, image string, cpu, memoryMB, gpu, shmMB int32) corev1.PodTemplateSpec {
	if shmMB == 0 {
		shmMB = common.DefaultShmMB
	}
	limits := corev1.ResourceList{
		corev1.ResourceCPU:    *resource.NewQuantity(int64(cpu), resource.DecimalSI),
		corev1.ResourceMemory: *resource.NewQuantity(int64(memoryMB)*1024*1024, resource.BinarySI),
	}
	if gpu > 0 {
		limits[resourceGPU] = *resource.NewQuantity(int64(gpu), resource.DecimalSI)
	}
	script := fmt.Sprintf("hdfs dfs -cat %s > /tmp/docker-container.sh && exec /bin/bash /tmp/docker-container.sh",
		framework.ScriptPath("${PAI_JOB_STORAGE_ROOT}", common.DockerContainerScriptsDir, role))

	return corev1.PodTemplateSpec{
		ObjectMeta: metav1.ObjectMeta{
			Labels: map[string]string{LabelUser: labelValue(req.User)},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			Containers: []corev1.Container{
				{
					Name:    "main",
					Image:   image,
					Command: []string{"/bin/bash", "-c", script},
					Env: []corev1.EnvVar{
						{Name: "PAI_USER_NAME", Value: req.User},
						{Name: "PAI_JOB_NAME", Value: req.Config.JobName},
						{Name: "PAI_TASK_ROLE_NAME", Value: role},
						{Name: "PAI_JOB_STORAGE_ROOT", Value: req.JobStorageRoot},
					},
					Resources: corev1.ResourceRequirements{Limits: limits, Requests: limits},
					VolumeMounts: []corev1.VolumeMount{
						{Name: shmVolumeName, MountPath: "/dev/shm"},
					},
				},
			},
			Volumes: []corev1.Volume{
				{
					Name: shmVolumeName,
					VolumeSource: corev1.VolumeSource{
						EmptyDir: &corev1.EmptyDirVolumeSource{
							Medium:    corev1.StorageMediumMemory,
							SizeLimit: resource.NewQuantity(int64(shmMB)*1024*1024, resource.BinarySI),
						},
					},
				},
			},
		},
	}
}

type fcFrameworkStatus struct {
	State             string       `json:"state"`
	StartTime         *metav1.Time `json:"startTime,omitempty"`
	CompletionTime    *metav1.Time `json:"completionTime,omitempty"`
	RetryPolicyStatus struct {
		TotalRetriedCount       int32 `json:"totalRetriedCount"`
		AccountableRetriedCount int32 `json:"accountableRetriedCount"`
	} `json:"retryPolicyStatus"`
	AttemptStatus struct {
		CompletionStatus *fcCompletionStatus `json:"completionStatus,omitempty"`
		TaskRoleStatuses []struct {
			Name         string `json:"name"`
			TaskStatuses []struct {
				Index         int32  `json:"index"`
				State         string `json:"state"`
				AttemptStatus struct {
					PodName          string              `json:"podName"`
					PodIP            string              `json:"podIP"`
					CompletionStatus *fcCompletionStatus `json:"completionStatus,omitempty"`
				} `json:"attemptStatus"`
			} `json:"taskStatuses"`
		} `json:"taskRoleStatuses"`
	} `json:"attemptStatus"`
}

type fcCompletionStatus struct {
	Code        int32  `json:"code"`
	Phrase      string `json:"phrase"`
	Diagnostics string `json:"diagnostics"`
}

// frameworkStatusFromObject reads a Framework object and expresses its status in launcher states.
func frameworkStatusFromObject(obj *unstructured.Unstructured) (*FrameworkStatus, error) {
	annotations := obj.GetAnnotations()
	result := &FrameworkStatus{
		Name:           annotations[AnnotationFrameworkName],
		User:           annotations[AnnotationUser],
		VirtualCluster: annotations[AnnotationVirtualCluster],
		ExecutionType:  common.ExecutionTypeStart,
		TaskRoles:      map[string][]TaskStatus{},
	}
	if result.Name == "" {
		result.Name = obj.GetName()
	}
	if created := obj.GetCreationTimestamp(); !created.IsZero() {
		result.CreatedTimestamp = created.UnixMilli()
	}

	executionType, _, _ := unstructured.NestedString(obj.Object, "spec", "executionType")
	if executionType == executionTypeStop {
		result.ExecutionType = common.ExecutionTypeStop
	}

	statusMap, found, err := unstructured.NestedMap(obj.Object, "status")
	if err != nil {
		return nil, fmt.Errorf("failed to read status of framework %s: %v", obj.GetName(), err)
	}
	if !found {
		result.FrameworkState = common.FrameworkStateWaiting
		return result, nil
	}
	var status fcFrameworkStatus
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(statusMap, &status); err != nil {
		return nil, fmt.Errorf("failed to decode status of framework %s: %v", obj.GetName(), err)
	}

	result.FrameworkState = frameworkState(status.State)
	if status.State == fcStateCompleted {
		if completion := status.AttemptStatus.CompletionStatus; completion != nil {
			result.ApplicationExitCode = ptr.To(completion.Code)
			result.ApplicationDiagnostics = completion.Diagnostics
		}
		if result.ExecutionType == common.ExecutionTypeStop {
			result.ApplicationExitCode = ptr.To[int32](common.ExitCodeStopped)
		}
	}
	if status.CompletionTime != nil {
		result.CompletedTimestamp = status.CompletionTime.UnixMilli()
	}
	result.RetryCounters = jobstate.RetryCounters{
		TransientNormalRetriedCount: ptr.To(status.RetryPolicyStatus.TotalRetriedCount - status.RetryPolicyStatus.AccountableRetriedCount),
		NonTransientRetriedCount:    ptr.To(status.RetryPolicyStatus.AccountableRetriedCount),
	}

	for _, roleStatus := range status.AttemptStatus.TaskRoleStatuses {
		tasks := make([]TaskStatus, 0, len(roleStatus.TaskStatuses))
		for _, task := range roleStatus.TaskStatuses {
			taskStatus := TaskStatus{
				Index:       task.Index,
				State:       taskState(task.State),
				ContainerID: task.AttemptStatus.PodName,
				ContainerIP: task.AttemptStatus.PodIP,
			}
			if completion := task.AttemptStatus.CompletionStatus; completion != nil {
				taskStatus.ContainerExitCode = ptr.To(completion.Code)
			}
			tasks = append(tasks, taskStatus)
		}
		sort.Slice(tasks, func(i, j int) bool { return tasks[i].Index < tasks[j].Index })
		result.TaskRoles[roleStatus.Name] = tasks
	}
	return result, nil
}

func frameworkState(state string) string {
	switch state {
	case "", fcStateAttemptCreationPending:
		return common.FrameworkStateWaiting
	case fcStateAttemptCreationRequested:
		return common.FrameworkStateApplicationCreated
	case fcStateAttemptPreparing:
		return common.FrameworkStateApplicationLaunched
	case fcStateAttemptRunning:
		return common.FrameworkStateApplicationRunning
	case fcStateAttemptDeletionPending, fcStateAttemptDeletionRequested, fcStateAttemptDeleting:
		return common.FrameworkStateApplicationRetrievingDiagnostics
	case fcStateAttemptCompleted:
		return common.FrameworkStateApplicationCompleted
	case fcStateCompleted:
		return common.FrameworkStateCompleted
	default:
		return state
	}
}

func taskState(state string) string {
	switch state {
	case "", fcTaskStateAttemptCreationPending:
		return common.TaskStateWaiting
	case fcTaskStateAttemptCreationRequested:
		return common.TaskStateContainerRequested
	case fcTaskStateAttemptPreparing:
		return common.TaskStateContainerAllocated
	case fcTaskStateAttemptRunning:
		return common.TaskStateContainerRunning
	case fcTaskStateAttemptDeletionPending, fcTaskStateAttemptDeletionRequested, fcTaskStateAttemptDeleting,
		fcTaskStateAttemptCompleted:
		return common.TaskStateContainerCompleted
	case fcTaskStateCompleted:
		return common.TaskStateCompleted
	default:
		return state
	}
}

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

package common

// Launcher framework states as reported by the Framework Launcher.
const (
	FrameworkStateWaiting = "FRAMEWORK_WAITING"

	FrameworkStateApplicationCreated = "APPLICATION_CREATED"

	FrameworkStateApplicationLaunched = "APPLICATION_LAUNCHED"

	FrameworkStateApplicationWaiting = "APPLICATION_WAITING"

	FrameworkStateApplicationRunning = "APPLICATION_RUNNING"

	FrameworkStateApplicationRetrievingDiagnostics = "APPLICATION_RETRIEVING_DIAGNOSTICS"

	FrameworkStateApplicationCompleted = "APPLICATION_COMPLETED"

	FrameworkStateCompleted = "FRAMEWORK_COMPLETED"
)

// Launcher task states.
const (
	TaskStateWaiting = "TASK_WAITING"

	TaskStateContainerRequested = "CONTAINER_REQUESTED"

	TaskStateContainerAllocated = "CONTAINER_ALLOCATED"

	TaskStateContainerLaunched = "CONTAINER_LAUNCHED"

	TaskStateContainerRunning = "CONTAINER_RUNNING"

	TaskStateContainerCompleted = "CONTAINER_COMPLETED"

	TaskStateCompleted = "TASK_COMPLETED"
)

// Execution types of a framework.
const (
	ExecutionTypeStart = "START"

	ExecutionTypeStop = "STOP"
)

// ExitCodeStopped is the application exit code the launcher reports for a framework stopped by its user.
const ExitCodeStopped = 214

// RetryCountNoFancyRetry disables the fancy retry policy of the launcher.
const RetryCountNoFancyRetry = -2

// FrameworkDescriptorVersion is the version stamped on every descriptor sent to the launcher.
const FrameworkDescriptorVersion = 10

// FrameworkNameSeparator joins a namespace and a job name into a framework name.
const FrameworkNameSeparator = "~"

// Default values of job specifications.
const (
	DefaultVirtualCluster = "default"

	DefaultShmMB = 64

	DefaultMinFailedTaskCount = 1

	DefaultPortBeginAt = 0

	DefaultPortNumber = 1
)

// Port labels every task role receives.
const (
	PortLabelHTTP = "http"

	PortLabelSSH = "ssh"
)

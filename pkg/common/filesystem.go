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

// Root directories on the distributed filesystem shared by all jobs.
const (
	OutputRootDir = "/Output"

	ContainerRootDir = "/Container"
)

// Per-job file and directory names under /Container/{user}/{job}.
const (
	JobConfigYAMLFileName = "JobConfig.yaml"

	JobConfigJSONFileName = "JobConfig.json"

	FrameworkDescriptorFileName = "FrameworkDescriptor.json"

	YarnContainerScriptsDir = "YarnContainerScripts"

	DockerContainerScriptsDir = "DockerContainerScripts"

	SSHKeyFilesDir = "ssh/keyFiles"

	JobLogDir = "log"

	JobTmpDir = "tmp"
)

// ScriptFileExtension is the extension of every container startup script.
const ScriptFileExtension = ".sh"

// SSHPublicKeyFileExtension is appended to the job name for the public half of the job keypair.
const SSHPublicKeyFileExtension = ".pub"

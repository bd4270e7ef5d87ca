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

package framework

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	v1 "github.com/kubeflow/job-submitter/api/v1"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

// Script template identifiers.
const (
	TemplateYarnContainer   = "yarn-container.sh.tmpl"
	TemplateDockerContainer = "docker-container.sh.tmpl"
)

// ContainerWorkDir is the working directory of the user command inside the container.
const ContainerWorkDir = "/pai/work"

//go:embed templates/*.tmpl
var templatesFS embed.FS

var templates = template.Must(
	template.New("scripts").
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		ParseFS(templatesFS, "templates/*.tmpl"),
)

// Render renders the script template identified by templateID.
func Render(templateID string, bindings interface{}) (string, error) {
	if templates.Lookup(templateID) == nil {
		return "", fmt.Errorf("template %s is not found", templateID)
	}
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, templateID, bindings); err != nil {
		return "", fmt.Errorf("failed to render template %s: %v", templateID, err)
	}
	return buf.String(), nil
}

// ScriptBindings are the values a script template is rendered with.
type ScriptBindings struct {
	UserName      string
	JobName       string
	FrameworkName string
	Image         string
	AuthFile      string
	DataDir       string
	OutputDir     string
	CodeDir       string
	// HDFSURI is the default filesystem of the container.
	HDFSURI string
	// JobDir is the job directory on the distributed filesystem.
	JobDir string
	// JobStorageRoot is JobDir qualified with HDFSURI.
	JobStorageRoot      string
	AggregatedStatusURI string
	JobInfoURI          string
	WorkDir             string
	TaskRole            TaskRoleBindings
	TaskRoles           []TaskRoleSummary
	JobEnvs             []EnvVar
}

type TaskRoleBindings struct {
	Name       string
	TaskNumber int32
	CPUNumber  int32
	MemoryMB   int32
	ShmMB      int32
	GPUNumber  int32
	Image      string
	Command    string
	Ports      []v1.Port
}

type TaskRoleSummary struct {
	Name       string
	TaskNumber int32
}

type EnvVar struct {
	Name  string
	Value string
}

// ScriptBindings returns the bindings of the scripts of role.
func (g *Generator) ScriptBindings(user string, config *v1.JobConfig, role *v1.TaskRole) *ScriptBindings {
	frameworkName := util.FrameworkName(user, config.JobName)
	jobDir := util.JobDir(user, config.JobName)

	bindings := &ScriptBindings{
		UserName:            user,
		JobName:             config.JobName,
		FrameworkName:       frameworkName,
		Image:               config.Image,
		AuthFile:            config.AuthFile,
		DataDir:             config.DataDir,
		OutputDir:           config.OutputDir,
		CodeDir:             config.CodeDir,
		HDFSURI:             strings.TrimSuffix(g.options.HDFSURI, "/"),
		JobDir:              jobDir,
		JobStorageRoot:      strings.TrimSuffix(g.options.HDFSURI, "/") + jobDir,
		AggregatedStatusURI: AggregatedStatusURI(g.options.LauncherURI, frameworkName),
		JobInfoURI:          FrameworkURI(g.options.LauncherURI, frameworkName),
		WorkDir:             ContainerWorkDir,
		TaskRole: TaskRoleBindings{
			Name:       role.Name,
			TaskNumber: role.TaskNumber,
			CPUNumber:  role.CPUNumber,
			MemoryMB:   role.MemoryMB,
			ShmMB:      role.ShmMB,
			GPUNumber:  role.GPUNumber,
			Image:      config.TaskRoleImage(role),
			Command:    role.Command,
			Ports:      role.PortList,
		},
	}
	if bindings.TaskRole.ShmMB == 0 {
		bindings.TaskRole.ShmMB = common.DefaultShmMB
	}
	for _, r := range config.TaskRoles {
		bindings.TaskRoles = append(bindings.TaskRoles, TaskRoleSummary{Name: r.Name, TaskNumber: r.TaskNumber})
	}
	for _, name := range util.SortedKeys(config.JobEnvs) {
		bindings.JobEnvs = append(bindings.JobEnvs, EnvVar{Name: name, Value: config.JobEnvs[name]})
	}
	return bindings
}

// ScriptPath returns the path of the script of role in dir on the distributed filesystem.
func ScriptPath(jobDir, scriptsDir, role string) string {
	return path.Join(jobDir, scriptsDir, role+common.ScriptFileExtension)
}

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

// Package provisioner writes the context of a job to the distributed filesystem before it is
// submitted to the launcher.
package provisioner

import (
	"context"
	"path"

	"golang.org/x/sync/errgroup"
	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/sshkey"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

var (
	logger = log.Log.WithName("")
)

// FileSystem is the subset of the distributed filesystem the provisioner writes through.
type FileSystem interface {
	Mkdirs(ctx context.Context, p string) error
	Create(ctx context.Context, p string, data []byte) error
}

// KeyGenerator generates the SSH keypair of a job.
type KeyGenerator func(comment string) (*sshkey.KeyPair, error)

// Job is the context of one job to provision.
type Job struct {
	User string
	Name string
	// ConfigFileName is either JobConfig.yaml or JobConfig.json.
	ConfigFileName string
	ConfigData     []byte
	Artifacts      *framework.Artifacts
}

// Result reports the outcome of the best-effort tasks.
type Result struct {
	SSHEnabled bool
}

// Provisioner writes job contexts.
type Provisioner struct {
	fs     FileSystem
	keygen KeyGenerator
}

// Option configures a Provisioner.
type Option func(p *Provisioner)

// WithKeyGenerator replaces the SSH keypair generator.
func WithKeyGenerator(keygen KeyGenerator) Option {
	return func(p *Provisioner) {
		p.keygen = keygen
	}
}

func New(fs FileSystem, options ...Option) *Provisioner {
	p := &Provisioner{
		fs:     fs,
		keygen: sshkey.Generate,
	}
	for _, option := range options {
		option(p)
	}
	return p
}

type task struct {
	name     string
	required bool
	run      func(ctx context.Context) error
}

// Provision runs every task of job concurrently. The first failing required task cancels the
// others and its error is returned unchanged. Best-effort failures are only logged.
func (p *Provisioner) Provision(ctx context.Context, job *Job) (*Result, error) {
	result := &Result{}
	tasks := p.tasks(job, result)

	g, ctx := errgroup.WithContext(ctx)
	for _, t := range tasks {
		g.Go(func() error {
			err := t.run(ctx)
			if err == nil {
				logger.V(1).Info("Finished provisioning task", "task", t.name, "user", job.User, "job", job.Name)
				return nil
			}
			if t.required {
				return err
			}
			logger.Error(err, "Best-effort provisioning task failed", "task", t.name, "user", job.User, "job", job.Name)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

func (p *Provisioner) tasks(job *Job, result *Result) []task {
	jobDir := util.JobDir(job.User, job.Name)
	mkdirs := func(dir string) task {
		return task{name: "mkdirs " + dir, required: true, run: func(ctx context.Context) error {
			return p.fs.Mkdirs(ctx, dir)
		}}
	}
	create := func(file string, data []byte) task {
		return task{name: "create " + file, required: true, run: func(ctx context.Context) error {
			return p.fs.Create(ctx, file, data)
		}}
	}

	tasks := []task{
		mkdirs(common.OutputRootDir),
		mkdirs(common.ContainerRootDir),
		mkdirs(path.Join(jobDir, common.JobLogDir)),
		mkdirs(path.Join(jobDir, common.JobTmpDir)),
	}
	for _, role := range util.SortedKeys(job.Artifacts.YarnContainerScripts) {
		tasks = append(tasks, create(framework.ScriptPath(jobDir, common.YarnContainerScriptsDir, role),
			[]byte(job.Artifacts.YarnContainerScripts[role])))
	}
	for _, role := range util.SortedKeys(job.Artifacts.DockerContainerScripts) {
		tasks = append(tasks, create(framework.ScriptPath(jobDir, common.DockerContainerScriptsDir, role),
			[]byte(job.Artifacts.DockerContainerScripts[role])))
	}
	tasks = append(tasks,
		create(path.Join(jobDir, common.FrameworkDescriptorFileName), job.Artifacts.DescriptorJSON),
		create(path.Join(jobDir, job.ConfigFileName), job.ConfigData),
		task{name: "ssh keypair", run: func(ctx context.Context) error {
			if err := p.writeKeyPair(ctx, jobDir, job); err != nil {
				return err
			}
			result.SSHEnabled = true
			return nil
		}},
	)
	return tasks
}

func (p *Provisioner) writeKeyPair(ctx context.Context, jobDir string, job *Job) error {
	pair, err := p.keygen(util.FrameworkName(job.User, job.Name))
	if err != nil {
		return err
	}
	keyFile := path.Join(jobDir, common.SSHKeyFilesDir, job.Name)
	if err := p.fs.Create(ctx, keyFile, pair.PrivateKey); err != nil {
		return err
	}
	return p.fs.Create(ctx, keyFile+common.SSHPublicKeyFileExtension, pair.PublicKey)
}

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

package provisioner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/sshkey"
)

type fakeFileSystem struct {
	mu      sync.Mutex
	dirs    []string
	files   map[string][]byte
	failOn  string
	failErr error
}

func newFakeFileSystem() *fakeFileSystem {
	return &fakeFileSystem{files: map[string][]byte{}}
}

func (f *fakeFileSystem) Mkdirs(_ context.Context, p string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p == f.failOn {
		return f.failErr
	}
	f.dirs = append(f.dirs, p)
	return nil
}

func (f *fakeFileSystem) Create(_ context.Context, p string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p == f.failOn {
		return f.failErr
	}
	f.files[p] = data
	return nil
}

func (f *fakeFileSystem) fileNames() []string {
	names := make([]string, 0, len(f.files))
	for name := range f.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newTestJob() *Job {
	return &Job{
		User:           "alice",
		Name:           "job",
		ConfigFileName: "JobConfig.yaml",
		ConfigData:     []byte("name: job\n"),
		Artifacts: &framework.Artifacts{
			DescriptorJSON:         []byte(`{"version":10}`),
			YarnContainerScripts:   map[string]string{"worker": "yarn worker", "ps": "yarn ps"},
			DockerContainerScripts: map[string]string{"worker": "docker worker", "ps": "docker ps"},
		},
	}
}

func fakeKeyGenerator(comment string) (*sshkey.KeyPair, error) {
	return &sshkey.KeyPair{PrivateKey: []byte("private"), PublicKey: []byte("public " + comment)}, nil
}

func TestProvision(t *testing.T) {
	fs := newFakeFileSystem()
	p := New(fs, WithKeyGenerator(fakeKeyGenerator))

	result, err := p.Provision(context.TODO(), newTestJob())
	require.NoError(t, err)
	assert.True(t, result.SSHEnabled)

	assert.ElementsMatch(t, []string{
		"/Output",
		"/Container",
		"/Container/alice/job/log",
		"/Container/alice/job/tmp",
	}, fs.dirs)
	assert.Equal(t, []string{
		"/Container/alice/job/DockerContainerScripts/ps.sh",
		"/Container/alice/job/DockerContainerScripts/worker.sh",
		"/Container/alice/job/FrameworkDescriptor.json",
		"/Container/alice/job/JobConfig.yaml",
		"/Container/alice/job/YarnContainerScripts/ps.sh",
		"/Container/alice/job/YarnContainerScripts/worker.sh",
		"/Container/alice/job/ssh/keyFiles/job",
		"/Container/alice/job/ssh/keyFiles/job.pub",
	}, fs.fileNames())
	assert.Equal(t, "yarn worker", string(fs.files["/Container/alice/job/YarnContainerScripts/worker.sh"]))
	assert.Equal(t, "public alice~job", string(fs.files["/Container/alice/job/ssh/keyFiles/job.pub"]))
}

func TestProvisionKeyGenerationFailureIsBestEffort(t *testing.T) {
	fs := newFakeFileSystem()
	p := New(fs, WithKeyGenerator(func(string) (*sshkey.KeyPair, error) {
		return nil, sshkey.ErrUnsupportedPlatform
	}))

	result, err := p.Provision(context.TODO(), newTestJob())
	require.NoError(t, err)
	assert.False(t, result.SSHEnabled)
	assert.NotContains(t, fs.fileNames(), "/Container/alice/job/ssh/keyFiles/job")
	assert.Contains(t, fs.fileNames(), "/Container/alice/job/FrameworkDescriptor.json")
}

func TestProvisionKeyUploadFailureIsBestEffort(t *testing.T) {
	fs := newFakeFileSystem()
	fs.failOn = "/Container/alice/job/ssh/keyFiles/job"
	fs.failErr = errors.New("permission denied")
	p := New(fs, WithKeyGenerator(fakeKeyGenerator))

	result, err := p.Provision(context.TODO(), newTestJob())
	require.NoError(t, err)
	assert.False(t, result.SSHEnabled)
}

func TestProvisionRequiredFailure(t *testing.T) {
	testCases := []struct {
		name   string
		failOn string
	}{
		{name: "mkdirs", failOn: "/Container/alice/job/log"},
		{name: "script", failOn: "/Container/alice/job/YarnContainerScripts/ps.sh"},
		{name: "descriptor", failOn: "/Container/alice/job/FrameworkDescriptor.json"},
		{name: "job config", failOn: "/Container/alice/job/JobConfig.yaml"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fs := newFakeFileSystem()
			fs.failOn = tc.failOn
			fs.failErr = errors.New("disk full")
			p := New(fs, WithKeyGenerator(fakeKeyGenerator))

			result, err := p.Provision(context.TODO(), newTestJob())
			assert.Nil(t, result)
			assert.Same(t, fs.failErr, err)
		})
	}
}

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

package jobconfig_test

import (
	"context"
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/job-submitter/internal/jobconfig"
	"github.com/kubeflow/job-submitter/internal/webhdfs"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
	"github.com/kubeflow/job-submitter/pkg/common"
)

type fakeReader struct {
	files  map[string]string
	errors map[string]error
	opened []string
}

func (r *fakeReader) Open(_ context.Context, p string) ([]byte, error) {
	r.opened = append(r.opened, p)
	if err, ok := r.errors[p]; ok {
		return nil, err
	}
	data, ok := r.files[p]
	if !ok {
		return nil, &webhdfs.RemoteError{StatusCode: 404, Exception: "FileNotFoundException", Message: p}
	}
	return []byte(data), nil
}

const (
	yamlPath = "/Container/alice/job/JobConfig.yaml"
	jsonPath = "/Container/alice/job/JobConfig.json"
)

var _ = Describe("GetJobConfig", func() {
	var (
		reader   *fakeReader
		accessor *jobconfig.Accessor
	)

	BeforeEach(func() {
		reader = &fakeReader{files: map[string]string{}, errors: map[string]error{}}
		accessor = jobconfig.NewAccessor(reader)
	})

	It("Should return the YAML config without reading the JSON config", func() {
		reader.files[yamlPath] = "protocolVersion: 2\nname: job\ntaskRoles:\n  worker:\n    instances: 2\n"
		reader.files[jsonPath] = `{"jobName": "ignored"}`

		spec, err := accessor.GetJobConfig(context.TODO(), "alice", "job")
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Name).To(Equal("job"))
		Expect(spec.TaskRoles["worker"].Instances).To(Equal(int32(2)))
		Expect(reader.opened).To(Equal([]string{yamlPath}))
	})

	It("Should upgrade the JSON config when the YAML config is missing", func() {
		reader.files[jsonPath] = `{"jobName": "job", "image": "base:latest", "taskRoles": [{"name": "worker", "taskNumber": 3, "cpuNumber": 1, "memoryMB": 1024, "command": "python train.py"}]}`

		spec, err := accessor.GetJobConfig(context.TODO(), "alice", "job")
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.Name).To(Equal("job"))
		Expect(spec.TaskRoles).To(HaveKey("worker"))
		Expect(spec.TaskRoles["worker"].Instances).To(Equal(int32(3)))
		Expect(spec.TaskRoles["worker"].Command).To(Equal([]string{"python train.py"}))
		Expect(spec.Prerequisites).To(HaveLen(1))
		Expect(spec.Prerequisites[0].Name).To(Equal("image"))
		Expect(reader.opened).To(Equal([]string{yamlPath, jsonPath}))
	})

	It("Should fill defaults of a JSON config stored as submitted", func() {
		reader.files[jsonPath] = `{"jobName": "job", "taskRoles": [{"name": "worker", "taskNumber": 1, "cpuNumber": 1, "memoryMB": 1024, "command": "true"}]}`

		spec, err := accessor.GetJobConfig(context.TODO(), "alice", "job")
		Expect(err).NotTo(HaveOccurred())
		Expect(spec.VirtualCluster).To(Equal(common.DefaultVirtualCluster))
		Expect(spec.GangAllocation).NotTo(BeNil())
		Expect(*spec.GangAllocation).To(BeTrue())
		Expect(spec.TaskRoles["worker"].ShmMB).To(Equal(int32(common.DefaultShmMB)))
	})

	It("Should return NoJobConfigError only when both configs are missing", func() {
		_, err := accessor.GetJobConfig(context.TODO(), "alice", "job")
		Expect(err).To(HaveOccurred())
		Expect(apierrors.IsNoJobConfig(err)).To(BeTrue())
	})

	It("Should propagate other failures of the YAML config unmodified", func() {
		denied := &webhdfs.RemoteError{StatusCode: 403, Exception: "AccessControlException"}
		reader.errors[yamlPath] = denied
		reader.files[jsonPath] = `{"jobName": "job"}`

		_, err := accessor.GetJobConfig(context.TODO(), "alice", "job")
		Expect(err).To(BeIdenticalTo(error(denied)))
		Expect(reader.opened).To(Equal([]string{yamlPath}))
	})

	It("Should propagate other failures of the JSON config unmodified", func() {
		unavailable := fmt.Errorf("connection refused")
		reader.errors[jsonPath] = unavailable

		_, err := accessor.GetJobConfig(context.TODO(), "alice", "job")
		Expect(err).To(BeIdenticalTo(unavailable))
		Expect(apierrors.IsNoJobConfig(err)).To(BeFalse())
	})

	It("Should report a malformed YAML config", func() {
		reader.files[yamlPath] = "taskRoles: [unterminated"

		_, err := accessor.GetJobConfig(context.TODO(), "alice", "job")
		Expect(err).To(HaveOccurred())
		Expect(apierrors.IsInvalidParameters(err)).To(BeTrue())
	})
})

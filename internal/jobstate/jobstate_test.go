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

package jobstate_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"k8s.io/utils/ptr"

	"github.com/kubeflow/job-submitter/internal/jobstate"
	"github.com/kubeflow/job-submitter/pkg/common"
)

var _ = Describe("Translate", func() {
	exitCodes := []*int32{nil, ptr.To[int32](0), ptr.To[int32](1), ptr.To[int32](214), ptr.To[int32](-100)}

	DescribeTable("Should ignore the exit code of a live framework",
		func(frameworkState string, expected jobstate.JobState) {
			for _, exitCode := range exitCodes {
				Expect(jobstate.Translate(frameworkState, exitCode)).To(Equal(expected))
			}
		},
		Entry("FRAMEWORK_WAITING", common.FrameworkStateWaiting, jobstate.JobStateWaiting),
		Entry("APPLICATION_CREATED", common.FrameworkStateApplicationCreated, jobstate.JobStateWaiting),
		Entry("APPLICATION_LAUNCHED", common.FrameworkStateApplicationLaunched, jobstate.JobStateWaiting),
		Entry("APPLICATION_WAITING", common.FrameworkStateApplicationWaiting, jobstate.JobStateWaiting),
		Entry("APPLICATION_RUNNING", common.FrameworkStateApplicationRunning, jobstate.JobStateRunning),
		Entry("APPLICATION_RETRIEVING_DIAGNOSTICS", common.FrameworkStateApplicationRetrievingDiagnostics, jobstate.JobStateRunning),
		Entry("APPLICATION_COMPLETED", common.FrameworkStateApplicationCompleted, jobstate.JobStateRunning),
		Entry("unknown state", "FRAMEWORK_EXPLODED", jobstate.JobStateUnknown),
		Entry("empty state", "", jobstate.JobStateUnknown),
	)

	DescribeTable("Should use the exit code of a completed framework",
		func(exitCode *int32, expected jobstate.JobState) {
			Expect(jobstate.Translate(common.FrameworkStateCompleted, exitCode)).To(Equal(expected))
		},
		Entry("exit code 0", ptr.To[int32](0), jobstate.JobStateSucceeded),
		Entry("exit code 214", ptr.To[int32](214), jobstate.JobStateStopped),
		Entry("exit code 1", ptr.To[int32](1), jobstate.JobStateFailed),
		Entry("negative exit code", ptr.To[int32](-7351), jobstate.JobStateFailed),
		Entry("absent exit code", nil, jobstate.JobStateFailed),
	)
})

var _ = Describe("TranslateTask", func() {
	DescribeTable("Should translate launcher task states",
		func(taskState string, exitCode *int32, expected jobstate.JobState) {
			Expect(jobstate.TranslateTask(taskState, exitCode)).To(Equal(expected))
		},
		Entry("TASK_WAITING", common.TaskStateWaiting, nil, jobstate.JobStateWaiting),
		Entry("CONTAINER_REQUESTED", common.TaskStateContainerRequested, nil, jobstate.JobStateWaiting),
		Entry("CONTAINER_ALLOCATED", common.TaskStateContainerAllocated, nil, jobstate.JobStateRunning),
		Entry("CONTAINER_LAUNCHED", common.TaskStateContainerLaunched, nil, jobstate.JobStateRunning),
		Entry("CONTAINER_RUNNING", common.TaskStateContainerRunning, nil, jobstate.JobStateRunning),
		Entry("CONTAINER_COMPLETED succeeded", common.TaskStateContainerCompleted, ptr.To[int32](0), jobstate.JobStateSucceeded),
		Entry("TASK_COMPLETED failed", common.TaskStateCompleted, ptr.To[int32](137), jobstate.JobStateFailed),
		Entry("TASK_COMPLETED stopped", common.TaskStateCompleted, ptr.To[int32](214), jobstate.JobStateStopped),
		Entry("unknown", "TASK_LOST", ptr.To[int32](0), jobstate.JobStateUnknown),
	)
})

var _ = Describe("Retries", func() {
	It("Should sum every combination of counters", func() {
		values := []*int32{nil, ptr.To[int32](0), ptr.To[int32](1), ptr.To[int32](5)}
		for _, a := range values {
			for _, b := range values {
				for _, c := range values {
					for _, d := range values {
						for _, e := range values {
							counters := jobstate.RetryCounters{
								SucceededRetriedCount:         a,
								TransientNormalRetriedCount:   b,
								TransientConflictRetriedCount: c,
								NonTransientRetriedCount:      d,
								UnKnownRetriedCount:           e,
							}
							expected := ptr.Deref(a, 0) + ptr.Deref(b, 0) + ptr.Deref(c, 0) + ptr.Deref(d, 0) + ptr.Deref(e, 0)
							Expect(jobstate.Retries(counters)).To(Equal(expected))
						}
					}
				}
			}
		}
	})

	It("Should report zero when every counter is absent", func() {
		Expect(jobstate.Retries(jobstate.RetryCounters{})).To(Equal(int32(0)))
	})
})

var _ = Describe("DisplayState", func() {
	DescribeTable("Should only relabel live jobs being stopped",
		func(state jobstate.JobState, executionType string, expected string) {
			Expect(jobstate.DisplayState(state, executionType)).To(Equal(expected))
		},
		Entry("waiting and stopping", jobstate.JobStateWaiting, common.ExecutionTypeStop, "Stopping"),
		Entry("running and stopping", jobstate.JobStateRunning, common.ExecutionTypeStop, "Stopping"),
		Entry("succeeded and stopping", jobstate.JobStateSucceeded, common.ExecutionTypeStop, "SUCCEEDED"),
		Entry("stopped", jobstate.JobStateStopped, common.ExecutionTypeStop, "STOPPED"),
		Entry("running", jobstate.JobStateRunning, common.ExecutionTypeStart, "RUNNING"),
		Entry("waiting without execution type", jobstate.JobStateWaiting, "", "WAITING"),
	)
})

var _ = Describe("IsFinal", func() {
	It("Should only consider completed states final", func() {
		Expect(jobstate.IsFinal(jobstate.JobStateSucceeded)).To(BeTrue())
		Expect(jobstate.IsFinal(jobstate.JobStateFailed)).To(BeTrue())
		Expect(jobstate.IsFinal(jobstate.JobStateStopped)).To(BeTrue())
		Expect(jobstate.IsFinal(jobstate.JobStateWaiting)).To(BeFalse())
		Expect(jobstate.IsFinal(jobstate.JobStateRunning)).To(BeFalse())
		Expect(jobstate.IsFinal(jobstate.JobStateUnknown)).To(BeFalse())
	})
})

/*
Copyright 2024 The Kubeflow authors.

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

package util_test

import (
	"reflect"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kubeflow/job-submitter/pkg/util"
)

var _ = Describe("FrameworkName", func() {
	It("Should join user and job with a tilde", func() {
		Expect(util.FrameworkName("alice", "mnist")).To(Equal("alice~mnist"))
	})

	It("Should split a framework name back into user and job", func() {
		user, job := util.SplitFrameworkName("alice~mnist~v2")
		Expect(user).To(Equal("alice"))
		Expect(job).To(Equal("mnist~v2"))
	})

	It("Should return an empty user for a name without separator", func() {
		user, job := util.SplitFrameworkName("mnist")
		Expect(user).To(BeEmpty())
		Expect(job).To(Equal("mnist"))
	})
})

var _ = Describe("JobDir", func() {
	It("Should be rooted at the container directory", func() {
		Expect(util.JobDir("alice", "mnist")).To(Equal("/Container/alice/mnist"))
	})
})

var _ = Describe("SortedKeys", func() {
	It("Should return keys in ascending order", func() {
		m := map[string]int{"worker": 1, "ps": 2, "chief": 3}
		Expect(util.SortedKeys(m)).To(Equal([]string{"chief", "ps", "worker"}))
	})
})

var _ = Describe("CreateValidMetricName", func() {
	It("Should replace dashes with underscores", func() {
		Expect(util.CreateValidMetricName("job-submitter_", "job_submit_count")).To(Equal("job_submitter_job_submit_count"))
	})
})

var _ = Describe("Time formatting", func() {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	It("Should format a zero timestamp as not available", func() {
		Expect(util.FormatMillis(0)).To(Equal("N.A."))
		Expect(util.GetSinceTime(0, now)).To(Equal("N.A."))
	})

	It("Should format timestamps in RFC3339", func() {
		Expect(util.FormatMillis(now.UnixMilli())).To(Equal("2026-01-02T03:04:05Z"))
	})

	It("Should compute the elapsed time", func() {
		Expect(util.GetSinceTime(now.Add(-90*time.Second).UnixMilli(), now)).To(Equal("1m30s"))
	})
})

var _ = Describe("HistogramBuckets", func() {
	It("Should parse comma separated boundaries", func() {
		var hb util.HistogramBuckets
		Expect(hb.Set("0.5, 1,2")).To(Succeed())
		Expect([]float64(hb)).To(Equal([]float64{0.5, 1, 2}))
	})

	It("Should reject invalid boundaries", func() {
		var hb util.HistogramBuckets
		Expect(hb.Set("1,abc")).NotTo(Succeed())
	})

	It("Should reject boundaries out of order", func() {
		hb := util.HistogramBuckets{1}
		Expect(hb.Set("1,5,2")).To(MatchError(ContainSubstring("increasing order")))
		Expect([]float64(hb)).To(Equal([]float64{1}))
	})

	It("Should format boundaries the way they are parsed", func() {
		hb := util.HistogramBuckets{0.25, 1, 30}
		Expect(hb.String()).To(Equal("0.25,1,30"))
	})

	It("Should decode comma separated strings", func() {
		hook := util.StringToHistogramBucketsHookFunc()
		out, err := hook(reflect.TypeOf(""), reflect.TypeOf(util.HistogramBuckets{}), "0.5,1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal(util.HistogramBuckets{0.5, 1}))

		out, err = hook(reflect.TypeOf(""), reflect.TypeOf(""), "0.5,1")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("0.5,1"))
	})
})

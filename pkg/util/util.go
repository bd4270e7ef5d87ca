/*
Copyright 2017 Google LLC

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

package util

import (
	"fmt"
	"hash"
	"hash/fnv"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/kubeflow/job-submitter/pkg/common"
)

// NewHash32 returns a 32-bit hash computed from the given byte slice.
func NewHash32() hash.Hash32 {
	return fnv.New32()
}

// FrameworkName returns the launcher framework name of the job submitted by the given user.
func FrameworkName(user, job string) string {
	return user + common.FrameworkNameSeparator + job
}

// SplitFrameworkName splits a framework name into its user and job parts.
// A name without separator has an empty user.
func SplitFrameworkName(name string) (user string, job string) {
	if i := strings.Index(name, common.FrameworkNameSeparator); i >= 0 {
		return name[:i], name[i+len(common.FrameworkNameSeparator):]
	}
	return "", name
}

// JobDir returns the directory holding the artifacts of a job on the distributed filesystem.
func JobDir(user, job string) string {
	return path.Join(common.ContainerRootDir, user, job)
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CreateValidMetricName joins prefix and name into a valid Prometheus metric name.
func CreateValidMetricName(prefix, name string) string {
	// "-" aren't valid characters for prometheus metric names
	return strings.ReplaceAll(prefix+name, "-", "_")
}

// FormatMillis renders a launcher timestamp in milliseconds since epoch.
// Zero renders as "N.A.".
func FormatMillis(ms int64) string {
	if ms <= 0 {
		return "N.A."
	}
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// GetSinceTime returns a human readable duration since the given launcher timestamp.
func GetSinceTime(ms int64, now time.Time) string {
	if ms <= 0 {
		return "N.A."
	}
	return fmt.Sprint(now.Sub(time.UnixMilli(ms)).Round(time.Second))
}

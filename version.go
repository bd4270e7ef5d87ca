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

package jobsubmitter

import (
	"fmt"
	"io"
	"runtime"
)

type VersionInfo struct {
	Version      string
	BuildDate    string
	GitCommit    string
	GitTag       string
	GitTreeState string
	GoVersion    string
	Platform     string
}

// Set through -ldflags "-X github.com/kubeflow/job-submitter.version=...".
var (
	version      = "0.0.0"
	buildDate    = "1970-01-01T00:00:00Z"
	gitCommit    = ""
	gitTag       = ""
	gitTreeState = ""
)

// GetVersion returns the build information of the binary. Untagged or dirty builds get a
// version of the form 1.2.3+abcdef0[.dirty].
func GetVersion() VersionInfo {
	versionStr := version
	switch {
	case gitCommit != "" && gitTag != "" && gitTreeState == "clean":
		versionStr = gitTag
	case len(gitCommit) >= 7:
		versionStr += "+" + gitCommit[:7]
		if gitTreeState != "clean" {
			versionStr += ".dirty"
		}
	default:
		versionStr += "+unknown"
	}
	return VersionInfo{
		Version:      versionStr,
		BuildDate:    buildDate,
		GitCommit:    gitCommit,
		GitTag:       gitTag,
		GitTreeState: gitTreeState,
		GoVersion:    runtime.Version(),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}
}

// PrintVersion writes the build information to w.
func PrintVersion(w io.Writer, short bool) {
	v := GetVersion()
	fmt.Fprintf(w, "Job Submitter Version: %s\n", v.Version)
	if short {
		return
	}
	fmt.Fprintf(w, "Build Date: %s\n", v.BuildDate)
	fmt.Fprintf(w, "Git Commit ID: %s\n", v.GitCommit)
	if v.GitTag != "" {
		fmt.Fprintf(w, "Git Tag: %s\n", v.GitTag)
	}
	fmt.Fprintf(w, "Git Tree State: %s\n", v.GitTreeState)
	fmt.Fprintf(w, "Go Version: %s\n", v.GoVersion)
	fmt.Fprintf(w, "Platform: %s\n", v.Platform)
}

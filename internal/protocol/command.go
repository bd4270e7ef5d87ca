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

package protocol

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	v2 "github.com/kubeflow/job-submitter/api/v2"
	"github.com/kubeflow/job-submitter/pkg/apierrors"
)

const (
	// EnvWorkDir is the container directory prerequisites are fetched into.
	EnvWorkDir = "PAI_WORK_DIR"

	schemeGitSSH   = "git+ssh"
	schemeGitHTTPS = "git+https"
	schemeHTTP     = "http"
	schemeHTTPS    = "https"
	schemeHDFS     = "hdfs"

	defaultGitRef = "HEAD"
)

// buildTaskRoleCommand builds the shell command of a v1 task role from a v2 task role.
func buildTaskRoleCommand(name string, role *v2.TaskRole, index prerequisiteIndex) (string, error) {
	blockFuncs := []commandBlockFunc{
		preBlock(v2.PrerequisiteTypeData),
		preBlock(v2.PrerequisiteTypeScript),
		preBlock(v2.PrerequisiteTypeStorage),
		userCommandBlock,
		storagePostBlock,
	}

	var parts []string
	for _, blockFunc := range blockFuncs {
		block, err := blockFunc(role, index)
		if err != nil {
			return "", apierrors.NewInvalidParameters("task role %s: %v", name, err)
		}
		parts = append(parts, block...)
	}
	return strings.Join(parts, ";"), nil
}

type commandBlockFunc func(*v2.TaskRole, prerequisiteIndex) ([]string, error)

func preBlock(typ v2.PrerequisiteType) commandBlockFunc {
	return func(role *v2.TaskRole, index prerequisiteIndex) ([]string, error) {
		prerequisite, err := index.reference(role, typ)
		if err != nil || prerequisite == nil {
			return nil, err
		}

		dir := localDir(prerequisite)
		var block []string
		for _, uri := range prerequisite.URI {
			parsed, err := url.Parse(uri)
			if err != nil {
				return nil, fmt.Errorf("invalid uri %s of %s %s: %v", uri, typ, prerequisite.Name, err)
			}
			if typ == v2.PrerequisiteTypeStorage && parsed.Scheme != schemeHDFS {
				return nil, fmt.Errorf("storage %s only supports %s uri, got %s", prerequisite.Name, schemeHDFS, uri)
			}

			block = append(block, fmt.Sprintf("mkdir -p %s", dir))
			switch parsed.Scheme {
			case schemeGitSSH, schemeGitHTTPS:
				repo, ref := gitRepoAndRef(uri)
				block = append(block,
					fmt.Sprintf("git clone %s %s", repo, dir),
					fmt.Sprintf("git -C %s checkout %s", dir, ref),
				)
			case schemeHTTP, schemeHTTPS:
				block = append(block, fmt.Sprintf("wget -q -P %s %s", dir, uri))
			case schemeHDFS:
				block = append(block, fmt.Sprintf("if hdfs dfs -test -e %s; then hdfs dfs -get %s %s; else mkdir -p %s; fi",
					uri, uri, dir, path.Join(dir, hdfsBase(parsed))))
			default:
				return nil, fmt.Errorf("unsupported uri scheme %q of %s %s", parsed.Scheme, typ, prerequisite.Name)
			}
		}
		return block, nil
	}
}

func userCommandBlock(role *v2.TaskRole, _ prerequisiteIndex) ([]string, error) {
	return role.Command, nil
}

func storagePostBlock(role *v2.TaskRole, index prerequisiteIndex) ([]string, error) {
	prerequisite, err := index.reference(role, v2.PrerequisiteTypeStorage)
	if err != nil || prerequisite == nil {
		return nil, err
	}

	dir := localDir(prerequisite)
	var block []string
	for _, uri := range prerequisite.URI {
		parsed, err := url.Parse(uri)
		if err != nil {
			return nil, fmt.Errorf("invalid uri %s of storage %s: %v", uri, prerequisite.Name, err)
		}
		block = append(block,
			fmt.Sprintf("if ! hdfs dfs -test -e %s; then hdfs dfs -mkdir -p %s; fi", uri, uri),
			fmt.Sprintf("hdfs dfs -put -f %s/. %s", path.Join(dir, hdfsBase(parsed)), uri),
		)
	}
	return block, nil
}

func localDir(prerequisite *v2.Prerequisite) string {
	return fmt.Sprintf("$%s/%s/%s", EnvWorkDir, prerequisite.Type, prerequisite.Name)
}

// gitRepoAndRef splits a git+ssh or git+https URI into the clone URL and the ref in its fragment.
func gitRepoAndRef(uri string) (string, string) {
	repo := strings.TrimPrefix(uri, "git+")
	ref := defaultGitRef
	if i := strings.Index(repo, "#"); i >= 0 {
		if fragment := repo[i+1:]; fragment != "" {
			ref = fragment
		}
		repo = repo[:i]
	}
	return repo, ref
}

func hdfsBase(u *url.URL) string {
	base := path.Base(path.Clean("/" + u.Path))
	if base == "/" || base == "." {
		return u.Host
	}
	return base
}

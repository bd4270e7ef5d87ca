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

// Package localfs stores job contexts on a local directory standing in for the distributed
// filesystem root. It serves single node setups and tests.
package localfs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"sort"

	"github.com/spf13/afero"

	"github.com/kubeflow/job-submitter/internal/webhdfs"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// FileSystem implements the filesystem operations of the webhdfs client on an afero.Fs.
type FileSystem struct {
	fs afero.Fs
}

// New returns a FileSystem rooted at the local directory root.
func New(root string) *FileSystem {
	return NewWithFs(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// NewWithFs returns a FileSystem on fs.
func NewWithFs(fs afero.Fs) *FileSystem {
	return &FileSystem{fs: fs}
}

func (f *FileSystem) Mkdirs(_ context.Context, p string) error {
	if err := f.fs.MkdirAll(p, dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", p, err)
	}
	return nil
}

// Create writes data to p, overwriting it and creating missing parent directories.
func (f *FileSystem) Create(_ context.Context, p string, data []byte) error {
	if err := f.fs.MkdirAll(path.Dir(p), dirPerm); err != nil {
		return fmt.Errorf("failed to create directory %s: %v", path.Dir(p), err)
	}
	if err := afero.WriteFile(f.fs, p, data, filePerm); err != nil {
		return fmt.Errorf("failed to create file %s: %v", p, err)
	}
	return nil
}

func (f *FileSystem) Open(_ context.Context, p string) ([]byte, error) {
	data, err := afero.ReadFile(f.fs, p)
	if err != nil {
		return nil, wrap(p, err)
	}
	return data, nil
}

// ListStatus returns the entries of directory p sorted by name, or the status of p itself when
// it is a file.
func (f *FileSystem) ListStatus(_ context.Context, p string) ([]webhdfs.FileStatus, error) {
	info, err := f.fs.Stat(p)
	if err != nil {
		return nil, wrap(p, err)
	}
	if !info.IsDir() {
		status := fileStatus(info)
		status.PathSuffix = ""
		return []webhdfs.FileStatus{status}, nil
	}

	infos, err := afero.ReadDir(f.fs, p)
	if err != nil {
		return nil, wrap(p, err)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name() < infos[j].Name() })
	statuses := make([]webhdfs.FileStatus, 0, len(infos))
	for _, info := range infos {
		statuses = append(statuses, fileStatus(info))
	}
	return statuses, nil
}

func fileStatus(info os.FileInfo) webhdfs.FileStatus {
	status := webhdfs.FileStatus{
		PathSuffix:       info.Name(),
		Type:             webhdfs.FileTypeFile,
		Length:           info.Size(),
		Permission:       fmt.Sprintf("%o", info.Mode().Perm()),
		ModificationTime: info.ModTime().UnixMilli(),
		Replication:      1,
	}
	if info.IsDir() {
		status.Type = webhdfs.FileTypeDirectory
		status.Length = 0
	}
	return status
}

func wrap(p string, err error) error {
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%s: %w", p, webhdfs.ErrNotFound)
	}
	if errors.Is(err, os.ErrPermission) {
		return fmt.Errorf("%s: %w", p, webhdfs.ErrPermissionDenied)
	}
	return fmt.Errorf("failed to access %s: %v", p, err)
}

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

package webhdfs

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is matched by errors for paths that do not exist.
	ErrNotFound = errors.New("file not found")
	// ErrPermissionDenied is matched by errors for paths the user may not access.
	ErrPermissionDenied = errors.New("permission denied")
)

const (
	exceptionFileNotFound  = "FileNotFoundException"
	exceptionAccessControl = "AccessControlException"
)

// RemoteError is an error response of the filesystem.
type RemoteError struct {
	StatusCode    int    `json:"-"`
	Exception     string `json:"exception"`
	JavaClassName string `json:"javaClassName"`
	Message       string `json:"message"`
}

type remoteExceptionResponse struct {
	RemoteException *RemoteError `json:"RemoteException"`
}

func (e *RemoteError) Error() string {
	if e.Exception == "" {
		return fmt.Sprintf("webhdfs responded %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
	}
	return fmt.Sprintf("webhdfs responded %d %s: %s", e.StatusCode, e.Exception, e.Message)
}

func (e *RemoteError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Exception == exceptionFileNotFound || e.StatusCode == http.StatusNotFound
	case ErrPermissionDenied:
		return e.Exception == exceptionAccessControl || e.StatusCode == http.StatusForbidden
	}
	return false
}

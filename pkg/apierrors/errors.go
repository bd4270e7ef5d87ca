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

// Package apierrors defines the error taxonomy surfaced to callers of the job submitter.
package apierrors

import (
	"errors"
	"fmt"
)

// Code identifies the class of an Error.
type Code string

const (
	// CodeInvalidParameters marks a malformed job specification. It is raised before any external call.
	CodeInvalidParameters Code = "InvalidParametersError"
	// CodeForbiddenUser marks a user that is not allowed to use the requested virtual cluster.
	CodeForbiddenUser Code = "ForbiddenUserError"
	// CodeNoVirtualCluster marks a virtual cluster that does not exist.
	CodeNoVirtualCluster Code = "NoVirtualClusterError"
	// CodeNoJob marks a job unknown to the launcher.
	CodeNoJob Code = "NoJobError"
	// CodeNoJobConfig marks a job whose configuration is missing in every supported format.
	CodeNoJobConfig Code = "NoJobConfigError"
	// CodeUnknown marks any other external-call failure.
	CodeUnknown Code = "UnknownError"
)

// Error is an error carrying a Code.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return fmt.Sprintf("%s: %v", e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// NewInvalidParameters returns an InvalidParametersError.
func NewInvalidParameters(format string, args ...interface{}) *Error {
	return newError(CodeInvalidParameters, format, args...)
}

// NewForbiddenUser returns a ForbiddenUserError.
func NewForbiddenUser(format string, args ...interface{}) *Error {
	return newError(CodeForbiddenUser, format, args...)
}

// NewNoVirtualCluster returns a NoVirtualClusterError.
func NewNoVirtualCluster(format string, args ...interface{}) *Error {
	return newError(CodeNoVirtualCluster, format, args...)
}

// NewNoJob returns a NoJobError.
func NewNoJob(format string, args ...interface{}) *Error {
	return newError(CodeNoJob, format, args...)
}

// NewNoJobConfig returns a NoJobConfigError.
func NewNoJobConfig(format string, args ...interface{}) *Error {
	return newError(CodeNoJobConfig, format, args...)
}

// NewUnknown returns an UnknownError wrapping err.
func NewUnknown(err error, format string, args ...interface{}) *Error {
	e := newError(CodeUnknown, format, args...)
	e.Err = err
	return e
}

// CodeOf returns the Code of err, or CodeUnknown when err carries none.
func CodeOf(err error) Code {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	return CodeUnknown
}

func hasCode(err error, code Code) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Code == code
}

func IsInvalidParameters(err error) bool {
	return hasCode(err, CodeInvalidParameters)
}

func IsForbiddenUser(err error) bool {
	return hasCode(err, CodeForbiddenUser)
}

func IsNoVirtualCluster(err error) bool {
	return hasCode(err, CodeNoVirtualCluster)
}

func IsNoJob(err error) bool {
	return hasCode(err, CodeNoJob)
}

func IsNoJobConfig(err error) bool {
	return hasCode(err, CodeNoJobConfig)
}

func IsUnknown(err error) bool {
	return hasCode(err, CodeUnknown)
}

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

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// CompileSchema compiles an in-memory JSON schema document registered under url.
func CompileSchema(url string, doc []byte) (*jsonschema.Schema, error) {
	parsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(doc))
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema %s: %v", url, err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, parsed); err != nil {
		return nil, fmt.Errorf("failed to add schema %s: %v", url, err)
	}
	return compiler.Compile(url)
}

// MustCompileSchema is like CompileSchema but panics on error.
func MustCompileSchema(url string, doc []byte) *jsonschema.Schema {
	schema, err := CompileSchema(url, doc)
	if err != nil {
		panic(err)
	}
	return schema
}

// ValidateAgainstSchema validates the JSON form of obj and returns one error per violation.
func ValidateAgainstSchema(schema *jsonschema.Schema, obj interface{}) []error {
	raw, err := json.Marshal(obj)
	if err != nil {
		return []error{fmt.Errorf("failed to marshal object: %v", err)}
	}
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return []error{fmt.Errorf("failed to parse object: %v", err)}
	}

	err = schema.Validate(inst)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []error{err}
	}

	var errs []error
	for _, unit := range ve.BasicOutput().Errors {
		if unit.Error == nil {
			continue
		}
		location := unit.InstanceLocation
		if location == "" {
			location = "/"
		}
		errs = append(errs, fmt.Errorf("%s: %s", location, unit.Error.String()))
	}
	if len(errs) == 0 {
		errs = append(errs, ve)
	}
	return errs
}

// ListErrorFormat renders aggregated errors on a single line.
func ListErrorFormat(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

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

// Package interpolation substitutes "$$A.B.C$$" placeholders in the string values of a job document.
package interpolation

import (
	"regexp"
	"strings"
)

const (
	fieldTaskRoles  = "taskRoles"
	fieldCommand    = "command"
	fieldParameters = "parameters"
)

var placeholderRegexp = regexp.MustCompile(`\$\$([A-Za-z0-9_\-]+(?:\.[A-Za-z0-9_\-]+)*)\$\$`)

// Resolve replaces the placeholders of every string reachable from root with values found in lookup.
// A placeholder is replaced only when its path resolves to a string, a number or a boolean.
// Replaced text is not scanned again.
func Resolve(root *Node, lookup *Node) {
	if root == nil || lookup == nil {
		return
	}
	resolve(root, func(s string) string { return Substitute(s, lookup) })
}

// resolve applies substitute to every string reachable from root and reports whether any changed.
func resolve(root *Node, substitute func(string) string) bool {
	changed := false
	queue := []*Node{root}
	visited := map[*Node]bool{}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == nil || visited[node] {
			continue
		}
		visited[node] = true

		switch node.Kind {
		case KindString:
			if resolved := substitute(node.String); resolved != node.String {
				node.String = resolved
				changed = true
			}
		case KindArray:
			queue = append(queue, node.Array...)
		case KindObject:
			for _, key := range sortedKeys(node.Object) {
				queue = append(queue, node.Object[key])
			}
		case KindNull, KindBool, KindNumber:
		}
	}
	return changed
}

// Substitute replaces the placeholders in s with values found in lookup.
func Substitute(s string, lookup *Node) string {
	return substitute(s, lookup, func(string) bool { return true })
}

// substituteSettled replaces only the placeholders whose value is settled: substituting the
// value against lookup leaves it unchanged.
func substituteSettled(s string, lookup *Node) string {
	return substitute(s, lookup, func(text string) bool { return Substitute(text, lookup) == text })
}

func substitute(s string, lookup *Node, accept func(text string) bool) string {
	if !strings.Contains(s, "$$") {
		return s
	}
	return placeholderRegexp.ReplaceAllStringFunc(s, func(match string) string {
		path := placeholderRegexp.FindStringSubmatch(match)[1]
		target := lookup
		for _, key := range strings.Split(path, ".") {
			child, ok := target.Get(key)
			if !ok {
				return match
			}
			target = child
		}
		if text, ok := target.Text(); ok && accept(text) {
			return text
		}
		return match
	})
}

// resolveParameters resolves parameters that reference other parameters until nothing changes.
// Parameters referencing each other in a cycle are never settled and keep their placeholders.
func resolveParameters(parameters *Node) *Node {
	lookup := parameters.Clone()
	for pass := 0; pass <= countStrings(lookup); pass++ {
		next := lookup.Clone()
		current := lookup
		if !resolve(next, func(s string) string { return substituteSettled(s, current) }) {
			break
		}
		lookup = next
	}
	return lookup
}

func countStrings(root *Node) int {
	count := 0
	queue := []*Node{root}
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		if node == nil {
			continue
		}
		switch node.Kind {
		case KindString:
			count++
		case KindArray:
			queue = append(queue, node.Array...)
		case KindObject:
			for _, child := range node.Object {
				queue = append(queue, child)
			}
		case KindNull, KindBool, KindNumber:
		}
	}
	return count
}

// ResolveJob resolves a job document in two phases. Every command string of a task role is
// resolved against its task role first, then the whole document is resolved against the
// job parameters. Only settled values are substituted, so resolving the result again
// changes nothing.
func ResolveJob(doc *Node) {
	if doc == nil || doc.Kind != KindObject {
		return
	}

	if taskRoles, ok := doc.Get(fieldTaskRoles); ok && taskRoles.Kind == KindObject {
		for _, name := range sortedKeys(taskRoles.Object) {
			role := taskRoles.Object[name]
			command, ok := role.Get(fieldCommand)
			if !ok {
				continue
			}
			lookup := role.Clone()
			resolve(command, func(s string) string { return substituteSettled(s, lookup) })
		}
	}

	if parameters, ok := doc.Get(fieldParameters); ok {
		lookup := resolveParameters(parameters)
		resolve(doc, func(s string) string { return substituteSettled(s, lookup) })
	}
}

// Interpolate resolves a decoded job document and returns the resolved copy.
func Interpolate(doc interface{}) (interface{}, error) {
	root, err := FromValue(doc)
	if err != nil {
		return nil, err
	}
	ResolveJob(root)
	return ToValue(root), nil
}

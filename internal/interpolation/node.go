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

package interpolation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Kind is the kind of a Node.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// Node is a JSON value. Only the field matching Kind is meaningful.
type Node struct {
	Kind   Kind
	Bool   bool
	Number json.Number
	String string
	Array  []*Node
	Object map[string]*Node
}

func NewString(s string) *Node {
	return &Node{Kind: KindString, String: s}
}

// IsScalar reports whether n is a boolean or a number.
func (n *Node) IsScalar() bool {
	return n.Kind == KindBool || n.Kind == KindNumber
}

// Text returns the JSON text of a scalar node and the content of a string node.
func (n *Node) Text() (string, bool) {
	switch n.Kind {
	case KindString:
		return n.String, true
	case KindBool:
		return strconv.FormatBool(n.Bool), true
	case KindNumber:
		return n.Number.String(), true
	case KindNull, KindArray, KindObject:
		return "", false
	}
	return "", false
}

// Get returns the child reached by key. Arrays are indexed by decimal keys.
func (n *Node) Get(key string) (*Node, bool) {
	switch n.Kind {
	case KindObject:
		child, ok := n.Object[key]
		return child, ok && child != nil
	case KindArray:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n.Array) {
			return nil, false
		}
		return n.Array[i], n.Array[i] != nil
	case KindNull, KindBool, KindNumber, KindString:
		return nil, false
	}
	return nil, false
}

type conversion struct {
	value interface{}
	node  *Node
}

// FromValue converts a decoded JSON document into a node graph.
// Maps, slices, strings, booleans, numbers and nil are accepted.
func FromValue(value interface{}) (*Node, error) {
	root := &Node{}
	queue := []conversion{{value: value, node: root}}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		switch v := c.value.(type) {
		case nil:
			c.node.Kind = KindNull
		case bool:
			c.node.Kind = KindBool
			c.node.Bool = v
		case string:
			c.node.Kind = KindString
			c.node.String = v
		case json.Number:
			c.node.Kind = KindNumber
			c.node.Number = v
		case float64:
			c.node.Kind = KindNumber
			c.node.Number = json.Number(strconv.FormatFloat(v, 'f', -1, 64))
		case int:
			c.node.Kind = KindNumber
			c.node.Number = json.Number(strconv.Itoa(v))
		case int32:
			c.node.Kind = KindNumber
			c.node.Number = json.Number(strconv.FormatInt(int64(v), 10))
		case int64:
			c.node.Kind = KindNumber
			c.node.Number = json.Number(strconv.FormatInt(v, 10))
		case []interface{}:
			c.node.Kind = KindArray
			c.node.Array = make([]*Node, len(v))
			for i, item := range v {
				c.node.Array[i] = &Node{}
				queue = append(queue, conversion{value: item, node: c.node.Array[i]})
			}
		case map[string]interface{}:
			c.node.Kind = KindObject
			c.node.Object = make(map[string]*Node, len(v))
			for key, item := range v {
				child := &Node{}
				c.node.Object[key] = child
				queue = append(queue, conversion{value: item, node: child})
			}
		default:
			return nil, fmt.Errorf("unsupported value type %T", c.value)
		}
	}
	return root, nil
}

// ToValue converts a node graph back into a decoded JSON document.
// Numbers are returned as json.Number so that they marshal to their original text.
func ToValue(root *Node) interface{} {
	var result interface{}
	type pending struct {
		node *Node
		set  func(interface{})
	}
	queue := []pending{{node: root, set: func(v interface{}) { result = v }}}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]

		switch p.node.Kind {
		case KindNull:
			p.set(nil)
		case KindBool:
			p.set(p.node.Bool)
		case KindNumber:
			p.set(p.node.Number)
		case KindString:
			p.set(p.node.String)
		case KindArray:
			arr := make([]interface{}, len(p.node.Array))
			p.set(arr)
			for i, child := range p.node.Array {
				i := i
				queue = append(queue, pending{node: child, set: func(v interface{}) { arr[i] = v }})
			}
		case KindObject:
			obj := make(map[string]interface{}, len(p.node.Object))
			p.set(obj)
			for _, key := range sortedKeys(p.node.Object) {
				key := key
				queue = append(queue, pending{node: p.node.Object[key], set: func(v interface{}) { obj[key] = v }})
			}
		}
	}
	return result
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	clone, _ := FromValue(ToValue(n))
	return clone
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

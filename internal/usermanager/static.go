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

package usermanager

import (
	"context"
	"slices"
)

// StaticStore is a Store backed by in-memory records, usually loaded from the config file.
type StaticStore struct {
	users           map[string]User
	virtualClusters []string
}

var _ Store = &StaticStore{}

func NewStaticStore(users []User, virtualClusters []string) *StaticStore {
	s := &StaticStore{
		users:           make(map[string]User, len(users)),
		virtualClusters: slices.Clone(virtualClusters),
	}
	for _, user := range users {
		s.users[user.Name] = user
	}
	return s
}

func (s *StaticStore) GetUser(_ context.Context, name string) (*User, error) {
	user, ok := s.users[name]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (s *StaticStore) VirtualClusterExists(_ context.Context, vc string) (bool, error) {
	return slices.Contains(s.virtualClusters, vc), nil
}

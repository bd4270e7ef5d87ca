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

// Package usermanager checks whether a user may submit jobs to a virtual cluster.
package usermanager

import (
	"context"
	"slices"

	"sigs.k8s.io/controller-runtime/pkg/log"

	"github.com/kubeflow/job-submitter/pkg/apierrors"
)

var (
	logger = log.Log.WithName("")
)

// Backend types.
const (
	BackendStatic = "static"
	BackendEtcd   = "etcd"
)

// User is a user record.
type User struct {
	Name            string   `json:"name,omitempty"`
	Admin           bool     `json:"admin"`
	VirtualClusters []string `json:"virtualClusters,omitempty"`
}

// Store looks up users and virtual clusters. GetUser returns nil without error for an unknown user.
type Store interface {
	GetUser(ctx context.Context, name string) (*User, error)
	VirtualClusterExists(ctx context.Context, vc string) (bool, error)
}

// Manager answers permission checks from a Store.
type Manager struct {
	store Store
}

func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// CheckUserVC returns nil if user may use vc, a NoVirtualClusterError if vc does not exist and a
// ForbiddenUserError otherwise. Admins may use every existing virtual cluster.
func (m *Manager) CheckUserVC(ctx context.Context, user, vc string) error {
	exists, err := m.store.VirtualClusterExists(ctx, vc)
	if err != nil {
		return apierrors.NewUnknown(err, "failed to look up virtual cluster %s: %v", vc, err)
	}
	if !exists {
		return apierrors.NewNoVirtualCluster("virtual cluster %s is not found", vc)
	}

	record, err := m.store.GetUser(ctx, user)
	if err != nil {
		return apierrors.NewUnknown(err, "failed to look up user %s: %v", user, err)
	}
	if record == nil {
		logger.Info("Unknown user", "user", user, "virtualCluster", vc)
		return apierrors.NewForbiddenUser("user %s is not found", user)
	}
	if record.Admin || slices.Contains(record.VirtualClusters, vc) {
		return nil
	}
	return apierrors.NewForbiddenUser("user %s is not allowed to use virtual cluster %s", user, vc)
}

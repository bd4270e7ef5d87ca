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
	"encoding/json"
	"fmt"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"
)

// Key prefixes of user and virtual cluster records.
const (
	UserKeyPrefix           = "/pai/users/"
	VirtualClusterKeyPrefix = "/pai/virtualclusters/"
)

// EtcdStore is a Store backed by etcd. A user is a JSON encoded User under UserKeyPrefix, a
// virtual cluster exists when its key exists under VirtualClusterKeyPrefix.
type EtcdStore struct {
	kv clientv3.KV
}

var _ Store = &EtcdStore{}

func NewEtcdStore(kv clientv3.KV) *EtcdStore {
	return &EtcdStore{kv: kv}
}

// NewEtcdClient connects to the etcd cluster at endpoints.
func NewEtcdClient(endpoints []string, dialTimeout time.Duration) (*clientv3.Client, error) {
	client, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: dialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd %v: %v", endpoints, err)
	}
	return client, nil
}

func (s *EtcdStore) GetUser(ctx context.Context, name string) (*User, error) {
	resp, err := s.kv.Get(ctx, UserKeyPrefix+name)
	if err != nil {
		return nil, err
	}
	if len(resp.Kvs) == 0 {
		return nil, nil
	}
	user := &User{}
	if err := json.Unmarshal(resp.Kvs[0].Value, user); err != nil {
		return nil, fmt.Errorf("failed to decode user %s: %v", name, err)
	}
	user.Name = name
	return user, nil
}

func (s *EtcdStore) VirtualClusterExists(ctx context.Context, vc string) (bool, error) {
	resp, err := s.kv.Get(ctx, VirtualClusterKeyPrefix+vc, clientv3.WithCountOnly())
	if err != nil {
		return false, err
	}
	return resp.Count > 0, nil
}

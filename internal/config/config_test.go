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

package config

import (
	"bytes"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/usermanager"
	"github.com/kubeflow/job-submitter/pkg/util"
)

func validConfig() *Config {
	c := &Config{
		Launcher: LauncherConfig{URI: "http://launcher:9086", HDFSURI: "hdfs://namenode:9000"},
		WebHDFS:  WebHDFSConfig{URI: "http://namenode:5070"},
	}
	SetConfigDefaults(c)
	return c
}

func TestSetConfigDefaults(t *testing.T) {
	c := &Config{}
	SetConfigDefaults(c)

	assert.Equal(t, "yarn", c.Launcher.Type)
	assert.Equal(t, "default", c.Launcher.Namespace)
	assert.Equal(t, 30*time.Second, c.Launcher.Timeout)
	assert.Equal(t, "webhdfs", c.Storage.Backend)
	assert.Equal(t, "root", c.WebHDFS.User)
	assert.Equal(t, float64(50), c.WebHDFS.QPS)
	assert.Equal(t, 100, c.WebHDFS.Burst)
	assert.Equal(t, usermanager.BackendStatic, c.UserStore.Backend)
	assert.Equal(t, []string{"default"}, c.UserStore.VirtualClusters)
	assert.Equal(t, util.HistogramBuckets(util.DefaultProvisionLatencyBuckets), c.Metrics.ProvisionLatencyBuckets)
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		name      string
		mutate    func(c *Config)
		expectErr string
	}{
		{
			name:   "valid",
			mutate: func(*Config) {},
		},
		{
			name:      "missing launcher uri",
			mutate:    func(c *Config) { c.Launcher.URI = "" },
			expectErr: "launcher.uri is required",
		},
		{
			name: "kubernetes launcher needs no uri",
			mutate: func(c *Config) {
				c.Launcher.Type = "kubernetes"
				c.Launcher.URI = ""
			},
		},
		{
			name:      "unknown launcher",
			mutate:    func(c *Config) { c.Launcher.Type = "mesos" },
			expectErr: `unsupported launcher.type "mesos"`,
		},
		{
			name:      "relative webhdfs uri",
			mutate:    func(c *Config) { c.WebHDFS.URI = "namenode:5070/webhdfs" },
			expectErr: "webhdfs.uri",
		},
		{
			name: "local storage needs no webhdfs uri",
			mutate: func(c *Config) {
				c.Storage = StorageConfig{Backend: "local", LocalRoot: "/var/lib/submitter"}
				c.WebHDFS.URI = ""
			},
		},
		{
			name:      "local storage without root",
			mutate:    func(c *Config) { c.Storage.Backend = "local" },
			expectErr: "storage.localRoot is required",
		},
		{
			name:      "etcd without endpoints",
			mutate:    func(c *Config) { c.UserStore.Backend = "etcd" },
			expectErr: "userStore.etcdEndpoints is required",
		},
		{
			name:      "unordered latency buckets",
			mutate:    func(c *Config) { c.Metrics.ProvisionLatencyBuckets = util.HistogramBuckets{5, 1} },
			expectErr: "metrics.provisionLatencyBuckets",
		},
		{
			name:      "invalid pushgateway",
			mutate:    func(c *Config) { c.Metrics.PushgatewayURL = "pushgateway" },
			expectErr: "metrics.pushgatewayURL",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := validConfig()
			tc.mutate(c)
			err := c.Validate()
			if tc.expectErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.expectErr)
		})
	}
}

func TestValidateReportsEveryError(t *testing.T) {
	err := (&Config{}).Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported launcher.type")
	assert.Contains(t, err.Error(), "launcher.hdfsURI is required")
	assert.Contains(t, err.Error(), `unsupported storage.backend ""`)
	assert.Contains(t, err.Error(), "unsupported userStore.backend")
}

func TestFrameworkAMResource(t *testing.T) {
	c := validConfig()
	assert.Nil(t, c.FrameworkAMResource())

	c.Launcher.AMResource = AMResource{CPUNumber: 1, MemoryMB: 1024}
	assert.Equal(t, &framework.AMResource{CPUNumber: 1, MemoryMB: 1024}, c.FrameworkAMResource())
}

func TestLoad(t *testing.T) {
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(`
launcher:
  uri: http://launcher:9086
  hdfsURI: hdfs://namenode:9000
  timeout: 10s
webhdfs:
  uri: http://namenode:5070
  user: hdfs
userStore:
  backend: static
  virtualClusters: [default, vc1]
  users:
  - name: alice
    virtualClusters: [vc1]
  - name: admin
    admin: true
`)))

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, c.Launcher.Timeout)
	assert.Equal(t, "hdfs", c.WebHDFS.User)
	assert.Equal(t, []string{"default", "vc1"}, c.UserStore.VirtualClusters)
	require.Len(t, c.UserStore.Users, 2)
	assert.Equal(t, usermanager.User{Name: "alice", VirtualClusters: []string{"vc1"}}, c.UserStore.Users[0])
	assert.True(t, c.UserStore.Users[1].Admin)
}

func TestLoadBucketsFromString(t *testing.T) {
	v := viper.New()
	v.Set("launcher.uri", "http://launcher:9086")
	v.Set("launcher.hdfsURI", "hdfs://namenode:9000")
	v.Set("webhdfs.uri", "http://namenode:5070")
	v.Set("metrics.provisionLatencyBuckets", "0.5,1,5")

	c, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, util.HistogramBuckets{0.5, 1, 5}, c.Metrics.ProvisionLatencyBuckets)
}

func TestLoadInvalid(t *testing.T) {
	_, err := Load(viper.New())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

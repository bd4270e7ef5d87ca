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

// Package config holds the settings of the job submitter.
package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"

	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/launcher"
	"github.com/kubeflow/job-submitter/internal/usermanager"
	"github.com/kubeflow/job-submitter/pkg/common"
	"github.com/kubeflow/job-submitter/pkg/util"
)

// Default values.
const (
	DefaultLauncherType     = launcher.TypeYARN
	DefaultNamespace        = "default"
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultStorageBackend   = StorageBackendWebHDFS
	DefaultWebHDFSUser      = "root"
	DefaultWebHDFSQPS       = 50
	DefaultWebHDFSBurst     = 100
	DefaultUserStoreBackend = usermanager.BackendStatic
	DefaultEtcdDialTimeout  = 5 * time.Second
	DefaultMetricsPushJob   = "job-submitter"
)

// Storage backends holding job contexts.
const (
	StorageBackendWebHDFS = "webhdfs"
	StorageBackendLocal   = "local"
)

// Config is the configuration of the job submitter.
type Config struct {
	Launcher  LauncherConfig  `mapstructure:"launcher"`
	Storage   StorageConfig   `mapstructure:"storage"`
	WebHDFS   WebHDFSConfig   `mapstructure:"webhdfs"`
	UserStore UserStoreConfig `mapstructure:"userStore"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

type LauncherConfig struct {
	// Type is either yarn or kubernetes.
	Type string `mapstructure:"type"`
	// URI is the REST endpoint of the YARN framework launcher.
	URI string `mapstructure:"uri"`
	// Namespace holds the Framework objects of the kubernetes launcher.
	Namespace string `mapstructure:"namespace"`
	// HDFSURI is the default filesystem URI seen by containers, e.g. hdfs://namenode:9000.
	HDFSURI    string        `mapstructure:"hdfsURI"`
	Timeout    time.Duration `mapstructure:"timeout"`
	AMResource AMResource    `mapstructure:"amResource"`
}

// AMResource is the application master resource. A zero value leaves it to the launcher.
type AMResource struct {
	CPUNumber int32 `mapstructure:"cpuNumber"`
	MemoryMB  int32 `mapstructure:"memoryMB"`
	DiskType  int32 `mapstructure:"diskType"`
	DiskMB    int32 `mapstructure:"diskMB"`
}

type StorageConfig struct {
	// Backend is either webhdfs or local.
	Backend string `mapstructure:"backend"`
	// LocalRoot is the directory standing in for the filesystem root of the local backend.
	LocalRoot string `mapstructure:"localRoot"`
}

type WebHDFSConfig struct {
	URI     string        `mapstructure:"uri"`
	User    string        `mapstructure:"user"`
	Timeout time.Duration `mapstructure:"timeout"`
	QPS     float64       `mapstructure:"qps"`
	Burst   int           `mapstructure:"burst"`
}

type UserStoreConfig struct {
	// Backend is either static or etcd.
	Backend         string             `mapstructure:"backend"`
	EtcdEndpoints   []string           `mapstructure:"etcdEndpoints"`
	EtcdDialTimeout time.Duration      `mapstructure:"etcdDialTimeout"`
	Users           []usermanager.User `mapstructure:"users"`
	VirtualClusters []string           `mapstructure:"virtualClusters"`
}

type MetricsConfig struct {
	Prefix string `mapstructure:"prefix"`
	// PushgatewayURL enables pushing submission metrics when set.
	PushgatewayURL          string                `mapstructure:"pushgatewayURL"`
	PushJob                 string                `mapstructure:"pushJob"`
	ProvisionLatencyBuckets util.HistogramBuckets `mapstructure:"provisionLatencyBuckets"`
}

// SetConfigDefaults sets default values for unset fields.
func SetConfigDefaults(c *Config) {
	if c.Launcher.Type == "" {
		c.Launcher.Type = DefaultLauncherType
	}
	if c.Launcher.Namespace == "" {
		c.Launcher.Namespace = DefaultNamespace
	}
	if c.Launcher.Timeout == 0 {
		c.Launcher.Timeout = DefaultHTTPTimeout
	}

	if c.Storage.Backend == "" {
		c.Storage.Backend = DefaultStorageBackend
	}
	if c.WebHDFS.User == "" {
		c.WebHDFS.User = DefaultWebHDFSUser
	}
	if c.WebHDFS.Timeout == 0 {
		c.WebHDFS.Timeout = DefaultHTTPTimeout
	}
	if c.WebHDFS.QPS == 0 {
		c.WebHDFS.QPS = DefaultWebHDFSQPS
	}
	if c.WebHDFS.Burst == 0 {
		c.WebHDFS.Burst = DefaultWebHDFSBurst
	}

	if c.UserStore.Backend == "" {
		c.UserStore.Backend = DefaultUserStoreBackend
	}
	if c.UserStore.EtcdDialTimeout == 0 {
		c.UserStore.EtcdDialTimeout = DefaultEtcdDialTimeout
	}
	if c.UserStore.Backend == usermanager.BackendStatic && len(c.UserStore.VirtualClusters) == 0 {
		c.UserStore.VirtualClusters = []string{common.DefaultVirtualCluster}
	}

	if c.Metrics.PushJob == "" {
		c.Metrics.PushJob = DefaultMetricsPushJob
	}
	if len(c.Metrics.ProvisionLatencyBuckets) == 0 {
		c.Metrics.ProvisionLatencyBuckets = util.DefaultProvisionLatencyBuckets
	}
}

// Validate reports every invalid setting of c.
func (c *Config) Validate() error {
	var result *multierror.Error

	switch c.Launcher.Type {
	case launcher.TypeYARN:
		if err := validateURI("launcher.uri", c.Launcher.URI); err != nil {
			result = multierror.Append(result, err)
		}
	case launcher.TypeKubernetes:
		if c.Launcher.Namespace == "" {
			result = multierror.Append(result, fmt.Errorf("launcher.namespace is required by the kubernetes launcher"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported launcher.type %q", c.Launcher.Type))
	}
	if err := validateURI("launcher.hdfsURI", c.Launcher.HDFSURI); err != nil {
		result = multierror.Append(result, err)
	}

	switch c.Storage.Backend {
	case StorageBackendWebHDFS:
		if err := validateURI("webhdfs.uri", c.WebHDFS.URI); err != nil {
			result = multierror.Append(result, err)
		}
		if c.WebHDFS.QPS < 0 || c.WebHDFS.Burst < 0 {
			result = multierror.Append(result, fmt.Errorf("webhdfs.qps and webhdfs.burst must not be negative"))
		}
	case StorageBackendLocal:
		if c.Storage.LocalRoot == "" {
			result = multierror.Append(result, fmt.Errorf("storage.localRoot is required by the local backend"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported storage.backend %q", c.Storage.Backend))
	}

	switch c.UserStore.Backend {
	case usermanager.BackendStatic:
	case usermanager.BackendEtcd:
		if len(c.UserStore.EtcdEndpoints) == 0 {
			result = multierror.Append(result, fmt.Errorf("userStore.etcdEndpoints is required by the etcd backend"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("unsupported userStore.backend %q", c.UserStore.Backend))
	}

	if err := c.Metrics.ProvisionLatencyBuckets.Validate(); err != nil {
		result = multierror.Append(result, fmt.Errorf("metrics.provisionLatencyBuckets: %v", err))
	}
	if c.Metrics.PushgatewayURL != "" {
		if err := validateURI("metrics.pushgatewayURL", c.Metrics.PushgatewayURL); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

// FrameworkAMResource returns the application master resource of the generator, or nil when unset.
func (c *Config) FrameworkAMResource() *framework.AMResource {
	r := c.Launcher.AMResource
	if r == (AMResource{}) {
		return nil
	}
	return &framework.AMResource{
		CPUNumber: r.CPUNumber,
		MemoryMB:  r.MemoryMB,
		DiskType:  r.DiskType,
		DiskMB:    r.DiskMB,
	}
}

// Load decodes the settings held by v, applies the defaults and validates them.
func Load(v *viper.Viper) (*Config, error) {
	c := &Config{}
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		util.StringToHistogramBucketsHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(c, hook); err != nil {
		return nil, fmt.Errorf("failed to decode config: %v", err)
	}
	SetConfigDefaults(c)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %v", err)
	}
	return c, nil
}

func validateURI(key, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", key)
	}
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("%s is not a valid URI: %v", key, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URI, got %q", key, value)
	}
	return nil
}

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

// Package app wires the job submitter from its configuration.
package app

import (
	"context"
	"fmt"

	"github.com/spf13/viper"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/kubeflow/job-submitter/internal/config"
	"github.com/kubeflow/job-submitter/internal/framework"
	"github.com/kubeflow/job-submitter/internal/jobconfig"
	"github.com/kubeflow/job-submitter/internal/launcher"
	"github.com/kubeflow/job-submitter/internal/localfs"
	"github.com/kubeflow/job-submitter/internal/metrics"
	"github.com/kubeflow/job-submitter/internal/provisioner"
	"github.com/kubeflow/job-submitter/internal/submission"
	"github.com/kubeflow/job-submitter/internal/usermanager"
	"github.com/kubeflow/job-submitter/internal/webhdfs"
)

var (
	logger = ctrl.Log.WithName("")
)

// FileSystem is the storage holding job contexts.
type FileSystem interface {
	Mkdirs(ctx context.Context, p string) error
	Create(ctx context.Context, p string, data []byte) error
	Open(ctx context.Context, p string) ([]byte, error)
	ListStatus(ctx context.Context, p string) ([]webhdfs.FileStatus, error)
}

// App holds the wired components of one command invocation.
type App struct {
	Config  *config.Config
	Service *submission.Service
	FS      FileSystem
	Metrics *metrics.SubmissionMetrics

	closers []func() error
}

// New loads the configuration held by viper and wires every component.
func New() (*App, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires every component from cfg.
func NewWithConfig(cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	fs, err := newFileSystem(cfg)
	if err != nil {
		return nil, err
	}
	a.FS = fs

	l, err := newLauncher(cfg)
	if err != nil {
		return nil, err
	}

	store, err := a.newUserStore(cfg)
	if err != nil {
		return nil, err
	}

	a.Metrics = metrics.NewSubmissionMetrics(cfg.Metrics.Prefix, cfg.Metrics.ProvisionLatencyBuckets)
	a.Metrics.Register()

	a.Service = submission.NewService(submission.Options{
		Launcher: l,
		Checker:  usermanager.NewManager(store),
		Generator: framework.NewGenerator(framework.Options{
			HDFSURI:     cfg.Launcher.HDFSURI,
			LauncherURI: cfg.Launcher.URI,
			AMResource:  cfg.FrameworkAMResource(),
		}),
		Provisioner: provisioner.New(fs),
		Configs:     jobconfig.NewAccessor(fs),
		Metrics:     a.Metrics,
		HDFSURI:     cfg.Launcher.HDFSURI,
	})
	return a, nil
}

func newFileSystem(cfg *config.Config) (FileSystem, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendWebHDFS:
		hdfs, err := webhdfs.NewClient(webhdfs.Options{
			URI:     cfg.WebHDFS.URI,
			User:    cfg.WebHDFS.User,
			Timeout: cfg.WebHDFS.Timeout,
			QPS:     cfg.WebHDFS.QPS,
			Burst:   cfg.WebHDFS.Burst,
		})
		if err != nil {
			return nil, err
		}
		return hdfs, nil
	case config.StorageBackendLocal:
		logger.V(1).Info("Using local storage", "root", cfg.Storage.LocalRoot)
		return localfs.New(cfg.Storage.LocalRoot), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", cfg.Storage.Backend)
	}
}

func newLauncher(cfg *config.Config) (launcher.Launcher, error) {
	switch cfg.Launcher.Type {
	case launcher.TypeYARN:
		return launcher.NewYARNLauncher(cfg.Launcher.URI, nil, cfg.Launcher.Timeout), nil
	case launcher.TypeKubernetes:
		restConfig, err := ctrl.GetConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to get kube config: %v", err)
		}
		restConfig.Timeout = cfg.Launcher.Timeout
		c, err := client.New(restConfig, client.Options{})
		if err != nil {
			return nil, fmt.Errorf("failed to create kubernetes client: %v", err)
		}
		return launcher.NewKubernetesLauncher(c, cfg.Launcher.Namespace), nil
	default:
		return nil, fmt.Errorf("unsupported launcher type %q", cfg.Launcher.Type)
	}
}

func (a *App) newUserStore(cfg *config.Config) (usermanager.Store, error) {
	switch cfg.UserStore.Backend {
	case usermanager.BackendStatic:
		return usermanager.NewStaticStore(cfg.UserStore.Users, cfg.UserStore.VirtualClusters), nil
	case usermanager.BackendEtcd:
		etcdClient, err := usermanager.NewEtcdClient(cfg.UserStore.EtcdEndpoints, cfg.UserStore.EtcdDialTimeout)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, etcdClient.Close)
		return usermanager.NewEtcdStore(etcdClient), nil
	default:
		return nil, fmt.Errorf("unsupported user store backend %q", cfg.UserStore.Backend)
	}
}

// Close pushes the recorded metrics when a Pushgateway is configured and releases connections.
func (a *App) Close(ctx context.Context) {
	if url := a.Config.Metrics.PushgatewayURL; url != "" && a.Metrics != nil {
		if err := a.Metrics.Push(ctx, url, a.Config.Metrics.PushJob); err != nil {
			logger.Error(err, "Failed to push metrics")
		}
	}
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			logger.Error(err, "Failed to close connection")
		}
	}
}

// User returns the user the command acts for.
func User() (string, error) {
	user := viper.GetString("user")
	if user == "" {
		return "", fmt.Errorf("user is required, set --user or SUBMITTER_USER")
	}
	return user, nil
}

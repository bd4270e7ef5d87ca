/*
Copyright 2024 The Kubeflow authors.

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

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	_ "k8s.io/client-go/plugin/pkg/client/auth"
	ctrl "sigs.k8s.io/controller-runtime"
	logzap "sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/kubeflow/job-submitter/cmd/submitter/files"
	"github.com/kubeflow/job-submitter/cmd/submitter/jobconfig"
	"github.com/kubeflow/job-submitter/cmd/submitter/list"
	"github.com/kubeflow/job-submitter/cmd/submitter/status"
	"github.com/kubeflow/job-submitter/cmd/submitter/stop"
	"github.com/kubeflow/job-submitter/cmd/submitter/submit"
	"github.com/kubeflow/job-submitter/cmd/submitter/version"
	"github.com/kubeflow/job-submitter/internal/config"
	"github.com/kubeflow/job-submitter/pkg/util"
)

const envPrefix = "SUBMITTER"

var (
	configFile  string
	development bool
	zapOptions  = logzap.Options{}
)

// flagKeys maps persistent flags to config keys.
var flagKeys = map[string]string{
	"user":                      "user",
	"launcher-type":             "launcher.type",
	"launcher-uri":              "launcher.uri",
	"namespace":                 "launcher.namespace",
	"hdfs-uri":                  "launcher.hdfsURI",
	"launcher-timeout":          "launcher.timeout",
	"storage":                   "storage.backend",
	"local-root":                "storage.localRoot",
	"webhdfs-uri":               "webhdfs.uri",
	"webhdfs-user":              "webhdfs.user",
	"webhdfs-timeout":           "webhdfs.timeout",
	"webhdfs-qps":               "webhdfs.qps",
	"webhdfs-burst":             "webhdfs.burst",
	"user-store":                "userStore.backend",
	"etcd-endpoints":            "userStore.etcdEndpoints",
	"etcd-dial-timeout":         "userStore.etcdDialTimeout",
	"metrics-prefix":            "metrics.prefix",
	"pushgateway-url":           "metrics.pushgatewayURL",
	"provision-latency-buckets": "metrics.provisionLatencyBuckets",
}

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "submitter",
		Short: "submitter submits jobs to a cluster launcher and reports their state",
		Long: `submitter is the command-line tool for submitting jobs to a YARN framework launcher or a
Kubernetes FrameworkController. It resolves job parameters, provisions the job context on HDFS
and translates launcher states into job states.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			setupLog()
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	flags := command.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file. Defaults to submitter.yaml in the working directory or $HOME/.submitter.")
	flags.StringP("user", "u", os.Getenv("USER"), "The user submitting and owning jobs.")
	flags.String("launcher-type", config.DefaultLauncherType, "Launcher type, yarn or kubernetes.")
	flags.String("launcher-uri", "", "URI of the YARN framework launcher REST API.")
	flags.StringP("namespace", "n", config.DefaultNamespace, "Namespace of the Framework objects of the kubernetes launcher.")
	flags.String("hdfs-uri", "", "Default filesystem URI seen by containers, e.g. hdfs://namenode:9000.")
	flags.Duration("launcher-timeout", config.DefaultHTTPTimeout, "Timeout of launcher requests.")
	flags.String("storage", config.DefaultStorageBackend, "Storage of job contexts, webhdfs or local.")
	flags.String("local-root", "", "Local directory standing in for the filesystem root of the local storage.")
	flags.String("webhdfs-uri", "", "URI of the WebHDFS REST API, e.g. http://namenode:5070.")
	flags.String("webhdfs-user", config.DefaultWebHDFSUser, "User name sent to WebHDFS.")
	flags.Duration("webhdfs-timeout", config.DefaultHTTPTimeout, "Timeout of WebHDFS requests.")
	flags.Float64("webhdfs-qps", config.DefaultWebHDFSQPS, "Maximum WebHDFS requests per second.")
	flags.Int("webhdfs-burst", config.DefaultWebHDFSBurst, "Maximum WebHDFS request burst.")
	flags.String("user-store", config.DefaultUserStoreBackend, "User and virtual cluster store, static or etcd.")
	flags.StringSlice("etcd-endpoints", []string{}, "Endpoints of the etcd user store.")
	flags.Duration("etcd-dial-timeout", config.DefaultEtcdDialTimeout, "Dial timeout of the etcd user store.")
	flags.String("metrics-prefix", "", "Prefix of the submission metrics.")
	flags.String("pushgateway-url", "", "Prometheus Pushgateway receiving the submission metrics.")
	provisionLatencyBuckets := append(util.HistogramBuckets{}, util.DefaultProvisionLatencyBuckets...)
	flags.Var(&provisionLatencyBuckets, "provision-latency-buckets", "Comma separated upper bounds, in seconds, of the provision latency histogram.")
	flags.BoolVar(&development, "development", false, "Enable development logging.")
	bindFlags(flags)

	flagSet := flag.NewFlagSet("submitter", flag.ExitOnError)
	ctrl.RegisterFlags(flagSet)
	zapOptions.BindFlags(flagSet)
	flags.AddGoFlagSet(flagSet)

	command.AddCommand(submit.NewCommand())
	command.AddCommand(status.NewCommand())
	command.AddCommand(list.NewCommand())
	command.AddCommand(stop.NewCommand())
	command.AddCommand(jobconfig.NewCommand())
	command.AddCommand(files.NewCommand())
	command.AddCommand(version.NewCommand())
	return command
}

func bindFlags(flags *pflag.FlagSet) {
	for name, key := range flagKeys {
		if err := viper.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", name, err))
		}
	}
}

func initConfig() error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("submitter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.submitter")
	}
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %v", err)
		}
	}
	return nil
}

// setupLog configures the logging system.
func setupLog() {
	ctrl.SetLogger(logzap.New(
		logzap.UseFlagOptions(&zapOptions),
		logzap.WriteTo(os.Stderr),
		func(o *logzap.Options) {
			o.Development = development
		}, func(o *logzap.Options) {
			o.ZapOpts = append(o.ZapOpts, zap.AddCaller())
		}, func(o *logzap.Options) {
			var encoderConfig zapcore.EncoderConfig
			if !development {
				encoderConfig = zap.NewProductionEncoderConfig()
			} else {
				encoderConfig = zap.NewDevelopmentEncoderConfig()
				encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			}
			encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
			encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
			if !development {
				o.Encoder = zapcore.NewJSONEncoder(encoderConfig)
			} else {
				o.Encoder = zapcore.NewConsoleEncoder(encoderConfig)
			}
		}),
	)
}

func main() {
	if err := NewCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

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

package jobconfig

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/kubeflow/job-submitter/cmd/submitter/app"
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "config <job name>",
		Short: "Print the config of a submitted job",
		Long:  "Print the config of a submitted job as a v2 job spec. v1 job configs are upgraded.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := app.User()
			if err != nil {
				return err
			}
			a, err := app.New()
			if err != nil {
				return err
			}
			defer a.Close(context.TODO())

			spec, err := a.Service.GetJobConfig(context.TODO(), user, args[0])
			if err != nil {
				return fmt.Errorf("failed to get config of job %s: %v", args[0], err)
			}
			data, err := yaml.Marshal(spec)
			if err != nil {
				return fmt.Errorf("failed to encode job config: %v", err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	return command
}

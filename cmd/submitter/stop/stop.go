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

package stop

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kubeflow/job-submitter/cmd/submitter/app"
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "stop <job name>",
		Short: "Stop a job",
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

			if err := a.Service.Stop(context.TODO(), user, args[0]); err != nil {
				return fmt.Errorf("failed to stop job %s: %v", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "job %q is stopping\n", args[0])
			return nil
		},
	}
	return command
}

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

package submit

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kubeflow/job-submitter/cmd/submitter/app"
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "submit <job file>",
		Short: "Submit a job",
		Long: `Submit a job described by a v2 job spec (YAML) or a v1 job config (JSON).
Use - to read the job from standard input.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			payload, err := readPayload(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			user, err := app.User()
			if err != nil {
				return err
			}
			a, err := app.New()
			if err != nil {
				return err
			}
			defer a.Close(context.TODO())

			result, err := a.Service.Submit(context.TODO(), user, payload)
			if err != nil {
				return fmt.Errorf("failed to submit job: %v", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "job %q submitted to virtual cluster %q (submission %s)\n",
				result.FrameworkName, result.VirtualCluster, result.ID)
			if !result.SSHEnabled {
				fmt.Fprintln(cmd.OutOrStdout(), "ssh is not enabled for this job")
			}
			return nil
		},
	}
	return command
}

func readPayload(stdin io.Reader, file string) ([]byte, error) {
	if file == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read job from stdin: %v", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read job file %s: %v", file, err)
	}
	return data, nil
}

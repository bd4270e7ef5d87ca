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

package list

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kubeflow/job-submitter/cmd/submitter/app"
	"github.com/kubeflow/job-submitter/internal/submission"
	"github.com/kubeflow/job-submitter/pkg/util"
)

var (
	allUsers bool
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "list",
		Short: "List jobs",
		Long:  "List the jobs of the user, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var user string
			if !allUsers {
				var err error
				if user, err = app.User(); err != nil {
					return err
				}
			}
			a, err := app.New()
			if err != nil {
				return err
			}
			defer a.Close(context.TODO())

			jobs, err := a.Service.List(context.TODO(), user)
			if err != nil {
				return fmt.Errorf("failed to list jobs: %v", err)
			}
			printJobs(cmd.OutOrStdout(), jobs, time.Now())
			return nil
		},
	}

	command.Flags().BoolVarP(&allUsers, "all-users", "A", false, "If present, list the jobs of every user.")

	return command
}

func printJobs(w io.Writer, jobs []submission.JobSummary, now time.Time) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "User", "Virtual Cluster", "State", "Retries", "Tasks", "GPUs", "Age", "Completed"})
	for _, job := range jobs {
		table.Append([]string{
			job.Name,
			job.User,
			job.VirtualCluster,
			job.DisplayState,
			strconv.Itoa(int(job.Retries)),
			strconv.Itoa(int(job.TotalTaskNumber)),
			strconv.Itoa(int(job.TotalGPUNumber)),
			util.GetSinceTime(job.CreatedTimestamp, now),
			util.FormatMillis(job.CompletedTimestamp),
		})
	}
	table.Render()
}

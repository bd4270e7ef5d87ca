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

package status

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

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "status <job name>",
		Short: "Get status of a job",
		Long:  "Get the state of a job and of each of its tasks",
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

			status, err := a.Service.Status(context.TODO(), user, args[0])
			if err != nil {
				return fmt.Errorf("failed to get status of job %s: %v", args[0], err)
			}
			printStatus(cmd.OutOrStdout(), status, time.Now())
			return nil
		},
	}
	return command
}

func printStatus(w io.Writer, status *submission.JobStatus, now time.Time) {
	fmt.Fprintln(w, "job state:")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "User", "Virtual Cluster", "State", "Retries", "Exit Code", "Created", "Completed", "Age"})
	table.Append([]string{
		status.Name,
		status.User,
		status.VirtualCluster,
		status.DisplayState,
		strconv.Itoa(int(status.Retries)),
		formatExitCode(status.ApplicationExitCode),
		util.FormatMillis(status.CreatedTimestamp),
		util.FormatMillis(status.CompletedTimestamp),
		util.GetSinceTime(status.CreatedTimestamp, now),
	})
	table.Render()

	if status.ApplicationDiagnostics != "" {
		fmt.Fprintf(w, "diagnostics:\n%s\n", status.ApplicationDiagnostics)
	}

	if len(status.TaskRoles) == 0 {
		return
	}
	fmt.Fprintln(w, "task state:")
	table = tablewriter.NewWriter(w)
	table.SetHeader([]string{"Task Role", "Index", "State", "Container IP", "Ports", "Exit Code", "Log"})
	for _, role := range util.SortedKeys(status.TaskRoles) {
		for _, task := range status.TaskRoles[role] {
			table.Append([]string{
				role,
				strconv.Itoa(int(task.Index)),
				string(task.State),
				formatNotAvailable(task.ContainerIP),
				formatNotAvailable(task.ContainerPort),
				formatExitCode(task.ExitCode),
				formatNotAvailable(task.ContainerLog),
			})
		}
	}
	table.Render()
}

func formatExitCode(code *int32) string {
	if code == nil {
		return "N.A."
	}
	return strconv.Itoa(int(*code))
}

func formatNotAvailable(s string) string {
	if s == "" {
		return "N.A."
	}
	return s
}

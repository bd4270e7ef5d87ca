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

package files

import (
	"context"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/kubeflow/job-submitter/cmd/submitter/app"
	"github.com/kubeflow/job-submitter/internal/webhdfs"
	"github.com/kubeflow/job-submitter/pkg/util"
)

func NewCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "files <job name> [subdirectory]",
		Short: "List the provisioned files of a job",
		Args:  cobra.RangeArgs(1, 2),
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

			dir := util.JobDir(user, args[0])
			if len(args) == 2 {
				dir = path.Join(dir, args[1])
			}
			statuses, err := a.FS.ListStatus(context.TODO(), dir)
			if err != nil {
				return fmt.Errorf("failed to list %s: %v", dir, err)
			}
			printFiles(cmd.OutOrStdout(), statuses)
			return nil
		},
	}
	return command
}

func printFiles(w io.Writer, statuses []webhdfs.FileStatus) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Type", "Size", "Owner", "Permission", "Modified"})
	for _, s := range statuses {
		table.Append([]string{
			s.PathSuffix,
			s.Type,
			strconv.FormatInt(s.Length, 10),
			s.Owner,
			s.Permission,
			util.FormatMillis(s.ModificationTime),
		})
	}
	table.Render()
}

// Package versioncmder implements `gwstream version`.
package versioncmder

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/gwstream/pkg/cliui"
	"github.com/papercomputeco/gwstream/pkg/utils"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, row := range [][2]string{
				{"Version", utils.Version},
				{"Sha", utils.Revision()},
				{"Built at", utils.Buildtime},
				{"Go", runtime.Version()},
			} {
				fmt.Fprintf(out, "%s %s\n", cliui.KeyStyle.Render(row[0]+":"), row[1])
			}
			return nil
		},
	}
}

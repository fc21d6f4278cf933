package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Work with reviewer corrections",
}

var feedbackExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export corrections as retraining CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		deps, cleanup, err := connect(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		out, _ := cmd.Flags().GetString("out")
		w, closeFn, err := outputWriter(out)
		if err != nil {
			return err
		}

		n, err := deps.Service.ExportCorrections(cmd.Context(), w)
		if cerr := closeFn(); err == nil {
			err = cerr
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d corrections\n", n)
		return nil
	},
}

func init() {
	feedbackExportCmd.Flags().StringP("out", "o", "-", "Output file, - for stdout")
	feedbackCmd.AddCommand(feedbackExportCmd)
}

package main

import (
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect model artifacts",
}

var modelsInspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Load both models and print their metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		clf, err := loadClassifier(cmd)
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), clf.Current().Models().Info())
	},
}

func init() {
	modelsInspectCmd.Flags().String("models-dir", "", "Directory holding category_model.json and priority_model.json (skips config loading)")
	modelsCmd.AddCommand(modelsInspectCmd)
}

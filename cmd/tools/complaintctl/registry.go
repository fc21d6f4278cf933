package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"complaint-triage/pkg/registry"

	cc "complaint-triage/internal/workers/complaint/classify-complaint"
	sf "complaint-triage/internal/workers/complaint/submit-feedback"
)

// implementedTaskTypes lists every task type the service registers a worker for.
var implementedTaskTypes = []string{cc.TaskType, sf.TaskType}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Maintain the activity registry",
}

var registryValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the registry against the implemented workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		reg, err := registry.LoadRegistry(path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}
		if err := reg.Validate(implementedTaskTypes); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Registry validation passed. Found %d activities.\n", len(reg.Activities))
		return nil
	},
}

var registrySetStatusCmd = &cobra.Command{
	Use:   "set-status <activity-id> <status>",
	Short: "Update an activity's implementation status",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("path")
		reg, err := registry.LoadRegistry(path)
		if err != nil {
			return fmt.Errorf("failed to load registry: %w", err)
		}

		var found bool
		for i := range reg.Activities {
			if reg.Activities[i].ID == args[0] {
				reg.Activities[i].ImplementationStatus = args[1]
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("activity with ID %s not found", args[0])
		}
		if err := reg.Validate(implementedTaskTypes); err != nil {
			return fmt.Errorf("registry validation failed: %w", err)
		}
		if err := reg.Save(path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated activity %s, status %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	registryCmd.PersistentFlags().String("path", "configs/activity-registry.json", "Path to registry file")
	registryCmd.AddCommand(registryValidateCmd)
	registryCmd.AddCommand(registrySetStatusCmd)
}

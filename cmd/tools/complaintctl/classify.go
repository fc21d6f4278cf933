package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"complaint-triage/internal/bootstrap"
	"complaint-triage/internal/classifier"
	"complaint-triage/internal/common/config"
	"complaint-triage/internal/models"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Classify complaint text with the local models",
	Long:  "Classify runs the full pipeline in-process. Text comes from the arguments, or from stdin when none are given.",
	RunE:  runClassify,
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize [text...]",
	Short: "Print the normalized form the models see",
	RunE: func(cmd *cobra.Command, args []string) error {
		clf, err := loadClassifier(cmd)
		if err != nil {
			return err
		}
		text, err := inputText(cmd, args)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), clf.Normalize(text))
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{classifyCmd, normalizeCmd} {
		c.Flags().String("models-dir", "", "Directory holding category_model.json and priority_model.json (skips config loading)")
	}
	classifyCmd.Flags().Bool("explain", false, "Include the normalized text, model priority and matched rule")
}

// explanation is the --explain output.
type explanation struct {
	*models.Prediction
	NormalizedText string          `json:"normalized_text"`
	ModelPriority  models.Priority `json:"model_priority"`
	RulePattern    string          `json:"rule_pattern,omitempty"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	clf, err := loadClassifier(cmd)
	if err != nil {
		return err
	}
	text, err := inputText(cmd, args)
	if err != nil {
		return err
	}

	d, err := clf.Decide(text)
	if err != nil {
		return err
	}

	if explain, _ := cmd.Flags().GetBool("explain"); explain {
		return printJSON(cmd.OutOrStdout(), explanation{
			Prediction:     d.Prediction,
			NormalizedText: d.Normalized,
			ModelPriority:  d.MLPriority,
			RulePattern:    d.RulePattern,
		})
	}
	return printJSON(cmd.OutOrStdout(), d.Prediction)
}

func loadClassifier(cmd *cobra.Command) (*classifier.Reloadable, error) {
	var modelsCfg config.ModelsConfig
	if dir, _ := cmd.Flags().GetString("models-dir"); dir != "" {
		modelsCfg = config.ModelsConfig{
			Dir:          dir,
			CategoryFile: classifier.CategoryModelFile,
			PriorityFile: classifier.PriorityModelFile,
		}
	} else {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		modelsCfg = cfg.Models
	}
	return bootstrap.NewClassifier(modelsCfg, newLogger(cmd))
}

func inputText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 {
		return strings.Join(args, " "), nil
	}
	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok {
		if info, err := f.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
			return "", fmt.Errorf("no complaint text given")
		}
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

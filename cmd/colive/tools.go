package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/colive/internal/composer"
	"github.com/MikeSquared-Agency/colive/internal/dialogue"
	"github.com/MikeSquared-Agency/colive/internal/extractor"
	"github.com/MikeSquared-Agency/colive/internal/llm"
	"github.com/MikeSquared-Agency/colive/internal/processor"
)

// promptCmd prints the messages that would be sent for a request read from stdin.
func promptCmd() *cobra.Command {
	var variant string
	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Compose the prompt for a request on stdin without calling the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			var req dialogue.Request
			if err := json.NewDecoder(cmd.InOrStdin()).Decode(&req); err != nil {
				return fmt.Errorf("decode request: %w", err)
			}

			personas, closePersonas, err := openPersonas(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer closePersonas()

			proc := processor.New(personas, nil, nil, nil, processor.Options{
				DefaultVariant: cfg.Variant,
				Model:          cfg.Model,
			}, slog.Default())

			prompt, err := proc.Prompt(cmd.Context(), &req, variant)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), struct {
				Variant composer.Variant `json:"variant"`
				Allowed []string         `json:"allowed"`
				Request llm.Request      `json:"request"`
			}{prompt.Variant, prompt.Allowed, prompt.Request()})
		},
	}
	cmd.Flags().StringVar(&variant, "variant", "", "variant name (default from COLIVE_VARIANT)")
	return cmd
}

// extractCmd runs raw model output from stdin through the extractor.
func extractCmd() *cobra.Command {
	var (
		allowed []string
		strict  bool
	)
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract dialogue turns from raw model output on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return err
			}

			c := extractor.Constraints{Allowed: allowed}
			if strict {
				c.Vocabulary = dialogue.DefaultVocabulary
			}
			res := extractor.New(slog.Default()).Extract(string(raw), c)

			return printJSON(cmd.OutOrStdout(), struct {
				Dialogue []dialogue.Turn `json:"dialogue"`
				Degraded bool            `json:"degraded"`
				Stage    extractor.Stage `json:"stage"`
				Dropped  int             `json:"dropped"`
			}{res.Turns, res.Degraded, res.Stage, res.Dropped})
		},
	}
	cmd.Flags().StringSliceVar(&allowed, "allowed", nil, "speakers allowed to reply (comma separated)")
	cmd.Flags().BoolVar(&strict, "strict", false, "enforce the emotion and gesture vocabulary")
	_ = cmd.MarkFlagRequired("allowed")
	return cmd
}

func variantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "variants",
		Short: "List built-in variants",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), composer.Variants())
		},
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}


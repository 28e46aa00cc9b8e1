package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"tabml/app"
	"tabml/domain/training"
	"tabml/internal/config"
	"tabml/internal/dataset"
	"tabml/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dataDir string

	rootCmd := &cobra.Command{
		Use:   "tabml",
		Short: "Train and inspect tabular models from the command line",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			_ = godotenv.Load()
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Dataset directory (default: UPLOAD_FOLDER or ./uploads)")

	rootCmd.AddCommand(
		newTrainCmd(&dataDir),
		newEDACmd(&dataDir),
		newMigrateCmd(),
	)
	return rootCmd
}

// loadConfig reads the environment and applies the --data-dir override
func loadConfig(dataDir string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if dataDir != "" {
		cfg.Storage.UploadDir = dataDir
	}
	return cfg, nil
}

func newTrainCmd(dataDir *string) *cobra.Command {
	var (
		target    string
		features  []string
		model     string
		trainSize float64
		testSize  float64
		normalize []string
		asJSON    bool
		scalerFit string
		seed      int64
	)

	cmd := &cobra.Command{
		Use:   "train [dataset]",
		Short: "Train a model on a stored dataset and report its held-out score",
		Long: `Train one of the supported model families on a CSV or Excel dataset.

Classification targets are scored by accuracy, continuous targets by R².

Example: tabml train sales.csv --target revenue --features ads,visits --model random_forest --normalize visits`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}
			if scalerFit != "" {
				cfg.Training.ScalerFitScope = training.ScalerFitScope(scalerFit)
			}
			if cmd.Flags().Changed("seed") {
				cfg.Training.PartitionSeed = seed
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			req := training.Request{
				DatasetRef:       args[0],
				TargetColumn:     target,
				FeatureColumns:   features,
				Normalize:        len(normalize) > 0,
				NormalizeColumns: normalize,
				TrainFraction:    trainSize / 100,
				EvalFraction:     testSize / 100,
				ModelFamily:      model,
			}
			return runTrain(cmd.Context(), cmd.OutOrStdout(), cfg, req, asJSON)
		},
	}

	cmd.Flags().StringVar(&target, "target", "", "Target column")
	cmd.Flags().StringSliceVar(&features, "features", nil, "Feature columns (comma separated)")
	cmd.Flags().StringVar(&model, "model", "", "Model family: linear_regression|logistic_regression|random_forest|svm|gradient_boosting")
	cmd.Flags().Float64Var(&trainSize, "train-size", 70, "Train percentage")
	cmd.Flags().Float64Var(&testSize, "test-size", 30, "Test percentage")
	cmd.Flags().StringSliceVar(&normalize, "normalize", nil, "Feature columns to min-max scale")
	cmd.Flags().StringVar(&scalerFit, "scaler-fit", "", "Scaler fit scope: full|train (default: SCALER_FIT_SCOPE)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Partition seed")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func runTrain(ctx context.Context, out io.Writer, cfg *config.Config, req training.Request, asJSON bool) error {
	svc := app.NewTrainingService(dataset.NewLoader(cfg.Storage.UploadDir), cfg.Training)
	result, err := svc.Train(ctx, req)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	metric := "R²"
	if result.Variant.IsClassifier() {
		metric = "accuracy"
	}
	fmt.Fprintf(out, "Model:    %s (%s)\n", result.ModelFamily.DisplayName(), result.Variant)
	fmt.Fprintf(out, "Target:   %s\n", req.TargetColumn)
	fmt.Fprintf(out, "Features: %s\n", strings.Join(req.FeatureColumns, ", "))
	fmt.Fprintf(out, "Split:    %d train / %d test rows\n", result.TrainRows, result.EvalRows)
	fmt.Fprintf(out, "Score:    %.4f %s\n", result.Score, metric)
	fmt.Fprintf(out, "Run:      %s\n", result.RunID)
	return nil
}

func newEDACmd(dataDir *string) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "eda [dataset]",
		Short: "Print an exploratory report for a stored dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*dataDir)
			if err != nil {
				return err
			}

			report, err := app.NewEDAService(dataset.NewLoader(cfg.Storage.UploadDir)).Analyze(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch format {
			case "markdown", "md":
				_, err = io.WriteString(out, report.Markdown())
			case "html":
				_, err = out.Write(report.HTML())
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				err = enc.Encode(report)
			default:
				err = fmt.Errorf("unknown format %q (use markdown, html or json)", format)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&format, "format", "markdown", "Output format: markdown|html|json")
	return cmd
}

func newMigrateCmd() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create the account schema in DATABASE_URL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cfg.Database.Enabled() {
				return fmt.Errorf("DATABASE_URL is not set")
			}

			db, err := sqlx.Connect("postgres", cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("failed to connect to database: %w", err)
			}
			defer db.Close()

			runner := migration.NewRunner()
			if reset {
				if err := runner.Reset(cmd.Context(), db); err != nil {
					return err
				}
			}
			if err := runner.Run(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Schema at version %s\n", runner.Version())
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Drop the schema before migrating")
	return cmd
}

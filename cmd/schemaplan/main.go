package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/cobra"

	"github.com/calmarsh/schemaplan"
	"github.com/calmarsh/schemaplan/internal/dataset"
	"github.com/calmarsh/schemaplan/internal/exec"
)

var (
	schemaPath string
	engineName string
	outputFile string

	dropMode bool

	bucket   string
	region   string
	iamRole  string
	prefix   string
	gzipped  bool
	localDir string
	lenient  bool

	dbURL           string
	dropFirst       bool
	suspendFKChecks bool
	analyze         bool

	datasetName string
	datasetDir  string
)

var rootCmd = &cobra.Command{
	Use:   "schemaplan",
	Short: "Generate dependency-ordered DDL and bulk-load directives for benchmark schemas",
	Long: `Schemaplan reads a JSON schema document (tables, typed columns, foreign-key
relationships), computes a safe table creation order, and emits per-engine
CREATE/DROP scripts and bulk-load directives for postgres, redshift, mysql,
or sqlite targets.`,
}

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print the table creation order (or drop order with --drop)",
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := buildPlan()
		if err != nil {
			return err
		}
		names := plan.CreationOrder()
		if dropMode {
			names = plan.DropOrder()
		}
		return writeOutput(strings.Join(names, "\n") + "\n")
	},
}

var ddlCmd = &cobra.Command{
	Use:   "ddl",
	Short: "Emit the CREATE script (or DROP script with --drop) for an engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		plan, err := buildPlan()
		if err != nil {
			return err
		}
		script, err := plan.CreateScript(engineName)
		if dropMode {
			script, err = plan.DropScript(engineName)
		}
		if err != nil {
			return err
		}
		return writeOutput(script)
	},
}

var loadgenCmd = &cobra.Command{
	Use:   "loadgen",
	Short: "Emit per-table bulk-load directives for an engine",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := schemaplan.LoadFile(schemaPath)
		if err != nil {
			return err
		}
		directives, err := schemaplan.LoadDirectives(s, engineName, directiveOptions())
		if err != nil {
			return err
		}
		var sb strings.Builder
		for _, d := range directives {
			sb.WriteString(d.Command())
			sb.WriteString("\n")
		}
		return writeOutput(sb.String())
	},
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Execute the CREATE script against a live database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		plan, err := buildPlan()
		if err != nil {
			return err
		}

		stmts, err := plan.CreateStatements(engineName)
		if err != nil {
			return err
		}
		if dropFirst {
			drops, err := plan.DropStatements(engineName)
			if err != nil {
				return err
			}
			stmts = append(drops, stmts...)
		}

		apply, closeFn, err := newApplier(ctx)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := apply(ctx, stmts); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "applied %d statements to %s\n", len(stmts), engineName)
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Execute bulk-load directives against a live database",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		s, err := schemaplan.LoadFile(schemaPath)
		if err != nil {
			return err
		}
		directives, err := schemaplan.LoadDirectives(s, engineName, directiveOptions())
		if err != nil {
			return err
		}

		switch engineName {
		case "postgres", "redshift":
			ex, err := exec.NewPostgresExecutor(ctx, dbURL)
			if err != nil {
				return err
			}
			defer ex.Close()
			return ex.Load(ctx, directives, exec.LoadConfig{
				SuspendFKChecks: suspendFKChecks && engineName == "postgres",
				Analyze:         analyze,
				InstallAWSS3:    engineName == "postgres",
			})
		case "mysql":
			ex, err := exec.NewMySQLExecutor(ctx, dbURL)
			if err != nil {
				return err
			}
			defer func() { _ = ex.Close() }()
			return ex.Load(ctx, directives)
		default:
			return fmt.Errorf("engine `%s` has no live loader (sqlite directives run through the sqlite3 shell)", engineName)
		}
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Stage a dataset's table files into an S3 bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
		if err != nil {
			return fmt.Errorf("failed to load AWS config: %w", err)
		}

		ds := dataset.New(datasetName, datasetDir)
		uploader := dataset.NewUploader(s3.NewFromConfig(cfg), bucket)
		if err := uploader.UploadDataset(ctx, ds); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "uploaded dataset `%s` to s3://%s/%s/\n", ds.Name, bucket, ds.Name)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to the JSON schema document")
	rootCmd.PersistentFlags().StringVarP(&engineName, "engine", "e", "postgres", "Target engine: postgres, redshift, mysql, or sqlite")
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	orderCmd.Flags().BoolVar(&dropMode, "drop", false, "Print the drop order instead of the creation order")
	ddlCmd.Flags().BoolVar(&dropMode, "drop", false, "Emit the DROP script instead of the CREATE script")

	for _, cmd := range []*cobra.Command{loadgenCmd, loadCmd} {
		cmd.Flags().StringVar(&bucket, "bucket", "", "S3 bucket holding the staged dataset")
		cmd.Flags().StringVar(&region, "region", "", "AWS region of the bucket")
		cmd.Flags().StringVar(&iamRole, "iam-role", "", "IAM role ARN for Redshift COPY")
		cmd.Flags().StringVar(&prefix, "prefix", "", "Object key prefix, usually the dataset name")
		cmd.Flags().BoolVar(&gzipped, "gzip", false, "Table files are gzip-compressed")
		cmd.Flags().StringVar(&localDir, "local-dir", "", "Local directory with table files (mysql, sqlite)")
		cmd.Flags().BoolVar(&lenient, "lenient", false, "Tolerate a bounded number of malformed rows where the engine supports it")
	}

	applyCmd.Flags().StringVar(&dbURL, "db-url", "", "Database connection string")
	applyCmd.Flags().BoolVar(&dropFirst, "drop-first", false, "Drop existing tables (in reverse order) before creating")
	loadCmd.Flags().StringVar(&dbURL, "db-url", "", "Database connection string")
	loadCmd.Flags().BoolVar(&suspendFKChecks, "suspend-fk-checks", true, "Disable FK enforcement during concurrent loads (postgres)")
	loadCmd.Flags().BoolVar(&analyze, "analyze", false, "Refresh table statistics after each load")

	uploadCmd.Flags().StringVar(&datasetName, "name", "", "Dataset name (S3 key prefix)")
	uploadCmd.Flags().StringVar(&datasetDir, "dir", "", "Dataset directory")
	uploadCmd.Flags().StringVar(&bucket, "bucket", "", "Destination S3 bucket")
	uploadCmd.Flags().StringVar(&region, "region", "", "AWS region of the bucket")

	rootCmd.AddCommand(orderCmd, ddlCmd, loadgenCmd, applyCmd, loadCmd, uploadCmd)
}

func buildPlan() (*schemaplan.Plan, error) {
	if schemaPath == "" {
		return nil, fmt.Errorf("--schema is required")
	}
	s, err := schemaplan.LoadFile(schemaPath)
	if err != nil {
		return nil, err
	}
	return schemaplan.BuildPlan(s)
}

func directiveOptions() *schemaplan.DirectiveOptions {
	opts := schemaplan.DefaultDirectiveOptions()
	opts.Bucket = bucket
	opts.Region = region
	opts.IAMRole = iamRole
	opts.Prefix = prefix
	opts.Gzip = gzipped
	opts.LocalDir = localDir
	opts.Lenient = lenient
	return opts
}

func newApplier(ctx context.Context) (func(context.Context, []string) error, func(), error) {
	if dbURL == "" {
		return nil, nil, fmt.Errorf("--db-url is required")
	}
	switch engineName {
	case "postgres", "redshift":
		ex, err := exec.NewPostgresExecutor(ctx, dbURL)
		if err != nil {
			return nil, nil, err
		}
		return ex.ApplyStatements, ex.Close, nil
	case "mysql":
		ex, err := exec.NewMySQLExecutor(ctx, dbURL)
		if err != nil {
			return nil, nil, err
		}
		return ex.ApplyStatements, func() { _ = ex.Close() }, nil
	case "sqlite":
		ex, err := exec.NewSQLiteExecutor(ctx, dbURL)
		if err != nil {
			return nil, nil, err
		}
		return ex.ApplyStatements, func() { _ = ex.Close() }, nil
	default:
		return nil, nil, fmt.Errorf("unknown engine `%s`", engineName)
	}
}

func writeOutput(content string) error {
	if outputFile == "" {
		_, err := os.Stdout.WriteString(content)
		return err
	}
	return os.WriteFile(outputFile, []byte(content), 0644)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/suparena/ugcexport"
	"github.com/suparena/ugcexport/config"
	"github.com/suparena/ugcexport/export"
	"github.com/suparena/ugcexport/source"
	"github.com/suparena/ugcexport/source/ddb"
)

const sourceName = "ugc"

// sourceFactory builds the node source for a loaded configuration.
type sourceFactory func(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (source.Source, error)

func dynamodbSource(ctx context.Context, cfg *config.Config, logger *logrus.Entry) (source.Source, error) {
	if cfg.DynamoDB.Table == "" {
		return nil, fmt.Errorf("no DynamoDB table configured; set dynamodb.table or AWS_DDB_TABLE")
	}
	client, err := ddb.NewDynamoDBClient(ctx, cfg.DynamoDB.AccessKey, cfg.DynamoDB.SecretKey, cfg.DynamoDB.Region)
	if err != nil {
		return nil, err
	}
	return ddb.NewDynamodbSource(client, cfg.DynamoDB.Table, cfg.SourceOptions(logger)...), nil
}

func newRootCommand(newSource sourceFactory) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ugcexport",
		Short: "Export user generated content as streaming JSON",
		Long: `ugcexport serializes a stored content tree, including its binary
attachments, into a single JSON record suitable for migration into another
content repository.`,
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(exportCommand(newSource))
	rootCmd.AddCommand(versionCommand())
	return rootCmd
}

func exportCommand(newSource sourceFactory) *cobra.Command {
	var (
		configPath string
		sourcePath string
		outPath    string
		logFile    string
		attachment bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the node at --source-path and its subtree",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if logFile != "" {
				cfg.LogFile.Filename = logFile
			}
			logger := cfg.NewLogger(cmd.ErrOrStderr())
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				logger.SetLevel(logrus.DebugLevel)
			}
			log := logrus.NewEntry(logger)

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			src, err := newSource(ctx, cfg, log)
			if err != nil {
				return err
			}

			exporter := ugcexport.NewExporter(cfg.ExportOptions(log)...)
			var metricsRegistry *prometheus.Registry
			if cfg.Metrics.Textfile != "" {
				metricsRegistry = prometheus.NewRegistry()
				exporter.WithMetrics(ugcexport.NewMetrics(metricsRegistry))
			}
			if err := exporter.RegisterSource(sourceName, src); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("failed to create output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			var report *export.Report
			if attachment {
				report, err = exporter.ExportAttachment(ctx, out, sourceName, sourcePath)
			} else {
				report, err = exporter.Export(ctx, out, sourceName, sourcePath)
			}
			if metricsRegistry != nil {
				if werr := prometheus.WriteToTextfile(cfg.Metrics.Textfile, metricsRegistry); werr != nil {
					log.WithError(werr).Warn("failed to write metrics textfile")
				}
			}
			if err != nil {
				return err
			}
			if report.Partial() {
				fmt.Fprintf(cmd.ErrOrStderr(), "export of %s finished with %d embedded error(s)\n", sourcePath, len(report.Errors))
			}
			return closeOutput(out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML configuration file")
	cmd.Flags().StringVarP(&sourcePath, "source-path", "p", "", "path of the node to export")
	cmd.Flags().StringVarP(&outPath, "out", "o", "-", "output file, - for stdout")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to a rotating file instead of stderr")
	cmd.Flags().BoolVar(&attachment, "attachment", false, "export the node as a single attachment")
	_ = cmd.MarkFlagRequired("source-path")
	return cmd
}

// closeOutput closes file outputs so a failed close is reported.
func closeOutput(out io.Writer) error {
	f, ok := out.(*os.File)
	if !ok || f == os.Stdout {
		return nil
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close output file: %w", err)
	}
	return nil
}

func versionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			info := ugcexport.GetVersionInfo()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ugcexport version %s\n", info.Version)
			fmt.Fprintf(out, "Git commit: %s\n", info.GitCommit)
			fmt.Fprintf(out, "Build date: %s\n", info.BuildDate)
			fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
		},
	}
}

func main() {
	if err := newRootCommand(dynamodbSource).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

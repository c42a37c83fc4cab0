package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag string
	rootCmd = &cobra.Command{
		Use:   "reslensctl",
		Short: "CLI client for the ResLens middleware REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Middleware base URL")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Start a background job issuing random SET operations",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, _ := cmd.Flags().GetInt("count")
			return runSeed(apiFlag, count, os.Stdout)
		},
	}
	seedCmd.Flags().IntP("count", "c", 100, "Number of SET operations")
	rootCmd.AddCommand(seedCmd)

	getCmd := &cobra.Command{
		Use:   "get",
		Short: "Start a background job sampling GET operations from the given keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, _ := cmd.Flags().GetStringSlice("keys")
			count, _ := cmd.Flags().GetInt("count")
			if len(keys) == 0 {
				return fmt.Errorf("--keys required")
			}
			return runGet(apiFlag, keys, count, os.Stdout)
		},
	}
	getCmd.Flags().StringSliceP("keys", "k", nil, "Keys to sample (comma separated or repeated)")
	getCmd.Flags().IntP("count", "c", 100, "Number of GET operations (100, 500 or 1000)")
	rootCmd.AddCommand(getCmd)

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running seed job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(apiFlag, "/stop", os.Stdout)
		},
	}
	rootCmd.AddCommand(stopCmd)

	stopGetCmd := &cobra.Command{
		Use:   "stop-get",
		Short: "Stop the running get job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStop(apiFlag, "/stop_get", os.Stdout)
		},
	}
	rootCmd.AddCommand(stopGetCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show seed and get job status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(apiFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(statusCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Summarize a profiling output file with the hosted AI model",
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			if file == "" {
				return fmt.Errorf("--file required")
			}
			return runAnalyze(apiFlag, file, os.Stdout)
		},
	}
	analyzeCmd.Flags().StringP("file", "f", "", "Path to the profiling output file (required)")
	_ = analyzeCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(analyzeCmd)

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show the middleware description document",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(apiFlag, os.Stdout)
		},
	}
	rootCmd.AddCommand(infoCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Copyright 2021-2023
// SPDX-License-Identifier: Apache-2.0
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/observability/opentelemetry"
	"github.com/rs/zerolog/log"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var logCloser io.Closer
var traceShutdown func(context.Context) error

func init() {
	// Logging configuration
	viper.BindEnv("log.level", "PVDCA_LOG_LEVEL")
	rootCmd.PersistentFlags().String("log-level", "warning", "Logging level")
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))

	viper.BindEnv("log.report_caller", "PVDCA_LOG_REPORT_CALLER")
	rootCmd.PersistentFlags().Bool("log-report-caller", false, "Log function name that called log statement")
	viper.BindPFlag("log.report_caller", rootCmd.PersistentFlags().Lookup("log-report-caller"))

	viper.BindEnv("log.output", "PVDCA_LOG_OUTPUT")
	rootCmd.PersistentFlags().String("log-output", "stderr", "Write logs to specified output one of: file path, `stdout`, or `stderr`")
	viper.BindPFlag("log.output", rootCmd.PersistentFlags().Lookup("log-output"))

	viper.BindEnv("log.pretty", "PVDCA_LOG_PRETTY")
	rootCmd.PersistentFlags().Bool("log-pretty", true, "Format logs for humans instead of as JSON")
	viper.BindPFlag("log.pretty", rootCmd.PersistentFlags().Lookup("log-pretty"))

	// Price data
	viper.BindEnv("data.provider", "PVDCA_DATA_PROVIDER")
	rootCmd.PersistentFlags().String("provider", "tiingo", "Price provider one of: `tiingo` or `csv`")
	viper.BindPFlag("data.provider", rootCmd.PersistentFlags().Lookup("provider"))

	viper.BindEnv("data.csv_dir", "PVDCA_CSV_DIR")
	rootCmd.PersistentFlags().String("csv-dir", ".", "Directory holding {TICKER}.csv price files for the csv provider")
	viper.BindPFlag("data.csv_dir", rootCmd.PersistentFlags().Lookup("csv-dir"))

	viper.BindEnv("tiingo.token", "TIINGO_TOKEN")
	rootCmd.PersistentFlags().String("tiingo-token", "", "tiingo API token")
	viper.BindPFlag("tiingo.token", rootCmd.PersistentFlags().Lookup("tiingo-token"))

	viper.BindEnv("tiingo.url", "TIINGO_URL")

	// Cache
	viper.BindEnv("cache.local_size", "PVDCA_CACHE_LOCAL_SIZE")
	rootCmd.PersistentFlags().Int("cache-local-size", 128, "Number of provider responses kept in memory")
	viper.BindPFlag("cache.local_size", rootCmd.PersistentFlags().Lookup("cache-local-size"))

	viper.BindEnv("cache.redis", "PVDCA_CACHE_REDIS")
	rootCmd.PersistentFlags().Bool("cache-redis", false, "Cache provider responses in redis")
	viper.BindPFlag("cache.redis", rootCmd.PersistentFlags().Lookup("cache-redis"))

	viper.BindEnv("cache.redis_url", "REDIS_URL")
	rootCmd.PersistentFlags().String("cache-redis-url", "redis://localhost:6379/0", "redis connection string")
	viper.BindPFlag("cache.redis_url", rootCmd.PersistentFlags().Lookup("cache-redis-url"))

	viper.BindEnv("cache.ttl", "PVDCA_CACHE_TTL")
	rootCmd.PersistentFlags().Int("cache-ttl", 86400, "Seconds a cached response stays in redis")
	viper.BindPFlag("cache.ttl", rootCmd.PersistentFlags().Lookup("cache-ttl"))

	// Tracing
	viper.BindEnv("otlp.endpoint", "OTLP_ENDPOINT")
	viper.BindEnv("otlp.http", "OTLP_HTTP")

	// Reporting
	viper.BindEnv("report.currency", "PVDCA_CURRENCY")
	rootCmd.PersistentFlags().String("currency", "USD", "ISO 4217 currency code used to display amounts")
	viper.BindPFlag("report.currency", rootCmd.PersistentFlags().Lookup("currency"))
}

var rootCmd = &cobra.Command{
	Use:     common.ProgramName,
	Version: common.CurrentVersion.String(),
	Short:   "Simulate dollar-cost averaging into a portfolio of securities",
	Long: `Simulate a dollar-cost averaging strategy over historical opening prices: an
initial lump sum is split across the portfolio by weight and a fixed amount is
added on the first of every month.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logCloser = common.SetupLogging()

		if err := common.SetupCache(); err != nil {
			log.Error().Err(err).Msg("could not setup cache")
			return err
		}

		var err error
		traceShutdown, err = opentelemetry.Setup()
		if err != nil {
			log.Error().Err(err).Msg("could not setup tracing")
			return err
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		cleanup()
	},
}

func cleanup() {
	if traceShutdown != nil {
		if err := traceShutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("could not flush traces")
		}
		traceShutdown = nil
	}

	common.DisableCache()

	if logCloser != nil {
		logCloser.Close()
		logCloser = nil
	}
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		cleanup()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

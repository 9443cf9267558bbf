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
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/data"
	"github.com/penny-vault/pv-dca/ledger"
	"github.com/penny-vault/pv-dca/report"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	weights       map[string]string
	portfolioFile string
	startDate     string
	endDate       string
	initialAmount float64
	monthlyAmount float64
	showTable     bool
	tableEvery    int
	showPlot      bool
	jsonFile      string
	csvFile       string
)

var (
	errNoPortfolio   = errors.New("one of --weights or --portfolio is required")
	errTwoPortfolios = errors.New("--weights and --portfolio cannot be used together")
)

func init() {
	rootCmd.AddCommand(simulateCmd)

	simulateCmd.Flags().StringToStringVarP(&weights, "weights", "w", nil, "Portfolio weights as TICKER=weight pairs, e.g. VTI=0.6,BND=0.4")
	simulateCmd.Flags().StringVarP(&portfolioFile, "portfolio", "p", "", "TOML file with a [weights] table")
	simulateCmd.Flags().StringVarP(&startDate, "start", "s", "", "First day of the simulation (YYYY-MM-DD)")
	simulateCmd.Flags().StringVarP(&endDate, "end", "e", "", "Last day of the simulation (YYYY-MM-DD); defaults to today")
	simulateCmd.Flags().Float64Var(&initialAmount, "initial", 10_000, "Lump sum invested on the first day")
	simulateCmd.Flags().Float64Var(&monthlyAmount, "monthly", 500, "Amount invested on the first of every month")
	simulateCmd.Flags().BoolVar(&showTable, "table", false, "Print the daily ledger")
	simulateCmd.Flags().IntVar(&tableEvery, "every", 1, "Print one ledger row every N days (contribution days are always printed)")
	simulateCmd.Flags().BoolVar(&showPlot, "plot", false, "Plot portfolio value against amount invested")
	simulateCmd.Flags().StringVar(&jsonFile, "json", "", "Write the ledger to this file as JSON")
	simulateCmd.Flags().StringVar(&csvFile, "csv", "", "Write the ledger to this file as CSV")

	simulateCmd.MarkFlagRequired("start")
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Simulate dollar-cost averaging into a portfolio",
	Example: `  pvdca simulate --weights VTI=0.6,BND=0.4 --start 2020-01-01 --end 2022-12-31 --initial 10000 --monthly 500
  pvdca simulate --portfolio portfolio.toml --start 2015-01-01 --table --every 30`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := portfolioSpec()
		if err != nil {
			return err
		}

		begin, err := common.ParseDate(startDate)
		if err != nil {
			log.Error().Err(err).Str("Start", startDate).Msg("could not parse start date")
			return err
		}

		end := common.Midnight(time.Now())
		if endDate != "" {
			end, err = common.ParseDate(endDate)
			if err != nil {
				log.Error().Err(err).Str("End", endDate).Msg("could not parse end date")
				return err
			}
		}

		provider, err := data.NewProvider(viper.GetString("data.provider"))
		if err != nil {
			return err
		}

		sim := ledger.NewSimulator(data.NewLoader(provider))
		records, err := sim.Simulate(context.Background(), spec, begin, end, initialAmount, monthlyAmount)
		if err != nil {
			return err
		}

		return writeResults(records, spec.Tickers())
	},
}

func portfolioSpec() (ledger.PortfolioSpec, error) {
	switch {
	case portfolioFile != "" && len(weights) != 0:
		log.Error().Msg("both --weights and --portfolio given")
		return nil, errTwoPortfolios
	case portfolioFile != "":
		return ledger.LoadSpecFile(portfolioFile)
	case len(weights) != 0:
		return ledger.ParseSpec(weights)
	default:
		log.Error().Msg("no portfolio specified")
		return nil, errNoPortfolio
	}
}

func writeResults(records []*ledger.Record, tickers []string) error {
	currency := viper.GetString("report.currency")

	if showTable {
		fmt.Println(report.Table(records, tickers, report.TableOptions{Every: tableEvery, Currency: currency}))
	}

	if showPlot {
		fmt.Println(report.Plot(records, report.PlotOptions{}))
		fmt.Println()
	}

	summary, err := report.NewSummary(records)
	if err != nil {
		return err
	}
	summary.Currency = currency
	fmt.Print(summary.String())

	if jsonFile != "" {
		if err := writeFile(jsonFile, func(fh *os.File) error { return report.WriteJSON(fh, records) }); err != nil {
			return err
		}
	}

	if csvFile != "" {
		if err := writeFile(csvFile, func(fh *os.File) error { return report.WriteCSV(fh, records, tickers) }); err != nil {
			return err
		}
	}

	return nil
}

func writeFile(fn string, write func(*os.File) error) error {
	fh, err := os.Create(fn)
	if err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not create output file")
		return err
	}

	if err := write(fh); err != nil {
		fh.Close()
		return err
	}

	if err := fh.Close(); err != nil {
		log.Error().Err(err).Str("FileName", fn).Msg("could not close output file")
		return err
	}

	log.Info().Str("FileName", fn).Msg("ledger written")
	return nil
}

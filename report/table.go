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

package report

import (
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/ledger"
)

// TableOptions controls which ledger rows are rendered
type TableOptions struct {
	// Every shows one row out of every N; the first row, the last row and
	// contribution days are always shown. Values < 2 show every row.
	Every    int
	Currency string
}

// Table renders the ledger as an ASCII table with price and share columns per ticker
func Table(records []*ledger.Record, tickers []string, opts TableOptions) string {
	if len(records) == 0 {
		return "<NO DATA>"
	}

	currency := opts.Currency
	if currency == "" {
		currency = DefaultCurrency
	}

	header := []string{"Date"}
	for _, ticker := range tickers {
		header = append(header, fmt.Sprintf("%s Price", ticker), fmt.Sprintf("%s Shares", ticker))
	}
	header = append(header, "Invested", "Value")

	s := &strings.Builder{}
	table := tablewriter.NewWriter(s)
	table.SetHeader(header)
	table.SetBorder(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	shown := 0
	for idx, rec := range records {
		if !includeRow(idx, len(records), rec, opts.Every) {
			continue
		}

		row := make([]string, 0, len(header))
		row = append(row, rec.Date.Format(common.DateFormat))
		for _, ticker := range tickers {
			row = append(row, fmt.Sprintf("%.2f", rec.Prices[ticker]), fmt.Sprintf("%.4f", rec.Shares[ticker]))
		}
		row = append(row, FormatCurrency(rec.AmountInvested, currency), FormatCurrency(rec.PortfolioValue, currency))
		table.Append(row)
		shown++
	}

	footer := make([]string, len(header))
	footer[0] = "Num Rows"
	footer[1] = fmt.Sprintf("%d", shown)
	table.SetFooter(footer)

	table.Render()
	return s.String()
}

func includeRow(idx, count int, rec *ledger.Record, every int) bool {
	if every < 2 || idx == 0 || idx == count-1 || rec.IsContributionDay() {
		return true
	}
	return idx%every == 0
}

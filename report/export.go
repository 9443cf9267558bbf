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
	"encoding/csv"
	"io"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/ledger"
	"github.com/rs/zerolog/log"
)

// WriteJSON writes the ledger as an indented JSON array of records
func WriteJSON(w io.Writer, records []*ledger.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		log.Error().Err(err).Msg("could not encode ledger as JSON")
		return err
	}
	return nil
}

// WriteCSV writes the ledger with one row per day. Columns are date, amount_invested,
// portfolio_value followed by a price and shares column for each ticker.
func WriteCSV(w io.Writer, records []*ledger.Record, tickers []string) error {
	writer := csv.NewWriter(w)

	header := []string{"date", "amount_invested", "portfolio_value"}
	for _, ticker := range tickers {
		header = append(header, ticker+"_price", ticker+"_shares")
	}

	if err := writer.Write(header); err != nil {
		log.Error().Err(err).Msg("could not write CSV header")
		return err
	}

	for _, rec := range records {
		row := make([]string, 0, len(header))
		row = append(row,
			rec.Date.Format(common.DateFormat),
			strconv.FormatFloat(rec.AmountInvested, 'f', -1, 64),
			strconv.FormatFloat(rec.PortfolioValue, 'f', -1, 64),
		)
		for _, ticker := range tickers {
			row = append(row,
				strconv.FormatFloat(rec.Prices[ticker], 'f', -1, 64),
				strconv.FormatFloat(rec.Shares[ticker], 'f', -1, 64),
			)
		}
		if err := writer.Write(row); err != nil {
			log.Error().Err(err).Msg("could not write CSV row")
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

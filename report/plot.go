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
	"github.com/guptarohit/asciigraph"
	"github.com/penny-vault/pv-dca/common"
	"github.com/penny-vault/pv-dca/ledger"
)

type PlotOptions struct {
	Height int
	Width  int
}

// Plot charts portfolio value and amount invested over the life of the ledger
func Plot(records []*ledger.Record, opts PlotOptions) string {
	if len(records) == 0 {
		return "<NO DATA>"
	}

	if opts.Height <= 0 {
		opts.Height = 15
	}
	if opts.Width <= 0 {
		opts.Width = 80
	}

	value := make([]float64, len(records))
	invested := make([]float64, len(records))
	for idx, rec := range records {
		value[idx] = rec.PortfolioValue
		invested[idx] = rec.AmountInvested
	}

	caption := "Portfolio value vs amount invested, " + records[0].Date.Format(common.DateFormat) +
		" to " + records[len(records)-1].Date.Format(common.DateFormat)

	return asciigraph.PlotMany([][]float64{value, invested},
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(caption),
	)
}

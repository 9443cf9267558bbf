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

package dataframe

import (
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"
)

// ForwardFill returns a copy of the dataframe where every NaN is replaced with the most
// recent prior observation in the same column. NaNs before a column's first observation
// are left in place.
func (df *DataFrame) ForwardFill() *DataFrame {
	df2 := df.Copy()
	for _, col := range df2.Vals {
		last := math.NaN()
		for rowIdx, val := range col {
			if math.IsNaN(val) {
				col[rowIdx] = last
			} else {
				last = val
			}
		}
	}
	return df2
}

// Daily reindexes the dataframe onto a contiguous daily calendar spanning Start() to End()
// (weekends and holidays included) and carries the last observed value of each column
// forward into days without an observation. If any column lacks an observation on the
// first day ErrLeadingGap is returned; leading gaps are never zero-filled.
func (df *DataFrame) Daily() (*DataFrame, error) {
	if df.Len() == 0 {
		return df.Copy(), nil
	}

	start := df.Start()
	end := df.End()

	numDays := int(end.Sub(start).Hours()/24) + 2
	res := &DataFrame{
		Dates:    make([]time.Time, 0, numDays),
		ColNames: make([]string, len(df.ColNames)),
		Vals:     make([][]float64, len(df.ColNames)),
	}
	copy(res.ColNames, df.ColNames)
	for colIdx := range res.Vals {
		res.Vals[colIdx] = make([]float64, 0, numDays)
	}

	last := make([]float64, len(df.ColNames))
	for colIdx := range last {
		last[colIdx] = math.NaN()
	}

	endKey := dayKey(end)
	srcIdx := 0
	filled := 0
	for dt := start; dayKey(dt) <= endKey; dt = dt.AddDate(0, 0, 1) {
		observed := false
		for srcIdx < df.Len() && dayKey(df.Dates[srcIdx]) <= dayKey(dt) {
			for colIdx := range df.ColNames {
				if val := df.Vals[colIdx][srcIdx]; !math.IsNaN(val) {
					last[colIdx] = val
				}
			}
			srcIdx++
			observed = true
		}

		if !observed {
			filled++
		}

		for colIdx, colName := range df.ColNames {
			if math.IsNaN(last[colIdx]) {
				log.Error().Str("Column", colName).Time("Date", dt).Msg("no observation to carry forward")
				return nil, fmt.Errorf("%w: %s on %s", ErrLeadingGap, colName, dt.Format("2006-01-02"))
			}
			res.Vals[colIdx] = append(res.Vals[colIdx], last[colIdx])
		}
		res.Dates = append(res.Dates, dt)
	}

	log.Debug().Int("Observed", df.Len()).Int("Days", res.Len()).Int("Filled", filled).Msg("resampled to daily calendar")
	return res, nil
}

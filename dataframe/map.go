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
	"math"
	"sort"
	"time"
)

// Keys returns the names in the map in sorted order
func (dfMap Map) Keys() []string {
	keys := make([]string, 0, len(dfMap))
	for k := range dfMap {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Merge joins every dataframe in the map on its date index with outer join semantics: the
// result is indexed by the union of all dates and values missing from a dataframe are
// filled with NaN. Columns are ordered by map key, then by their order within each dataframe.
func (dfMap Map) Merge() *DataFrame {
	seen := make(map[int64]time.Time)
	for _, df := range dfMap {
		for _, dt := range df.Dates {
			if _, ok := seen[dt.UnixNano()]; !ok {
				seen[dt.UnixNano()] = dt
			}
		}
	}

	dates := make([]time.Time, 0, len(seen))
	for _, dt := range seen {
		dates = append(dates, dt)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	rowIdx := make(map[int64]int, len(dates))
	for idx, dt := range dates {
		rowIdx[dt.UnixNano()] = idx
	}

	merged := &DataFrame{
		Dates:    dates,
		ColNames: []string{},
		Vals:     [][]float64{},
	}

	for _, key := range dfMap.Keys() {
		df := dfMap[key]
		for colIdx, colName := range df.ColNames {
			col := make([]float64, len(dates))
			for idx := range col {
				col[idx] = math.NaN()
			}
			for srcIdx, dt := range df.Dates {
				col[rowIdx[dt.UnixNano()]] = df.Vals[colIdx][srcIdx]
			}
			merged.ColNames = append(merged.ColNames, colName)
			merged.Vals = append(merged.Vals, col)
		}
	}

	return merged
}

// Trim calls dataframe.Trim on each dataframe in the map
func (dfMap Map) Trim(begin, end time.Time) Map {
	trimmed := make(Map, len(dfMap))
	for k, df := range dfMap {
		trimmed[k] = df.Trim(begin, end)
	}
	return trimmed
}

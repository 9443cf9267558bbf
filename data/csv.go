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

package data

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/penny-vault/pv-dca/common"
	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"
	"github.com/rs/zerolog/log"
)

// CSV reads price history from {Dir}/{TICKER}.csv files. Each file must have a `date`
// column (YYYY-MM-DD) and an `open` column; column names are matched case-insensitively
// and any other columns are ignored.
type CSV struct {
	Dir string
}

// NewCSV creates a provider that reads price files from dir
func NewCSV(dir string) *CSV {
	return &CSV{
		Dir: dir,
	}
}

func (c *CSV) Name() string {
	return ProviderCSV
}

// Fetch loads the opening prices of ticker between begin and end (inclusive)
func (c *CSV) Fetch(ctx context.Context, ticker string, begin, end time.Time) ([]*Quote, error) {
	ticker = strings.ToUpper(ticker)
	fn := filepath.Join(c.Dir, fmt.Sprintf("%s.csv", ticker))
	subLog := log.With().Str("Ticker", ticker).Str("FileName", fn).Logger()

	fh, err := os.Open(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			subLog.Warn().Msg("no price file for ticker")
			return nil, ErrNotFound
		}
		subLog.Error().Err(err).Msg("could not open price file")
		return nil, err
	}
	defer fh.Close()

	tz := common.GetTimezone()
	dateConverter := imports.Converter{
		ConcreteType: time.Time{},
		ConverterFunc: func(in interface{}) (interface{}, error) {
			return time.ParseInLocation(common.DateFormat, strings.TrimSpace(in.(string)), tz)
		},
	}
	floatConverter := imports.Converter{
		ConcreteType: float64(0),
		ConverterFunc: func(in interface{}) (interface{}, error) {
			v, err := strconv.ParseFloat(strings.TrimSpace(in.(string)), 64)
			if err != nil {
				return math.NaN(), nil
			}
			return v, nil
		},
	}

	df, err := imports.LoadFromCSV(ctx, fh, imports.CSVLoadOptions{
		DictateDataType: map[string]interface{}{
			"date": dateConverter,
			"Date": dateConverter,
			"open": floatConverter,
			"Open": floatConverter,
		},
	})
	if err != nil {
		subLog.Error().Err(err).Msg("could not parse price file")
		return nil, err
	}

	dateIdx, err := columnIndex(df, "date")
	if err != nil {
		subLog.Error().Err(err).Msg("price file has no date column")
		return nil, err
	}

	openIdx, err := columnIndex(df, "open")
	if err != nil {
		subLog.Error().Err(err).Msg("price file has no open column")
		return nil, err
	}

	interval := &Interval{Begin: begin, End: end}
	dates := df.Series[dateIdx]
	opens := df.Series[openIdx]

	quotes := make([]*Quote, 0, df.NRows())
	for row := 0; row < df.NRows(); row++ {
		dt, ok := asTime(dates.Value(row))
		if !ok {
			continue
		}

		open, ok := asFloat(opens.Value(row))
		if !ok || math.IsNaN(open) {
			continue
		}

		if !interval.Contains(dt) {
			continue
		}

		if open <= 0 {
			subLog.Error().Time("Date", dt).Float64("Open", open).Msg("non-positive price in price file")
			return nil, fmt.Errorf("%w: open %f on %s", ErrInvalidPrice, open, dt.Format(common.DateFormat))
		}

		quotes = append(quotes, &Quote{
			Date: dt,
			Open: open,
		})
	}

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].Date.Before(quotes[j].Date) })

	subLog.Debug().Int("NumQuotes", len(quotes)).Msg("csv prices loaded")
	return quotes, nil
}

func columnIndex(df *dataframe.DataFrame, name string) (int, error) {
	for idx, series := range df.Series {
		if strings.EqualFold(series.Name(), name) {
			return idx, nil
		}
	}
	return -1, fmt.Errorf("column %q not found", name)
}

func asTime(val interface{}) (time.Time, bool) {
	switch v := val.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v == nil {
			return time.Time{}, false
		}
		return *v, true
	default:
		return time.Time{}, false
	}
}

func asFloat(val interface{}) (float64, bool) {
	switch v := val.(type) {
	case float64:
		return v, true
	case *float64:
		if v == nil {
			return 0, false
		}
		return *v, true
	default:
		return 0, false
	}
}

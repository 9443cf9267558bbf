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
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	ProviderTiingo = "tiingo"
	ProviderCSV    = "csv"
)

// Provider retrieves the daily opening price history of a single ticker. Quotes are
// returned in ascending date order and cover [begin, end] as far as the provider has data.
type Provider interface {
	Name() string
	Fetch(ctx context.Context, ticker string, begin, end time.Time) ([]*Quote, error)
}

// NewProvider builds the provider selected by the `data.provider` configuration key
func NewProvider(name string) (Provider, error) {
	switch strings.ToLower(name) {
	case ProviderTiingo, "":
		token := viper.GetString("tiingo.token")
		if token == "" {
			log.Error().Msg("no tiingo API token configured; set TIINGO_TOKEN or tiingo.token")
			return nil, fmt.Errorf("%w: tiingo.token", ErrMissingCredentials)
		}
		tiingo := NewTiingo(token)
		if url := viper.GetString("tiingo.url"); url != "" {
			tiingo.BaseURL = url
		}
		return tiingo, nil
	case ProviderCSV:
		return NewCSV(viper.GetString("data.csv_dir")), nil
	default:
		log.Error().Str("Provider", name).Msg("unknown price provider")
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
}

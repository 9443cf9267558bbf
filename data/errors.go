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
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound           = errors.New("security not found")
	ErrNoData             = errors.New("provider returned no prices")
	ErrNoTickers          = errors.New("at least one ticker is required")
	ErrBeginAfterEnd      = errors.New("invalid interval; begin after end date")
	ErrUnknownProvider    = errors.New("unknown price provider")
	ErrMissingCredentials = errors.New("provider credentials not configured")
	ErrInvalidPrice       = errors.New("invalid price in provider response")
)

// DataAvailabilityError is returned when a ticker's price history does not extend back
// to the requested start date. The caller must move the start date or drop the ticker.
type DataAvailabilityError struct {
	Ticker    string
	Earliest  time.Time
	Requested time.Time
}

func (e *DataAvailabilityError) Error() string {
	return fmt.Sprintf("price history for %s begins on %s which is after the requested start %s",
		e.Ticker, e.Earliest.Format("2006-01-02"), e.Requested.Format("2006-01-02"))
}

// ProviderError wraps any failure of the underlying price provider
type ProviderError struct {
	Ticker   string
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: fetch %s: %v", e.Provider, e.Ticker, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

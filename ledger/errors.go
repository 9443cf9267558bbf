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

package ledger

import (
	"errors"
	"fmt"
)

var (
	ErrEmptySeries    = errors.New("price series is empty")
	ErrNotContiguous  = errors.New("price series is not a contiguous daily series")
	ErrMissingTicker  = errors.New("price series has no column for ticker")
	ErrInvalidPrice   = errors.New("price must be positive")
	ErrNegativeAmount = errors.New("investment amounts must be finite and not negative")
	ErrInvalidWeight  = errors.New("invalid weight")
)

// InvalidWeightsError is returned when the portfolio weights do not describe a full
// allocation: the weights must each lie in [0,1] and sum to 1 within WeightTolerance.
type InvalidWeightsError struct {
	Sum    float64
	Reason string
}

func (e *InvalidWeightsError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid portfolio weights (sum %g): %s", e.Sum, e.Reason)
	}
	return fmt.Sprintf("portfolio weights sum to %g; must sum to 1", e.Sum)
}

// Copyright 2022 Intel Corporation. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package placement

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidRange is returned for page ranges that are empty or fall outside a region.
	ErrInvalidRange = errors.New("invalid page range")
	// ErrUnalignedMapping is returned for regions whose base address is not page aligned.
	ErrUnalignedMapping = errors.New("map not page aligned")
	// ErrPlacement is returned when the placement primitive itself fails.
	ErrPlacement = errors.New("placement call failed")
)

// placementError wraps one of our error kinds with context.
func placementError(kind error, format string, args ...interface{}) error {
	return errors.Wrapf(kind, format, args...)
}

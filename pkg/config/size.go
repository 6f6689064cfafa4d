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

package config

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize parses a byte size. Plain numbers are in C syntax (0x prefix
// for hexadecimal, leading 0 for octal) and decimal numbers can have a
// k, M, G or T suffix, optionally followed by B.
func ParseSize(s string) (int64, error) {
	origS := s
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return 0, fmt.Errorf("syntax error in size: string is empty")
	}

	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "0x") {
		return parseNumber(origS, s, 1)
	}

	if s[len(s)-1] == 'B' {
		s = s[:len(s)-1]
		if len(s) == 0 {
			return 0, fmt.Errorf("syntax error in size %q: missing number", origS)
		}
	}
	numpart := s[:len(s)-1]
	factor := int64(1)
	switch c := s[len(s)-1]; {
	case c == 'k' || c == 'K':
		factor = 1 << 10
	case c == 'M':
		factor = 1 << 20
	case c == 'G':
		factor = 1 << 30
	case c == 'T':
		factor = 1 << 40
	case '0' <= c && c <= '9':
		numpart = s
	default:
		return 0, fmt.Errorf("syntax error in size %q: unexpected unit %q", origS, c)
	}
	return parseNumber(origS, numpart, factor)
}

func parseNumber(origS, numpart string, factor int64) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(numpart), 0, 64)
	if err != nil {
		return 0, fmt.Errorf("syntax error in size %q: bad numeric part %q", origS, numpart)
	}
	if n < 0 {
		return 0, fmt.Errorf("invalid size %q: negative", origS)
	}
	if factor > 1 && n > (1<<63-1)/factor {
		return 0, fmt.Errorf("invalid size %q: too large", origS)
	}
	return n * factor, nil
}

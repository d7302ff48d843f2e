// Copyright 2022 - 2026 The DomainStat Authors
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

package internetnl

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ErrorResponse represents an error returned from the internet.nl API.
type ErrorResponse struct {
	StatusCode int
	Message    string
}

// String returns the ErrorResponse in a default formatted way.
func (errRes *ErrorResponse) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("StatusCode  : %d\n", errRes.StatusCode))
	if len(errRes.Message) > 0 {
		builder.WriteString(fmt.Sprintf("Message     : %s\n", errRes.Message))
	}
	return builder.String()
}

// Error makes ErrorResponse usable as an error value.
func (errRes *ErrorResponse) Error() string {
	return fmt.Sprintf("internet.nl API error (status %d): %s", errRes.StatusCode, errRes.Message)
}

// ReadError builds an ErrorResponse from a non-success API response. The
// API reports errors as a JSON object with a message; anything else is
// taken verbatim.
func ReadError(statusCode int, r io.Reader) *ErrorResponse {
	body, err := io.ReadAll(r)
	if err != nil {
		return &ErrorResponse{StatusCode: statusCode, Message: err.Error()}
	}

	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return &ErrorResponse{StatusCode: statusCode, Message: payload.Message}
	}
	return &ErrorResponse{StatusCode: statusCode, Message: strings.TrimSpace(string(body))}
}

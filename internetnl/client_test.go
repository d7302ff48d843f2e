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
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBasicAuth(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		authHeader := req.Header.Get("Authorization")
		if len(authHeader) == 0 || !strings.HasPrefix(authHeader, "Basic") {
			t.FailNow()
		}
	}))
	defer server.Close()

	auth := ClientAuth{BasicAuthUser: "foo", BasicAuthPassword: "bar"}
	baseURL, _ := url.ParseRequestURI(server.URL)
	client := NewClient(*baseURL, auth)

	req, _ := http.NewRequest(http.MethodGet, server.URL, nil)
	_, _ = client.Do(req)
}

func TestWithoutBasicAuth(t *testing.T) {
	// we need a handler to check whether the basic auth was NOT set
	server := httptest.NewServer(http.HandlerFunc(func(res http.ResponseWriter, req *http.Request) {
		authHeader := req.Header.Get("Authorization")
		if len(authHeader) != 0 {
			t.FailNow()
		}
	}))
	defer server.Close()

	baseURL, _ := url.ParseRequestURI(server.URL)
	client := NewClient(*baseURL, ClientAuth{})

	req, _ := http.NewRequest("GET", "/", nil)
	_, _ = client.Do(req)
}

func TestNewSubmitRequest(t *testing.T) {
	parsedURL, _ := url.ParseRequestURI("https://batch.internet.nl")
	client := NewClient(*parsedURL, ClientAuth{})

	req, err := client.NewSubmitRequest("web", "my measurement", []string{"aap.nl", "noot.nl"})
	if err != nil {
		t.Fatalf("could not create a submit request: %v", err)
	}

	assert.Equal(t, "POST", req.Method)
	assert.Equal(t, "/api/batch/v2/requests", req.URL.Path)
	assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

	body, _ := io.ReadAll(req.Body)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "web", payload["type"])
	assert.Equal(t, "my measurement", payload["name"])
	assert.Equal(t, []any{"aap.nl", "noot.nl"}, payload["domains"])
}

func TestNewStatusRequest(t *testing.T) {
	parsedURL, _ := url.ParseRequestURI("https://batch.internet.nl")
	client := NewClient(*parsedURL, ClientAuth{})

	req, err := client.NewStatusRequest("abc123")
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/api/batch/v2/requests/abc123", req.URL.Path)
}

func TestNewResultsRequest(t *testing.T) {
	parsedURL, _ := url.ParseRequestURI("https://batch.internet.nl")
	client := NewClient(*parsedURL, ClientAuth{})

	req, err := client.NewResultsRequest("abc123")
	require.NoError(t, err)
	assert.Equal(t, "GET", req.Method)
	assert.Equal(t, "/api/batch/v2/requests/abc123/results", req.URL.Path)
}

func TestReadBatchRequest(t *testing.T) {
	payload := `{"request": {"request_id": "abc123", "name": "run", "status": "done"}}`
	batchRequest, err := ReadBatchRequest(strings.NewReader(payload))
	require.NoError(t, err)
	assert.Equal(t, "abc123", batchRequest.RequestID)
	assert.Equal(t, "done", batchRequest.Status)
	assert.True(t, batchRequest.Done())

	batchRequest, err = ReadBatchRequest(strings.NewReader(`{"request": {"status": "running"}}`))
	require.NoError(t, err)
	assert.False(t, batchRequest.Done())

	_, err = ReadBatchRequest(strings.NewReader("not json"))
	assert.Error(t, err)
}

func TestReadError(t *testing.T) {
	errRes := ReadError(401, strings.NewReader(`{"message": "invalid credentials"}`))
	assert.Equal(t, 401, errRes.StatusCode)
	assert.Equal(t, "invalid credentials", errRes.Message)
	assert.Contains(t, errRes.String(), "StatusCode  : 401")
	assert.Contains(t, errRes.Error(), "invalid credentials")

	errRes = ReadError(500, strings.NewReader("plain failure\n"))
	assert.Equal(t, "plain failure", errRes.Message)
}

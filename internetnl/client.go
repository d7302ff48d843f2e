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

// Package internetnl implements a client for the internet.nl batch API:
// submit a measurement over a list of domains, poll its status and fetch
// the per-domain results.
package internetnl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// A Client combines an HTTP client with the base URL of an internet.nl
// instance. At minimum the base URL has to be set.
type Client struct {
	httpClient http.Client
	baseURL    url.URL
	auth       ClientAuth
}

// ClientAuth comprises the authentication information used by the Client.
// The batch API requires an account.
type ClientAuth struct {
	BasicAuthUser     string
	BasicAuthPassword string
}

// NewClient creates a new Client with the given base URL and ClientAuth
// configuration.
func NewClient(baseURL url.URL, auth ClientAuth) *Client {
	return createClient(baseURL, auth, false)
}

// NewClientInsecure creates a new Client as NewClient does but disables TLS
// security checks. I.e. the client will accept any connection to a server
// without verifying its certificate. Use this with great caution as it opens
// up man-in-the-middle attacks.
func NewClientInsecure(baseURL url.URL, auth ClientAuth) *Client {
	return createClient(baseURL, auth, true)
}

func createClient(baseURL url.URL, auth ClientAuth, insecure bool) *Client {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 10
	t.TLSClientConfig.InsecureSkipVerify = insecure

	return &Client{
		httpClient: http.Client{Transport: t},
		baseURL:    baseURL,
		auth:       auth,
	}
}

const applicationJSON = "application/json"

// submitBody is the payload of a measurement submission.
type submitBody struct {
	Type    string   `json:"type"`
	Name    string   `json:"name,omitempty"`
	Domains []string `json:"domains"`
}

// NewSubmitRequest creates a request that submits a new batch measurement
// of the given type ("web" or "mail") over the given domains.
func (c *Client) NewSubmitRequest(measurementType, name string, domainList []string) (*http.Request, error) {
	body, err := json.Marshal(submitBody{Type: measurementType, Name: name, Domains: domainList})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest("POST", c.baseURL.JoinPath("api", "batch", "v2", "requests").String(),
		bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error while creating a submit request: %w", err)
	}
	req.Header.Add("Accept", applicationJSON)
	req.Header.Add("Content-Type", applicationJSON)
	return req, nil
}

// NewStatusRequest creates a request that reads the status of a batch
// measurement.
func (c *Client) NewStatusRequest(requestID string) (*http.Request, error) {
	req, err := http.NewRequest("GET", c.baseURL.JoinPath("api", "batch", "v2", "requests", requestID).String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", applicationJSON)
	return req, nil
}

// NewResultsRequest creates a request that fetches the per-domain results
// of a finished batch measurement.
func (c *Client) NewResultsRequest(requestID string) (*http.Request, error) {
	req, err := http.NewRequest("GET",
		c.baseURL.JoinPath("api", "batch", "v2", "requests", requestID, "results").String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Add("Accept", applicationJSON)
	return req, nil
}

// Do calls Do on the HTTP client of the internet.nl client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if len(c.auth.BasicAuthUser) != 0 {
		req.SetBasicAuth(c.auth.BasicAuthUser, c.auth.BasicAuthPassword)
	}
	return c.httpClient.Do(req)
}

// CloseIdleConnections calls CloseIdleConnections on the HTTP client of
// the internet.nl client.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// ReadBatchRequest reads and unmarshals a batch request description, as
// returned by the submit and status endpoints.
func ReadBatchRequest(r io.Reader) (BatchRequest, error) {
	var envelope struct {
		Request BatchRequest `json:"request"`
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return BatchRequest{}, err
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return BatchRequest{}, err
	}
	return envelope.Request, nil
}

// ReadBatchResults reads and unmarshals the results of a finished batch
// measurement.
func ReadBatchResults(r io.Reader) (BatchResults, error) {
	var results BatchResults
	body, err := io.ReadAll(r)
	if err != nil {
		return results, err
	}
	if err := json.Unmarshal(body, &results); err != nil {
		return results, err
	}
	return results, nil
}

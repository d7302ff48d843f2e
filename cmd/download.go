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

package cmd

import (
	"bufio"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptrace"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/statnl/domainstat/config"
	"github.com/statnl/domainstat/frame"
	"github.com/statnl/domainstat/internetnl"
	"github.com/statnl/domainstat/store"
	"github.com/statnl/domainstat/util"
)

var (
	server       string
	user         string
	password     string
	insecure     bool
	scanType     string
	scanName     string
	requestID    string
	domainsFile  string
	pollInterval time.Duration
)

// downloadStats collects network statistics over all API calls of one
// download run.
type downloadStats struct {
	polls            int
	requestDurations []float64
	totalBytesIn     int64
	totalDuration    time.Duration
}

func (ds *downloadStats) String() string {
	builder := strings.Builder{}
	builder.WriteString(fmt.Sprintf("Polls            [total]                  %d\n", ds.polls))
	builder.WriteString(fmt.Sprintf("Duration         [total]                  %s\n",
		util.FmtDurationHumanReadable(ds.totalDuration)))

	if len(ds.requestDurations) > 0 {
		p := util.CalculateDurationStatistics(ds.requestDurations)
		builder.WriteString(fmt.Sprintf("Requ. Latencies  [mean, 50, 95, 99, max]  %s, %s, %s, %s, %s\n",
			p.Mean, p.Q50, p.Q95, p.Q99, p.Max))
		builder.WriteString(fmt.Sprintf("Bytes In         [total, mean]            %s, %s\n",
			util.FmtBytesHumanReadable(float32(ds.totalBytesIn)),
			util.FmtBytesHumanReadable(float32(ds.totalBytesIn)/float32(len(ds.requestDurations)))))
	}
	return builder.String()
}

// downloadCmd represents the download command
var downloadCmd = &cobra.Command{
	Use:   "download [settings-file]",
	Short: "Run an internet.nl batch measurement and store the results",
	Long: `Submits a batch measurement over a list of domains to an internet.nl
instance, polls it until it finishes and writes the per-domain results
into the scan database the merge command reads.

With --request-id an earlier submission is picked up instead of starting
a new one, which makes interrupted downloads resumable.

Example:

  domainstat download settings.yaml --server https://batch.internet.nl \
    --user alice --password secret --domains-file domains.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := loadSettings(args[0])
		if err != nil {
			return err
		}

		baseURL, err := url.ParseRequestURI(server)
		if err != nil {
			return fmt.Errorf("could not parse the server URL: %w", err)
		}
		auth := internetnl.ClientAuth{BasicAuthUser: user, BasicAuthPassword: password}
		var client *internetnl.Client
		if insecure {
			client = internetnl.NewClientInsecure(*baseURL, auth)
		} else {
			client = internetnl.NewClient(*baseURL, auth)
		}
		defer client.CloseIdleConnections()

		var stats downloadStats
		startTime := time.Now()

		request, err := submitOrResume(client, &stats)
		if err != nil {
			return err
		}
		request, err = awaitMeasurement(client, request, &stats)
		if err != nil {
			return err
		}

		results, err := fetchResults(client, request.RequestID, &stats)
		if err != nil {
			return err
		}
		if err := storeResults(settings, results); err != nil {
			return err
		}

		stats.totalDuration = time.Since(startTime)
		fmt.Printf("Request ID       [id]                     %s\n", request.RequestID)
		fmt.Printf("Domains          [total]                  %d\n", len(results.Domains))
		fmt.Printf("Database         [path]                   %s\n", settings.General.ScanDatabase)
		fmt.Print(stats.String())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(downloadCmd)

	downloadCmd.Flags().StringVar(&server, "server", "", "the base URL of the internet.nl instance to use")
	downloadCmd.Flags().StringVarP(&user, "user", "u", "", "user information for basic authentication")
	downloadCmd.Flags().StringVarP(&password, "password", "p", "", "password information for basic authentication")
	downloadCmd.Flags().BoolVarP(&insecure, "insecure", "k", false, "allow insecure server connections when using TLS")
	downloadCmd.Flags().StringVar(&scanType, "type", "web", "measurement type, web or mail")
	downloadCmd.Flags().StringVar(&scanName, "name", "", "display name of the measurement")
	downloadCmd.Flags().StringVar(&requestID, "request-id", "", "resume an earlier submission instead of starting a new one")
	downloadCmd.Flags().StringVar(&domainsFile, "domains-file", "", "file with one domain per line")
	downloadCmd.Flags().DurationVar(&pollInterval, "poll-interval", 30*time.Second, "time between two status polls")

	_ = downloadCmd.MarkFlagRequired("server")
	_ = downloadCmd.MarkFlagFilename("domains-file", "txt")
}

// submitOrResume starts a new measurement over the domains file or, with
// --request-id set, reads the status of the earlier submission.
func submitOrResume(client *internetnl.Client, stats *downloadStats) (internetnl.BatchRequest, error) {
	if requestID != "" {
		req, err := client.NewStatusRequest(requestID)
		if err != nil {
			return internetnl.BatchRequest{}, err
		}
		return doRequestRequest(client, req, stats)
	}

	if domainsFile == "" {
		return internetnl.BatchRequest{}, fmt.Errorf("either --domains-file or --request-id is required")
	}
	domainList, err := readDomainsFile(domainsFile)
	if err != nil {
		return internetnl.BatchRequest{}, err
	}
	slog.Info("submitting measurement", "type", scanType, "domains", len(domainList))

	req, err := client.NewSubmitRequest(scanType, scanName, domainList)
	if err != nil {
		return internetnl.BatchRequest{}, err
	}
	return doRequestRequest(client, req, stats)
}

// awaitMeasurement polls the measurement status until it reaches a
// terminal state and returns an error for every terminal state other
// than a finished report.
func awaitMeasurement(client *internetnl.Client, request internetnl.BatchRequest,
	stats *downloadStats) (internetnl.BatchRequest, error) {
	for !request.Done() {
		slog.Info("measurement still running", "id", request.RequestID, "status", request.Status)
		time.Sleep(pollInterval)

		req, err := client.NewStatusRequest(request.RequestID)
		if err != nil {
			return request, err
		}
		request, err = doRequestRequest(client, req, stats)
		if err != nil {
			return request, err
		}
		stats.polls++
	}

	switch request.Status {
	case "done", "generating":
		return request, nil
	default:
		return request, fmt.Errorf("measurement %s ended with status %s", request.RequestID, request.Status)
	}
}

// fetchResults downloads the per-domain results of a finished measurement.
func fetchResults(client *internetnl.Client, id string, stats *downloadStats) (internetnl.BatchResults, error) {
	req, err := client.NewResultsRequest(id)
	if err != nil {
		return internetnl.BatchResults{}, err
	}
	response, err := doRequest(client, req, stats)
	if err != nil {
		return internetnl.BatchResults{}, err
	}
	defer response.Body.Close()
	return internetnl.ReadBatchResults(response.Body)
}

// storeResults flattens the API results into the four scan tables and
// replaces them in the scan database.
func storeResults(settings *config.Settings, results internetnl.BatchResults) error {
	tables := internetnl.Flatten(results, settings.General.ScanIndex)

	db, err := store.Open(settings.General.ScanDatabase)
	if err != nil {
		return err
	}
	defer db.Close()

	for table, f := range map[string]*frame.Frame{
		"report":  tables.Report,
		"scoring": tables.Scoring,
		"status":  tables.Status,
		"results": tables.Results,
	} {
		if err := db.WriteFrame(table, f); err != nil {
			return fmt.Errorf("write table %s: %w", table, err)
		}
	}
	return nil
}

// doRequestRequest runs a request whose response body is a batch request
// description.
func doRequestRequest(client *internetnl.Client, req *http.Request,
	stats *downloadStats) (internetnl.BatchRequest, error) {
	response, err := doRequest(client, req, stats)
	if err != nil {
		return internetnl.BatchRequest{}, err
	}
	defer response.Body.Close()
	return internetnl.ReadBatchRequest(response.Body)
}

// doRequest runs a request, records its latency and rejects non-2xx
// responses with the server's error message.
func doRequest(client *internetnl.Client, req *http.Request, stats *downloadStats) (*http.Response, error) {
	var requestStart time.Time
	trace := &httptrace.ClientTrace{
		GotConn: func(_ httptrace.GotConnInfo) {
			requestStart = time.Now()
		},
	}
	req = req.WithContext(httptrace.WithClientTrace(req.Context(), trace))

	response, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request the server with URL %s: %w", req.URL, err)
	}
	stats.requestDurations = append(stats.requestDurations, time.Since(requestStart).Seconds())
	if response.ContentLength > 0 {
		stats.totalBytesIn += response.ContentLength
	}

	if response.StatusCode/100 != 2 {
		defer response.Body.Close()
		return nil, internetnl.ReadError(response.StatusCode, response.Body)
	}
	return response, nil
}

// readDomainsFile reads one domain per line, skipping blank lines and
// comments.
func readDomainsFile(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read domains file: %w", err)
	}
	defer file.Close()

	var domainList []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domainList = append(domainList, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read domains file: %w", err)
	}
	return domainList, nil
}

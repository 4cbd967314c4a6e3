package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"whiteknight/api"
	"whiteknight/core"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"
)

// apiClient talks to a running investigation API
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) (*apiClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: must be http(s)://host[:port]", baseURL)
	}
	return &apiClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}, nil
}

// do sends body as JSON (if non-nil) and decodes a 200 response into out
func (c *apiClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		return fmt.Errorf("%s %s returned %d: %s", method, path, resp.StatusCode, apiErr.Message)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// demoResult summarizes one run of the end-to-end scenario
type demoResult struct {
	CaseID           string          `json:"case_id"`
	SignalID         string          `json:"signal_id"`
	ThreatID         string          `json:"threat_id"`
	RecommendationID string          `json:"recommendation_id"`
	CommandsExecuted []string        `json:"commands_executed"`
	Dashboard        *core.Dashboard `json:"dashboard"`
}

// demoStep is one call of the scenario, shown with its own spinner
type demoStep struct {
	label string
	run   func(ctx context.Context) error
}

// newDemoCmd creates the 'demo' subcommand
func newDemoCmd() *cobra.Command {
	var (
		apiURL     string
		signalType string
		level      string
		outputJSON bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run an end-to-end investigation against a running API",
		Long: `Open a case, log a signal against it, flag the signal as a threat, generate a
recommendation, apply it and print the resulting case dashboard.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient(apiURL)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), defaultTimeout)
			defer cancel()

			showProgress := !outputJSON && !quiet
			result, err := runDemo(ctx, client, signalType, level, cmd.OutOrStdout(), showProgress)
			if err != nil {
				return err
			}

			if outputJSON {
				return outputAsJSON(cmd.OutOrStdout(), result)
			}
			renderDemoResult(cmd.OutOrStdout(), result)
			return nil
		},
	}

	cmd.Flags().StringVar(&apiURL, "api-url", "http://localhost:8000", "Base URL of the investigation API")
	cmd.Flags().StringVar(&signalType, "signal-type", string(core.SignalTypeBLE), "Signal type to log")
	cmd.Flags().StringVar(&level, "threat-level", string(core.ThreatLevelCritical), "Threat level to flag")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&quiet, "quiet", false, "Suppress progress output")

	return cmd
}

func runDemo(ctx context.Context, client *apiClient, signalType, level string, w io.Writer, showProgress bool) (*demoResult, error) {
	result := &demoResult{}

	steps := []demoStep{
		{"Opening case", func(ctx context.Context) error {
			var resp api.CaseResponse
			err := client.do(ctx, http.MethodPost, "/api/case", map[string]string{
				"title":        "Demo investigation",
				"description":  "Suspicious beacons reported near the waterfront",
				"investigator": "whiteknight-cli",
				"priority":     "high",
			}, &resp)
			if err == nil {
				result.CaseID = resp.Case.CaseID
			}
			return err
		}},
		{"Logging signal", func(ctx context.Context) error {
			var resp api.SignalResponse
			err := client.do(ctx, http.MethodPost, "/api/signal?case_id="+url.QueryEscape(result.CaseID), map[string]interface{}{
				"signal_type": signalType,
				"location":    "Pier 39",
				"strength":    85,
			}, &resp)
			if err == nil {
				result.SignalID = resp.Signal.SignalID
			}
			return err
		}},
		{"Flagging threat", func(ctx context.Context) error {
			q := url.Values{}
			q.Set("signal_id", result.SignalID)
			q.Set("threat_level", level)
			q.Set("case_id", result.CaseID)
			var resp api.ThreatResponse
			err := client.do(ctx, http.MethodPost, "/api/threat?"+q.Encode(), nil, &resp)
			if err == nil {
				result.ThreatID = resp.Threat.ThreatID
			}
			return err
		}},
		{"Generating recommendation", func(ctx context.Context) error {
			var resp api.RecommendationResponse
			err := client.do(ctx, http.MethodPost, "/api/ai/recommend?threat_id="+url.QueryEscape(result.ThreatID), nil, &resp)
			if err == nil {
				result.RecommendationID = resp.Recommendation.RecommendationID
			}
			return err
		}},
		{"Applying mitigation", func(ctx context.Context) error {
			var resp api.ApplyResponse
			err := client.do(ctx, http.MethodPost, "/api/ai/recommendations/"+url.PathEscape(result.RecommendationID)+"/apply", nil, &resp)
			if err == nil {
				result.CommandsExecuted = resp.CommandsExecuted
			}
			return err
		}},
		{"Loading dashboard", func(ctx context.Context) error {
			var resp api.DashboardResponse
			err := client.do(ctx, http.MethodGet, "/api/dashboard?case_id="+url.QueryEscape(result.CaseID), nil, &resp)
			if err == nil {
				result.Dashboard = resp.Dashboard
			}
			return err
		}},
	}

	for _, step := range steps {
		var s *spinner.Spinner
		if showProgress {
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(w))
			s.Suffix = " " + step.label + "..."
			s.Start()
		}

		err := step.run(ctx)

		if s != nil {
			s.Stop()
		}
		if err != nil {
			if showProgress {
				errorColor.Fprintf(w, "✗ %s\n", step.label)
			}
			return nil, err
		}
		if showProgress {
			successColor.Fprintf(w, "✓ %s\n", step.label)
		}
	}

	return result, nil
}

// renderDemoResult displays the outcome of a demo run
func renderDemoResult(w io.Writer, result *demoResult) {
	fmt.Fprintln(w)
	headerColor.Fprintln(w, "INVESTIGATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 60))
	fmt.Fprintf(w, "%-18s %s\n", "Case:", result.CaseID)
	fmt.Fprintf(w, "%-18s %s\n", "Signal:", result.SignalID)
	fmt.Fprintf(w, "%-18s %s\n", "Threat:", result.ThreatID)
	fmt.Fprintf(w, "%-18s %s\n", "Recommendation:", result.RecommendationID)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	infoColor.Fprintln(w, "Commands executed:")
	for _, command := range result.CommandsExecuted {
		fmt.Fprintf(w, "  - %s\n", command)
	}

	if d := result.Dashboard; d != nil {
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintf(w, "%-18s %d\n", "Signals:", d.RealTimeStatus.TotalSignalsDetected)
		fmt.Fprintf(w, "%-18s %d\n", "Threats:", d.RealTimeStatus.TotalThreats)
		fmt.Fprintf(w, "%-18s %d\n", "Active:", d.RealTimeStatus.ActiveThreats)
		successColor.Fprintf(w, "%-18s %d\n", "Mitigated:", d.RealTimeStatus.MitigatedThreats)
		if d.Case != nil {
			fmt.Fprintf(w, "%-18s %d signals, %d threats\n", "Case counters:", d.Case.SignalsTracked, d.Case.ThreatsDetected)
		}
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/placesgate/placesgate/pkg/cli"
	"github.com/placesgate/placesgate/pkg/gateway"
	"github.com/placesgate/placesgate/pkg/server"
)

var usageFlags struct {
	url     string
	days    int
	limit   int
	format  string
	timeout time.Duration
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show usage and budget from a running gateway",
	Long: `Query a running gateway's usage endpoint and print call counts, estimated
spend and budget status.

Figures are the gateway's in-memory estimate since it started. They are not a
substitute for the provider's billing console.

Examples:
  # Last 30 days, text
  placesgate usage

  # Last week as JSON
  placesgate usage --url http://10.0.0.5:8080 --days 7 --format json`,
	RunE: showUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)

	usageCmd.Flags().StringVar(&usageFlags.url, "url", "http://127.0.0.1:8080", "gateway base URL")
	usageCmd.Flags().IntVar(&usageFlags.days, "days", 30, "stats window in days (1-365)")
	usageCmd.Flags().IntVar(&usageFlags.limit, "limit", 10, "number of recent calls to show")
	usageCmd.Flags().StringVar(&usageFlags.format, "format", "text", "output format: text, json")
	usageCmd.Flags().DurationVar(&usageFlags.timeout, "timeout", 10*time.Second, "request timeout")
}

func showUsage(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseFormat(usageFlags.format)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), usageFlags.timeout)
	defer cancel()

	report, err := fetchUsage(ctx, http.DefaultClient, usageFlags.url, usageFlags.days, usageFlags.limit)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), usageView{report})
}

// fetchUsage calls GET {base}/api/places/usage.
func fetchUsage(ctx context.Context, client *http.Client, base string, days, limit int) (gateway.UsageReport, error) {
	var report gateway.UsageReport

	u, err := url.Parse(strings.TrimRight(base, "/") + server.RouteUsage)
	if err != nil {
		return report, fmt.Errorf("invalid gateway URL: %w", err)
	}
	q := u.Query()
	if days > 0 {
		q.Set("days", strconv.Itoa(days))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return report, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return report, fmt.Errorf("failed to reach gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
		if body.Error == "" {
			body.Error = resp.Status
		}
		return report, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, body.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return report, fmt.Errorf("failed to decode usage report: %w", err)
	}
	return report, nil
}

// usageView renders a UsageReport as text and marshals unchanged as JSON.
type usageView struct {
	gateway.UsageReport
}

func (v usageView) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.UsageReport)
}

func (v usageView) RenderText(w io.Writer) error {
	s, b := v.Stats, v.Budget

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Usage (last %d days)\n", s.WindowDays)
	fmt.Fprintf(tw, "  Total calls:\t%d\n", s.TotalCalls)
	fmt.Fprintf(tw, "  Cached calls:\t%d (%.1f%%)\n", s.CachedCalls, s.CacheHitRate()*100)
	fmt.Fprintf(tw, "  Failed calls:\t%d\n", s.FailedCalls)
	fmt.Fprintf(tw, "  Estimated cost:\t$%.2f\n", s.TotalCost)

	if len(s.CallsBySource) > 0 {
		fmt.Fprintln(tw, "  By source:")
		for _, src := range sortedKeys(s.CallsBySource) {
			fmt.Fprintf(tw, "    %s\t%d\n", src, s.CallsBySource[src])
		}
	}

	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "Budget")
	fmt.Fprintf(tw, "  Used:\t$%.2f of $%.2f (%.1f%%)\n", b.CurrentUsage, b.BudgetLimit, b.PercentageUsed)
	fmt.Fprintf(tw, "  Remaining:\t$%.2f\n", b.Remaining())
	fmt.Fprintf(tw, "  Projected this month:\t$%.2f\n", b.ProjectedMonthlyCost)
	fmt.Fprintf(tw, "  Days left in month:\t%d\n", b.DaysRemainingInMonth)
	if len(b.AlertsSent) > 0 {
		fmt.Fprintf(tw, "  Alerts sent:\t%v%%\n", b.AlertsSent)
	}

	if len(v.RecentCalls) > 0 {
		fmt.Fprintln(tw)
		fmt.Fprintln(tw, "Recent calls")
		fmt.Fprintln(tw, "  TIME\tCALLER\tCACHED\tCOST")
		for _, c := range v.RecentCalls {
			status := strconv.FormatBool(c.Cached)
			if c.Failed {
				status = "failed"
			}
			fmt.Fprintf(tw, "  %s\t%s\t%s\t$%.3f\n",
				c.Timestamp.Format(time.RFC3339), c.CallerKey, status, c.EstimatedCost)
		}
	}

	return tw.Flush()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

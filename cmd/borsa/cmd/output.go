package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	apiclient "github.com/donaldgifford/borsa/internal/api/client"
	domain "github.com/donaldgifford/borsa/pkg/types"
)

// tabWriter wraps tabwriter with error tracking.
type tabWriter struct {
	*tabwriter.Writer
	err error
}

func newTabWriter(w io.Writer) *tabWriter {
	return &tabWriter{Writer: tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)}
}

func (tw *tabWriter) writef(format string, args ...any) {
	if tw.err != nil {
		return
	}
	_, tw.err = fmt.Fprintf(tw.Writer, format, args...)
}

func (tw *tabWriter) finish() error {
	if tw.err != nil {
		return tw.err
	}
	return tw.Flush()
}

func printStocksTable(w io.Writer, stocks []domain.Stock) error {
	tw := newTabWriter(w)
	tw.writef("TICKER\tNAME\tEXCHANGE\tTYPE\tSTATUS\tMARKET CAP\n")
	for i := range stocks {
		s := &stocks[i]
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			s.Ticker,
			truncate(s.Name, 40),
			s.PrimaryExchange,
			dash(s.Type),
			s.Status(),
			domain.FormatMarketCap(s.MarketCap),
		)
	}
	return tw.finish()
}

func printSession(w io.Writer, s *apiclient.Session) error {
	tw := newTabWriter(w)
	tw.writef("Session:\t%s\n", s.ID)
	tw.writef("Mode:\t%s\n", s.Mode)
	if s.SearchQuery != "" {
		tw.writef("Search:\t%q\n", s.SearchQuery)
	}
	tw.writef("Stocks:\t%d\n", len(s.Stocks))
	tw.writef("Cursor:\t%d\n", s.Cursor)
	tw.writef("Has Next Page:\t%v\n", s.HasNextPage)
	tw.writef("Loading:\t%v\n", s.Loading || s.IsFetchingNextPage)
	if s.HasError {
		tw.writef("Error:\t%s\n", s.ErrorMessage)
	}
	if err := tw.finish(); err != nil {
		return err
	}
	if len(s.Stocks) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return printStocksTable(w, s.Stocks)
}

func printJobRunsTable(w io.Writer, runs []domain.JobRun) error {
	tw := newTabWriter(w)
	tw.writef("JOB\tSTATUS\tSTARTED\tCOMPLETED\tAFFECTED\tERROR\n")
	for i := range runs {
		r := &runs[i]
		completed := "-"
		if r.CompletedAt != nil {
			completed = r.CompletedAt.Format("2006-01-02 15:04:05")
		}
		affected := "-"
		if r.Affected != nil {
			affected = humanize.Comma(int64(*r.Affected))
		}
		tw.writef("%s\t%s\t%s\t%s\t%s\t%s\n",
			r.JobName,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			completed,
			affected,
			truncate(r.ErrorText, 40),
		)
	}
	return tw.finish()
}

func printSystemState(w io.Writer, st *domain.SystemState) error {
	tw := newTabWriter(w)
	tw.writef("Polygon Configured:\t%v\n", st.PolygonConfigured)
	tw.writef("Cache Entries:\t%s\n", humanize.Comma(int64(st.CacheEntries)))
	tw.writef("Active Sessions:\t%s\n", humanize.Comma(int64(st.SessionsActive)))
	if st.DailyLimit > 0 {
		tw.writef("Daily Quota:\t%s / %s\n", humanize.Comma(st.DailyUsed), humanize.Comma(st.DailyLimit))
	} else {
		tw.writef("Daily Quota:\tunlimited (%s used)\n", humanize.Comma(st.DailyUsed))
	}
	if err := tw.finish(); err != nil {
		return err
	}
	if len(st.Jobs) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}
	return printJobRunsTable(w, st.Jobs)
}

func printQuota(w io.Writer, q *apiclient.Quota, now time.Time) error {
	tw := newTabWriter(w)
	if q.Remaining < 0 {
		tw.writef("Daily Limit:\tunlimited\n")
		return tw.finish()
	}
	tw.writef("Daily Limit:\t%s\n", humanize.Comma(q.DailyLimit))
	tw.writef("Used:\t%s\n", humanize.Comma(q.DailyUsed))
	tw.writef("Remaining:\t%s\n", humanize.Comma(q.Remaining))
	tw.writef("Resets:\t%s\n", humanize.RelTime(q.ResetAt, now, "ago", "from now"))
	return tw.finish()
}

func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

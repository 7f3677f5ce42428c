package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"bulletin/src-server/feed"
	"bulletin/src-server/route"
	"bulletin/src-server/utils"
)

var ValidFormats = []string{"text", "json", "ics"}

type FeedOptions struct {
	*RootOptions
	Category  string
	Date      string
	Query     string
	Locations []string
	Tags      []string
	Today     bool
	Format    string
}

func NewFeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &FeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Print the event feed",
		Long: `Print the event feed the way the board shows it.

Without --date the feed holds today's single events and every repeating
event that happens again within a year. Dates accept YYYY-MM-DD or plain
English such as "next friday".

Example:
  bulletin feed --category club --tag "free food"
  bulletin feed --date tomorrow --format json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			as, err := opts.OpenAppState()
			if err != nil {
				return err
			}
			defer as.GracefulShutdown()
			return runFeed(cmd.Context(), opts, as, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.Category, "category", "c", feed.AllCategories, "category to show")
	cmd.Flags().StringVarP(&opts.Date, "date", "d", "", "only events happening on this date")
	cmd.Flags().BoolVar(&opts.Today, "today", false, "only events happening today")
	cmd.Flags().StringVarP(&opts.Query, "query", "q", "", "search titles and descriptions")
	cmd.Flags().StringSliceVarP(&opts.Locations, "location", "l", nil, "any of these locations")
	cmd.Flags().StringSliceVarP(&opts.Tags, "tag", "t", nil, "any of these tags")
	cmd.Flags().StringVar(&opts.Format, "format", "text", "output format (text|json|ics)")
	cmd.MarkFlagsMutuallyExclusive("date", "today")

	return cmd
}

func runFeed(ctx context.Context, opts *FeedOptions, as *utils.AppState, w io.Writer) error {
	if !isValidFormat(opts.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
	}

	// same parsing as the HTTP query string
	query := url.Values{}
	query.Set("q", opts.Query)
	query["location"] = opts.Locations
	query["tag"] = opts.Tags
	if opts.Today {
		query.Set("date", feed.FormatDate(as.Today()))
	} else {
		query.Set("date", opts.Date)
	}
	c, err := route.CriteriaFromQuery(as, query, opts.Category)
	if err != nil {
		return err
	}

	events, err := route.BuildFeed(ctx, as, c)
	if err != nil {
		return err
	}

	switch opts.Format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(route.ToRespBody(events, as.Today()))
	case "ics":
		return route.WriteCalendar(w, c, events)
	}
	return writeTable(w, events, c, as)
}

func writeTable(w io.Writer, events []feed.Event, c feed.Criteria, as *utils.AppState) error {
	if len(events) == 0 {
		_, err := fmt.Fprintln(w, "No events found.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tTITLE\tCATEGORY\tLOCATION\tTAGS")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			displayDate(e, c, as),
			e.Title,
			strings.Join(e.Category, ", "),
			strings.Join(e.Location, ", "),
			strings.Join(e.Tags, ", "),
		)
	}
	return tw.Flush()
}

// The day the event is listed for: the requested date, the single date,
// or the next time a repeating event happens
func displayDate(e feed.Event, c feed.Criteria, as *utils.AppState) string {
	switch {
	case !c.ExplicitDate.IsZero():
		return feed.FormatDate(c.ExplicitDate)
	case !e.Repeating:
		return e.SingleEventDate
	}
	if next, ok := feed.NextOccurrence(e, as.Today()); ok {
		return feed.FormatDate(next) + " (" + string(e.Frequency) + ")"
	}
	return string(e.Frequency)
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

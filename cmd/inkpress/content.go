package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/inkpress"
	"github.com/eringen/inkpress/content"
	"github.com/eringen/inkpress/logger"
	"github.com/eringen/inkpress/views"
)

func (c *cli) app() *inkpress.App {
	return inkpress.New(c.cfg, views.Default(), inkpress.WithLogger(logger.Log))
}

func (c *cli) publishCmd() *cobra.Command {
	var record bool
	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Publish every scheduled item whose date has passed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := c.app()
			if record {
				store, err := inkpress.NewStore(c.cfg.DatabasePath)
				if err != nil {
					return err
				}
				app.Store = store
				defer store.Close()
			}
			flipped, err := app.RunPublisher(cmd.Context())
			out := cmd.OutOrStdout()
			for _, p := range flipped {
				fmt.Fprintf(out, "published %s/%s (%s)\n", p.Type, p.Slug, p.PublishedAt.Format(time.RFC3339))
			}
			if len(flipped) == 0 && err == nil {
				fmt.Fprintln(out, "nothing to publish")
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&record, "record", true, "record the run in the publish log")
	return cmd
}

func (c *cli) listCmd() *cobra.Command {
	var (
		typ    string
		status string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List items of a content type with their status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := content.ParseType(typ)
			if err != nil {
				return err
			}
			var want content.Status
			if status != "" {
				want, err = parseStatus(status)
				if err != nil {
					return err
				}
			}
			items, err := c.app().Repo.Load(cmd.Context(), t)
			if err != nil {
				return err
			}
			entries := content.Statuses(items, time.Now())
			if want != "" {
				filtered := entries[:0]
				for _, e := range entries {
					if e.Status == want {
						filtered = append(filtered, e)
					}
				}
				entries = filtered
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), entries)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "STATUS\tDATE\tSLUG\tTITLE")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Status, e.Item.EffectiveDate().Format("2006-01-02"), e.Item.Slug, e.Item.Title)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(content.TypePost), "content type (post, page, review)")
	cmd.Flags().StringVarP(&status, "status", "s", "", "only items with this status (draft, scheduled, published)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func parseStatus(s string) (content.Status, error) {
	switch st := content.Status(strings.ToLower(strings.TrimSpace(s))); st {
	case content.StatusDraft, content.StatusScheduled, content.StatusPublished:
		return st, nil
	}
	return "", fmt.Errorf("unknown status %q", s)
}

func (c *cli) searchCmd() *cobra.Command {
	var (
		typ    string
		all    bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search titles, excerpts, bodies and tags",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var types []content.Type
			if typ != "" {
				t, err := content.ParseType(typ)
				if err != nil {
					return err
				}
				types = append(types, t)
			}
			items, err := c.app().Repo.Search(cmd.Context(), strings.Join(args, " "), types...)
			if err != nil {
				return err
			}
			if !all {
				now := time.Now()
				visible := items[:0]
				for _, it := range items {
					if it.VisibleAt(now) {
						visible = append(visible, it)
					}
				}
				items = visible
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			out := cmd.OutOrStdout()
			for _, it := range items {
				fmt.Fprintf(out, "%s\t%s\t%s\n", it.Type, it.Slug, it.Title)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", "", "limit to one content type")
	cmd.Flags().BoolVar(&all, "all", false, "include drafts and scheduled items")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (c *cli) calendarCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Group items into today, this week, this month and upcoming",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := c.app().Repo.LoadAll(cmd.Context())
			if err != nil {
				return err
			}
			cal := content.BuildCalendar(items, time.Now())
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), cal)
			}
			out := cmd.OutOrStdout()
			for _, section := range []struct {
				name  string
				items []content.Item
			}{
				{"Today", cal.Today},
				{"This week", cal.ThisWeek},
				{"This month", cal.ThisMonth},
				{"Upcoming", cal.Upcoming},
			} {
				fmt.Fprintf(out, "%s (%d)\n", section.name, len(section.items))
				for _, it := range section.items {
					fmt.Fprintf(out, "  %s  %s/%s  %s\n", it.EffectiveDate().Format("2006-01-02"), it.Type, it.Slug, it.Title)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pbaille/gardenlog/internal/api"
	"github.com/pbaille/gardenlog/internal/assistant"
	"github.com/pbaille/gardenlog/internal/domain"
)

func addCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add [text]",
		Short: "Add a new activity log",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			entry, err := e.book.AddLog(strings.Join(args, " "))
			if err != nil {
				return err
			}
			if entry == nil {
				fmt.Fprintln(out, "(nothing to add: text is blank)")
				return nil
			}

			fmt.Fprintf(out, "Added log: %s\n", shortID(entry.ID))
			fmt.Fprintf(out, "Tags: %s\n", tagList(e, *entry, a.language()))
			return nil
		},
	}
}

func listCmd(a *app) *cobra.Command {
	var (
		limit int
		tag   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List logs, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()

			var logs []domain.LogEntry
			if tag != "" {
				logs = e.book.LogsWithTag(tag)
			} else {
				logs = e.book.SortedLogs()
			}

			if len(logs) == 0 {
				fmt.Fprintln(out, "No logs yet. Use 'gardenlog add' to create one.")
				return nil
			}

			if limit > 0 && limit < len(logs) {
				logs = logs[:limit]
			}
			for _, l := range logs {
				fmt.Fprintf(out, "%s  %s  %s  [%s]\n",
					shortID(l.ID), l.CreatedAt.Local().Format("2006-01-02 15:04"),
					truncate(l.Text, 60), tagList(e, l, a.language()))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of logs to show (0 for all)")
	cmd.Flags().StringVarP(&tag, "tag", "t", "", "only logs carrying this tag id")
	return cmd
}

func showCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show [id]",
		Short: "Show log details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			l, err := find(e, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:      %s\n", l.ID)
			fmt.Fprintf(out, "Created: %s\n", assistant.FormatDate(l.CreatedAt.Local(), a.language()))
			fmt.Fprintf(out, "Text:\n%s\n", l.Text)

			if len(l.TagIDs) > 0 {
				fmt.Fprintf(out, "\nTags:\n")
				for _, id := range l.TagIDs {
					name, ok := e.book.TagName(id, a.language())
					if !ok {
						name = id
					}
					fmt.Fprintf(out, "  - %s (%s)\n", name, id)
				}
			}
			return nil
		},
	}
}

func deleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			l, err := find(e, args[0])
			if err != nil {
				return err
			}
			if err := e.book.DeleteLog(l.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted log: %s\n", shortID(l.ID))
			return nil
		},
	}
}

func tagCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Edit the tags of a log",
	}

	edit := func(use, short string, apply func(e *env, tagID, logID string) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " [id] [tag]",
			Short: short,
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				e, err := a.open()
				if err != nil {
					return err
				}
				defer e.Close()

				l, err := find(e, args[0])
				if err != nil {
					return err
				}
				if err := apply(e, args[1], l.ID); err != nil {
					return err
				}

				l, _ = e.book.Log(l.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "%s  [%s]\n", shortID(l.ID), tagList(e, l, a.language()))
				return nil
			},
		}
	}

	cmd.AddCommand(edit("add", "Add a tag to a log", func(e *env, tagID, logID string) error {
		return e.book.AddTag(tagID, logID)
	}))
	cmd.AddCommand(edit("remove", "Remove a tag from a log", func(e *env, tagID, logID string) error {
		return e.book.RemoveTag(tagID, logID)
	}))
	return cmd
}

func redateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "redate [id] [YYYY-MM-DD[ HH:MM]]",
		Short: "Change the date of a log",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			date, err := parseDate(strings.Join(args[1:], " "))
			if err != nil {
				return err
			}

			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			l, err := find(e, args[0])
			if err != nil {
				return err
			}
			if err := e.book.UpdateLogDate(l.ID, date); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", shortID(l.ID), assistant.FormatDate(date, a.language()))
			return nil
		},
	}
}

func tagsCmd(a *app) *cobra.Command {
	var suggested bool

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "List tags in use, or every suggested tag",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			lang := a.language()

			var ids []string
			if suggested {
				ids = e.book.AllSuggestedTagIDs(lang)
			} else {
				ids = e.book.AvailableTagIDs(lang)
			}

			if len(ids) == 0 {
				fmt.Fprintln(out, "No tags yet. Tags are detected when logs are added.")
				return nil
			}

			for _, id := range ids {
				name, ok := e.book.TagName(id, lang)
				if !ok {
					name = id
				}
				fmt.Fprintf(out, "%-12s %s\n", id, name)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&suggested, "suggested", false, "list every catalog tag")
	return cmd
}

func askCmd(a *app) *cobra.Command {
	var explain bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question about your logs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			out := cmd.OutOrStdout()
			question := strings.Join(args, " ")

			if explain {
				printQuery(out, e.assistant.Parse(question))
			}
			fmt.Fprintln(out, e.assistant.Answer(question, a.language()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&explain, "explain", false, "show how the question was understood")
	return cmd
}

func printQuery(out io.Writer, q assistant.Query) {
	fmt.Fprintf(out, "normalized: %s\n", q.Normalized)
	fmt.Fprintf(out, "intent:     %s\n", q.Intent)
	tags := "-"
	if len(q.TagIDs) > 0 {
		tags = strings.Join(q.TagIDs, ", ")
	}
	fmt.Fprintf(out, "tags:       %s\n", tags)
	if q.Year != 0 {
		fmt.Fprintf(out, "year:       %d\n", q.Year)
	}
	if q.Range != nil {
		fmt.Fprintf(out, "range:      %s .. %s\n",
			q.Range.Start.Format(time.RFC3339), q.Range.End.Format(time.RFC3339))
	}
	fmt.Fprintln(out)
}

func reconcileCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Re-detect the tags of every log from its text",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.book.ReconcileTagsFromText(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reconciled %d logs\n", e.book.Len())
			return nil
		},
	}
}

func serveCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the REST API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := a.open()
			if err != nil {
				return err
			}
			defer e.Close()

			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Addr
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			server := api.New(e.book, e.assistant, addr,
				api.WithLanguage(a.language()),
				api.WithLogger(a.logger.Named("api")))
			fmt.Fprintf(cmd.OutOrStdout(), "Serving on %s\n", addr)
			return server.Run(ctx)
		},
	}

	cmd.Flags().StringVarP(&addr, "addr", "a", ":8080", "server address")
	return cmd
}

func configCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(a.configPath); err == nil && !force {
				return fmt.Errorf("config already exists: %s (use --force to overwrite)", a.configPath)
			}
			if err := a.cfg.Save(a.configPath); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", a.configPath)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	cmd.AddCommand(initCmd)
	return cmd
}

// find resolves a full id or an id prefix
func find(e *env, id string) (domain.LogEntry, error) {
	if l, ok := e.book.Log(id); ok {
		return l, nil
	}
	if l, ok := e.book.FindByPrefix(id); ok {
		return l, nil
	}
	return domain.LogEntry{}, fmt.Errorf("log not found: %s", id)
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or YYYY-MM-DD HH:MM)", s)
}

func tagList(e *env, l domain.LogEntry, lang domain.Language) string {
	names := e.book.LocalizedTags(l, lang)
	for _, id := range l.TagIDs {
		if _, ok := e.book.TagName(id, lang); !ok {
			names = append(names, id)
		}
	}
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, ", ")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, max int) string {
	// Replace newlines with spaces for display
	s = strings.ReplaceAll(s, "\n", " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/HuaTug/LLM/messages"
	"github.com/spf13/cobra"
)

func messagesCmd(a *app) *cobra.Command {
	var hoursBack int
	var categories []string
	var format string

	cmd := &cobra.Command{
		Use:   "messages",
		Short: "Print the latest messages from the demo sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			retriever := messages.NewDemoRetriever(messages.WithLogger(a.log))
			msgs, err := retriever.GetLatestMessages(ctx, hoursBack, categoryFlag(cmd, categories))
			if err != nil {
				return err
			}
			return printMessages(a.out, msgs, format)
		},
	}

	cmd.Flags().IntVar(&hoursBack, "hours-back", messages.DefaultHoursBack, "look-back window in hours")
	cmd.Flags().StringSliceVar(&categories, "categories", nil, "only show these categories")
	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format: table or json")
	return cmd
}

// categoryFlag turns --categories into a filter. Without the flag every
// category passes; --categories= with no values matches nothing.
func categoryFlag(cmd *cobra.Command, values []string) messages.CategorySet {
	if !cmd.Flags().Changed("categories") {
		return nil
	}
	return messages.CategorySetOf(values)
}

func printMessages(w io.Writer, msgs []messages.Message, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	case "table":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "TIME\tCATEGORY\tSOURCE\tTITLE")
		for _, m := range msgs {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.Timestamp.Format(time.DateTime), m.Category, m.Source, m.Title)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"lumina/internal/services/notes"

	"github.com/spf13/cobra"
)

var (
	listJSON      bool
	listSearch    string
	filterTag     string
	listFavorites bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes, pinned first",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, release, err := openCollection(context.Background())
		if err != nil {
			fatal("Error opening collection", err)
		}
		defer release()

		f := notes.Filter{Search: listSearch, Tag: notes.NormalizeTag(filterTag), View: notes.ViewAll}
		if listFavorites {
			f.View = notes.ViewFavorites
		}
		if err := printList(os.Stdout, svc.List(), f, listJSON); err != nil {
			fatal("Error listing notes", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listSearch, "query", "q", "", "Only notes whose title or content contains this text")
	listCmd.Flags().StringVar(&filterTag, "tag", "", "Filter notes by tag")
	listCmd.Flags().BoolVar(&listFavorites, "favorites", false, "Only favorite notes")
}

func printList(w io.Writer, collection []notes.Note, f notes.Filter, asJSON bool) error {
	view := notes.Query(collection, f)

	if asJSON {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(view.All())
	}

	fmt.Fprintln(w, notes.Heading(f))
	for _, n := range view.All() {
		marks := ""
		if n.IsPinned {
			marks += "^"
		}
		if n.IsFavorite {
			marks += "*"
		}
		title := n.Title
		if title == "" {
			title = "(untitled)"
		}
		line := fmt.Sprintf("%-2s %s  %s", marks, n.ID, title)
		if len(n.Tags) > 0 {
			line += "  #" + strings.Join(n.Tags, " #")
		}
		fmt.Fprintln(w, line)
	}
	return nil
}

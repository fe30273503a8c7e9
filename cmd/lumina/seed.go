package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lumina/internal/services/notes"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/spf13/cobra"
)

var (
	seedCount int
	seedValue int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Add fake notes to the collection",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		svc, release, err := openCollection(ctx)
		if err != nil {
			fatal("Error opening collection", err)
		}
		defer release()

		if seedValue == 0 {
			seedValue = time.Now().UnixNano()
		}
		created, err := seedNotes(ctx, svc, gofakeit.New(seedValue), seedCount)
		if err != nil {
			fatal("Error seeding notes", err)
		}
		fmt.Printf("✔ added %d notes\n", created)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 20, "How many notes to create")
	seedCmd.Flags().Int64Var(&seedValue, "seed", 0, "Random seed, 0 for time based")
}

// seedNotes creates n notes with fake text, tags and flags.
func seedNotes(ctx context.Context, svc *notes.Service, faker *gofakeit.Faker, n int) (int, error) {
	for i := 0; i < n; i++ {
		note := svc.Create(ctx)

		note.Title = strings.TrimSuffix(faker.Sentence(faker.Number(2, 6)), ".")
		note.Content = faker.Paragraph(faker.Number(1, 3), faker.Number(2, 5), faker.Number(6, 14), "\n\n")
		note.Tags = notes.MergeTags(nil, []string{faker.Hobby(), faker.Noun()}[:faker.Number(0, 2)])
		note.Color = notes.Palette[faker.Number(0, len(notes.Palette)-1)].Value
		note.IsFavorite = faker.Number(1, 5) == 1
		note.IsPinned = faker.Number(1, 10) == 1
		note.UpdatedAt = faker.DateRange(time.Now().AddDate(0, -3, 0), time.Now()).UnixMilli()

		if _, err := svc.Update(ctx, note); err != nil {
			return i, err
		}
	}
	svc.ClearSelection()
	return n, nil
}

package rfm

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/duocommerce/warehousectl/internal/db"
)

const insertSegmentSQL = `
INSERT INTO rfm_segments (id_client, nom, segment, segment_nom, recence, frequence, montant)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

// WriteSegments rewrites the rfm_segments table with the given assignment.
// ranks must be aligned with clients.
func WriteSegments(ctx context.Context, q db.Querier, clients []ClientRFM, ranks []int) error {
	if len(ranks) != len(clients) {
		return fmt.Errorf("rank count %d does not match client count %d", len(ranks), len(clients))
	}

	if _, err := q.Exec(ctx, "DELETE FROM rfm_segments"); err != nil {
		return fmt.Errorf("failed to clear rfm_segments: %w", err)
	}

	batch := &pgx.Batch{}
	for i, c := range clients {
		batch.Queue(insertSegmentSQL,
			c.ClientKey, c.Name, ranks[i], SegmentName(ranks[i]),
			c.Recency, c.Frequency, c.Monetary,
		)
	}

	results := q.SendBatch(ctx, batch)
	defer results.Close()
	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("failed to insert segment row: %w", err)
		}
	}
	return results.Close()
}

// ExportCSV writes the segmentation as a flat file.
func ExportCSV(path string, clients []ClientRFM, ranks []int) error {
	if len(ranks) != len(clients) {
		return fmt.Errorf("rank count %d does not match client count %d", len(ranks), len(clients))
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV export: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{
		"id_client", "nom", "segment", "segment_nom", "recence", "frequence", "montant",
	}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, c := range clients {
		record := []string{
			strconv.FormatInt(c.ClientKey, 10),
			c.Name,
			strconv.Itoa(ranks[i]),
			SegmentName(ranks[i]),
			strconv.Itoa(c.Recency),
			strconv.Itoa(c.Frequency),
			strconv.FormatFloat(c.Monetary, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV export: %w", err)
	}
	return f.Close()
}

// SegmentSummary aggregates one segment for the text report.
type SegmentSummary struct {
	Rank         int
	Name         string
	Clients      int
	Share        float64
	MeanMonetary float64
}

// Summarize aggregates the assignment per segment, ordered by rank.
func Summarize(clients []ClientRFM, ranks []int) []SegmentSummary {
	byRank := make(map[int]*SegmentSummary)
	for i, c := range clients {
		s, ok := byRank[ranks[i]]
		if !ok {
			s = &SegmentSummary{Rank: ranks[i], Name: SegmentName(ranks[i])}
			byRank[ranks[i]] = s
		}
		s.Clients++
		s.MeanMonetary += c.Monetary
	}

	summaries := make([]SegmentSummary, 0, len(byRank))
	for _, s := range byRank {
		if s.Clients > 0 {
			s.MeanMonetary /= float64(s.Clients)
			s.Share = float64(s.Clients) / float64(len(clients)) * 100
		}
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Rank < summaries[j].Rank })
	return summaries
}

// Report renders the text summary of a segmentation run.
func Report(clients []ClientRFM, ranks []int, now time.Time) string {
	report := "RFM SEGMENTATION REPORT\n"
	report += "=======================\n"
	report += fmt.Sprintf("Date: %s\n", now.Format("2006-01-02"))
	report += fmt.Sprintf("Clients analyzed: %d\n\n", len(clients))
	report += "Segments:\n"
	for _, s := range Summarize(clients, ranks) {
		report += fmt.Sprintf("  %-10s %4d clients (%5.1f%%) - %.2f mean total\n",
			s.Name, s.Clients, s.Share, s.MeanMonetary)
	}
	return report
}

// WriteReport writes the text summary to a file.
func WriteReport(path string, clients []ClientRFM, ranks []int, now time.Time) error {
	if err := os.WriteFile(path, []byte(Report(clients, ranks, now)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

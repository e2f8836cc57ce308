package rfm

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestStandardize(t *testing.T) {
	got := Standardize([]float64{2, 4, 6})

	// Mean 4, population std sqrt(8/3).
	std := math.Sqrt(8.0 / 3.0)
	want := []float64{-2 / std, 0, 2 / std}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("Standardize[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStandardizeConstantColumn(t *testing.T) {
	got := Standardize([]float64{5, 5, 5, 5})
	for i, v := range got {
		if v != 0 {
			t.Errorf("Standardize[%d] = %v, want 0 for constant input", i, v)
		}
	}
}

func TestStandardizeEmpty(t *testing.T) {
	if got := Standardize(nil); got != nil {
		t.Errorf("Standardize(nil) = %v, want nil", got)
	}
}

func TestSegmentName(t *testing.T) {
	tests := []struct {
		rank int
		want string
	}{
		{0, "Champions"},
		{1, "Loyal"},
		{2, "Recent"},
		{3, "At Risk"},
		{4, "Segment 5"},
		{-1, "Segment 0"},
	}

	for _, tt := range tests {
		if got := SegmentName(tt.rank); got != tt.want {
			t.Errorf("SegmentName(%d) = %s, want %s", tt.rank, got, tt.want)
		}
	}
}

// wellSeparatedClients returns two obvious behavioral groups: big frequent
// recent spenders and dormant low spenders.
func wellSeparatedClients() []ClientRFM {
	var clients []ClientRFM
	for i := 0; i < 5; i++ {
		clients = append(clients, ClientRFM{
			ClientKey: int64(i + 1),
			Name:      "big spender",
			Recency:   5 + i,
			Frequency: 20 + i,
			Monetary:  5000 + float64(i)*100,
		})
	}
	for i := 0; i < 5; i++ {
		clients = append(clients, ClientRFM{
			ClientKey: int64(i + 6),
			Name:      "dormant",
			Recency:   NeverOrderedRecency,
			Frequency: 0,
			Monetary:  0,
		})
	}
	return clients
}

func TestClusterSeparatesGroups(t *testing.T) {
	clients := wellSeparatedClients()

	ranks, err := Cluster(clients, 2)
	if err != nil {
		t.Fatalf("Cluster failed: %v", err)
	}
	if len(ranks) != len(clients) {
		t.Fatalf("got %d ranks for %d clients", len(ranks), len(clients))
	}

	// The high-monetary group must be rank 0, the dormant group rank 1.
	for i := 0; i < 5; i++ {
		if ranks[i] != 0 {
			t.Errorf("big spender %d got rank %d, want 0", i, ranks[i])
		}
	}
	for i := 5; i < 10; i++ {
		if ranks[i] != 1 {
			t.Errorf("dormant client %d got rank %d, want 1", i, ranks[i])
		}
	}
}

func TestClusterTooFewClients(t *testing.T) {
	clients := []ClientRFM{{ClientKey: 1, Monetary: 100}}
	if _, err := Cluster(clients, 4); err == nil {
		t.Error("Expected error clustering 1 client into 4 segments")
	}
}

func TestSummarize(t *testing.T) {
	clients := []ClientRFM{
		{ClientKey: 1, Monetary: 100},
		{ClientKey: 2, Monetary: 300},
		{ClientKey: 3, Monetary: 0},
		{ClientKey: 4, Monetary: 0},
	}
	ranks := []int{0, 0, 1, 1}

	summaries := Summarize(clients, ranks)
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	if summaries[0].Rank != 0 || summaries[0].Clients != 2 {
		t.Errorf("summary 0 = %+v", summaries[0])
	}
	if math.Abs(summaries[0].MeanMonetary-200) > 1e-9 {
		t.Errorf("summary 0 mean = %v, want 200", summaries[0].MeanMonetary)
	}
	if math.Abs(summaries[0].Share-50) > 1e-9 {
		t.Errorf("summary 0 share = %v, want 50", summaries[0].Share)
	}
	if summaries[1].Rank != 1 || summaries[1].Clients != 2 {
		t.Errorf("summary 1 = %+v", summaries[1])
	}
}

func TestReport(t *testing.T) {
	clients := []ClientRFM{
		{ClientKey: 1, Name: "Alice", Monetary: 100},
		{ClientKey: 2, Name: "Bruno", Monetary: 0},
	}
	ranks := []int{0, 1}

	report := Report(clients, ranks, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	if !strings.Contains(report, "Date: 2025-06-01") {
		t.Errorf("report missing date:\n%s", report)
	}
	if !strings.Contains(report, "Clients analyzed: 2") {
		t.Errorf("report missing client count:\n%s", report)
	}
	if !strings.Contains(report, "Champions") || !strings.Contains(report, "Loyal") {
		t.Errorf("report missing segment names:\n%s", report)
	}
}

func TestExportCSV(t *testing.T) {
	clients := []ClientRFM{
		{ClientKey: 1, Name: "Alice", Recency: 10, Frequency: 3, Monetary: 250.50},
		{ClientKey: 2, Name: "Bruno", Recency: NeverOrderedRecency, Frequency: 0, Monetary: 0},
	}
	ranks := []int{0, 3}

	path := filepath.Join(t.TempDir(), "segments.csv")
	if err := ExportCSV(path, clients, ranks); err != nil {
		t.Fatalf("ExportCSV failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read export: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want header plus 2 records", len(lines))
	}
	if lines[0] != "id_client,nom,segment,segment_nom,recence,frequence,montant" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "1,Alice,0,Champions,10,3,250.50" {
		t.Errorf("unexpected first record: %s", lines[1])
	}
	if lines[2] != "2,Bruno,3,At Risk,999,0,0.00" {
		t.Errorf("unexpected second record: %s", lines[2])
	}
}

func TestExportCSVMismatchedRanks(t *testing.T) {
	clients := []ClientRFM{{ClientKey: 1}}
	path := filepath.Join(t.TempDir(), "segments.csv")
	if err := ExportCSV(path, clients, nil); err == nil {
		t.Error("Expected error for mismatched rank count")
	}
}

package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/angelmondragon/sourcing-engine/internal/batch"
	"github.com/angelmondragon/sourcing-engine/pkg/enums"
)

const defaultTopSuppliers = 10

// SupplierCount is one row of the supplier frequency table, used for
// downstream fatigue analysis.
type SupplierCount struct {
	Supplier string
	Count    int
	Percent  float64
}

// PartRollup is the per-part status breakdown.
type PartRollup struct {
	LineNumber  int
	PartNumber  string
	Sent        int
	Failed      int
	Omitted     int
	NoSuppliers bool
	Skipped     int
}

// Summary is the batch run report.
type Summary struct {
	RunKey      string
	TotalParts  int
	Sent        int
	Failed      int
	Omitted     int
	NoSuppliers int
	Skipped     int

	TotalDuration time.Duration
	AvgPerPart    time.Duration

	Parts        []PartRollup
	TopSuppliers []SupplierCount
}

// Reporter aggregates submission outcomes into a run summary. Pure
// aggregation, no side effects.
type Reporter struct {
	topN int
}

// ReporterParams configure NewReporter.
type ReporterParams struct {
	TopSuppliers int
}

func NewReporter(params ReporterParams) (*Reporter, error) {
	topN := params.TopSuppliers
	if topN == 0 {
		topN = defaultTopSuppliers
	}
	if topN < 0 {
		return nil, fmt.Errorf("top suppliers must not be negative, got %d", params.TopSuppliers)
	}
	return &Reporter{topN: topN}, nil
}

// Summarize rolls outcomes up into global counts, per-part status, and the
// most-contacted suppliers.
func (r *Reporter) Summarize(runKey string, outcomes []batch.Outcome, elapsed time.Duration) Summary {
	summary := Summary{
		RunKey:        runKey,
		TotalDuration: elapsed,
	}

	rollups := make(map[int]*PartRollup)
	supplierCounts := make(map[string]int)
	var order []int

	for _, out := range outcomes {
		rollup, ok := rollups[out.LineNumber]
		if !ok {
			rollup = &PartRollup{LineNumber: out.LineNumber, PartNumber: out.PartNumber}
			rollups[out.LineNumber] = rollup
			order = append(order, out.LineNumber)
		}

		switch out.Status {
		case enums.OutcomeSent:
			summary.Sent++
			rollup.Sent++
			supplierCounts[out.Supplier]++
		case enums.OutcomeFailed:
			summary.Failed++
			rollup.Failed++
		case enums.OutcomeOmitted:
			summary.Omitted++
			rollup.Omitted++
		case enums.OutcomeNoSuppliers:
			summary.NoSuppliers++
			rollup.NoSuppliers = true
		case enums.OutcomeSkipped:
			summary.Skipped++
			rollup.Skipped++
		}
	}

	sort.Ints(order)
	for _, line := range order {
		summary.Parts = append(summary.Parts, *rollups[line])
	}
	summary.TotalParts = len(summary.Parts)
	if summary.TotalParts > 0 {
		summary.AvgPerPart = elapsed / time.Duration(summary.TotalParts)
	}

	summary.TopSuppliers = topSuppliers(supplierCounts, summary.Sent, r.topN)
	return summary
}

func topSuppliers(counts map[string]int, totalSent, topN int) []SupplierCount {
	if len(counts) == 0 {
		return nil
	}
	out := make([]SupplierCount, 0, len(counts))
	for supplier, count := range counts {
		entry := SupplierCount{Supplier: supplier, Count: count}
		if totalSent > 0 {
			entry.Percent = float64(count) * 100 / float64(totalSent)
		}
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Supplier < out[j].Supplier
	})
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

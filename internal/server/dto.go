package server

import (
	"time"

	"worksim/internal/domain"
	"worksim/internal/repo"
)

type TableResponse struct {
	Table string `json:"table"`
	Rows  int    `json:"rows"`
}

type RowsPage struct {
	Table      string           `json:"table"`
	Items      []map[string]any `json:"items"`
	NextOffset *int             `json:"next_offset,omitempty"`
}

type ProvenanceEntry struct {
	EntityType     string `json:"entity_type"`
	SourceStrategy string `json:"source_strategy"`
	RowCount       int    `json:"row_count"`
}

type ProvenanceResponse struct {
	BatchID   string            `json:"batch_id"`
	Timestamp time.Time         `json:"timestamp"`
	Tables    []ProvenanceEntry `json:"tables"`
}

type ChecksResponse struct {
	Passed bool         `json:"passed"`
	Checks []repo.Check `json:"checks"`
}

// mapTables lists counts in append order with the provenance log last.
func mapTables(counts map[string]int) []TableResponse {
	out := make([]TableResponse, 0, len(counts))
	for _, t := range domain.Tables {
		out = append(out, TableResponse{Table: t, Rows: counts[t]})
	}
	return append(out, TableResponse{Table: domain.ProvenanceTable, Rows: counts[domain.ProvenanceTable]})
}

func provenanceResponse(items []domain.Provenance) ProvenanceResponse {
	var resp ProvenanceResponse
	resp.Tables = make([]ProvenanceEntry, 0, len(items))
	for _, p := range items {
		resp.BatchID = p.BatchID
		if p.Timestamp.After(resp.Timestamp) {
			resp.Timestamp = p.Timestamp
		}
		resp.Tables = append(resp.Tables, ProvenanceEntry{
			EntityType:     p.EntityType,
			SourceStrategy: p.SourceStrategy,
			RowCount:       p.RowCount,
		})
	}
	return resp
}

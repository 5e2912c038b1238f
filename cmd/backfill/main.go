// Command backfill populates the report_summaries table from assistant
// messages carrying vat_report metadata. It exists for databases that
// predate the summaries table or lost rows to partial failures.
// Usage: go run ./cmd/backfill
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"britta/internal/config"
	"britta/internal/domain"
	"britta/internal/repository/postgres"
)

const batchSize = 100

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

type reportRow struct {
	ID             uuid.UUID       `db:"id"`
	ConversationID uuid.UUID       `db:"conversation_id"`
	CompanyID      uuid.UUID       `db:"company_id"`
	Metadata       json.RawMessage `db:"metadata"`
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = db.Close() }()

	summaryRepo := postgres.NewReportSummaryRepo(db)

	ctx := context.Background()
	offset := 0
	total := 0

	for {
		var rows []reportRow
		err := db.SelectContext(ctx, &rows,
			`SELECT m.id, m.conversation_id, c.company_id, m.metadata
			 FROM messages m
			 JOIN conversations c ON c.id = m.conversation_id
			 WHERE m.role = 'assistant' AND m.metadata ->> 'type' = $1
			 ORDER BY m.created_at
			 LIMIT $2 OFFSET $3`, domain.ReportType, batchSize, offset)
		if err != nil {
			return fmt.Errorf("querying report messages at offset %d: %w", offset, err)
		}
		if len(rows) == 0 {
			break
		}

		for i := range rows {
			row := &rows[i]

			var meta domain.ReportMetadata
			if err := json.Unmarshal(row.Metadata, &meta); err != nil {
				log.Printf("WARN: skipping message %s: unmarshal metadata: %v", row.ID, err)
				continue
			}
			if meta.Report == nil {
				log.Printf("WARN: skipping message %s: no report in metadata", row.ID)
				continue
			}

			rep := meta.Report
			summary := &domain.ReportSummary{
				CompanyID:      row.CompanyID,
				ConversationID: row.ConversationID,
				MessageID:      row.ID,
				Period:         rep.Period,
				TotalIncome:    rep.Summary.TotalIncome,
				TotalCosts:     rep.Summary.TotalCosts,
				Result:         rep.Summary.Result,
				VATToPay:       rep.VAT.ToPay,
				VATToRefund:    rep.VAT.ToRefund,
			}
			if rep.AnalysisSummary != nil {
				summary.TransactionCount = rep.AnalysisSummary.TotalTransactions
			}

			if err := summaryRepo.Upsert(ctx, summary); err != nil {
				log.Printf("WARN: failed to upsert summary for message %s: %v", row.ID, err)
				continue
			}
			total++
		}

		if total > 0 && total%batchSize == 0 {
			log.Printf("Progress: %d reports processed", total)
		}

		offset += len(rows)
	}

	log.Printf("Backfill complete: %d report summaries upserted", total)
	return nil
}

package postgres

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"skupilot/internal/core/domain"
)

// DecisionLog implements port.DecisionLog using pgxpool for PostgreSQL.
// Records are write-once; there is no update or delete path.
type DecisionLog struct {
	pool *pgxpool.Pool
}

// NewDecisionLog returns a new log instance.
func NewDecisionLog(pool *pgxpool.Pool) *DecisionLog {
	return &DecisionLog{pool: pool}
}

// Append stores one decision cycle record.
func (r *DecisionLog) Append(ctx context.Context, d domain.IntelligenceDecision) error {
	decisions, err := json.Marshal(d.Decisions)
	if err != nil {
		return err
	}
	results, err := json.Marshal(d.ExecutionResults)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
        INSERT INTO intelligence_decisions
            (id, sku_id, client_id, decided_at, decision_type, mode,
             decisions, execution_results, data_points_used, confidence_score)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		d.ID, d.SKUID, d.ClientID, d.Timestamp, d.DecisionType, string(d.Mode),
		decisions, results, d.DataPointsUsed, d.ConfidenceScore)
	return err
}

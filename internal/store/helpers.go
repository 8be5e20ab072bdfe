package store

import (
	"database/sql"
	"fmt"

	"github.com/BenefitSphere/PlanVoice/internal/models"
)

// scanTurn scans a TurnRecord from sql.Rows.
func scanTurn(rows *sql.Rows) (models.TurnRecord, error) {
	var rec models.TurnRecord
	var intent, state string
	err := rows.Scan(&rec.SessionID, &rec.Utterance, &intent, &state, &rec.Reply, &rec.Time)
	if err != nil {
		return rec, fmt.Errorf("scan turn failed: %w", err)
	}
	rec.Intent = models.Intent(intent)
	rec.AgentState = models.AgentState(state)
	return rec, nil
}

// scanSubmission scans a Submission from sql.Rows.
func scanSubmission(rows *sql.Rows) (models.Submission, error) {
	var sub models.Submission
	var taskType string
	err := rows.Scan(&sub.ID, &sub.SessionID, &taskType, &sub.Details, &sub.SubmittedAt)
	if err != nil {
		return sub, fmt.Errorf("scan submission failed: %w", err)
	}
	sub.TaskType = models.TaskType(taskType)
	return sub, nil
}

package audit

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Entry is one audit log record, written for auth events and report exports.
type Entry struct {
	UserID     *string
	Action     string // e.g. "auth.login", "report.export"
	EntityType string
	IP         *string
	Metadata   []byte // raw JSON, optional
}

// Write records an audit entry; failures are returned so callers can ignore
// them. A nil pool is a no-op.
func Write(ctx context.Context, db *pgxpool.Pool, e Entry) error {
	if db == nil {
		return nil
	}

	var metadata interface{}
	if len(e.Metadata) > 0 {
		metadata = json.RawMessage(e.Metadata)
	}

	_, err := db.Exec(ctx, `
INSERT INTO audit_logs (user_id, action, entity_type, ip, metadata)
VALUES ($1, $2, $3, $4, $5)
`, e.UserID, e.Action, e.EntityType, e.IP, metadata)

	return err
}

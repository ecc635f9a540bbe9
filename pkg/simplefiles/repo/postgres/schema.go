package postgres

import "context"

// Schema creates the files table. It is safe to apply repeatedly.
//
// parent_id holds the literal '0' for records at the root and the parent's
// id otherwise. seq records insertion order for listing.
const Schema = `
CREATE TABLE IF NOT EXISTS files (
	seq         BIGSERIAL UNIQUE,
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	owner_id    UUID NOT NULL,
	name        TEXT NOT NULL,
	type        TEXT NOT NULL CHECK (type IN ('folder', 'file', 'image')),
	parent_id   TEXT NOT NULL DEFAULT '0',
	is_public   BOOLEAN NOT NULL DEFAULT FALSE,
	content_key TEXT NOT NULL DEFAULT '',
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS files_owner_parent_seq_idx ON files (owner_id, parent_id, seq);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db DBTX) error {
	_, err := db.Exec(ctx, Schema)
	return err
}

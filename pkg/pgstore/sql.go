package pgstore

// DDL applied by CreateStore. Every statement is idempotent so bootstrap
// can run on each startup.
var ddlStatements = []string{
	`CREATE TABLE IF NOT EXISTS sietch_store (
		name       TEXT PRIMARY KEY,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sietch_model (
		singleton    BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (singleton),
		version      TEXT NOT NULL,
		installed_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS sietch_tuples (
		subject_type     TEXT NOT NULL,
		subject_id       TEXT NOT NULL,
		subject_relation TEXT NOT NULL DEFAULT '',
		relation         TEXT NOT NULL,
		object_type      TEXT NOT NULL,
		object_id        TEXT NOT NULL,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (subject_type, subject_id, subject_relation, relation, object_type, object_id)
	)`,
	// Serves LookupByTupleset, LookupUsersets and ReadByObject, which all
	// filter by object first.
	`CREATE INDEX IF NOT EXISTS sietch_tuples_object_idx
		ON sietch_tuples (object_type, object_id, relation)`,
}

const (
	insertStoreSQL = `
		INSERT INTO sietch_store (name) VALUES ($1)
		ON CONFLICT (name) DO NOTHING`

	upsertModelSQL = `
		INSERT INTO sietch_model (singleton, version) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET version = EXCLUDED.version, installed_at = now()`

	selectModelSQL = `
		SELECT version FROM sietch_model`

	lookupSQL = `
		SELECT EXISTS (
			SELECT 1 FROM sietch_tuples
			WHERE subject_type = $1 AND subject_id = $2 AND subject_relation = $3
			  AND relation = $4 AND object_type = $5 AND object_id = $6
		)`

	// Plain-object subjects only; userset rows carry a non-empty
	// subject_relation and belong to LookupUsersets.
	lookupTuplesetSQL = `
		SELECT subject_type, subject_id FROM sietch_tuples
		WHERE relation = $1 AND object_type = $2 AND object_id = $3
		  AND subject_relation = ''
		ORDER BY subject_type, subject_id`

	lookupUsersetsSQL = `
		SELECT subject_type, subject_id, subject_relation FROM sietch_tuples
		WHERE relation = $1 AND object_type = $2 AND object_id = $3
		  AND subject_relation <> ''
		ORDER BY subject_type, subject_id, subject_relation`

	readByObjectSQL = `
		SELECT subject_type, subject_id, subject_relation, relation, object_type, object_id
		FROM sietch_tuples
		WHERE object_type = $1 AND object_id = $2
		ORDER BY relation, subject_type, subject_id, subject_relation`

	insertTupleSQL = `
		INSERT INTO sietch_tuples (subject_type, subject_id, subject_relation, relation, object_type, object_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT DO NOTHING`

	deleteTupleSQL = `
		DELETE FROM sietch_tuples
		WHERE subject_type = $1 AND subject_id = $2 AND subject_relation = $3
		  AND relation = $4 AND object_type = $5 AND object_id = $6`
)

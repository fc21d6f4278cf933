package database

var schema = []string{
	`CREATE TABLE IF NOT EXISTS complaints (
		id             BIGSERIAL PRIMARY KEY,
		complaint_text TEXT        NOT NULL,
		category       VARCHAR(32) NOT NULL,
		priority       VARCHAR(16) NOT NULL,
		rule_override  BOOLEAN     NOT NULL DEFAULT FALSE,
		classified_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_classified_at ON complaints (classified_at)`,
	`CREATE INDEX IF NOT EXISTS idx_complaints_priority ON complaints (priority)`,
	`CREATE TABLE IF NOT EXISTS feedback (
		id                 BIGSERIAL PRIMARY KEY,
		complaint_id       BIGINT      NOT NULL,
		complaint_text     TEXT        NOT NULL,
		predicted_category VARCHAR(32) NOT NULL,
		predicted_priority VARCHAR(16) NOT NULL,
		correct_category   VARCHAR(32) NOT NULL,
		correct_priority   VARCHAR(16) NOT NULL,
		is_correct         BOOLEAN     NOT NULL,
		submitted_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_feedback_complaint_id ON feedback (complaint_id)`,
}

package database

// Schema creates the leads table and its indexes.
const Schema = `
CREATE TABLE IF NOT EXISTS leads (
    id               UUID PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT NOT NULL,
    phone            TEXT NOT NULL DEFAULT '',
    locale           VARCHAR(5) NOT NULL DEFAULT 'en',
    lead_type        VARCHAR(40) NOT NULL DEFAULT 'STANDARD_BUYER',
    status           VARCHAR(16) NOT NULL DEFAULT 'pending',
    channel          VARCHAR(16) NOT NULL DEFAULT '',
    external_id      TEXT NOT NULL DEFAULT '',
    submission_error TEXT NOT NULL DEFAULT '',
    report_url       TEXT NOT NULL DEFAULT '',
    answers          JSONB NOT NULL,
    report           JSONB,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_leads_created_at ON leads (created_at DESC);
CREATE INDEX IF NOT EXISTS idx_leads_status ON leads (status);
CREATE INDEX IF NOT EXISTS idx_leads_lead_type ON leads (lead_type);
`

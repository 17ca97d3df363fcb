package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS deals (
    deal_key             TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    body                 TEXT NOT NULL,
    saved_at             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_deals_saved ON deals(saved_at);
`

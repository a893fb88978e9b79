package store

// schemaSQL is the DDL for all tables. The decisions table keeps an
// internal integer rowid (doc_id) for FTS5 while exposing a stable string
// id to callers.
const schemaSQL = `
-- Court decisions with stable public string ids
CREATE TABLE IF NOT EXISTS decisions (
    doc_id INTEGER PRIMARY KEY,
    id TEXT NOT NULL UNIQUE,
    source_id TEXT,
    source_name TEXT,
    level TEXT NOT NULL DEFAULT 'federal',
    canton TEXT,
    court TEXT,
    chamber TEXT,
    language TEXT,
    docket TEXT,
    decision_date TEXT,
    title TEXT,
    url TEXT,
    pdf_url TEXT,
    content_text TEXT NOT NULL,
    content_hash TEXT NOT NULL,
    indexed_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_decisions_docket ON decisions(docket);
CREATE INDEX IF NOT EXISTS idx_decisions_decision_date ON decisions(decision_date);
CREATE INDEX IF NOT EXISTS idx_decisions_canton ON decisions(canton);
CREATE INDEX IF NOT EXISTS idx_decisions_language ON decisions(language);
CREATE INDEX IF NOT EXISTS idx_decisions_level ON decisions(level);

-- Full-text search via FTS5
CREATE VIRTUAL TABLE IF NOT EXISTS decisions_fts USING fts5(
    title,
    docket,
    content_text,
    content='decisions',
    content_rowid='doc_id',
    tokenize='unicode61'
);

-- FTS triggers to keep index in sync
CREATE TRIGGER IF NOT EXISTS decisions_ai AFTER INSERT ON decisions BEGIN
    INSERT INTO decisions_fts(rowid, title, docket, content_text)
    VALUES (new.doc_id, new.title, new.docket, new.content_text);
END;
CREATE TRIGGER IF NOT EXISTS decisions_ad AFTER DELETE ON decisions BEGIN
    INSERT INTO decisions_fts(decisions_fts, rowid, title, docket, content_text)
    VALUES ('delete', old.doc_id, old.title, old.docket, old.content_text);
END;
CREATE TRIGGER IF NOT EXISTS decisions_au AFTER UPDATE ON decisions BEGIN
    INSERT INTO decisions_fts(decisions_fts, rowid, title, docket, content_text)
    VALUES ('delete', old.doc_id, old.title, old.docket, old.content_text);
    INSERT INTO decisions_fts(rowid, title, docket, content_text)
    VALUES (new.doc_id, new.title, new.docket, new.content_text);
END;

-- Citation relationships extracted from decision text. cited_id stays
-- NULL until the reference resolves to a stored decision.
CREATE TABLE IF NOT EXISTS citations (
    id INTEGER PRIMARY KEY,
    citing_id TEXT NOT NULL REFERENCES decisions(id) ON DELETE CASCADE,
    cited_id TEXT REFERENCES decisions(id) ON DELETE SET NULL,
    reference TEXT NOT NULL,
    kind TEXT NOT NULL,
    UNIQUE(citing_id, reference)
);

CREATE INDEX IF NOT EXISTS idx_citations_cited ON citations(cited_id);
CREATE INDEX IF NOT EXISTS idx_citations_reference ON citations(reference);

-- Schema version bookkeeping for migrations
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    description TEXT,
    applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

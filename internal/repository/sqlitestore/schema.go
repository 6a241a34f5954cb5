package sqlitestore

// schema is idempotent and applied on every Open. audit_log.staff_id has no
// foreign key so deleting a staff account never touches the audit trail.
const schema = `
CREATE TABLE IF NOT EXISTS staff (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    username      TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('Staff', 'Manager')),
    created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS customers (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    name              TEXT NOT NULL,
    phone             TEXT NOT NULL DEFAULT '',
    email             TEXT NOT NULL DEFAULT '',
    preferred_contact TEXT NOT NULL,
    vulnerable        INTEGER NOT NULL DEFAULT 0,
    created_at        TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tickets (
    id                INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id       INTEGER NOT NULL REFERENCES customers(id),
    category          TEXT NOT NULL,
    description       TEXT NOT NULL,
    urgency           TEXT NOT NULL,
    status            TEXT NOT NULL,
    created_at        TEXT NOT NULL,
    closed_at         TEXT,
    assigned_staff_id INTEGER REFERENCES staff(id),
    resolution        TEXT,
    CHECK ((status = 'Closed') = (closed_at IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS tickets_customer_idx ON tickets (customer_id);
CREATE INDEX IF NOT EXISTS tickets_assignee_idx ON tickets (assigned_staff_id);
CREATE INDEX IF NOT EXISTS tickets_status_idx ON tickets (status);

CREATE TABLE IF NOT EXISTS appointments (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    customer_id      INTEGER NOT NULL REFERENCES customers(id),
    staff_id         INTEGER NOT NULL REFERENCES staff(id),
    start_at         TEXT NOT NULL,
    duration_minutes INTEGER NOT NULL CHECK (duration_minutes > 0),
    reason           TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS appointments_staff_start_idx ON appointments (staff_id, start_at);
CREATE INDEX IF NOT EXISTS appointments_customer_idx ON appointments (customer_id);

CREATE TABLE IF NOT EXISTS audit_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    staff_id   INTEGER NOT NULL,
    action     TEXT NOT NULL,
    detail     TEXT NOT NULL DEFAULT '',
    created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS audit_log_staff_idx ON audit_log (staff_id, created_at);
`

package auth

// Schema is the SQL schema for the local auth.db database: a user/
// credential table plus a single-row table holding the signed-in
// identity under a fixed key.
const Schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    email         TEXT NOT NULL UNIQUE,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS session (
    key     TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE
);
`

// sessionKey is the fixed key the current identity lives under.
const sessionKey = "current_user"

package store

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id          TEXT PRIMARY KEY,
	user_email  TEXT NOT NULL,
	title       TEXT NOT NULL,
	description TEXT,
	priority    TEXT NOT NULL,
	status      TEXT NOT NULL,
	project     TEXT,
	due_date    TEXT,
	time_spent  INTEGER NOT NULL DEFAULT 0,
	created_at  TIMESTAMP,
	updated_at  TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tasks_user ON tasks(user_email);

CREATE TABLE IF NOT EXISTS user_kv (
	user_email TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMP,
	PRIMARY KEY (user_email, key)
);

CREATE TABLE IF NOT EXISTS focus_days (
	user_email TEXT NOT NULL,
	day        TEXT NOT NULL,
	minutes    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (user_email, day)
);

CREATE TABLE IF NOT EXISTS focus_sessions (
	id           TEXT PRIMARY KEY,
	user_email   TEXT NOT NULL,
	session_type TEXT NOT NULL,
	duration_min INTEGER NOT NULL,
	completed    INTEGER NOT NULL DEFAULT 0,
	created_at   TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_focus_sessions_user ON focus_sessions(user_email, created_at);

CREATE TABLE IF NOT EXISTS notifications (
	id         TEXT PRIMARY KEY,
	user_email TEXT NOT NULL,
	kind       TEXT NOT NULL,
	title      TEXT NOT NULL,
	message    TEXT NOT NULL,
	icon       TEXT,
	read       INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_email, created_at);

CREATE TABLE IF NOT EXISTS workspaces (
	code       TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_by TEXT NOT NULL,
	created_at TIMESTAMP
);

CREATE TABLE IF NOT EXISTS workspace_members (
	workspace_code TEXT NOT NULL,
	user_email     TEXT NOT NULL,
	name           TEXT,
	role           TEXT NOT NULL DEFAULT 'member',
	joined_at      TIMESTAMP,
	PRIMARY KEY (workspace_code, user_email),
	FOREIGN KEY (workspace_code) REFERENCES workspaces(code)
);

CREATE TABLE IF NOT EXISTS messages (
	id             TEXT PRIMARY KEY,
	workspace_code TEXT NOT NULL,
	sender         TEXT NOT NULL,
	sender_name    TEXT,
	body           TEXT NOT NULL,
	msg_type       TEXT NOT NULL DEFAULT 'text',
	created_at     TIMESTAMP,
	FOREIGN KEY (workspace_code) REFERENCES workspaces(code)
);

CREATE INDEX IF NOT EXISTS idx_messages_workspace ON messages(workspace_code, created_at);
`

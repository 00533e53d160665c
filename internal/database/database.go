package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Database struct {
	db *sql.DB
}

var globalDB *Database

// Initialize opens the SQLite database and creates the schema.
func Initialize(dbPath string) error {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=NORMAL"); err != nil {
		return fmt.Errorf("failed to set synchronous mode: %w", err)
	}

	globalDB = &Database{db: db}

	if err := globalDB.createTables(); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// GetDB returns the global database instance, or nil before Initialize.
func GetDB() *Database {
	return globalDB
}

// IsConnected checks if the database connection is alive.
func IsConnected() bool {
	if globalDB == nil || globalDB.db == nil {
		return false
	}
	return globalDB.db.Ping() == nil
}

func Close() error {
	if globalDB != nil && globalDB.db != nil {
		return globalDB.db.Close()
	}
	return nil
}

func (d *Database) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS incidents (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		action TEXT NOT NULL,
		verdict TEXT NOT NULL,
		action_taken TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_incidents_guild ON incidents(guild_id);
	CREATE INDEX IF NOT EXISTS idx_incidents_timestamp ON incidents(timestamp);

	CREATE TABLE IF NOT EXISTS banned_users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		guild_id TEXT NOT NULL,
		user_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		banned_at INTEGER NOT NULL,
		UNIQUE(guild_id, user_id)
	);

	CREATE INDEX IF NOT EXISTS idx_banned_users_guild ON banned_users(guild_id);
	`

	_, err := d.db.Exec(schema)
	return err
}

// LogIncident records a processed escalation.
func (d *Database) LogIncident(incident *Incident) error {
	incident.Timestamp = time.Now().Unix()

	_, err := d.db.Exec(
		`INSERT INTO incidents (guild_id, actor_id, action, verdict, action_taken, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		incident.GuildID, incident.ActorID, incident.Action, incident.Verdict, incident.ActionTaken, incident.Timestamp,
	)
	return err
}

// RecentIncidents returns the latest incidents for a guild.
func (d *Database) RecentIncidents(guildID string, limit int) ([]*Incident, error) {
	rows, err := d.db.Query(
		`SELECT id, guild_id, actor_id, action, verdict, action_taken, timestamp
		 FROM incidents WHERE guild_id = ? ORDER BY timestamp DESC LIMIT ?`,
		guildID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var incidents []*Incident
	for rows.Next() {
		var inc Incident
		if err := rows.Scan(&inc.ID, &inc.GuildID, &inc.ActorID, &inc.Action, &inc.Verdict, &inc.ActionTaken, &inc.Timestamp); err != nil {
			return nil, err
		}
		incidents = append(incidents, &inc)
	}

	return incidents, rows.Err()
}

// AddBannedUser records an engine-issued ban.
func (d *Database) AddBannedUser(guildID, userID, reason string) error {
	_, err := d.db.Exec(
		`INSERT OR REPLACE INTO banned_users (guild_id, user_id, reason, banned_at)
		 VALUES (?, ?, ?, ?)`,
		guildID, userID, reason, time.Now().Unix(),
	)
	return err
}

// IsBannedUser checks whether the engine banned this user.
func (d *Database) IsBannedUser(guildID, userID string) bool {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM banned_users WHERE guild_id = ? AND user_id = ?`,
		guildID, userID,
	).Scan(&count)
	return err == nil && count > 0
}

// RemoveBannedUser clears a ban record, typically after a benign rejoin.
func (d *Database) RemoveBannedUser(guildID, userID string) error {
	_, err := d.db.Exec(
		`DELETE FROM banned_users WHERE guild_id = ? AND user_id = ?`,
		guildID, userID,
	)
	return err
}

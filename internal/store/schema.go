package store

const Schema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	display_name TEXT,
	profile_pic_url TEXT,
	spotify_refresh_token TEXT,
	spotify_access_token TEXT,
	spotify_token_expires DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Shared service-level upstream credential (client-credentials grant).
-- Single row, separate from any user.
CREATE TABLE IF NOT EXISTS service_credential (
	id INTEGER PRIMARY KEY CHECK (id = 1),
	access_token TEXT NOT NULL,
	expires_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS artists (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spotify_id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	image_url_640px TEXT,
	image_url_320px TEXT,
	image_url_160px TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS albums (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spotify_id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	album_type TEXT NOT NULL DEFAULT 'album',
	total_tracks INTEGER NOT NULL DEFAULT 0,
	release_date TEXT NOT NULL DEFAULT '',
	image_url_640px TEXT,
	image_url_300px TEXT,
	image_url_64px TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	spotify_id TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	disc_number INTEGER NOT NULL DEFAULT 1,
	track_order INTEGER NOT NULL DEFAULT 0,
	duration_ms INTEGER NOT NULL DEFAULT 0,
	explicit BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- One row per (artist, spotify_id) pair ever resolved. album_id/track_id
-- are null at coarser resolution granularities.
CREATE TABLE IF NOT EXISTS artist_album_tracks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist_id INTEGER NOT NULL REFERENCES artists(id),
	album_id INTEGER REFERENCES albums(id),
	track_id INTEGER REFERENCES tracks(id),
	spotify_id TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (artist_id, spotify_id)
);

CREATE INDEX IF NOT EXISTS idx_linkage_spotify_id ON artist_album_tracks(spotify_id);

CREATE TABLE IF NOT EXISTS catalogs (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	name TEXT NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	is_private BOOLEAN NOT NULL DEFAULT 0,
	image_url TEXT,
	upvotes INTEGER NOT NULL DEFAULT 0,
	downvotes INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_catalogs_user_id ON catalogs(user_id);

CREATE TABLE IF NOT EXISTS catalog_items (
	id TEXT PRIMARY KEY,
	catalog_id TEXT NOT NULL REFERENCES catalogs(id) ON DELETE CASCADE,
	spotify_id TEXT NOT NULL,
	spotify_artist_id TEXT NOT NULL,
	position INTEGER NOT NULL DEFAULT 0,
	comment TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (catalog_id, spotify_id)
);

CREATE INDEX IF NOT EXISTS idx_catalog_items_artist ON catalog_items(spotify_artist_id);

CREATE TABLE IF NOT EXISTS reviews (
	id TEXT PRIMARY KEY,
	user_id INTEGER NOT NULL REFERENCES users(id),
	spotify_id TEXT NOT NULL,
	spotify_artist_id TEXT NOT NULL,
	rating INTEGER NOT NULL,
	comment TEXT NOT NULL DEFAULT '',
	is_private BOOLEAN NOT NULL DEFAULT 0,
	upvotes INTEGER NOT NULL DEFAULT 0,
	downvotes INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	UNIQUE (user_id, spotify_id)
);

CREATE INDEX IF NOT EXISTS idx_reviews_artist ON reviews(spotify_artist_id);

CREATE TABLE IF NOT EXISTS cache (
	key TEXT PRIMARY KEY,
	data BLOB,
	expires_at DATETIME
);
`

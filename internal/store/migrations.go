package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Users table - profiles, preferences and aggregate stats
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_active DATETIME DEFAULT CURRENT_TIMESTAMP,
			break_interval INTEGER NOT NULL DEFAULT 45,
			stretch_goal_daily INTEGER NOT NULL DEFAULT 5,
			notifications_enabled INTEGER NOT NULL DEFAULT 1,
			fitness_level TEXT NOT NULL DEFAULT 'beginner',
			pain_points TEXT NOT NULL DEFAULT '[]',
			total_breaks_taken INTEGER NOT NULL DEFAULT 0,
			total_stretches_completed INTEGER NOT NULL DEFAULT 0,
			total_points INTEGER NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			pet_name TEXT NOT NULL DEFAULT 'Buddy'
		)`,

		// Activities table - typed log of everything the user does
		`CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			activity_type TEXT NOT NULL CHECK(activity_type IN ('break', 'stretch', 'chat', 'mood_check')),
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			duration INTEGER,
			points_earned INTEGER NOT NULL DEFAULT 0,
			stretch_name TEXT,
			form_verified INTEGER NOT NULL DEFAULT 0,
			mood_rating INTEGER,
			stress_level INTEGER,
			chat_summary TEXT
		)`,

		// Pets table - one virtual pet per user
		`CREATE TABLE IF NOT EXISTS pets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL DEFAULT 'Buddy',
			personality TEXT NOT NULL DEFAULT 'encouraging_coach',
			health REAL NOT NULL DEFAULT 100,
			happiness REAL NOT NULL DEFAULT 100,
			level INTEGER NOT NULL DEFAULT 1,
			experience INTEGER NOT NULL DEFAULT 0,
			evolution_stage TEXT NOT NULL DEFAULT 'egg',
			days_active INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_fed DATETIME DEFAULT CURRENT_TIMESTAMP,
			last_interaction DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Achievement definitions, seeded from the embedded JSON
		`CREATE TABLE IF NOT EXISTS achievements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			achievement_key TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			description TEXT NOT NULL,
			icon TEXT NOT NULL DEFAULT '🏆',
			points_reward INTEGER NOT NULL DEFAULT 0,
			requirement_type TEXT NOT NULL CHECK(requirement_type IN ('streak', 'total_count')),
			requirement_category TEXT,
			requirement_value INTEGER NOT NULL,
			tier TEXT NOT NULL DEFAULT 'bronze'
		)`,

		// Which achievements each user has unlocked
		`CREATE TABLE IF NOT EXISTS user_achievements (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			achievement_id INTEGER NOT NULL REFERENCES achievements(id) ON DELETE CASCADE,
			unlocked_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			viewed INTEGER NOT NULL DEFAULT 0,
			UNIQUE(user_id, achievement_id)
		)`,

		// Chat transcript with the AI companion
		`CREATE TABLE IF NOT EXISTS conversation_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			role TEXT NOT NULL CHECK(role IN ('user', 'assistant')),
			content TEXT NOT NULL,
			session_id TEXT
		)`,

		// Completed stretch form analysis sessions
		`CREATE TABLE IF NOT EXISTS form_sessions (
			id TEXT PRIMARY KEY,
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			stretch_id TEXT NOT NULL,
			stretch_name TEXT NOT NULL,
			category TEXT NOT NULL,
			frames_analyzed INTEGER NOT NULL,
			good_form_frames INTEGER NOT NULL,
			accuracy REAL NOT NULL,
			bonus_tier TEXT NOT NULL,
			completed_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,

		// Indexes for better query performance
		`CREATE INDEX IF NOT EXISTS idx_activities_user_id ON activities(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_activities_user_type ON activities(user_id, activity_type)`,
		`CREATE INDEX IF NOT EXISTS idx_conversation_history_user_id ON conversation_history(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_user_achievements_user_id ON user_achievements(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_form_sessions_user_id ON form_sessions(user_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

package migration

import "time"

// Legacy documents as stored by the previous bot in MongoDB. Snowflakes were
// stored as int64, case types as uppercase strings.

type MongoCase struct {
	CaseNumber  int32      `bson:"case_number"`
	GuildID     int64      `bson:"guild_id"`
	CaseType    string     `bson:"case_type"`
	UserID      int64      `bson:"case_user_id"`
	ModeratorID int64      `bson:"case_moderator_id"`
	Reason      string     `bson:"case_reason"`
	Status      bool       `bson:"case_status"`
	ExpiresAt   *time.Time `bson:"case_expires_at"`
	CreatedAt   time.Time  `bson:"case_created_at"`
}

type MongoLevel struct {
	MemberID    int64     `bson:"member_id"`
	GuildID     int64     `bson:"guild_id"`
	XP          float64   `bson:"xp"`
	Level       int64     `bson:"level"`
	Blacklisted bool      `bson:"blacklisted"`
	LastMessage time.Time `bson:"last_message"`
}

type MongoAFK struct {
	MemberID  int64      `bson:"member_id"`
	GuildID   int64      `bson:"guild_id"`
	Nickname  string     `bson:"nickname"`
	Reason    string     `bson:"reason"`
	Since     time.Time  `bson:"since"`
	Until     *time.Time `bson:"until"`
	Permanent bool       `bson:"perm_afk"`
}

type MongoSnippet struct {
	Name      string    `bson:"snippet_name"`
	Content   string    `bson:"snippet_content"`
	GuildID   int64     `bson:"guild_id"`
	CreatorID int64     `bson:"snippet_user_id"`
	Uses      int64     `bson:"uses"`
	Locked    bool      `bson:"locked"`
	CreatedAt time.Time `bson:"snippet_created_at"`
}

type TableStats struct {
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Skipped    int `json:"skipped"`
	Errors     int `json:"errors"`
}

type MigrationStats struct {
	Tables    map[string]*TableStats `json:"tables"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
}

func (s *MigrationStats) table(name string) *TableStats {
	if s.Tables == nil {
		s.Tables = make(map[string]*TableStats)
	}
	if _, ok := s.Tables[name]; !ok {
		s.Tables[name] = &TableStats{}
	}
	return s.Tables[name]
}

package core

import "time"

// User represents a registered account
//
// Rows live in localuser (credentials) and userinfo (profile)
type User struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Credentials is the stored proof for a username
type Credentials struct {
	UserID       int64
	Username     string
	Email        string
	PasswordHash string `json:"-"` // Never expose in JSON
	Enabled      bool
}

// Identity is what a valid session token resolves to
type Identity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Session represents an active login session
type Session struct {
	UserID    int64     `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	ExpiresAt time.Time `json:"expiresAt"`
}

// SessionData combines the session row with the identity it belongs to
type SessionData struct {
	Identity *Identity `json:"identity"`
	Session  *Session  `json:"session"`
}

// IssuedSession is returned once, at login. Token is the raw value for the cookie.
type IssuedSession struct {
	Session *Session `json:"session"`
	Token   string   `json:"token"`
}

// Subject is static reference data: one exam for a level and board
type Subject struct {
	ID       int64     `json:"id"`
	Level    string    `json:"level"`
	Board    string    `json:"board"`
	Name     string    `json:"subject"`
	ExamCode string    `json:"examcode"`
	ExamDate time.Time `json:"examdate"`
}

// Topic is static reference data, many-to-one with Subject
type Topic struct {
	ID        int64  `json:"id"`
	SubjectID int64  `json:"subjectId"`
	Name      string `json:"topic"`
	Size      string `json:"size"`
	Hours     int    `json:"hours"`
}

// SubjectSeed is one subject with its topics, as read from a catalog file
type SubjectSeed struct {
	Subject Subject
	Topics  []Topic
}

// ImportStats reports what a catalog import touched
type ImportStats struct {
	Subjects int `json:"subjects"`
	Topics   int `json:"topics"`
}

// PlanRow is one student_topics row before insert
type PlanRow struct {
	StudentID int64
	Level     string
	Subject   string // topic name
	ExamBoard string
	ExamCode  string
	ExamDate  time.Time
}

// PlanItem is a persisted plan row as displayed, with hours joined by topic name
type PlanItem struct {
	ID      int64      `json:"id"`
	Date    time.Time  `json:"date"`
	Subject string     `json:"subject"`
	Hours   int        `json:"hours"`
	Status  PlanStatus `json:"status"`
}

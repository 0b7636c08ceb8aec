package storage

import "time"

type OutboxRecord struct {
	ID            string
	Kind          string
	Payload       []byte
	Attempts      int
	NextAttemptAt time.Time
	LastError     string
	CreatedAt     time.Time
}

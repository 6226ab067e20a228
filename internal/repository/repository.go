package repository

import "midnight_match/internal/storage"

type Repositories struct {
	User    UserRepository
	Session SessionRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Session: NewSessionRepository(db),
	}
}

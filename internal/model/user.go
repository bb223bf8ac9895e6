package model

import "time"

// User represents an application user record as stored in the
// `users` table.  The password hash never leaves the repository layer in
// responses; handlers build their own response types.
//
// Fields:
//
//	ID           – primary key identifier of the user.
//	Email        – unique email address.
//	PasswordHash – bcrypt hashed password.
//	CreatedAt    – timestamp of creation.
//	UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Session models an entry in the `sessions` table.  A bearer token is only
// accepted while a session row holding it exists for the token's subject.
type Session struct {
	ID        uint64    // sessions.id
	UserID    uint64    // sessions.user_id
	Token     string    // sessions.token
	CreatedAt time.Time // sessions.created_at
}

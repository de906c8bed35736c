// Package queue defines message payloads exchanged over the message broker.
package queue

// UserRegisteredEvent is published when a new account has been created.
// Downstream consumers (welcome mail, analytics) get enough to act without
// querying the primary database.
type UserRegisteredEvent struct {
    UserID       uint64 `json:"user_id"`
    Username     string `json:"username"`
    Email        string `json:"email"`
    RegisteredAt string `json:"registered_at"`
}

// PasswordChangedEvent is published after a successful password reset.  It
// deliberately carries no credential material.
type PasswordChangedEvent struct {
    UserID    uint64 `json:"user_id"`
    ChangedAt string `json:"changed_at"`
}

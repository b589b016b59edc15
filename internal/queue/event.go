// Package queue defines message payloads exchanged over the message
// broker and the background consumer that records them.
package queue

// UserRegisteredEvent is published when a new account signs up. It
// carries everything the approval workflow needs so downstream
// consumers never have to query the primary database.
type UserRegisteredEvent struct {
	UserID       uint64 `json:"user_id"`
	Username     string `json:"username"`
	Name         string `json:"name"`
	RegisteredAt string `json:"registered_at"`
}

// RegistrationQueueName is the durable queue the event travels over.
const RegistrationQueueName = "user.registered"

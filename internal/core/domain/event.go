package domain

import "time"

// AuthEventKind labels an entry in the authentication audit trail.
type AuthEventKind string

const (
	EventRegistered     AuthEventKind = "register"
	EventLoginSucceeded AuthEventKind = "login_succeeded"
	EventLoginFailed    AuthEventKind = "login_failed"
)

// AuthEvent records an authentication outcome. Credentials are never part of it.
type AuthEvent struct {
	Kind      AuthEventKind `json:"kind" bson:"kind"`
	UserID    string        `json:"user_id,omitempty" bson:"user_id,omitempty"`
	Email     string        `json:"email" bson:"email"`
	RemoteIP  string        `json:"remote_ip,omitempty" bson:"remote_ip,omitempty"`
	Timestamp time.Time     `json:"timestamp" bson:"timestamp"`
}

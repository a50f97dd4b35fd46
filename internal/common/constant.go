// Package common contains shared constants and sentinel errors used across
// gophdiary components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the token inside the Authorization header.
const BearerPrefix = "Bearer "

// Defaults applied to users and diary entries when the client omits a value.
const (
	DefaultAvatar  = "😊"
	DefaultMood    = "😊"
	DefaultWeather = "☀️"
)

// DateLayout is the canonical calendar-date form used on the wire.
const DateLayout = "2006-01-02"

// Package controller provides the HTTP handlers for authentication, the
// protected index page and the chat endpoint.
package controller

import (
	"context"

	"github.com/ehb/ragchat/database/model"
)

// Authenticator registers users and verifies credentials.
type Authenticator interface {
	Register(ctx context.Context, username, password string) error
	CheckUser(ctx context.Context, username, password string) (*model.User, error)
}

// Chatter answers a single user message.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

// Response messages returned to clients.
const (
	msgInvalidRequest     = "Invalid request"
	msgRegistrationOK     = "Registration successful"
	msgUsernameExists     = "Username already exists"
	msgPasswordTooLong    = "Password is too long"
	msgRegistrationError  = "Error during registration"
	msgLoginOK            = "Login successful"
	msgInvalidCredentials = "Invalid username or password"
	msgLoginError         = "Error during login"
	msgChatError          = "Error during chat"
)

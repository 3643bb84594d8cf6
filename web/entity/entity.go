// Package entity defines the request and response bodies of the web layer.
package entity

// Msg is the body of every JSON response.
type Msg struct {
	Message string `json:"message"`
}

// CredentialsForm is posted to /register and /login.
type CredentialsForm struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// ChatForm is posted to /chat.
type ChatForm struct {
	Message string `json:"message" form:"message"`
}

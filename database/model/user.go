// Package model holds the records persisted in the relational store.
package model

import (
	"fmt"
)

// User is a row of the users table. It is created by registration and never
// updated afterwards.
type User struct {
	Id           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

// UserFromRecord converts a query record with id, username and password_hash
// columns into a User.
func UserFromRecord(rec map[string]any) (*User, error) {
	id, err := toInt64(rec["id"])
	if err != nil {
		return nil, fmt.Errorf("user id: %w", err)
	}
	username, ok := rec["username"].(string)
	if !ok {
		return nil, fmt.Errorf("user username: unexpected type %T", rec["username"])
	}
	hash, ok := rec["password_hash"].(string)
	if !ok {
		return nil, fmt.Errorf("user password_hash: unexpected type %T", rec["password_hash"])
	}
	return &User{Id: id, Username: username, PasswordHash: hash}, nil
}

func toInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int32:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected type %T", v)
	}
}

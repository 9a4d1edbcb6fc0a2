// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and the error kinds shared by the catalog and lending code.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's permission tier.
type Role string

const (
	RoleAdmin  Role = "admin"
	RolePatron Role = "patron"
)

// User is an account that can sign in. Every user is a patron who may
// hold loans; admins additionally manage the catalog.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never serialize the hash
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsAdmin returns true if the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

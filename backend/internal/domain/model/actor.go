package model

import "github.com/Brahim-Amzil/3arida-sub004/backend/internal/domain/enums"

// Actor is an already-authenticated caller.
type Actor struct {
	ID    string
	Name  string
	Email string
	Role  enums.Role
}

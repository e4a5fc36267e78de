package models

import (
	"time"

	"github.com/uptrace/bun"
)

// User is an account as seen by the economy engine. Identity comes from the
// external auth collaborator; the engine only owns the credits balance.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	UserID  string `bun:"user_id,pk"`
	Balance int64  `bun:"balance,notnull,default:0"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

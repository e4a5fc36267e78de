package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Card is a read-only row from the external card catalog. The engine never
// mutates it outside of the admin import path.
type Card struct {
	bun.BaseModel `bun:"table:cards,alias:c"`

	ID    int64    `bun:"id,pk,autoincrement" json:"id"`
	Name  string   `bun:"name,notnull" json:"name"`
	ColID string   `bun:"col_id" json:"col_id"`
	Tags  []string `bun:"tags,type:jsonb" json:"tags"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updated_at"`
}

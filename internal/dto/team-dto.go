package dto

import "github.com/aarondl/null/v8"

type TeamDTO struct {
	ID          uint64         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Members     []ShortUserDTO `json:"members,omitempty"`
	CreatedAt   string         `json:"created_at"`
}

type CreateTeamDTO struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Description string `json:"description" validate:"max=1000"`
}

type UpdateTeamDTO struct {
	Name        null.String `json:"name" validate:"omitempty,min=2,max=255"`
	Description null.String `json:"description" validate:"omitempty,max=1000"`
}

type TeamMemberDTO struct {
	UserID uint64 `json:"user_id" validate:"required"`
}

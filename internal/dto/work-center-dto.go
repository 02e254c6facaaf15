package dto

import "github.com/aarondl/null/v8"

type WorkCenterDTO struct {
	ID        uint64        `json:"id"`
	Name      string        `json:"name"`
	Code      string        `json:"code"`
	Team      *ShortTeamDTO `json:"team,omitempty"`
	CreatedAt string        `json:"created_at"`
}

type CreateWorkCenterDTO struct {
	Name   string      `json:"name" validate:"required,min=2,max=255"`
	Code   string      `json:"code" validate:"required,min=2,max=64"`
	TeamID null.Uint64 `json:"team_id"`
}

type UpdateWorkCenterDTO struct {
	Name   null.String `json:"name" validate:"omitempty,min=2,max=255"`
	Code   null.String `json:"code" validate:"omitempty,min=2,max=64"`
	TeamID null.Uint64 `json:"team_id"`
}

package handler

import "credvault/internal/access/models"

type ListResponse struct {
	Requests []*models.Request `json:"requests"`
}

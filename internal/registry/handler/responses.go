package handler

import "credvault/internal/registry/models"

type ListResponse struct {
	Certificates []*models.CertificateView `json:"certificates"`
}

type SummaryListResponse struct {
	Certificates []*models.Summary `json:"certificates"`
}

type RevokeResponse struct {
	CertificateID string        `json:"certificate_id"`
	Status        models.Status `json:"status"`
}

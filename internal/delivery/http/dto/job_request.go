package dto

import "talent-track/internal/domain/job"

type JobRequest struct {
	Title       string          `json:"title"`
	Department  string          `json:"department"`
	Location    string          `json:"location"`
	Status      string          `json:"status"`
	Requirement job.Requirement `json:"requirement"`
	Mandatory   []string        `json:"mandatory"`
}

type JobStatusRequest struct {
	Status string `json:"status"`
}

package dto

type AutoSelectRequest struct {
	Threshold *int   `json:"threshold"`
	Actor     string `json:"actor"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Store     string `json:"store"`
	Threshold int    `json:"threshold"`
}

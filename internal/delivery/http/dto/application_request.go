package dto

type StatusChangeRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
	Actor  string `json:"actor"`
}

type NoteRequest struct {
	Author string `json:"author"`
	Text   string `json:"text"`
}

type InterviewRequest struct {
	Rating int    `json:"rating"`
	Actor  string `json:"actor"`
}

type ValidationFailureResponse struct {
	Failures []string `json:"failures"`
}

package api

import "time"

type ExternalStatus string

const (
	StatusError ExternalStatus = "Error"
	StatusOK    ExternalStatus = "OK"
)

type ErrorResponse struct {
	Id     string         `json:"id,omitempty" example:"nature.pdf"`
	Status ExternalStatus `json:"status" example:"Error"`
	Error  *OutgoingError `json:"error"`
}

type OutgoingError struct {
	Code    int    `json:"code" example:"400"`
	Kind    string `json:"kind,omitempty" example:"VALIDATION_ERROR"`
	Message string `json:"message" example:"question must not be empty"`
	Retry   bool   `json:"can_retry" example:"false"`
}

type Source struct {
	Document string `json:"document" example:"nature.pdf"`
	Page     int    `json:"page" example:"1"`
}

type ChatResponse struct {
	Question string   `json:"question" example:"What color is the sky?"`
	Answer   string   `json:"answer" example:"The sky is blue."`
	Sources  []Source `json:"sources"`
}

type HistoryResponse struct {
	Turns []TurnResponse `json:"turns"`
}

type TurnResponse struct {
	Question string    `json:"question"`
	Answer   string    `json:"answer"`
	Sources  []Source  `json:"sources"`
	AskedAt  time.Time `json:"asked_at"`
}

type DocumentResponse struct {
	Id         string    `json:"id" example:"nature.pdf"`
	Title      string    `json:"title" example:"Nature Report 2021"`
	Summary    string    `json:"summary"`
	Type       string    `json:"type" example:"PDF"`
	Pages      int       `json:"pages" example:"2"`
	Chunks     int       `json:"chunks" example:"2"`
	IngestedAt time.Time `json:"ingested_at"`
}

type DocumentListResponse struct {
	Documents []DocumentResponse `json:"documents"`
}

type IngestResponse struct {
	Status   ExternalStatus   `json:"status" example:"OK"`
	Document DocumentResponse `json:"document"`
}

type MessageResponse struct {
	Status  ExternalStatus `json:"status" example:"OK"`
	Message string         `json:"message" example:"conversation history cleared"`
}

type HealthResponse struct {
	Status        ExternalStatus `json:"status" example:"OK"`
	State         string         `json:"state" example:"idle"`
	Documents     int            `json:"documents" example:"3"`
	IndexedChunks int            `json:"indexed_chunks" example:"120"`
	HistoryTurns  int            `json:"history_turns" example:"4"`
	IndexError    string         `json:"index_error,omitempty"`
}

// requests---------------------

type ChatRequest struct {
	Message string `json:"message" validate:"required" example:"What color is the sky?"`
}

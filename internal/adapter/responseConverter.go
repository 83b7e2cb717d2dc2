package adapter

import (
	"github.com/akolanti/docqa/internal/api"
	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/domain/ragErrors"
	"github.com/akolanti/docqa/internal/rag"
)

func ToSources(citations []commonModels.Citation) []api.Source {
	sources := make([]api.Source, 0, len(citations))
	for _, c := range citations {
		sources = append(sources, api.Source{Document: c.DocId, Page: c.PageNum})
	}
	return sources
}

func ToChatResponse(question string, answer commonModels.Answer) api.ChatResponse {
	return api.ChatResponse{
		Question: question,
		Answer:   answer.Text,
		Sources:  ToSources(answer.Sources),
	}
}

func ToHistoryResponse(turns []commonModels.Turn) api.HistoryResponse {
	out := api.HistoryResponse{Turns: make([]api.TurnResponse, 0, len(turns))}
	for _, t := range turns {
		out.Turns = append(out.Turns, api.TurnResponse{
			Question: t.Question,
			Answer:   t.Answer,
			Sources:  ToSources(t.Sources),
			AskedAt:  t.AskedAt,
		})
	}
	return out
}

func ToDocumentResponse(doc commonModels.Document) api.DocumentResponse {
	return api.DocumentResponse{
		Id:         doc.Id,
		Title:      doc.Title,
		Summary:    doc.Summary,
		Type:       string(doc.ContentType),
		Pages:      doc.PageCount,
		Chunks:     doc.ChunkCount,
		IngestedAt: doc.LastIngestTimestamp,
	}
}

func ToDocumentListResponse(docs []commonModels.Document) api.DocumentListResponse {
	out := api.DocumentListResponse{Documents: make([]api.DocumentResponse, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, ToDocumentResponse(d))
	}
	return out
}

func ToIngestResponse(res rag.IngestResult) api.IngestResponse {
	return api.IngestResponse{
		Status:   api.StatusOK,
		Document: ToDocumentResponse(res.Document),
	}
}

func ToHealthResponse(st rag.Status) api.HealthResponse {
	status := api.StatusOK
	if st.IndexError != "" {
		status = api.StatusError
	}
	return api.HealthResponse{
		Status:        status,
		State:         string(st.State),
		Documents:     st.Documents,
		IndexedChunks: st.IndexedChunks,
		HistoryTurns:  st.HistoryTurns,
		IndexError:    st.IndexError,
	}
}

func Message(message string) api.MessageResponse {
	return api.MessageResponse{Status: api.StatusOK, Message: message}
}

func BadRequest(id string, error string, code int) api.ErrorResponse {
	return api.ErrorResponse{
		Id:     id,
		Status: api.StatusError,
		Error: &api.OutgoingError{
			Code:    code,
			Message: error,
			Retry:   false,
		},
	}
}

// FromError is BadRequest for pipeline errors. Generation failures are worth resending.
func FromError(id string, err error, code int) api.ErrorResponse {
	res := BadRequest(id, err.Error(), code)
	kind := ragErrors.KindOf(err)
	res.Error.Kind = string(kind)
	res.Error.Retry = kind == ragErrors.KindGeneration
	return res
}

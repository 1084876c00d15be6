package dto

// AskDocumentRequest payload for document-grounded questions.
type AskDocumentRequest struct {
	Question string `json:"pergunta"`
	UserID   *int64 `json:"usuarioId,omitempty"`
}

// ChatAssistantRequest payload for the interactive chat flow.
type ChatAssistantRequest struct {
	UserID  int64  `json:"usuarioId"`
	Message string `json:"mensagem"`
}

// CategorizeRequest payload.
type CategorizeRequest struct {
	Subject string `json:"assunto,omitempty"`
	Reason  string `json:"motivo"`
}

// SuggestFAQRequest payload.
type SuggestFAQRequest struct {
	Description string `json:"descricao"`
}

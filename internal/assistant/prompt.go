package assistant

import (
	"fmt"
	"strings"
)

// UserContext carries the caller details appended to a prompt so replies
// can address the user by name and role.
type UserContext struct {
	Name               string
	Email              string
	Role               string
	RecentInteractions []string
}

// BuildDocumentPrompt assembles the system prompt for a question grounded
// on the procedures document. When the document could not be fetched the
// assistant falls back to an unanchored prompt that nudges escalation.
func BuildDocumentPrompt(document string, userCtx *UserContext) string {
	var b strings.Builder

	if strings.TrimSpace(document) != "" {
		b.WriteString("Você é o assistente virtual HelpFast. Utilize o documento abaixo como fonte de verdade para responder à pergunta do usuário.\n\n")
		b.WriteString("### Documento de Referência\n")
		b.WriteString(document)
		b.WriteString("\n\n")
		b.WriteString("Responda em português, de maneira objetiva e cite trechos relevantes do documento quando necessário. Caso a resposta não esteja presente, informe que não encontrou a informação.\n")
	} else {
		b.WriteString("Você é o assistente virtual HelpFast. Responda em português de forma objetiva e cordial.\n")
		b.WriteString("Se tiver informações insuficientes para uma resposta definitiva, informe que vai encaminhar para suporte humano.\n")
	}

	appendUserContext(&b, userCtx)
	return b.String()
}

// BuildChatPrompt assembles the system prompt for the interactive chat flow,
// anchored on the verification procedures document.
func BuildChatPrompt(procedures string, userCtx *UserContext) string {
	var b strings.Builder

	b.WriteString("Você é o assistente virtual HelpFast. Utilize as orientações abaixo para responder aos usuários.\n\n")
	b.WriteString("### Procedimentos de Verificação\n")
	b.WriteString(procedures)
	b.WriteString("\n\n")
	b.WriteString("### Contexto do Usuário\n")
	appendUserContext(&b, userCtx)
	b.WriteString("\n")
	b.WriteString("Responda de forma objetiva, cordial e baseada nas orientações apresentadas. Caso a dúvida não esteja coberta, informe que vai encaminhar para suporte humano.\n")

	return b.String()
}

func appendUserContext(b *strings.Builder, userCtx *UserContext) {
	if userCtx == nil {
		return
	}
	if userCtx.Name != "" {
		fmt.Fprintf(b, "- Nome: %s\n", userCtx.Name)
	}
	if userCtx.Email != "" {
		fmt.Fprintf(b, "- E-mail: %s\n", userCtx.Email)
	}
	if userCtx.Role != "" {
		fmt.Fprintf(b, "- Tipo de usuário: %s\n", userCtx.Role)
	}
	if len(userCtx.RecentInteractions) > 0 {
		b.WriteString("- Interações recentes:\n")
		for i, item := range userCtx.RecentInteractions {
			fmt.Fprintf(b, "  %d. %s\n", i+1, item)
		}
	}
}

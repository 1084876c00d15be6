package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildDocumentPrompt(t *testing.T) {
	t.Run("grounded prompt embeds the document", func(t *testing.T) {
		prompt := BuildDocumentPrompt("Passo 1: reinicie o roteador.", nil)

		assert.Contains(t, prompt, "### Documento de Referência")
		assert.Contains(t, prompt, "Passo 1: reinicie o roteador.")
		assert.Contains(t, prompt, "fonte de verdade")
	})

	t.Run("blank document falls back to the unanchored prompt", func(t *testing.T) {
		prompt := BuildDocumentPrompt("   ", nil)

		assert.NotContains(t, prompt, "### Documento de Referência")
		assert.Contains(t, prompt, "encaminhar para suporte humano")
	})

	t.Run("user context lines are appended when present", func(t *testing.T) {
		prompt := BuildDocumentPrompt("doc", &UserContext{
			Name:  "Ana",
			Email: "ana@example.com",
			Role:  "Client",
		})

		assert.Contains(t, prompt, "- Nome: Ana")
		assert.Contains(t, prompt, "- E-mail: ana@example.com")
		assert.Contains(t, prompt, "- Tipo de usuário: Client")
	})
}

func TestBuildChatPrompt(t *testing.T) {
	prompt := BuildChatPrompt("Verifique o cadastro antes de responder.", &UserContext{
		Name:               "Bruno",
		RecentInteractions: []string{"perguntou sobre senha"},
	})

	assert.Contains(t, prompt, "### Procedimentos de Verificação")
	assert.Contains(t, prompt, "Verifique o cadastro antes de responder.")
	assert.Contains(t, prompt, "### Contexto do Usuário")
	assert.Contains(t, prompt, "- Nome: Bruno")
	assert.Contains(t, prompt, "1. perguntou sobre senha")
}

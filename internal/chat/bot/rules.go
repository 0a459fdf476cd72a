package bot

import (
	"fmt"
	"strings"

	"github.com/torcida/fanhub/internal/storage"
)

const (
	fallbackReply       = "Não entendi direito, mas tô aqui pra ajudar! 😄 Pode mandar sua dúvida de novo ou perguntar algo diferente!"
	invalidMessageReply = "Mensagem inválida. Por favor, envie uma mensagem válida!"
	lookupFallbackReply = "Não consegui acessar seu perfil agora. Tenta de novo daqui a pouco!"
)

// defaultRules builds the ordered rule table.
//
// Command rules come first so the generic "pontos"/"perfil"/"ajuda" keywords
// cannot shadow them under substring matching. Within the generic section the
// ordering is significant too: greetings win over the game keywords, and the
// bare "?" catch-all sits near the end.
func defaultRules() []rule {
	return []rule{
		{
			triggers: []string{"/pontos"},
			response: computedResponse(func(principal storage.Principal) string {
				return fmt.Sprintf("Você tem %d pontos! Continue participando para ganhar mais!", principal.Points)
			}),
		},
		{
			triggers: []string{"/perfil"},
			response: computedResponse(func(principal storage.Principal) string {
				badges := "Nenhum"
				if len(principal.Badges) > 0 {
					badges = strings.Join(principal.Badges, ", ")
				}
				return fmt.Sprintf("Seu perfil: Nome: %s, Pontos: %d, Badges: %s", principal.DisplayName, principal.Points, badges)
			}),
		},
		{
			triggers: []string{"/ajuda", "/comandos"},
			response: fixedResponse("Comandos disponíveis: /pontos (ver pontos), /perfil (ver perfil), /ajuda (lista de comandos)."),
		},
		{
			triggers: []string{"oi", "olá", "eai", "ei"},
			response: randomOfResponse{
				"Oi! Sou o TorcidaBot, pronto pra ajudar! 😎 Como posso te ajudar hoje?",
				"E aí! Tô aqui pra dar um gás na sua experiência! 🚀 O que quer saber?",
				"Olá! Bem-vindo ao chat da torcida! 😄 Qual é a boa?",
			},
		},
		{
			triggers: []string{"quem é você", "quem é a torcida", "o que é a torcida"},
			response: fixedResponse("Eu sou o TorcidaBot! A torcida é uma comunidade apaixonada por jogos e tecnologia. Quer saber mais?"),
		},
		{
			triggers: []string{"como jogar", "jogo", "games"},
			response: fixedResponse("Quer dicas sobre jogos? 🎮 Me conta qual é o seu game favorito ou se quer sugestões!"),
		},
		{
			triggers: []string{"pontos", "badge", "recompensa"},
			response: fixedResponse("Os pontos e badges são conquistados participando da comunidade! Envie mensagens, conecte suas redes sociais ou complete desafios no app. Quer ver os seus? Manda /pontos!"),
		},
		{
			triggers: []string{"perfil", "editar perfil", "foto de perfil"},
			response: fixedResponse("Para editar seu perfil, vá até a tela de Perfil no app e clique em \"Editar Perfil\". Você pode mudar seu nome, interesses e até adicionar uma foto! 📸"),
		},
		{
			triggers: []string{"ajuda", "suporte", "problema"},
			response: fixedResponse("Precisa de ajuda? Me conta o que tá acontecendo que eu te oriento! 😊"),
		},
		{
			triggers: []string{"?"},
			response: fixedResponse("Hmm, parece uma pergunta interessante! 🤔 Pode mandar mais detalhes que eu te respondo direitinho!"),
		},
		{
			triggers: []string{"obrigado", "valeu", "agradeço"},
			response: fixedResponse("De nada! 😄 Tô aqui pra ajudar sempre que precisar!"),
		},
	}
}

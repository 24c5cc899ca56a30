package session

import (
	"fmt"

	"github.com/google/uuid"

	"chesshub/internal/network"
	"chesshub/internal/rules"
)

// Player é a identidade de um jogador no servidor: um token estável entre
// reconexões, o nome de exibição e as referências voláteis de conexão,
// cor e partida. A conexão é trocada, não recriada, quando o jogador
// reconecta apresentando o token.
type Player struct {
	ID   string
	Name string

	// Color fica vazia até o jogador ser pareado.
	Color rules.Color

	// Game é nil fora de partida. Um jogador pertence a no máximo uma
	// partida por vez.
	Game *Game

	// Peer é a conexão viva corrente.
	Peer network.Peer
}

// newPlayer cria um jogador com identidade nova e nome padrão derivado
// do token.
func newPlayer(peer network.Peer) *Player {
	id := uuid.NewString()
	return &Player{
		ID:   id,
		Name: fmt.Sprintf("Player_%s", id[:6]),
		Peer: peer,
	}
}

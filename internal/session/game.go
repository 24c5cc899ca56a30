package session

import (
	"time"

	"chesshub/internal/rules"
	"chesshub/internal/session/message"
)

// Estados de ciclo de vida de uma partida, no vocabulário do protocolo.
// A transição é única: InProgress -> Over, sem volta.
const (
	StateInProgress = "game_in_progress"
	StateOver       = "game_over"
)

// Quantas mensagens de chat entram em um snapshot. O histórico interno
// não é podado.
const chatTail = 10

// Game é uma partida entre exatamente dois jogadores de cores distintas.
// A posição só é mutada por um lance validado de cada vez, sempre na
// goroutine do Hub.
type Game struct {
	ID    string
	White *Player
	Black *Player

	pos      *rules.Position
	state    string
	chat     []message.ChatEntry
	lastMove string
}

func newGame(id string, white, black *Player) *Game {
	return &Game{
		ID:    id,
		White: white,
		Black: black,
		pos:   rules.NewPosition(),
		state: StateInProgress,
		chat:  make([]message.ChatEntry, 0),
	}
}

// Opponent retorna o outro jogador da partida.
func (g *Game) Opponent(p *Player) *Player {
	if g.White == p {
		return g.Black
	}
	return g.White
}

// PlayerTurn informa se é a vez do jogador. Uma partida encerrada não
// tem vez de ninguém.
func (g *Game) PlayerTurn(p *Player) bool {
	return g.state == StateInProgress && g.pos.ColorToMove() == p.Color
}

// appendChat registra a mensagem com o nome do remetente no momento do
// envio e retorna a entrada criada.
func (g *Game) appendChat(sender *Player, text string) message.ChatEntry {
	entry := message.ChatEntry{
		Sender:    sender.Name,
		Message:   text,
		Timestamp: time.Now().UnixMilli(),
	}
	g.chat = append(g.chat, entry)
	return entry
}

// Snapshot monta a visão da partida na perspectiva de um dos jogadores.
// A posição subjacente é compartilhada e nunca escondida; a perspectiva
// só muda a vez, a cor e o nome do oponente.
func (g *Game) Snapshot(p *Player) *message.GameState {
	opponent := g.Opponent(p)

	chat := g.chat
	if len(chat) > chatTail {
		chat = chat[len(chat)-chatTail:]
	}

	var lastMove *string
	if g.lastMove != "" {
		lastMove = &g.lastMove
	}

	return &message.GameState{
		GameID:                 g.ID,
		BoardFEN:               g.pos.FEN(),
		YourColor:              string(p.Color),
		YourTurn:               g.PlayerTurn(p),
		OpponentName:           opponent.Name,
		State:                  g.state,
		LastMove:               lastMove,
		LegalMoves:             g.pos.LegalMoves(),
		ChatHistory:            chat,
		IsCheck:                g.pos.IsCheck(),
		IsCheckmate:            g.pos.IsCheckmate(),
		IsStalemate:            g.pos.IsStalemate(),
		IsInsufficientMaterial: g.pos.IsInsufficientMaterial(),
		IsGameOver:             g.pos.IsGameOver(),
	}
}

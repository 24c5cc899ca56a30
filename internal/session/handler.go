package session

import (
	"encoding/json"
	"math/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"chesshub/internal/network"
	"chesshub/internal/rules"
	"chesshub/internal/session/message"
)

// Limite de tamanho de um nome de exibição, em runas.
const maxNameLen = 20

// commandHandlerFunc é a assinatura de todos os handlers de comando.
// Recebem o jogador dono da conexão e o frame bruto da mensagem.
type commandHandlerFunc func(h *Handler, p *Player, frame []byte)

// Handler implementa network.EventHandler e concentra toda a lógica de
// matchmaking e de partida. Todos os métodos rodam na goroutine do Hub:
// o registro, a fila e o conjunto de partidas têm um único escritor e
// dispensam locks. Um comando roda do começo ao fim antes do próximo,
// então dois lances "simultâneos" da mesma partida nunca se intercalam.
type Handler struct {
	registry   *Registry
	matchmaker *Matchmaker
	games      map[string]*Game

	router   map[string]commandHandlerFunc
	validate *validator.Validate
}

// NewHandler monta o handler com uma fonte de aleatoriedade própria.
func NewHandler() *Handler {
	return newHandler(rand.New(rand.NewSource(time.Now().UnixNano())))
}

func newHandler(rng *rand.Rand) *Handler {
	h := &Handler{
		registry:   NewRegistry(),
		matchmaker: NewMatchmaker(rng),
		games:      make(map[string]*Game),
		validate:   validator.New(),
	}
	h.router = map[string]commandHandlerFunc{
		message.CmdFindGame:         handleFindGame,
		message.CmdMakeMove:         handleMakeMove,
		message.CmdChatMessage:      handleChat,
		message.CmdUpdateName:       handleUpdateName,
		message.CmdResign:           handleResign,
		message.CmdRequestGameState: handleRequestGameState,
	}
	return h
}

// --- Implementação da interface network.EventHandler ---

// OnConnect registra a conexão nova ou, se ela apresenta um token de um
// jogador vivo, troca a conexão dele (reconexão).
func (h *Handler) OnConnect(peer network.Peer) {
	if token := peer.Token(); token != "" {
		if p, ok := h.registry.Lookup(token); ok {
			h.registry.Reattach(p, peer)

			// Se o jogador está em partida, empurra o snapshot completo
			// imediatamente.
			var state *message.GameState
			if p.Game != nil {
				state = p.Game.Snapshot(p)
			}
			peer.Send(message.NewReconnected(p.ID, state))
			logrus.WithFields(logrus.Fields{"player": p.ID, "remote": peer.RemoteAddr()}).Info("player reconnected")
			return
		}
	}

	p := h.registry.Register(peer)
	peer.Send(message.NewConnectionEstablished(p.ID))
	logrus.WithFields(logrus.Fields{"player": p.ID, "online": h.registry.Len()}).Info("player connected")
}

// OnDisconnect limpa tudo que a conexão perdida tocava: fila de espera,
// partida ativa (tratada como desistência) e o registro.
func (h *Handler) OnDisconnect(peer network.Peer) {
	p, ok := h.registry.ByPeer(peer)
	if !ok {
		// Conexão antiga de um jogador que já reconectou, ou conexão
		// que nunca chegou a ter jogador. Nada a limpar.
		return
	}

	h.matchmaker.Remove(p)

	if p.Game != nil {
		// Queda no meio da partida conta como desistência; o oponente é
		// avisado e a partida termina na hora.
		h.resign(p)
	}

	h.registry.Retire(p)
	logrus.WithFields(logrus.Fields{"player": p.ID, "online": h.registry.Len()}).Info("player disconnected")
}

// OnMessage decodifica o discriminador do frame e despacha para o
// handler do comando. Frame malformado só rende um evento de erro para o
// próprio remetente.
func (h *Handler) OnMessage(peer network.Peer, frame []byte) {
	p, ok := h.registry.ByPeer(peer)
	if !ok {
		return
	}

	var env message.Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		peer.Send(message.NewError("Invalid JSON message"))
		return
	}

	handler, found := h.router[env.Type]
	if !found {
		peer.Send(message.NewError("Unknown command: " + env.Type))
		return
	}

	handler(h, p, frame)
}

// --- Handlers de comando ---

func handleFindGame(h *Handler, p *Player, frame []byte) {
	var cmd message.FindGame
	if err := json.Unmarshal(frame, &cmd); err != nil {
		p.Peer.Send(message.NewError("Invalid JSON message"))
		return
	}

	// Procurar partida nova estando em uma equivale a desistir dela.
	if p.Game != nil {
		h.resign(p)
	}

	if name := strings.TrimSpace(cmd.PlayerName); name != "" {
		p.Name = truncateName(name)
	}

	h.matchmaker.Enqueue(p)
	p.Peer.Send(message.NewMatchmaking(message.StatusWaiting))

	h.tryPair()
}

func handleMakeMove(h *Handler, p *Player, frame []byte) {
	var cmd message.MakeMove
	if err := json.Unmarshal(frame, &cmd); err != nil {
		p.Peer.Send(message.NewError("Invalid JSON message"))
		return
	}
	if strings.TrimSpace(cmd.Move) == "" {
		p.Peer.Send(message.NewError("Move not specified"))
		return
	}

	g := p.Game
	if g == nil {
		p.Peer.Send(message.NewError(ErrNotInSession.Error()))
		return
	}

	if !g.PlayerTurn(p) {
		p.Peer.Send(message.NewError(ErrNotYourTurn.Error()))
		return
	}

	// Toda a validação acontece antes de qualquer mutação: um comando
	// rejeitado nunca altera a partida.
	mv, err := g.pos.ParseMove(cmd.Move)
	if err != nil {
		if errors.Is(err, rules.ErrMalformedMove) {
			p.Peer.Send(message.NewError("Invalid move format"))
		} else {
			p.Peer.Send(message.NewError("Illegal move"))
		}
		return
	}

	if err := g.pos.Apply(mv); err != nil {
		logrus.WithError(err).WithField("game", g.ID).Error("apply move failed")
		p.Peer.Send(message.NewError("An unexpected error occurred while processing your move."))
		return
	}
	g.lastMove = mv.UCI()

	if g.pos.IsGameOver() {
		h.finishGame(g)
		return
	}

	for _, q := range []*Player{g.White, g.Black} {
		q.Peer.Send(message.NewMoveMade(mv.UCI(), p.Name, g.Snapshot(q)))
	}
}

func handleChat(h *Handler, p *Player, frame []byte) {
	var cmd message.Chat
	if err := json.Unmarshal(frame, &cmd); err != nil {
		p.Peer.Send(message.NewError("Invalid JSON message"))
		return
	}

	g := p.Game
	if g == nil {
		// Sem partida, sem chat. Descarte silencioso.
		return
	}

	text := strings.TrimSpace(cmd.Message)
	if err := h.validate.Var(text, "required,max=200"); err != nil {
		// Vazia ou longa demais: descartada sem resposta, como sempre
		// foi no protocolo.
		return
	}

	entry := g.appendChat(p, text)
	for _, q := range []*Player{g.White, g.Black} {
		q.Peer.Send(message.NewChatMessage(entry))
	}
}

func handleUpdateName(h *Handler, p *Player, frame []byte) {
	var cmd message.UpdateName
	if err := json.Unmarshal(frame, &cmd); err != nil {
		p.Peer.Send(message.NewError("Invalid JSON message"))
		return
	}

	cmd.Name = strings.TrimSpace(cmd.Name)
	if err := h.validate.Struct(cmd); err != nil {
		p.Peer.Send(message.NewError(ErrInvalidName.Error()))
		return
	}

	p.Name = cmd.Name

	// O oponente, se houver, fica sabendo do nome novo.
	if g := p.Game; g != nil {
		g.Opponent(p).Peer.Send(message.NewOpponentUpdate(p.Name))
	}
	p.Peer.Send(message.NewNameUpdated(p.Name))
}

func handleResign(h *Handler, p *Player, _ []byte) {
	h.resign(p)
}

func handleRequestGameState(h *Handler, p *Player, _ []byte) {
	g := p.Game
	if g == nil {
		p.Peer.Send(message.NewError(ErrNotInSession.Error()))
		return
	}
	p.Peer.Send(message.NewCurrentState(g.Snapshot(p)))
}

// --- Transições de partida ---

// tryPair fecha quantos pares a fila permitir.
func (h *Handler) tryPair() {
	for {
		white, black := h.matchmaker.TryPair()
		if white == nil {
			return
		}
		h.startGame(white, black)
	}
}

func (h *Handler) startGame(white, black *Player) {
	g := newGame(uuid.NewString(), white, black)
	h.games[g.ID] = g

	white.Color = rules.White
	black.Color = rules.Black
	white.Game = g
	black.Game = g

	logrus.WithFields(logrus.Fields{
		"game":  g.ID,
		"white": white.ID,
		"black": black.ID,
	}).Info("match found")

	for _, p := range []*Player{white, black} {
		opponent := g.Opponent(p)
		p.Peer.Send(message.NewGameStart(g.ID, string(p.Color), opponent.Name, g.Snapshot(p)))
	}
}

// finishGame encerra a partida por condição terminal das regras, avisa
// os dois lados e a remove do conjunto ativo.
func (h *Handler) finishGame(g *Game) {
	g.state = StateOver
	result, reason := g.pos.Result(), g.pos.OverReason()

	logrus.WithFields(logrus.Fields{"game": g.ID, "result": result, "reason": reason}).Info("game over")

	for _, q := range []*Player{g.White, g.Black} {
		q.Peer.Send(message.NewGameOver(result, reason, g.Snapshot(q)))
	}
	h.releaseGame(g)
}

// resign encerra a partida do jogador, se houver. Só o oponente recebe
// o aviso; quem desiste não recebe nada.
func (h *Handler) resign(p *Player) {
	g := p.Game
	if g == nil {
		return
	}

	g.state = StateOver
	g.Opponent(p).Peer.Send(message.NewOpponentResigned(p.Name))

	logrus.WithFields(logrus.Fields{"game": g.ID, "player": p.ID}).Info("player resigned")
	h.releaseGame(g)
}

// releaseGame tira a partida do conjunto ativo e limpa as referências
// dos dois jogadores, liberando-os para novo matchmaking.
func (h *Handler) releaseGame(g *Game) {
	delete(h.games, g.ID)
	for _, q := range []*Player{g.White, g.Black} {
		q.Game = nil
		q.Color = ""
	}
}

// truncateName corta o nome no limite do protocolo, por runas.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) > maxNameLen {
		runes = runes[:maxNameLen]
	}
	return string(runes)
}

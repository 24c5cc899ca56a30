package session

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chesshub/internal/session/message"
)

// fakePeer captura os eventos enviados a uma conexão, no lugar de um
// socket de verdade.
type fakePeer struct {
	token  string
	events []any
	closed bool
}

func (f *fakePeer) Token() string      { return f.token }
func (f *fakePeer) RemoteAddr() string { return "test" }
func (f *fakePeer) Close()             { f.closed = true }

func (f *fakePeer) Send(v any) bool {
	f.events = append(f.events, v)
	return true
}

// eventsOf filtra os eventos capturados por tipo.
func eventsOf[T any](p *fakePeer) []T {
	var out []T
	for _, ev := range p.events {
		if typed, ok := ev.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}

func lastEventOf[T any](t *testing.T, p *fakePeer) T {
	t.Helper()
	all := eventsOf[T](p)
	require.NotEmpty(t, all, "no event of type %T captured", *new(T))
	return all[len(all)-1]
}

func newTestHandler() *Handler {
	return newHandler(rand.New(rand.NewSource(42)))
}

// connect registra uma conexão nova e retorna o peer com o id emitido.
func connect(t *testing.T, h *Handler) (*fakePeer, string) {
	t.Helper()
	peer := &fakePeer{}
	h.OnConnect(peer)

	est := lastEventOf[message.ConnectionEstablished](t, peer)
	require.NotEmpty(t, est.PlayerID)
	return peer, est.PlayerID
}

func send(h *Handler, peer *fakePeer, frame string) {
	h.OnMessage(peer, []byte(frame))
}

// pairUp conecta dois jogadores, enfileira ambos e retorna os peers já
// separados por cor.
func pairUp(t *testing.T, h *Handler) (white, black *fakePeer) {
	t.Helper()
	p1, _ := connect(t, h)
	p2, _ := connect(t, h)

	send(h, p1, `{"type":"find_game"}`)
	send(h, p2, `{"type":"find_game"}`)

	start1 := lastEventOf[message.GameStart](t, p1)
	start2 := lastEventOf[message.GameStart](t, p2)
	require.Equal(t, start1.GameID, start2.GameID)
	require.NotEqual(t, start1.YourColor, start2.YourColor)

	if start1.YourColor == "white" {
		return p1, p2
	}
	return p2, p1
}

func TestFindGamePairsTwoPlayers(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)
	p2, _ := connect(t, h)

	send(h, p1, `{"type":"find_game","player_name":"Alice"}`)

	// Sozinho na fila: só o aviso de espera.
	mm := lastEventOf[message.Matchmaking](t, p1)
	require.Equal(t, message.StatusWaiting, mm.Status)
	require.Empty(t, eventsOf[message.GameStart](p1))

	send(h, p2, `{"type":"find_game","player_name":"Bob"}`)

	start1 := lastEventOf[message.GameStart](t, p1)
	start2 := lastEventOf[message.GameStart](t, p2)

	require.Equal(t, start1.GameID, start2.GameID)
	require.NotEqual(t, start1.YourColor, start2.YourColor)
	require.Equal(t, "Bob", start1.OpponentName)
	require.Equal(t, "Alice", start2.OpponentName)

	// O snapshot inicial já vem com a vez certa por perspectiva.
	var whiteStart, blackStart message.GameStart
	if start1.YourColor == "white" {
		whiteStart, blackStart = start1, start2
	} else {
		whiteStart, blackStart = start2, start1
	}
	require.True(t, whiteStart.GameState.YourTurn)
	require.False(t, blackStart.GameState.YourTurn)
	require.Len(t, whiteStart.GameState.LegalMoves, 20)

	require.Equal(t, 0, h.matchmaker.Waiting())
	require.Len(t, h.games, 1)
}

func TestMoveMadeFlow(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	send(h, white, `{"type":"update_name","name":"Walter"}`)
	send(h, white, `{"type":"make_move","move":"e2e4"}`)

	mvWhite := lastEventOf[message.MoveMade](t, white)
	mvBlack := lastEventOf[message.MoveMade](t, black)

	require.Equal(t, "e2e4", mvWhite.Move)
	require.Equal(t, "e2e4", mvBlack.Move)

	// by_player é sempre quem jogou, para os dois lados.
	require.Equal(t, "Walter", mvWhite.ByPlayer)
	require.Equal(t, "Walter", mvBlack.ByPlayer)

	require.False(t, mvWhite.GameState.YourTurn)
	require.True(t, mvBlack.GameState.YourTurn)
	require.NotNil(t, mvWhite.GameState.LastMove)
	require.Equal(t, "e2e4", *mvWhite.GameState.LastMove)
}

func TestMakeMoveOutOfTurn(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	send(h, black, `{"type":"make_move","move":"e7e5"}`)

	errEv := lastEventOf[message.Error](t, black)
	require.Equal(t, "Not your turn", errEv.Message)

	// A posição não mudou.
	send(h, white, `{"type":"request_game_state"}`)
	state := lastEventOf[message.CurrentState](t, white)
	require.Nil(t, state.GameState.LastMove)
	require.Len(t, state.GameState.LegalMoves, 20)
	require.Empty(t, eventsOf[message.MoveMade](white))
}

func TestMakeMoveValidation(t *testing.T) {
	h := newTestHandler()
	white, _ := pairUp(t, h)

	send(h, white, `{"type":"make_move","move":"e2e5"}`)
	require.Equal(t, "Illegal move", lastEventOf[message.Error](t, white).Message)

	send(h, white, `{"type":"make_move","move":"banana"}`)
	require.Equal(t, "Invalid move format", lastEventOf[message.Error](t, white).Message)

	send(h, white, `{"type":"make_move"}`)
	require.Equal(t, "Move not specified", lastEventOf[message.Error](t, white).Message)

	// Nenhuma das rejeições virou lance.
	require.Empty(t, eventsOf[message.MoveMade](white))
}

func TestMakeMoveWithoutGame(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)

	send(h, p1, `{"type":"make_move","move":"e2e4"}`)
	require.Equal(t, "Not in a game", lastEventOf[message.Error](t, p1).Message)
}

func TestCheckmateEndsAndReleasesGame(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	// Mate do louco: 1.f3 e5 2.g4 Dh4#.
	send(h, white, `{"type":"make_move","move":"f2f3"}`)
	send(h, black, `{"type":"make_move","move":"e7e5"}`)
	send(h, white, `{"type":"make_move","move":"g2g4"}`)
	send(h, black, `{"type":"make_move","move":"d8h4"}`)

	overWhite := lastEventOf[message.GameOver](t, white)
	overBlack := lastEventOf[message.GameOver](t, black)

	require.Equal(t, "0-1", overWhite.Result)
	require.Equal(t, "checkmate", overWhite.Reason)
	require.Equal(t, overWhite.Result, overBlack.Result)
	require.Equal(t, "game_over", overBlack.GameState.State)
	require.True(t, overBlack.GameState.IsCheckmate)

	// A partida saiu do conjunto ativo; comandos posteriores falham.
	require.Empty(t, h.games)
	send(h, white, `{"type":"request_game_state"}`)
	require.Equal(t, "Not in a game", lastEventOf[message.Error](t, white).Message)

	send(h, black, `{"type":"make_move","move":"e2e4"}`)
	require.Equal(t, "Not in a game", lastEventOf[message.Error](t, black).Message)
}

func TestResignNotifiesOnlyOpponent(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	before := len(white.events)
	send(h, white, `{"type":"resign"}`)

	resigned := eventsOf[message.OpponentResigned](black)
	require.Len(t, resigned, 1)

	// Quem desistiu não recebe nada.
	require.Len(t, white.events, before)
	require.Empty(t, h.games)

	// Os dois estão livres para novo matchmaking.
	send(h, white, `{"type":"find_game"}`)
	require.Equal(t, 1, h.matchmaker.Waiting())
}

func TestResignWithoutGameIsSilent(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)

	before := len(p1.events)
	send(h, p1, `{"type":"resign"}`)
	require.Len(t, p1.events, before)
}

func TestDisconnectMidGameResigns(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	h.OnDisconnect(white)

	resigned := lastEventOf[message.OpponentResigned](t, black)
	require.NotEmpty(t, resigned.OpponentName)
	require.Empty(t, h.games)
	require.Equal(t, 1, h.registry.Len())

	// Sem partida, lances do sobrevivente falham.
	send(h, black, `{"type":"make_move","move":"e7e5"}`)
	require.Equal(t, "Not in a game", lastEventOf[message.Error](t, black).Message)
}

func TestDisconnectWhileQueued(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)

	send(h, p1, `{"type":"find_game"}`)
	require.Equal(t, 1, h.matchmaker.Waiting())

	h.OnDisconnect(p1)
	require.Equal(t, 0, h.matchmaker.Waiting())
	require.Equal(t, 0, h.registry.Len())
}

func TestChatRelay(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	send(h, white, `{"type":"chat_message","message":"  good luck  "}`)

	chatWhite := lastEventOf[message.ChatMessage](t, white)
	chatBlack := lastEventOf[message.ChatMessage](t, black)

	require.Equal(t, "good luck", chatWhite.Message.Message)
	require.Equal(t, chatWhite.Message, chatBlack.Message)
	require.NotEmpty(t, chatWhite.Message.Sender)
}

func TestChatOverLengthIsDroppedSilently(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	beforeWhite := len(white.events)
	beforeBlack := len(black.events)

	long := strings.Repeat("a", 250)
	send(h, white, fmt.Sprintf(`{"type":"chat_message","message":"%s"}`, long))

	// Nenhum evento para ninguém: nem relay, nem erro.
	require.Len(t, white.events, beforeWhite)
	require.Len(t, black.events, beforeBlack)
}

func TestChatWithoutGameIsDropped(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)

	before := len(p1.events)
	send(h, p1, `{"type":"chat_message","message":"anyone there?"}`)
	require.Len(t, p1.events, before)
}

func TestChatHistoryTailInSnapshot(t *testing.T) {
	h := newTestHandler()
	white, _ := pairUp(t, h)

	for i := 0; i < 15; i++ {
		send(h, white, fmt.Sprintf(`{"type":"chat_message","message":"msg %d"}`, i))
	}

	send(h, white, `{"type":"request_game_state"}`)
	state := lastEventOf[message.CurrentState](t, white)

	require.Len(t, state.GameState.ChatHistory, 10)
	require.Equal(t, "msg 14", state.GameState.ChatHistory[9].Message)
	require.Equal(t, "msg 5", state.GameState.ChatHistory[0].Message)
}

func TestUpdateName(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	send(h, white, `{"type":"update_name","name":"  Magnus  "}`)

	require.Equal(t, "Magnus", lastEventOf[message.NameUpdated](t, white).Name)
	require.Equal(t, "Magnus", lastEventOf[message.OpponentUpdate](t, black).Name)
}

func TestUpdateNameRejectsInvalid(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)

	send(h, p1, `{"type":"update_name","name":""}`)
	require.Equal(t, "Invalid name", lastEventOf[message.Error](t, p1).Message)

	long := strings.Repeat("x", 21)
	send(h, p1, fmt.Sprintf(`{"type":"update_name","name":"%s"}`, long))
	require.Equal(t, "Invalid name", lastEventOf[message.Error](t, p1).Message)
}

func TestFindGameTruncatesName(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)
	p2, _ := connect(t, h)

	long := strings.Repeat("n", 30)
	send(h, p1, fmt.Sprintf(`{"type":"find_game","player_name":"%s"}`, long))
	send(h, p2, `{"type":"find_game"}`)

	start2 := lastEventOf[message.GameStart](t, p2)
	require.Len(t, []rune(start2.OpponentName), 20)
}

func TestFindGameWhileInGameResignsFirst(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	send(h, white, `{"type":"find_game"}`)

	require.Len(t, eventsOf[message.OpponentResigned](black), 1)
	require.Empty(t, h.games)
	require.Equal(t, 1, h.matchmaker.Waiting())
	require.Equal(t, message.StatusWaiting, lastEventOf[message.Matchmaking](t, white).Status)
}

func TestMalformedFrame(t *testing.T) {
	h := newTestHandler()
	p1, _ := connect(t, h)

	send(h, p1, `{not json`)
	require.Equal(t, "Invalid JSON message", lastEventOf[message.Error](t, p1).Message)

	send(h, p1, `{"type":"teleport"}`)
	require.Contains(t, lastEventOf[message.Error](t, p1).Message, "Unknown command")
}

func TestReconnectSwapsPeer(t *testing.T) {
	h := newTestHandler()
	p1, id := connect(t, h)

	// Conexão nova apresentando o token do jogador vivo.
	p2 := &fakePeer{token: id}
	h.OnConnect(p2)

	rec := lastEventOf[message.Reconnected](t, p2)
	require.Equal(t, id, rec.PlayerID)
	require.Nil(t, rec.GameState)
	require.True(t, p1.closed)

	// O close tardio da conexão antiga não derruba o jogador.
	h.OnDisconnect(p1)
	_, stillThere := h.registry.Lookup(id)
	require.True(t, stillThere)
}

func TestReconnectMidGamePushesSnapshot(t *testing.T) {
	h := newTestHandler()
	white, black := pairUp(t, h)

	send(h, white, `{"type":"make_move","move":"e2e4"}`)

	start := lastEventOf[message.GameStart](t, white)
	whitePlayer, ok := h.registry.ByPeer(white)
	require.True(t, ok)

	replacement := &fakePeer{token: whitePlayer.ID}
	h.OnConnect(replacement)

	rec := lastEventOf[message.Reconnected](t, replacement)
	require.NotNil(t, rec.GameState)
	require.Equal(t, start.GameID, rec.GameState.GameID)
	require.Equal(t, "white", rec.GameState.YourColor)
	require.NotNil(t, rec.GameState.LastMove)
	require.Equal(t, "e2e4", *rec.GameState.LastMove)

	// O jogo segue: o substituto recebe os próximos eventos.
	send(h, black, `{"type":"make_move","move":"e7e5"}`)
	require.NotEmpty(t, eventsOf[message.MoveMade](replacement))
}

func TestUnknownTokenGetsFreshIdentity(t *testing.T) {
	h := newTestHandler()

	peer := &fakePeer{token: "no-such-player"}
	h.OnConnect(peer)

	est := lastEventOf[message.ConnectionEstablished](t, peer)
	require.NotEqual(t, "no-such-player", est.PlayerID)
}

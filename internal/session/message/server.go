package message

// Eventos no sentido servidor -> cliente. Cada evento é um objeto JSON
// plano com discriminador "type", montado por construtor para o tipo
// nunca sair errado.

// StatusWaiting é o único status de matchmaking do protocolo atual.
const StatusWaiting = "waiting_for_opponent"

// ChatEntry é uma mensagem de chat como registrada na partida: o nome do
// remetente no momento do envio, o texto e um timestamp lógico. Imutável
// depois de criada.
type ChatEntry struct {
	Sender    string `json:"sender"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

// GameState é o snapshot de uma partida na perspectiva de um jogador.
// O estado subjacente é o mesmo para os dois lados; só mudam a vez, a
// cor e o nome do oponente.
type GameState struct {
	GameID                 string      `json:"game_id"`
	BoardFEN               string      `json:"board_fen"`
	YourColor              string      `json:"your_color"`
	YourTurn               bool        `json:"your_turn"`
	OpponentName           string      `json:"opponent_name"`
	State                  string      `json:"state"`
	LastMove               *string     `json:"last_move"`
	LegalMoves             []string    `json:"legal_moves"`
	ChatHistory            []ChatEntry `json:"chat_history"`
	IsCheck                bool        `json:"is_check"`
	IsCheckmate            bool        `json:"is_checkmate"`
	IsStalemate            bool        `json:"is_stalemate"`
	IsInsufficientMaterial bool        `json:"is_insufficient_material"`
	IsGameOver             bool        `json:"is_game_over"`

	// Relógios ainda sem semântica; sempre null no protocolo atual.
	WhiteTime *float64 `json:"white_time"`
	BlackTime *float64 `json:"black_time"`
}

type ConnectionEstablished struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

func NewConnectionEstablished(playerID string) ConnectionEstablished {
	return ConnectionEstablished{Type: "connection_established", PlayerID: playerID}
}

type Reconnected struct {
	Type      string     `json:"type"`
	PlayerID  string     `json:"player_id"`
	GameState *GameState `json:"game_state"`
}

func NewReconnected(playerID string, state *GameState) Reconnected {
	return Reconnected{Type: "reconnected", PlayerID: playerID, GameState: state}
}

type Matchmaking struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

func NewMatchmaking(status string) Matchmaking {
	return Matchmaking{Type: "matchmaking", Status: status}
}

type GameStart struct {
	Type         string     `json:"type"`
	GameID       string     `json:"game_id"`
	YourColor    string     `json:"your_color"`
	OpponentName string     `json:"opponent_name"`
	GameState    *GameState `json:"game_state"`
}

func NewGameStart(gameID, yourColor, opponentName string, state *GameState) GameStart {
	return GameStart{
		Type:         "game_start",
		GameID:       gameID,
		YourColor:    yourColor,
		OpponentName: opponentName,
		GameState:    state,
	}
}

type MoveMade struct {
	Type      string     `json:"type"`
	Move      string     `json:"move"`
	ByPlayer  string     `json:"by_player"`
	GameState *GameState `json:"game_state"`
}

func NewMoveMade(move, byPlayer string, state *GameState) MoveMade {
	return MoveMade{Type: "move_made", Move: move, ByPlayer: byPlayer, GameState: state}
}

type GameOver struct {
	Type      string     `json:"type"`
	Result    string     `json:"result"`
	Reason    string     `json:"reason"`
	GameState *GameState `json:"game_state"`
}

func NewGameOver(result, reason string, state *GameState) GameOver {
	return GameOver{Type: "game_over", Result: result, Reason: reason, GameState: state}
}

type OpponentResigned struct {
	Type         string `json:"type"`
	OpponentName string `json:"opponent_name"`
}

func NewOpponentResigned(opponentName string) OpponentResigned {
	return OpponentResigned{Type: "opponent_resigned", OpponentName: opponentName}
}

type ChatMessage struct {
	Type    string    `json:"type"`
	Message ChatEntry `json:"message"`
}

func NewChatMessage(entry ChatEntry) ChatMessage {
	return ChatMessage{Type: "chat_message", Message: entry}
}

type OpponentUpdate struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func NewOpponentUpdate(name string) OpponentUpdate {
	return OpponentUpdate{Type: "opponent_update", Name: name}
}

type NameUpdated struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

func NewNameUpdated(name string) NameUpdated {
	return NameUpdated{Type: "name_updated", Name: name}
}

// CurrentState responde a um request_game_state.
type CurrentState struct {
	Type      string     `json:"type"`
	GameState *GameState `json:"game_state"`
}

func NewCurrentState(state *GameState) CurrentState {
	return CurrentState{Type: "game_state", GameState: state}
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewError(msg string) Error {
	return Error{Type: "error", Message: msg}
}

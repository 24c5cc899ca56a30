package message

// Comandos no sentido cliente -> servidor. Cada frame é um objeto JSON
// plano cujo campo "type" escolhe o comando; os demais campos dependem
// do tipo.

const (
	CmdFindGame         = "find_game"
	CmdMakeMove         = "make_move"
	CmdChatMessage      = "chat_message"
	CmdUpdateName       = "update_name"
	CmdResign           = "resign"
	CmdRequestGameState = "request_game_state"
)

// Envelope extrai só o discriminador de tipo de um frame.
type Envelope struct {
	Type string `json:"type"`
}

// FindGame coloca o jogador na fila de matchmaking. O nome é opcional e,
// quando presente, é truncado no limite do protocolo.
type FindGame struct {
	PlayerName string `json:"player_name"`
}

// MakeMove submete um lance em notação UCI.
type MakeMove struct {
	Move string `json:"move"`
}

// Chat envia uma mensagem de texto para a partida corrente.
type Chat struct {
	Message string `json:"message"`
}

// UpdateName troca o nome de exibição do jogador.
type UpdateName struct {
	Name string `json:"name" validate:"required,max=20"`
}

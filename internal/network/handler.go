package network

// Peer é a visão que a lógica de jogo tem de uma conexão individual.
// A lógica nunca escreve direto no socket; tudo passa pelo canal de saída
// do cliente, drenado pela goroutine writeLoop.
type Peer interface {
	// Token retorna o identificador de jogador apresentado no handshake,
	// ou "" quando a conexão é de um cliente novo.
	Token() string

	// Send enfileira um evento de saída sem bloquear. Retorna false se o
	// buffer do cliente estava cheio e a conexão foi derrubada.
	Send(v any) bool

	// RemoteAddr identifica a conexão nos logs.
	RemoteAddr() string

	// Close derruba a conexão.
	Close()
}

// EventHandler é a interface que conecta a camada de rede com a lógica
// do jogo. Todos os callbacks são invocados pela goroutine do Hub, nunca
// em paralelo entre si.
type EventHandler interface {
	// OnConnect é chamado quando um cliente completa o handshake.
	OnConnect(p Peer)

	// OnDisconnect é chamado quando a conexão de um cliente se perde,
	// exatamente uma vez por conexão registrada.
	OnDisconnect(p Peer)

	// OnMessage é chamado para cada frame recebido de um cliente.
	OnMessage(p Peer, frame []byte)
}

package network

// clientMessage empacota um frame bruto com o cliente que o enviou.
type clientMessage struct {
	client *Client
	frame  []byte
}

// Hub mantém o conjunto de clientes ativos e roteia eventos para o
// handler. Todos os callbacks do EventHandler rodam na goroutine do Hub,
// que assim é o único escritor do estado de jogo: registro de jogadores,
// fila de espera e partidas dispensam locks adicionais.
type Hub struct {
	// Clientes registrados. Acessado SOMENTE pela goroutine do Hub.
	clients map[*Client]bool

	// Canal para registrar novos clientes.
	register chan *Client

	// Canal para desregistrar clientes.
	unregister chan *Client

	// Canal de frames de entrada, alimentado pelos readLoops.
	incoming chan clientMessage

	// O handler da lógica do jogo que processa os eventos.
	handler EventHandler
}

// NewHub cria, inicializa e retorna um novo Hub.
func NewHub(handler EventHandler) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		handler:    handler,
	}
}

// Run processa registros, desconexões e frames, um por vez.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			h.handler.OnConnect(client)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				// Fechar o canal send é o sinal para a goroutine
				// writeLoop daquele cliente parar.
				close(client.send)
				h.handler.OnDisconnect(client)
			}

		case msg := <-h.incoming:
			// O Hub não se importa com o conteúdo do frame; delega a
			// interpretação para a lógica do jogo.
			h.handler.OnMessage(msg.client, msg.frame)
		}
	}
}

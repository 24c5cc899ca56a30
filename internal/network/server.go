package network

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Server expõe o endpoint WebSocket e gerencia o Hub associado.
type Server struct {
	hub *Hub
}

// upgrader guarda as configurações para promover uma conexão HTTP a
// WebSocket.
var upgrader = websocket.Upgrader{
	// O servidor assume clientes cooperativos; qualquer origem pode
	// conectar.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// NewServer aceita o EventHandler com a lógica do jogo e o injeta no Hub.
func NewServer(handler EventHandler) *Server {
	return &Server{
		hub: NewHub(handler),
	}
}

// wsHandler é o ponto de entrada das conexões: promove a requisição HTTP
// para WebSocket, extrai o token de identidade e registra o cliente.
func (s *Server) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logrus.WithError(err).Warn("websocket upgrade failed")
		return
	}

	// Um cliente que já possui identidade a apresenta no header do
	// handshake; clientes de navegador podem usar a query string.
	token := r.Header.Get("Player-ID")
	if token == "" {
		token = r.URL.Query().Get("player_id")
	}

	client := &Client{
		conn:  conn,
		hub:   s.hub,
		token: token,
		send:  make(chan any, sendBuffer),
	}

	client.hub.register <- client

	go client.writeLoop()
	go client.readLoop()
}

// Listen inicia a goroutine do Hub e o servidor HTTP. Bloqueia até o
// listener falhar.
func (s *Server) Listen(addr string) error {
	go s.hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.wsHandler)

	logrus.WithField("addr", addr).Infof("websocket server listening on ws://%s/ws", addr)

	if err := http.ListenAndServe(addr, mux); err != nil {
		return errors.Wrap(err, "listen failed")
	}
	return nil
}

package network

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Tempo máximo para uma escrita na conexão.
	writeWait = 10 * time.Second

	// Tempo máximo aguardando por um pong do cliente.
	pongWait = 60 * time.Second

	// Frequência com que enviamos pings. Deve ser menor que pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Limite de tamanho de um frame de entrada.
	maxFrameSize = 4096

	// Capacidade do buffer de saída de cada cliente.
	sendBuffer = 256
)

// Client é a representação de um jogador conectado do ponto de vista do
// servidor. Agrupa a conexão WebSocket, o token de identidade apresentado
// no handshake e o canal de mensagens de saída. Implementa Peer.
type Client struct {
	conn *websocket.Conn

	// Referência ao Hub central, usada para se (des)registrar.
	hub *Hub

	// Token de identidade apresentado no handshake ("" para cliente novo).
	token string

	// Canal bufferizado de mensagens de saída. O Hub e a lógica de jogo
	// colocam eventos aqui; a goroutine writeLoop os envia. O buffer evita
	// que um cliente lento bloqueie o resto do servidor.
	send chan any
}

func (c *Client) Token() string { return c.token }

func (c *Client) RemoteAddr() string { return c.conn.RemoteAddr().String() }

// Send enfileira um evento sem bloquear. Se o buffer do cliente está
// cheio, a conexão é derrubada: um receptor lento não pode travar o Hub
// nem as outras partidas.
func (c *Client) Send(v any) bool {
	select {
	case c.send <- v:
		return true
	default:
		logrus.WithField("remote", c.RemoteAddr()).Warn("send buffer full, dropping client")
		c.conn.Close()
		return false
	}
}

// Close derruba a conexão. O readLoop percebe o fechamento e cuida do
// desregistro no Hub.
func (c *Client) Close() {
	c.conn.Close()
}

// readLoop bombeia frames do socket para o canal de entrada do Hub.
func (c *Client) readLoop() {
	// Garante a limpeza quando o loop terminar, por qualquer motivo.
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxFrameSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	// Cada pong recebido estende o deadline de leitura, mantendo a
	// conexão viva. Sem pongs, a leitura expira e caímos no caminho de
	// desconexão abrupta.
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, frame, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logrus.WithField("remote", c.RemoteAddr()).WithError(err).Debug("read failed")
			}
			break
		}

		c.hub.incoming <- clientMessage{client: c, frame: frame}
	}
}

// writeLoop bombeia mensagens do canal send para a conexão, além dos
// pings periódicos.
func (c *Client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case v, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// O Hub fechou o canal: o cliente foi desregistrado.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(v); err != nil {
				logrus.WithField("remote", c.RemoteAddr()).WithError(err).Debug("write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				// Se o ping falhou, a conexão está morta.
				return
			}
		}
	}
}

package session

import "chesshub/internal/network"

// Registry guarda os jogadores conectados, indexados pelo token de
// identidade e pela conexão viva. Toda mutação passa por aqui, de modo
// que os invariantes (um jogador por token, uma conexão corrente por
// jogador) ficam num só lugar. Só é tocado pela goroutine do Hub.
type Registry struct {
	byID   map[string]*Player
	byPeer map[network.Peer]*Player
}

func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Player),
		byPeer: make(map[network.Peer]*Player),
	}
}

// Register cria um jogador novo para a conexão.
func (r *Registry) Register(peer network.Peer) *Player {
	p := newPlayer(peer)
	r.byID[p.ID] = p
	r.byPeer[peer] = p
	return p
}

// Lookup retorna o jogador dono do token, se ainda existir.
func (r *Registry) Lookup(token string) (*Player, bool) {
	p, ok := r.byID[token]
	return p, ok
}

// ByPeer retorna o jogador cuja conexão corrente é peer. Uma conexão
// antiga de um jogador que já reconectou não resolve para ninguém.
func (r *Registry) ByPeer(peer network.Peer) (*Player, bool) {
	p, ok := r.byPeer[peer]
	return p, ok
}

// Reattach troca a conexão de um jogador que reconectou. A conexão
// antiga é fechada e deixa de apontar para o jogador; o close tardio
// dela não dispara o tratamento de desconexão de novo.
func (r *Registry) Reattach(p *Player, peer network.Peer) {
	if p.Peer != nil && p.Peer != peer {
		delete(r.byPeer, p.Peer)
		p.Peer.Close()
	}
	p.Peer = peer
	r.byPeer[peer] = p
}

// Retire remove o jogador dos dois índices. O token deixa de valer para
// reconexão.
func (r *Registry) Retire(p *Player) {
	delete(r.byID, p.ID)
	if p.Peer != nil {
		delete(r.byPeer, p.Peer)
	}
}

// Len conta os jogadores registrados.
func (r *Registry) Len() int {
	return len(r.byID)
}

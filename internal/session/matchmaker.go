package session

import (
	"math/rand"

	"github.com/sirupsen/logrus"
)

// Matchmaker guarda a fila de espera em ordem de chegada. O sorteio de
// cores usa uma fonte de aleatoriedade injetada para que os testes fixem
// os dois resultados possíveis. Como todo o resto do estado de sessão,
// a fila só é tocada pela goroutine do Hub.
type Matchmaker struct {
	queue []*Player
	rng   *rand.Rand
}

// NewMatchmaker cria um Matchmaker com fila vazia.
func NewMatchmaker(rng *rand.Rand) *Matchmaker {
	return &Matchmaker{
		queue: make([]*Player, 0),
		rng:   rng,
	}
}

// Enqueue coloca o jogador no fim da fila. Entrar de novo enquanto já
// espera é idempotente: a fila nunca contém o mesmo jogador duas vezes.
func (m *Matchmaker) Enqueue(p *Player) {
	for _, waiting := range m.queue {
		if waiting == p {
			return
		}
	}
	m.queue = append(m.queue, p)
	logrus.WithFields(logrus.Fields{"player": p.ID, "queue": len(m.queue)}).Info("player waiting for opponent")
}

// Remove tira o jogador da fila, se estiver nela.
func (m *Matchmaker) Remove(p *Player) {
	for i, waiting := range m.queue {
		if waiting == p {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return
		}
	}
}

// TryPair tenta formar um par com os dois primeiros da fila, sorteando
// entre as duas atribuições de cor possíveis. Retorna (nil, nil) quando
// não há par.
func (m *Matchmaker) TryPair() (white, black *Player) {
	if len(m.queue) < 2 {
		return nil, nil
	}

	p1, p2 := m.queue[0], m.queue[1]
	m.queue = m.queue[2:]

	// Sorteio não viciado entre as duas ordenações.
	if m.rng.Intn(2) == 0 {
		return p1, p2
	}
	return p2, p1
}

// Waiting conta quantos jogadores esperam por oponente.
func (m *Matchmaker) Waiting() int {
	return len(m.queue)
}

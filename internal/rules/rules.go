// Package rules encapsula a biblioteca de xadrez por trás da superfície
// estreita que a camada de sessão consome: lances legais, vez, aplicação
// de lance validado, condições terminais e serialização FEN. O servidor
// nunca fala com a biblioteca diretamente.
package rules

import (
	"regexp"
	"strings"

	chess "github.com/corentings/chess/v2"
	"github.com/pkg/errors"
)

// Color identifica um dos dois lados do tabuleiro, no vocabulário do
// protocolo.
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Other retorna a cor oposta.
func (c Color) Other() Color {
	if c == White {
		return Black
	}
	return White
}

var (
	// ErrMalformedMove indica uma notação que nem parece um lance UCI.
	ErrMalformedMove = errors.New("malformed move")

	// ErrIllegalMove indica um lance bem formado porém ilegal na posição
	// atual.
	ErrIllegalMove = errors.New("illegal move")
)

// Formato UCI: origem, destino e promoção opcional (ex.: "e2e4", "a7a8q").
var uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// Position é o estado compartilhado de uma partida. Toda mutação passa
// por Apply, com um lance já validado por ParseMove.
type Position struct {
	game *chess.Game

	// Flag de xeque da posição corrente, derivado da notação algébrica
	// do último lance aplicado.
	check bool
}

// NewPosition retorna a posição inicial padrão.
func NewPosition() *Position {
	return &Position{game: chess.NewGame()}
}

// FromFEN reconstrói uma posição a partir da forma serializada.
func FromFEN(fen string) (*Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, errors.Wrap(err, "parse fen failed")
	}
	return &Position{game: chess.NewGame(opt)}, nil
}

// FEN serializa a posição corrente.
func (p *Position) FEN() string {
	return p.game.FEN()
}

// ColorToMove informa qual cor tem a vez.
func (p *Position) ColorToMove() Color {
	if p.game.Position().Turn() == chess.White {
		return White
	}
	return Black
}

// LegalMoves lista os lances legais da posição corrente em notação UCI.
func (p *Position) LegalMoves() []string {
	valid := p.game.ValidMoves()
	moves := make([]string, 0, len(valid))
	for _, mv := range valid {
		moves = append(moves, mv.String())
	}
	return moves
}

// Move é um lance já validado contra uma posição específica.
type Move struct {
	mv  *chess.Move
	uci string
}

// UCI retorna a notação do lance.
func (m Move) UCI() string { return m.uci }

// ParseMove valida a notação UCI contra a posição corrente. Notação que
// não tem forma de lance produz ErrMalformedMove; lance bem formado mas
// impossível na posição produz ErrIllegalMove.
func (p *Position) ParseMove(uci string) (Move, error) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	if !uciPattern.MatchString(uci) {
		return Move{}, ErrMalformedMove
	}

	mv, err := chess.UCINotation{}.Decode(p.game.Position(), uci)
	if err != nil {
		return Move{}, ErrIllegalMove
	}
	for _, legal := range p.LegalMoves() {
		if legal == uci {
			return Move{mv: mv, uci: uci}, nil
		}
	}
	return Move{}, ErrIllegalMove
}

// Apply executa um lance validado, mutando a posição. A sessão garante
// que somente um Apply roda por vez para a mesma posição.
func (p *Position) Apply(m Move) error {
	before := p.game.Position()
	if err := p.game.Move(m.mv, nil); err != nil {
		return errors.Wrap(err, "apply move failed")
	}

	// A notação algébrica marca xeque com '+' e mate com '#'; é daí que
	// sai o flag de xeque da posição resultante.
	san := chess.AlgebraicNotation{}.Encode(before, m.mv)
	p.check = strings.ContainsAny(san, "+#")
	return nil
}

// IsCheck informa se o lado que tem a vez está em xeque. Uma posição
// reconstruída de FEN sem histórico reporta false; no servidor toda
// posição evolui da inicial via Apply, então o flag é exato.
func (p *Position) IsCheck() bool { return p.check }

// IsGameOver informa se a posição atingiu qualquer condição terminal.
func (p *Position) IsGameOver() bool {
	return p.game.Outcome() != chess.NoOutcome
}

func (p *Position) IsCheckmate() bool {
	return p.game.Method() == chess.Checkmate
}

func (p *Position) IsStalemate() bool {
	return p.game.Method() == chess.Stalemate
}

func (p *Position) IsInsufficientMaterial() bool {
	return p.game.Method() == chess.InsufficientMaterial
}

func (p *Position) IsRepetitionDraw() bool {
	return p.game.Method() == chess.FivefoldRepetition
}

func (p *Position) IsMoveCountDraw() bool {
	return p.game.Method() == chess.SeventyFiveMoveRule
}

// Result retorna o placar no formato PGN: "1-0", "0-1" ou "1/2-1/2"
// ("*" para partida em andamento).
func (p *Position) Result() string {
	switch p.game.Outcome() {
	case chess.WhiteWon:
		return "1-0"
	case chess.BlackWon:
		return "0-1"
	case chess.Draw:
		return "1/2-1/2"
	}
	return "*"
}

// OverReason descreve, no vocabulário do protocolo, por que a partida
// terminou.
func (p *Position) OverReason() string {
	switch {
	case p.IsCheckmate():
		return "checkmate"
	case p.IsStalemate():
		return "stalemate"
	case p.IsInsufficientMaterial():
		return "insufficient material"
	case p.IsRepetitionDraw():
		return "fivefold repetition"
	case p.IsMoveCountDraw():
		return "seventyfive moves rule"
	}
	return "game over"
}

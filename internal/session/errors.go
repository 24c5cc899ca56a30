package session

import "errors"

// Erros de estado e de validação. São reportados somente ao remetente do
// comando; as mensagens são as visíveis no protocolo.
var (
	ErrNotInSession = errors.New("Not in a game")
	ErrNotYourTurn  = errors.New("Not your turn")
	ErrInvalidName  = errors.New("Invalid name")
)

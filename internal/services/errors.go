package services

import "errors"

var (
	// ErrPointNotFound é devolvido quando não há ponto com o id pedido.
	ErrPointNotFound = errors.New("point not found")
	// ErrNoItems: todo ponto precisa de ao menos um item, e toda busca também.
	ErrNoItems = errors.New("at least one item is required")
	// ErrUnknownItem: algum id não existe no catálogo.
	ErrUnknownItem = errors.New("unknown item")
	// ErrInvalidPoint cobre os demais campos inválidos do cadastro.
	ErrInvalidPoint = errors.New("invalid point")
)

package game

import "github.com/google/uuid"

type uuidGen struct{}

func NewIdGen() uuidGen {
	return uuidGen{}
}

func (uuidGen) Generate() string {
	return uuid.NewString()
}

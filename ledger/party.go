package ledger

import (
	"fmt"
	"strings"
)

type PartyType string

const (
	PartyMina       PartyType = "mina"
	PartyComprador  PartyType = "comprador"
	PartyVolquetero PartyType = "volquetero"
	PartyRodMar     PartyType = "rodmar"
	PartyBanco      PartyType = "banco"
)

var partyTypes = []PartyType{PartyMina, PartyComprador, PartyVolquetero, PartyRodMar, PartyBanco}

func PartyTypes() []PartyType {
	return append([]PartyType(nil), partyTypes...)
}

func ParsePartyType(s string) (PartyType, error) {
	t := PartyType(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range partyTypes {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown party type %q", s)
}

// Party is one side of a movement. An empty Id on a perspective means
// "every party of this type".
type Party struct {
	Tipo PartyType `json:"tipo"`
	Id   string    `json:"id"`
}

func (p Party) String() string {
	if p.Id == "" {
		return string(p.Tipo)
	}
	return string(p.Tipo) + ":" + p.Id
}

func (p Party) IsAggregate() bool {
	return p.Id == ""
}

// Includes reports whether other is covered by p when p is used as a perspective.
func (p Party) Includes(other Party) bool {
	if p.Tipo != other.Tipo {
		return false
	}
	return p.Id == "" || p.Id == other.Id
}

package models

import (
	"strconv"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/utils"
)

// ParsePartyPath reads the :tipo/:id pair of a route. An id of "all" or "*"
// selects every party of the type.
func ParsePartyPath(tipo, id string) (ledger.Party, error) {
	t, err := ledger.ParsePartyType(tipo)
	if err != nil {
		return ledger.Party{}, utils.NewValidationError("tipo", "%v", err)
	}
	if id == "all" || id == "*" {
		id = ""
	}
	if t != ledger.PartyRodMar && t != ledger.PartyBanco && id != "" {
		if _, err := strconv.Atoi(id); err != nil {
			return ledger.Party{}, utils.NewValidationError("id", "%s id must be numeric", t)
		}
	}
	return ledger.Party{Tipo: t, Id: id}, nil
}

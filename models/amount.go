package models

import (
	"bytes"
	"encoding/json"
	"errors"

	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/shopspring/decimal"
)

// Amount accepts a JSON number or a user-formatted string ("$ 1.500.000").
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return errors.New("invalid value")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		d, err := utils.ParseAmount(s)
		if err != nil {
			return err
		}
		a.Decimal = d
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

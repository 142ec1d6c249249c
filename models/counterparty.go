package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/utils"
)

type Mina struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Nombre    string    `gorm:"size:150;not null;uniqueIndex" json:"nombre"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Mina) TableName() string { return "minas" }

type Comprador struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Nombre    string    `gorm:"size:150;not null;uniqueIndex" json:"nombre"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Comprador) TableName() string { return "compradores" }

type Volquetero struct {
	ID        int       `gorm:"primary_key" json:"id"`
	Nombre    string    `gorm:"size:150;not null" json:"nombre"`
	Placa     string    `gorm:"size:20;not null;uniqueIndex" json:"placa"`
	Telefono  string    `gorm:"size:20" json:"telefono"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Volquetero) TableName() string { return "volqueteros" }

// RodMarCuenta is one of RodMar's own cash or bank accounts, addressed by code.
type RodMarCuenta struct {
	Codigo    string    `gorm:"primary_key;size:50" json:"codigo"`
	Nombre    string    `gorm:"size:150;not null" json:"nombre"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (RodMarCuenta) TableName() string { return "rodmar_cuentas" }

type NewMina struct {
	Nombre string `json:"nombre" validate:"required,max=150"`
}

type NewComprador struct {
	Nombre string `json:"nombre" validate:"required,max=150"`
}

type NewVolquetero struct {
	Nombre   string `json:"nombre" validate:"required,max=150"`
	Placa    string `json:"placa" validate:"required,max=20"`
	Telefono string `json:"telefono"`
}

type NewRodMarCuenta struct {
	Codigo string `json:"codigo" validate:"required,max=50"`
	Nombre string `json:"nombre" validate:"required,max=150"`
}

func (input *NewMina) validate(ctx context.Context) error {
	input.Nombre = strings.TrimSpace(input.Nombre)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	return utils.ValidateUnique[Mina](ctx, "nombre", input.Nombre, nil)
}

func (input *NewComprador) validate(ctx context.Context) error {
	input.Nombre = strings.TrimSpace(input.Nombre)
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	return utils.ValidateUnique[Comprador](ctx, "nombre", input.Nombre, nil)
}

func (input *NewVolquetero) validate(ctx context.Context) error {
	input.Nombre = strings.TrimSpace(input.Nombre)
	input.Placa = strings.ToUpper(strings.TrimSpace(input.Placa))
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if input.Telefono != "" {
		phone, err := utils.NormalizePhone(input.Telefono, config.DefaultPhoneRegion())
		if err != nil {
			return utils.NewValidationError("telefono", "%v", err)
		}
		input.Telefono = phone
	}
	return utils.ValidateUnique[Volquetero](ctx, "placa", input.Placa, nil)
}

func (input *NewRodMarCuenta) validate(ctx context.Context) error {
	input.Codigo = strings.ToLower(strings.TrimSpace(input.Codigo))
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	var count int64
	if err := config.GetDB().WithContext(ctx).Model(&RodMarCuenta{}).Where("codigo = ?", input.Codigo).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return utils.NewValidationError("codigo", "duplicate codigo")
	}
	return nil
}

func CreateMina(ctx context.Context, input *NewMina) (*Mina, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	mina := Mina{Nombre: input.Nombre}
	if err := config.GetDB().WithContext(ctx).Create(&mina).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Mina]()
	return &mina, nil
}

func CreateComprador(ctx context.Context, input *NewComprador) (*Comprador, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	comprador := Comprador{Nombre: input.Nombre}
	if err := config.GetDB().WithContext(ctx).Create(&comprador).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Comprador]()
	return &comprador, nil
}

func CreateVolquetero(ctx context.Context, input *NewVolquetero) (*Volquetero, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	volquetero := Volquetero{Nombre: input.Nombre, Placa: input.Placa, Telefono: input.Telefono}
	if err := config.GetDB().WithContext(ctx).Create(&volquetero).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[Volquetero]()
	return &volquetero, nil
}

func CreateRodMarCuenta(ctx context.Context, input *NewRodMarCuenta) (*RodMarCuenta, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	cuenta := RodMarCuenta{Codigo: input.Codigo, Nombre: input.Nombre}
	if err := config.GetDB().WithContext(ctx).Create(&cuenta).Error; err != nil {
		return nil, err
	}
	_ = utils.RemoveRedisList[RodMarCuenta]()
	return &cuenta, nil
}

// list all rows, redis first, cache result
func listCached[T any](ctx context.Context, orderBy string) ([]*T, error) {
	results, err := utils.RetrieveRedisList[T]()
	if err != nil {
		config.LogError(config.GetLogger(), "Counterparty", "listCached", "redis read failed", utils.GetTypeName[T](), err)
	}
	if results != nil {
		return results, nil
	}
	results, err = utils.FetchAllModels[T](ctx, orderBy)
	if err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList[T](results); err != nil {
		config.LogError(config.GetLogger(), "Counterparty", "listCached", "redis write failed", utils.GetTypeName[T](), err)
	}
	return results, nil
}

func ListMinas(ctx context.Context) ([]*Mina, error) {
	return listCached[Mina](ctx, "nombre")
}

func ListCompradores(ctx context.Context) ([]*Comprador, error) {
	return listCached[Comprador](ctx, "nombre")
}

func ListVolqueteros(ctx context.Context) ([]*Volquetero, error) {
	return listCached[Volquetero](ctx, "nombre")
}

func ListRodMarCuentas(ctx context.Context) ([]*RodMarCuenta, error) {
	return listCached[RodMarCuenta](ctx, "codigo")
}

// PartyNames maps every known counterparty to its display name.
func PartyNames(ctx context.Context) (map[ledger.Party]string, error) {
	names := map[ledger.Party]string{
		{Tipo: ledger.PartyRodMar}: "RodMar",
	}
	minas, err := ListMinas(ctx)
	if err != nil {
		return nil, err
	}
	for _, m := range minas {
		names[ledger.Party{Tipo: ledger.PartyMina, Id: strconv.Itoa(m.ID)}] = m.Nombre
	}
	compradores, err := ListCompradores(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range compradores {
		names[ledger.Party{Tipo: ledger.PartyComprador, Id: strconv.Itoa(c.ID)}] = c.Nombre
	}
	volqueteros, err := ListVolqueteros(ctx)
	if err != nil {
		return nil, err
	}
	for _, v := range volqueteros {
		names[ledger.Party{Tipo: ledger.PartyVolquetero, Id: strconv.Itoa(v.ID)}] = v.Nombre
	}
	cuentas, err := ListRodMarCuentas(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range cuentas {
		names[ledger.Party{Tipo: ledger.PartyRodMar, Id: c.Codigo}] = c.Nombre
	}
	return names, nil
}

// ValidateParty checks that p names an existing counterparty. Banco parties
// and the RodMar aggregate are free-form.
func ValidateParty(ctx context.Context, p ledger.Party) error {
	if p.Id == "" {
		return nil
	}
	var err error
	switch p.Tipo {
	case ledger.PartyMina:
		err = validateNumericParty[Mina](ctx, p.Id)
	case ledger.PartyComprador:
		err = validateNumericParty[Comprador](ctx, p.Id)
	case ledger.PartyVolquetero:
		err = validateNumericParty[Volquetero](ctx, p.Id)
	case ledger.PartyRodMar:
		var count int64
		if err = config.GetDB().WithContext(ctx).Model(&RodMarCuenta{}).Where("codigo = ?", p.Id).Count(&count).Error; err == nil && count == 0 {
			err = utils.ErrorRecordNotFound
		}
	}
	if errors.Is(err, utils.ErrorRecordNotFound) {
		return utils.NewValidationError("party", "%s does not exist", p)
	}
	return err
}

// validateNumericParty looks the row up in redis first. Counterparties are
// never deleted, so a cached row stays valid.
func validateNumericParty[T any](ctx context.Context, id string) error {
	n, err := strconv.Atoi(id)
	if err != nil {
		return utils.ErrorRecordNotFound
	}
	cached, err := utils.RetrieveRedis[T](id)
	if err != nil {
		config.LogError(config.GetLogger(), "Counterparty", "validateNumericParty", "redis read failed", utils.GetTypeName[T]()+":"+id, err)
	}
	if cached != nil {
		return nil
	}
	row, err := utils.FetchModel[T](ctx, n)
	if err != nil {
		return err
	}
	if err := utils.StoreRedis[T](row, id); err != nil {
		config.LogError(config.GetLogger(), "Counterparty", "validateNumericParty", "redis write failed", utils.GetTypeName[T]()+":"+id, err)
	}
	return nil
}

package models

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/daterange"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/shopspring/decimal"
)

var ErrAlreadyUnloaded = errors.New("viaje already unloaded")

type Viaje struct {
	ID               string          `gorm:"primary_key;size:50" json:"id"`
	FechaCargue      string          `gorm:"size:10;not null" json:"fechaCargue"`
	FechaDescargue   *string         `gorm:"size:10;index" json:"fechaDescargue"`
	Conductor        string          `gorm:"size:150" json:"conductor"`
	Placa            string          `gorm:"size:20;index" json:"placa"`
	MinaId           int             `gorm:"not null;index" json:"minaId"`
	CompradorId      *int            `gorm:"index" json:"compradorId"`
	VolqueteroId     *int            `gorm:"index" json:"volqueteroId"`
	Peso             decimal.Decimal `gorm:"type:decimal(20,3);not null;default:0" json:"peso"`
	PrecioCompraTon  decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"precioCompraTon"`
	VentaTon         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"ventaTon"`
	FleteTon         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"fleteTon"`
	OtrosGastosFlete decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"otrosGastosFlete"`
	TotalCompra      decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"totalCompra"`
	TotalVenta       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"totalVenta"`
	TotalFlete       decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"totalFlete"`
	ValorConsignar   decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"valorConsignar"`
	Ganancia         decimal.Decimal `gorm:"type:decimal(20,2);not null;default:0" json:"ganancia"`
	QuienPagaFlete   QuienPagaFlete  `gorm:"size:20;not null;default:RodMar" json:"quienPagaFlete"`
	Estado           EstadoViaje     `gorm:"size:20;not null;default:pendiente;index" json:"estado"`
	Oculta           bool            `gorm:"not null;default:false" json:"oculta"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Viaje) TableName() string { return "viajes" }

type NewViaje struct {
	ID               string `json:"id" validate:"required,max=50"`
	FechaCargue      string `json:"fechaCargue" validate:"required"`
	Conductor        string `json:"conductor" validate:"max=150"`
	Placa            string `json:"placa" validate:"max=20"`
	MinaId           int    `json:"minaId" validate:"required,gt=0"`
	CompradorId      *int   `json:"compradorId"`
	VolqueteroId     *int   `json:"volqueteroId"`
	Peso             Amount `json:"peso"`
	PrecioCompraTon  Amount `json:"precioCompraTon"`
	VentaTon         Amount `json:"ventaTon"`
	FleteTon         Amount `json:"fleteTon"`
	OtrosGastosFlete Amount `json:"otrosGastosFlete"`
	QuienPagaFlete   string `json:"quienPagaFlete"`
}

// Descargue completes a trip once the load reaches the buyer.
type Descargue struct {
	FechaDescargue string  `json:"fechaDescargue" validate:"required"`
	CompradorId    *int    `json:"compradorId"`
	Peso           *Amount `json:"peso"`
	VentaTon       *Amount `json:"ventaTon"`
}

// CalculateTotals derives the monetary totals from weight and per-ton prices.
func (v *Viaje) CalculateTotals() {
	v.TotalCompra = v.Peso.Mul(v.PrecioCompraTon).Round(2)
	v.TotalVenta = v.Peso.Mul(v.VentaTon).Round(2)
	v.TotalFlete = v.Peso.Mul(v.FleteTon).Add(v.OtrosGastosFlete).Round(2)
	if v.QuienPagaFlete == QuienPagaFleteComprador {
		v.ValorConsignar = v.TotalVenta.Sub(v.TotalFlete)
	} else {
		v.ValorConsignar = v.TotalVenta
	}
	v.Ganancia = v.TotalVenta.Sub(v.TotalCompra).Sub(v.TotalFlete)
}

func idString(id *int) string {
	if id == nil || *id == 0 {
		return ""
	}
	return strconv.Itoa(*id)
}

func (v Viaje) ToTrip() ledger.Trip {
	return ledger.Trip{
		ID:             v.ID,
		FechaDescargue: utils.DereferencePtr(v.FechaDescargue),
		Estado:         string(v.Estado),
		MinaId:         strconv.Itoa(v.MinaId),
		CompradorId:    idString(v.CompradorId),
		VolqueteroId:   idString(v.VolqueteroId),
		Conductor:      v.Conductor,
		Placa:          v.Placa,
		TotalCompra:    v.TotalCompra,
		TotalVenta:     v.TotalVenta,
		TotalFlete:     v.TotalFlete,
		ValorConsignar: v.ValorConsignar,
		QuienPagaFlete: string(v.QuienPagaFlete),
		Hidden:         v.Oculta,
	}
}

func ToTrips(viajes []*Viaje) []ledger.Trip {
	trips := make([]ledger.Trip, 0, len(viajes))
	for _, v := range viajes {
		trips = append(trips, v.ToTrip())
	}
	return trips
}

func nonNegative(field string, a Amount) error {
	if a.IsNegative() {
		return utils.NewValidationError(field, "must not be negative")
	}
	return nil
}

func (input *NewViaje) validate(ctx context.Context) error {
	input.ID = strings.ToUpper(strings.TrimSpace(input.ID))
	input.Placa = strings.ToUpper(strings.TrimSpace(input.Placa))
	if err := utils.ValidateStruct(input); err != nil {
		return err
	}
	if daterange.Day(input.FechaCargue) == "" {
		return utils.NewValidationError("fechaCargue", "%v", ErrInvalidFecha)
	}
	amounts := map[string]Amount{
		"peso":             input.Peso,
		"precioCompraTon":  input.PrecioCompraTon,
		"ventaTon":         input.VentaTon,
		"fleteTon":         input.FleteTon,
		"otrosGastosFlete": input.OtrosGastosFlete,
	}
	for field, a := range amounts {
		if err := nonNegative(field, a); err != nil {
			return err
		}
	}
	if _, err := ParseQuienPagaFlete(input.QuienPagaFlete); err != nil {
		return utils.NewValidationError("quienPagaFlete", "%v", err)
	}
	if err := utils.ValidateUnique[Viaje](ctx, "id", input.ID, nil); err != nil {
		return err
	}
	parties := []ledger.Party{{Tipo: ledger.PartyMina, Id: strconv.Itoa(input.MinaId)}}
	if id := idString(input.CompradorId); id != "" {
		parties = append(parties, ledger.Party{Tipo: ledger.PartyComprador, Id: id})
	}
	if id := idString(input.VolqueteroId); id != "" {
		parties = append(parties, ledger.Party{Tipo: ledger.PartyVolquetero, Id: id})
	}
	for _, p := range parties {
		if err := ValidateParty(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

func CreateViaje(ctx context.Context, input *NewViaje) (*Viaje, error) {
	if err := input.validate(ctx); err != nil {
		return nil, err
	}
	quien, _ := ParseQuienPagaFlete(input.QuienPagaFlete)
	viaje := Viaje{
		ID:               input.ID,
		FechaCargue:      daterange.Day(input.FechaCargue),
		Conductor:        strings.TrimSpace(input.Conductor),
		Placa:            input.Placa,
		MinaId:           input.MinaId,
		CompradorId:      input.CompradorId,
		VolqueteroId:     input.VolqueteroId,
		Peso:             input.Peso.Decimal,
		PrecioCompraTon:  input.PrecioCompraTon.Decimal,
		VentaTon:         input.VentaTon.Decimal,
		FleteTon:         input.FleteTon.Decimal,
		OtrosGastosFlete: input.OtrosGastosFlete.Decimal,
		QuienPagaFlete:   quien,
		Estado:           EstadoViajePendiente,
	}
	viaje.CalculateTotals()
	if err := config.GetDB().WithContext(ctx).Create(&viaje).Error; err != nil {
		return nil, err
	}
	return &viaje, nil
}

func GetViaje(ctx context.Context, id string) (*Viaje, error) {
	return utils.FetchModel[Viaje](ctx, strings.ToUpper(strings.TrimSpace(id)))
}

// UnloadViaje records the unload date, recalculates totals and marks the trip
// completado. From then on it feeds the counterparties' balances.
func UnloadViaje(ctx context.Context, id string, input *Descargue) (*Viaje, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	fecha := daterange.Day(input.FechaDescargue)
	if fecha == "" {
		return nil, utils.NewValidationError("fechaDescargue", "%v", ErrInvalidFecha)
	}
	viaje, err := GetViaje(ctx, id)
	if err != nil {
		return nil, err
	}
	if viaje.Estado == EstadoViajeCompletado {
		return nil, utils.NewValidationError("estado", "%v", ErrAlreadyUnloaded)
	}
	if input.CompradorId != nil {
		if err := ValidateParty(ctx, ledger.Party{Tipo: ledger.PartyComprador, Id: idString(input.CompradorId)}); err != nil {
			return nil, err
		}
		viaje.CompradorId = input.CompradorId
	}
	if input.Peso != nil {
		if err := nonNegative("peso", *input.Peso); err != nil {
			return nil, err
		}
		viaje.Peso = input.Peso.Decimal
	}
	if input.VentaTon != nil {
		if err := nonNegative("ventaTon", *input.VentaTon); err != nil {
			return nil, err
		}
		viaje.VentaTon = input.VentaTon.Decimal
	}
	if viaje.CompradorId == nil {
		return nil, utils.NewValidationError("compradorId", "is required to unload")
	}
	viaje.FechaDescargue = &fecha
	viaje.Estado = EstadoViajeCompletado
	viaje.CalculateTotals()
	if err := config.GetDB().WithContext(ctx).Save(viaje).Error; err != nil {
		return nil, err
	}
	return viaje, nil
}

func HideViaje(ctx context.Context, id string) (*Viaje, error) {
	id = strings.ToUpper(strings.TrimSpace(id))
	if err := utils.ValidateResourceId[Viaje](ctx, id); err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Model(&Viaje{}).Where("id = ?", id).Update("oculta", true).Error; err != nil {
		return nil, err
	}
	return GetViaje(ctx, id)
}

func ShowAllHiddenViajes(ctx context.Context) (int64, error) {
	result := config.GetDB().WithContext(ctx).Model(&Viaje{}).Where("oculta = ?", true).Update("oculta", false)
	return result.RowsAffected, result.Error
}

func ListViajes(ctx context.Context, includeHidden bool, page, limit int) (*PaginatedResult[Viaje], error) {
	query := config.GetDB().WithContext(ctx).Model(&Viaje{})
	if !includeHidden {
		query = query.Where("oculta = ?", false)
	}
	return paginateQuery[Viaje](query, "fecha_cargue DESC, id DESC", page, limit)
}

// ViajesForParty returns the trips a counterparty takes part in. The RodMar
// aggregate sees every trip, banks and single RodMar accounts none.
func ViajesForParty(ctx context.Context, p ledger.Party) ([]*Viaje, error) {
	query := config.GetDB().WithContext(ctx).Model(&Viaje{})
	column := ""
	switch p.Tipo {
	case ledger.PartyBanco:
		return []*Viaje{}, nil
	case ledger.PartyRodMar:
		if !p.IsAggregate() {
			return []*Viaje{}, nil
		}
	case ledger.PartyMina:
		column = "mina_id"
	case ledger.PartyComprador:
		column = "comprador_id"
	case ledger.PartyVolquetero:
		column = "volquetero_id"
	}
	if column != "" {
		if p.IsAggregate() {
			query = query.Where(column + " IS NOT NULL")
		} else {
			n, err := strconv.Atoi(p.Id)
			if err != nil {
				return []*Viaje{}, nil
			}
			query = query.Where(column+" = ?", n)
		}
	}
	var results []*Viaje
	if err := query.Order("fecha_descargue DESC").Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

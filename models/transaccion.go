package models

import (
	"context"
	"errors"
	"strings"
	"time"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/daterange"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrInvalidParty  = errors.New("invalid party")
	ErrInvalidAmount = errors.New("valor must be greater than zero")
	ErrInvalidFecha  = errors.New("fecha must be a YYYY-MM-DD date")
	ErrSelfPayment   = errors.New("a party cannot pay itself")
	ErrNotPending    = errors.New("transaccion is not pendiente")
)

type Transaccion struct {
	ID                 int               `gorm:"primary_key" json:"id"`
	Concepto           string            `gorm:"size:255" json:"concepto"`
	Valor              decimal.Decimal   `gorm:"type:decimal(20,2);not null" json:"valor"`
	Fecha              string            `gorm:"size:10;not null;index" json:"fecha"`
	DeQuienTipo        ledger.PartyType  `gorm:"size:20;not null;index:idx_transacciones_de_quien" json:"deQuienTipo"`
	DeQuienId          string            `gorm:"size:50;index:idx_transacciones_de_quien" json:"deQuienId"`
	ParaQuienTipo      ledger.PartyType  `gorm:"size:20;not null;index:idx_transacciones_para_quien" json:"paraQuienTipo"`
	ParaQuienId        string            `gorm:"size:50;index:idx_transacciones_para_quien" json:"paraQuienId"`
	FormaPago          string            `gorm:"size:50" json:"formaPago"`
	Comentario         string            `gorm:"type:text" json:"comentario"`
	Tipo               ledger.Kind       `gorm:"size:20;not null;default:Manual" json:"tipo"`
	Estado             EstadoTransaccion `gorm:"size:20;not null;default:completada;index" json:"estado"`
	Oculta             bool              `gorm:"column:oculta;not null;default:false" json:"oculta"`
	OcultaEnMina       bool              `gorm:"column:oculta_en_mina;not null;default:false" json:"ocultaEnMina"`
	OcultaEnComprador  bool              `gorm:"column:oculta_en_comprador;not null;default:false" json:"ocultaEnComprador"`
	OcultaEnVolquetero bool              `gorm:"column:oculta_en_volquetero;not null;default:false" json:"ocultaEnVolquetero"`
	OcultaEnRodMar     bool              `gorm:"column:oculta_en_rodmar;not null;default:false" json:"ocultaEnRodMar"`
	CreatedAt          time.Time         `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt          time.Time         `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Transaccion) TableName() string { return "transacciones" }

type NewTransaccion struct {
	Concepto      string `json:"concepto" validate:"max=255"`
	Valor         Amount `json:"valor"`
	Fecha         string `json:"fecha" validate:"required"`
	DeQuienTipo   string `json:"deQuienTipo" validate:"required"`
	DeQuienId     string `json:"deQuienId" validate:"max=50"`
	ParaQuienTipo string `json:"paraQuienTipo" validate:"required"`
	ParaQuienId   string `json:"paraQuienId" validate:"max=50"`
	FormaPago     string `json:"formaPago" validate:"max=50"`
	Comentario    string `json:"comentario"`
	Estado        string `json:"estado"`
}

func (t Transaccion) DeQuien() ledger.Party {
	return ledger.Party{Tipo: t.DeQuienTipo, Id: t.DeQuienId}
}

func (t Transaccion) ParaQuien() ledger.Party {
	return ledger.Party{Tipo: t.ParaQuienTipo, Id: t.ParaQuienId}
}

// HiddenIn reports whether the row is hidden from modulo's list.
func (t Transaccion) HiddenIn(modulo Modulo) bool {
	if t.Oculta {
		return true
	}
	switch modulo {
	case ModuloMina:
		return t.OcultaEnMina
	case ModuloComprador:
		return t.OcultaEnComprador
	case ModuloVolquetero:
		return t.OcultaEnVolquetero
	case ModuloRodMar:
		return t.OcultaEnRodMar
	}
	return false
}

// ToEntry converts the row for the balance functions, resolving party names
// from names when given.
func (t Transaccion) ToEntry(modulo Modulo, names map[ledger.Party]string) ledger.Entry {
	status := ledger.StatusCompletada
	if t.Estado == EstadoTransaccionPendiente {
		status = ledger.StatusPendiente
	}
	return ledger.Entry{
		ID:              ledger.ManualEntryID(t.ID),
		Kind:            ledger.KindManual,
		Valor:           t.Valor,
		Fecha:           daterange.Day(t.Fecha),
		DeQuien:         t.DeQuien(),
		ParaQuien:       t.ParaQuien(),
		Estado:          status,
		Hidden:          t.HiddenIn(modulo),
		Concepto:        t.Concepto,
		Comentario:      t.Comentario,
		FormaPago:       t.FormaPago,
		DeQuienNombre:   names[t.DeQuien()],
		ParaQuienNombre: names[t.ParaQuien()],
	}
}

func parseParty(field, tipo, id string) (ledger.Party, error) {
	pt, err := ledger.ParsePartyType(tipo)
	if err != nil {
		return ledger.Party{}, utils.NewValidationError(field, "%v", err)
	}
	id = strings.TrimSpace(id)
	if id == "" && pt != ledger.PartyRodMar && pt != ledger.PartyBanco {
		return ledger.Party{}, utils.NewValidationError(field, "%v: id is required for %s", ErrInvalidParty, pt)
	}
	return ledger.Party{Tipo: pt, Id: id}, nil
}

// normalize validates input and returns the row it describes.
func (input *NewTransaccion) normalize(ctx context.Context) (*Transaccion, error) {
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	fecha := daterange.Day(input.Fecha)
	if fecha == "" {
		return nil, utils.NewValidationError("fecha", "%v", ErrInvalidFecha)
	}
	valor := input.Valor.Abs()
	if !valor.IsPositive() {
		return nil, utils.NewValidationError("valor", "%v", ErrInvalidAmount)
	}
	de, err := parseParty("deQuien", input.DeQuienTipo, input.DeQuienId)
	if err != nil {
		return nil, err
	}
	para, err := parseParty("paraQuien", input.ParaQuienTipo, input.ParaQuienId)
	if err != nil {
		return nil, err
	}
	if de == para {
		return nil, utils.NewValidationError("paraQuien", "%v", ErrSelfPayment)
	}
	for _, p := range []ledger.Party{de, para} {
		if err := ValidateParty(ctx, p); err != nil {
			return nil, err
		}
	}
	estado, err := ParseEstadoTransaccion(input.Estado)
	if err != nil {
		return nil, utils.NewValidationError("estado", "%v", err)
	}
	return &Transaccion{
		Concepto:      strings.TrimSpace(input.Concepto),
		Valor:         valor,
		Fecha:         fecha,
		DeQuienTipo:   de.Tipo,
		DeQuienId:     de.Id,
		ParaQuienTipo: para.Tipo,
		ParaQuienId:   para.Id,
		FormaPago:     strings.TrimSpace(input.FormaPago),
		Comentario:    input.Comentario,
		Tipo:          ledger.KindManual,
		Estado:        estado,
	}, nil
}

func CreateTransaccion(ctx context.Context, input *NewTransaccion) (*Transaccion, error) {
	transaccion, err := input.normalize(ctx)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Create(transaccion).Error; err != nil {
		return nil, err
	}
	return transaccion, nil
}

func UpdateTransaccion(ctx context.Context, id int, input *NewTransaccion) (*Transaccion, error) {
	db := config.GetDB()
	existing, err := utils.FetchModel[Transaccion](ctx, id)
	if err != nil {
		return nil, err
	}
	updated, err := input.normalize(ctx)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(existing).Updates(map[string]interface{}{
		"Concepto":      updated.Concepto,
		"Valor":         updated.Valor,
		"Fecha":         updated.Fecha,
		"DeQuienTipo":   updated.DeQuienTipo,
		"DeQuienId":     updated.DeQuienId,
		"ParaQuienTipo": updated.ParaQuienTipo,
		"ParaQuienId":   updated.ParaQuienId,
		"FormaPago":     updated.FormaPago,
		"Comentario":    updated.Comentario,
		"Estado":        updated.Estado,
	}).Error; err != nil {
		return nil, err
	}
	return utils.FetchModel[Transaccion](ctx, id)
}

func DeleteTransaccion(ctx context.Context, id int) (*Transaccion, error) {
	transaccion, err := utils.FetchModel[Transaccion](ctx, id)
	if err != nil {
		return nil, err
	}
	if err := config.GetDB().WithContext(ctx).Delete(transaccion).Error; err != nil {
		return nil, err
	}
	return transaccion, nil
}

func GetTransaccion(ctx context.Context, id int) (*Transaccion, error) {
	return utils.FetchModel[Transaccion](ctx, id)
}

// BulkDeleteTransacciones deletes every id or none of them.
func BulkDeleteTransacciones(ctx context.Context, ids []int) ([]*Transaccion, error) {
	ids = utils.UniqueSlice(ids)
	if len(ids) == 0 {
		return nil, utils.NewValidationError("ids", "at least one id is required")
	}
	if err := utils.ValidateResourcesId[Transaccion](ctx, ids); err != nil {
		return nil, err
	}
	var deleted []*Transaccion
	err := config.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id IN ?", ids).Find(&deleted).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&Transaccion{})
		if result.Error != nil {
			return result.Error
		}
		// a row removed concurrently since the check rolls the whole batch back
		if result.RowsAffected != int64(len(ids)) {
			return utils.ErrorRecordNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// CompleteTransaccion moves a pendiente row to completada, after which it
// counts in balances.
func CompleteTransaccion(ctx context.Context, id int) (*Transaccion, error) {
	transaccion, err := utils.FetchModel[Transaccion](ctx, id)
	if err != nil {
		return nil, err
	}
	if transaccion.Estado != EstadoTransaccionPendiente {
		return nil, utils.NewValidationError("estado", "%v", ErrNotPending)
	}
	if err := config.GetDB().WithContext(ctx).Model(transaccion).Update("estado", EstadoTransaccionCompletada).Error; err != nil {
		return nil, err
	}
	transaccion.Estado = EstadoTransaccionCompletada
	return transaccion, nil
}

// HideTransaccion sets the visibility flag of modulo in a single UPDATE, so a
// failure leaves the row untouched.
func HideTransaccion(ctx context.Context, id int, modulo Modulo) (*Transaccion, error) {
	db := config.GetDB()
	result := db.WithContext(ctx).Model(&Transaccion{}).Where("id = ?", id).Update(modulo.hiddenColumn(), true)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		if err := utils.ValidateResourceId[Transaccion](ctx, id); err != nil {
			return nil, err
		}
	}
	return utils.FetchModel[Transaccion](ctx, id)
}

// ShowAllHiddenTransacciones clears modulo's flag on every row touching party,
// or on every row when party is nil.
func ShowAllHiddenTransacciones(ctx context.Context, modulo Modulo, party *ledger.Party) (int64, error) {
	column := modulo.hiddenColumn()
	query := config.GetDB().WithContext(ctx).Model(&Transaccion{}).Where(column+" = ?", true)
	if party != nil {
		query = query.Where(partyCondition(config.GetDB(), *party))
	}
	result := query.Update(column, false)
	return result.RowsAffected, result.Error
}

// partyCondition matches rows where party is either side.
func partyCondition(db *gorm.DB, p ledger.Party) *gorm.DB {
	if p.IsAggregate() {
		return db.Where("de_quien_tipo = ?", p.Tipo).Or("para_quien_tipo = ?", p.Tipo)
	}
	return db.Where("de_quien_tipo = ? AND de_quien_id = ?", p.Tipo, p.Id).
		Or("para_quien_tipo = ? AND para_quien_id = ?", p.Tipo, p.Id)
}

// TransaccionesForParty returns every row touching party, hidden and pending
// ones included, newest first.
func TransaccionesForParty(ctx context.Context, p ledger.Party) ([]*Transaccion, error) {
	db := config.GetDB()
	var results []*Transaccion
	err := db.WithContext(ctx).Where(partyCondition(db, p)).
		Order("fecha DESC").Order("id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// AllTransacciones returns every row, used for the RodMar-wide summaries.
func AllTransacciones(ctx context.Context) ([]*Transaccion, error) {
	var results []*Transaccion
	if err := config.GetDB().WithContext(ctx).Order("fecha DESC").Order("id DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type TransaccionFilter struct {
	Range         *daterange.Range
	IncludeHidden bool
	Modulo        Modulo
	Estado        EstadoTransaccion
}

func ListTransacciones(ctx context.Context, filter TransaccionFilter, page, limit int) (*PaginatedResult[Transaccion], error) {
	query := config.GetDB().WithContext(ctx).Model(&Transaccion{})
	if filter.Range != nil {
		query = query.Where("fecha BETWEEN ? AND ?", filter.Range.Start, filter.Range.End)
	}
	if !filter.IncludeHidden {
		query = query.Where("oculta = ?", false)
		if filter.Modulo != "" && filter.Modulo != ModuloGeneral {
			query = query.Where(filter.Modulo.hiddenColumn()+" = ?", false)
		}
	}
	if filter.Estado != "" {
		query = query.Where("estado = ?", filter.Estado)
	}
	return paginateQuery[Transaccion](query, "fecha DESC, id DESC", page, limit)
}

func ListPendientes(ctx context.Context) ([]*Transaccion, error) {
	var results []*Transaccion
	err := config.GetDB().WithContext(ctx).
		Where("estado = ?", EstadoTransaccionPendiente).
		Order("fecha DESC").Order("id DESC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// Temporal validates input like a persisted row and returns it as an unsaved
// entry for a view session.
func (input *NewTransaccion) Temporal(ctx context.Context) (ledger.Entry, error) {
	transaccion, err := input.normalize(ctx)
	if err != nil {
		return ledger.Entry{}, err
	}
	e := transaccion.ToEntry(ModuloGeneral, nil)
	e.ID = ""
	e.Kind = ledger.KindTemporal
	return e, nil
}

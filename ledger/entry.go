package ledger

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind tags where an entry came from.
type Kind string

const (
	KindManual   Kind = "Manual"
	KindViaje    Kind = "Viaje"
	KindTemporal Kind = "Temporal"
)

type Status string

const (
	StatusPendiente  Status = "pendiente"
	StatusCompletada Status = "completada"
)

const (
	viajeIdPrefix    = "viaje-"
	temporalIdPrefix = "temporal-"
)

// Entry is a transaction-like record as seen by the balance functions:
// persisted manual transactions, trip-derived pseudo-transactions and
// session-only temporal ones all look the same here.
type Entry struct {
	ID              string          `json:"id"`
	Kind            Kind            `json:"tipo"`
	Valor           decimal.Decimal `json:"valor"`
	Fecha           string          `json:"fecha"`
	DeQuien         Party           `json:"deQuien"`
	ParaQuien       Party           `json:"paraQuien"`
	Estado          Status          `json:"estado"`
	Hidden          bool            `json:"oculta"`
	Concepto        string          `json:"concepto"`
	Comentario      string          `json:"comentario"`
	FormaPago       string          `json:"formaPago"`
	DeQuienNombre   string          `json:"deQuienNombre"`
	ParaQuienNombre string          `json:"paraQuienNombre"`
}

func (e Entry) IsPending() bool {
	return e.Estado == StatusPendiente
}

// Amount is the unsigned magnitude; the sign comes from the perspective.
func (e Entry) Amount() decimal.Decimal {
	return e.Valor.Abs()
}

func ManualEntryID(id int) string {
	return strconv.Itoa(id)
}

func TripEntryID(tripId string) string {
	return viajeIdPrefix + tripId
}

func TemporalEntryID(stamp int64) string {
	return temporalIdPrefix + strconv.FormatInt(stamp, 10)
}

// ParseEntryID classifies an entry id and returns the id of the underlying
// record (transaction id, trip id or timestamp). ok is false for ids that
// match none of the three shapes.
func ParseEntryID(id string) (kind Kind, ref string, ok bool) {
	switch {
	case strings.HasPrefix(id, viajeIdPrefix):
		ref = strings.TrimPrefix(id, viajeIdPrefix)
		return KindViaje, ref, ref != ""
	case strings.HasPrefix(id, temporalIdPrefix):
		ref = strings.TrimPrefix(id, temporalIdPrefix)
		if _, err := strconv.ParseInt(ref, 10, 64); err != nil {
			return KindTemporal, ref, false
		}
		return KindTemporal, ref, true
	default:
		if _, err := strconv.Atoi(id); err != nil {
			return "", id, false
		}
		return KindManual, id, true
	}
}

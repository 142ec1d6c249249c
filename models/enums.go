package models

import (
	"errors"
	"strings"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
)

type EstadoTransaccion string

const (
	EstadoTransaccionPendiente  EstadoTransaccion = "pendiente"
	EstadoTransaccionCompletada EstadoTransaccion = "completada"
)

// convert input to enum type, empty means completada
func ParseEstadoTransaccion(s string) (EstadoTransaccion, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "completada":
		return EstadoTransaccionCompletada, nil
	case "pendiente":
		return EstadoTransaccionPendiente, nil
	default:
		return "", errors.New("invalid estado")
	}
}

type EstadoViaje string

const (
	EstadoViajePendiente  EstadoViaje = "pendiente"
	EstadoViajeCompletado EstadoViaje = EstadoViaje(ledger.TripCompletado)
)

type QuienPagaFlete string

const (
	QuienPagaFleteRodMar    QuienPagaFlete = "RodMar"
	QuienPagaFleteComprador QuienPagaFlete = "comprador"
)

func ParseQuienPagaFlete(s string) (QuienPagaFlete, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rodmar":
		return QuienPagaFleteRodMar, nil
	case "comprador", "el comprador":
		return QuienPagaFleteComprador, nil
	default:
		return "", errors.New("invalid quienPagaFlete")
	}
}

// Modulo names the screen a transaction is hidden from. ModuloGeneral is the
// plain "oculta" flag.
type Modulo string

const (
	ModuloGeneral    Modulo = "general"
	ModuloMina       Modulo = "mina"
	ModuloComprador  Modulo = "comprador"
	ModuloVolquetero Modulo = "volquetero"
	ModuloRodMar     Modulo = "rodmar"
)

func ParseModulo(s string) (Modulo, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "general":
		return ModuloGeneral, nil
	case "mina", "minas":
		return ModuloMina, nil
	case "comprador", "compradores":
		return ModuloComprador, nil
	case "volquetero", "volqueteros":
		return ModuloVolquetero, nil
	case "rodmar", "banco":
		return ModuloRodMar, nil
	default:
		return "", errors.New("invalid modulo")
	}
}

// ModuloFor is the screen that lists a counterparty of type t.
func ModuloFor(t ledger.PartyType) Modulo {
	switch t {
	case ledger.PartyMina:
		return ModuloMina
	case ledger.PartyComprador:
		return ModuloComprador
	case ledger.PartyVolquetero:
		return ModuloVolquetero
	case ledger.PartyRodMar, ledger.PartyBanco:
		return ModuloRodMar
	default:
		return ModuloGeneral
	}
}

// column holding the visibility flag of m
func (m Modulo) hiddenColumn() string {
	switch m {
	case ModuloMina:
		return "oculta_en_mina"
	case ModuloComprador:
		return "oculta_en_comprador"
	case ModuloVolquetero:
		return "oculta_en_volquetero"
	case ModuloRodMar:
		return "oculta_en_rodmar"
	default:
		return "oculta"
	}
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleOperator UserRole = "operator"
)

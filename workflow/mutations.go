// Package workflow runs the mutations of the ledger: each one persists through
// models, drops the cached reports and tells websocket clients what changed.
package workflow

import (
	"context"
	"strconv"

	"bitbucket.org/rodmar/rodmar_backend/config"
	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/models/reports"
	"bitbucket.org/rodmar/rodmar_backend/notify"
	"bitbucket.org/rodmar/rodmar_backend/utils"
)

// Notifier receives change events. *notify.Hub is the production one.
type Notifier interface {
	Publish(event notify.Event)
}

var notifier Notifier

func SetNotifier(n Notifier) {
	notifier = n
}

// changed runs after every successful mutation. Neither a cache nor a
// notification failure undoes the mutation.
func changed(ctx context.Context, event notify.Event) {
	if userId, ok := utils.GetUserIdFromContext(ctx); ok {
		event.UserId = userId
	}
	if err := reports.InvalidateReportCache(); err != nil {
		config.LogError(config.GetLogger(), "workflow/mutations.go", "changed", "InvalidateReportCache", event.Type, err)
	}
	if notifier != nil {
		notifier.Publish(event)
	}
}

func transaccionIds(rows ...*models.Transaccion) []string {
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, strconv.Itoa(row.ID))
	}
	return ids
}

func CreateTransaccion(ctx context.Context, input *models.NewTransaccion) (*models.Transaccion, error) {
	transaccion, err := models.CreateTransaccion(ctx, input)
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.TransaccionCreated, Ids: transaccionIds(transaccion)})
	return transaccion, nil
}

func UpdateTransaccion(ctx context.Context, id int, input *models.NewTransaccion) (*models.Transaccion, error) {
	var transaccion *models.Transaccion
	err := utils.WithLock(ctx, "transaccion", strconv.Itoa(id), "workflow/mutations.go", "UpdateTransaccion", func() error {
		var err error
		transaccion, err = models.UpdateTransaccion(ctx, id, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.TransaccionUpdated, Ids: transaccionIds(transaccion)})
	return transaccion, nil
}

func DeleteTransaccion(ctx context.Context, id int) (*models.Transaccion, error) {
	transaccion, err := models.DeleteTransaccion(ctx, id)
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.TransaccionDeleted, Ids: transaccionIds(transaccion)})
	return transaccion, nil
}

// BulkDeleteTransacciones deletes every id or, when one is missing, none.
func BulkDeleteTransacciones(ctx context.Context, ids []int) ([]*models.Transaccion, error) {
	var deleted []*models.Transaccion
	err := utils.WithLock(ctx, "transacciones", "bulk-delete", "workflow/mutations.go", "BulkDeleteTransacciones", func() error {
		var err error
		deleted, err = models.BulkDeleteTransacciones(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.TransaccionDeleted, Ids: transaccionIds(deleted...)})
	return deleted, nil
}

func CompleteTransaccion(ctx context.Context, id int) (*models.Transaccion, error) {
	var transaccion *models.Transaccion
	err := utils.WithLock(ctx, "transaccion", strconv.Itoa(id), "workflow/mutations.go", "CompleteTransaccion", func() error {
		var err error
		transaccion, err = models.CompleteTransaccion(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.TransaccionCompleted, Ids: transaccionIds(transaccion)})
	return transaccion, nil
}

// HideTransaccion returns the row after the update so a client that hid it
// optimistically can reconcile.
func HideTransaccion(ctx context.Context, id int, modulo models.Modulo) (*models.Transaccion, error) {
	transaccion, err := models.HideTransaccion(ctx, id, modulo)
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.TransaccionHidden, Ids: transaccionIds(transaccion), Modulo: string(modulo)})
	return transaccion, nil
}

// ShowAllHiddenTransacciones restores every row hidden in modulo, limited to
// party when given. It returns the number of rows restored.
func ShowAllHiddenTransacciones(ctx context.Context, modulo models.Modulo, party *ledger.Party) (int64, error) {
	key := string(modulo)
	if party != nil {
		key += ":" + party.String()
	}
	var n int64
	err := utils.WithLock(ctx, "show-all-hidden", key, "workflow/mutations.go", "ShowAllHiddenTransacciones", func() error {
		var err error
		n, err = models.ShowAllHiddenTransacciones(ctx, modulo, party)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		changed(ctx, notify.Event{Type: notify.TransaccionShown, Modulo: string(modulo)})
	}
	return n, nil
}

func CreateViaje(ctx context.Context, input *models.NewViaje) (*models.Viaje, error) {
	viaje, err := models.CreateViaje(ctx, input)
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.ViajeCreated, Ids: []string{viaje.ID}})
	return viaje, nil
}

// UnloadViaje completes a trip; two concurrent unloads of the same trip
// serialize on its lock and the second one fails as already unloaded.
func UnloadViaje(ctx context.Context, id string, input *models.Descargue) (*models.Viaje, error) {
	var viaje *models.Viaje
	err := utils.WithLock(ctx, "viaje", id, "workflow/mutations.go", "UnloadViaje", func() error {
		var err error
		viaje, err = models.UnloadViaje(ctx, id, input)
		return err
	})
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.ViajeUnloaded, Ids: []string{viaje.ID}})
	return viaje, nil
}

func HideViaje(ctx context.Context, id string) (*models.Viaje, error) {
	viaje, err := models.HideViaje(ctx, id)
	if err != nil {
		return nil, err
	}
	changed(ctx, notify.Event{Type: notify.ViajeHidden, Ids: []string{viaje.ID}})
	return viaje, nil
}

func ShowAllHiddenViajes(ctx context.Context) (int64, error) {
	var n int64
	err := utils.WithLock(ctx, "show-all-hidden", "viajes", "workflow/mutations.go", "ShowAllHiddenViajes", func() error {
		var err error
		n, err = models.ShowAllHiddenViajes(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	if n > 0 {
		changed(ctx, notify.Event{Type: notify.ViajeShown})
	}
	return n, nil
}

// CounterpartyCreated announces a new mina, comprador, volquetero or account
// so clients refresh their pickers.
func CounterpartyCreated(ctx context.Context, tipo ledger.PartyType, id string) {
	changed(ctx, notify.Event{Type: notify.CounterpartyCreated, Ids: []string{id}, Modulo: string(tipo)})
}

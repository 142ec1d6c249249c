package models

import (
	"log"

	"bitbucket.org/rodmar/rodmar_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Comprador{},
		&Mina{},
		&RodMarCuenta{},
		&Transaccion{},
		&User{},
		&Viaje{},
		&Volquetero{},
	)
	if err != nil {
		log.Fatal(err)
	}
}

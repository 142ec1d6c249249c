package main

import (
	"net/http"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/workflow"
	"github.com/gin-gonic/gin"
)

func listTransaccionesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := pageQuery(c)
		if err != nil {
			respondError(c, "listTransaccionesHandler", err)
			return
		}
		r, err := dateRangeQuery(c)
		if err != nil {
			respondError(c, "listTransaccionesHandler", err)
			return
		}
		modulo, err := models.ParseModulo(c.Query("modulo"))
		if err != nil {
			badRequest(c, err)
			return
		}
		result, err := models.ListTransacciones(c.Request.Context(), models.TransaccionFilter{
			Range:         r,
			IncludeHidden: boolQuery(c, "includeHidden"),
			Modulo:        modulo,
		}, page, limit)
		if err != nil {
			respondError(c, "listTransaccionesHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func listPendientesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := models.ListPendientes(c.Request.Context())
		if err != nil {
			respondError(c, "listPendientesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows, "total": len(rows)})
	}
}

func createTransaccionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewTransaccion
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		transaccion, err := workflow.CreateTransaccion(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createTransaccionHandler", err)
			return
		}
		c.JSON(http.StatusCreated, transaccion)
	}
}

func updateTransaccionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := intParam(c, "id")
		if err != nil {
			respondError(c, "updateTransaccionHandler", err)
			return
		}
		var input models.NewTransaccion
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		transaccion, err := workflow.UpdateTransaccion(c.Request.Context(), id, &input)
		if err != nil {
			respondError(c, "updateTransaccionHandler", err)
			return
		}
		c.JSON(http.StatusOK, transaccion)
	}
}

func deleteTransaccionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := intParam(c, "id")
		if err != nil {
			respondError(c, "deleteTransaccionHandler", err)
			return
		}
		transaccion, err := workflow.DeleteTransaccion(c.Request.Context(), id)
		if err != nil {
			respondError(c, "deleteTransaccionHandler", err)
			return
		}
		c.JSON(http.StatusOK, transaccion)
	}
}

type bulkDeleteRequest struct {
	Ids []int `json:"ids" binding:"required"`
}

func bulkDeleteTransaccionesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req bulkDeleteRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		deleted, err := workflow.BulkDeleteTransacciones(c.Request.Context(), req.Ids)
		if err != nil {
			respondError(c, "bulkDeleteTransaccionesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": len(deleted), "data": deleted})
	}
}

func hideTransaccionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := intParam(c, "id")
		if err != nil {
			respondError(c, "hideTransaccionHandler", err)
			return
		}
		modulo, err := models.ParseModulo(c.Query("modulo"))
		if err != nil {
			badRequest(c, err)
			return
		}
		transaccion, err := workflow.HideTransaccion(c.Request.Context(), id, modulo)
		if err != nil {
			respondError(c, "hideTransaccionHandler", err)
			return
		}
		c.JSON(http.StatusOK, transaccion)
	}
}

func showAllHiddenTransaccionesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		modulo, err := models.ParseModulo(c.Query("modulo"))
		if err != nil {
			badRequest(c, err)
			return
		}
		var party *ledger.Party
		if tipo := c.Query("socioTipo"); tipo != "" {
			p, err := models.ParsePartyPath(tipo, c.Query("socioId"))
			if err != nil {
				respondError(c, "showAllHiddenTransaccionesHandler", err)
				return
			}
			party = &p
		}
		n, err := workflow.ShowAllHiddenTransacciones(c.Request.Context(), modulo, party)
		if err != nil {
			respondError(c, "showAllHiddenTransaccionesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"restored": n})
	}
}

func completeTransaccionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := intParam(c, "id")
		if err != nil {
			respondError(c, "completeTransaccionHandler", err)
			return
		}
		transaccion, err := workflow.CompleteTransaccion(c.Request.Context(), id)
		if err != nil {
			respondError(c, "completeTransaccionHandler", err)
			return
		}
		c.JSON(http.StatusOK, transaccion)
	}
}

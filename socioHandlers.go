package main

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"bitbucket.org/rodmar/rodmar_backend/ledger"
	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/models/reports"
	"bitbucket.org/rodmar/rodmar_backend/workflow"
	"github.com/gin-gonic/gin"
)

func counterpartyRequest(c *gin.Context, sessions *ledger.SessionStore) (reports.CounterpartyRequest, error) {
	p, err := partyParams(c)
	if err != nil {
		return reports.CounterpartyRequest{}, err
	}
	q, err := listQuery(c)
	if err != nil {
		return reports.CounterpartyRequest{}, err
	}
	page, limit, err := pageQuery(c)
	if err != nil {
		return reports.CounterpartyRequest{}, err
	}
	return reports.CounterpartyRequest{
		Party:      p,
		Query:      q,
		Page:       page,
		Limit:      limit,
		Temporales: sessionTemporales(c, sessions, p),
	}, nil
}

// counterpartyViewHandler serves a counterparty's transaction screen: the
// listed page plus the header and filtered balances.
func counterpartyViewHandler(sessions *ledger.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := counterpartyRequest(c, sessions)
		if err != nil {
			respondError(c, "counterpartyViewHandler", err)
			return
		}
		view, err := reports.GetCounterpartyView(c.Request.Context(), req)
		if err != nil {
			respondError(c, "counterpartyViewHandler", err)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}

func exportCounterpartyHandler(sessions *ledger.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := counterpartyRequest(c, sessions)
		if err != nil {
			respondError(c, "exportCounterpartyHandler", err)
			return
		}
		var buf bytes.Buffer
		if err := reports.ExportCounterparty(c.Request.Context(), req, &buf); err != nil {
			respondError(c, "exportCounterpartyHandler", err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+reports.ExportFilename(req.Party)+`"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	}
}

func balanceHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := partyParams(c)
		if err != nil {
			respondError(c, "balanceHandler", err)
			return
		}
		resp, err := reports.GetBalance(c.Request.Context(), p, reports.Perspective(c.Query("perspectiva")))
		if err != nil {
			respondError(c, "balanceHandler", err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func rodmarAccountsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		accounts, err := reports.GetRodMarAccounts(c.Request.Context())
		if err != nil {
			respondError(c, "rodmarAccountsHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": accounts})
	}
}

func financialSummaryHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := reports.GetFinancialSummary(c.Request.Context())
		if err != nil {
			respondError(c, "financialSummaryHandler", err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

func listHandler[T any](name string, list func(context.Context) ([]*T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := list(c.Request.Context())
		if err != nil {
			respondError(c, name, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": rows})
	}
}

// createHandler binds In, creates the counterparty and announces it. id
// renders the new row's ledger id.
func createHandler[In any, Out any](name string, tipo ledger.PartyType, create func(context.Context, *In) (*Out, error), id func(*Out) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var input In
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		out, err := create(c.Request.Context(), &input)
		if err != nil {
			respondError(c, name, err)
			return
		}
		workflow.CounterpartyCreated(c.Request.Context(), tipo, id(out))
		c.JSON(http.StatusCreated, out)
	}
}

func registerCounterpartyRoutes(api *gin.RouterGroup) {
	api.GET("/minas", listHandler("listMinas", models.ListMinas))
	api.POST("/minas", createHandler("createMina", ledger.PartyMina, models.CreateMina,
		func(m *models.Mina) string { return strconv.Itoa(m.ID) }))
	api.GET("/compradores", listHandler("listCompradores", models.ListCompradores))
	api.POST("/compradores", createHandler("createComprador", ledger.PartyComprador, models.CreateComprador,
		func(m *models.Comprador) string { return strconv.Itoa(m.ID) }))
	api.GET("/volqueteros", listHandler("listVolqueteros", models.ListVolqueteros))
	api.POST("/volqueteros", createHandler("createVolquetero", ledger.PartyVolquetero, models.CreateVolquetero,
		func(m *models.Volquetero) string { return strconv.Itoa(m.ID) }))
	api.POST("/rodmar-accounts", createHandler("createRodMarCuenta", ledger.PartyRodMar, models.CreateRodMarCuenta,
		func(m *models.RodMarCuenta) string { return m.Codigo }))
	api.GET("/rodmar-accounts", rodmarAccountsHandler())
}

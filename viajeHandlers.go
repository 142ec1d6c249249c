package main

import (
	"net/http"

	"bitbucket.org/rodmar/rodmar_backend/models"
	"bitbucket.org/rodmar/rodmar_backend/workflow"
	"github.com/gin-gonic/gin"
)

func listViajesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, limit, err := pageQuery(c)
		if err != nil {
			respondError(c, "listViajesHandler", err)
			return
		}
		result, err := models.ListViajes(c.Request.Context(), boolQuery(c, "includeHidden"), page, limit)
		if err != nil {
			respondError(c, "listViajesHandler", err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getViajeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		viaje, err := models.GetViaje(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, "getViajeHandler", err)
			return
		}
		c.JSON(http.StatusOK, viaje)
	}
}

func createViajeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.NewViaje
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		viaje, err := workflow.CreateViaje(c.Request.Context(), &input)
		if err != nil {
			respondError(c, "createViajeHandler", err)
			return
		}
		c.JSON(http.StatusCreated, viaje)
	}
}

func unloadViajeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var input models.Descargue
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
		viaje, err := workflow.UnloadViaje(c.Request.Context(), c.Param("id"), &input)
		if err != nil {
			respondError(c, "unloadViajeHandler", err)
			return
		}
		c.JSON(http.StatusOK, viaje)
	}
}

func hideViajeHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		viaje, err := workflow.HideViaje(c.Request.Context(), c.Param("id"))
		if err != nil {
			respondError(c, "hideViajeHandler", err)
			return
		}
		c.JSON(http.StatusOK, viaje)
	}
}

func showAllHiddenViajesHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		n, err := workflow.ShowAllHiddenViajes(c.Request.Context())
		if err != nil {
			respondError(c, "showAllHiddenViajesHandler", err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"restored": n})
	}
}

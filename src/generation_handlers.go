package main

import (
	"bts/src/common"
	"bts/src/db"
	"bts/src/models"
	"bts/src/types"
	"bts/src/utils"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func generationHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	admin := g.Group("/admin")
	admin.
		POST("/trips/generate", func(ctx *gin.Context) {
			var body types.GenerateTripsRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startDate, err := utils.ParseDate(body.StartDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endDate, err := utils.ParseDate(body.EndDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")

			var removed int64
			if body.Regenerate {
				// clear the window so the expansion below rebuilds it from
				// the current templates
				removed, err = common.CleanupGeneratedTrips(startDate, endDate)
				if err != nil {
					log.Printf("Error clearing window before regeneration: %s\n", err.Error())
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
					return
				}
				log.Printf("Regeneration removed %d generated trips in [%s, %s]\n", removed, body.StartDate, body.EndDate)
			}

			created, err := common.GenerateTripsForPeriod(startDate, endDate, userId)
			if err != nil {
				if errors.Is(err, common.ErrInvalidDateRange) {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"created": created, "removed": removed})
		}).
		GET("/generation-runs", func(ctx *gin.Context) {
			var runs []models.GenerationRun
			db := db.GetDb()
			err := db.
				Model(&models.GenerationRun{}).
				Order("created_at desc").
				Limit(50).
				Find(&runs).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": runs})
		})

	g.
		GET("/generated-trips/:id/seats", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			var generated models.GeneratedTrip
			err := db.
				Preload("Seats").
				Where(&models.GeneratedTrip{ID: params.ID}).
				First(&generated).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": gin.H{
				"generated_trip_id": generated.ID,
				"available_seats":   generated.AvailableSeats,
				"seats":             generated.Seats,
			}})
		})
	return g
}

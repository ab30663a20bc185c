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

func tripHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/trips", func(ctx *gin.Context) {
			var body types.CreateTripRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			userId := ctx.GetUint("id")
			id, err := utils.CreateNewTrip(ctx, &body, userId)
			if err != nil {
				log.Printf("Error creating trip: %s\n", err.Error())
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"error": "bus not found"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		GET("/trips", func(ctx *gin.Context) {
			var trips []models.Trip
			db := db.GetDb()
			err := db.
				Model(&models.Trip{}).
				Where("is_active = ?", true).
				Order("route_slug asc").
				Limit(50).
				Find(&trips).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": trips})
		}).
		GET("/trips/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var trip models.Trip
			db := db.GetDb()
			err := db.
				Preload("Bus").
				Where(&models.Trip{ID: params.ID}).
				First(&trip).
				Error
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": trip})
		}).
		PATCH("/trips/:id/status", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var body types.UpdateTripStatusRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			if err := db.Transaction(func(tx *gorm.DB) error {
				var trip models.Trip
				if err := tx.
					Where(&models.Trip{ID: params.ID}).
					First(&trip).
					Error; err != nil {
					return err
				}
				if err := tx.
					Model(&models.Trip{}).
					Where("id = ?", trip.ID).
					Update("is_active", *body.IsActive).
					Error; err != nil {
					return err
				}
				return nil
			}); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/trips/:id/generated", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			var filters types.GeneratedTripQueryFilters
			if err := ctx.BindQuery(&filters); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			db := db.GetDb()
			q := db.
				Model(&models.GeneratedTrip{}).
				Where(&models.GeneratedTrip{TripID: params.ID})
			if filters.From != "" {
				from, err := utils.ParseDate(filters.From)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("actual_departure_time >= ?", from)
			}
			if filters.To != "" {
				to, err := utils.ParseDate(filters.To)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
					return
				}
				q = q.Where("actual_departure_time < ?", common.DateOnly(to).AddDate(0, 0, 1))
			}
			if filters.Status != "" {
				q = q.Where("status = ?", filters.Status)
			}
			var generated []models.GeneratedTrip
			err := q.
				Order("actual_departure_time asc").
				Limit(200).
				Find(&generated).
				Error
			if err != nil {
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			log.Printf("Found %d generated trips for trip %d window [%s, %s]\n", len(generated), params.ID, filters.From, filters.To)
			ctx.JSON(http.StatusOK, gin.H{"data": generated})
		})
	return g
}

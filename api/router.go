/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/tomoncle/bakery/database"
	"github.com/tomoncle/bakery/service"
	"github.com/tomoncle/bakery/utils"
)

const indexHTML = "<h1>Bakery GET-POST-PATCH-DELETE API</h1>"

// HealthReporter is satisfied by *database.BaseDatabaseFactory.
type HealthReporter interface {
	GetHealthStatus(ctx context.Context) *database.HealthStatus
	GetStats() *database.DBStats
}

// Dependencies are the collaborators the router is built from. DB is
// required and is asked for the pool on every request; a nil Health pings
// that pool directly and a nil Metrics disables /metrics.
type Dependencies struct {
	DB       database.DBProvider
	Health   HealthReporter
	Metrics  *Metrics
	Validate *validator.Validate
}

// NewRouter builds the gin engine with every route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	if deps.Validate == nil {
		deps.Validate = service.NewValidator()
	}
	if deps.Health == nil {
		deps.Health = &pingHealth{source: deps.DB}
	}

	logger := utils.NewLogger("API")
	h := &handler{
		bakeries: service.NewBakeryService(deps.DB, deps.Validate),
		goods:    service.NewBakedGoodService(deps.DB, deps.Validate),
		health:   deps.Health,
		logger:   logger,
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(Recovery(logger), AccessLog(logger))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, ErrorResponse{Message: "Not found."})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Message: "Method not allowed."})
	})

	r.GET("/", h.index)
	r.GET("/healthz", h.healthz)

	bakeries := r.Group("/bakeries")
	{
		bakeries.GET("", h.listBakeries)
		bakeries.GET("/:id", h.getBakery)
		bakeries.PATCH("/:id", h.updateBakery)
	}

	goods := r.Group("/baked_goods")
	{
		goods.GET("", h.listBakedGoods)
		goods.POST("", h.createBakedGood)
		goods.GET("/by_price", h.bakedGoodsByPrice)
		goods.GET("/most_expensive", h.mostExpensiveBakedGood)
		goods.GET("/:id", h.getBakedGood)
		goods.DELETE("/:id", h.deleteBakedGood)
	}

	return r
}

// pingHealth reports health from a bare connection pool.
type pingHealth struct {
	source database.DBProvider
}

func (p *pingHealth) GetHealthStatus(ctx context.Context) *database.HealthStatus {
	start := time.Now()
	status := &database.HealthStatus{LastCheckTime: start}
	db := p.source.GetDB()
	if db == nil {
		status.LastError = "Database not initialized"
		return status
	}
	if err := db.PingContext(ctx); err != nil {
		status.LastError = err.Error()
	} else {
		status.Healthy = true
		status.Connected = true
	}
	status.ResponseTime = time.Since(start)
	stats := db.Stats()
	status.ActiveConns = stats.InUse
	status.IdleConns = stats.Idle
	status.MaxOpenConns = stats.MaxOpenConnections
	return status
}

func (p *pingHealth) GetStats() *database.DBStats {
	db := p.source.GetDB()
	if db == nil {
		return &database.DBStats{}
	}
	stats := db.Stats()
	return &database.DBStats{
		MaxOpenConns:      stats.MaxOpenConnections,
		OpenConns:         stats.OpenConnections,
		InUse:             stats.InUse,
		Idle:              stats.Idle,
		WaitCount:         stats.WaitCount,
		WaitDuration:      stats.WaitDuration,
		MaxIdleClosed:     stats.MaxIdleClosed,
		MaxIdleTimeClosed: stats.MaxIdleTimeClosed,
		MaxLifetimeClosed: stats.MaxLifetimeClosed,
	}
}

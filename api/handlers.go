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
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/tomoncle/bakery/service"
	"github.com/tomoncle/bakery/utils"
)

const maxFormMemory = 8 << 20

type handler struct {
	bakeries *service.BakeryService
	goods    *service.BakedGoodService
	health   HealthReporter
	logger   *utils.Logger
}

func (h *handler) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
}

func (h *handler) healthz(c *gin.Context) {
	status := h.health.GetHealthStatus(c.Request.Context())
	code, state := http.StatusOK, "ok"
	if !status.Healthy {
		code, state = http.StatusServiceUnavailable, "unavailable"
	}
	c.JSON(code, gin.H{
		"status":   state,
		"database": status,
		"pool":     h.health.GetStats(),
	})
}

func (h *handler) listBakeries(c *gin.Context) {
	bakeries, err := h.bakeries.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bakeries)
}

func (h *handler) getBakery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.fail(c, service.ErrBakeryNotFound)
		return
	}
	bakery, err := h.bakeries.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bakery)
}

func (h *handler) updateBakery(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.fail(c, service.ErrBakeryNotFound)
		return
	}
	values, err := formValues(c.Request)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid form data."})
		return
	}
	bakery, err := h.bakeries.Update(c.Request.Context(), id, values)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bakery)
}

func (h *handler) listBakedGoods(c *gin.Context) {
	goods, err := h.goods.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goods)
}

func (h *handler) bakedGoodsByPrice(c *gin.Context) {
	goods, err := h.goods.ByPrice(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, goods)
}

func (h *handler) mostExpensiveBakedGood(c *gin.Context) {
	good, err := h.goods.MostExpensive(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, good)
}

func (h *handler) createBakedGood(c *gin.Context) {
	var in service.BakedGoodInput
	if err := c.ShouldBindWith(&in, binding.Form); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid form data."})
		return
	}
	good, err := h.goods.Create(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, good)
}

func (h *handler) getBakedGood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.fail(c, service.ErrBakedGoodNotFound)
		return
	}
	good, err := h.goods.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, good)
}

func (h *handler) deleteBakedGood(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		h.fail(c, service.ErrBakedGoodNotFound)
		return
	}
	if err := h.goods.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, DeleteResponse{
		DeleteSuccessful: true,
		Message:          "Baked good deleted.",
	})
}

// pathID parses the :id segment. Only positive decimal integers are ids.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// formValues returns the urlencoded or multipart body fields.
func formValues(r *http.Request) (url.Values, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return nil, err
	}
	return r.PostForm, nil
}

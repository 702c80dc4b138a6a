package handler

import (
	"net/http"
	"strconv"

	"tasksphere/internal/services"
	"tasksphere/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	service *services.ActivityService
}

func NewActivityHandler(service *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{service: service}
}

func (h *ActivityHandler) ListByProject(c *gin.Context) {
	projectID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid project id", "INVALID_REQUEST"))
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	res, err := h.service.ListByProject(c.Request.Context(), projectID, limit)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}

package handler

import (
	"net/http"

	"tasksphere/internal/services"
	"tasksphere/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

type IssueHandler struct {
	service *services.IssueService
}

func NewIssueHandler(service *services.IssueService) *IssueHandler {
	return &IssueHandler{service: service}
}

func (h *IssueHandler) Create(c *gin.Context) {
	projectID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid project id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	u, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	res, err := h.service.Create(c.Request.Context(), u, services.CreateIssueInput{
		ProjectID:   projectID,
		SprintID:    req.SprintID,
		Type:        req.Type,
		Priority:    req.Priority,
		Summary:     req.Summary,
		Description: req.Description,
		AssigneeID:  req.AssigneeID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, httpdto.NewSuccessResponse(res))
}

func (h *IssueHandler) List(c *gin.Context) {
	projectID, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid project id", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.List(c.Request.Context(), projectID, c.Query("status"))
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}

func (h *IssueHandler) GetByID(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid issue id", "INVALID_REQUEST"))
		return
	}

	res, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}

func (h *IssueHandler) Update(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid issue id", "INVALID_REQUEST"))
		return
	}

	var req httpdto.UpdateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	u, ok := services.UserFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewErrorResponse("unauthorized", "UNAUTHORIZED"))
		return
	}

	res, err := h.service.Update(c.Request.Context(), u, id, services.UpdateIssueInput{
		Status:     req.Status,
		Priority:   req.Priority,
		Summary:    req.Summary,
		AssigneeID: req.AssigneeID,
		SprintID:   req.SprintID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(res))
}

package controller

import (
	"ai-docchat-be/internal/dto"
	"ai-docchat-be/internal/pkg/serverutils"
	"ai-docchat-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Documents(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	History(ctx *fiber.Ctx) error
	ClearHistory(ctx *fiber.Ctx) error
}

type chatController struct {
	chatService service.IChatService
}

func NewChatController(chatService service.IChatService) IChatController {
	return &chatController{
		chatService: chatService,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Post("ask", c.Ask)
	h.Post("search", c.Search)
	h.Get("documents", c.Documents)
	h.Get("stats", c.Stats)
	h.Get("health", c.Health)
	h.Post("sessions", c.CreateSession)
	h.Get("sessions/:id/history", c.History)
	h.Delete("sessions/:id/history", c.ClearHistory)
}

func (c *chatController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.chatService.Ask(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Answer generated", res))
}

func (c *chatController) Search(ctx *fiber.Ctx) error {
	var req dto.SearchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
	}

	res, err := c.chatService.Search(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Search results", res))
}

func (c *chatController) Documents(ctx *fiber.Ctx) error {
	res, err := c.chatService.ListDocuments(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Indexed documents", res))
}

func (c *chatController) Stats(ctx *fiber.Ctx) error {
	res, err := c.chatService.Stats(ctx.Context())
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Pipeline stats", res))
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	res := c.chatService.Health(ctx.Context())
	if res.Status != "healthy" {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.SuccessResponse("Service degraded", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Service healthy", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	sessionID := c.chatService.CreateSession()
	return ctx.JSON(serverutils.SuccessResponse("Session created", map[string]string{
		"session_id": sessionID,
	}))
}

func (c *chatController) History(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("id")
	if sessionID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Session id is required"))
	}

	res := c.chatService.GetHistory(sessionID)
	return ctx.JSON(serverutils.SuccessResponse("Session history", res))
}

func (c *chatController) ClearHistory(ctx *fiber.Ctx) error {
	sessionID := ctx.Params("id")
	if sessionID == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Session id is required"))
	}

	c.chatService.ClearHistory(sessionID)
	return ctx.JSON(serverutils.SuccessResponse[any]("Session history cleared", nil))
}

package controller

import (
	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/pkg/serverutils"
	"ai-tripplanner-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IReplanController interface {
	RegisterRoutes(r fiber.Router)
	Replan(ctx *fiber.Ctx) error
}

type replanController struct {
	replanService service.IReplanService
}

func NewReplanController(replanService service.IReplanService) IReplanController {
	return &replanController{
		replanService: replanService,
	}
}

func (c *replanController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/replan/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Replan)
}

// Replan always answers 200 inside the latency budget. Degraded results
// are flagged in the body, never surfaced as HTTP errors.
func (c *replanController) Replan(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.ReplanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res := c.replanService.Replan(ctx.Context(), userId, &req)
	return ctx.JSON(res)
}

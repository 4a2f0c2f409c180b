package controller

import (
	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/pkg/serverutils"
	"ai-tripplanner-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IGuideController interface {
	RegisterRoutes(r fiber.Router)
	Ingest(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type guideController struct {
	guideService service.IGuideService
}

func NewGuideController(guideService service.IGuideService) IGuideController {
	return &guideController{
		guideService: guideService,
	}
}

func (c *guideController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/guide/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("search", c.Search)
	h.Post("", c.Ingest)
	h.Delete(":id", c.Delete)
}

func (c *guideController) Ingest(ctx *fiber.Ctx) error {
	var req dto.IngestGuideRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.guideService.Ingest(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ingest guide", res))
}

func (c *guideController) Search(ctx *fiber.Ctx) error {
	destination := ctx.Query("destination")
	query := ctx.Query("q")
	if destination == "" || query == "" {
		return fiber.NewError(fiber.StatusBadRequest, "destination and q are required")
	}

	res, err := c.guideService.Search(ctx.Context(), destination, query)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search guides", res))
}

func (c *guideController) Delete(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid ID")
	}

	if err := c.guideService.Delete(ctx.Context(), id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success delete guide", nil))
}

package controller

import (
	"bufio"
	"context"
	"time"

	"ai-tripplanner-be/internal/dto"
	"ai-tripplanner-be/internal/pkg/serverutils"
	"ai-tripplanner-be/internal/service"
	"ai-tripplanner-be/pkg/progress"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
)

// generationTimeout bounds one full pipeline run. Generous: a long trip at
// two days per chunk can take a while, but nothing should run forever.
const generationTimeout = 10 * time.Minute

type IPlannerController interface {
	RegisterRoutes(r fiber.Router)
	GenerateOutline(ctx *fiber.Ctx) error
	GenerateItinerary(ctx *fiber.Ctx) error
	GenerateStream(ctx *fiber.Ctx) error
	GenerationStatus(ctx *fiber.Ctx) error
}

type plannerController struct {
	plannerService service.IPlannerService
}

func NewPlannerController(plannerService service.IPlannerService) IPlannerController {
	return &plannerController{
		plannerService: plannerService,
	}
}

func (c *plannerController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/planner/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("outline", c.GenerateOutline)
	h.Post("itinerary", c.GenerateItinerary)
	h.Post("generate/stream", c.GenerateStream)
	h.Get(":id/status", c.GenerationStatus)
}

// GenerationStatus lets a client that lost its stream poll the progress of
// an in-flight or recently finished generation.
func (c *plannerController) GenerationStatus(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	planId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid plan id")
	}

	state, ok := c.plannerService.GenerationStatus(userId, planId)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "No generation in progress for this plan")
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get generation status", state))
}

func (c *plannerController) GenerateOutline(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GeneratePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.plannerService.GenerateOutline(ctx.Context(), userId, &req, progress.Noop())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate outline", res))
}

func (c *plannerController) GenerateItinerary(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GenerateItineraryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.plannerService.GenerateItinerary(ctx.Context(), userId, req.PlanId, progress.Noop())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success generate itinerary", res))
}

// GenerateStream runs the full pipeline and streams NDJSON progress events.
// The body writer runs after the handler returns, so everything the
// pipeline needs is captured before streaming starts.
func (c *plannerController) GenerateStream(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.GeneratePlanRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "application/x-ndjson")
	ctx.Set(fiber.HeaderCacheControl, "no-cache")
	ctx.Set("X-Accel-Buffering", "no")

	ctx.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		runCtx, cancel := context.WithTimeout(context.Background(), generationTimeout)
		defer cancel()

		stream := progress.NewStream(w)
		c.plannerService.Generate(runCtx, userId, &req, stream)
	}))

	return nil
}

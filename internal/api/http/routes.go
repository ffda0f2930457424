package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/i474232898/weatherpick/internal/device"
	"github.com/i474232898/weatherpick/internal/store"
	"github.com/i474232898/weatherpick/internal/view"
	"github.com/i474232898/weatherpick/internal/weather"
)

var validate = validator.New()

// Deps are the collaborators the view server exposes.
type Deps struct {
	Orchestrator *weather.Orchestrator
	Transformer  *weather.Transformer
	History      weather.History
	Notices      *device.NoticeBuffer
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	api := app.Group("/api")

	api.Get("/view", func(c *fiber.Ctx) error {
		return c.JSON(view.Build(d.Orchestrator.CurrentState(), d.Transformer))
	})

	search := api.Group("/search")

	search.Post("/region", func(c *fiber.Ctx) error {
		region, err := parseRegion(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		st := d.Orchestrator.SearchByRegion(c.UserContext(), region)
		return c.JSON(view.Build(st, d.Transformer))
	})

	search.Post("/coordinates", func(c *fiber.Ctx) error {
		lon, lat, err := parseCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		st := d.Orchestrator.SearchByCoordinates(c.UserContext(), lon, lat)
		return c.JSON(view.Build(st, d.Transformer))
	})

	search.Post("/current-position", func(c *fiber.Ctx) error {
		// Sensor errors are delivered as notices; the view is returned unchanged.
		st, _ := d.Orchestrator.SearchByCurrentPosition(c.UserContext())
		return c.JSON(view.Build(st, d.Transformer))
	})

	api.Get("/history", func(c *fiber.Ctx) error {
		var q historyQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		records, err := d.History.Recent(q.Limit)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(fiber.Map{"records": []weather.Record{}})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read history")
		}
		return c.JSON(fiber.Map{"records": records})
	})

	api.Get("/notices", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"notices": d.Notices.Drain()})
	})
}

// regionBody is the JSON form of a region search.
type regionBody struct {
	Region string `json:"region"`
}

// parseRegion reads the region from the query string, falling back to a JSON
// body. Blank text is passed through so the orchestrator can report it.
func parseRegion(c *fiber.Ctx) (string, error) {
	// Query values alias fiber's request buffer, which is reused after the handler.
	if r := c.Query("region"); r != "" {
		return utils.CopyString(r), nil
	}
	if len(c.Body()) == 0 {
		return "", nil
	}
	var body regionBody
	if err := c.BodyParser(&body); err != nil {
		return "", errors.New("invalid request body")
	}
	return body.Region, nil
}

func parseCoordinates(c *fiber.Ctx) (float64, float64, error) {
	lon, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lon")), 64)
	if err != nil {
		return 0, 0, errors.New("lon must be a number")
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(c.Query("lat")), 64)
	if err != nil {
		return 0, 0, errors.New("lat must be a number")
	}
	return lon, lat, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Limit int `query:"limit" validate:"gte=0,lte=500"`
}

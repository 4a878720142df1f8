package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/shakespr/cost-data-service/internal/costs"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. This is the thin
// inbound surface in front of the cost service; callers render the structured
// record or failure however they like.
func RegisterRoutes(app *fiber.App, service *costs.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/costs", func(c *fiber.Ctx) error {
		city, err := parseCityQuery(c, "city", "country")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		record, err := service.GetOrRefresh(c.UserContext(), city.Name, city.Country)
		if err != nil {
			return costError(err)
		}
		return c.JSON(record)
	})

	v1.Get("/costs/compare", func(c *fiber.Ctx) error {
		cityA, err := parseCityQuery(c, "city_a", "country_a")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		cityB, err := parseCityQuery(c, "city_b", "country_b")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		comparison, err := service.Compare(c.UserContext(), cityA, cityB)
		if err != nil {
			return costError(err)
		}
		return c.JSON(comparison)
	})
}

// costError maps the service error taxonomy onto HTTP statuses.
func costError(err error) error {
	switch {
	case errors.Is(err, costs.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, "no cost data found for requested city")
	case errors.Is(err, costs.ErrNoData):
		return fiber.NewError(fiber.StatusNotFound, "source has no usable cost data for requested city")
	case errors.Is(err, costs.ErrNetwork):
		return fiber.NewError(fiber.StatusBadGateway, "cost data source is unreachable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch cost data")
	}
}

// cityQuery holds query parameters identifying a city.
type cityQuery struct {
	City    string `validate:"required"`
	Country string `validate:"required"`
}

func parseCityQuery(c *fiber.Ctx, cityParam, countryParam string) (costs.CityKey, error) {
	q := cityQuery{
		City:    c.Query(cityParam),
		Country: c.Query(countryParam),
	}
	if err := validate.Struct(q); err != nil {
		return costs.CityKey{}, err
	}
	return costs.CityKey{Name: q.City, Country: q.Country}, nil
}

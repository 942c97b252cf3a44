package echoapi

import (
	"github.com/labstack/echo/v4"

	"github.com/sarvashiksha/backend/core"
)

const orderingParam = "ordering"

// Ordering binds the `ordering` query param, eg: `?ordering=-createdAt,name`.
type Ordering struct {
	Orderings []core.DBOrdering
}

func (ord *Ordering) Bind(ctx echo.Context) {
	ord.Orderings = core.ParseOrdering(ctx.QueryParam(orderingParam))
}

type (
	SuccessResponse struct {
		Success string `json:"success"`
	}

	CountResponse struct {
		Count int `json:"count"`
	}
)

package http

import (
	"escrow/internal/core/domain/model/kernel"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

// ActorHeader carries the caller identity authenticated upstream.
const ActorHeader = "X-Actor-ID"

func caller(ctx echo.Context) (kernel.Actor, error) {
	return kernel.NewActor(ctx.Request().Header.Get(ActorHeader))
}

// pathUUID binds a path parameter the way generated oapi-codegen servers do.
func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	var id openapi_types.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return kernel.UUID{}, err
	}
	return kernel.UUIDFromBytes(id[:])
}

func optionalUUID(id *openapi_types.UUID) (kernel.UUID, error) {
	if id == nil {
		return kernel.NewUUID(), nil
	}
	return kernel.UUIDFromBytes(id[:])
}

func toOpenAPI(id kernel.UUID) openapi_types.UUID {
	return id.Bytes()
}

func optionalActor(id string) (kernel.Actor, error) {
	if id == "" {
		return kernel.Actor{}, nil
	}
	return kernel.NewActor(id)
}

func bindEventsParams(ctx echo.Context) (ListEscrowEventsParams, error) {
	var params ListEscrowEventsParams
	if err := runtime.BindQueryParameter("form", true, false, "after", ctx.QueryParams(), &params.After); err != nil {
		return params, err
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit); err != nil {
		return params, err
	}
	return params, nil
}

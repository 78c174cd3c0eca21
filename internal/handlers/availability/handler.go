package availability

import (
	"net/http"

	"dinebook/infras/otel"
	"dinebook/internal/domains/availability/model/dto"
	"dinebook/internal/domains/availability/service"
	"dinebook/shared/constant"
	gDto "dinebook/shared/dto"
	"dinebook/shared/validator"
	"dinebook/transport/http/middleware"
	"dinebook/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Availability
	otel    otel.Otel
}

func New(service service.Availability, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(router chi.Router) {
	router.Route("/availabilities", func(routerGroup chi.Router) {
		routerGroup.Post("/", handler.CreateAvailability)
		routerGroup.Get("/", handler.GetAvailabilities)

		routerGroup.Group(func(byID chi.Router) {
			byID.Use(middleware.UUIDParam(constant.RequestParamID))

			byID.Get("/{id}", handler.GetAvailabilityByID)
			byID.Patch("/{id}", handler.UpdateAvailability)
			byID.Delete("/{id}", handler.DeleteAvailability)
			byID.Post("/{id}/block", handler.BlockAvailability)
			byID.Post("/{id}/unblock", handler.UnblockAvailability)
		})
	})
}

// CreateAvailability opens a bookable slot.
// @Summary Create a slot
// @Description Restaurant users create slots for their own profile; administrators name the restaurant.
// @Tags Availability
// @Accept json
// @Produce json
// @Param request body dto.CreateAvailabilityRequest true "Create Availability Request"
// @Success 201 {object} response.Data[dto.AvailabilityResponse] "Slot created"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities [post]
// @Security BearerAuth
func (handler *Handler) CreateAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CreateAvailability")
	defer scope.End()

	req := dto.CreateAvailabilityRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	slot, err := handler.service.Create(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability created successfully")

	response.WithJSON(w, http.StatusCreated, slot)
}

// GetAvailabilities lists slots.
// @Summary List slots
// @Description Public listing. Restaurant users only see their own slots.
// @Tags Availability
// @Produce json
// @Param pagination query gDto.QueryParams false "Pagination parameters"
// @Param restaurant_id query string false "Restaurant ID"
// @Param date query string false "Date (YYYY-MM-DD)"
// @Param state query string false "Slot state" Enums(open, blocked, reserved)
// @Success 200 {object} response.Data[dto.GetAvailabilitiesResponse] "List of slots"
// @Failure 400 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities [get]
func (handler *Handler) GetAvailabilities(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailabilities")
	defer scope.End()

	queryParams := gDto.QueryParams{}
	if err := queryParams.FromRequest(r, true); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	filter := dto.AvailabilityFilter{}
	filter.FromRequest(r)

	if err := validator.ValidateStruct(&filter); err != nil {
		scope.TraceError(err)

		response.WithError(w, err)

		return
	}

	slots, err := handler.service.GetAll(ctx, queryParams, filter)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get availabilities")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slots)
}

// GetAvailabilityByID returns one slot.
// @Summary Get a slot by ID
// @Tags Availability
// @Produce json
// @Param id path string true "Availability ID"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Slot details"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities/{id} [get]
func (handler *Handler) GetAvailabilityByID(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetAvailabilityByID")
	defer scope.End()

	slot, err := handler.service.Get(ctx, chi.URLParam(r, constant.RequestParamID))
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get availability by ID")

		response.WithError(w, err)

		return
	}

	response.WithJSON(w, http.StatusOK, slot)
}

// UpdateAvailability reschedules a slot that has no reservation.
// @Summary Reschedule a slot
// @Tags Availability
// @Accept json
// @Produce json
// @Param id path string true "Availability ID"
// @Param request body dto.UpdateAvailabilityRequest true "Update Availability Request"
// @Success 200 {object} response.Message "Availability updated successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities/{id} [patch]
// @Security BearerAuth
func (handler *Handler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".UpdateAvailability")
	defer scope.End()

	req := dto.UpdateAvailabilityRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Update(ctx, req, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to update availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability updated successfully")

	response.WithMessage(w, http.StatusOK, "Availability updated successfully")
}

// DeleteAvailability removes a slot that has no reservation.
// @Summary Delete a slot
// @Tags Availability
// @Produce json
// @Param id path string true "Availability ID"
// @Success 204
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities/{id} [delete]
// @Security BearerAuth
func (handler *Handler) DeleteAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".DeleteAvailability")
	defer scope.End()

	if err := handler.service.Delete(ctx, chi.URLParam(r, constant.RequestParamID)); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to delete availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability deleted successfully")

	response.WithNoContent(w)
}

// BlockAvailability takes an open slot off sale.
// @Summary Block a slot
// @Tags Availability
// @Produce json
// @Param id path string true "Availability ID"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Blocked slot"
// @Failure 400 {object} response.Error "invalid_transition"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities/{id}/block [post]
// @Security BearerAuth
func (handler *Handler) BlockAvailability(w http.ResponseWriter, r *http.Request) {
	handler.setBlock(w, r, true)
}

// UnblockAvailability puts a blocked slot back on sale.
// @Summary Unblock a slot
// @Tags Availability
// @Produce json
// @Param id path string true "Availability ID"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Open slot"
// @Failure 400 {object} response.Error "invalid_transition"
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/availabilities/{id}/unblock [post]
// @Security BearerAuth
func (handler *Handler) UnblockAvailability(w http.ResponseWriter, r *http.Request) {
	handler.setBlock(w, r, false)
}

func (handler *Handler) setBlock(w http.ResponseWriter, r *http.Request, blocked bool) {
	spanName := ".UnblockAvailability"
	if blocked {
		spanName = ".BlockAvailability"
	}

	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+spanName)
	defer scope.End()

	slot, err := handler.service.SetBlock(ctx, chi.URLParam(r, constant.RequestParamID), blocked)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Bool("blocked", blocked).Msg("failed to change availability block")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability block changed")

	response.WithJSON(w, http.StatusOK, slot)
}

package controllers

import (
	"errors"
	"net/http"

	"travel-backend/services"
	"travel-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		services.RegisterValidations(v)
	}
}

func statusForKind(k services.Kind) int {
	switch k {
	case services.KindValidation, services.KindExpired:
		return http.StatusBadRequest
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUpstream:
		return http.StatusBadGateway
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError renders a service error as {"error", "code"} or, for field
// validation, {"error", "code", "fields"}. Anything unrecognised is a 500.
func respondError(c *gin.Context, err error) {
	if ve, ok := services.AsValidation(err); ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":  "validation failed",
			"code":   "validation_error",
			"fields": ve,
		})
		return
	}
	if se, ok := services.AsError(err); ok {
		if se.Kind == services.KindUpstream {
			log.Error().Err(err).Str("path", c.FullPath()).Msg("upstream failure")
		}
		utils.JSONCodedError(c, statusForKind(se.Kind), se.Code, se.Message)
		return
	}

	_ = c.Error(err)
	log.Error().Err(err).Str("path", c.FullPath()).Msg("unhandled error")
	utils.JSONError(c, http.StatusInternalServerError, "internal error")
}

// respondDetail renders token errors as {"detail", "code"}.
func respondDetail(c *gin.Context, err error) {
	if se, ok := services.AsError(err); ok {
		utils.JSONDetail(c, statusForKind(se.Kind), se.Code, se.Message)
		return
	}
	respondError(c, err)
}

// respondBadPayload reports binding tag failures per field and anything
// else (malformed JSON, wrong types) as invalid_payload.
func respondBadPayload(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		respondError(c, services.FieldErrors(verrs))
		return
	}
	utils.JSONCodedError(c, http.StatusBadRequest, "invalid_payload", "invalid payload: "+err.Error())
}

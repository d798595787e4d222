package handler

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sangkips/stockroom-api/internal/application/service"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/request"
	"github.com/sangkips/stockroom-api/internal/presentation/http/dto/response"
	"github.com/sangkips/stockroom-api/pkg/apperror"
	"github.com/sangkips/stockroom-api/pkg/pagination"
)

var registerOnce sync.Once

// RegisterValidation makes binding errors report JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// GetOperatorID extracts the operator ID from the Gin context
func GetOperatorID(c *gin.Context) *uuid.UUID {
	val, exists := c.Get("operator_id")
	if !exists {
		return nil
	}
	operatorID, ok := val.(uuid.UUID)
	if !ok {
		return nil
	}
	return &operatorID
}

// GetSessionID extracts the operator session from the Gin context
func GetSessionID(c *gin.Context) string {
	return c.GetString("session_id")
}

// bindJSON binds the body and writes a 422 listing every invalid field.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperror.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperror.FieldError{Field: fieldPath(fe), Message: validationMessage(fe)})
		}
		response.ValidationError(c, fields)
		return false
	}
	response.BadRequest(c, "Invalid request body")
	return false
}

// bindOptionalJSON is bindJSON for endpoints whose body may be omitted.
func bindOptionalJSON(c *gin.Context, req interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	return bindJSON(c, req)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "email":
		return "must be a valid email address"
	case "uuid":
		return "must be a valid UUID"
	}
	return "is invalid"
}

// parseIDParam reads a UUID path parameter, writing a 400 when it is malformed.
func parseIDParam(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.BadRequest(c, "Invalid "+label+" ID")
		return uuid.Nil, false
	}
	return id, true
}

func pageParams(c *gin.Context) *pagination.PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "15"))
	return &pagination.PaginationParams{Page: page, PerPage: perPage}
}

func lineItemInput(req request.LineItemRequest) service.LineItemInput {
	return service.LineItemInput{
		Kind:        req.Kind,
		ProductID:   req.ProductID,
		Name:        strings.TrimSpace(req.Name),
		Unit:        strings.TrimSpace(req.Unit),
		Quantity:    req.Quantity,
		UnitPrice:   req.UnitPrice,
		TaxRate:     req.TaxRate,
		TaxIncluded: req.TaxIncluded,
	}
}

func lineItemInputs(reqs []request.LineItemRequest) []service.LineItemInput {
	out := make([]service.LineItemInput, len(reqs))
	for i, r := range reqs {
		out[i] = lineItemInput(r)
	}
	return out
}

func discountInput(req request.DiscountRequest) service.DiscountInput {
	return service.DiscountInput{
		ManualPercent:    req.ManualPercent,
		CustomerID:       req.CustomerID,
		RedeemPoints:     req.RedeemPoints,
		PointsRequested:  req.PointsRequested,
		RedeemBalance:    req.RedeemBalance,
		BalanceRequested: req.BalanceRequested,
	}
}

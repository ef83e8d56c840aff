package apperrors

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ErrorResponse - стандартный ответ об ошибке: {"error": {...}}
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler - обработчик ошибок для Gin
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError - основная логика обработки ошибок для Gin
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err error) {
	appErr, ok := AsAppError(err)
	if !ok {
		// Если это не AppError, оборачиваем в InternalError
		appErr = InternalError(err)
	}
	// В продакшене скрываем детали 5xx, в debug показываем исходную ошибку
	if appErr.HTTPCode >= 500 && !h.Debug {
		cp := *appErr
		cp.Message = "Internal server error"
		cp.Details = nil
		appErr = &cp
	} else if appErr.HTTPCode >= 500 && appErr.Err != nil && appErr.Details == nil {
		appErr = appErr.WithDetails(appErr.Err.Error())
	}

	// Логирование
	if appErr.HTTPCode >= 500 {
		log.Error().Err(appErr.Unwrap()).Str("path", c.Request.URL.Path).Msg("server error")
	}

	// Отправка ответа
	c.AbortWithStatusJSON(appErr.HTTPCode, ErrorResponse{Error: appErr})
}

var defaultHandler = &GinErrorHandler{Debug: false}

// SetDebug - включает вывод внутренних ошибок (server.debug_errors).
// Вызывается один раз при старте, до приема запросов.
func SetDebug(debug bool) {
	defaultHandler = &GinErrorHandler{Debug: debug}
}

// HandleError - быстрая функция-помощник для Gin
func HandleError(c *gin.Context, err error) {
	defaultHandler.HandleGinError(c, err)
}

// AsAppError - пытается преобразовать error в *AppError
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

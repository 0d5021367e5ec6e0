package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

/*
{
	"code": 10000, // 业务错误码
	"message": xx,     // 提示信息
	"data": {},    // 数据
}

*/

type ResponseData[T any] struct {
	Code    ResCode `json:"code"`
	Message string  `json:"message"`
	Data    T       `json:"data"`
}

// ResponseError 返回错误信息
func ResponseError(c *gin.Context, code ResCode) {
	c.JSON(http.StatusOK, &ResponseData[any]{
		Code:    code,
		Message: code.Msg(),
		Data:    nil,
	})
}

// ResponseErrorWithData 返回错误码并附带数据（如字段级校验错误）
func ResponseErrorWithData[T any](c *gin.Context, code ResCode, data T) {
	c.JSON(http.StatusOK, &ResponseData[T]{
		Code:    code,
		Message: code.Msg(),
		Data:    data,
	})
}

// ResponseSuccess 返回成功信息
func ResponseSuccess[T any](c *gin.Context, data T) {
	c.JSON(http.StatusOK, &ResponseData[T]{
		Code:    CodeSuccess,
		Message: CodeSuccess.Msg(),
		Data:    data,
	})
}
